package relay

import (
	"fmt"
	"strings"
)

// FeedEntry describes one relayed SPARTN feed, trimmed down from the
// NTRIP sourcetable STR record to the fields that actually mean
// something for a SPARTN correction stream rather than a generic
// RTCM mountpoint.
type FeedEntry struct {
	Name        string
	Description string
	Format      string // e.g. "SPARTN-2.0"
	CountryCode string
	Bitrate     int
}

func (f FeedEntry) String() string {
	return strings.Join([]string{"STR",
		f.Name, f.Description, f.Format, f.CountryCode, fmt.Sprintf("%d", f.Bitrate),
	}, ";")
}

// FeedTable is the "/" listing of every feed a Server currently knows
// about, one FeedEntry per line, terminated the way an NTRIP
// sourcetable is.
type FeedTable struct {
	Feeds []FeedEntry
}

func (t FeedTable) String() string {
	lines := make([]string, 0, len(t.Feeds)+1)
	for _, f := range t.Feeds {
		lines = append(lines, f.String())
	}
	lines = append(lines, "ENDSOURCETABLE\r\n")
	return strings.Join(lines, "\r\n")
}

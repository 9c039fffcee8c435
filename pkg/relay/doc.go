// Package relay fans a single SPARTN byte stream out to many HTTP
// subscribers, the way an NTRIP caster fans one mountpoint's
// corrections out to many rover connections. It never interprets the
// bytes it relays; pkg/spartn's Reader lives upstream of this package
// (one decoding Reader per publisher) or downstream of it (one per
// subscriber), never inside it.
package relay

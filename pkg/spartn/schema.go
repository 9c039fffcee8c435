package spartn

import "fmt"

// entryKind distinguishes the three node shapes of a payload schema,
// per spec.md §3.2: a plain field, a conditional sub-schema, and a
// repeating group.
type entryKind int

const (
	fieldEntry entryKind = iota
	condEntry
	groupEntry
)

// schemaEntry is one node of a payload schema tree. A schema is an
// ordered list of these (declaration order matters: it is wire order),
// never a map, so Go's unordered map iteration can't reorder the bit
// stream.
type schemaEntry struct {
	kind entryKind
	key  string // field identifier, or the dict key a cond/group was declared under
	desc string // human-readable label, carried through to Field.Desc

	// condEntry only.
	condField string
	condVals  []int64
	sub       Schema

	// groupEntry only.
	count countSource
}

// Schema is an ordered payload schema tree, transliterated from the
// SPARTN payload definition tables (schema_tables.go).
type Schema []schemaEntry

type countSourceKind int

const (
	countField countSourceKind = iota // count = value of a previously decoded field
	countNSAT                         // count = popcount of the enclosing scope's satellite mask
	countNB                           // count = popcount of the bits actually present in a named field
)

type countSource struct {
	kind    countSourceKind
	fieldID string
}

func fieldCount(id string) countSource { return countSource{kind: countField, fieldID: id} }
func nsatCount() countSource           { return countSource{kind: countNSAT} }
func nbCount(id string) countSource    { return countSource{kind: countNB, fieldID: id} }

// field constructs a plain field entry.
func field(id, desc string) schemaEntry {
	return schemaEntry{kind: fieldEntry, key: id, desc: desc}
}

// cond constructs a conditional sub-schema entry: sub is only walked
// when condField's previously decoded value is one of vals.
func cond(key, condField string, vals []int64, sub Schema) schemaEntry {
	return schemaEntry{kind: condEntry, key: key, condField: condField, condVals: vals, sub: sub}
}

// group constructs a repeating group entry: sub is walked once per
// unit returned by resolving count against the current scope.
func group(key string, count countSource, sub Schema) schemaEntry {
	return schemaEntry{kind: groupEntry, key: key, count: count, sub: sub}
}

// scope is one level of the decode-time environment: the flat set of
// field values decoded so far at this nesting level, plus the most
// recently decoded satellite mask (for NSAT group counts) and a
// pending mask-length sentinel value (for NSATMASK-style fields).
type scope struct {
	parent      *scope
	values      map[string]uint64
	satMask     uint64
	satMaskSet  bool
	pendingMask int // bit width requested by the last sentinel seen; 0 if none pending
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, values: make(map[string]uint64)}
}

// lookup searches this scope and its ancestors for a decoded field
// value, per spec.md §4.5's "predicate field must have been decoded
// earlier in the same enclosing scope" rule (enclosing includes
// outward nesting). Values are stored as uint64 to accommodate the
// 64-bit satellite masks; every other field fits comfortably.
func (s *scope) lookup(id string) (uint64, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.values[id]; ok {
			return v, true
		}
	}
	return 0, false
}

func (s *scope) set(id string, v uint64) { s.values[id] = v }

// nearestSatMask returns the most recently decoded satellite mask
// reachable from this scope outward.
func (s *scope) nearestSatMask() (uint64, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.satMaskSet {
			return sc.satMask, true
		}
	}
	return 0, false
}

// cursor walks bits out of a fixed payload buffer, tracking position.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) remaining() int { return len(c.buf)*8 - c.pos }

func (c *cursor) takeU(width int) (uint32, error) {
	v, err := BitsU(c.buf, c.pos, width)
	if err != nil {
		return 0, err
	}
	c.pos += width
	return v, nil
}

// takeU64 is takeU's counterpart for fields wider than 32 bits, the
// 64-bit satellite masks a mask-length sentinel can select.
func (c *cursor) takeU64(width int) (uint64, error) {
	v, err := BitsU64(c.buf, c.pos, width)
	if err != nil {
		return 0, err
	}
	c.pos += width
	return v, nil
}

// decodeSchema walks schema against cur within sc, appending decoded
// fields to rec in wire order, per spec.md §4.5.
func decodeSchema(schema Schema, cur *cursor, sc *scope, rec *Record) error {
	for _, e := range schema {
		switch e.kind {
		case fieldEntry:
			if err := decodeField(e, cur, sc, rec); err != nil {
				return err
			}
		case condEntry:
			val, ok := sc.lookup(e.condField)
			if !ok {
				// Predicate field missing: treated as false, sub-schema skipped.
				continue
			}
			if !int64In(int64(val), e.condVals) {
				continue
			}
			if err := decodeSchema(e.sub, cur, sc, rec); err != nil {
				return err
			}
		case groupEntry:
			n, err := resolveCount(e.count, sc)
			if err != nil {
				return err
			}
			for i := 1; i <= n; i++ {
				child := newScope(sc)
				start := len(rec.Fields)
				if err := decodeSchema(e.sub, cur, child, rec); err != nil {
					return err
				}
				rec.suffixFrom(start, i)
			}
		}
	}
	return nil
}

func int64In(v int64, vals []int64) bool {
	for _, x := range vals {
		if v == x {
			return true
		}
	}
	return false
}

func resolveCount(cs countSource, sc *scope) (int, error) {
	switch cs.kind {
	case countField:
		v, ok := sc.lookup(cs.fieldID)
		if !ok {
			return 0, &SchemaMismatchError{Reason: fmt.Sprintf("group count field %s not decoded", cs.fieldID)}
		}
		return int(v), nil
	case countNSAT:
		mask, ok := sc.nearestSatMask()
		if !ok {
			return 0, &SchemaMismatchError{Reason: "NSAT group with no satellite mask in scope"}
		}
		return PopCount(mask), nil
	case countNB:
		v, ok := sc.lookup(cs.fieldID)
		if !ok {
			return 0, &SchemaMismatchError{Reason: fmt.Sprintf("group bit-count field %s not decoded", cs.fieldID)}
		}
		return PopCount(uint64(v)), nil
	default:
		return 0, &SchemaMismatchError{Reason: "unknown group count source"}
	}
}

// decodeField decodes one schemaEntry of kind fieldEntry, handling the
// three special shapes: mask-length sentinels, sentinel-governed mask
// fields, and dynamic-width grid-residual byte-strings.
func decodeField(e schemaEntry, cur *cursor, sc *scope, rec *Record) error {
	if kind := sentinelKind(e.key); kind != notSentinel {
		v, err := cur.takeU(sentinelWidth)
		if err != nil {
			return &TruncatedFrameError{Offset: int64(cur.pos / 8), Stage: e.key}
		}
		sc.pendingMask = maskBitLen(kind, v)
		return nil
	}

	if isGridResidual(e.key) {
		return decodeGridResidual(e, cur, sc, rec)
	}

	attr, known := lookupFieldAttr(e.key)
	width := attr.Width
	if sc.pendingMask != 0 {
		width = sc.pendingMask
		sc.pendingMask = 0
	}
	if width == 0 {
		if !known {
			return &SchemaMismatchError{Reason: fmt.Sprintf("field %s has no width (not in attribute table, no pending mask)", e.key)}
		}
		return &SchemaMismatchError{Reason: fmt.Sprintf("field %s requires a preceding mask-length sentinel", e.key)}
	}

	var raw64 uint64
	if width > 32 {
		v, err := cur.takeU64(width)
		if err != nil {
			return &TruncatedFrameError{Offset: int64(cur.pos / 8), Stage: e.key}
		}
		raw64 = v
	} else {
		v, err := cur.takeU(width)
		if err != nil {
			return &TruncatedFrameError{Offset: int64(cur.pos / 8), Stage: e.key}
		}
		raw64 = uint64(v)
	}
	sc.set(e.key, raw64)

	if isMaskField(e.key) {
		sc.satMask = raw64
		sc.satMaskSet = true
	}

	val := decodedValue(attr, raw64, width)
	rec.append(e.key, e.desc, val)
	return nil
}

// isMaskField reports whether id is one of the per-constellation
// satellite mask fields, making it the NSAT source for its scope.
func isMaskField(id string) bool {
	switch id {
	case "SF011", "SF012", "SF093", "SF094", "SF095":
		return true
	default:
		return false
	}
}

func decodeGridResidual(e schemaEntry, cur *cursor, sc *scope, rec *Record) error {
	gridPoints, ok := sc.lookup("SF039")
	if !ok {
		return &SchemaMismatchError{Reason: fmt.Sprintf("grid residual field %s with no SF039 grid-point count in scope", e.key)}
	}
	bitsPerNode := residualBitsPerNode[e.key]
	width := int(gridPoints) * bitsPerNode
	if width == 0 {
		rec.append(e.key, e.desc, []byte{})
		return nil
	}
	raw := make([]byte, (width+7)/8)
	for i := 0; i < width; i++ {
		bit, err := cur.takeU(1)
		if err != nil {
			return &TruncatedFrameError{Offset: int64(cur.pos / 8), Stage: e.key}
		}
		if bit != 0 {
			raw[i/8] |= 1 << uint(7-i%8)
		}
	}
	rec.append(e.key, e.desc, raw)
	return nil
}

// decodedValue converts a raw unsigned field value into its decoded
// form per spec.md §3.3: a plain integer when scale is 1 and the
// field is unsigned, a Rational when scaled, or a signed integer.
// width is the field's actual wire width, needed to sign-extend raw
// (which was read as a bare unsigned bit pattern).
func decodedValue(attr FieldAttr, raw uint64, width int) any {
	if attr.Signed {
		v := raw
		if width < 64 && raw&(1<<uint(width-1)) != 0 {
			v |= ^uint64(0) << uint(width)
		}
		signed := int64(v)
		if attr.Scale != 1 && attr.Scale != 0 {
			return Rational{Raw: signed, Scale: attr.Scale}
		}
		return signed
	}
	if attr.Scale != 1 && attr.Scale != 0 {
		return Rational{Raw: int64(raw), Scale: attr.Scale}
	}
	return int64(raw)
}

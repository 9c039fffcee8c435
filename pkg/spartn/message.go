package spartn

import "fmt"

// Rational is a fixed-point decoded value: the raw wire integer times
// a fractional scale, per spec.md §3.3. Float() applies the scale;
// Raw is kept alongside it so callers that need the bit-exact integer
// (e.g. re-deriving a mask) don't have to undo floating point.
type Rational struct {
	Raw   int64
	Scale float64
}

func (r Rational) Float() float64 { return float64(r.Raw) * r.Scale }

func (r Rational) String() string { return fmt.Sprintf("%g", r.Float()) }

// Field is one named, decoded value within a Record, in wire order.
// Value holds an int64, a Rational, or a []byte (grid residuals and
// other byte-string fields).
type Field struct {
	Name  string
	Desc  string
	Value any
}

// Record is the flat, ordered result of decoding one SPARTN message
// payload: every Field the schema walk produced, in the order the
// bits were read, plus an index for lookup by name. Fields decoded
// inside a repeating group carry a "_NN" suffix (1-based, zero-padded
// to at least two digits) appended to their base name,
// per spec.md §4.5.
type Record struct {
	MsgType    int
	MsgSubtype int
	Schema     string // e.g. "SPARTN-1X-OCB-GPS"

	Fields []Field
	index  map[string]int
}

func newRecord(msgType, msgSubtype int, schemaName string) *Record {
	return &Record{
		MsgType:    msgType,
		MsgSubtype: msgSubtype,
		Schema:     schemaName,
		index:      make(map[string]int),
	}
}

func (r *Record) append(name, desc string, value any) {
	r.index[name] = len(r.Fields)
	r.Fields = append(r.Fields, Field{Name: name, Desc: desc, Value: value})
}

// suffixFrom appends "_NN" to every field appended since start, for
// the i'th (1-based) iteration of the enclosing group.
func (r *Record) suffixFrom(start, i int) {
	suf := fmt.Sprintf("_%02d", i)
	for idx := start; idx < len(r.Fields); idx++ {
		r.Fields[idx].Name += suf
		delete(r.index, r.Fields[idx].Name[:len(r.Fields[idx].Name)-len(suf)])
		r.index[r.Fields[idx].Name] = idx
	}
}

// Get looks up a decoded field by name (including any group suffix).
func (r *Record) Get(name string) (Field, bool) {
	idx, ok := r.index[name]
	if !ok {
		return Field{}, false
	}
	return r.Fields[idx], true
}

// schemaKey identifies a payload schema by message type and subtype,
// per spec.md §3's "msgType/msgSubtype select the payload schema"
// rule.
type schemaKey struct {
	msgType    int
	msgSubtype int
}

// decodePayload walks the schema registered for (msgType, msgSubtype)
// against payload, producing a Record. It is the bridge between the
// transport layer (frame.go, reader.go) and the schema tree
// (schema.go, schema_tables.go).
func decodePayload(msgType, msgSubtype int, payload []byte) (*Record, error) {
	key := schemaKey{msgType, msgSubtype}
	def, ok := schemaRegistry[key]
	if !ok {
		return nil, &SchemaMismatchError{
			MsgType:    msgType,
			MsgSubtype: msgSubtype,
			Reason:     "no schema registered for this message type/subtype",
		}
	}

	rec := newRecord(msgType, msgSubtype, def.name)
	cur := &cursor{buf: payload}
	root := newScope(nil)

	if err := decodeSchema(def.schema, cur, root, rec); err != nil {
		if tr, ok := err.(*TruncatedFrameError); ok {
			// The frame itself was read whole; a payload too short for its
			// schema is a schema mismatch, not an end of stream.
			return nil, &SchemaMismatchError{
				MsgType:    msgType,
				MsgSubtype: msgSubtype,
				Reason:     fmt.Sprintf("payload ends inside field %s", tr.Stage),
			}
		}
		return nil, err
	}

	if cur.remaining() > 7 {
		return nil, &SchemaMismatchError{
			MsgType:    msgType,
			MsgSubtype: msgSubtype,
			Reason:     fmt.Sprintf("%d residual bits after schema walk, more than padding can account for", cur.remaining()),
		}
	}
	return rec, nil
}

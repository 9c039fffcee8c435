package spartn

import "testing"

// buildTestBits packs a sequence of (width, value) pairs MSB-first
// into a fresh byte buffer sized to fit them exactly (rounded up).
func buildTestBits(pairs ...[2]int) []byte {
	total := 0
	for _, p := range pairs {
		total += p[0]
	}
	buf := make([]byte, (total+7)/8)
	pos := 0
	for _, p := range pairs {
		setBitsU(buf, pos, p[0], uint32(p[1]))
		pos += p[0]
	}
	return buf
}

func TestDecodeSchemaConditional(t *testing.T) {
	schema := Schema{
		field("SF010", "End of set"), // 1 bit
		cond("opt", "SF010", []int64{1}, Schema{
			field("SF005", "SIOU"), // 5 bits
		}),
	}

	// SF010=1, so SF005 should be present.
	buf := buildTestBits([2]int{1, 1}, [2]int{5, 17})
	rec := newRecord(0, 0, "test")
	cur := &cursor{buf: buf}
	if err := decodeSchema(schema, cur, newScope(nil), rec); err != nil {
		t.Fatal(err)
	}
	f, ok := rec.Get("SF005")
	if !ok {
		t.Fatal("expected SF005 to be decoded")
	}
	if f.Value.(int64) != 17 {
		t.Errorf("SF005 = %v, want 17", f.Value)
	}

	// SF010=0, so SF005 should be absent.
	buf2 := buildTestBits([2]int{1, 0})
	rec2 := newRecord(0, 0, "test")
	cur2 := &cursor{buf: buf2}
	if err := decodeSchema(schema, cur2, newScope(nil), rec2); err != nil {
		t.Fatal(err)
	}
	if _, ok := rec2.Get("SF005"); ok {
		t.Error("SF005 should not be present when SF010=0")
	}
}

func TestDecodeSchemaGroupWithNB(t *testing.T) {
	// A 4-bit mask with 2 bits set drives a 2-iteration group, each
	// iteration reading SF029 (11 bits signed, scale 0.02), producing
	// _01/_02 suffixes.
	schema := Schema{
		field("SF014", "mask"), // 4 bits, statically attributed
		group("g", nbCount("SF014"), Schema{
			field("SF029", "val"),
		}),
	}
	buf := buildTestBits(
		[2]int{4, 0b1010},
		[2]int{11, 1},
		[2]int{11, 2},
	)
	rec := newRecord(0, 0, "test")
	cur := &cursor{buf: buf}
	if err := decodeSchema(schema, cur, newScope(nil), rec); err != nil {
		t.Fatal(err)
	}
	f1, ok := rec.Get("SF029_01")
	if !ok || f1.Value.(Rational).Raw != 1 {
		t.Errorf("SF029_01 = %v, ok=%v", f1.Value, ok)
	}
	f2, ok := rec.Get("SF029_02")
	if !ok || f2.Value.(Rational).Raw != 2 {
		t.Errorf("SF029_02 = %v, ok=%v", f2.Value, ok)
	}
}

func TestMaskLengthSentinel(t *testing.T) {
	schema := Schema{
		field(NSATMASK, "mask length"), // 1 bit, 1 => 64-bit mask
		field("SF011", "mask"),
	}
	buf := buildTestBits(append([][2]int{{1, 1}}, pairsFor64BitMask()...)...)
	rec := newRecord(0, 0, "test")
	cur := &cursor{buf: buf}
	if err := decodeSchema(schema, cur, newScope(nil), rec); err != nil {
		t.Fatal(err)
	}
	f, ok := rec.Get("SF011")
	if !ok {
		t.Fatal("expected SF011 present")
	}
	if f.Value.(int64) != -1<<63 {
		t.Errorf("SF011 = %v, want top bit set of a 64-bit mask", f.Value)
	}
}

func pairsFor64BitMask() [][2]int {
	// A 64-bit value can't be packed with our 32-bit setBitsU helper in
	// one call; split it into two 32-bit halves with the top bit of the
	// high half set.
	return [][2]int{{32, 1 << 31}, {32, 0}}
}

func TestDynamicGridResidualWidth(t *testing.T) {
	schema := Schema{
		field("SF039", "grid points"), // 6 bits
		field("SF052", "residuals"),   // dynamic: SF039 * 6 bits
	}
	buf := buildTestBits([2]int{6, 2}, [2]int{6, 0b101010}, [2]int{6, 0b010101})
	rec := newRecord(0, 0, "test")
	cur := &cursor{buf: buf}
	if err := decodeSchema(schema, cur, newScope(nil), rec); err != nil {
		t.Fatal(err)
	}
	f, ok := rec.Get("SF052")
	if !ok {
		t.Fatal("expected SF052 present")
	}
	raw, ok := f.Value.([]byte)
	if !ok {
		t.Fatalf("SF052 value is %T, want []byte", f.Value)
	}
	if len(raw) != 2 { // 12 bits -> 2 bytes
		t.Errorf("SF052 raw length = %d, want 2", len(raw))
	}
}

func TestResolveCountUnknownField(t *testing.T) {
	_, err := resolveCount(fieldCount("SF999"), newScope(nil))
	if err == nil {
		t.Fatal("expected error for unresolved count field")
	}
}

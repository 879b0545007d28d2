package fonts

import "testing"

func TestGoRegular(t *testing.T) {
	if len(GoRegularTTF()) == 0 {
		t.Fatal("GoRegularTTF() returned no data")
	}

	f1, err := GoRegular()
	if err != nil {
		t.Fatalf("GoRegular() error: %v", err)
	}
	f2, _ := GoRegular()
	if f1 != f2 {
		t.Error("GoRegular() should parse once and return the cached font")
	}
}

func TestFace(t *testing.T) {
	face, err := Face(14)
	if err != nil {
		t.Fatalf("Face() error: %v", err)
	}
	defer face.Close()

	m := face.Metrics()
	if m.Height <= 0 {
		t.Errorf("face height = %v, want > 0", m.Height)
	}
	if _, ok := face.GlyphAdvance('A'); !ok {
		t.Error("face should have a glyph for 'A'")
	}
}

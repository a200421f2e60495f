package annot

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/franz/score-stand/internal/rotate"
)

func TestAnnotation_InkRoundTrip(t *testing.T) {
	in := Annotation{
		UUID:   "abc-123",
		Kind:   KindInk,
		Color:  "red",
		Points: []rotate.Point{{X: 0.1, Y: 0.2}, {X: 0.3, Y: 0.4}},
		Width:  5,
	}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Annotation
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n in  %+v\n out %+v", in, out)
	}
}

func TestAnnotation_TextRoundTrip(t *testing.T) {
	in := Annotation{
		UUID:   "def-456",
		Kind:   KindText,
		Color:  "blue",
		Anchor: rotate.Point{X: 0.25, Y: 0.75},
		Text:   "♩ = 120",
		Font:   "New Century Schoolbook",
		Size:   4,
	}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Annotation
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n in  %+v\n out %+v", in, out)
	}
}

func TestAnnotation_MarshalWritesOnlyKindFields(t *testing.T) {
	ink, err := json.Marshal(Annotation{
		UUID: "u1", Kind: KindInk, Color: "black",
		Points: []rotate.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, Width: 2,
	})
	if err != nil {
		t.Fatalf("marshal ink: %v", err)
	}
	for _, field := range []string{`"text"`, `"font"`, `"size"`, `"x"`, `"y"`} {
		if strings.Contains(string(ink), field) {
			t.Errorf("ink wire format leaked %s: %s", field, ink)
		}
	}

	text, err := json.Marshal(Annotation{
		UUID: "u2", Kind: KindText, Color: "black", Text: "mf", Size: 2,
	})
	if err != nil {
		t.Fatalf("marshal text: %v", err)
	}
	for _, field := range []string{`"points"`, `"width"`} {
		if strings.Contains(string(text), field) {
			t.Errorf("text wire format leaked %s: %s", field, text)
		}
	}
	// A zero anchor still has to serialize x and y.
	for _, field := range []string{`"x"`, `"y"`} {
		if !strings.Contains(string(text), field) {
			t.Errorf("text wire format missing %s: %s", field, text)
		}
	}
}

func TestAnnotation_UnmarshalDefaults(t *testing.T) {
	var ink Annotation
	if err := json.Unmarshal([]byte(`{"type":"ink","points":[[0,0],[1,1]]}`), &ink); err != nil {
		t.Fatalf("unmarshal ink: %v", err)
	}
	if ink.Width != DefaultSize {
		t.Errorf("missing width defaulted to %v, want %d", ink.Width, DefaultSize)
	}
	if ink.Color != DefaultColor {
		t.Errorf("missing color defaulted to %q, want %q", ink.Color, DefaultColor)
	}

	var text Annotation
	if err := json.Unmarshal([]byte(`{"type":"text","x":0.5,"y":0.5,"text":"pp"}`), &text); err != nil {
		t.Fatalf("unmarshal text: %v", err)
	}
	if text.Size != DefaultSize {
		t.Errorf("missing size defaulted to %d, want %d", text.Size, DefaultSize)
	}

	var big Annotation
	if err := json.Unmarshal([]byte(`{"type":"text","text":"f","size":99}`), &big); err != nil {
		t.Fatalf("unmarshal oversized: %v", err)
	}
	if big.Size != MaxSize {
		t.Errorf("size 99 clamped to %d, want %d", big.Size, MaxSize)
	}
}

func TestAnnotation_UnmarshalUnknownKind(t *testing.T) {
	var a Annotation
	if err := json.Unmarshal([]byte(`{"type":"sticker","x":1}`), &a); err == nil {
		t.Error("expected error for unknown kind, got nil")
	}
}

func TestClampSize(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 1}, {-3, 1}, {1, 1}, {2, 2}, {10, 10}, {11, 10}, {99, 10},
	}
	for _, c := range cases {
		if got := ClampSize(c.in); got != c.want {
			t.Errorf("ClampSize(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestIsMusicalSymbol(t *testing.T) {
	for _, s := range []string{"♩", "♩.", "♪", "\U0001D15E", "pp", "p", "mp", "mf", "f", "ff", "sfz", "cresc", "dim"} {
		if !IsMusicalSymbol(s) {
			t.Errorf("expected %q to be a musical symbol", s)
		}
	}
	// Surrounding whitespace must not defeat the match.
	if !IsMusicalSymbol("  ♪  ") {
		t.Error("expected padded symbol to match")
	}
	for _, s := range []string{"", "Allegro", "P", "FF", "fff", "da capo"} {
		if IsMusicalSymbol(s) {
			t.Errorf("expected %q not to be a musical symbol", s)
		}
	}
}

func TestEffectiveFontSize(t *testing.T) {
	if got := EffectiveFontSize(2, "Allegro"); got != 20 {
		t.Errorf("prose at size 2 = %d, want 20", got)
	}
	if got := EffectiveFontSize(10, "tempo giusto"); got != 52 {
		t.Errorf("prose at size 10 = %d, want 52", got)
	}
	if got := EffectiveFontSize(2, "♩"); got != 120 {
		t.Errorf("symbol at size 2 = %d, want 120", got)
	}
	if got := EffectiveFontSize(99, "ff"); got != 312 {
		t.Errorf("symbol at clamped size = %d, want 312", got)
	}
}

func TestAnnotation_CloneIsIndependent(t *testing.T) {
	orig := Annotation{
		UUID: "u", Kind: KindInk, Color: "green",
		Points: []rotate.Point{{X: 0.1, Y: 0.1}, {X: 0.2, Y: 0.2}},
		Width:  3,
	}
	cl := orig.Clone()
	cl.Points[0].X = 9.9
	if orig.Points[0].X != 0.1 {
		t.Error("mutating the clone reached the original's points")
	}
}

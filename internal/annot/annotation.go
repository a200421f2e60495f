// Package annot owns per-score annotation state: ink strokes and text
// marks in the unrotated page frame, per-page rotation, and an undo
// stack over every committed mutation. State persists to a JSON sidecar
// next to the score through the docstore package.
//
// Geometry is stored as normalized [0,1] coordinates in the 0° page
// frame, so a sidecar never encodes display rotation and survives the
// page being shown at any orientation.
package annot

import (
	"encoding/json"
	"fmt"

	"github.com/franz/score-stand/internal/rotate"
)

// Annotation kinds as stored in the sidecar "type" field.
const (
	KindInk  = "ink"
	KindText = "text"
)

// Size bounds shared by pen width and text size, matching the toolbar
// slider.
const (
	MinSize     = 1
	MaxSize     = 10
	DefaultSize = 2
)

// DefaultColor is the pen color a fresh manager starts with.
const DefaultColor = "black"

// DefaultFont is the typeface given to new text annotations.
const DefaultFont = "New Century Schoolbook"

// PenColors is the toolbar palette.
var PenColors = []string{"black", "red", "blue", "green", "orange", "purple", "magenta"}

// Annotation is a single mark on a page. Points and Width carry ink
// strokes; Anchor, Text, Font and Size carry text marks. Text anchors
// at the middle of its left edge.
type Annotation struct {
	UUID  string
	Kind  string
	Color string

	Points []rotate.Point
	Width  float64

	Anchor rotate.Point
	Text   string
	Font   string
	Size   int
}

// Clone returns a copy sharing no mutable state with a.
func (a Annotation) Clone() Annotation {
	c := a
	if a.Points != nil {
		c.Points = append([]rotate.Point(nil), a.Points...)
	}
	return c
}

// ClampSize forces a pen width or text size into the slider range.
func ClampSize(n int) int {
	if n < MinSize {
		return MinSize
	}
	if n > MaxSize {
		return MaxSize
	}
	return n
}

func clampWidth(w float64) float64 {
	if w < MinSize {
		return MinSize
	}
	if w > MaxSize {
		return MaxSize
	}
	return w
}

type inkWire struct {
	UUID   string       `json:"uuid"`
	Type   string       `json:"type"`
	Points [][2]float64 `json:"points"`
	Color  string       `json:"color"`
	Width  float64      `json:"width"`
}

type textWire struct {
	UUID  string  `json:"uuid"`
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	Font  string  `json:"font"`
	Color string  `json:"color"`
	Size  int     `json:"size"`
}

// MarshalJSON writes exactly the wire fields for the annotation's kind.
func (a Annotation) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case KindInk:
		pts := make([][2]float64, len(a.Points))
		for i, p := range a.Points {
			pts[i] = [2]float64{p.X, p.Y}
		}
		return json.Marshal(inkWire{
			UUID:   a.UUID,
			Type:   KindInk,
			Points: pts,
			Color:  a.Color,
			Width:  a.Width,
		})
	case KindText:
		return json.Marshal(textWire{
			UUID:  a.UUID,
			Type:  KindText,
			X:     a.Anchor.X,
			Y:     a.Anchor.Y,
			Text:  a.Text,
			Font:  a.Font,
			Color: a.Color,
			Size:  a.Size,
		})
	}
	return nil, fmt.Errorf("unknown annotation kind %q", a.Kind)
}

// UnmarshalJSON accepts either wire shape and defaults fields older
// writers left out. A missing uuid stays empty; sidecar loading assigns
// one and flags the document for rewrite.
func (a *Annotation) UnmarshalJSON(raw []byte) error {
	var w struct {
		UUID   string       `json:"uuid"`
		Type   string       `json:"type"`
		Points [][2]float64 `json:"points"`
		Color  string       `json:"color"`
		Width  *float64     `json:"width"`
		X      float64      `json:"x"`
		Y      float64      `json:"y"`
		Text   string       `json:"text"`
		Font   string       `json:"font"`
		Size   *int         `json:"size"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return err
	}

	color := w.Color
	if color == "" {
		color = DefaultColor
	}

	switch w.Type {
	case KindInk:
		pts := make([]rotate.Point, len(w.Points))
		for i, xy := range w.Points {
			pts[i] = rotate.Point{X: xy[0], Y: xy[1]}
		}
		width := float64(DefaultSize)
		if w.Width != nil {
			width = clampWidth(*w.Width)
		}
		*a = Annotation{UUID: w.UUID, Kind: KindInk, Color: color, Points: pts, Width: width}
	case KindText:
		size := DefaultSize
		if w.Size != nil {
			size = ClampSize(*w.Size)
		}
		*a = Annotation{
			UUID:   w.UUID,
			Kind:   KindText,
			Color:  color,
			Anchor: rotate.Point{X: w.X, Y: w.Y},
			Text:   w.Text,
			Font:   w.Font,
			Size:   size,
		}
	default:
		return fmt.Errorf("unknown annotation kind %q", w.Type)
	}
	return nil
}

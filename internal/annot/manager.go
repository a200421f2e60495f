package annot

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/franz/score-stand/internal/docstore"
	"github.com/franz/score-stand/internal/pathutil"
	"github.com/franz/score-stand/internal/rotate"
	"github.com/franz/score-stand/internal/util"
)

// Tool is the active annotation mode.
type Tool string

const (
	ToolPen    Tool = "pen"
	ToolText   Tool = "text"
	ToolEraser Tool = "eraser"
)

// Hit-testing defaults: page dimensions in PDF points for an A4 sheet,
// and how close an eraser tap must land to an ink segment.
const (
	defaultPageWidth    = 595.0
	defaultPageHeight   = 842.0
	defaultHitTolerance = 6.0
)

// Manager owns annotation state for one open score: the sidecar
// document, the toolbar state, the stroke in progress, and the undo
// stack. It is not safe for concurrent use; the presentation shell
// drives one operation at a time.
//
// Points enter and leave the manager in the rotated display frame,
// normalized to [0,1] against the displayed page. The manager converts
// them to the stored 0° frame internally, so callers never deal with
// rotation math.
type Manager struct {
	scorePath   string
	sidecarPath string
	doc         Document
	dirty       bool

	tool  Tool
	color string
	size  int
	font  string

	pageW     float64
	pageH     float64
	tolerance float64

	stroke     []rotate.Point
	strokePage int

	undo []undoEntry
}

// NewManager returns a manager with toolbar defaults and no score
// loaded.
func NewManager() *Manager {
	return &Manager{
		doc:       NewDocument(),
		tool:      ToolPen,
		color:     DefaultColor,
		size:      DefaultSize,
		font:      DefaultFont,
		pageW:     defaultPageWidth,
		pageH:     defaultPageHeight,
		tolerance: defaultHitTolerance,
	}
}

// LoadFor reads the sidecar for scorePath, replacing all in-memory
// state and clearing the undo stack. A corrupt sidecar leaves the
// manager usable with an empty document and is reported through the
// returned error; the bytes on disk stay untouched.
func (m *Manager) LoadFor(scorePath string) error {
	native := pathutil.ToNative(scorePath)
	m.scorePath = native
	m.sidecarPath = SidecarPath(native)
	m.stroke = nil
	m.undo = nil
	m.dirty = false

	doc, err := docstore.Load(m.sidecarPath, NewDocument())
	m.doc = doc
	if err != nil {
		util.WarnLog("Annotations for %s unreadable: %v", scorePath, err)
		return err
	}
	if n := doc.Skipped(); n > 0 {
		util.WarnLog("Dropped %d unreadable annotation entries in %s", n, m.sidecarPath)
	}
	if doc.Migrated() {
		util.DebugLog("Upgraded annotation sidecar %s in memory", m.sidecarPath)
		m.dirty = true
	}
	return nil
}

// Save writes the sidecar if anything changed since the last save.
func (m *Manager) Save() error {
	if !m.dirty {
		return nil
	}
	if m.sidecarPath == "" {
		return fmt.Errorf("no score loaded")
	}
	if err := docstore.Save(m.sidecarPath, m.doc); err != nil {
		return err
	}
	util.DebugLog("Saved %d annotations to %s", m.doc.Count(), m.sidecarPath)
	m.dirty = false
	return nil
}

// Dirty reports whether in-memory state differs from the sidecar.
func (m *Manager) Dirty() bool { return m.dirty }

// ScorePath returns the native path of the loaded score.
func (m *Manager) ScorePath() string { return m.scorePath }

// Sidecar returns the path annotations persist to.
func (m *Manager) Sidecar() string { return m.sidecarPath }

func (m *Manager) Tool() Tool { return m.tool }

// SetTool switches the active annotation mode.
func (m *Manager) SetTool(t Tool) { m.tool = t }

func (m *Manager) Color() string { return m.color }

func (m *Manager) Size() int { return m.size }

func (m *Manager) Font() string { return m.font }

// SetColor switches the pen color; empty input is ignored.
func (m *Manager) SetColor(c string) {
	if c != "" {
		m.color = c
	}
}

// SetSize moves the shared width/text-size slider, clamped to its
// range.
func (m *Manager) SetSize(n int) { m.size = ClampSize(n) }

// SetFont switches the typeface for new text; empty input is ignored.
func (m *Manager) SetFont(f string) {
	if f != "" {
		m.font = f
	}
}

// SetPageDimensions tells the manager the unrotated page size in page
// units, used only for hit-testing. Non-positive values are ignored.
func (m *Manager) SetPageDimensions(w, h float64) {
	if w > 0 && h > 0 {
		m.pageW, m.pageH = w, h
	}
}

// SetHitTolerance sets the eraser pick radius in page units.
func (m *Manager) SetHitTolerance(t float64) {
	if t > 0 {
		m.tolerance = t
	}
}

// Rotation returns the page's clockwise quarter-turn count.
func (m *Manager) Rotation(page int) int {
	if pg, ok := m.doc.Pages[page]; ok {
		return pg.Rotation
	}
	return 0
}

// SetRotation turns the page by delta clockwise quarter turns and
// returns the new count. Stored annotation geometry is never touched;
// rotation applies only when coordinates enter or leave the manager.
func (m *Manager) SetRotation(page, delta int) int {
	cur := m.Rotation(page)
	next := rotate.Compose(cur, delta)
	if next == cur {
		return cur
	}
	m.doc.page(page).Rotation = next
	m.pushUndo(undoEntry{kind: undoRotate, page: page, prevRotation: cur})
	m.dirty = true
	return next
}

// Annotations returns a copy of the page's annotation list, topmost
// last. An unannotated page yields nil.
func (m *Manager) Annotations(page int) []Annotation {
	pg, ok := m.doc.Pages[page]
	if !ok || len(pg.Annotations) == 0 {
		return nil
	}
	out := make([]Annotation, len(pg.Annotations))
	for i, a := range pg.Annotations {
		out[i] = a.Clone()
	}
	return out
}

// Document returns the sidecar document for read-only inspection.
func (m *Manager) Document() Document { return m.doc }

// BeginStroke starts a pen stroke on page at p. Any unfinished stroke
// is discarded.
func (m *Manager) BeginStroke(page int, p rotate.Point) {
	m.strokePage = page
	m.stroke = []rotate.Point{m.toStored(page, p)}
}

// ExtendStroke appends the next sampled point to the stroke in
// progress; without an active stroke it is a no-op.
func (m *Manager) ExtendStroke(p rotate.Point) {
	if m.stroke == nil {
		return
	}
	m.stroke = append(m.stroke, m.toStored(m.strokePage, p))
}

// EndStroke commits the stroke in progress as an ink annotation. A
// stroke needs at least two points; anything shorter is discarded and
// reported false.
func (m *Manager) EndStroke() (Annotation, bool) {
	pts := m.stroke
	m.stroke = nil
	if len(pts) < 2 {
		return Annotation{}, false
	}
	a := Annotation{
		UUID:   uuid.New().String(),
		Kind:   KindInk,
		Color:  m.color,
		Points: pts,
		Width:  float64(m.size),
	}
	m.commit(m.strokePage, a)
	return a, true
}

// AddText places a text annotation anchored at p. Whitespace-only
// content is rejected and reported false.
func (m *Manager) AddText(page int, p rotate.Point, text string) (Annotation, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Annotation{}, false
	}
	a := Annotation{
		UUID:   uuid.New().String(),
		Kind:   KindText,
		Color:  m.color,
		Anchor: m.toStored(page, p),
		Text:   text,
		Font:   m.font,
		Size:   m.size,
	}
	m.commit(page, a)
	return a, true
}

// EditText rewrites an existing text annotation's content and font,
// restamping color and size from the current toolbar state. The prior
// value is captured for undo.
func (m *Manager) EditText(page int, id, text, font string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("empty annotation text")
	}
	pg, ok := m.doc.Pages[page]
	if ok {
		for i := range pg.Annotations {
			a := &pg.Annotations[i]
			if a.UUID != id || a.Kind != KindText {
				continue
			}
			m.pushUndo(undoEntry{kind: undoEdit, page: page, uuid: id, prior: a.Clone()})
			a.Text = text
			a.Font = font
			a.Color = m.color
			a.Size = m.size
			m.dirty = true
			return nil
		}
	}
	return fmt.Errorf("text annotation %s on page %d: %w", id, page, util.ErrNotFound)
}

// EraseAt removes the topmost annotation near p: within tolerance of an
// ink segment, or inside a text mark's estimated bounding box. The
// removed annotation is returned and captured for undo; a miss reports
// false.
func (m *Manager) EraseAt(page int, p rotate.Point) (Annotation, bool) {
	pg, ok := m.doc.Pages[page]
	if !ok || len(pg.Annotations) == 0 {
		return Annotation{}, false
	}
	q := m.toStored(page, p)
	for i := len(pg.Annotations) - 1; i >= 0; i-- {
		if !m.hits(pg.Annotations[i], q) {
			continue
		}
		removed := pg.Annotations[i]
		pg.Annotations = append(pg.Annotations[:i], pg.Annotations[i+1:]...)
		m.pushUndo(undoEntry{kind: undoErase, page: page, prior: removed.Clone(), index: i})
		m.dirty = true
		return removed, true
	}
	return Annotation{}, false
}

// Undo reverts the most recent committed mutation. With nothing to
// revert it reports util.ErrNothingToUndo.
func (m *Manager) Undo() error {
	if len(m.undo) == 0 {
		return util.ErrNothingToUndo
	}
	e := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]

	switch e.kind {
	case undoAdd:
		m.removeByUUID(e.page, e.uuid)
	case undoEdit:
		pg := m.doc.page(e.page)
		for i := range pg.Annotations {
			if pg.Annotations[i].UUID == e.uuid {
				pg.Annotations[i] = e.prior
				break
			}
		}
	case undoErase:
		pg := m.doc.page(e.page)
		idx := e.index
		if idx > len(pg.Annotations) {
			idx = len(pg.Annotations)
		}
		pg.Annotations = append(pg.Annotations, Annotation{})
		copy(pg.Annotations[idx+1:], pg.Annotations[idx:])
		pg.Annotations[idx] = e.prior
	case undoRotate:
		m.doc.page(e.page).Rotation = e.prevRotation
	}
	m.dirty = true
	return nil
}

// CanUndo reports whether the undo stack holds any entries.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

func (m *Manager) pushUndo(e undoEntry) {
	m.undo = append(m.undo, e)
}

func (m *Manager) commit(page int, a Annotation) {
	pg := m.doc.page(page)
	pg.Annotations = append(pg.Annotations, a)
	m.pushUndo(undoEntry{kind: undoAdd, page: page, uuid: a.UUID})
	m.dirty = true
}

func (m *Manager) removeByUUID(page int, id string) {
	pg, ok := m.doc.Pages[page]
	if !ok {
		return
	}
	for i := range pg.Annotations {
		if pg.Annotations[i].UUID == id {
			pg.Annotations = append(pg.Annotations[:i], pg.Annotations[i+1:]...)
			return
		}
	}
}

// toStored maps a display-frame point into the stored 0° frame. With
// normalized coordinates the unit square is the transform box.
func (m *Manager) toStored(page int, p rotate.Point) rotate.Point {
	return rotate.Invert(p, 1, 1, m.Rotation(page))
}

// hits tests q (stored frame, normalized) against one annotation's
// geometry in page units.
func (m *Manager) hits(a Annotation, q rotate.Point) bool {
	qx, qy := q.X*m.pageW, q.Y*m.pageH
	switch a.Kind {
	case KindInk:
		if len(a.Points) == 1 {
			x, y := a.Points[0].X*m.pageW, a.Points[0].Y*m.pageH
			return math.Hypot(qx-x, qy-y) <= m.tolerance
		}
		for i := 0; i+1 < len(a.Points); i++ {
			x1, y1 := a.Points[i].X*m.pageW, a.Points[i].Y*m.pageH
			x2, y2 := a.Points[i+1].X*m.pageW, a.Points[i+1].Y*m.pageH
			if segmentDistance(qx, qy, x1, y1, x2, y2) <= m.tolerance {
				return true
			}
		}
	case KindText:
		pt := float64(EffectiveFontSize(a.Size, a.Text))
		x, y := a.Anchor.X*m.pageW, a.Anchor.Y*m.pageH
		w := 0.6 * pt * float64(len([]rune(a.Text)))
		// Text draws anchored at the middle of its left edge.
		return qx >= x && qx <= x+w && qy >= y-pt/2 && qy <= y+pt/2
	}
	return false
}

// segmentDistance is the distance from (px,py) to the segment
// (x1,y1)-(x2,y2).
func segmentDistance(px, py, x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	if dx == 0 && dy == 0 {
		return math.Hypot(px-x1, py-y1)
	}
	t := ((px-x1)*dx + (py-y1)*dy) / (dx*dx + dy*dy)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(px-(x1+t*dx), py-(y1+t*dy))
}

package annot

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/franz/score-stand/internal/rotate"
)

// CurrentVersion is the sidecar schema written on save. Version 1 was a
// bare page-to-annotations mapping, version 2 added the envelope with a
// version field, version 3 moved pages to objects carrying rotation.
const CurrentVersion = 3

// SidecarPath returns where annotations for a score live: same
// directory, same base name, .json extension.
func SidecarPath(scorePath string) string {
	return strings.TrimSuffix(scorePath, filepath.Ext(scorePath)) + ".json"
}

// Page is one page's worth of sidecar state: the annotation list in
// paint order and the display rotation in clockwise quarter turns.
type Page struct {
	Annotations []Annotation
	Rotation    int
}

// Document is the parsed sidecar for one score.
type Document struct {
	Pages map[int]*Page

	migrated bool
	skipped  int
}

// NewDocument returns an empty sidecar document.
func NewDocument() Document {
	return Document{Pages: map[int]*Page{}}
}

// Migrated reports whether loading upgraded an older schema or repaired
// entries, meaning the document should be rewritten on the next save.
func (d Document) Migrated() bool { return d.migrated }

// Skipped reports how many entries were dropped at load because they
// could not be understood.
func (d Document) Skipped() int { return d.skipped }

// PageIndices returns the pages holding state, ascending.
func (d Document) PageIndices() []int {
	idx := make([]int, 0, len(d.Pages))
	for i, pg := range d.Pages {
		if pg == nil || (len(pg.Annotations) == 0 && pg.Rotation == 0) {
			continue
		}
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Count returns the total number of annotations across all pages.
func (d Document) Count() int {
	n := 0
	for _, pg := range d.Pages {
		if pg != nil {
			n += len(pg.Annotations)
		}
	}
	return n
}

// page returns the entry for idx, creating it on first use.
func (d *Document) page(idx int) *Page {
	if pg, ok := d.Pages[idx]; ok {
		return pg
	}
	pg := &Page{}
	d.Pages[idx] = pg
	return pg
}

type pageWire struct {
	Annotations []Annotation `json:"annotations"`
	Rotation    int          `json:"rotation"`
}

// MarshalJSON always writes the current schema, pruning pages that hold
// no state.
func (d Document) MarshalJSON() ([]byte, error) {
	pages := make(map[int]pageWire, len(d.Pages))
	for idx, pg := range d.Pages {
		if pg == nil || (len(pg.Annotations) == 0 && pg.Rotation == 0) {
			continue
		}
		anns := pg.Annotations
		if anns == nil {
			anns = []Annotation{}
		}
		pages[idx] = pageWire{Annotations: anns, Rotation: pg.Rotation}
	}
	return json.Marshal(struct {
		Version int              `json:"version"`
		Pages   map[int]pageWire `json:"pages"`
	}{Version: CurrentVersion, Pages: pages})
}

// UnmarshalJSON reads any schema version ever written, upgrading older
// ones in memory. Annotations without a uuid get one assigned; entries
// that cannot be parsed are dropped and counted rather than failing the
// whole document.
func (d *Document) UnmarshalJSON(raw []byte) error {
	*d = NewDocument()

	var head struct {
		Version *int                    `json:"version"`
		Pages   map[int]json.RawMessage `json:"pages"`
	}
	version := 1
	var pageSet map[int]json.RawMessage
	if err := json.Unmarshal(raw, &head); err == nil && (head.Version != nil || head.Pages != nil) {
		version = 2
		if head.Version != nil {
			version = *head.Version
		}
		pageSet = head.Pages
	} else if err := json.Unmarshal(raw, &pageSet); err != nil {
		// Version 1 is a bare page mapping; anything else is corrupt.
		return err
	}

	for idx, rawPage := range pageSet {
		if idx < 0 {
			d.skipped++
			continue
		}
		pg := &Page{}
		trimmed := bytes.TrimLeft(rawPage, " \t\r\n")
		switch {
		case len(trimmed) > 0 && trimmed[0] == '[':
			var items []json.RawMessage
			if err := json.Unmarshal(rawPage, &items); err != nil {
				d.skipped++
				continue
			}
			pg.Annotations = d.decodeItems(items)
		case len(trimmed) > 0 && trimmed[0] == '{':
			var w struct {
				Annotations []json.RawMessage `json:"annotations"`
				Rotation    int               `json:"rotation"`
			}
			if err := json.Unmarshal(rawPage, &w); err != nil {
				d.skipped++
				continue
			}
			pg.Annotations = d.decodeItems(w.Annotations)
			pg.Rotation = rotate.Normalize(w.Rotation)
			if pg.Rotation != w.Rotation {
				d.migrated = true
			}
		default:
			d.skipped++
			continue
		}
		if len(pg.Annotations) == 0 && pg.Rotation == 0 {
			continue
		}
		d.Pages[idx] = pg
	}

	if version < CurrentVersion {
		d.migrated = true
	}
	return nil
}

func (d *Document) decodeItems(items []json.RawMessage) []Annotation {
	var out []Annotation
	for _, item := range items {
		var a Annotation
		if err := json.Unmarshal(item, &a); err != nil {
			d.skipped++
			continue
		}
		if a.UUID == "" {
			a.UUID = uuid.New().String()
			d.migrated = true
		}
		out = append(out, a)
	}
	return out
}

// Package setlist models performance programs: named, ordered lists of
// scores with page ranges, persisted together in one JSON document, and
// the playback session that walks through one of them.
package setlist

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/franz/score-stand/internal/docstore"
	"github.com/franz/score-stand/internal/pathutil"
	"github.com/franz/score-stand/internal/util"
)

// Item is one entry in a setlist: a score plus the page range to play.
// Paths are stored in portable form. StartPage is 1-based; EndPage is
// 1-based inclusive, nil meaning "through the last page".
type Item struct {
	Path      string `json:"path"`
	Title     string `json:"title"`
	Composer  string `json:"composer"`
	StartPage int    `json:"start_page"`
	EndPage   *int   `json:"end_page"`
}

type itemWire Item

// UnmarshalJSON defaults malformed page bounds instead of propagating
// them: a start below 1 becomes 1, an end below 1 becomes open. Paths
// are normalized to portable form on the way in.
func (it *Item) UnmarshalJSON(raw []byte) error {
	var w itemWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return err
	}
	if w.StartPage < 1 {
		w.StartPage = 1
	}
	if w.EndPage != nil && *w.EndPage < 1 {
		w.EndPage = nil
	}
	w.Path = pathutil.ToPortable(w.Path)
	*it = Item(w)
	return nil
}

// NativePath returns the item's path in the current platform's native
// form, ready to open.
func (it Item) NativePath() string {
	return pathutil.ToNative(it.Path)
}

// Resolve maps the item's 1-based inclusive page range onto a document
// with pageCount pages, returning 0-based inclusive bounds. A start
// beyond the document falls back to the first page, an open or
// oversized end clamps to the last page, and a range left crossed by
// the clamping collapses to the single start page.
func (it Item) Resolve(pageCount int) (start, end int) {
	if pageCount < 1 {
		return 0, 0
	}
	start = it.StartPage - 1
	if start < 0 || start >= pageCount {
		start = 0
	}
	end = pageCount - 1
	if it.EndPage != nil {
		end = *it.EndPage - 1
		if end > pageCount-1 {
			end = pageCount - 1
		}
	}
	if end < start {
		end = start
	}
	return start, end
}

// Document is the on-disk shape: setlist name to ordered items.
type Document map[string][]Item

// Manager owns the setlist document for an app session. It loads once
// and writes the whole document back after every mutation.
type Manager struct {
	path string
	doc  Document
}

// DefaultPath returns the setlist document location inside the app data
// directory.
func DefaultPath() string {
	return filepath.Join(util.DataDir(), "setlists.json")
}

// Load reads the setlist document at path. A missing file yields an
// empty document. A corrupt one is reported through the returned error
// and treated as empty, with the bytes on disk preserved; the manager
// stays usable either way.
func Load(path string) (*Manager, error) {
	doc, err := docstore.Load(path, Document{})
	if doc == nil {
		doc = Document{}
	}
	return &Manager{path: path, doc: doc}, err
}

// Path returns where the document persists.
func (m *Manager) Path() string { return m.path }

// Names returns the setlist names, sorted case-insensitively.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.doc))
	for n := range m.doc {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// Items returns a copy of the named setlist's entries.
func (m *Manager) Items(name string) ([]Item, error) {
	items, ok := m.doc[name]
	if !ok {
		return nil, fmt.Errorf("setlist %q: %w", name, util.ErrNotFound)
	}
	return append([]Item(nil), items...), nil
}

// Create adds an empty setlist. Names are unique by contract; creating
// an existing name resets it (last write wins).
func (m *Manager) Create(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("empty setlist name")
	}
	m.doc[name] = []Item{}
	return m.save()
}

// Rename moves a setlist to a new name, replacing whatever list already
// held that name.
func (m *Manager) Rename(oldName, newName string) error {
	items, ok := m.doc[oldName]
	if !ok {
		return fmt.Errorf("setlist %q: %w", oldName, util.ErrNotFound)
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("empty setlist name")
	}
	if newName == oldName {
		return nil
	}
	delete(m.doc, oldName)
	m.doc[newName] = items
	return m.save()
}

// Delete removes a setlist outright.
func (m *Manager) Delete(name string) error {
	if _, ok := m.doc[name]; !ok {
		return fmt.Errorf("setlist %q: %w", name, util.ErrNotFound)
	}
	delete(m.doc, name)
	return m.save()
}

// Add appends an item, normalizing its path to portable form and its
// page bounds to valid values.
func (m *Manager) Add(name string, item Item) error {
	items, ok := m.doc[name]
	if !ok {
		return fmt.Errorf("setlist %q: %w", name, util.ErrNotFound)
	}
	item.Path = pathutil.ToPortable(item.Path)
	if item.StartPage < 1 {
		item.StartPage = 1
	}
	if item.EndPage != nil && *item.EndPage < 1 {
		item.EndPage = nil
	}
	m.doc[name] = append(items, item)
	return m.save()
}

// Remove drops the item at index.
func (m *Manager) Remove(name string, index int) error {
	items, ok := m.doc[name]
	if !ok {
		return fmt.Errorf("setlist %q: %w", name, util.ErrNotFound)
	}
	if index < 0 || index >= len(items) {
		return fmt.Errorf("index %d of %q (%d items): %w", index, name, len(items), util.ErrOutOfRange)
	}
	m.doc[name] = append(items[:index], items[index+1:]...)
	return m.save()
}

// Move relocates the item at from to position to, keeping the relative
// order of everything else.
func (m *Manager) Move(name string, from, to int) error {
	items, ok := m.doc[name]
	if !ok {
		return fmt.Errorf("setlist %q: %w", name, util.ErrNotFound)
	}
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return fmt.Errorf("move %d to %d in %q (%d items): %w", from, to, name, len(items), util.ErrOutOfRange)
	}
	if from == to {
		return nil
	}
	it := items[from]
	items = append(items[:from], items[from+1:]...)
	items = append(items, Item{})
	copy(items[to+1:], items[to:])
	items[to] = it
	m.doc[name] = items
	return m.save()
}

func (m *Manager) save() error {
	return docstore.Save(m.path, m.doc)
}

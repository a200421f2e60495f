package setlist

import (
	"fmt"

	"github.com/franz/score-stand/internal/util"
)

// Session is the playback cursor over one setlist: a snapshot of its
// items and the current position. Absence of a session is library
// browsing mode; holding one is setlist playback mode. Sessions are
// never persisted.
type Session struct {
	Name string

	items []Item
	index int
}

// Start opens a playback session over the named setlist, beginning at
// fromIndex clamped into range. An empty setlist cannot start a
// session.
func (m *Manager) Start(name string, fromIndex int) (*Session, error) {
	items, ok := m.doc[name]
	if !ok {
		return nil, fmt.Errorf("setlist %q: %w", name, util.ErrNotFound)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("setlist %q is empty: %w", name, util.ErrOutOfRange)
	}
	s := &Session{Name: name, items: append([]Item(nil), items...), index: fromIndex}
	if s.index < 0 {
		s.index = 0
	}
	if s.index >= len(s.items) {
		s.index = len(s.items) - 1
	}
	return s, nil
}

// Current returns the item under the cursor.
func (s *Session) Current() Item { return s.items[s.index] }

// Index returns the 0-based cursor position.
func (s *Session) Index() int { return s.index }

// Len returns the number of items in the session snapshot.
func (s *Session) Len() int { return len(s.items) }

// Next advances the cursor. At the last item it stays put and reports
// false.
func (s *Session) Next() bool {
	if s.index+1 >= len(s.items) {
		return false
	}
	s.index++
	return true
}

// Previous moves the cursor back. At the first item it stays put and
// reports false.
func (s *Session) Previous() bool {
	if s.index == 0 {
		return false
	}
	s.index--
	return true
}

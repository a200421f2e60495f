package util

import "errors"

// Sentinel errors for the recoverable conditions surfaced by the core.
// None of these is fatal: callers are expected to test with errors.Is,
// report, and continue with prior durable state intact.
var (
	// ErrCorrupt indicates a persisted document exists but cannot be
	// decoded. The on-disk bytes are always left untouched.
	ErrCorrupt = errors.New("corrupt document")

	// ErrUnwritable indicates a save failed before the atomic replace,
	// leaving any previous file content unchanged.
	ErrUnwritable = errors.New("destination not writable")

	// ErrNotFound indicates a named entity (setlist, indexed score) does
	// not exist. A missing file is not an error for document loads.
	ErrNotFound = errors.New("not found")

	// ErrOutOfRange indicates an index outside the valid bounds of a
	// sequence where clamping does not apply.
	ErrOutOfRange = errors.New("index out of range")

	// ErrNothingToUndo indicates an undo request against an empty stack.
	ErrNothingToUndo = errors.New("nothing to undo")
)

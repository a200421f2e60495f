package annot

// undoKind tags what an undo entry reverts.
type undoKind int

const (
	undoAdd    undoKind = iota // stroke or text appended
	undoEdit                   // text annotation rewritten
	undoErase                  // annotation removed
	undoRotate                 // page rotation changed
)

// undoEntry carries exactly the state needed to revert one mutation.
// The stack is chronological across the whole score session, cleared on
// load, with no redo.
type undoEntry struct {
	kind undoKind
	page int

	uuid         string     // undoAdd, undoEdit: which annotation
	prior        Annotation // undoEdit: value before the edit; undoErase: removed value
	index        int        // undoErase: original position in the page list
	prevRotation int        // undoRotate: previous quarter-turn count
}

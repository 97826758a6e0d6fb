// Package history implements the linear undo/redo log for one board
// session. Every entry pairs a forward command with its pre-computed
// inverse, so undoing never needs per-mutation inversion logic.
package history

import "mulberry/canvas/internal/board"

// Op tags what a command does when applied.
type Op int

const (
	OpAddNode Op = iota
	OpUpdateNode
	OpDeleteNode
	OpAddEdge
	OpUpdateEdge
	OpDeleteEdge
	OpMoveNodes
)

// Command is one replayable mutation. Applying a command makes the board
// state match the captured snapshot: adds re-insert the captured entity,
// updates overwrite with the captured state, moves set the captured
// positions. Edges carries the cascade-deleted edges restored alongside
// a node re-add.
type Command struct {
	Op        Op
	Node      *board.Node
	Edge      *board.Edge
	Edges     []board.Edge
	Positions []board.PositionUpdate
}

// Entry is one reversible record: the mutation as applied and the
// command that exactly reverts it.
type Entry struct {
	Forward Command
	Inverse Command
}

// Log is a linear stack of entries with a cursor one past the last
// applied entry. Recording after an undo truncates the redo tail.
type Log struct {
	entries []Entry
	cursor  int
}

// Record appends an entry at the cursor, discarding anything beyond it.
func (l *Log) Record(e Entry) {
	l.entries = append(l.entries[:l.cursor], e)
	l.cursor = len(l.entries)
}

// Undo steps the cursor back and returns the inverse command to apply.
func (l *Log) Undo() (Command, bool) {
	if l.cursor == 0 {
		return Command{}, false
	}
	l.cursor--
	return l.entries[l.cursor].Inverse, true
}

// Redo returns the forward command at the cursor and advances it.
func (l *Log) Redo() (Command, bool) {
	if l.cursor >= len(l.entries) {
		return Command{}, false
	}
	cmd := l.entries[l.cursor].Forward
	l.cursor++
	return cmd, true
}

func (l *Log) CanUndo() bool { return l.cursor > 0 }
func (l *Log) CanRedo() bool { return l.cursor < len(l.entries) }

// Len returns the number of recorded entries.
func (l *Log) Len() int { return len(l.entries) }

// Clear drops all entries. Called when a different board loads.
func (l *Log) Clear() {
	l.entries = l.entries[:0]
	l.cursor = 0
}

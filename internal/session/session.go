// Package session owns the edit state of one open diagram board: the
// canonical node/edge lists, selection, layers and the undo/redo log.
// It is the only component that talks to the persistence backend.
package session

import (
	"fmt"
	"sync"

	"mulberry/canvas/internal/backend"
	"mulberry/canvas/internal/board"
	"mulberry/canvas/internal/history"
)

// Session is an explicitly constructed edit session. Construct one with
// New, point it at a board with Open, and pass it by reference to the
// canvas controller and UI. Mutations are serialized behind a mutex, so
// overlapping calls from different goroutines cannot interleave their
// read-merge-write cycles.
type Session struct {
	mu      sync.Mutex
	backend backend.Backend

	board  *board.Board
	nodes  []board.Node
	edges  []board.Edge
	sel    Selection
	layers Layers
	log    history.Log

	// err is the store-level error banner. Backend failures land here;
	// precondition failures stay silent.
	err string
}

// New returns a session with no board open.
func New(b backend.Backend) *Session {
	s := &Session{backend: b}
	s.layers.reset()
	return s
}

// ListBoards returns all board summaries from the backend.
func (s *Session) ListBoards() ([]board.Board, error) {
	boards, err := s.backend.ListBoards()
	if err != nil {
		return nil, s.fail("listing boards: %w", err)
	}
	return boards, nil
}

// CreateBoard creates a new board without opening it.
func (s *Session) CreateBoard(name, description string) (*board.Board, error) {
	b, err := s.backend.CreateBoard(name, description)
	if err != nil {
		return nil, s.fail("creating board: %w", err)
	}
	return b, nil
}

// Open loads a board's full node and edge sets and makes it current.
// Any previous board's selection and history are discarded.
func (s *Session) Open(boardID string) error {
	data, err := s.backend.GetBoard(boardID)
	if err != nil {
		return s.fail("opening board: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = &data.Board
	s.nodes = data.Nodes
	s.edges = data.Edges
	s.sel.Clear()
	s.log.Clear()
	s.layers.reset()
	for i := range s.nodes {
		s.layers.observe(s.nodes[i].LayerID)
	}
	return nil
}

// Close drops all local state. Pending history is lost.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = nil
	s.nodes = nil
	s.edges = nil
	s.sel.Clear()
	s.log.Clear()
	s.layers.reset()
	s.err = ""
}

// Board returns the currently open board, or nil.
func (s *Session) Board() *board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

// Nodes returns a copy of the current node list.
func (s *Session) Nodes() []board.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]board.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Edges returns a copy of the current edge list.
func (s *Session) Edges() []board.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]board.Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// Node returns the node with the given id, or nil if it is not in the
// local cache.
func (s *Session) Node(id string) *board.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.findNode(id); n != nil {
		out := *n
		return &out
	}
	return nil
}

// Edge returns the edge with the given id, or nil.
func (s *Session) Edge(id string) *board.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.findEdge(id); e != nil {
		out := *e
		return &out
	}
	return nil
}

// Rename updates the current board's name.
func (s *Session) Rename(name string) error {
	return s.updateBoard(board.BoardUpdate{Name: &name})
}

// SetViewport saves the current board's pan/zoom state.
func (s *Session) SetViewport(vp board.Viewport) error {
	return s.updateBoard(board.BoardUpdate{Viewport: &vp})
}

// SetArchived flags or unflags the current board as archived.
func (s *Session) SetArchived(archived bool) error {
	return s.updateBoard(board.BoardUpdate{Archived: &archived})
}

func (s *Session) updateBoard(upd board.BoardUpdate) error {
	s.mu.Lock()
	if s.board == nil {
		s.mu.Unlock()
		return nil
	}
	id := s.board.ID
	s.mu.Unlock()

	updated, err := s.backend.UpdateBoard(id, upd)
	if err != nil {
		return s.fail("updating board: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board != nil && s.board.ID == id {
		s.board = updated
	}
	return nil
}

// DeleteBoard deletes a board. Deleting the currently open board clears
// all local state.
func (s *Session) DeleteBoard(boardID string) error {
	if err := s.backend.DeleteBoard(boardID); err != nil {
		return s.fail("deleting board: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board != nil && s.board.ID == boardID {
		s.board = nil
		s.nodes = nil
		s.edges = nil
		s.sel.Clear()
		s.log.Clear()
		s.layers.reset()
	}
	return nil
}

// Err returns the current store-level error message, or "".
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ClearErr dismisses the error banner.
func (s *Session) ClearErr() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// fail wraps a backend error and mirrors it into the error banner.
func (s *Session) fail(format string, err error) error {
	wrapped := fmt.Errorf(format, err)
	s.mu.Lock()
	s.err = wrapped.Error()
	s.mu.Unlock()
	return wrapped
}

func (s *Session) findNode(id string) *board.Node {
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			return &s.nodes[i]
		}
	}
	return nil
}

func (s *Session) findEdge(id string) *board.Edge {
	for i := range s.edges {
		if s.edges[i].ID == id {
			return &s.edges[i]
		}
	}
	return nil
}

// currentBoardID returns the open board's id under lock, or "".
func (s *Session) currentBoardID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return ""
	}
	return s.board.ID
}

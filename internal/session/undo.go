package session

import (
	"fmt"

	"mulberry/canvas/internal/board"
	"mulberry/canvas/internal/history"
)

// Undo reverts the most recent recorded mutation. With nothing to undo
// it is a silent no-op.
func (s *Session) Undo() error {
	s.mu.Lock()
	cmd, ok := s.log.Undo()
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.applyCommand(cmd)
}

// Redo re-applies the most recently undone mutation.
func (s *Session) Redo() error {
	s.mu.Lock()
	cmd, ok := s.log.Redo()
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.applyCommand(cmd)
}

// CanUndo reports whether an undo entry is available.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.CanUndo()
}

// CanRedo reports whether a redo entry is available.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.CanRedo()
}

// applyCommand replays a history command against the backend and local
// state without recording a new entry. Restored nodes and edges keep
// their original ids, so edges across an undo boundary stay valid.
func (s *Session) applyCommand(cmd history.Command) error {
	boardID := s.currentBoardID()
	if boardID == "" {
		return nil
	}

	switch cmd.Op {
	case history.OpAddNode:
		if err := s.backend.RestoreNode(*cmd.Node); err != nil {
			return s.fail("restoring node: %w", err)
		}
		for _, e := range cmd.Edges {
			if err := s.backend.RestoreEdge(e); err != nil {
				return s.fail("restoring edge: %w", err)
			}
		}
		s.mu.Lock()
		s.nodes = append(s.nodes, *cmd.Node)
		s.edges = append(s.edges, cmd.Edges...)
		s.mu.Unlock()

	case history.OpDeleteNode:
		if err := s.backend.DeleteNode(cmd.Node.ID); err != nil {
			return s.fail("deleting node: %w", err)
		}
		s.mu.Lock()
		s.removeNodeLocked(cmd.Node.ID)
		s.mu.Unlock()

	case history.OpUpdateNode:
		n := cmd.Node
		upd := board.NodeUpdate{
			X: &n.X, Y: &n.Y, W: &n.W, H: &n.H,
			ZIndex:  &n.ZIndex,
			GroupID: &n.GroupID,
			LayerID: &n.LayerID,
			Payload: n.Payload,
		}
		updated, err := s.backend.UpdateNode(n.ID, upd)
		if err != nil {
			return s.fail("updating node: %w", err)
		}
		s.mu.Lock()
		if local := s.findNode(n.ID); local != nil {
			*local = *updated
		}
		s.mu.Unlock()

	case history.OpMoveNodes:
		if err := s.backend.BulkUpdatePositions(boardID, cmd.Positions); err != nil {
			return s.fail("moving nodes: %w", err)
		}
		s.mu.Lock()
		for _, u := range cmd.Positions {
			if n := s.findNode(u.ID); n != nil {
				n.X = u.X
				n.Y = u.Y
			}
		}
		s.mu.Unlock()

	case history.OpAddEdge:
		if err := s.backend.RestoreEdge(*cmd.Edge); err != nil {
			return s.fail("restoring edge: %w", err)
		}
		s.mu.Lock()
		s.edges = append(s.edges, *cmd.Edge)
		s.mu.Unlock()

	case history.OpDeleteEdge:
		if err := s.backend.DeleteEdge(cmd.Edge.ID); err != nil {
			return s.fail("deleting edge: %w", err)
		}
		s.mu.Lock()
		edges := make([]board.Edge, 0, len(s.edges))
		for _, e := range s.edges {
			if e.ID != cmd.Edge.ID {
				edges = append(edges, e)
			}
		}
		s.edges = edges
		s.mu.Unlock()

	case history.OpUpdateEdge:
		e := cmd.Edge
		upd := board.EdgeUpdate{
			SourceHandle: &e.SourceHandle,
			TargetHandle: &e.TargetHandle,
			Type:         &e.Type,
			Style:        &e.Style,
		}
		updated, err := s.backend.UpdateEdge(e.ID, upd)
		if err != nil {
			return s.fail("updating edge: %w", err)
		}
		s.mu.Lock()
		if local := s.findEdge(e.ID); local != nil {
			*local = *updated
		}
		s.mu.Unlock()

	default:
		return s.fail("replaying history: %w", fmt.Errorf("unknown op %d", cmd.Op))
	}
	return nil
}

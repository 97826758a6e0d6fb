package session

import (
	"mulberry/canvas/internal/backend"
	"mulberry/canvas/internal/board"
	"mulberry/canvas/internal/geom"
	"mulberry/canvas/internal/history"
)

// DuplicateOffset is how far a duplicated node lands from its original.
const DuplicateOffset = 30

// Swimlane wrapping adds breathing room around the wrapped nodes plus a
// header strip for the lane label.
const (
	swimlanePadding = 40
	swimlaneHeader  = 40
)

// AddNode creates a node on the current board. The backend assigns id
// and z-index; on success the node is appended to the local list and an
// undo entry recorded. New nodes land on the active layer.
func (s *Session) AddNode(typ board.NodeType, x, y, w, h float64, payload board.Payload) (*board.Node, error) {
	boardID := s.currentBoardID()
	if boardID == "" {
		return nil, nil
	}

	layerID := s.ActiveLayer()
	if layerID == DefaultLayerID {
		layerID = ""
	}
	created, err := s.backend.AddNode(backend.NewNode{
		BoardID: boardID,
		Type:    typ,
		X:       x, Y: y, W: w, H: h,
		LayerID: layerID,
		Payload: payload,
	})
	if err != nil {
		return nil, s.fail("adding node: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil || s.board.ID != boardID {
		return created, nil
	}
	s.nodes = append(s.nodes, *created)
	snapshot := *created
	s.log.Record(history.Entry{
		Forward: history.Command{Op: history.OpAddNode, Node: &snapshot},
		Inverse: history.Command{Op: history.OpDeleteNode, Node: &snapshot},
	})
	return created, nil
}

// UpdateNode merges a partial update into a node. Unknown ids are a
// silent no-op. The entry records full before/after snapshots so undo
// needs no per-field logic.
func (s *Session) UpdateNode(nodeID string, upd board.NodeUpdate) error {
	prev := s.Node(nodeID)
	if prev == nil {
		return nil
	}
	boardID := s.currentBoardID()

	updated, err := s.backend.UpdateNode(nodeID, upd)
	if err != nil {
		return s.fail("updating node: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil || s.board.ID != boardID {
		return nil
	}
	if n := s.findNode(nodeID); n != nil {
		*n = *updated
	}
	after := *updated
	s.log.Record(history.Entry{
		Forward: history.Command{Op: history.OpUpdateNode, Node: &after},
		Inverse: history.Command{Op: history.OpUpdateNode, Node: prev},
	})
	return nil
}

// DeleteNode removes a node and every edge referencing it. The undo
// entry captures the cascade-deleted edges so one undo restores all of
// it.
func (s *Session) DeleteNode(nodeID string) error {
	prev := s.Node(nodeID)
	if prev == nil {
		return nil
	}
	boardID := s.currentBoardID()

	s.mu.Lock()
	var cascade []board.Edge
	for _, e := range s.edges {
		if e.References(nodeID) {
			cascade = append(cascade, e)
		}
	}
	s.mu.Unlock()

	if err := s.backend.DeleteNode(nodeID); err != nil {
		return s.fail("deleting node: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil || s.board.ID != boardID {
		return nil
	}
	s.removeNodeLocked(nodeID)
	s.log.Record(history.Entry{
		Forward: history.Command{Op: history.OpDeleteNode, Node: prev},
		Inverse: history.Command{Op: history.OpAddNode, Node: prev, Edges: cascade},
	})
	return nil
}

// removeNodeLocked drops a node, its edges and any selection references.
// Caller holds the mutex.
func (s *Session) removeNodeLocked(nodeID string) {
	nodes := make([]board.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		if n.ID != nodeID {
			nodes = append(nodes, n)
		}
	}
	s.nodes = nodes

	edges := make([]board.Edge, 0, len(s.edges))
	for _, e := range s.edges {
		if !e.References(nodeID) {
			edges = append(edges, e)
		}
	}
	s.edges = edges

	sel := s.sel.nodeIDs[:0]
	for _, id := range s.sel.nodeIDs {
		if id != nodeID {
			sel = append(sel, id)
		}
	}
	s.sel.nodeIDs = sel
}

// MoveNodes persists a set of final node positions in one backend round
// trip and records them as a single undo entry, so a grouped drag
// reverts with one undo.
func (s *Session) MoveNodes(updates []board.PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	boardID := s.currentBoardID()
	if boardID == "" {
		return nil
	}

	s.mu.Lock()
	var before, after []board.PositionUpdate
	for _, u := range updates {
		n := s.findNode(u.ID)
		if n == nil {
			continue
		}
		before = append(before, board.PositionUpdate{ID: u.ID, X: n.X, Y: n.Y})
		after = append(after, u)
	}
	s.mu.Unlock()
	if len(after) == 0 {
		return nil
	}

	if err := s.backend.BulkUpdatePositions(boardID, after); err != nil {
		return s.fail("moving nodes: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil || s.board.ID != boardID {
		return nil
	}
	for _, u := range after {
		if n := s.findNode(u.ID); n != nil {
			n.X = u.X
			n.Y = u.Y
		}
	}
	s.log.Record(history.Entry{
		Forward: history.Command{Op: history.OpMoveNodes, Positions: after},
		Inverse: history.Command{Op: history.OpMoveNodes, Positions: before},
	})
	return nil
}

// Duplicate copies each named node, offset by +30/+30, and returns the
// new nodes. Each copy goes through AddNode and is individually
// undoable.
func (s *Session) Duplicate(nodeIDs []string) ([]board.Node, error) {
	var out []board.Node
	for _, id := range nodeIDs {
		n := s.Node(id)
		if n == nil {
			continue
		}
		copied, err := s.AddNode(n.Type, n.X+DuplicateOffset, n.Y+DuplicateOffset, n.W, n.H, n.Payload)
		if err != nil {
			return out, err
		}
		if copied != nil {
			out = append(out, *copied)
		}
	}
	return out, nil
}

func (s *Session) zRange() (minZ, maxZ int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.nodes) == 0 {
		return 0, 0
	}
	minZ, maxZ = s.nodes[0].ZIndex, s.nodes[0].ZIndex
	for _, n := range s.nodes[1:] {
		if n.ZIndex < minZ {
			minZ = n.ZIndex
		}
		if n.ZIndex > maxZ {
			maxZ = n.ZIndex
		}
	}
	return minZ, maxZ
}

// BringToFront raises a node above every other node on the board.
func (s *Session) BringToFront(nodeID string) error {
	if s.Node(nodeID) == nil {
		return nil
	}
	_, maxZ := s.zRange()
	z := maxZ + 1
	return s.UpdateNode(nodeID, board.NodeUpdate{ZIndex: &z})
}

// SendToBack lowers a node below every other node on the board.
func (s *Session) SendToBack(nodeID string) error {
	if s.Node(nodeID) == nil {
		return nil
	}
	minZ, _ := s.zRange()
	z := minZ - 1
	return s.UpdateNode(nodeID, board.NodeUpdate{ZIndex: &z})
}

// WrapSelectionInSwimlane adds a swimlane node behind the selected
// nodes, sized to their bounding box plus padding and a header strip.
func (s *Session) WrapSelectionInSwimlane(label string) (*board.Node, error) {
	ids := s.SelectedNodes()
	if len(ids) == 0 {
		return nil, nil
	}

	var rects []geom.Rect
	for _, id := range ids {
		if n := s.Node(id); n != nil {
			rects = append(rects, n.Bounds())
		}
	}
	if len(rects) == 0 {
		return nil, nil
	}
	bbox := geom.BoundsOf(rects)

	lane, err := s.AddNode(board.NodeSwimlane,
		bbox.X-swimlanePadding,
		bbox.Y-swimlanePadding-swimlaneHeader,
		bbox.W+2*swimlanePadding,
		bbox.H+2*swimlanePadding+swimlaneHeader,
		board.SwimlanePayload{Label: label, Orientation: "horizontal"})
	if err != nil || lane == nil {
		return nil, err
	}

	minZ, _ := s.zRange()
	z := minZ - 1
	if err := s.UpdateNode(lane.ID, board.NodeUpdate{ZIndex: &z}); err != nil {
		return lane, err
	}
	return s.Node(lane.ID), nil
}

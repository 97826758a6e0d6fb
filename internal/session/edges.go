package session

import (
	"mulberry/canvas/internal/backend"
	"mulberry/canvas/internal/board"
	"mulberry/canvas/internal/geom"
	"mulberry/canvas/internal/history"
)

// AddEdge connects two nodes on the current board. Both endpoints must
// already exist locally; otherwise the call is a silent no-op.
func (s *Session) AddEdge(source, target, sourceHandle, targetHandle string, typ board.EdgeType, style board.EdgeStyle) (*board.Edge, error) {
	boardID := s.currentBoardID()
	if boardID == "" {
		return nil, nil
	}
	if s.Node(source) == nil || s.Node(target) == nil {
		return nil, nil
	}

	created, err := s.backend.AddEdge(backend.NewEdge{
		BoardID:      boardID,
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
		Type:         typ,
		Style:        style,
	})
	if err != nil {
		return nil, s.fail("adding edge: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil || s.board.ID != boardID {
		return created, nil
	}
	s.edges = append(s.edges, *created)
	snapshot := *created
	s.log.Record(history.Entry{
		Forward: history.Command{Op: history.OpAddEdge, Edge: &snapshot},
		Inverse: history.Command{Op: history.OpDeleteEdge, Edge: &snapshot},
	})
	return created, nil
}

// UpdateEdge merges a partial update into an edge. Unknown ids are a
// silent no-op.
func (s *Session) UpdateEdge(edgeID string, upd board.EdgeUpdate) error {
	prev := s.Edge(edgeID)
	if prev == nil {
		return nil
	}
	boardID := s.currentBoardID()

	updated, err := s.backend.UpdateEdge(edgeID, upd)
	if err != nil {
		return s.fail("updating edge: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil || s.board.ID != boardID {
		return nil
	}
	if e := s.findEdge(edgeID); e != nil {
		*e = *updated
	}
	after := *updated
	s.log.Record(history.Entry{
		Forward: history.Command{Op: history.OpUpdateEdge, Edge: &after},
		Inverse: history.Command{Op: history.OpUpdateEdge, Edge: prev},
	})
	return nil
}

// AddEdgeWaypoint inserts a manual routing waypoint at the clicked
// point, placed into the waypoint list at the path segment nearest to
// it.
func (s *Session) AddEdgeWaypoint(edgeID string, at geom.Pt) error {
	e := s.Edge(edgeID)
	if e == nil {
		return nil
	}
	src := s.Node(e.Source)
	dst := s.Node(e.Target)
	if src == nil || dst == nil {
		return nil
	}

	points := make([]geom.Pt, 0, len(e.Style.Waypoints)+2)
	points = append(points, src.Bounds().Center())
	points = append(points, e.Style.Waypoints...)
	points = append(points, dst.Bounds().Center())
	seg := geom.NearestSegment(at, points)

	wps := make([]geom.Pt, 0, len(e.Style.Waypoints)+1)
	wps = append(wps, e.Style.Waypoints[:seg]...)
	wps = append(wps, at)
	wps = append(wps, e.Style.Waypoints[seg:]...)

	style := e.Style
	style.Waypoints = wps
	return s.UpdateEdge(edgeID, board.EdgeUpdate{Style: &style})
}

// ClearEdgeWaypoints removes all manual routing from an edge.
func (s *Session) ClearEdgeWaypoints(edgeID string) error {
	e := s.Edge(edgeID)
	if e == nil || !e.HasWaypoints() {
		return nil
	}
	style := e.Style
	style.Waypoints = nil
	return s.UpdateEdge(edgeID, board.EdgeUpdate{Style: &style})
}

// DeleteEdge removes a single edge.
func (s *Session) DeleteEdge(edgeID string) error {
	prev := s.Edge(edgeID)
	if prev == nil {
		return nil
	}
	boardID := s.currentBoardID()

	if err := s.backend.DeleteEdge(edgeID); err != nil {
		return s.fail("deleting edge: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil || s.board.ID != boardID {
		return nil
	}
	edges := make([]board.Edge, 0, len(s.edges))
	for _, e := range s.edges {
		if e.ID != edgeID {
			edges = append(edges, e)
		}
	}
	s.edges = edges

	sel := s.sel.edgeIDs[:0]
	for _, id := range s.sel.edgeIDs {
		if id != edgeID {
			sel = append(sel, id)
		}
	}
	s.sel.edgeIDs = sel

	s.log.Record(history.Entry{
		Forward: history.Command{Op: history.OpDeleteEdge, Edge: prev},
		Inverse: history.Command{Op: history.OpAddEdge, Edge: prev},
	})
	return nil
}

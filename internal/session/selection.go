package session

import (
	"github.com/google/uuid"

	"mulberry/canvas/internal/board"
)

// Selection is the transient set of selected node and edge ids, replaced
// wholesale on every selection change. It is never persisted.
type Selection struct {
	nodeIDs []string
	edgeIDs []string
}

func (sel *Selection) Clear() {
	sel.nodeIDs = nil
	sel.edgeIDs = nil
}

func (sel *Selection) hasNode(id string) bool {
	for _, n := range sel.nodeIDs {
		if n == id {
			return true
		}
	}
	return false
}

// SetSelection replaces the selection with the given id sets.
func (s *Session) SetSelection(nodeIDs, edgeIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.nodeIDs = append([]string(nil), nodeIDs...)
	s.sel.edgeIDs = append([]string(nil), edgeIDs...)
}

// ClearSelection empties both selection sets.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Clear()
}

// SelectedNodes returns the selected node ids in selection order.
func (s *Session) SelectedNodes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sel.nodeIDs...)
}

// SelectedEdges returns the selected edge ids in selection order.
func (s *Session) SelectedEdges() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sel.edgeIDs...)
}

// IsSelected reports whether the node is in the current selection.
func (s *Session) IsSelected(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.hasNode(nodeID)
}

// Group tags every named node with one fresh group id so they move
// together. Fewer than two ids is a no-op. Each node is updated through
// the normal node-update path, so grouping produces one history entry
// per member rather than a single atomic entry.
func (s *Session) Group(nodeIDs []string) error {
	if len(nodeIDs) < 2 {
		return nil
	}
	tag := uuid.NewString()
	for _, id := range nodeIDs {
		if s.Node(id) == nil {
			continue
		}
		if err := s.UpdateNode(id, board.NodeUpdate{GroupID: &tag}); err != nil {
			return err
		}
	}
	return nil
}

// UngroupOne removes the group tag from exactly one node.
func (s *Session) UngroupOne(nodeID string) error {
	n := s.Node(nodeID)
	if n == nil || n.GroupID == "" {
		return nil
	}
	empty := ""
	return s.UpdateNode(nodeID, board.NodeUpdate{GroupID: &empty})
}

// UngroupAll removes the tag from every node currently carrying it.
func (s *Session) UngroupAll(groupID string) error {
	if groupID == "" {
		return nil
	}
	empty := ""
	for _, id := range s.GroupMembers(groupID) {
		if err := s.UpdateNode(id, board.NodeUpdate{GroupID: &empty}); err != nil {
			return err
		}
	}
	return nil
}

// GroupMembers returns the ids of every node carrying the given tag, in
// node list order.
func (s *Session) GroupMembers(groupID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	if groupID == "" {
		return ids
	}
	for i := range s.nodes {
		if s.nodes[i].GroupID == groupID {
			ids = append(ids, s.nodes[i].ID)
		}
	}
	return ids
}

package canvas

import (
	"mulberry/canvas/internal/board"
)

// Nudge steps, in pixels.
const (
	NudgeStep      = 1
	NudgeStepLarge = 10
)

// Nudge moves every selected node by (dx, dy) pixels as one undoable
// step. Locked-layer nodes are skipped. Callers pass multiples of
// NudgeStep or NudgeStepLarge for shift-arrow.
func (c *Controller) Nudge(dx, dy float64) error {
	if c.viewOnly {
		return nil
	}
	var updates []board.PositionUpdate
	for _, id := range c.s.SelectedNodes() {
		n := c.s.Node(id)
		if n == nil || c.s.NodeLocked(n) {
			continue
		}
		updates = append(updates, board.PositionUpdate{ID: id, X: n.X + dx, Y: n.Y + dy})
	}
	return c.s.MoveNodes(updates)
}

// DeleteSelection removes every selected node and edge. Node deletion
// cascades to connected edges, so an edge both selected and connected
// to a selected node is gone either way.
func (c *Controller) DeleteSelection() error {
	if c.viewOnly {
		return nil
	}
	edgeIDs := c.s.SelectedEdges()
	nodeIDs := c.s.SelectedNodes()
	for _, id := range edgeIDs {
		if err := c.s.DeleteEdge(id); err != nil {
			return err
		}
	}
	for _, id := range nodeIDs {
		if err := c.s.DeleteNode(id); err != nil {
			return err
		}
	}
	c.s.ClearSelection()
	return nil
}

// SelectAll selects every visible node and every edge.
func (c *Controller) SelectAll() {
	var nodeIDs []string
	nodes := c.s.Nodes()
	for i := range nodes {
		if c.s.NodeVisible(&nodes[i]) {
			nodeIDs = append(nodeIDs, nodes[i].ID)
		}
	}
	var edgeIDs []string
	for _, e := range c.s.Edges() {
		edgeIDs = append(edgeIDs, e.ID)
	}
	c.s.SetSelection(nodeIDs, edgeIDs)
}

// Escape cancels any in-flight drag and clears the selection.
func (c *Controller) Escape() {
	c.CancelDrag()
	c.s.ClearSelection()
}

// Undo reverts the last mutation unless the canvas is locked.
func (c *Controller) Undo() error {
	if c.viewOnly {
		return nil
	}
	return c.s.Undo()
}

// Redo re-applies the last undone mutation unless the canvas is locked.
func (c *Controller) Redo() error {
	if c.viewOnly {
		return nil
	}
	return c.s.Redo()
}

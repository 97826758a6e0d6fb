// Package canvas translates pointer and keyboard input into session
// mutations: drag with live snap guides, grouped movement, duplicate on
// modifier drag, nudging and clipboard operations.
package canvas

import (
	"mulberry/canvas/internal/board"
	"mulberry/canvas/internal/geom"
	"mulberry/canvas/internal/session"
)

// Controller drives one session's canvas interactions. It is not safe
// for concurrent use; the event loop owns it.
type Controller struct {
	s    *session.Session
	clip Clipboard

	viewOnly      bool
	snapThreshold float64

	drag *dragState
}

// dragState is the in-flight bookkeeping of one drag gesture. Positions
// are local only until DragStop persists them.
type dragState struct {
	anchor    string
	ids       []string
	start     map[string]geom.Pt
	pos       map[string]geom.Pt
	duplicate bool
	guides    []geom.Guide
}

// New returns a controller for the session. A nil clipboard disables
// copy/cut/paste.
func New(s *session.Session, clip Clipboard) *Controller {
	return &Controller{s: s, clip: clip, snapThreshold: geom.SnapThreshold}
}

// SetSnapThreshold overrides the snap distance. Zero or negative
// disables snapping.
func (c *Controller) SetSnapThreshold(px float64) { c.snapThreshold = px }

// SetViewOnly toggles the locked mode. While set, every mutating
// interaction is a no-op; selection and inspection still work.
func (c *Controller) SetViewOnly(v bool) {
	c.viewOnly = v
	if v {
		c.drag = nil
	}
}

// ViewOnly reports whether the canvas is locked.
func (c *Controller) ViewOnly() bool { return c.viewOnly }

// Dragging reports whether a drag gesture is in flight.
func (c *Controller) Dragging() bool { return c.drag != nil }

// Guides returns the alignment guides of the current drag frame.
func (c *Controller) Guides() []geom.Guide {
	if c.drag == nil {
		return nil
	}
	return c.drag.guides
}

// DragPosition returns a node's in-flight position during a drag, and
// whether the node is part of the gesture. Renderers draw dragged nodes
// from here instead of session state.
func (c *Controller) DragPosition(nodeID string) (geom.Pt, bool) {
	if c.drag == nil {
		return geom.Pt{}, false
	}
	p, ok := c.drag.pos[nodeID]
	return p, ok
}

// DragStart begins dragging a node. When the node carries a group tag
// with at least one other member, the whole group is dragged. With
// duplicate set, DragStop creates copies at the drop position and the
// originals keep their pre-drag positions. Returns false when nothing
// starts: view-only mode, unknown node, or a locked or hidden layer.
func (c *Controller) DragStart(nodeID string, duplicate bool) bool {
	if c.viewOnly || c.drag != nil {
		return false
	}
	n := c.s.Node(nodeID)
	if n == nil || c.s.NodeLocked(n) || !c.s.NodeVisible(n) {
		return false
	}

	ids := []string{nodeID}
	if n.GroupID != "" {
		if members := c.s.GroupMembers(n.GroupID); len(members) >= 2 {
			ids = members
		}
	}

	d := &dragState{
		anchor:    nodeID,
		ids:       ids,
		start:     make(map[string]geom.Pt, len(ids)),
		pos:       make(map[string]geom.Pt, len(ids)),
		duplicate: duplicate,
	}
	for _, id := range ids {
		m := c.s.Node(id)
		if m == nil {
			continue
		}
		p := geom.Pt{X: m.X, Y: m.Y}
		d.start[id] = p
		d.pos[id] = p
	}
	c.drag = d
	return true
}

// DragMove applies the anchor's total displacement since drag start,
// snaps the anchor's candidate rectangle against the stationary nodes
// and translates every dragged node by the snapped delta. Guides are
// recomputed each call.
func (c *Controller) DragMove(dx, dy float64) {
	d := c.drag
	if d == nil {
		return
	}

	anchor := c.s.Node(d.anchor)
	if anchor == nil {
		c.drag = nil
		return
	}
	start := d.start[d.anchor]
	candidate := anchor.Bounds()
	candidate.X = start.X + dx
	candidate.Y = start.Y + dy

	d.guides = nil
	if c.snapThreshold > 0 {
		res := geom.Snap(candidate, c.snapTargets(d), c.snapThreshold)
		dx += res.DX
		dy += res.DY
		d.guides = res.Guides
	}

	for id, p := range d.start {
		d.pos[id] = geom.Pt{X: p.X + dx, Y: p.Y + dy}
	}
}

// snapTargets returns the rectangles the drag aligns against: every
// node that is not part of the gesture and not on a hidden layer.
func (c *Controller) snapTargets(d *dragState) []geom.Rect {
	nodes := c.s.Nodes()
	var out []geom.Rect
	for i := range nodes {
		n := &nodes[i]
		if _, dragged := d.start[n.ID]; dragged {
			continue
		}
		if !c.s.NodeVisible(n) {
			continue
		}
		out = append(out, n.Bounds())
	}
	return out
}

// DragStop ends the gesture. A plain drag persists every member's final
// position as one bulk update; a duplicate drag instead creates copies
// at the drop positions and leaves the originals untouched.
func (c *Controller) DragStop() error {
	d := c.drag
	c.drag = nil
	if d == nil {
		return nil
	}

	if d.duplicate {
		var created []string
		for _, id := range d.ids {
			n := c.s.Node(id)
			if n == nil {
				continue
			}
			p := d.pos[id]
			copied, err := c.s.AddNode(n.Type, p.X, p.Y, n.W, n.H, n.Payload)
			if err != nil {
				return err
			}
			if copied != nil {
				created = append(created, copied.ID)
			}
		}
		c.s.SetSelection(created, nil)
		return nil
	}

	var updates []board.PositionUpdate
	for _, id := range d.ids {
		p, ok := d.pos[id]
		if !ok || p == d.start[id] {
			continue
		}
		updates = append(updates, board.PositionUpdate{ID: id, X: p.X, Y: p.Y})
	}
	return c.s.MoveNodes(updates)
}

// CancelDrag abandons the gesture without persisting anything.
func (c *Controller) CancelDrag() { c.drag = nil }

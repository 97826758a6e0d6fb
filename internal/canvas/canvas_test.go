package canvas

import (
	"testing"

	"mulberry/canvas/internal/backend"
	"mulberry/canvas/internal/board"
	"mulberry/canvas/internal/session"
)

// memClipboard is an in-process clipboard for tests.
type memClipboard struct {
	text string
}

func (m *memClipboard) ReadAll() (string, error) { return m.text, nil }

func (m *memClipboard) WriteAll(text string) error {
	m.text = text
	return nil
}

func newTestCanvas(t *testing.T) (*session.Session, *Controller, *memClipboard) {
	t.Helper()
	s := session.New(backend.NewMemory())
	b, err := s.CreateBoard("test", "")
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	if err := s.Open(b.ID); err != nil {
		t.Fatalf("Open: %v", err)
	}
	clip := &memClipboard{}
	return s, New(s, clip), clip
}

func addShape(t *testing.T, s *session.Session, x, y float64) *board.Node {
	t.Helper()
	n, err := s.AddNode(board.NodeShape, x, y, 0, 0, board.ShapePayload{Label: "box", Color: "#3b82f6"})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	return n
}

func TestDragSnapsToNeighbor(t *testing.T) {
	s, c, _ := newTestCanvas(t)
	addShape(t, s, 100, 100)
	moving := addShape(t, s, 300, 100)

	if !c.DragStart(moving.ID, false) {
		t.Fatal("DragStart refused")
	}
	// Target x would be 105; the stationary node's left edge at 100 is
	// 5px away, inside the threshold, so the drop lands at exactly 100.
	c.DragMove(-195, 0)
	if err := c.DragStop(); err != nil {
		t.Fatalf("DragStop: %v", err)
	}

	got := s.Node(moving.ID)
	if got.X != 100 {
		t.Errorf("X = %v after snapped drag, want 100", got.X)
	}
	if got.Y != 100 {
		t.Errorf("Y = %v, want 100", got.Y)
	}
}

func TestDragBeyondThresholdDoesNotSnap(t *testing.T) {
	s, c, _ := newTestCanvas(t)
	addShape(t, s, 100, 100)
	moving := addShape(t, s, 300, 300)

	c.DragStart(moving.ID, false)
	c.DragMove(-150, 0) // lands at x=150, 30px from any alignment
	if err := c.DragStop(); err != nil {
		t.Fatalf("DragStop: %v", err)
	}
	if got := s.Node(moving.ID); got.X != 150 {
		t.Errorf("X = %v, want 150", got.X)
	}
}

func TestDragShowsGuides(t *testing.T) {
	s, c, _ := newTestCanvas(t)
	addShape(t, s, 100, 100)
	moving := addShape(t, s, 300, 300)

	c.DragStart(moving.ID, false)
	c.DragMove(-197, 0)
	guides := c.Guides()
	if len(guides) == 0 {
		t.Fatal("no guides while aligned within threshold")
	}
	if !guides[0].Vertical {
		t.Error("left-left alignment should produce a vertical guide")
	}

	c.DragMove(-100, 0)
	if len(c.Guides()) != 0 {
		t.Error("guides persisted after moving out of alignment")
	}
	c.CancelDrag()
}

func TestGroupDragMovesAllMembers(t *testing.T) {
	s, c, _ := newTestCanvas(t)
	a := addShape(t, s, 0, 0)
	b := addShape(t, s, 200, 0)
	outsider := addShape(t, s, 1000, 1000)
	if err := s.Group([]string{a.ID, b.ID}); err != nil {
		t.Fatalf("Group: %v", err)
	}

	if !c.DragStart(a.ID, false) {
		t.Fatal("DragStart refused")
	}
	c.DragMove(500, 40)
	if err := c.DragStop(); err != nil {
		t.Fatalf("DragStop: %v", err)
	}

	if got := s.Node(a.ID); got.X != 500 || got.Y != 40 {
		t.Errorf("dragged member at (%v,%v), want (500,40)", got.X, got.Y)
	}
	if got := s.Node(b.ID); got.X != 700 || got.Y != 40 {
		t.Errorf("co-member at (%v,%v), want (700,40)", got.X, got.Y)
	}
	if got := s.Node(outsider.ID); got.X != 1000 || got.Y != 1000 {
		t.Errorf("non-member moved to (%v,%v)", got.X, got.Y)
	}

	// The whole group move is one history entry.
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := s.Node(a.ID); got.X != 0 || got.Y != 0 {
		t.Errorf("dragged member at (%v,%v) after undo, want (0,0)", got.X, got.Y)
	}
	if got := s.Node(b.ID); got.X != 200 || got.Y != 0 {
		t.Errorf("co-member at (%v,%v) after undo, want (200,0)", got.X, got.Y)
	}
}

func TestModifierDragDuplicates(t *testing.T) {
	s, c, _ := newTestCanvas(t)
	orig := addShape(t, s, 50, 50)

	if !c.DragStart(orig.ID, true) {
		t.Fatal("DragStart refused")
	}
	c.DragMove(400, 0)
	if err := c.DragStop(); err != nil {
		t.Fatalf("DragStop: %v", err)
	}

	if got := s.Node(orig.ID); got.X != 50 || got.Y != 50 {
		t.Errorf("original moved to (%v,%v)", got.X, got.Y)
	}
	nodes := s.Nodes()
	if len(nodes) != 2 {
		t.Fatalf("%d nodes after duplicate drag, want 2", len(nodes))
	}
	sel := s.SelectedNodes()
	if len(sel) != 1 {
		t.Fatalf("selection has %d nodes, want the copy", len(sel))
	}
	copied := s.Node(sel[0])
	if copied.ID == orig.ID {
		t.Error("selection still points at the original")
	}
	if copied.X != 450 || copied.Y != 50 {
		t.Errorf("copy at (%v,%v), want (450,50)", copied.X, copied.Y)
	}
}

func TestDragRefusedWhenLocked(t *testing.T) {
	s, c, _ := newTestCanvas(t)
	n := addShape(t, s, 0, 0)

	c.SetViewOnly(true)
	if c.DragStart(n.ID, false) {
		t.Error("DragStart accepted in view-only mode")
	}
	if err := c.Nudge(5, 0); err != nil {
		t.Fatalf("Nudge: %v", err)
	}
	if got := s.Node(n.ID); got.X != 0 {
		t.Error("nudge moved a node in view-only mode")
	}

	c.SetViewOnly(false)
	l := s.AddLayer("frozen")
	s.SetActiveLayer(l.ID)
	frozen := addShape(t, s, 10, 10)
	s.ToggleLock(l.ID)
	if c.DragStart(frozen.ID, false) {
		t.Error("DragStart accepted a locked-layer node")
	}
}

func TestHiddenLayerExcludedFromSnap(t *testing.T) {
	s, c, _ := newTestCanvas(t)
	l := s.AddLayer("hidden")
	s.SetActiveLayer(l.ID)
	addShape(t, s, 100, 100)
	s.SetActiveLayer(session.DefaultLayerID)
	moving := addShape(t, s, 300, 300)
	s.ToggleVisibility(l.ID)

	c.DragStart(moving.ID, false)
	c.DragMove(-197, 0) // would snap to the hidden node's left edge
	if err := c.DragStop(); err != nil {
		t.Fatalf("DragStop: %v", err)
	}
	if got := s.Node(moving.ID); got.X != 103 {
		t.Errorf("X = %v, want 103 (no snap against hidden layer)", got.X)
	}
}

func TestNudge(t *testing.T) {
	s, c, _ := newTestCanvas(t)
	n := addShape(t, s, 10, 10)
	s.SetSelection([]string{n.ID}, nil)

	if err := c.Nudge(NudgeStep, 0); err != nil {
		t.Fatalf("Nudge: %v", err)
	}
	if err := c.Nudge(0, -NudgeStepLarge); err != nil {
		t.Fatalf("Nudge: %v", err)
	}
	got := s.Node(n.ID)
	if got.X != 11 || got.Y != 0 {
		t.Errorf("node at (%v,%v), want (11,0)", got.X, got.Y)
	}

	// Each nudge is its own undo step.
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := s.Node(n.ID); got.Y != 10 {
		t.Errorf("Y = %v after one undo, want 10", got.Y)
	}
}

func TestDeleteSelection(t *testing.T) {
	s, c, _ := newTestCanvas(t)
	a := addShape(t, s, 0, 0)
	b := addShape(t, s, 100, 0)
	e, err := s.AddEdge(a.ID, b.ID, "", "", board.EdgeDefault, board.EdgeStyle{})
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	s.SetSelection([]string{a.ID}, []string{e.ID})
	if err := c.DeleteSelection(); err != nil {
		t.Fatalf("DeleteSelection: %v", err)
	}
	if s.Node(a.ID) != nil {
		t.Error("selected node survived")
	}
	if s.Edge(e.ID) != nil {
		t.Error("selected edge survived")
	}
	if s.Node(b.ID) == nil {
		t.Error("unselected node was deleted")
	}
}

func TestSelectAllSkipsHiddenLayers(t *testing.T) {
	s, c, _ := newTestCanvas(t)
	addShape(t, s, 0, 0)
	l := s.AddLayer("hidden")
	s.SetActiveLayer(l.ID)
	addShape(t, s, 100, 0)
	s.ToggleVisibility(l.ID)

	c.SelectAll()
	if got := len(s.SelectedNodes()); got != 1 {
		t.Errorf("selected %d nodes, want 1", got)
	}
}

func TestCopyPaste(t *testing.T) {
	s, c, _ := newTestCanvas(t)
	n := addShape(t, s, 20, 30)
	s.SetSelection([]string{n.ID}, nil)

	if err := c.Copy(); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if err := c.Paste(); err != nil {
		t.Fatalf("Paste: %v", err)
	}

	sel := s.SelectedNodes()
	if len(sel) != 1 {
		t.Fatalf("selection has %d nodes after paste, want 1", len(sel))
	}
	pasted := s.Node(sel[0])
	if pasted.ID == n.ID {
		t.Fatal("paste selected the original")
	}
	if pasted.X != 50 || pasted.Y != 60 {
		t.Errorf("pasted node at (%v,%v), want (50,60)", pasted.X, pasted.Y)
	}
	p, ok := pasted.Payload.(board.ShapePayload)
	if !ok {
		t.Fatalf("pasted payload is %T", pasted.Payload)
	}
	if p.Color != "#3b82f6" {
		t.Errorf("pasted color %q, want %q", p.Color, "#3b82f6")
	}
}

func TestCutRemovesOriginal(t *testing.T) {
	s, c, _ := newTestCanvas(t)
	n := addShape(t, s, 0, 0)
	s.SetSelection([]string{n.ID}, nil)

	if err := c.Cut(); err != nil {
		t.Fatalf("Cut: %v", err)
	}
	if s.Node(n.ID) != nil {
		t.Error("cut left the original in place")
	}
	if err := c.Paste(); err != nil {
		t.Fatalf("Paste: %v", err)
	}
	if got := len(s.Nodes()); got != 1 {
		t.Errorf("%d nodes after cut+paste, want 1", got)
	}
}

func TestPasteIgnoresForeignClipboard(t *testing.T) {
	s, c, clip := newTestCanvas(t)
	clip.text = "just some text"
	if err := c.Paste(); err != nil {
		t.Fatalf("Paste: %v", err)
	}
	if got := len(s.Nodes()); got != 0 {
		t.Errorf("%d nodes pasted from foreign clipboard text", got)
	}
}

package session

import (
	"errors"
	"strings"
	"testing"

	"mulberry/canvas/internal/backend"
	"mulberry/canvas/internal/board"
	"mulberry/canvas/internal/geom"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := New(backend.NewMemory())
	b, err := s.CreateBoard("test", "")
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	if err := s.Open(b.ID); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func addShape(t *testing.T, s *Session, x, y float64) *board.Node {
	t.Helper()
	n, err := s.AddNode(board.NodeShape, x, y, 0, 0, board.ShapePayload{Label: "box", Color: "#3b82f6"})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if n == nil {
		t.Fatal("AddNode returned nil node")
	}
	return n
}

func TestAddNodeUndoRedo(t *testing.T) {
	s := newTestSession(t)
	n := addShape(t, s, 10, 20)

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if s.Node(n.ID) != nil {
		t.Fatal("node still present after undo of add")
	}

	if err := s.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	got := s.Node(n.ID)
	if got == nil {
		t.Fatal("node missing after redo")
	}
	if got.ID != n.ID {
		t.Errorf("redo restored id %q, want %q", got.ID, n.ID)
	}
	if got.X != 10 || got.Y != 20 {
		t.Errorf("redo restored position (%v,%v), want (10,20)", got.X, got.Y)
	}
}

func TestUpdateNodeUndoRestoresSnapshot(t *testing.T) {
	s := newTestSession(t)
	n := addShape(t, s, 0, 0)

	x := 55.0
	if err := s.UpdateNode(n.ID, board.NodeUpdate{X: &x}); err != nil {
		t.Fatalf("UpdateNode: %v", err)
	}
	if got := s.Node(n.ID); got.X != 55 {
		t.Fatalf("X = %v after update, want 55", got.X)
	}

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := s.Node(n.ID); got.X != 0 {
		t.Errorf("X = %v after undo, want 0", got.X)
	}
	if err := s.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if got := s.Node(n.ID); got.X != 55 {
		t.Errorf("X = %v after redo, want 55", got.X)
	}
}

func TestDeleteNodeCascadeUndo(t *testing.T) {
	s := newTestSession(t)
	a := addShape(t, s, 0, 0)
	b := addShape(t, s, 200, 0)
	e, err := s.AddEdge(a.ID, b.ID, "", "", board.EdgeDefault, board.EdgeStyle{})
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	if err := s.DeleteNode(a.ID); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	if s.Node(a.ID) != nil {
		t.Fatal("node still present after delete")
	}
	if s.Edge(e.ID) != nil {
		t.Fatal("edge survived deletion of its source node")
	}

	// One undo brings back the node and the cascade-deleted edge,
	// both under their original ids.
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if s.Node(a.ID) == nil {
		t.Fatal("node missing after undo of delete")
	}
	restored := s.Edge(e.ID)
	if restored == nil {
		t.Fatal("cascade-deleted edge missing after undo")
	}
	if restored.Source != a.ID || restored.Target != b.ID {
		t.Errorf("restored edge connects %q->%q, want %q->%q",
			restored.Source, restored.Target, a.ID, b.ID)
	}
}

func TestGroupAssignsSharedTag(t *testing.T) {
	s := newTestSession(t)
	a := addShape(t, s, 0, 0)
	b := addShape(t, s, 100, 0)
	c := addShape(t, s, 200, 0)

	s.SetSelection([]string{a.ID, b.ID, c.ID}, nil)
	if err := s.Group([]string{a.ID, b.ID, c.ID}); err != nil {
		t.Fatalf("Group: %v", err)
	}

	tag := s.Node(a.ID).GroupID
	if tag == "" {
		t.Fatal("group tag is empty")
	}
	for _, id := range []string{b.ID, c.ID} {
		if got := s.Node(id).GroupID; got != tag {
			t.Errorf("node %q has tag %q, want %q", id, got, tag)
		}
	}

	members := s.GroupMembers(tag)
	if len(members) != 3 {
		t.Errorf("GroupMembers returned %d ids, want 3", len(members))
	}
}

func TestGroupSingleNodeIsNoOp(t *testing.T) {
	s := newTestSession(t)
	a := addShape(t, s, 0, 0)

	if err := s.Group([]string{a.ID}); err != nil {
		t.Fatalf("Group: %v", err)
	}
	if got := s.Node(a.ID).GroupID; got != "" {
		t.Errorf("single-node group assigned tag %q, want none", got)
	}
}

func TestGroupUndoPerNode(t *testing.T) {
	s := newTestSession(t)
	a := addShape(t, s, 0, 0)
	b := addShape(t, s, 100, 0)

	if err := s.Group([]string{a.ID, b.ID}); err != nil {
		t.Fatalf("Group: %v", err)
	}

	// Grouping records one entry per member, so the first undo clears
	// only the last assignment.
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := s.Node(b.ID).GroupID; got != "" {
		t.Errorf("second member still tagged %q after one undo", got)
	}
	if got := s.Node(a.ID).GroupID; got == "" {
		t.Error("first member lost its tag after one undo")
	}
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := s.Node(a.ID).GroupID; got != "" {
		t.Errorf("first member still tagged %q after two undos", got)
	}
}

func TestUngroup(t *testing.T) {
	s := newTestSession(t)
	a := addShape(t, s, 0, 0)
	b := addShape(t, s, 100, 0)
	if err := s.Group([]string{a.ID, b.ID}); err != nil {
		t.Fatalf("Group: %v", err)
	}
	tag := s.Node(a.ID).GroupID

	if err := s.UngroupAll(tag); err != nil {
		t.Fatalf("UngroupAll: %v", err)
	}
	for _, id := range []string{a.ID, b.ID} {
		if got := s.Node(id).GroupID; got != "" {
			t.Errorf("node %q still tagged %q after ungroup", id, got)
		}
	}
}

func TestAddEdgeWaypointInsertsAtNearestSegment(t *testing.T) {
	s := newTestSession(t)
	a := addShape(t, s, 0, 0)     // center (60,40)
	b := addShape(t, s, 600, 0)   // center (660,40)
	e, err := s.AddEdge(a.ID, b.ID, "", "", board.EdgeStraight, board.EdgeStyle{})
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	if err := s.AddEdgeWaypoint(e.ID, geom.Pt{X: 360, Y: 200}); err != nil {
		t.Fatalf("AddEdgeWaypoint: %v", err)
	}
	// A second click near the first half of the routed path lands
	// before the existing waypoint.
	if err := s.AddEdgeWaypoint(e.ID, geom.Pt{X: 150, Y: 100}); err != nil {
		t.Fatalf("AddEdgeWaypoint: %v", err)
	}

	got := s.Edge(e.ID)
	if len(got.Style.Waypoints) != 2 {
		t.Fatalf("%d waypoints, want 2", len(got.Style.Waypoints))
	}
	if got.Style.Waypoints[0].X != 150 || got.Style.Waypoints[1].X != 360 {
		t.Errorf("waypoint order %v, want the 150 click first", got.Style.Waypoints)
	}

	if err := s.ClearEdgeWaypoints(e.ID); err != nil {
		t.Fatalf("ClearEdgeWaypoints: %v", err)
	}
	if s.Edge(e.ID).HasWaypoints() {
		t.Error("waypoints survived ClearEdgeWaypoints")
	}

	// Undo restores the routed style, including the waypoints.
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := s.Edge(e.ID); len(got.Style.Waypoints) != 2 {
		t.Errorf("%d waypoints after undo, want 2", len(got.Style.Waypoints))
	}
}

func TestMoveNodesSingleUndoEntry(t *testing.T) {
	s := newTestSession(t)
	a := addShape(t, s, 0, 0)
	b := addShape(t, s, 100, 100)

	err := s.MoveNodes([]board.PositionUpdate{
		{ID: a.ID, X: 50, Y: 60},
		{ID: b.ID, X: 150, Y: 160},
	})
	if err != nil {
		t.Fatalf("MoveNodes: %v", err)
	}

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := s.Node(a.ID); got.X != 0 || got.Y != 0 {
		t.Errorf("node a at (%v,%v) after undo, want (0,0)", got.X, got.Y)
	}
	if got := s.Node(b.ID); got.X != 100 || got.Y != 100 {
		t.Errorf("node b at (%v,%v) after undo, want (100,100)", got.X, got.Y)
	}

	if err := s.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if got := s.Node(a.ID); got.X != 50 || got.Y != 60 {
		t.Errorf("node a at (%v,%v) after redo, want (50,60)", got.X, got.Y)
	}
}

func TestDuplicateOffset(t *testing.T) {
	s := newTestSession(t)
	n := addShape(t, s, 40, 40)

	copies, err := s.Duplicate([]string{n.ID})
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if len(copies) != 1 {
		t.Fatalf("got %d copies, want 1", len(copies))
	}
	c := copies[0]
	if c.ID == n.ID {
		t.Error("duplicate reused the original id")
	}
	if c.X != 70 || c.Y != 70 {
		t.Errorf("duplicate at (%v,%v), want (70,70)", c.X, c.Y)
	}
	if c.Type != n.Type {
		t.Errorf("duplicate type %q, want %q", c.Type, n.Type)
	}
}

func TestZOrder(t *testing.T) {
	s := newTestSession(t)
	a := addShape(t, s, 0, 0)
	b := addShape(t, s, 100, 0)
	c := addShape(t, s, 200, 0)

	if err := s.BringToFront(a.ID); err != nil {
		t.Fatalf("BringToFront: %v", err)
	}
	za := s.Node(a.ID).ZIndex
	for _, id := range []string{b.ID, c.ID} {
		if z := s.Node(id).ZIndex; z >= za {
			t.Errorf("node %q z %d not below fronted node z %d", id, z, za)
		}
	}

	if err := s.SendToBack(c.ID); err != nil {
		t.Fatalf("SendToBack: %v", err)
	}
	zc := s.Node(c.ID).ZIndex
	for _, id := range []string{a.ID, b.ID} {
		if z := s.Node(id).ZIndex; z <= zc {
			t.Errorf("node %q z %d not above backed node z %d", id, z, zc)
		}
	}
}

func TestWrapSelectionInSwimlane(t *testing.T) {
	s := newTestSession(t)
	a := addShape(t, s, 100, 100) // 120x80 default
	b := addShape(t, s, 400, 300)

	s.SetSelection([]string{a.ID, b.ID}, nil)
	lane, err := s.WrapSelectionInSwimlane("Flow")
	if err != nil {
		t.Fatalf("WrapSelectionInSwimlane: %v", err)
	}
	if lane == nil {
		t.Fatal("no swimlane created")
	}
	if lane.Type != board.NodeSwimlane {
		t.Fatalf("wrapped with type %q", lane.Type)
	}

	// Bounding box of the two shapes is (100,100)-(520,380); the lane
	// covers it with padding plus the header strip on top.
	if lane.X != 100-swimlanePadding {
		t.Errorf("lane X = %v, want %v", lane.X, 100-swimlanePadding)
	}
	if lane.Y != 100-swimlanePadding-swimlaneHeader {
		t.Errorf("lane Y = %v, want %v", lane.Y, 100-swimlanePadding-swimlaneHeader)
	}
	if lane.W != 420+2*swimlanePadding {
		t.Errorf("lane W = %v, want %v", lane.W, 420+2*swimlanePadding)
	}

	for _, id := range []string{a.ID, b.ID} {
		if z := s.Node(id).ZIndex; z <= lane.ZIndex {
			t.Errorf("node %q z %d not above lane z %d", id, z, lane.ZIndex)
		}
	}
}

func TestWrapEmptySelectionIsNoOp(t *testing.T) {
	s := newTestSession(t)
	lane, err := s.WrapSelectionInSwimlane("Flow")
	if err != nil {
		t.Fatalf("WrapSelectionInSwimlane: %v", err)
	}
	if lane != nil {
		t.Error("swimlane created with nothing selected")
	}
}

func TestUnknownIDsAreSilentNoOps(t *testing.T) {
	s := newTestSession(t)
	x := 5.0
	if err := s.UpdateNode("nope", board.NodeUpdate{X: &x}); err != nil {
		t.Fatalf("UpdateNode: %v", err)
	}
	if err := s.DeleteNode("nope"); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	if err := s.DeleteEdge("nope"); err != nil {
		t.Fatalf("DeleteEdge: %v", err)
	}
	if s.CanUndo() {
		t.Error("no-op calls recorded history entries")
	}
	if got := s.Err(); got != "" {
		t.Errorf("no-op calls set error %q", got)
	}
}

// failingBackend wraps a real backend and fails a single operation, for
// exercising the error banner path.
type failingBackend struct {
	backend.Backend
	failUpdateNode bool
}

func (f *failingBackend) UpdateNode(id string, upd board.NodeUpdate) (*board.Node, error) {
	if f.failUpdateNode {
		return nil, errors.New("disk full")
	}
	return f.Backend.UpdateNode(id, upd)
}

func TestBackendFailureSetsErr(t *testing.T) {
	fb := &failingBackend{Backend: backend.NewMemory()}
	s := New(fb)
	b, err := s.CreateBoard("test", "")
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	if err := s.Open(b.ID); err != nil {
		t.Fatalf("Open: %v", err)
	}
	n, err := s.AddNode(board.NodeShape, 0, 0, 0, 0, board.ShapePayload{})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	fb.failUpdateNode = true
	x := 9.0
	if err := s.UpdateNode(n.ID, board.NodeUpdate{X: &x}); err == nil {
		t.Fatal("expected error from failing backend")
	}
	if got := s.Err(); !strings.Contains(got, "disk full") {
		t.Errorf("Err() = %q, want it to mention the backend failure", got)
	}

	// Local state stays at the last successful value.
	if got := s.Node(n.ID); got.X != 0 {
		t.Errorf("X = %v after failed update, want 0", got.X)
	}
	if s.CanUndo() == false {
		t.Error("history for the successful add was lost")
	}

	s.ClearErr()
	if got := s.Err(); got != "" {
		t.Errorf("Err() = %q after ClearErr, want empty", got)
	}
}

func TestLayers(t *testing.T) {
	s := newTestSession(t)

	l := s.AddLayer("Annotations")
	if l.ID == "" || l.ID == DefaultLayerID {
		t.Fatalf("AddLayer id = %q", l.ID)
	}
	s.SetActiveLayer(l.ID)
	n := addShape(t, s, 0, 0)
	if n.LayerID != l.ID {
		t.Errorf("new node on layer %q, want %q", n.LayerID, l.ID)
	}

	s.ToggleVisibility(l.ID)
	if s.NodeVisible(n) {
		t.Error("node visible on a hidden layer")
	}
	s.ToggleVisibility(l.ID)
	if !s.NodeVisible(n) {
		t.Error("node hidden on a visible layer")
	}
	// Hide is non-destructive: the node itself never changed.
	after := s.Node(n.ID)
	if after.X != n.X || after.Y != n.Y || after.W != n.W || after.H != n.H || after.Payload != n.Payload {
		t.Error("visibility toggle mutated node state")
	}

	s.ToggleLock(l.ID)
	if !s.NodeLocked(n) {
		t.Error("node not locked on a locked layer")
	}

	// The default layer cannot be removed; deleting the active layer
	// falls back to it.
	s.DeleteLayer(DefaultLayerID)
	if len(s.LayerList()) != 2 {
		t.Fatal("default layer was deleted")
	}
	s.DeleteLayer(l.ID)
	if got := s.ActiveLayer(); got != DefaultLayerID {
		t.Errorf("active layer %q after delete, want %q", got, DefaultLayerID)
	}
	// Orphaned assignment resolves to the default layer.
	if got := s.EffectiveLayerID(s.Node(n.ID)); got != DefaultLayerID {
		t.Errorf("effective layer %q, want %q", got, DefaultLayerID)
	}
}

func TestOpenClearsHistoryAndSelection(t *testing.T) {
	s := newTestSession(t)
	n := addShape(t, s, 0, 0)
	s.SetSelection([]string{n.ID}, nil)

	b2, err := s.CreateBoard("other", "")
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	if err := s.Open(b2.ID); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.CanUndo() {
		t.Error("history survived switching boards")
	}
	if len(s.SelectedNodes()) != 0 {
		t.Error("selection survived switching boards")
	}
}

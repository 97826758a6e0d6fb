package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"mulberry/canvas/internal/backend"
	"mulberry/canvas/internal/board"
	"mulberry/canvas/internal/geom"
	"mulberry/canvas/internal/session"
)

func newBoard(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(backend.NewMemory())
	b, err := s.CreateBoard("export", "")
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	if err := s.Open(b.ID); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestExport(t *testing.T) {
	s := newBoard(t)
	a, err := s.AddNode(board.NodeShape, 0, 0, 120, 80, board.ShapePayload{Color: "#3b82f6"})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	b, err := s.AddNode(board.NodeShape, 300, 200, 120, 80, board.ShapePayload{Color: "#ef4444"})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if _, err := s.AddEdge(a.ID, b.ID, "right", "left", board.EdgeDefault, board.EdgeStyle{
		Waypoints: []geom.Pt{{X: 220, Y: 60}},
	}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	out := filepath.Join(t.TempDir(), "board.png")
	ex := &Exporter{}
	if err := ex.Export(s, out); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("opening export: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding export: %v", err)
	}

	// Node extent is (0,0)-(420,280); padding adds 40 per side.
	wantW, wantH := 500, 360
	if got := img.Bounds().Dx(); got != wantW {
		t.Errorf("width = %d, want %d", got, wantW)
	}
	if got := img.Bounds().Dy(); got != wantH {
		t.Errorf("height = %d, want %d", got, wantH)
	}
}

func TestExportSkipsHiddenLayer(t *testing.T) {
	s := newBoard(t)
	if _, err := s.AddNode(board.NodeShape, 0, 0, 100, 100, board.ShapePayload{}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	l := s.AddLayer("extras")
	s.SetActiveLayer(l.ID)
	if _, err := s.AddNode(board.NodeShape, 900, 900, 100, 100, board.ShapePayload{}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	s.ToggleVisibility(l.ID)

	out := filepath.Join(t.TempDir(), "board.png")
	if err := (&Exporter{}).Export(s, out); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	// Only the visible 100x100 node contributes to the extent.
	if got := img.Bounds().Dx(); got != 180 {
		t.Errorf("width = %d, want 180 (hidden layer included in bounds?)", got)
	}
}

func TestExportNoBoard(t *testing.T) {
	s := session.New(backend.NewMemory())
	if err := (&Exporter{}).Export(s, filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Fatal("expected error with no board open")
	}
}

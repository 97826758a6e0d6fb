package backend

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"mulberry/canvas/internal/board"
)

// Memory is an in-process backend with the same semantics as SQLite:
// backend-assigned ids, max-z on add, cascade delete of edges with their
// nodes. It backs tests and scratch boards that never touch disk.
type Memory struct {
	boards []board.Board
	nodes  []board.Node
	edges  []board.Edge
}

var _ Backend = (*Memory)(nil)

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) ListBoards() ([]board.Board, error) {
	out := make([]board.Board, len(m.boards))
	copy(out, m.boards)
	return out, nil
}

func (m *Memory) findBoard(boardID string) (*board.Board, error) {
	for i := range m.boards {
		if m.boards[i].ID == boardID {
			return &m.boards[i], nil
		}
	}
	return nil, fmt.Errorf("board %s: not found", boardID)
}

func (m *Memory) GetBoard(boardID string) (*BoardData, error) {
	b, err := m.findBoard(boardID)
	if err != nil {
		return nil, err
	}
	data := &BoardData{Board: *b}
	for _, n := range m.nodes {
		if n.BoardID == boardID {
			data.Nodes = append(data.Nodes, n)
		}
	}
	sort.SliceStable(data.Nodes, func(i, j int) bool {
		return data.Nodes[i].ZIndex < data.Nodes[j].ZIndex
	})
	for _, e := range m.edges {
		if e.BoardID == boardID {
			data.Edges = append(data.Edges, e)
		}
	}
	return data, nil
}

func (m *Memory) CreateBoard(name, description string) (*board.Board, error) {
	b := board.Board{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Viewport:    board.DefaultViewport(),
		CreatedAt:   time.Now().Unix(),
		ModifiedAt:  time.Now().Unix(),
	}
	m.boards = append(m.boards, b)
	return &b, nil
}

func (m *Memory) UpdateBoard(boardID string, upd board.BoardUpdate) (*board.Board, error) {
	b, err := m.findBoard(boardID)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		b.Name = *upd.Name
	}
	if upd.Description != nil {
		b.Description = *upd.Description
	}
	if upd.Viewport != nil {
		b.Viewport = *upd.Viewport
	}
	if upd.Archived != nil {
		b.Archived = *upd.Archived
	}
	b.ModifiedAt = time.Now().Unix()
	out := *b
	return &out, nil
}

func (m *Memory) DeleteBoard(boardID string) error {
	kept := m.boards[:0]
	for _, b := range m.boards {
		if b.ID != boardID {
			kept = append(kept, b)
		}
	}
	m.boards = kept

	keptNodes := m.nodes[:0]
	for _, n := range m.nodes {
		if n.BoardID != boardID {
			keptNodes = append(keptNodes, n)
		}
	}
	m.nodes = keptNodes

	keptEdges := m.edges[:0]
	for _, e := range m.edges {
		if e.BoardID != boardID {
			keptEdges = append(keptEdges, e)
		}
	}
	m.edges = keptEdges
	return nil
}

func (m *Memory) touchBoard(boardID string, ts int64) {
	for i := range m.boards {
		if m.boards[i].ID == boardID {
			m.boards[i].ModifiedAt = ts
			return
		}
	}
}

func (m *Memory) findNode(nodeID string) (*board.Node, error) {
	for i := range m.nodes {
		if m.nodes[i].ID == nodeID {
			return &m.nodes[i], nil
		}
	}
	return nil, fmt.Errorf("node %s: not found", nodeID)
}

func (m *Memory) AddNode(req NewNode) (*board.Node, error) {
	if err := board.ValidateNodeType(req.Type); err != nil {
		return nil, err
	}
	if _, err := m.findBoard(req.BoardID); err != nil {
		return nil, err
	}

	maxZ := 0
	for _, n := range m.nodes {
		if n.BoardID == req.BoardID && n.ZIndex > maxZ {
			maxZ = n.ZIndex
		}
	}

	ts := time.Now().Unix()
	n := board.Node{
		ID:        uuid.NewString(),
		BoardID:   req.BoardID,
		Type:      req.Type,
		X:         req.X,
		Y:         req.Y,
		W:         req.W,
		H:         req.H,
		ZIndex:    maxZ + 1,
		GroupID:   req.GroupID,
		LayerID:   req.LayerID,
		Payload:   req.Payload,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if n.Payload == nil {
		p, err := board.DefaultPayload(req.Type)
		if err != nil {
			return nil, err
		}
		n.Payload = p
	}
	m.nodes = append(m.nodes, n)
	m.touchBoard(req.BoardID, ts)
	out := n
	return &out, nil
}

func (m *Memory) UpdateNode(nodeID string, upd board.NodeUpdate) (*board.Node, error) {
	n, err := m.findNode(nodeID)
	if err != nil {
		return nil, err
	}
	upd.Apply(n)
	n.UpdatedAt = time.Now().Unix()
	m.touchBoard(n.BoardID, n.UpdatedAt)
	out := *n
	return &out, nil
}

func (m *Memory) DeleteNode(nodeID string) error {
	n, err := m.findNode(nodeID)
	if err != nil {
		return err
	}
	m.touchBoard(n.BoardID, time.Now().Unix())
	kept := m.nodes[:0]
	for _, n := range m.nodes {
		if n.ID != nodeID {
			kept = append(kept, n)
		}
	}
	m.nodes = kept

	keptEdges := m.edges[:0]
	for _, e := range m.edges {
		if !e.References(nodeID) {
			keptEdges = append(keptEdges, e)
		}
	}
	m.edges = keptEdges
	return nil
}

func (m *Memory) RestoreNode(n board.Node) error {
	if _, err := m.findBoard(n.BoardID); err != nil {
		return err
	}
	m.nodes = append(m.nodes, n)
	return nil
}

func (m *Memory) RestoreEdge(e board.Edge) error {
	if _, err := m.findNode(e.Source); err != nil {
		return err
	}
	if _, err := m.findNode(e.Target); err != nil {
		return err
	}
	m.edges = append(m.edges, e)
	return nil
}

func (m *Memory) BulkUpdatePositions(boardID string, updates []board.PositionUpdate) error {
	ts := time.Now().Unix()
	for _, u := range updates {
		for i := range m.nodes {
			if m.nodes[i].ID == u.ID && m.nodes[i].BoardID == boardID {
				m.nodes[i].X = u.X
				m.nodes[i].Y = u.Y
				m.nodes[i].UpdatedAt = ts
			}
		}
	}
	m.touchBoard(boardID, ts)
	return nil
}

func (m *Memory) AddEdge(req NewEdge) (*board.Edge, error) {
	if req.Type == "" {
		req.Type = board.EdgeDefault
	}
	if err := board.ValidateEdgeType(req.Type); err != nil {
		return nil, err
	}
	src, err := m.findNode(req.Source)
	if err != nil {
		return nil, fmt.Errorf("source node not found: %w", err)
	}
	dst, err := m.findNode(req.Target)
	if err != nil {
		return nil, fmt.Errorf("target node not found: %w", err)
	}
	if src.BoardID != req.BoardID || dst.BoardID != req.BoardID {
		return nil, fmt.Errorf("nodes must belong to board %s", req.BoardID)
	}

	ts := time.Now().Unix()
	e := board.Edge{
		ID:           uuid.NewString(),
		BoardID:      req.BoardID,
		Source:       req.Source,
		Target:       req.Target,
		SourceHandle: req.SourceHandle,
		TargetHandle: req.TargetHandle,
		Type:         req.Type,
		Style:        req.Style,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	m.edges = append(m.edges, e)
	m.touchBoard(req.BoardID, ts)
	out := e
	return &out, nil
}

func (m *Memory) findEdge(edgeID string) (*board.Edge, error) {
	for i := range m.edges {
		if m.edges[i].ID == edgeID {
			return &m.edges[i], nil
		}
	}
	return nil, fmt.Errorf("edge %s: not found", edgeID)
}

func (m *Memory) UpdateEdge(edgeID string, upd board.EdgeUpdate) (*board.Edge, error) {
	if upd.Type != nil {
		if err := board.ValidateEdgeType(*upd.Type); err != nil {
			return nil, err
		}
	}
	e, err := m.findEdge(edgeID)
	if err != nil {
		return nil, err
	}
	upd.Apply(e)
	e.UpdatedAt = time.Now().Unix()
	m.touchBoard(e.BoardID, e.UpdatedAt)
	out := *e
	return &out, nil
}

func (m *Memory) DeleteEdge(edgeID string) error {
	e, err := m.findEdge(edgeID)
	if err != nil {
		return err
	}
	m.touchBoard(e.BoardID, time.Now().Unix())
	kept := m.edges[:0]
	for _, e := range m.edges {
		if e.ID != edgeID {
			kept = append(kept, e)
		}
	}
	m.edges = kept
	return nil
}

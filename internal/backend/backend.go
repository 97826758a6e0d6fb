// Package backend implements the persistence collaborator behind the
// diagram editor. The edit session only sees the Backend interface; the
// SQLite implementation is the real store and Memory backs tests and
// scratch boards.
package backend

import "mulberry/canvas/internal/board"

// BoardData is a board together with its full node and edge sets, as
// returned by GetBoard. Nodes are ordered by z-index.
type BoardData struct {
	Board board.Board
	Nodes []board.Node
	Edges []board.Edge
}

// NewNode is an add-node request. The backend assigns the id and
// z-index (current max + 1). Zero W/H mean "use the type default".
type NewNode struct {
	BoardID string
	Type    board.NodeType
	X, Y    float64
	W, H    float64
	GroupID string
	LayerID string
	Payload board.Payload
}

// NewEdge is an add-edge request. Source and target must exist on the
// same board. An empty Type defaults to board.EdgeDefault.
type NewEdge struct {
	BoardID      string
	Source       string
	Target       string
	SourceHandle string
	TargetHandle string
	Type         board.EdgeType
	Style        board.EdgeStyle
}

// Backend is the full persistence contract the editor depends on. All
// entity ids are backend-assigned opaque strings.
type Backend interface {
	ListBoards() ([]board.Board, error)
	GetBoard(boardID string) (*BoardData, error)
	CreateBoard(name, description string) (*board.Board, error)
	UpdateBoard(boardID string, upd board.BoardUpdate) (*board.Board, error)
	DeleteBoard(boardID string) error

	AddNode(req NewNode) (*board.Node, error)
	UpdateNode(nodeID string, upd board.NodeUpdate) (*board.Node, error)
	// DeleteNode removes the node and every edge referencing it.
	DeleteNode(nodeID string) error
	BulkUpdatePositions(boardID string, updates []board.PositionUpdate) error
	// RestoreNode re-inserts a deleted node with its captured id and
	// z-index. Only the undo path uses this.
	RestoreNode(n board.Node) error
	// RestoreEdge re-inserts a deleted edge with its captured id.
	RestoreEdge(e board.Edge) error

	AddEdge(req NewEdge) (*board.Edge, error)
	UpdateEdge(edgeID string, upd board.EdgeUpdate) (*board.Edge, error)
	DeleteEdge(edgeID string) error
}

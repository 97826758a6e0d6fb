package backend

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mulberry/canvas/internal/board"
)

// SQLite is the on-disk backend. One file holds every board.
type SQLite struct {
	conn *sql.DB
	Path string
}

var _ Backend = (*SQLite)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS diagram_boards (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT,
	viewport    TEXT NOT NULL,
	archived    INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL,
	modified_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS diagram_board_notes (
	board_id   TEXT NOT NULL REFERENCES diagram_boards(id) ON DELETE CASCADE,
	note_id    TEXT NOT NULL,
	note_path  TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (board_id, note_id)
);

CREATE TABLE IF NOT EXISTS diagram_nodes (
	id         TEXT PRIMARY KEY,
	board_id   TEXT NOT NULL REFERENCES diagram_boards(id) ON DELETE CASCADE,
	node_type  TEXT NOT NULL,
	position_x REAL NOT NULL,
	position_y REAL NOT NULL,
	width      REAL,
	height     REAL,
	data       TEXT NOT NULL DEFAULT '{}',
	z_index    INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS diagram_edges (
	id             TEXT PRIMARY KEY,
	board_id       TEXT NOT NULL REFERENCES diagram_boards(id) ON DELETE CASCADE,
	source_node_id TEXT NOT NULL REFERENCES diagram_nodes(id) ON DELETE CASCADE,
	target_node_id TEXT NOT NULL REFERENCES diagram_nodes(id) ON DELETE CASCADE,
	source_handle  TEXT,
	target_handle  TEXT,
	edge_type      TEXT NOT NULL DEFAULT 'default',
	data           TEXT,
	created_at     INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_nodes_board ON diagram_nodes(board_id);
CREATE INDEX IF NOT EXISTS idx_edges_board ON diagram_edges(board_id);
`

// OpenSQLite opens (creating if needed) a board database with WAL mode
// and foreign keys enabled. Edge rows cascade away with their nodes.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &SQLite{conn: conn, Path: path}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

func now() int64 { return time.Now().Unix() }

// touchBoard bumps a board's modified_at. Every mutation does this.
func (s *SQLite) touchBoard(boardID string, ts int64) error {
	_, err := s.conn.Exec("UPDATE diagram_boards SET modified_at = ? WHERE id = ?", ts, boardID)
	return err
}

// --- boards ---

func (s *SQLite) scanBoard(scanner interface{ Scan(dest ...any) error }) (board.Board, error) {
	var b board.Board
	var desc sql.NullString
	var viewport string
	err := scanner.Scan(&b.ID, &b.Name, &desc, &viewport, &b.Archived, &b.CreatedAt, &b.ModifiedAt)
	if err != nil {
		return b, err
	}
	b.Description = desc.String
	if err := json.Unmarshal([]byte(viewport), &b.Viewport); err != nil {
		b.Viewport = board.DefaultViewport()
	}
	return b, nil
}

func (s *SQLite) linkedNotes(boardID string) ([]board.LinkedNote, error) {
	rows, err := s.conn.Query(`
		SELECT note_id, note_path FROM diagram_board_notes
		WHERE board_id = ? ORDER BY created_at
	`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []board.LinkedNote
	for rows.Next() {
		var n board.LinkedNote
		if err := rows.Scan(&n.NoteID, &n.NotePath); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *SQLite) ListBoards() ([]board.Board, error) {
	rows, err := s.conn.Query(`
		SELECT id, name, description, viewport, archived, created_at, modified_at
		FROM diagram_boards ORDER BY modified_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}
	defer rows.Close()

	var boards []board.Board
	for rows.Next() {
		b, err := s.scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range boards {
		notes, err := s.linkedNotes(boards[i].ID)
		if err != nil {
			return nil, err
		}
		boards[i].LinkedNotes = notes
	}
	return boards, nil
}

func (s *SQLite) getBoard(boardID string) (*board.Board, error) {
	row := s.conn.QueryRow(`
		SELECT id, name, description, viewport, archived, created_at, modified_at
		FROM diagram_boards WHERE id = ?
	`, boardID)
	b, err := s.scanBoard(row)
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", boardID, err)
	}
	b.LinkedNotes, err = s.linkedNotes(boardID)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *SQLite) GetBoard(boardID string) (*BoardData, error) {
	b, err := s.getBoard(boardID)
	if err != nil {
		return nil, err
	}
	nodes, err := s.boardNodes(boardID)
	if err != nil {
		return nil, fmt.Errorf("loading nodes: %w", err)
	}
	edges, err := s.boardEdges(boardID)
	if err != nil {
		return nil, fmt.Errorf("loading edges: %w", err)
	}
	return &BoardData{Board: *b, Nodes: nodes, Edges: edges}, nil
}

func (s *SQLite) CreateBoard(name, description string) (*board.Board, error) {
	b := board.Board{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Viewport:    board.DefaultViewport(),
		CreatedAt:   now(),
		ModifiedAt:  now(),
	}
	viewport, err := json.Marshal(b.Viewport)
	if err != nil {
		return nil, err
	}
	_, err = s.conn.Exec(`
		INSERT INTO diagram_boards (id, name, description, viewport, archived, created_at, modified_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
	`, b.ID, b.Name, nullable(b.Description), string(viewport), b.CreatedAt, b.ModifiedAt)
	if err != nil {
		return nil, fmt.Errorf("creating board: %w", err)
	}
	return &b, nil
}

func (s *SQLite) UpdateBoard(boardID string, upd board.BoardUpdate) (*board.Board, error) {
	b, err := s.getBoard(boardID)
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
	b.ModifiedAt = now()

	viewport, err := json.Marshal(b.Viewport)
	if err != nil {
		return nil, err
	}
	_, err = s.conn.Exec(`
		UPDATE diagram_boards SET name = ?, description = ?, viewport = ?, archived = ?, modified_at = ?
		WHERE id = ?
	`, b.Name, nullable(b.Description), string(viewport), b.Archived, b.ModifiedAt, boardID)
	if err != nil {
		return nil, fmt.Errorf("updating board: %w", err)
	}
	return b, nil
}

func (s *SQLite) DeleteBoard(boardID string) error {
	if _, err := s.conn.Exec("DELETE FROM diagram_boards WHERE id = ?", boardID); err != nil {
		return fmt.Errorf("deleting board: %w", err)
	}
	return nil
}

// --- nodes ---

func (s *SQLite) scanNode(scanner interface{ Scan(dest ...any) error }) (board.Node, error) {
	var n board.Node
	var w, h sql.NullFloat64
	var data string
	err := scanner.Scan(&n.ID, &n.BoardID, &n.Type, &n.X, &n.Y, &w, &h, &data, &n.ZIndex, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return n, err
	}
	n.W = w.Float64
	n.H = h.Float64
	n.Payload, n.GroupID, n.LayerID, err = board.DecodeNodeData(n.Type, []byte(data))
	return n, err
}

const nodeColumns = "id, board_id, node_type, position_x, position_y, width, height, data, z_index, created_at, updated_at"

func (s *SQLite) boardNodes(boardID string) ([]board.Node, error) {
	rows, err := s.conn.Query(
		"SELECT "+nodeColumns+" FROM diagram_nodes WHERE board_id = ? ORDER BY z_index", boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []board.Node
	for rows.Next() {
		n, err := s.scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (s *SQLite) getNode(nodeID string) (*board.Node, error) {
	row := s.conn.QueryRow("SELECT "+nodeColumns+" FROM diagram_nodes WHERE id = ?", nodeID)
	n, err := s.scanNode(row)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", nodeID, err)
	}
	return &n, nil
}

func (s *SQLite) AddNode(req NewNode) (*board.Node, error) {
	if err := board.ValidateNodeType(req.Type); err != nil {
		return nil, err
	}
	ts := now()
	n := board.Node{
		ID:        uuid.NewString(),
		BoardID:   req.BoardID,
		Type:      req.Type,
		X:         req.X,
		Y:         req.Y,
		W:         req.W,
		H:         req.H,
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

	var maxZ sql.NullInt64
	if err := s.conn.QueryRow(
		"SELECT MAX(z_index) FROM diagram_nodes WHERE board_id = ?", req.BoardID,
	).Scan(&maxZ); err != nil {
		return nil, err
	}
	n.ZIndex = int(maxZ.Int64) + 1

	data, err := board.EncodeNodeData(&n)
	if err != nil {
		return nil, err
	}
	_, err = s.conn.Exec(`
		INSERT INTO diagram_nodes (id, board_id, node_type, position_x, position_y, width, height, data, z_index, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.BoardID, string(n.Type), n.X, n.Y, nullFloat(n.W), nullFloat(n.H), string(data), n.ZIndex, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("adding node: %w", err)
	}
	if err := s.touchBoard(req.BoardID, ts); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *SQLite) UpdateNode(nodeID string, upd board.NodeUpdate) (*board.Node, error) {
	n, err := s.getNode(nodeID)
	if err != nil {
		return nil, err
	}
	upd.Apply(n)
	n.UpdatedAt = now()

	data, err := board.EncodeNodeData(n)
	if err != nil {
		return nil, err
	}
	_, err = s.conn.Exec(`
		UPDATE diagram_nodes SET position_x = ?, position_y = ?, width = ?, height = ?, data = ?, z_index = ?, updated_at = ?
		WHERE id = ?
	`, n.X, n.Y, nullFloat(n.W), nullFloat(n.H), string(data), n.ZIndex, n.UpdatedAt, nodeID)
	if err != nil {
		return nil, fmt.Errorf("updating node: %w", err)
	}
	if err := s.touchBoard(n.BoardID, n.UpdatedAt); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *SQLite) DeleteNode(nodeID string) error {
	n, err := s.getNode(nodeID)
	if err != nil {
		return err
	}
	// Edges cascade away via foreign keys.
	if _, err := s.conn.Exec("DELETE FROM diagram_nodes WHERE id = ?", nodeID); err != nil {
		return fmt.Errorf("deleting node %s: %w", nodeID, err)
	}
	return s.touchBoard(n.BoardID, now())
}

func (s *SQLite) RestoreNode(n board.Node) error {
	data, err := board.EncodeNodeData(&n)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec(`
		INSERT INTO diagram_nodes (id, board_id, node_type, position_x, position_y, width, height, data, z_index, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.BoardID, string(n.Type), n.X, n.Y, nullFloat(n.W), nullFloat(n.H), string(data), n.ZIndex, n.CreatedAt, now())
	if err != nil {
		return fmt.Errorf("restoring node %s: %w", n.ID, err)
	}
	return s.touchBoard(n.BoardID, now())
}

func (s *SQLite) RestoreEdge(e board.Edge) error {
	data, err := json.Marshal(e.Style)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec(`
		INSERT INTO diagram_edges (id, board_id, source_node_id, target_node_id, source_handle, target_handle, edge_type, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.BoardID, e.Source, e.Target, nullable(e.SourceHandle), nullable(e.TargetHandle), string(e.Type), string(data), e.CreatedAt, now())
	if err != nil {
		return fmt.Errorf("restoring edge %s: %w", e.ID, err)
	}
	return s.touchBoard(e.BoardID, now())
}

func (s *SQLite) BulkUpdatePositions(boardID string, updates []board.PositionUpdate) error {
	ts := now()
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	for _, u := range updates {
		if _, err := tx.Exec(`
			UPDATE diagram_nodes SET position_x = ?, position_y = ?, updated_at = ?
			WHERE id = ? AND board_id = ?
		`, u.X, u.Y, ts, u.ID, boardID); err != nil {
			tx.Rollback()
			return fmt.Errorf("updating position of %s: %w", u.ID, err)
		}
	}
	if _, err := tx.Exec("UPDATE diagram_boards SET modified_at = ? WHERE id = ?", ts, boardID); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// --- edges ---

func (s *SQLite) scanEdge(scanner interface{ Scan(dest ...any) error }) (board.Edge, error) {
	var e board.Edge
	var srcHandle, dstHandle, data sql.NullString
	err := scanner.Scan(&e.ID, &e.BoardID, &e.Source, &e.Target, &srcHandle, &dstHandle, &e.Type, &data, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return e, err
	}
	e.SourceHandle = srcHandle.String
	e.TargetHandle = dstHandle.String
	if data.Valid && data.String != "" {
		if err := json.Unmarshal([]byte(data.String), &e.Style); err != nil {
			return e, fmt.Errorf("parsing edge data: %w", err)
		}
	}
	return e, nil
}

const edgeColumns = "id, board_id, source_node_id, target_node_id, source_handle, target_handle, edge_type, data, created_at, updated_at"

func (s *SQLite) boardEdges(boardID string) ([]board.Edge, error) {
	rows, err := s.conn.Query(
		"SELECT "+edgeColumns+" FROM diagram_edges WHERE board_id = ?", boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []board.Edge
	for rows.Next() {
		e, err := s.scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (s *SQLite) getEdge(edgeID string) (*board.Edge, error) {
	row := s.conn.QueryRow("SELECT "+edgeColumns+" FROM diagram_edges WHERE id = ?", edgeID)
	e, err := s.scanEdge(row)
	if err != nil {
		return nil, fmt.Errorf("edge %s: %w", edgeID, err)
	}
	return &e, nil
}

func (s *SQLite) AddEdge(req NewEdge) (*board.Edge, error) {
	if req.Type == "" {
		req.Type = board.EdgeDefault
	}
	if err := board.ValidateEdgeType(req.Type); err != nil {
		return nil, err
	}

	src, err := s.getNode(req.Source)
	if err != nil {
		return nil, fmt.Errorf("source node not found: %w", err)
	}
	dst, err := s.getNode(req.Target)
	if err != nil {
		return nil, fmt.Errorf("target node not found: %w", err)
	}
	if src.BoardID != req.BoardID || dst.BoardID != req.BoardID {
		return nil, fmt.Errorf("nodes must belong to board %s", req.BoardID)
	}

	ts := now()
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
	data, err := json.Marshal(e.Style)
	if err != nil {
		return nil, err
	}
	_, err = s.conn.Exec(`
		INSERT INTO diagram_edges (id, board_id, source_node_id, target_node_id, source_handle, target_handle, edge_type, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.BoardID, e.Source, e.Target, nullable(e.SourceHandle), nullable(e.TargetHandle), string(e.Type), string(data), ts, ts)
	if err != nil {
		return nil, fmt.Errorf("adding edge: %w", err)
	}
	if err := s.touchBoard(req.BoardID, ts); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLite) UpdateEdge(edgeID string, upd board.EdgeUpdate) (*board.Edge, error) {
	if upd.Type != nil {
		if err := board.ValidateEdgeType(*upd.Type); err != nil {
			return nil, err
		}
	}
	e, err := s.getEdge(edgeID)
	if err != nil {
		return nil, err
	}
	upd.Apply(e)
	e.UpdatedAt = now()

	data, err := json.Marshal(e.Style)
	if err != nil {
		return nil, err
	}
	_, err = s.conn.Exec(`
		UPDATE diagram_edges SET source_handle = ?, target_handle = ?, edge_type = ?, data = ?, updated_at = ?
		WHERE id = ?
	`, nullable(e.SourceHandle), nullable(e.TargetHandle), string(e.Type), string(data), e.UpdatedAt, edgeID)
	if err != nil {
		return nil, fmt.Errorf("updating edge: %w", err)
	}
	if err := s.touchBoard(e.BoardID, e.UpdatedAt); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *SQLite) DeleteEdge(edgeID string) error {
	e, err := s.getEdge(edgeID)
	if err != nil {
		return err
	}
	if _, err := s.conn.Exec("DELETE FROM diagram_edges WHERE id = ?", edgeID); err != nil {
		return fmt.Errorf("deleting edge %s: %w", edgeID, err)
	}
	return s.touchBoard(e.BoardID, now())
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}

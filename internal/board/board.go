// Package board defines the diagram data model: boards, nodes with typed
// payloads, and edges. Wire field names follow the backend's camelCase
// JSON convention.
package board

// Viewport is a board's saved pan/zoom state.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport is the viewport assigned to freshly created boards.
func DefaultViewport() Viewport {
	return Viewport{X: 0, Y: 0, Zoom: 1}
}

// LinkedNote is a reference from a board to a note document.
type LinkedNote struct {
	NoteID   string `json:"noteId"`
	NotePath string `json:"notePath"`
}

// Board is one diagram document. Nodes and edges are fetched separately.
type Board struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	LinkedNotes []LinkedNote `json:"linkedNotes,omitempty"`
	Viewport    Viewport     `json:"viewport"`
	CreatedAt   int64        `json:"createdAt"`
	ModifiedAt  int64        `json:"modifiedAt"`
	Archived    bool         `json:"archived,omitempty"`
}

// BoardUpdate carries the optional fields of a board update. Nil fields
// are left unchanged.
type BoardUpdate struct {
	Name        *string
	Description *string
	Viewport    *Viewport
	Archived    *bool
}

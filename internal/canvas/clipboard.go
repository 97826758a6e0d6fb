package canvas

import (
	"encoding/json"

	"github.com/atotto/clipboard"

	"mulberry/canvas/internal/board"
	"mulberry/canvas/internal/session"
)

// Clipboard abstracts the system clipboard so tests can run headless.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// SystemClipboard uses the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) ReadAll() (string, error) { return clipboard.ReadAll() }

func (SystemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// clipMarker identifies clipboard text produced by Copy, so Paste can
// ignore unrelated clipboard content.
const clipMarker = "canvas/nodes+json"

type clipData struct {
	Kind  string     `json:"kind"`
	Nodes []clipNode `json:"nodes"`
}

type clipNode struct {
	Type board.NodeType  `json:"type"`
	X    float64         `json:"x"`
	Y    float64         `json:"y"`
	W    float64         `json:"width,omitempty"`
	H    float64         `json:"height,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Copy serializes the selected nodes onto the clipboard.
func (c *Controller) Copy() error {
	if c.clip == nil {
		return nil
	}
	ids := c.s.SelectedNodes()
	if len(ids) == 0 {
		return nil
	}
	payload := clipData{Kind: clipMarker}
	for _, id := range ids {
		n := c.s.Node(id)
		if n == nil {
			continue
		}
		raw, err := board.EncodeNodeData(n)
		if err != nil {
			return err
		}
		payload.Nodes = append(payload.Nodes, clipNode{
			Type: n.Type,
			X:    n.X, Y: n.Y,
			W: n.W, H: n.H,
			Data: raw,
		})
	}
	text, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.clip.WriteAll(string(text))
}

// Cut copies the selection and then deletes it.
func (c *Controller) Cut() error {
	if c.viewOnly {
		return nil
	}
	if err := c.Copy(); err != nil {
		return err
	}
	return c.DeleteSelection()
}

// Paste re-creates the clipboard nodes offset by the duplicate offset
// and selects the copies. Clipboard text that Copy did not produce is
// ignored.
func (c *Controller) Paste() error {
	if c.viewOnly || c.clip == nil {
		return nil
	}
	text, err := c.clip.ReadAll()
	if err != nil {
		return err
	}
	var payload clipData
	if json.Unmarshal([]byte(text), &payload) != nil || payload.Kind != clipMarker {
		return nil
	}

	var created []string
	for _, cn := range payload.Nodes {
		p, _, _, err := board.DecodeNodeData(cn.Type, cn.Data)
		if err != nil {
			continue
		}
		n, err := c.s.AddNode(cn.Type,
			cn.X+session.DuplicateOffset,
			cn.Y+session.DuplicateOffset,
			cn.W, cn.H, p)
		if err != nil {
			return err
		}
		if n != nil {
			created = append(created, n.ID)
		}
	}
	if len(created) > 0 {
		c.s.SetSelection(created, nil)
	}
	return nil
}

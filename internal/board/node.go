package board

import (
	"fmt"

	"mulberry/canvas/internal/geom"
)

// NodeType tags the six node kinds.
type NodeType string

const (
	NodeShape    NodeType = "shape"
	NodeIcon     NodeType = "icon"
	NodeText     NodeType = "text"
	NodeGroup    NodeType = "group"
	NodeImage    NodeType = "image"
	NodeSwimlane NodeType = "swimlane"
)

var nodeTypes = []NodeType{NodeShape, NodeIcon, NodeText, NodeGroup, NodeImage, NodeSwimlane}

// ValidateNodeType rejects unknown node type tags.
func ValidateNodeType(t NodeType) error {
	for _, v := range nodeTypes {
		if t == v {
			return nil
		}
	}
	return fmt.Errorf("invalid node type %q (must be one of %v)", t, nodeTypes)
}

// Node is a positioned visual element. The envelope carries everything
// common to all kinds; type-specific styling lives in Payload. A zero
// width or height means "use the type default". GroupID is the
// move-together tag and LayerID the owning layer ("" = default layer).
type Node struct {
	ID        string
	BoardID   string
	Type      NodeType
	X, Y      float64
	W, H      float64
	ZIndex    int
	GroupID   string
	LayerID   string
	Payload   Payload
	CreatedAt int64
	UpdatedAt int64
}

// defaultSizes by node type, applied when a node has no explicit size.
var defaultSizes = map[NodeType][2]float64{
	NodeShape:    {120, 80},
	NodeIcon:     {48, 48},
	NodeText:     {160, 40},
	NodeGroup:    {300, 200},
	NodeImage:    {160, 120},
	NodeSwimlane: {400, 240},
}

// Size returns the node's effective width and height.
func (n *Node) Size() (w, h float64) {
	d := defaultSizes[n.Type]
	w, h = n.W, n.H
	if w <= 0 {
		w = d[0]
	}
	if h <= 0 {
		h = d[1]
	}
	return w, h
}

// Bounds returns the node's rectangle with defaults applied.
func (n *Node) Bounds() geom.Rect {
	w, h := n.Size()
	return geom.Rect{X: n.X, Y: n.Y, W: w, H: h}
}

// NodeUpdate carries the optional fields of a node update. Nil fields are
// left unchanged; Payload nil keeps the current payload.
type NodeUpdate struct {
	X, Y    *float64
	W, H    *float64
	ZIndex  *int
	GroupID *string
	LayerID *string
	Payload Payload
}

// Apply merges the update into a node in place.
func (u NodeUpdate) Apply(n *Node) {
	if u.X != nil {
		n.X = *u.X
	}
	if u.Y != nil {
		n.Y = *u.Y
	}
	if u.W != nil {
		n.W = *u.W
	}
	if u.H != nil {
		n.H = *u.H
	}
	if u.ZIndex != nil {
		n.ZIndex = *u.ZIndex
	}
	if u.GroupID != nil {
		n.GroupID = *u.GroupID
	}
	if u.LayerID != nil {
		n.LayerID = *u.LayerID
	}
	if u.Payload != nil {
		n.Payload = u.Payload
	}
}

// PositionUpdate is one element of a bulk node position write.
type PositionUpdate struct {
	ID string  `json:"id"`
	X  float64 `json:"positionX"`
	Y  float64 `json:"positionY"`
}

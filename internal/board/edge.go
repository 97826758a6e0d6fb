package board

import (
	"fmt"

	"mulberry/canvas/internal/geom"
)

// EdgeType is the routing style of an edge.
type EdgeType string

const (
	EdgeDefault    EdgeType = "default" // bezier
	EdgeStraight   EdgeType = "straight"
	EdgeStep       EdgeType = "step"
	EdgeSmoothstep EdgeType = "smoothstep"
)

var edgeTypes = []EdgeType{EdgeDefault, EdgeStraight, EdgeStep, EdgeSmoothstep}

// ValidateEdgeType rejects unknown edge type tags.
func ValidateEdgeType(t EdgeType) error {
	for _, v := range edgeTypes {
		if t == v {
			return nil
		}
	}
	return fmt.Errorf("invalid edge type %q (must be one of %v)", t, edgeTypes)
}

// Arrow styles for edge endpoints.
const (
	ArrowNone    = "none"
	ArrowOpen    = "arrow"
	ArrowClosed  = "arrowclosed"
	ArrowDiamond = "diamond"
	ArrowCircle  = "circle"
)

// EdgeStyle is the style payload of an edge, including any manual
// routing waypoints.
type EdgeStyle struct {
	Label         string    `json:"label,omitempty"`
	Color         string    `json:"color,omitempty"`
	Animated      bool      `json:"animated,omitempty"`
	SourceArrow   string    `json:"sourceArrow,omitempty"`
	TargetArrow   string    `json:"targetArrow,omitempty"`
	StrokeWidth   float64   `json:"strokeWidth,omitempty"`
	StrokeStyle   string    `json:"strokeStyle,omitempty"` // "solid", "dashed", "dotted"
	LabelPosition string    `json:"labelPosition,omitempty"`
	LabelBgColor  string    `json:"labelBgColor,omitempty"`
	Waypoints     []geom.Pt `json:"waypoints,omitempty"`
}

// Edge is a directed connection between two nodes of the same board.
type Edge struct {
	ID           string
	BoardID      string
	Source       string
	Target       string
	SourceHandle string // "top", "right", "bottom", "left" or ""
	TargetHandle string
	Type         EdgeType
	Style        EdgeStyle
	CreatedAt    int64
	UpdatedAt    int64
}

// HasWaypoints reports whether the edge is manually routed. Such edges
// render along their waypoint path regardless of Type.
func (e *Edge) HasWaypoints() bool {
	return len(e.Style.Waypoints) > 0
}

// References reports whether the edge touches the given node as source
// or target.
func (e *Edge) References(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// EdgeUpdate carries the optional fields of an edge update. Nil fields
// are left unchanged.
type EdgeUpdate struct {
	SourceHandle *string
	TargetHandle *string
	Type         *EdgeType
	Style        *EdgeStyle
}

// Apply merges the update into an edge in place.
func (u EdgeUpdate) Apply(e *Edge) {
	if u.SourceHandle != nil {
		e.SourceHandle = *u.SourceHandle
	}
	if u.TargetHandle != nil {
		e.TargetHandle = *u.TargetHandle
	}
	if u.Type != nil {
		e.Type = *u.Type
	}
	if u.Style != nil {
		e.Style = *u.Style
	}
}

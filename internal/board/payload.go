package board

import (
	"encoding/json"
	"fmt"
)

// Payload is the type-specific part of a node. Exactly one concrete
// payload exists per NodeType, each carrying only the fields that are
// meaningful for that kind.
type Payload interface {
	Kind() NodeType
}

// ShapePayload styles a basic shape node.
type ShapePayload struct {
	Label        string
	Shape        string // "rectangle", "circle", "diamond", "cylinder", "hexagon"
	Color        string
	BorderColor  string
	BorderRadius float64
	FontSize     float64
	Opacity      float64
}

func (ShapePayload) Kind() NodeType { return NodeShape }

// IconPayload styles an icon node.
type IconPayload struct {
	Label    string
	Icon     string // icon identifier, e.g. "Server", "Database"
	Color    string
	FontSize float64
}

func (IconPayload) Kind() NodeType { return NodeIcon }

// TextPayload styles a free-standing text block.
type TextPayload struct {
	Label      string
	Color      string
	FontSize   float64
	FontWeight string // "normal", "bold"
	FontStyle  string // "normal", "italic"
	TextAlign  string // "left", "center", "right"
}

func (TextPayload) Kind() NodeType { return NodeText }

// GroupPayload styles a container node drawn behind its contents.
type GroupPayload struct {
	Label       string
	Color       string
	BorderColor string
	BorderStyle string // "solid", "dashed", "dotted"
	BorderWidth float64
	Opacity     float64
}

func (GroupPayload) Kind() NodeType { return NodeGroup }

// ImagePayload styles an image node.
type ImagePayload struct {
	Label string
	URL   string
	Fit   string // "contain", "cover", "fill"
}

func (ImagePayload) Kind() NodeType { return NodeImage }

// SwimlanePayload styles a swimlane container.
type SwimlanePayload struct {
	Label       string
	Orientation string // "horizontal", "vertical"
	Color       string
	BorderColor string
}

func (SwimlanePayload) Kind() NodeType { return NodeSwimlane }

// DefaultPayload returns the zero payload for a node type.
func DefaultPayload(t NodeType) (Payload, error) {
	switch t {
	case NodeShape:
		return ShapePayload{Shape: "rectangle"}, nil
	case NodeIcon:
		return IconPayload{}, nil
	case NodeText:
		return TextPayload{}, nil
	case NodeGroup:
		return GroupPayload{}, nil
	case NodeImage:
		return ImagePayload{}, nil
	case NodeSwimlane:
		return SwimlanePayload{Orientation: "horizontal"}, nil
	default:
		return nil, fmt.Errorf("invalid node type %q", t)
	}
}

// wireNodeData is the flat JSON object stored in a node's data column.
// Every field is optional; the node type on the envelope discriminates
// which fields are read back.
type wireNodeData struct {
	Label               *string  `json:"label,omitempty"`
	ShapeType           *string  `json:"shapeType,omitempty"`
	Icon                *string  `json:"icon,omitempty"`
	Color               *string  `json:"color,omitempty"`
	BorderColor         *string  `json:"borderColor,omitempty"`
	FontSize            *float64 `json:"fontSize,omitempty"`
	BorderStyle         *string  `json:"borderStyle,omitempty"`
	BorderWidth         *float64 `json:"borderWidth,omitempty"`
	Opacity             *float64 `json:"opacity,omitempty"`
	SelectionGroupID    *string  `json:"selectionGroupId,omitempty"`
	FontWeight          *string  `json:"fontWeight,omitempty"`
	FontStyle           *string  `json:"fontStyle,omitempty"`
	TextAlign           *string  `json:"textAlign,omitempty"`
	BorderRadius        *float64 `json:"borderRadius,omitempty"`
	LayerID             *string  `json:"layerId,omitempty"`
	ImageURL            *string  `json:"imageUrl,omitempty"`
	ImageFit            *string  `json:"imageFit,omitempty"`
	SwimlaneOrientation *string  `json:"swimlaneOrientation,omitempty"`
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optFloat(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func flt(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// EncodeNodeData serializes a node's payload, group tag and layer
// assignment into the flat data JSON the backend stores.
func EncodeNodeData(n *Node) ([]byte, error) {
	w := wireNodeData{
		SelectionGroupID: optStr(n.GroupID),
		LayerID:          optStr(n.LayerID),
	}
	switch p := n.Payload.(type) {
	case nil:
		// bare envelope, nothing type-specific to store
	case ShapePayload:
		w.Label = optStr(p.Label)
		w.ShapeType = optStr(p.Shape)
		w.Color = optStr(p.Color)
		w.BorderColor = optStr(p.BorderColor)
		w.BorderRadius = optFloat(p.BorderRadius)
		w.FontSize = optFloat(p.FontSize)
		w.Opacity = optFloat(p.Opacity)
	case IconPayload:
		w.Label = optStr(p.Label)
		w.Icon = optStr(p.Icon)
		w.Color = optStr(p.Color)
		w.FontSize = optFloat(p.FontSize)
	case TextPayload:
		w.Label = optStr(p.Label)
		w.Color = optStr(p.Color)
		w.FontSize = optFloat(p.FontSize)
		w.FontWeight = optStr(p.FontWeight)
		w.FontStyle = optStr(p.FontStyle)
		w.TextAlign = optStr(p.TextAlign)
	case GroupPayload:
		w.Label = optStr(p.Label)
		w.Color = optStr(p.Color)
		w.BorderColor = optStr(p.BorderColor)
		w.BorderStyle = optStr(p.BorderStyle)
		w.BorderWidth = optFloat(p.BorderWidth)
		w.Opacity = optFloat(p.Opacity)
	case ImagePayload:
		w.Label = optStr(p.Label)
		w.ImageURL = optStr(p.URL)
		w.ImageFit = optStr(p.Fit)
	case SwimlanePayload:
		w.Label = optStr(p.Label)
		w.SwimlaneOrientation = optStr(p.Orientation)
		w.Color = optStr(p.Color)
		w.BorderColor = optStr(p.BorderColor)
	default:
		return nil, fmt.Errorf("unknown payload type %T", n.Payload)
	}
	return json.Marshal(w)
}

// DecodeNodeData parses a stored data JSON blob into the payload for the
// given node type, plus the group tag and layer id carried inside it.
func DecodeNodeData(t NodeType, raw []byte) (p Payload, groupID, layerID string, err error) {
	var w wireNodeData
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, "", "", fmt.Errorf("parsing node data: %w", err)
		}
	}
	groupID = str(w.SelectionGroupID)
	layerID = str(w.LayerID)

	switch t {
	case NodeShape:
		p = ShapePayload{
			Label:        str(w.Label),
			Shape:        str(w.ShapeType),
			Color:        str(w.Color),
			BorderColor:  str(w.BorderColor),
			BorderRadius: flt(w.BorderRadius),
			FontSize:     flt(w.FontSize),
			Opacity:      flt(w.Opacity),
		}
	case NodeIcon:
		p = IconPayload{
			Label:    str(w.Label),
			Icon:     str(w.Icon),
			Color:    str(w.Color),
			FontSize: flt(w.FontSize),
		}
	case NodeText:
		p = TextPayload{
			Label:      str(w.Label),
			Color:      str(w.Color),
			FontSize:   flt(w.FontSize),
			FontWeight: str(w.FontWeight),
			FontStyle:  str(w.FontStyle),
			TextAlign:  str(w.TextAlign),
		}
	case NodeGroup:
		p = GroupPayload{
			Label:       str(w.Label),
			Color:       str(w.Color),
			BorderColor: str(w.BorderColor),
			BorderStyle: str(w.BorderStyle),
			BorderWidth: flt(w.BorderWidth),
			Opacity:     flt(w.Opacity),
		}
	case NodeImage:
		p = ImagePayload{
			Label: str(w.Label),
			URL:   str(w.ImageURL),
			Fit:   str(w.ImageFit),
		}
	case NodeSwimlane:
		p = SwimlanePayload{
			Label:       str(w.Label),
			Orientation: str(w.SwimlaneOrientation),
			Color:       str(w.Color),
			BorderColor: str(w.BorderColor),
		}
	default:
		return nil, "", "", fmt.Errorf("invalid node type %q", t)
	}
	return p, groupID, layerID, nil
}

// Label returns the display label of any payload, or "" when unset.
func Label(p Payload) string {
	switch v := p.(type) {
	case ShapePayload:
		return v.Label
	case IconPayload:
		return v.Label
	case TextPayload:
		return v.Label
	case GroupPayload:
		return v.Label
	case ImagePayload:
		return v.Label
	case SwimlanePayload:
		return v.Label
	default:
		return ""
	}
}

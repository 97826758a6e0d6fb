// Package render rasterizes a board to a PNG. Hidden layers are
// omitted, nodes draw in z order, and waypoint-routed edges follow
// their waypoint path.
package render

import (
	"fmt"
	"sort"

	"github.com/fogleman/gg"

	"mulberry/canvas/internal/board"
	"mulberry/canvas/internal/geom"
	"mulberry/canvas/internal/session"
)

const (
	exportPadding = 40
	labelFontSize = 13
)

// Exporter renders the open board of a session. FontPath is optional;
// without it labels are skipped because rasterizing text needs a font
// face.
type Exporter struct {
	FontPath string
}

// Export writes the session's current board to a PNG file.
func (ex *Exporter) Export(s *session.Session, outPath string) error {
	if s.Board() == nil {
		return fmt.Errorf("exporting board: no board open")
	}

	var nodes []board.Node
	for _, n := range s.Nodes() {
		if s.NodeVisible(&n) {
			nodes = append(nodes, n)
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].ZIndex < nodes[j].ZIndex
	})

	bounds := geom.Rect{W: 400, H: 300}
	if len(nodes) > 0 {
		rects := make([]geom.Rect, len(nodes))
		for i := range nodes {
			rects[i] = nodes[i].Bounds()
		}
		bounds = geom.BoundsOf(rects)
	}

	w := int(bounds.W) + 2*exportPadding
	h := int(bounds.H) + 2*exportPadding
	dc := gg.NewContext(w, h)
	dc.SetHexColor("#ffffff")
	dc.Clear()
	dc.Translate(exportPadding-bounds.X, exportPadding-bounds.Y)

	haveFont := false
	if ex.FontPath != "" {
		if err := dc.LoadFontFace(ex.FontPath, labelFontSize); err == nil {
			haveFont = true
		}
	}

	visible := make(map[string]geom.Rect, len(nodes))
	for i := range nodes {
		visible[nodes[i].ID] = nodes[i].Bounds()
	}

	// Edges draw under nodes. An edge whose endpoint sits on a hidden
	// layer is skipped with it.
	for _, e := range s.Edges() {
		src, okS := visible[e.Source]
		dst, okT := visible[e.Target]
		if !okS || !okT {
			continue
		}
		drawEdge(dc, &e, src, dst, haveFont)
	}

	for i := range nodes {
		drawNode(dc, &nodes[i], haveFont)
	}

	if err := dc.SavePNG(outPath); err != nil {
		return fmt.Errorf("writing png: %w", err)
	}
	return nil
}

// handlePoint maps an edge handle name to a point on the node boundary.
func handlePoint(r geom.Rect, handle string) geom.Pt {
	switch handle {
	case "top":
		return geom.Pt{X: r.CenterX(), Y: r.Top()}
	case "bottom":
		return geom.Pt{X: r.CenterX(), Y: r.Bottom()}
	case "left":
		return geom.Pt{X: r.Left(), Y: r.CenterY()}
	case "right":
		return geom.Pt{X: r.Right(), Y: r.CenterY()}
	default:
		return r.Center()
	}
}

func drawEdge(dc *gg.Context, e *board.Edge, src, dst geom.Rect, haveFont bool) {
	from := handlePoint(src, e.SourceHandle)
	to := handlePoint(dst, e.TargetHandle)
	path := geom.WaypointPath(from, to, e.Style.Waypoints)

	color := e.Style.Color
	if color == "" {
		color = "#64748b"
	}
	width := e.Style.StrokeWidth
	if width <= 0 {
		width = 1.5
	}
	dc.SetHexColor(color)
	dc.SetLineWidth(width)
	switch e.Style.StrokeStyle {
	case "dashed":
		dc.SetDash(6, 4)
	case "dotted":
		dc.SetDash(2, 3)
	}

	switch path.Kind {
	case geom.PathQuadratic:
		dc.MoveTo(from.X, from.Y)
		dc.QuadraticTo(path.Control.X, path.Control.Y, to.X, to.Y)
	default:
		dc.MoveTo(path.Points[0].X, path.Points[0].Y)
		for _, p := range path.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
	}
	dc.Stroke()
	dc.SetDash()

	if haveFont && e.Style.Label != "" {
		var at geom.Pt
		if path.Kind == geom.PathQuadratic {
			at = path.QuadraticAt(0.5)
		} else {
			at = geom.Midpoint(path.Points)
		}
		dc.SetHexColor("#334155")
		dc.DrawStringAnchored(e.Style.Label, at.X, at.Y-6, 0.5, 0.5)
	}
}

func drawNode(dc *gg.Context, n *board.Node, haveFont bool) {
	r := n.Bounds()

	switch p := n.Payload.(type) {
	case board.ShapePayload:
		fill := p.Color
		if fill == "" {
			fill = "#3b82f6"
		}
		radius := p.BorderRadius
		if radius <= 0 {
			radius = 6
		}
		dc.SetHexColor(fill)
		dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, radius)
		dc.Fill()
		if p.BorderColor != "" {
			dc.SetHexColor(p.BorderColor)
			dc.SetLineWidth(1.5)
			dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, radius)
			dc.Stroke()
		}
		if haveFont && p.Label != "" {
			dc.SetHexColor("#ffffff")
			dc.DrawStringAnchored(p.Label, r.CenterX(), r.CenterY(), 0.5, 0.5)
		}

	case board.SwimlanePayload:
		fill := p.Color
		if fill == "" {
			fill = "#f1f5f9"
		}
		dc.SetHexColor(fill)
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.Fill()
		border := p.BorderColor
		if border == "" {
			border = "#94a3b8"
		}
		dc.SetHexColor(border)
		dc.SetLineWidth(1.5)
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.Stroke()
		if haveFont && p.Label != "" {
			dc.SetHexColor("#334155")
			dc.DrawStringAnchored(p.Label, r.X+10, r.Y+14, 0, 0.5)
		}

	case board.GroupPayload:
		dc.SetHexColor("#94a3b8")
		dc.SetLineWidth(1)
		dc.SetDash(4, 4)
		dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 8)
		dc.Stroke()
		dc.SetDash()
		if haveFont && p.Label != "" {
			dc.SetHexColor("#64748b")
			dc.DrawStringAnchored(p.Label, r.X+8, r.Y-8, 0, 0.5)
		}

	case board.TextPayload:
		if haveFont && p.Label != "" {
			color := p.Color
			if color == "" {
				color = "#0f172a"
			}
			dc.SetHexColor(color)
			dc.DrawStringWrapped(p.Label, r.X, r.Y, 0, 0, r.W, 1.4, gg.AlignLeft)
		}

	case board.ImagePayload:
		dc.SetHexColor("#e2e8f0")
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.Fill()
		dc.SetHexColor("#94a3b8")
		dc.SetLineWidth(1)
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.Stroke()
		if haveFont && p.Label != "" {
			dc.SetHexColor("#64748b")
			dc.DrawStringAnchored(p.Label, r.CenterX(), r.Bottom()+10, 0.5, 0.5)
		}

	case board.IconPayload:
		fill := p.Color
		if fill == "" {
			fill = "#64748b"
		}
		dc.SetHexColor(fill)
		dc.DrawCircle(r.CenterX(), r.CenterY(), r.W/2)
		dc.Fill()

	default:
		dc.SetHexColor("#cbd5e1")
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.Stroke()
	}
}

package geom

import "math"

// SnapThreshold is the default distance within which a dragged rectangle
// snaps to another rectangle's edge or center.
const SnapThreshold = 8.0

// Guide is an alignment line rendered while a snap offset is active.
type Guide struct {
	Vertical bool    // vertical guides mark an X alignment, horizontal a Y alignment
	Center   bool    // center-to-center alignment rather than edge-to-edge
	Position float64 // the aligned coordinate
	From, To Pt      // extents for rendering, spanning both rectangles
}

// SnapResult is the outcome of snap detection: at most one offset per axis.
type SnapResult struct {
	DX, DY   float64
	SnappedX bool
	SnappedY bool
	Guides   []Guide
}

// Snap compares a dragged rectangle against stationary rectangles and
// returns the offset that aligns it to the first rectangle within
// threshold on each axis. Candidates per axis, in order: left-left,
// right-right, left-right, right-left, center-center (top/bottom/middle
// for Y). The first match in iteration order wins; there is no
// distance-based ranking across candidates.
func Snap(moving Rect, others []Rect, threshold float64) SnapResult {
	if threshold <= 0 {
		threshold = SnapThreshold
	}
	var out SnapResult

	for _, o := range others {
		if !out.SnappedX {
			type cand struct {
				delta  float64
				at     float64
				center bool
			}
			for _, c := range []cand{
				{o.Left() - moving.Left(), o.Left(), false},
				{o.Right() - moving.Right(), o.Right(), false},
				{o.Right() - moving.Left(), o.Right(), false},
				{o.Left() - moving.Right(), o.Left(), false},
				{o.CenterX() - moving.CenterX(), o.CenterX(), true},
			} {
				if math.Abs(c.delta) < threshold {
					out.DX = c.delta
					out.SnappedX = true
					out.Guides = append(out.Guides, verticalGuide(c.at, c.center, moving.Translate(c.delta, 0), o))
					break
				}
			}
		}
		if !out.SnappedY {
			type cand struct {
				delta  float64
				at     float64
				center bool
			}
			for _, c := range []cand{
				{o.Top() - moving.Top(), o.Top(), false},
				{o.Bottom() - moving.Bottom(), o.Bottom(), false},
				{o.Bottom() - moving.Top(), o.Bottom(), false},
				{o.Top() - moving.Bottom(), o.Top(), false},
				{o.CenterY() - moving.CenterY(), o.CenterY(), true},
			} {
				if math.Abs(c.delta) < threshold {
					out.DY = c.delta
					out.SnappedY = true
					out.Guides = append(out.Guides, horizontalGuide(c.at, c.center, moving.Translate(0, c.delta), o))
					break
				}
			}
		}
		if out.SnappedX && out.SnappedY {
			break
		}
	}
	return out
}

func verticalGuide(x float64, center bool, a, b Rect) Guide {
	top := min(a.Top(), b.Top())
	bottom := max(a.Bottom(), b.Bottom())
	return Guide{
		Vertical: true,
		Center:   center,
		Position: x,
		From:     Pt{X: x, Y: top},
		To:       Pt{X: x, Y: bottom},
	}
}

func horizontalGuide(y float64, center bool, a, b Rect) Guide {
	left := min(a.Left(), b.Left())
	right := max(a.Right(), b.Right())
	return Guide{
		Vertical: false,
		Center:   center,
		Position: y,
		From:     Pt{X: left, Y: y},
		To:       Pt{X: right, Y: y},
	}
}

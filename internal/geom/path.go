package geom

import "math"

// minSegment guards against division by zero on degenerate segments.
const minSegment = 1e-9

// PathKind discriminates how an edge path should be drawn.
type PathKind int

const (
	// PathLine is a straight segment from source to target.
	PathLine PathKind = iota
	// PathQuadratic is a quadratic curve through a single waypoint.
	PathQuadratic
	// PathPolyline visits every waypoint in order.
	PathPolyline
)

// Path is a routed edge path. Points always holds source, waypoints and
// target in order. Control is only meaningful for PathQuadratic.
type Path struct {
	Kind    PathKind
	Points  []Pt
	Control Pt
}

// WaypointPath builds the path for an edge routed through manual
// waypoints. Zero waypoints yields a straight line, one yields a
// quadratic curve passing through the waypoint at t=0.5, two or more a
// polyline through all points in order.
func WaypointPath(src, dst Pt, waypoints []Pt) Path {
	points := make([]Pt, 0, len(waypoints)+2)
	points = append(points, src)
	points = append(points, waypoints...)
	points = append(points, dst)

	switch len(waypoints) {
	case 0:
		return Path{Kind: PathLine, Points: points}
	case 1:
		// Control point chosen so the curve hits the waypoint at t=0.5:
		// B(0.5) = 0.25*S + 0.5*C + 0.25*T = W  =>  C = 2W - (S+T)/2
		w := waypoints[0]
		ctrl := Pt{
			X: 2*w.X - (src.X+dst.X)/2,
			Y: 2*w.Y - (src.Y+dst.Y)/2,
		}
		return Path{Kind: PathQuadratic, Points: points, Control: ctrl}
	default:
		return Path{Kind: PathPolyline, Points: points}
	}
}

// QuadraticAt evaluates the quadratic curve at parameter t in [0,1].
// Only valid for PathQuadratic paths.
func (p Path) QuadraticAt(t float64) Pt {
	s := p.Points[0]
	d := p.Points[len(p.Points)-1]
	u := 1 - t
	return Pt{
		X: u*u*s.X + 2*u*t*p.Control.X + t*t*d.X,
		Y: u*u*s.Y + 2*u*t*p.Control.Y + t*t*d.Y,
	}
}

// NearestSegment returns the index of the polyline segment closest to p,
// measured by clamped perpendicular distance. The point list is source,
// waypoints, target in order; segment i joins points[i] and points[i+1].
// A new waypoint inserted after a click belongs at index i in the
// waypoint list.
func NearestSegment(p Pt, points []Pt) int {
	best := 0
	bestDist := math.Inf(1)
	for i := 0; i+1 < len(points); i++ {
		d := distToSegment(p, points[i], points[i+1])
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func distToSegment(p, a, b Pt) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq < minSegment {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// Midpoint walks the polyline and returns the point at half the total
// arc length. Used to place edge labels on waypoint-routed edges.
func Midpoint(points []Pt) Pt {
	if len(points) == 0 {
		return Pt{}
	}
	if len(points) == 1 {
		return points[0]
	}

	total := 0.0
	for i := 0; i+1 < len(points); i++ {
		total += math.Hypot(points[i+1].X-points[i].X, points[i+1].Y-points[i].Y)
	}
	if total < minSegment {
		return points[0]
	}

	half := total / 2
	walked := 0.0
	for i := 0; i+1 < len(points); i++ {
		seg := math.Hypot(points[i+1].X-points[i].X, points[i+1].Y-points[i].Y)
		if walked+seg >= half {
			t := 0.0
			if seg > minSegment {
				t = (half - walked) / seg
			}
			return Pt{
				X: points[i].X + t*(points[i+1].X-points[i].X),
				Y: points[i].Y + t*(points[i+1].Y-points[i].Y),
			}
		}
		walked += seg
	}
	return points[len(points)-1]
}

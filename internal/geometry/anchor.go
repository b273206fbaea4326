package geometry

import "math"

// Box is an axis-aligned rectangle in canvas coordinates.
type Box struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Point is an absolute canvas position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Anchor is a candidate attachment point expressed as fractional offsets into a box
// plus an outward-normal hint (DX, DY).
type Anchor struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// BottomCenter is the static anchor used by owner-side endpoints.
var BottomCenter = Anchor{X: 0.5, Y: 1, DX: 0, DY: 1}

// At returns the absolute position of a inside b.
func (b Box) At(a Anchor) Point {
	return Point{X: b.X + a.X*b.W, Y: b.Y + a.Y*b.H}
}

// Distance is the euclidean distance between p and q.
func Distance(p, q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Side reports on which sides of a source box a target box lies. A field is true only
// when the boxes do not overlap on that axis.
type Side struct {
	Left, Right, Top, Bottom bool
}

// Facing compares the bounding boxes of src and target.
func Facing(src, target Box) Side {
	return Side{
		Left:   target.X+target.W < src.X,
		Right:  src.X+src.W < target.X,
		Top:    target.Y+target.H < src.Y,
		Bottom: src.Y+src.H < target.Y,
	}
}

// Reference returns the point anchors are scored against: the edge of the faced box
// nearest to src. When the boxes overlap on an axis the bottom/right branch and the
// overlap branch yield the same coordinate.
func Reference(src, target Box) Point {
	side := Facing(src, target)

	var cx, cy float64
	switch {
	case side.Top:
		cy = target.Y + target.H
	case side.Bottom:
		cy = target.Y
	default:
		cy = target.Y
	}
	switch {
	case side.Left:
		cx = target.X + target.W
	case side.Right:
		cx = target.X
	default:
		cx = target.X
	}
	return Point{X: cx, Y: cy}
}

// SelectAnchor picks the candidate anchor of src closest to the reference point towards
// target. Candidates to the right of the reference X are skipped so that edges flow left
// to right. When every candidate is skipped it returns 0; for an empty list it returns -1.
func SelectAnchor(src, target Box, anchors []Anchor) int {
	if len(anchors) == 0 {
		return -1
	}
	ref := Reference(src, target)

	best, bestDist := 0, math.Inf(1)
	for i, a := range anchors {
		p := src.At(a)
		if p.X > ref.X {
			continue
		}
		if d := Distance(p, ref); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// StripAnchors returns segments+1 anchors evenly spaced along the horizontal midline of a
// box, each pointing up. Resource attachment points use a 30-segment strip.
func StripAnchors(segments int) []Anchor {
	if segments < 1 {
		return []Anchor{{X: 0.5, Y: 0.5, DX: 0, DY: -1}}
	}
	out := make([]Anchor, 0, segments+1)
	for i := 0; i <= segments; i++ {
		out = append(out, Anchor{X: float64(i) / float64(segments), Y: 0.5, DX: 0, DY: -1})
	}
	return out
}

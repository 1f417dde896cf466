package geometry

import (
	"fmt"
	"math"
)

// Point is a pixel coordinate in frame space.
type Point struct {
	X float64
	Y float64
}

// Quad holds the four corner points reported by a QR detector, in the
// order the detector emitted them. No winding order is assumed.
type Quad [4]Point

// Box is an axis-aligned bounding box in pixel units.
type Box struct {
	X int
	Y int
	W int
	H int
}

// BoundingBox reduces a detected quadrilateral to its axis-aligned bounds.
func (q Quad) BoundingBox() Box {
	minX, minY := q[0].X, q[0].Y
	maxX, maxY := q[0].X, q[0].Y
	for _, p := range q[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Box{
		X: int(math.Round(minX)),
		Y: int(math.Round(minY)),
		W: int(math.Round(maxX - minX)),
		H: int(math.Round(maxY - minY)),
	}
}

// Centroid returns the center point of the box.
func (b Box) Centroid() Point {
	return Point{
		X: float64(b.X) + float64(b.W)/2,
		Y: float64(b.Y) + float64(b.H)/2,
	}
}

// Area returns the box area in square pixels.
func (b Box) Area() int {
	return b.W * b.H
}

// Empty reports whether the box has no usable extent.
func (b Box) Empty() bool {
	return b.W <= 0 || b.H <= 0
}

// ManhattanSizeDistance compares two boxes by width/height only, ignoring
// position. Used by the size classifier where placement in the frame is
// irrelevant and only the symbol's physical scale matters.
func (b Box) ManhattanSizeDistance(w, h float64) float64 {
	return math.Abs(float64(b.W)-w) + math.Abs(float64(b.H)-h)
}

// CentroidDistance returns the Euclidean distance between the centroids of
// two boxes.
func (b Box) CentroidDistance(other Box) float64 {
	a := b.Centroid()
	c := other.Centroid()
	dx := a.X - c.X
	dy := a.Y - c.Y
	return math.Hypot(dx, dy)
}

// String renders the box in the [x,y,w,h] form used by scan logs.
func (b Box) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", b.X, b.Y, b.W, b.H)
}

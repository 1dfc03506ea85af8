// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// PointInt represents a 2D point with integer coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ToFloat converts to Point2D.
func (p PointInt) ToFloat() Point2D {
	return Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// Rect represents a rectangle with floating-point coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Contains returns true if the point is inside the rectangle.
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// ToInt converts to RectInt, truncating coordinates.
func (r Rect) ToInt() RectInt {
	return RectInt{X: int(r.X), Y: int(r.Y), Width: int(r.Width), Height: int(r.Height)}
}

// RectFromPoints returns the axis-aligned rectangle spanned by two
// arbitrary corner points. Width and height are always non-negative,
// so a drag gesture may go in any direction.
func RectFromPoints(a, b Point2D) Rect {
	x := math.Min(a.X, b.X)
	y := math.Min(a.Y, b.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ToFloat converts to Rect.
func (r RectInt) ToFloat() Rect {
	return Rect{X: float64(r.X), Y: float64(r.Y), Width: float64(r.Width), Height: float64(r.Height)}
}

// IsEmpty reports whether the rectangle has no area. An item whose
// stored region is empty has not been calibrated yet.
func (r RectInt) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Right returns the exclusive right edge coordinate.
func (r RectInt) Right() int {
	return r.X + r.Width
}

// Bottom returns the exclusive bottom edge coordinate.
func (r RectInt) Bottom() int {
	return r.Y + r.Height
}

// RectIntFromPoints returns the normalized integer rectangle spanned by
// two corner points.
func RectIntFromPoints(a, b PointInt) RectInt {
	x := min(a.X, b.X)
	y := min(a.Y, b.Y)
	return RectInt{
		X:      x,
		Y:      y,
		Width:  abs(b.X - a.X),
		Height: abs(b.Y - a.Y),
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

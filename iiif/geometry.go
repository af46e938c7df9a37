package iiif

// Point is a position in world coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Minus returns p - o.
func (p Point) Minus(o Point) Point {
	return Point{p.X - o.X, p.Y - o.Y}
}

// Rect is an axis aligned rectangle, either in pixels or in fractions of a
// canvas depending on where it comes from.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TopLeft returns the origin of the rectangle.
func (r Rect) TopLeft() Point {
	return Point{r.X, r.Y}
}

// Center returns the middle of the rectangle.
func (r Rect) Center() Point {
	return Point{r.X + r.Width/2, r.Y + r.Height/2}
}

// ContainsPoint tells whether p lies within the rectangle, edges included.
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// fractionOf expresses r relatively to the parent bounds.
//
// Both offsets are measured in parent widths, the vertical one included.
func (r Rect) fractionOf(parent Rect) Rect {
	return Rect{
		X:      r.X / parent.Width,
		Y:      r.Y / parent.Width,
		Width:  r.Width / parent.Width,
		Height: r.Height / parent.Height,
	}
}

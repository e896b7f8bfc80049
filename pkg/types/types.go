package types

import "math"

// Box represents a normalized bounding box with coordinates in [0,1] range
type Box struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Rect converts the box to a Rect with the same values.
func (b Box) Rect() Rect {
	return Rect{X: b.X, Y: b.Y, Width: b.W, Height: b.H}
}

// Point is a position or displacement in viewport units.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Scaled returns p multiplied by f.
func (p Point) Scaled(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rotated returns p rotated by theta radians about the origin, in y-down coordinates.
func (p Point) Rotated(theta float64) Point {
	c, s := math.Cos(theta), math.Sin(theta)
	return Point{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Scaled returns s multiplied by f.
func (s Size) Scaled(f float64) Size {
	return Size{Width: s.Width * f, Height: s.Height * f}
}

// Swapped returns s with width and height exchanged.
func (s Size) Swapped() Size {
	return Size{Width: s.Height, Height: s.Width}
}

// IsEmpty reports whether either dimension is not strictly positive.
func (s Size) IsEmpty() bool {
	return !(s.Width > 0) || !(s.Height > 0)
}

// AspectRatio returns width/height.
func (s Size) AspectRatio() float64 {
	return s.Width / s.Height
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// RectOf builds a Rect from an origin and a size.
func RectOf(origin Point, size Size) Rect {
	return Rect{X: origin.X, Y: origin.Y, Width: size.Width, Height: size.Height}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Size returns the rectangle dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Center returns the midpoint.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// IsEmpty reports whether either dimension is not strictly positive.
func (r Rect) IsEmpty() bool {
	return r.Size().IsEmpty()
}

// AspectRatio returns width/height.
func (r Rect) AspectRatio() float64 {
	return r.Width / r.Height
}

// Scaled multiplies origin and size by f.
func (r Rect) Scaled(f float64) Rect {
	return Rect{X: r.X * f, Y: r.Y * f, Width: r.Width * f, Height: r.Height * f}
}

// CenteredIn returns a rectangle of the given size sharing the center of r.
func (r Rect) CenteredIn(size Size) Rect {
	return Rect{
		X:      r.X + (r.Width-size.Width)/2,
		Y:      r.Y + (r.Height-size.Height)/2,
		Width:  size.Width,
		Height: size.Height,
	}
}

// Intersect returns the overlap of r and o. The result is empty when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.MaxX(), o.MaxX())
	y1 := math.Min(r.MaxY(), o.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Contains reports whether o lies inside r, allowing tol of slack on every edge.
func (r Rect) Contains(o Rect, tol float64) bool {
	return o.X >= r.X-tol && o.Y >= r.Y-tol &&
		o.MaxX() <= r.MaxX()+tol && o.MaxY() <= r.MaxY()+tol
}

// FitAspect returns the largest size with the aspect ratio of s that fits inside bounds,
// together with the factor applied to s.
func FitAspect(s Size, bounds Size) (Size, float64) {
	if s.Height/s.Width >= bounds.Height/bounds.Width {
		f := bounds.Height / s.Height
		return Size{Width: s.Width * f, Height: bounds.Height}, f
	}
	f := bounds.Width / s.Width
	return Size{Width: bounds.Width, Height: s.Height * f}, f
}

// RatioType classifies which representation of a ratio is natural for the current orientation.
type RatioType int

const (
	Horizontal RatioType = iota
	Vertical
)

func (t RatioType) String() string {
	if t == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// RotationType counts clockwise quarter turns applied to the image.
type RotationType int

const (
	RotationNone RotationType = iota
	RotationRight
	RotationUpsideDown
	RotationLeft
)

// QuarterTurns normalizes any number of clockwise quarter turns to a RotationType.
func QuarterTurns(n int) RotationType {
	return RotationType(((n % 4) + 4) % 4)
}

// Radians returns the rotation expressed in radians.
func (t RotationType) Radians() float64 {
	return float64(t) * math.Pi / 2
}

// IsSideways reports whether width and height are exchanged on screen.
func (t RotationType) IsSideways() bool {
	return t == RotationRight || t == RotationLeft
}

func (t RotationType) String() string {
	switch t {
	case RotationRight:
		return "right"
	case RotationUpsideDown:
		return "upsideDown"
	case RotationLeft:
		return "left"
	default:
		return "none"
	}
}

// Angle is an angle in radians.
type Angle float64

// Degrees builds an Angle from degrees.
func Degrees(d float64) Angle {
	return Angle(d * math.Pi / 180)
}

// Degrees returns the angle in degrees.
func (a Angle) Degrees() float64 {
	return float64(a) * 180 / math.Pi
}

// Radians returns the angle in radians.
func (a Angle) Radians() float64 {
	return float64(a)
}

// Clamp limits a to [-limit, limit]. A nil limit leaves a unchanged.
func (a Angle) Clamp(limit *Angle) Angle {
	if limit == nil {
		return a
	}
	l := Angle(math.Abs(float64(*limit)))
	if a > l {
		return l
	}
	if a < -l {
		return -l
	}
	return a
}

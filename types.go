package stage

import "github.com/chewxy/math32"

// Vector2 is a 2D vector.
type Vector2 struct {
	X, Y float32
}

// Vector3 is a 3D vector used for positions, sizes, scales, anchor points and
// parent origins.
type Vector3 struct {
	X, Y, Z float32
}

// Vector4 is a 4D vector. Colors are stored as Vector4 (X=R, Y=G, Z=B, W=A).
type Vector4 struct {
	X, Y, Z, W float32
}

// Common anchor point / parent origin values.
var (
	TopLeft     = Vector3{0, 0, 0.5}
	TopCenter   = Vector3{0.5, 0, 0.5}
	TopRight    = Vector3{1, 0, 0.5}
	CenterLeft  = Vector3{0, 0.5, 0.5}
	Center      = Vector3{0.5, 0.5, 0.5}
	CenterRight = Vector3{1, 0.5, 0.5}
	BottomLeft  = Vector3{0, 1, 0.5}
	BottomRight = Vector3{1, 1, 0.5}

	half  = Vector3{0.5, 0.5, 0.5}
	One3  = Vector3{1, 1, 1}
	Zero3 = Vector3{}
)

// Vec3 is shorthand for Vector3{x, y, z}.
func Vec3(x, y, z float32) Vector3 { return Vector3{x, y, z} }

func (v Vector3) Add(o Vector3) Vector3 { return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vector3) Sub(o Vector3) Vector3 { return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Mul multiplies component-wise.
func (v Vector3) Mul(o Vector3) Vector3 { return Vector3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

// Div divides component-wise. Components of o that are zero leave the
// corresponding component of v unchanged.
func (v Vector3) Div(o Vector3) Vector3 {
	r := v
	if o.X != 0 {
		r.X /= o.X
	}
	if o.Y != 0 {
		r.Y /= o.Y
	}
	if o.Z != 0 {
		r.Z /= o.Z
	}
	return r
}

func (v Vector3) Scale(s float32) Vector3 { return Vector3{v.X * s, v.Y * s, v.Z * s} }

func (v Vector3) Length() float32 { return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

func (v Vector3) Dot(o Vector3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

// Normalized returns v scaled to unit length, or v when its length is zero.
func (v Vector3) Normalized() Vector3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// ApproxEqual reports whether every component of v is within eps of o.
func (v Vector3) ApproxEqual(o Vector3, eps float32) bool {
	return math32.Abs(v.X-o.X) <= eps && math32.Abs(v.Y-o.Y) <= eps && math32.Abs(v.Z-o.Z) <= eps
}

func (v Vector4) Mul(o Vector4) Vector4 {
	return Vector4{v.X * o.X, v.Y * o.Y, v.Z * o.Z, v.W * o.W}
}

// Color is an RGBA color. Components are nominally in [0, 1] but are not
// clamped on the node's own color property. Not premultiplied.
type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}
	ColorTransparent = Color{}
)

// Vec4 returns the color as a Vector4.
func (c Color) Vec4() Vector4 { return Vector4{c.R, c.G, c.B, c.A} }

// ColorFromVec4 converts a Vector4 to a Color.
func ColorFromVec4(v Vector4) Color { return Color{v.X, v.Y, v.Z, v.W} }

// Mul multiplies the colors component-wise.
func (c Color) Mul(o Color) Color { return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A} }

// Clamped returns c with every component clamped to [0, 1].
func (c Color) Clamped() Color {
	return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B), clamp01(c.A)}
}

func clamp01(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Rect is an axis-aligned screen rectangle. The origin is the top-left of
// the viewport with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float32
}

// IsEmpty reports whether r has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float32 { return r.X + r.Width }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float32 { return r.Y + r.Height }

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap with a non-zero area.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.Right() && r.Right() > other.X &&
		r.Y < other.Bottom() && r.Bottom() > other.Y
}

// Intersect returns the geometric intersection of r and other. The result is
// empty (zero width and height at r's origin clamp) when they do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x0 := math32.Max(r.X, other.X)
	y0 := math32.Max(r.Y, other.Y)
	x1 := math32.Min(r.Right(), other.Right())
	y1 := math32.Min(r.Bottom(), other.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Union returns the smallest rectangle containing r and other. Empty
// rectangles are ignored.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	x0 := math32.Min(r.X, other.X)
	y0 := math32.Min(r.Y, other.Y)
	x1 := math32.Max(r.Right(), other.Right())
	y1 := math32.Max(r.Bottom(), other.Bottom())
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// AlignTo expands r outward to the nearest multiples of tile.
func (r Rect) AlignTo(tile float32) Rect {
	if tile <= 1 || r.IsEmpty() {
		return r
	}
	x0 := math32.Floor(r.X/tile) * tile
	y0 := math32.Floor(r.Y/tile) * tile
	x1 := math32.Ceil(r.Right()/tile) * tile
	y1 := math32.Ceil(r.Bottom()/tile) * tile
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// ApproxEqual reports whether every field of r is within eps of o.
func (r Rect) ApproxEqual(o Rect, eps float32) bool {
	return math32.Abs(r.X-o.X) <= eps && math32.Abs(r.Y-o.Y) <= eps &&
		math32.Abs(r.Width-o.Width) <= eps && math32.Abs(r.Height-o.Height) <= eps
}

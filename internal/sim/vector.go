package sim

import "math"

// Vector2D is a point or displacement in the single 2D world frame.
type Vector2D struct {
	X, Y float64
}

func (v Vector2D) Add(o Vector2D) Vector2D { return Vector2D{v.X + o.X, v.Y + o.Y} }
func (v Vector2D) Sub(o Vector2D) Vector2D { return Vector2D{v.X - o.X, v.Y - o.Y} }
func (v Vector2D) Scale(s float64) Vector2D {
	return Vector2D{v.X * s, v.Y * s}
}
func (v Vector2D) Dot(o Vector2D) float64 { return v.X*o.X + v.Y*o.Y }

// Cross returns the scalar z-component of the 3D cross product of two
// in-plane vectors; its sign gives the rotational sense from v to o.
func (v Vector2D) Cross(o Vector2D) float64 { return v.X*o.Y - v.Y*o.X }

func (v Vector2D) Magnitude() float64 { return math.Hypot(v.X, v.Y) }

func (v Vector2D) Normalize() Vector2D {
	m := v.Magnitude()
	if m == 0 {
		return Vector2D{}
	}
	return Vector2D{v.X / m, v.Y / m}
}

// Perp rotates v by 90 degrees; dir = +1 is counter-clockwise, -1 clockwise.
func (v Vector2D) Perp(dir int) Vector2D {
	if dir >= 0 {
		return Vector2D{-v.Y, v.X}
	}
	return Vector2D{v.Y, -v.X}
}

func (v Vector2D) Distance(o Vector2D) float64 { return v.Sub(o).Magnitude() }

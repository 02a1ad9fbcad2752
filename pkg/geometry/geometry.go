// Package geometry provides the 2D point and affine transform types used
// by the alignment pipeline.
package geometry

import (
	"math"
)

// Point2D is a 2D point with floating-point pixel coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// AffineTransform is a 2x3 affine transformation matrix:
//
//	[a b tx]
//	[c d ty]
//
// It maps source pixel coordinates onto reference pixel coordinates.
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Identity returns the identity transform.
func Identity() AffineTransform {
	return AffineTransform{A: 1, D: 1}
}

// Apply applies the transform to a point.
func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// Compose returns this transform composed with another (this ∘ other).
func (t AffineTransform) Compose(other AffineTransform) AffineTransform {
	return AffineTransform{
		A:  t.A*other.A + t.B*other.C,
		B:  t.A*other.B + t.B*other.D,
		TX: t.A*other.TX + t.B*other.TY + t.TX,
		C:  t.C*other.A + t.D*other.C,
		D:  t.C*other.B + t.D*other.D,
		TY: t.C*other.TX + t.D*other.TY + t.TY,
	}
}

// Inverse returns the inverse transform and whether it exists.
func (t AffineTransform) Inverse() (AffineTransform, bool) {
	det := t.A*t.D - t.B*t.C
	if math.Abs(det) < 1e-10 {
		return AffineTransform{}, false
	}
	inv := 1.0 / det
	return AffineTransform{
		A:  t.D * inv,
		B:  -t.B * inv,
		TX: (t.B*t.TY - t.D*t.TX) * inv,
		C:  -t.C * inv,
		D:  t.A * inv,
		TY: (t.C*t.TX - t.A*t.TY) * inv,
	}, true
}

// Rotation returns the rotation component in degrees, assuming the
// transform is close to a similarity (rotation + uniform scale).
func (t AffineTransform) Rotation() float64 {
	return math.Atan2(t.C, t.A) * 180 / math.Pi
}

// Scale returns the scale factor of the first column vector. For a
// similarity transform this is the uniform scale.
func (t AffineTransform) Scale() float64 {
	return math.Sqrt(t.A*t.A + t.C*t.C)
}

// MeanResidual computes the mean distance between transformed source
// points and their reference points.
func (t AffineTransform) MeanResidual(src, dst []Point2D) float64 {
	if len(src) != len(dst) || len(src) == 0 {
		return math.Inf(1)
	}
	var total float64
	for i := range src {
		total += t.Apply(src[i]).Distance(dst[i])
	}
	return total / float64(len(src))
}

package shape

import "math"

// Rand is the random source consumed by the generator. *rand.Rand from
// math/rand satisfies it; tests inject seeded sources.
type Rand interface {
	Float64() float64
}

// Vec3 is a point in the shape's local space.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// uniform draws from [lo, hi).
func uniform(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// uniformPointInSphere samples a point uniformly over the volume of a sphere
// of the given radius centred at the origin: azimuth uniform, inclination via
// acos(2v-1), radius via the cube root of a uniform draw.
func uniformPointInSphere(r Rand, radius float64) Vec3 {
	theta := 2 * math.Pi * r.Float64()
	phi := math.Acos(2*r.Float64() - 1)
	rad := math.Cbrt(r.Float64()) * radius
	sinPhi := math.Sin(phi)
	return Vec3{
		X: rad * sinPhi * math.Cos(theta),
		Y: rad * sinPhi * math.Sin(theta),
		Z: rad * math.Cos(phi),
	}
}

// rotateAroundAxis rotates p by angle radians about axis (Rodrigues' formula).
// axis must be unit length.
func rotateAroundAxis(p, axis Vec3, angle float64) Vec3 {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return p.Scale(cos).
		Add(axis.Cross(p).Scale(sin)).
		Add(axis.Scale(axis.Dot(p) * (1 - cos)))
}

package shape

import "math"

const (
	saturnRingChance = 0.6
	saturnTilt       = math.Pi / 6
	fireworkRadius   = 8.0
	planetRadius     = 4.0
	headRadius       = 1.5
	figureDrop       = 2.0
)

var saturnAxis = Vec3{1, 0, 1}.Normalize()

// Generate returns count points for kind as a flat x,y,z-interleaved buffer.
// Each point is drawn independently from r. A non-positive count yields an
// empty buffer; kinds outside the enumeration fall back to Firework.
func Generate(kind Kind, count int, r Rand) []float32 {
	if count <= 0 {
		return []float32{}
	}
	buf := make([]float32, count*3)
	fill(buf, kind, r)
	return buf
}

// fill writes len(buf)/3 points of kind into buf.
func fill(buf []float32, kind Kind, r Rand) {
	for i := 0; i+2 < len(buf); i += 3 {
		p := Point(kind, r)
		buf[i] = float32(p.X)
		buf[i+1] = float32(p.Y)
		buf[i+2] = float32(p.Z)
	}
}

// Point draws a single point of kind.
func Point(kind Kind, r Rand) Vec3 {
	switch kind {
	case Heart:
		return heartPoint(r)
	case Flower:
		return flowerPoint(r)
	case Saturn:
		p, _ := saturnSample(r)
		return rotateAroundAxis(p, saturnAxis, saturnTilt)
	case MeditatingFigure:
		p, _ := figureSample(r)
		return p
	default:
		return uniformPointInSphere(r, fireworkRadius)
	}
}

// heartPoint extrudes the planar heart curve, tapering depth towards the
// curve's vertical extremes.
func heartPoint(r Rand) Vec3 {
	t := uniform(r, 0, 2*math.Pi)
	s := math.Sin(t)
	hx := 16 * s * s * s
	hy := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
	hz := uniform(r, -0.5, 0.5) * 10 * (1 - math.Abs(hy)/20)
	return Vec3{X: 0.5 * hx, Y: 0.5 * hy, Z: hz}
}

// flowerPoint maps a 4-petal rose curve onto a flattened sphere.
func flowerPoint(r Rand) Vec3 {
	t := uniform(r, 0, 2*math.Pi)
	p := uniform(r, 0, 2*math.Pi)
	rad := 5*math.Cos(4*t) + 2
	fr := rad * (0.2 + 0.8*r.Float64())
	return Vec3{
		X: fr * math.Sin(p) * math.Cos(t),
		Y: fr * math.Sin(p) * math.Sin(t),
		Z: 0.5 * fr * math.Cos(p),
	}
}

// saturnSample returns an untilted Saturn point and whether it belongs to the ring.
func saturnSample(r Rand) (Vec3, bool) {
	if r.Float64() < saturnRingChance {
		radius := uniform(r, 6, 10)
		theta := uniform(r, 0, 2*math.Pi)
		return Vec3{
			X: radius * math.Cos(theta),
			Y: uniform(r, -0.1, 0.1),
			Z: radius * math.Sin(theta),
		}, true
	}
	return uniformPointInSphere(r, planetRadius), false
}

type figureBand uint8

const (
	bandHead figureBand = iota
	bandBody
	bandLegs
)

// figureSample places a point on the head, body or crossed-legs base of the
// meditating figure, already shifted down to centre it vertically.
func figureSample(r Rand) (Vec3, figureBand) {
	var (
		p    Vec3
		band figureBand
	)
	switch part := r.Float64(); {
	case part < 0.25:
		p = uniformPointInSphere(r, headRadius)
		p.Y += 4
		band = bandHead
	case part < 0.6:
		angle := uniform(r, 0, 2*math.Pi)
		h := uniform(r, 0, 4)
		rad := math.Sqrt(r.Float64()) * (1.5 + 1.5*(1-h/4))
		p = Vec3{X: rad * math.Cos(angle), Y: h, Z: rad * math.Sin(angle)}
		band = bandBody
	default:
		angle := uniform(r, 0, 2*math.Pi)
		rad := uniform(r, 2, 4.5)
		p = Vec3{X: rad * math.Cos(angle), Y: uniform(r, -0.75, 0.75), Z: rad * math.Sin(angle)}
		band = bandLegs
	}
	p.Y -= figureDrop
	return p, band
}

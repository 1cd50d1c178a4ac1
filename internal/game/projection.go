package game

import (
	"math"

	"github.com/iburimskiy/flux-particles/internal/field"
)

const nearPlane = 0.1

// Camera is a pinhole camera on the +Z axis looking at the origin.
type Camera struct {
	Distance float64
	FOV      float64 // vertical, degrees
	Width    int
	Height   int
}

// Projector rotates the cloud (Y first, then X) and projects onto the screen.
type Projector struct {
	cam          Camera
	focal        float64
	sinX, cosX   float64
	sinY, cosY   float64
	halfW, halfH float64
}

func NewProjector(cam Camera, rot field.Rotation) Projector {
	halfH := float64(cam.Height) / 2
	return Projector{
		cam:   cam,
		focal: halfH / math.Tan(cam.FOV*math.Pi/360),
		sinX:  math.Sin(rot.X),
		cosX:  math.Cos(rot.X),
		sinY:  math.Sin(rot.Y),
		cosY:  math.Cos(rot.Y),
		halfW: float64(cam.Width) / 2,
		halfH: halfH,
	}
}

// Project returns screen coordinates and the pixels per world unit at the
// point's depth. ok is false for points behind the near plane.
func (p Projector) Project(x, y, z float64) (sx, sy, scale float64, ok bool) {
	// about Y
	x, z = x*p.cosY+z*p.sinY, -x*p.sinY+z*p.cosY
	// about X
	y, z = y*p.cosX-z*p.sinX, y*p.sinX+z*p.cosX

	depth := p.cam.Distance - z
	if depth < nearPlane {
		return 0, 0, 0, false
	}
	scale = p.focal / depth
	return p.halfW + x*scale, p.halfH - y*scale, scale, true
}

package gesture

import "math"

// State is the normalized control signal consumed by the particle field.
type State struct {
	Detected bool
	// Openness is 0 for a closed pinch and 1 for a fully open hand.
	Openness float64
	// X and Y lie in [-1, 1], mirrored horizontally and with +Y up.
	X, Y float64
}

// Idle is the state reported when no hand is present.
func Idle() State {
	return State{Detected: false, Openness: 0.5}
}

// Sanitize clamps every field into its documented range. Non-finite values
// fall back to the idle defaults.
func (s State) Sanitize() State {
	idle := Idle()
	s.Openness = clampFinite(s.Openness, 0, 1, idle.Openness)
	s.X = clampFinite(s.X, -1, 1, 0)
	s.Y = clampFinite(s.Y, -1, 1, 0)
	return s
}

func clampFinite(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return clamp(v, lo, hi)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

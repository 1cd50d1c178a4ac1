package game

import (
	"fmt"
	"time"

	"github.com/iburimskiy/flux-particles/internal/gesture"
)

const (
	Title    = "Flux Particles"
	HelpLine = "1-5 shape  Tab next  +/- speed  C color  F fullscreen  Esc quit"
)

// HandLine is the hand indicator text.
func HandLine(g gesture.State) string {
	if !g.Detected {
		return "NO HAND"
	}
	return fmt.Sprintf("HAND DETECTED  open %.2f", g.Openness)
}

// StatusLine summarizes the frame: shape, particle count, speed, color and
// running time.
func StatusLine(f Frame, count int) string {
	s := f.Settings
	elapsed := clockText(time.Duration(f.Elapsed * float64(time.Second)))
	return fmt.Sprintf("%s  x%d  speed %.1f  color %s  %s", s.Shape, count, s.Speed, s.Color, elapsed)
}

package game

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"time"
)

// hueColor is the opaque color at hue degrees (wrapped into [0, 360)) with
// saturation and value in [0, 1].
func hueColor(hue, sat, val float64) color.RGBA {
	hue = math.Mod(hue, 360)
	if hue < 0 {
		hue += 360
	}
	chroma := val * sat
	sector := hue / 60
	mid := chroma * (1 - math.Abs(math.Mod(sector, 2)-1))

	var rgb [3]float64
	switch int(sector) {
	case 0:
		rgb = [3]float64{chroma, mid, 0}
	case 1:
		rgb = [3]float64{mid, chroma, 0}
	case 2:
		rgb = [3]float64{0, chroma, mid}
	case 3:
		rgb = [3]float64{0, mid, chroma}
	case 4:
		rgb = [3]float64{mid, 0, chroma}
	default:
		rgb = [3]float64{chroma, 0, mid}
	}
	base := val - chroma
	return color.RGBA{R: channel(rgb[0] + base), G: channel(rgb[1] + base), B: channel(rgb[2] + base), A: 255}
}

func channel(v float64) uint8 {
	return uint8(math.Round(min(max(v, 0), 1) * 255))
}

// parseHexColor reads "#rrggbb" or "#rgb". ok is false for anything else,
// including the "spectrum" mode.
func parseHexColor(s string) (c color.RGBA, ok bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// ParticleColor resolves the configured color for particle i; "spectrum"
// spreads hues across the cloud and drifts them over time.
func ParticleColor(setting string, i, n int, elapsed float64) color.RGBA {
	if c, ok := parseHexColor(setting); ok {
		return c
	}
	hue := elapsed*20 + 360*float64(i)/float64(max(n, 1))
	return hueColor(hue, 0.8, 1)
}

// clockText renders d as minutes:seconds, e.g. 01:05.
func clockText(d time.Duration) string {
	d = d.Truncate(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
}

package term

import (
	"github.com/iburimskiy/flux-particles/internal/config"
	"github.com/iburimskiy/flux-particles/internal/field"
	"github.com/iburimskiy/flux-particles/internal/game"
)

// ramp orders glyphs from sparse to dense.
var ramp = []rune(".:-=+*#%@")

type cell struct {
	hits int
	// last is the index of the last particle that landed here; it picks
	// the hue in spectrum mode.
	last int
}

// raster bins projected particles into terminal cells. Cells are about
// twice as tall as they are wide, so the camera sees two pixel rows per
// cell row.
type raster struct {
	cols, rows int
	cells      []cell
}

func (r *raster) resize(cols, rows int) {
	r.cols, r.rows = max(cols, 0), max(rows, 0)
	r.cells = make([]cell, r.cols*r.rows)
}

func (r *raster) render(pos []float32, rot field.Rotation) {
	clear(r.cells)
	if r.cols == 0 || r.rows == 0 {
		return
	}
	p := game.NewProjector(game.Camera{
		Distance: config.CameraDistance,
		FOV:      config.FieldOfView,
		Width:    r.cols,
		Height:   r.rows * 2,
	}, rot)
	for i := 0; i < len(pos)/3; i++ {
		sx, sy, _, ok := p.Project(float64(pos[i*3]), float64(pos[i*3+1]), float64(pos[i*3+2]))
		if !ok {
			continue
		}
		r.plot(i, sx, sy/2)
	}
}

func (r *raster) plot(i int, x, y float64) {
	if x < 0 || y < 0 {
		return
	}
	col, row := int(x), int(y)
	if col >= r.cols || row >= r.rows {
		return
	}
	c := &r.cells[row*r.cols+col]
	c.hits++
	c.last = i
}

func (r *raster) cell(col, row int) cell {
	return r.cells[row*r.cols+col]
}

func glyph(hits int) rune {
	if hits <= 0 {
		return ' '
	}
	return ramp[min(hits, len(ramp))-1]
}

// shade dims sparse cells so dense regions read as brighter, the way
// additive blending does in the window.
func shade(hits int) float64 {
	return 0.35 + 0.65*min(float64(hits)/float64(len(ramp)), 1)
}

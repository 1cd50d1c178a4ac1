package term

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/flux-particles/internal/field"
)

func TestRaster_Render(t *testing.T) {
	r := &raster{}
	r.resize(80, 24)

	// two particles at the origin, one far right, one behind the camera
	pos := []float32{
		0, 0, 0,
		0, 0, 0,
		100, 0, 0,
		0, 0, 50,
	}
	r.render(pos, field.Rotation{})

	centre := r.cell(40, 12)
	require.Equal(t, 2, centre.hits)
	require.Equal(t, 1, centre.last)

	total := 0
	for _, c := range r.cells {
		total += c.hits
	}
	require.Equal(t, 2, total, "off-screen and culled particles are dropped")

	t.Run("Render clears the previous frame", func(t *testing.T) {
		r.render(pos[:3], field.Rotation{})
		require.Equal(t, 1, r.cell(40, 12).hits)
	})

	t.Run("Empty raster", func(t *testing.T) {
		e := &raster{}
		e.resize(0, 0)
		e.render(pos, field.Rotation{})
		require.Empty(t, e.cells)
	})
}

func TestRaster_Plot(t *testing.T) {
	r := &raster{}
	r.resize(10, 5)
	r.plot(0, -0.5, 1)
	r.plot(0, 10, 1)
	r.plot(0, 1, 5)
	for _, c := range r.cells {
		require.Zero(t, c.hits)
	}
	r.plot(7, 9.9, 4.9)
	require.Equal(t, cell{hits: 1, last: 7}, r.cell(9, 4))
}

func TestGlyphAndShade(t *testing.T) {
	assert.Equal(t, ' ', glyph(0))
	assert.Equal(t, '.', glyph(1))
	assert.Equal(t, '@', glyph(len(ramp)))
	assert.Equal(t, '@', glyph(1000))

	assert.InDelta(t, 0.35+0.65/float64(len(ramp)), shade(1), 1e-9)
	assert.InDelta(t, 1.0, shade(1000), 1e-12)
}

func TestKeyRune(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		ch   rune
		want rune
	}{
		{"Tab", tcell.KeyTab, 0, '\t'},
		{"Escape", tcell.KeyEscape, 0, 0x1b},
		{"Ctrl-C", tcell.KeyCtrlC, 0, 0x1b},
		{"Rune", tcell.KeyRune, '3', '3'},
		{"Unbound", tcell.KeyF1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, keyRune(tt.key, tt.ch))
		})
	}
}

package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/flux-particles/internal/config"
	"github.com/iburimskiy/flux-particles/internal/field"
	"github.com/iburimskiy/flux-particles/internal/gesture"
	"github.com/iburimskiy/flux-particles/internal/shape"
)

func newTestDriver(count int) (*Driver, *field.Field, *gesture.Mailbox, *Settings) {
	p := config.Default().Particles
	p.Count = count
	f := field.New(field.WithSeed(1))
	mb := gesture.NewMailbox()
	s := NewSettings(p)
	return NewDriver(f, mb, s), f, mb, s
}

func TestDriver_Tick(t *testing.T) {
	d, f, _, _ := newTestDriver(100)
	t0 := time.Unix(1000, 0)

	first := d.Tick(t0)
	require.True(t, first.Reset)
	require.Zero(t, first.Delta)
	require.Zero(t, first.Elapsed)
	require.Equal(t, 100, f.Len())

	second := d.Tick(t0.Add(16 * time.Millisecond))
	require.False(t, second.Reset)
	assert.InDelta(t, 0.016, second.Delta, 1e-9)
	assert.InDelta(t, 0.016, second.Elapsed, 1e-9)

	third := d.Tick(t0.Add(50 * time.Millisecond))
	assert.InDelta(t, 0.034, third.Delta, 1e-9)
	assert.InDelta(t, 0.05, third.Elapsed, 1e-9)

	t.Run("Clock going backwards is a zero delta", func(t *testing.T) {
		back := d.Tick(t0.Add(10 * time.Millisecond))
		require.Zero(t, back.Delta)
		assert.InDelta(t, 0.05, back.Elapsed, 1e-9)
	})
}

func TestDriver_ReadsLatestGesture(t *testing.T) {
	d, _, mb, _ := newTestDriver(10)
	t0 := time.Unix(0, 0)
	require.False(t, d.Tick(t0).Gesture.Detected)

	mb.Store(gesture.State{Detected: true, Openness: 0.2})
	mb.Store(gesture.State{Detected: true, Openness: 0.7})
	got := d.Tick(t0.Add(time.Millisecond)).Gesture
	require.True(t, got.Detected)
	require.Equal(t, 0.7, got.Openness)
}

func TestDriver_SettingsChanges(t *testing.T) {
	d, f, _, s := newTestDriver(50)
	var shapes []shape.Kind
	d.OnShapeChange(func(k shape.Kind) { shapes = append(shapes, k) })

	t0 := time.Unix(0, 0)
	d.Tick(t0)
	d.Tick(t0.Add(time.Millisecond))

	s.SetShape(shape.Saturn)
	frame := d.Tick(t0.Add(2 * time.Millisecond))
	require.True(t, frame.Reset)
	require.Equal(t, shape.Saturn, f.Shape())

	s.SetColor("#00e5ff")
	s.AdjustSpeed(0.5)
	frame = d.Tick(t0.Add(3 * time.Millisecond))
	require.False(t, frame.Reset, "color and speed do not regenerate")
	require.Equal(t, 1.5, frame.Settings.Speed)

	require.Equal(t, []shape.Kind{shape.Heart, shape.Saturn}, shapes)
}

func TestDriver_ConvergesAtSixtyFPS(t *testing.T) {
	d, f, mb, _ := newTestDriver(300)
	t0 := time.Unix(0, 0)
	d.Tick(t0)
	target := f.Target()

	mb.Store(gesture.State{Detected: true, Openness: 1})
	for i := 1; i <= 600; i++ {
		d.Tick(t0.Add(time.Duration(i) * time.Second / 60))
	}
	for i, c := range f.Current() {
		require.InDelta(t, 2*float64(target[i]), float64(c), field.DefaultNoise+1e-3)
	}
}

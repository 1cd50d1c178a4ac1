package game

import (
	"time"

	"github.com/iburimskiy/flux-particles/internal/config"
	"github.com/iburimskiy/flux-particles/internal/field"
	"github.com/iburimskiy/flux-particles/internal/gesture"
	"github.com/iburimskiy/flux-particles/internal/shape"
)

// Frame describes one tick of the driver.
type Frame struct {
	Delta    float64
	Elapsed  float64
	Gesture  gesture.State
	Settings config.Particles
	// Reset is set when the tick regenerated the field.
	Reset bool
}

// Driver calls the field's step once per render tick with the delta and the
// monotonic elapsed time, the latest gesture and the current settings.
// Renderers call Tick from their own loop; Driver never blocks.
type Driver struct {
	field    *field.Field
	gestures *gesture.Mailbox
	settings *Settings

	onShape func(shape.Kind)

	started   bool
	start     time.Time
	last      time.Time
	lastShape shape.Kind
}

func NewDriver(f *field.Field, gestures *gesture.Mailbox, settings *Settings) *Driver {
	return &Driver{field: f, gestures: gestures, settings: settings}
}

// OnShapeChange registers fn to run (on the ticking goroutine) whenever the
// selected shape differs from the previous tick, including the first tick.
func (d *Driver) OnShapeChange(fn func(shape.Kind)) {
	d.onShape = fn
}

// Tick advances the field to now.
func (d *Driver) Tick(now time.Time) Frame {
	snap := d.settings.Snapshot()
	g := d.gestures.Load()

	reset := d.field.Apply(snap.Shape, snap.Count)
	if !d.started || snap.Shape != d.lastShape {
		d.lastShape = snap.Shape
		if d.onShape != nil {
			d.onShape(snap.Shape)
		}
	}

	if !d.started {
		d.started = true
		d.start, d.last = now, now
	}
	dt := now.Sub(d.last).Seconds()
	if dt < 0 {
		dt = 0
	} else {
		d.last = now
	}
	elapsed := d.last.Sub(d.start).Seconds()

	d.field.Step(dt, elapsed, g, snap.Speed)

	return Frame{
		Delta:    dt,
		Elapsed:  elapsed,
		Gesture:  g,
		Settings: snap,
		Reset:    reset,
	}
}

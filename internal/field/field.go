// Package field holds the live particle buffers and advances them toward the
// current shape every frame.
package field

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iburimskiy/flux-particles/internal/gesture"
	"github.com/iburimskiy/flux-particles/internal/shape"
)

const (
	// DefaultNoise is the amplitude of the per-particle shimmer.
	DefaultNoise = 0.1

	convergeRate   = 3.5
	noisePhaseStep = 0.1
	minSpread      = 0.5
	spreadRange    = 1.5
	tiltFactor     = 0.5
	idleSpinRate   = 0.05
)

// Rotation is the orientation applied to the whole cloud by the renderer.
type Rotation struct {
	X, Y float64
}

// Field owns the current and target buffers of one particle cloud. Both are
// flat x,y,z-interleaved and always the same length.
type Field struct {
	mu       sync.RWMutex
	current  []float32
	target   []float32
	rotation Rotation
	kind     shape.Kind
	ready    bool

	noise  float64
	gen    shape.Generator
	seeds  *rand.Rand
	logger *zap.Logger
}

type Option func(*Field)

// WithNoise sets the shimmer amplitude; zero disables it.
func WithNoise(amplitude float64) Option {
	return func(f *Field) {
		if amplitude >= 0 && !math.IsInf(amplitude, 0) {
			f.noise = amplitude
		}
	}
}

// WithSeed makes every regeneration reproducible.
func WithSeed(seed uint64) Option {
	return func(f *Field) { f.seeds = rand.New(rand.NewPCG(seed, seed>>1|1)) }
}

func WithGenerator(g shape.Generator) Option {
	return func(f *Field) { f.gen = g }
}

func WithLogger(logger *zap.Logger) Option {
	return func(f *Field) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func New(opts ...Option) *Field {
	f := &Field{
		current: []float32{},
		target:  []float32{},
		noise:   DefaultNoise,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.seeds == nil {
		seed := uint64(time.Now().UnixNano())
		f.seeds = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	f.logger = f.logger.Named("field")
	return f
}

// Reset regenerates the target for kind and count and seeds the current
// buffer from it, so particles never animate in from the origin.
func (f *Field) Reset(kind shape.Kind, count int) {
	// Generation only fails when its context is cancelled.
	_ = f.ResetContext(context.Background(), kind, count)
}

// ResetContext is Reset with a cancellable generation. The new buffers are
// built outside the lock and swapped in together, so Step never sees a
// half-replaced field. On error the field is left untouched.
func (f *Field) ResetContext(ctx context.Context, kind shape.Kind, count int) error {
	count = max(count, 0)
	start := time.Now()

	f.mu.Lock()
	seed := f.seeds.Uint64()
	f.mu.Unlock()

	target, err := f.gen.Generate(ctx, kind, count, seed)
	if err != nil {
		return err
	}
	current := make([]float32, len(target))
	copy(current, target)

	f.mu.Lock()
	f.target = target
	f.current = current
	f.kind = kind
	f.ready = true
	f.mu.Unlock()

	f.logger.Debug("field reset",
		zap.Stringer("shape", kind),
		zap.Int("count", count),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Apply resets the field only when kind or count differ from what it holds.
// It reports whether a reset happened.
func (f *Field) Apply(kind shape.Kind, count int) bool {
	count = max(count, 0)
	f.mu.RLock()
	same := f.ready && f.kind == kind && len(f.target) == count*3
	f.mu.RUnlock()
	if same {
		return false
	}
	f.Reset(kind, count)
	return true
}

// Step advances the animation by dt seconds. Every particle eases toward its
// target scaled by the gesture's spread plus a time-varying shimmer; the
// cloud's rotation follows the hand, or spins slowly when there is none.
// Malformed inputs are clamped, never propagated.
func (f *Field) Step(dt, elapsed float64, g gesture.State, speed float64) {
	dt = nonNegative(dt)
	speed = nonNegative(speed)
	if !finite(elapsed) {
		elapsed = 0
	}
	g = g.Sanitize()

	spread := 1.0
	if g.Detected {
		spread = minSpread + g.Openness*spreadRange
	}
	lerp := clamp01(convergeRate * speed * dt)

	f.mu.Lock()
	defer f.mu.Unlock()

	cur, tgt := f.current, f.target
	for i, n := 0, len(cur)/3; i < n; i++ {
		noise := math.Sin(elapsed+float64(i)*noisePhaseStep) * f.noise
		for j := i * 3; j < i*3+3; j++ {
			c := float64(cur[j])
			goal := float64(tgt[j])*spread + noise
			cur[j] = float32(c + (goal-c)*lerp)
		}
	}

	if g.Detected {
		ease := clamp01(dt)
		f.rotation.X += (g.Y*tiltFactor - f.rotation.X) * ease
		f.rotation.Y += (g.X*tiltFactor - f.rotation.Y) * ease
	} else {
		// X is deliberately left where the last gesture put it.
		f.rotation.Y += idleSpinRate * speed * dt
	}
}

// View runs fn with read-only access to the current buffer and rotation.
// positions must not be retained or modified after fn returns.
func (f *Field) View(fn func(positions []float32, rot Rotation)) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	fn(f.current, f.rotation)
}

// Target returns a copy of the target buffer.
func (f *Field) Target() []float32 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]float32, len(f.target))
	copy(out, f.target)
	return out
}

// Current returns a copy of the current buffer.
func (f *Field) Current() []float32 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]float32, len(f.current))
	copy(out, f.current)
	return out
}

// Len is the particle count.
func (f *Field) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.current) / 3
}

func (f *Field) Shape() shape.Kind {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.kind
}

func (f *Field) Rotation() Rotation {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.rotation
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func nonNegative(v float64) float64 {
	if !finite(v) || v < 0 {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

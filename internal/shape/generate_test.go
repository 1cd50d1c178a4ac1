package shape

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestGenerate_Count(t *testing.T) {
	counts := []int{0, 1, 7, 1000}
	for _, kind := range append(All(), Kind(42)) {
		for _, count := range counts {
			buf := Generate(kind, count, newRand(1))
			require.Len(t, buf, count*3, "kind=%v count=%d", kind, count)
		}
	}

	t.Run("Negative count is empty", func(t *testing.T) {
		require.Empty(t, Generate(Heart, -5, newRand(1)))
	})

	t.Run("Zero count is empty, not nil", func(t *testing.T) {
		buf := Generate(Saturn, 0, newRand(1))
		require.NotNil(t, buf)
		require.Empty(t, buf)
	})
}

func TestGenerate_FiniteValues(t *testing.T) {
	for _, kind := range All() {
		buf := Generate(kind, 2000, newRand(7))
		for i, v := range buf {
			require.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0), "kind=%v index=%d", kind, i)
		}
	}
}

func TestGenerate_UnknownFallsBackToFirework(t *testing.T) {
	unknown := Generate(Kind(200), 500, newRand(3))
	firework := Generate(Firework, 500, newRand(3))
	require.Equal(t, firework, unknown)
}

func TestHeart_DepthTapers(t *testing.T) {
	r := newRand(11)
	for i := 0; i < 5000; i++ {
		p := heartPoint(r)
		require.LessOrEqual(t, math.Abs(p.Z), 5.0)
		// half-scale curve: |x| <= 8, y in [-8.5, 6]
		require.LessOrEqual(t, math.Abs(p.X), 8.0+1e-9)
		require.GreaterOrEqual(t, p.Y, -8.5-1e-9)
		require.LessOrEqual(t, p.Y, 6.0)
	}
}

func TestFlower_Bounds(t *testing.T) {
	r := newRand(5)
	for i := 0; i < 5000; i++ {
		p := flowerPoint(r)
		// |fr| <= 7, z flattened by half
		require.LessOrEqual(t, math.Hypot(p.X, p.Y), 7.0+1e-9)
		require.LessOrEqual(t, math.Abs(p.Z), 3.5+1e-9)
	}
}

func TestSaturn_Branches(t *testing.T) {
	r := newRand(21)
	rings := 0
	const n = 20000
	for i := 0; i < n; i++ {
		p, ring := saturnSample(r)
		if ring {
			rings++
			radial := math.Hypot(p.X, p.Z)
			require.GreaterOrEqual(t, radial, 6.0-1e-9)
			require.LessOrEqual(t, radial, 10.0+1e-9)
			require.LessOrEqual(t, math.Abs(p.Y), 0.1)
		} else {
			require.LessOrEqual(t, p.Len(), planetRadius+1e-9)
		}
	}

	t.Run("Ring share is about 60%", func(t *testing.T) {
		assert.InDelta(t, 0.6, float64(rings)/n, 0.02)
	})

	t.Run("Tilt preserves distance from origin", func(t *testing.T) {
		r := newRand(22)
		for i := 0; i < 1000; i++ {
			p, _ := saturnSample(r)
			tilted := rotateAroundAxis(p, saturnAxis, saturnTilt)
			require.InDelta(t, p.Len(), tilted.Len(), 1e-9)
		}
	})

	t.Run("Tilt moves the ring out of the XZ plane", func(t *testing.T) {
		buf := Generate(Saturn, 5000, newRand(23))
		maxY := 0.0
		for i := 1; i < len(buf); i += 3 {
			maxY = math.Max(maxY, math.Abs(float64(buf[i])))
		}
		require.Greater(t, maxY, 2.0)
	})
}

func TestMeditatingFigure_Bands(t *testing.T) {
	r := newRand(31)
	counts := map[figureBand]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		p, band := figureSample(r)
		counts[band]++
		switch band {
		case bandHead:
			require.GreaterOrEqual(t, p.Y, 0.5-1e-9)
			require.LessOrEqual(t, p.Y, 3.5+1e-9)
		case bandBody:
			require.GreaterOrEqual(t, p.Y, -2.0)
			require.LessOrEqual(t, p.Y, 2.0)
			h := p.Y + figureDrop
			require.LessOrEqual(t, math.Hypot(p.X, p.Z), 1.5+1.5*(1-h/4)+1e-9)
		case bandLegs:
			require.GreaterOrEqual(t, p.Y, -2.75)
			require.LessOrEqual(t, p.Y, -1.25)
			radial := math.Hypot(p.X, p.Z)
			require.GreaterOrEqual(t, radial, 2.0-1e-9)
			require.LessOrEqual(t, radial, 4.5+1e-9)
		}
	}

	assert.InDelta(t, 0.25, float64(counts[bandHead])/n, 0.02)
	assert.InDelta(t, 0.35, float64(counts[bandBody])/n, 0.02)
	assert.InDelta(t, 0.40, float64(counts[bandLegs])/n, 0.02)
}

func TestFirework_InsideSphere(t *testing.T) {
	buf := Generate(Firework, 5000, newRand(41))
	for i := 0; i < len(buf); i += 3 {
		p := Vec3{float64(buf[i]), float64(buf[i+1]), float64(buf[i+2])}
		require.LessOrEqual(t, p.Len(), fireworkRadius+1e-4)
	}
}

func TestUniformPointInSphere_VolumeUniform(t *testing.T) {
	// For a uniform ball, P(|p| < R/2) = 1/8.
	r := newRand(51)
	inner := 0
	const n = 40000
	for i := 0; i < n; i++ {
		if uniformPointInSphere(r, 2).Len() < 1 {
			inner++
		}
	}
	assert.InDelta(t, 0.125, float64(inner)/n, 0.01)
}

func TestRotateAroundAxis(t *testing.T) {
	tests := []struct {
		name  string
		p     Vec3
		axis  Vec3
		angle float64
		want  Vec3
	}{
		{"Quarter turn about Z", Vec3{1, 0, 0}, Vec3{0, 0, 1}, math.Pi / 2, Vec3{0, 1, 0}},
		{"Point on axis is fixed", Vec3{2, 0, 2}, saturnAxis, saturnTilt, Vec3{2, 0, 2}},
		{"Zero angle is identity", Vec3{1, 2, 3}, Vec3{0, 1, 0}, 0, Vec3{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rotateAroundAxis(tt.p, tt.axis, tt.angle)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-9)
		})
	}
}

func TestGenerator_DeterministicAcrossWorkers(t *testing.T) {
	ctx := context.Background()
	single, err := Generator{ChunkSize: 100, Workers: 1}.Generate(ctx, Flower, 1050, 99)
	require.NoError(t, err)
	parallel, err := Generator{ChunkSize: 100, Workers: 8}.Generate(ctx, Flower, 1050, 99)
	require.NoError(t, err)

	require.Len(t, single, 1050*3)
	require.Equal(t, single, parallel)

	other, err := Generator{ChunkSize: 100, Workers: 8}.Generate(ctx, Flower, 1050, 100)
	require.NoError(t, err)
	require.NotEqual(t, single, other)
}

func TestGenerator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generator{ChunkSize: 10, Workers: 2}.Generate(ctx, Heart, 1000, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerator_ZeroCount(t *testing.T) {
	buf, err := Generator{}.Generate(context.Background(), Heart, 0, 1)
	require.NoError(t, err)
	require.Empty(t, buf)
}

package shape

import (
	"context"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const DefaultChunkSize = 4096

// Generator produces target buffers from a seed. Large counts are split into
// fixed-size chunks filled concurrently; every chunk owns an RNG derived from
// (seed, chunk index), so the output for a given seed is the same whatever
// the worker count.
type Generator struct {
	ChunkSize int
	Workers   int
}

func (g Generator) chunkSize() int {
	if g.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return g.ChunkSize
}

func (g Generator) workers() int {
	if g.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return g.Workers
}

// Generate fills a new buffer of count points. The only error is ctx's.
func (g Generator) Generate(ctx context.Context, kind Kind, count int, seed uint64) ([]float32, error) {
	if count <= 0 {
		return []float32{}, nil
	}
	buf := make([]float32, count*3)
	size := g.chunkSize()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers())
	for start, chunk := 0, uint64(0); start < count; start, chunk = start+size, chunk+1 {
		end := min(start+size, count)
		part := buf[start*3 : end*3]
		rng := rand.New(rand.NewPCG(seed, chunk))
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fill(part, kind, rng)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return buf, nil
}

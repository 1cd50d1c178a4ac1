package describe

import (
	"context"
	"sync"

	"github.com/iburimskiy/flux-particles/internal/shape"
)

// Board holds the description currently on screen. Each Request supersedes
// the previous one: answers for a shape that is no longer current are dropped.
type Board struct {
	describer Describer

	mu     sync.Mutex
	text   string
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewBoard(describer Describer) *Board {
	return &Board{describer: describer, text: Initializing}
}

// Request shows Consulting and fetches the description for kind in the
// background. The previous request, if still running, is cancelled; so is
// this one when ctx is done.
func (b *Board) Request(ctx context.Context, kind shape.Kind) {
	ctx, cancel := context.WithCancel(ctx)

	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	b.cancel = cancel
	b.gen++
	gen := b.gen
	b.text = Consulting
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer cancel()
		text := b.describer.Describe(ctx, kind)

		b.mu.Lock()
		defer b.mu.Unlock()
		if gen == b.gen {
			b.text = text
		}
	}()
}

func (b *Board) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Wait blocks until every outstanding request has finished.
func (b *Board) Wait() {
	b.wg.Wait()
}

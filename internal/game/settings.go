package game

import (
	"sync"

	"github.com/iburimskiy/flux-particles/internal/config"
	"github.com/iburimskiy/flux-particles/internal/shape"
)

// Settings is the live particle configuration edited by the on-screen
// controls. The frame driver reads a snapshot of it every tick.
type Settings struct {
	mu sync.RWMutex
	p  config.Particles
}

func NewSettings(p config.Particles) *Settings {
	return &Settings{p: p}
}

func (s *Settings) Snapshot() config.Particles {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p
}

func (s *Settings) SetShape(k shape.Kind) {
	if !k.Valid() {
		return
	}
	s.mu.Lock()
	s.p.Shape = k
	s.mu.Unlock()
}

func (s *Settings) NextShape() {
	s.mu.Lock()
	s.p.Shape = s.p.Shape.Next()
	s.mu.Unlock()
}

// AdjustSpeed moves the speed by delta, clamped to the slider range.
func (s *Settings) AdjustSpeed(delta float64) {
	s.mu.Lock()
	s.p.Speed = config.ClampSpeed(s.p.Speed + delta)
	s.mu.Unlock()
}

func (s *Settings) SetColor(c string) {
	s.mu.Lock()
	s.p.Color = c
	s.mu.Unlock()
}

func (s *Settings) CycleColor() {
	s.mu.Lock()
	s.p.Color = config.NextColor(s.p.Color)
	s.mu.Unlock()
}

// Action is what a key press asks of the renderer after settings were updated.
type Action uint8

const (
	ActionNone Action = iota
	ActionHandled
	ActionFullscreen
	ActionQuit
)

// HandleKey applies the control bound to r. Renderers translate their own
// key events into these runes.
func HandleKey(s *Settings, r rune) Action {
	switch r {
	case '1', '2', '3', '4', '5':
		s.SetShape(shape.All()[r-'1'])
	case '\t':
		s.NextShape()
	case '+', '=':
		s.AdjustSpeed(config.SpeedStep)
	case '-', '_':
		s.AdjustSpeed(-config.SpeedStep)
	case 'c', 'C':
		s.CycleColor()
	case 'f', 'F':
		return ActionFullscreen
	case 'q', 'Q', 0x1b:
		return ActionQuit
	default:
		return ActionNone
	}
	return ActionHandled
}

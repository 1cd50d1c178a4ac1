// Package term draws the particle field as colored glyphs in a terminal.
// It shares the frame driver and controls with the windowed renderer.
package term

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/iburimskiy/flux-particles/internal/describe"
	"github.com/iburimskiy/flux-particles/internal/field"
	"github.com/iburimskiy/flux-particles/internal/game"
)

const tickInterval = 16 * time.Millisecond // ~60 FPS

var (
	hudStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	dimStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	handStyle = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

type Options struct {
	Field    *field.Field
	Driver   *game.Driver
	Settings *game.Settings
	Board    *describe.Board
	Logger   *zap.Logger
}

type Renderer struct {
	screen   tcell.Screen
	field    *field.Field
	driver   *game.Driver
	settings *game.Settings
	board    *describe.Board
	logger   *zap.Logger

	width, height int
	raster        *raster
	frame         game.Frame
}

// New takes over the terminal. Close must be called to restore it.
func New(opts Options) (*Renderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Renderer{
		screen:   screen,
		field:    opts.Field,
		driver:   opts.Driver,
		settings: opts.Settings,
		board:    opts.Board,
		logger:   logger.Named("term"),
		raster:   &raster{},
	}
	r.resize()
	return r, nil
}

func (r *Renderer) Close() {
	r.screen.Fini()
}

// Run ticks and draws until ctx is done or the quit key is pressed.
func (r *Renderer) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := r.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !r.handleEvent(ev) {
				return nil
			}
		case now := <-ticker.C:
			r.frame = r.driver.Tick(now)
			if r.frame.Reset {
				r.logger.Debug("field regenerated",
					zap.Stringer("shape", r.frame.Settings.Shape),
					zap.Int("count", r.frame.Settings.Count))
			}
			r.draw()
		}
	}
}

func (r *Renderer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if game.HandleKey(r.settings, keyRune(ev.Key(), ev.Rune())) == game.ActionQuit {
			return false
		}
	case *tcell.EventResize:
		r.resize()
		r.screen.Sync()
	}
	return true
}

// keyRune translates a terminal key into a control rune. Fullscreen has no
// meaning here and is ignored by the caller.
func keyRune(key tcell.Key, ch rune) rune {
	switch key {
	case tcell.KeyTab:
		return '\t'
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return 0x1b
	case tcell.KeyRune:
		return ch
	}
	return 0
}

func (r *Renderer) resize() {
	r.width, r.height = r.screen.Size()
	r.raster.resize(r.width, r.height)
}

func (r *Renderer) draw() {
	r.screen.Clear()

	s := r.frame.Settings
	n := 0
	r.field.View(func(pos []float32, rot field.Rotation) {
		n = len(pos) / 3
		r.raster.render(pos, rot)
	})

	for row := 0; row < r.raster.rows; row++ {
		for col := 0; col < r.raster.cols; col++ {
			c := r.raster.cell(col, row)
			if c.hits == 0 {
				continue
			}
			rgb := game.ParticleColor(s.Color, c.last, n, r.frame.Elapsed)
			k := shade(c.hits)
			fg := tcell.NewRGBColor(int32(float64(rgb.R)*k), int32(float64(rgb.G)*k), int32(float64(rgb.B)*k))
			r.screen.SetContent(col, row, glyph(c.hits), nil, tcell.StyleDefault.Foreground(fg))
		}
	}

	r.drawText(0, 0, game.Title, hudStyle)
	if r.board != nil {
		r.drawText(0, 1, r.board.Text(), dimStyle)
	}
	hand := game.HandLine(r.frame.Gesture)
	r.drawText(r.width-len(hand), 0, hand, handStyle)
	r.drawText(0, r.height-2, game.StatusLine(r.frame, n), hudStyle)
	r.drawText(0, r.height-1, game.HelpLine, dimStyle)

	r.screen.Show()
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	if y < 0 || y >= r.height {
		return
	}
	for _, ch := range text {
		if x >= r.width {
			return
		}
		if x >= 0 {
			r.screen.SetContent(x, y, ch, nil, style)
		}
		x++
	}
}

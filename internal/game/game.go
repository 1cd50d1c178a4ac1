package game

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/iburimskiy/flux-particles/internal/config"
	"github.com/iburimskiy/flux-particles/internal/describe"
	"github.com/iburimskiy/flux-particles/internal/field"
)

const dotSize = 4

var background = color.RGBA{R: 5, G: 5, B: 5, A: 255}

// keyRunes maps ebiten keys onto the shared control runes.
var keyRunes = map[ebiten.Key]rune{
	ebiten.KeyDigit1:         '1',
	ebiten.KeyDigit2:         '2',
	ebiten.KeyDigit3:         '3',
	ebiten.KeyDigit4:         '4',
	ebiten.KeyDigit5:         '5',
	ebiten.KeyTab:            '\t',
	ebiten.KeyEqual:          '+',
	ebiten.KeyNumpadAdd:      '+',
	ebiten.KeyMinus:          '-',
	ebiten.KeyNumpadSubtract: '-',
	ebiten.KeyC:              'c',
	ebiten.KeyF:              'f',
	ebiten.KeyQ:              'q',
	ebiten.KeyEscape:         0x1b,
}

type Options struct {
	Field    *field.Field
	Driver   *Driver
	Settings *Settings
	Board    *describe.Board
	Window   config.Window
	Logger   *zap.Logger
	// Done, when closed, ends the game as if the quit key was pressed.
	Done     <-chan struct{}
}

// Game renders the particle field with ebiten. Update is the frame driver's
// tick; Draw reads the field between ticks.
type Game struct {
	field    *field.Field
	driver   *Driver
	settings *Settings
	board    *describe.Board
	logger   *zap.Logger
	done     <-chan struct{}

	width, height int
	dot           *ebiten.Image
	frame         Frame
	clock         func() time.Time
}

func NewGame(opts Options) *Game {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dot := ebiten.NewImage(dotSize, dotSize)
	dot.Fill(color.White)

	return &Game{
		field:    opts.Field,
		driver:   opts.Driver,
		settings: opts.Settings,
		board:    opts.Board,
		logger:   logger.Named("game"),
		done:     opts.Done,
		width:    opts.Window.Width,
		height:   opts.Window.Height,
		dot:      dot,
		clock:    time.Now,
	}
}

func (g *Game) Update() error {
	select {
	case <-g.done:
		return ebiten.Termination
	default:
	}

	for key, r := range keyRunes {
		if !inpututil.IsKeyJustPressed(key) {
			continue
		}
		switch HandleKey(g.settings, r) {
		case ActionQuit:
			return ebiten.Termination
		case ActionFullscreen:
			ebiten.SetFullscreen(!ebiten.IsFullscreen())
		}
	}

	g.frame = g.driver.Tick(g.clock())
	if g.frame.Reset {
		g.logger.Debug("field regenerated",
			zap.Stringer("shape", g.frame.Settings.Shape),
			zap.Int("count", g.frame.Settings.Count))
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	g.drawParticles(screen)
	g.drawHUD(screen)
}

func (g *Game) drawParticles(screen *ebiten.Image) {
	cam := Camera{
		Distance: config.CameraDistance,
		FOV:      config.FieldOfView,
		Width:    g.width,
		Height:   g.height,
	}
	setting := g.frame.Settings.Color
	elapsed := g.frame.Elapsed

	op := &ebiten.DrawImageOptions{Blend: ebiten.BlendLighter}
	g.field.View(func(pos []float32, rot field.Rotation) {
		p := NewProjector(cam, rot)
		n := len(pos) / 3
		for i := 0; i < n; i++ {
			sx, sy, scale, ok := p.Project(float64(pos[i*3]), float64(pos[i*3+1]), float64(pos[i*3+2]))
			if !ok {
				continue
			}
			size := max(config.PointSize*scale, 1)

			op.GeoM.Reset()
			op.GeoM.Scale(size/dotSize, size/dotSize)
			op.GeoM.Translate(sx-size/2, sy-size/2)
			op.ColorScale.Reset()
			op.ColorScale.ScaleWithColor(ParticleColor(setting, i, n, elapsed))
			op.ColorScale.ScaleAlpha(config.PointOpacity)
			screen.DrawImage(g.dot, op)
		}
	})
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, Title, 12, 12)
	if g.board != nil {
		ebitenutil.DebugPrintAt(screen, g.board.Text(), 12, 30)
	}
	ebitenutil.DebugPrintAt(screen, HandLine(g.frame.Gesture), g.width-220, 12)
	status := fmt.Sprintf("%s  %.0f fps", StatusLine(g.frame, g.field.Len()), ebiten.ActualFPS())
	ebitenutil.DebugPrintAt(screen, status, 12, g.height-40)
	ebitenutil.DebugPrintAt(screen, HelpLine, 12, g.height-22)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// Run opens the window and blocks until it is closed. It must be called
// from the main goroutine.
func Run(g *Game, w config.Window) error {
	ebiten.SetWindowSize(w.Width, w.Height)
	ebiten.SetWindowTitle(w.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

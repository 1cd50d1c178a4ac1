package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iburimskiy/flux-particles/internal/config"
	"github.com/iburimskiy/flux-particles/internal/describe"
	"github.com/iburimskiy/flux-particles/internal/field"
	"github.com/iburimskiy/flux-particles/internal/game"
	"github.com/iburimskiy/flux-particles/internal/gesture"
	"github.com/iburimskiy/flux-particles/internal/gesture/audio"
	"github.com/iburimskiy/flux-particles/internal/gesture/feed"
	"github.com/iburimskiy/flux-particles/internal/logging"
	"github.com/iburimskiy/flux-particles/internal/prefs"
	"github.com/iburimskiy/flux-particles/internal/shape"
	"github.com/iburimskiy/flux-particles/internal/term"
)

type flags struct {
	config    string
	renderer  string
	shape     string
	count     int
	seed      string
	audio     string
	pickAudio bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.config, "config", "", "path to a YAML config file")
	flag.StringVar(&f.renderer, "renderer", "", "renderer: ebiten or terminal")
	flag.StringVar(&f.shape, "shape", "", "initial shape: heart, flower, saturn, meditate, firework")
	flag.IntVar(&f.count, "count", -1, "particle count")
	flag.StringVar(&f.seed, "seed", "", "seed for reproducible shapes")
	flag.StringVar(&f.audio, "audio", "", "audio file that drives the field in place of a hand")
	flag.BoolVar(&f.pickAudio, "pick-audio", false, "choose the audio file with a dialog")
	flag.Parse()
	return f
}

// applyFlags overrides cfg with whatever was set on the command line.
func applyFlags(cfg *config.Config, f flags) error {
	if f.shape != "" {
		k, err := shape.Parse(f.shape)
		if err != nil {
			return err
		}
		cfg.Particles.Shape = k
	}
	if f.count >= 0 {
		cfg.Particles.Count = f.count
	}
	if f.seed != "" {
		cfg.Particles.Seed = f.seed
	}
	return cfg.Validate()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "flux-particles: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	f := parseFlags()

	cfg, err := config.LoadFile(f.config)
	if err != nil {
		return err
	}
	if f.renderer != "" {
		cfg.Renderer = f.renderer
	}

	logOpts := logging.Options{
		Level:       cfg.Log.Level,
		Encoding:    cfg.Log.Encoding,
		Development: cfg.Log.Development,
	}
	if cfg.Renderer == config.RendererTerminal {
		// stderr belongs to the terminal screen
		logOpts.OutputPaths = []string{filepath.Join(os.TempDir(), "flux-particles.log")}
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := prefs.Open(prefs.AppName, logger)
	if err != nil {
		logger.Warn("preferences unavailable", zap.Error(err))
	}
	if f.config == "" {
		// an explicit config file wins over what was saved last time
		if cfg.Particles, err = store.Load(cfg.Particles); err != nil {
			logger.Warn("saved preferences ignored", zap.Error(err))
		}
	}
	if err := applyFlags(&cfg, f); err != nil {
		return err
	}
	particles := cfg.Particles

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fieldOpts := []field.Option{
		field.WithNoise(particles.Noise),
		field.WithGenerator(shape.Generator{ChunkSize: cfg.Generation.ChunkSize, Workers: cfg.Generation.Workers}),
		field.WithLogger(logger),
	}
	if seed, ok := particles.SeedValue(); ok {
		fieldOpts = append(fieldOpts, field.WithSeed(seed))
	}
	fld := field.New(fieldOpts...)
	mailbox := gesture.NewMailbox()
	settings := game.NewSettings(particles)
	driver := game.NewDriver(fld, mailbox, settings)

	board := describe.NewBoard(describe.New(describe.Options{
		Endpoint: cfg.Describe.Endpoint,
		Model:    cfg.Describe.Model,
		APIKey:   cfg.Describe.APIKey(),
		Timeout:  cfg.Describe.Timeout,
	}, logger))
	// cancelled before waiting on the board so quitting never waits out a request
	describeCtx, cancelDescribe := context.WithCancel(ctx)
	defer cancelDescribe()
	driver.OnShapeChange(func(k shape.Kind) { board.Request(describeCtx, k) })

	bgCtx, cancel := context.WithCancel(ctx)
	eg, bgCtx := errgroup.WithContext(bgCtx)
	startSources(bgCtx, eg, cfg.Gesture, f, mailbox, logger)

	logger.Info("starting",
		zap.String("renderer", cfg.Renderer),
		zap.Stringer("shape", particles.Shape),
		zap.Int("count", particles.Count))

	renderErr := render(ctx, cfg, fld, driver, settings, board, logger)

	cancel()
	cancelDescribe()
	if err := eg.Wait(); err != nil {
		logger.Warn("gesture source stopped", zap.Error(err))
	}
	board.Wait()

	if err := store.Save(settings.Snapshot()); err != nil {
		logger.Warn("could not save preferences", zap.Error(err))
	}
	return renderErr
}

// startSources launches the gesture producers. They fail soft: the field
// simply stays idle when no source is running.
func startSources(ctx context.Context, eg *errgroup.Group, cfg config.Gesture, f flags, mailbox *gesture.Mailbox, logger *zap.Logger) {
	if cfg.Enabled {
		landmarks := feed.NewServer(cfg.Listen, cfg.Path, mailbox, logger)
		eg.Go(func() error {
			if err := landmarks.Run(ctx); err != nil {
				logger.Warn("landmark feed unavailable", zap.String("addr", cfg.Listen), zap.Error(err))
			}
			return nil
		})
	}

	path := f.audio
	if path == "" && f.pickAudio {
		picked, err := audio.PickFile()
		switch {
		case errors.Is(err, audio.ErrNoneSelected):
			logger.Info("no audio file selected")
		case err != nil:
			logger.Warn("audio picker failed", zap.Error(err))
		default:
			path = picked
		}
	}
	if path == "" {
		return
	}
	player := audio.NewSource(mailbox, cfg.AudioGain, logger)
	eg.Go(func() error {
		if err := player.Run(ctx, path); err != nil {
			logger.Warn("audio source failed", zap.Error(err))
		}
		return nil
	})
}

func render(ctx context.Context, cfg config.Config, fld *field.Field, driver *game.Driver, settings *game.Settings, board *describe.Board, logger *zap.Logger) error {
	switch cfg.Renderer {
	case config.RendererTerminal:
		r, err := term.New(term.Options{
			Field:    fld,
			Driver:   driver,
			Settings: settings,
			Board:    board,
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		defer r.Close()
		return r.Run(ctx)
	default:
		g := game.NewGame(game.Options{
			Field:    fld,
			Driver:   driver,
			Settings: settings,
			Board:    board,
			Window:   cfg.Window,
			Logger:   logger,
			Done:     ctx.Done(),
		})
		return game.Run(g, cfg.Window)
	}
}

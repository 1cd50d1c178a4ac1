// Package audio drives the gesture signal from a playing audio file.
package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/ncruces/zenity"
	"go.uber.org/zap"

	"github.com/iburimskiy/flux-particles/internal/gesture"
)

const (
	tapRingSize     = 8192
	levelWindow     = 2048
	levelSmoothing  = 0.6
	silenceLevel    = 1e-4
	audioPollPeriod = time.Second / 30
)

// audioTap wraps a beep.Streamer and records the last N samples into a ring
// buffer so the level can be sampled from recently played audio.
type audioTap struct {
	Source    beep.Streamer
	buffer    [][2]float64
	nextIndex int
	mu        sync.RWMutex
}

func newAudioTap(src beep.Streamer, ringSize int) *audioTap {
	return &audioTap{
		Source: src,
		buffer: make([][2]float64, ringSize),
	}
}

func (t *audioTap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Source.Stream(samples)
	if n > 0 {
		t.mu.Lock()
		for i := 0; i < n; i++ {
			t.buffer[t.nextIndex] = samples[i]
			t.nextIndex = (t.nextIndex + 1) % len(t.buffer)
		}
		t.mu.Unlock()
	}
	return n, ok
}

func (t *audioTap) Err() error { return t.Source.Err() }

// snapshot returns up to the last n samples in chronological order.
func (t *audioTap) snapshot(n int) [][2]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n = min(n, len(t.buffer))
	out := make([][2]float64, n)
	start := t.nextIndex - n
	if start < 0 {
		start += len(t.buffer)
	}
	for i := 0; i < n; i++ {
		out[i] = t.buffer[(start+i)%len(t.buffer)]
	}
	return out
}

// Source drives the gesture signal from a playing audio file instead of a
// camera: loudness opens the "hand", stereo balance moves it sideways.
type Source struct {
	mailbox *gesture.Mailbox
	logger  *zap.Logger
	gain    float64
	level   float64
}

func NewSource(mailbox *gesture.Mailbox, gain float64, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gain <= 0 {
		gain = 1
	}
	return &Source{mailbox: mailbox, gain: gain, logger: logger.Named("audio")}
}

// PickFile asks the user for a file with a native dialog.
func PickFile() (string, error) {
	filename, err := zenity.SelectFile(
		zenity.Title("Open Audio File"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: []string{"*.wav", "*.mp3", "*.flac"},
		}},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", ErrNoneSelected
	}
	return filename, err
}

// decodeAudio opens path and picks a decoder by extension.
func decodeAudio(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, err
	}
	return streamer, format, nil
}

// Run plays path once, publishing a State every poll period until playback
// ends or ctx is cancelled. The mailbox is left Idle on return.
func (a *Source) Run(ctx context.Context, path string) error {
	streamer, format, err := decodeAudio(path)
	if err != nil {
		return fmt.Errorf("open audio %s: %w", path, err)
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/20)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	tap := newAudioTap(streamer, tapRingSize)
	done := make(chan struct{})
	speaker.Play(beep.Seq(tap, beep.Callback(func() { close(done) })))
	a.logger.Info("audio source playing", zap.String("path", path), zap.Int("sampleRate", int(format.SampleRate)))

	defer a.mailbox.Store(gesture.Idle())

	ticker := time.NewTicker(audioPollPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			speaker.Lock()
			speaker.Clear()
			speaker.Unlock()
			return nil
		case <-done:
			a.logger.Info("audio source finished")
			return nil
		case <-ticker.C:
			a.mailbox.Store(a.sample(tap.snapshot(levelWindow)))
		}
	}
}

// sample folds a window of samples into a State, smoothing loudness against
// the previous window.
func (a *Source) sample(samples [][2]float64) gesture.State {
	rms, balance := levels(samples)
	mag := math.Pow(rms, 0.3)
	a.level = levelSmoothing*a.level + (1-levelSmoothing)*mag
	if rms < silenceLevel {
		return gesture.Idle()
	}
	return gesture.State{
		Detected: true,
		Openness: min(a.level*a.gain, 1),
		X:        balance,
	}.Sanitize()
}

// levels returns the mono RMS of samples and the right-minus-left balance in [-1, 1].
func levels(samples [][2]float64) (rms, balance float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sumL, sumR, sumMono float64
	for _, s := range samples {
		sumL += s[0] * s[0]
		sumR += s[1] * s[1]
		mono := (s[0] + s[1]) * 0.5
		sumMono += mono * mono
	}
	n := float64(len(samples))
	rms = math.Sqrt(sumMono / n)
	l, r := math.Sqrt(sumL/n), math.Sqrt(sumR/n)
	if l+r > 0 {
		balance = (r - l) / (r + l)
	}
	return rms, balance
}

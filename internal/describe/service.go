// Package describe fetches short flavor text for a shape from a generative
// text API. Every failure is replaced by a fixed per-shape sentence.
package describe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/iburimskiy/flux-particles/internal/shape"
)

const (
	Initializing = "Initializing visualization..."
	Consulting   = "Consulting the cosmos..."
)

var (
	ErrNoAPIKey    = errors.New("no api key configured")
	ErrEmptyAnswer = errors.New("empty answer")
)

// Describer returns a description for kind. It never fails.
type Describer interface {
	Describe(ctx context.Context, kind shape.Kind) string
}

// Fallback is shown when the service cannot be reached.
func Fallback(kind shape.Kind) string {
	return fmt.Sprintf("Visualizing the essence of %s through light and motion.", kind)
}

// EmptyFallback is shown when the service answers with no text.
func EmptyFallback(kind shape.Kind) string {
	return fmt.Sprintf("A beautiful formation of %s particles.", kind)
}

func prompt(kind shape.Kind) string {
	return fmt.Sprintf("Write a very short, poetic, and whimsical 2-sentence description for a 3D particle visualization of a %q. "+
		"Focus on the visual feeling (glowing, flowing, cosmic). Do not mention technical terms.", kind.String())
}

type Options struct {
	// Endpoint overrides the API base URL; empty uses the SDK default.
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// Service asks a Gemini model for descriptions and caches successful
// answers per shape.
type Service struct {
	client *genai.Client
	model  string
	logger *zap.Logger

	mu    sync.Mutex
	cache map[shape.Kind]string
}

// New builds the service. Without an API key, or when the client cannot be
// created, every Describe returns the fallback without calling out.
func New(opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		model:  opts.Model,
		logger: logger.Named("describe"),
		cache:  make(map[shape.Kind]string),
	}
	if opts.APIKey == "" {
		return s
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.Endpoint},
	})
	if err != nil {
		s.logger.Warn("description client unavailable", zap.Error(err))
		return s
	}
	s.client = client
	return s
}

// Describe returns the cached or freshly fetched description, or a fallback.
func (s *Service) Describe(ctx context.Context, kind shape.Kind) string {
	s.mu.Lock()
	cached, ok := s.cache[kind]
	s.mu.Unlock()
	if ok {
		return cached
	}

	text, err := s.fetch(ctx, kind)
	switch {
	case errors.Is(err, ErrNoAPIKey):
		return Fallback(kind)
	case errors.Is(err, ErrEmptyAnswer):
		return EmptyFallback(kind)
	case err != nil:
		s.logger.Warn("description unavailable", zap.Stringer("shape", kind), zap.Error(err))
		return Fallback(kind)
	}

	s.mu.Lock()
	s.cache[kind] = text
	s.mu.Unlock()
	return text
}

func (s *Service) fetch(ctx context.Context, kind shape.Kind) (string, error) {
	if s.client == nil {
		return "", ErrNoAPIKey
	}
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt(kind)), &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyAnswer
	}
	return text, nil
}

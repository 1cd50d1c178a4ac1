package describe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/flux-particles/internal/shape"
)

func answer(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	return string(b)
}

func TestService_Describe(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("x-goog-api-key"))

		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Contains(t, req.Contents[0].Parts[0].Text, `"Saturn"`)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(answer("  Rings of light drift.  ")))
	}))
	defer srv.Close()

	s := New(Options{Endpoint: srv.URL, Model: "test-model", APIKey: "secret"}, nil)

	require.Equal(t, "Rings of light drift.", s.Describe(context.Background(), shape.Saturn))
	require.Equal(t, "Rings of light drift.", s.Describe(context.Background(), shape.Saturn))
	require.Equal(t, int32(1), calls.Load(), "second call is served from cache")
}

func TestService_Fallbacks(t *testing.T) {
	t.Run("No API key never calls out", func(t *testing.T) {
		s := New(Options{Endpoint: "http://127.0.0.1:1", Model: "m"}, nil)
		require.Equal(t, Fallback(shape.Heart), s.Describe(context.Background(), shape.Heart))
	})

	t.Run("Empty answer", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(answer("   ")))
		}))
		defer srv.Close()
		s := New(Options{Endpoint: srv.URL, Model: "m", APIKey: "k"}, nil)
		require.Equal(t, "A beautiful formation of Flower particles.", s.Describe(context.Background(), shape.Flower))
	})

	t.Run("Server error", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota"}}`))
		}))
		defer srv.Close()
		s := New(Options{Endpoint: srv.URL, Model: "m", APIKey: "k"}, nil)
		want := "Visualizing the essence of Meditate through light and motion."
		require.Equal(t, want, s.Describe(context.Background(), shape.MeditatingFigure))
		require.Equal(t, want, s.Describe(context.Background(), shape.MeditatingFigure))
		require.Equal(t, int32(2), calls.Load(), "failures are not cached")
	})

	t.Run("Garbage body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}))
		defer srv.Close()
		s := New(Options{Endpoint: srv.URL, Model: "m", APIKey: "k"}, nil)
		require.Equal(t, Fallback(shape.Firework), s.Describe(context.Background(), shape.Firework))
	})

	t.Run("Timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()
		s := New(Options{Endpoint: srv.URL, Model: "m", APIKey: "k", Timeout: 50 * time.Millisecond}, nil)
		require.Equal(t, Fallback(shape.Heart), s.Describe(context.Background(), shape.Heart))
	})
}

type stubDescriber struct {
	delay map[shape.Kind]time.Duration
}

func (s stubDescriber) Describe(ctx context.Context, kind shape.Kind) string {
	time.Sleep(s.delay[kind])
	return strings.ToUpper(kind.String())
}

func TestBoard(t *testing.T) {
	b := NewBoard(stubDescriber{delay: map[shape.Kind]time.Duration{
		shape.Heart:  50 * time.Millisecond,
		shape.Flower: 0,
	}})
	require.Equal(t, Initializing, b.Text())

	b.Request(context.Background(), shape.Heart)
	require.Equal(t, Consulting, b.Text())

	b.Request(context.Background(), shape.Flower)
	b.Wait()
	require.Equal(t, "FLOWER", b.Text(), "slow answer for the old shape is dropped")
}

// blockingServer never answers until the client goes away.
func blockingServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBoard_Cancel(t *testing.T) {
	t.Run("Cancelled context releases Wait", func(t *testing.T) {
		srv := blockingServer(t)
		b := NewBoard(New(Options{Endpoint: srv.URL, Model: "m", APIKey: "k", Timeout: 10 * time.Second}, nil))

		ctx, cancel := context.WithCancel(context.Background())
		b.Request(ctx, shape.Heart)
		time.Sleep(20 * time.Millisecond)
		cancel()

		start := time.Now()
		b.Wait()
		require.Less(t, time.Since(start), 2*time.Second)
		require.Equal(t, Fallback(shape.Heart), b.Text())
	})

	t.Run("Superseded request is cancelled", func(t *testing.T) {
		srv := blockingServer(t)
		slow := New(Options{Endpoint: srv.URL, Model: "m", APIKey: "k", Timeout: 10 * time.Second}, nil)
		b := NewBoard(switchDescriber{shape.Heart: slow, shape.Flower: stubDescriber{}})

		start := time.Now()
		b.Request(context.Background(), shape.Heart)
		b.Request(context.Background(), shape.Flower)
		b.Wait()
		require.Less(t, time.Since(start), 2*time.Second)
		require.Equal(t, "FLOWER", b.Text())
	})
}

type switchDescriber map[shape.Kind]Describer

func (s switchDescriber) Describe(ctx context.Context, kind shape.Kind) string {
	return s[kind].Describe(ctx, kind)
}

// Package feed accepts hand landmark frames from perception processes over
// websocket.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/iburimskiy/flux-particles/internal/gesture"
)

const maxFrameBytes = 64 << 10

// Frame is one message from a perception process: every hand it detected in
// a camera frame, each as 21 landmarks. Only the first hand is used.
type Frame struct {
	Hands []gesture.Hand `json:"hands"`
}

// State maps the frame's first hand. No hands yields Idle.
func (f Frame) State() gesture.State {
	if len(f.Hands) == 0 {
		return gesture.Idle()
	}
	return gesture.Map(f.Hands[0])
}

// Server accepts websocket connections from perception processes and
// writes every decoded frame into a Mailbox. When the last connection goes
// away the mailbox is reset to Idle so the field falls back to idle animation.
type Server struct {
	addr    string
	path    string
	mailbox *gesture.Mailbox
	logger  *zap.Logger

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]string
}

func NewServer(addr, path string, mailbox *gesture.Mailbox, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		addr:    addr,
		path:    path,
		mailbox: mailbox,
		logger:  logger.Named("feed"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 1024,
			// perception runs as a separate local process or page
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]string),
	}
}

// Handler exposes the feed endpoint on its configured path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleWebSocket)
	return mux
}

// Run serves until ctx is cancelled. A listen failure is returned to the
// caller, which is expected to carry on without a gesture feed.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("gesture feed listening", zap.String("addr", ln.Addr().String()), zap.String("path", s.path))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	s.closeAll()
	return err
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	id := uuid.NewString()
	conn.SetReadLimit(maxFrameBytes)

	s.mu.Lock()
	s.conns[conn] = id
	s.mu.Unlock()

	log := s.logger.With(zap.String("conn", id), zap.String("remote", conn.RemoteAddr().String()))
	log.Info("perception source connected")

	s.read(conn, log)

	s.mu.Lock()
	delete(s.conns, conn)
	last := len(s.conns) == 0
	if last {
		s.mailbox.Store(gesture.Idle())
	}
	s.mu.Unlock()
	_ = conn.Close()

	log.Info("perception source disconnected", zap.Bool("last", last))
}

func (s *Server) read(conn *websocket.Conn, log *zap.Logger) {
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("read ended", zap.Error(err))
			}
			return
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Debug("malformed frame ignored", zap.Error(err))
			continue
		}
		s.mailbox.Store(frame.State())
	}
}

// Connections reports how many perception sources are attached.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}

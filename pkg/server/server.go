// Package server implements the trivia game server: the TCP listener, the
// per-connection frame pumps, and the single-goroutine command dispatcher
// that owns all game state.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/NicolasHaas/gotrivia/pkg/store"
)

// Dependencies holds the loaded game state the server runs on.
type Dependencies struct {
	Users *store.UserStore
	Bank  *store.QuestionBank
}

// Server is the trivia server.
type Server struct {
	cfg        Config
	engine     *Engine
	metrics    *Metrics
	ln         net.Listener
	nextConnID atomic.Uint64
	ctx        context.Context
	cancel     context.CancelFunc
}

// New creates a Server instance over already-populated stores.
func New(cfg Config, deps Dependencies) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	metrics := NewMetrics()
	return &Server{
		cfg:     cfg,
		engine:  newEngine(cfg, deps.Users, deps.Bank, metrics),
		metrics: metrics,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Metrics returns the server metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Sessions returns the live session table.
func (s *Server) Sessions() *SessionTable {
	return s.engine.sessions
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start binds the listener and launches the engine and accept loops.
func (s *Server) Start() error {
	if s.engine.users == nil || s.engine.bank == nil {
		return fmt.Errorf("server: missing user store or question bank dependency")
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	s.ln = ln
	slog.Info("trivia server listening", "addr", ln.Addr())

	go s.engine.Run()
	go s.acceptLoop()

	s.StartMetricsHTTP()
	s.metrics.StartPeriodicLog(60*time.Second, s.ctx.Done())
	return nil
}

// Run starts the server and blocks until a shutdown signal.
func (s *Server) Run() error {
	if err := s.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")
	s.Shutdown()
	return nil
}

// Shutdown stops accepting, tears down every connection, and waits for the
// engine and pumps to exit.
func (s *Server) Shutdown() {
	s.cancel()
	if s.ln != nil {
		_ = s.ln.Close()
	}
	s.engine.Stop()
}

// acceptLoop hands accepted connections to the engine. Each gets a
// monotonically increasing connection id; ids are never reused, so a
// reconnect can never collide with a live session.
func (s *Server) acceptLoop() {
	for {
		sock, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				slog.Error("accept error", "err", err)
				continue
			}
		}

		c := newConn(s.nextConnID.Add(1), sock)
		select {
		case s.engine.register <- c:
		case <-s.ctx.Done():
			_ = sock.Close()
			return
		}
	}
}

package server

import (
	"context"
	"errors"
	"net"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/danmuck/kvwire/internal/admin"
	"github.com/danmuck/kvwire/internal/kvstore"
	"github.com/danmuck/kvwire/internal/observability"
	"github.com/rs/zerolog/log"
)

// Service owns the listener, the shared store and every live connection.
type Service struct {
	cfg   ServiceConfig
	store *kvstore.Shared

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}
	closing bool
	wg      sync.WaitGroup

	active atomic.Int64
	total  atomic.Uint64
}

func NewService() *Service {
	return NewServiceWithConfig(DefaultServiceConfig(), nil)
}

// NewServiceWithConfig builds a service around store, or a fresh store when
// store is nil.
func NewServiceWithConfig(cfg ServiceConfig, store *kvstore.Shared) *Service {
	if store == nil {
		store = kvstore.NewShared()
	}
	observability.RegisterMetrics()
	return &Service{
		cfg:   cfg.WithDefaults(),
		store: store,
		conns: make(map[net.Conn]struct{}),
	}
}

func (s *Service) Config() ServiceConfig {
	return s.cfg
}

func (s *Service) Store() *kvstore.Shared {
	return s.store
}

func (s *Service) Stats() admin.Stats {
	return admin.Stats{
		ActiveConnections: s.active.Load(),
		TotalConnections:  s.total.Load(),
		Keys:              s.store.Len(),
	}
}

// Run listens on the configured address and blocks until SIGINT or SIGTERM.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.RunContext(ctx)
}

func (s *Service) RunContext(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	log.Info().Str("node", s.cfg.NodeID).Str("addr", ln.Addr().String()).Msg("kv listening")

	var sidecar func(context.Context) error
	if s.cfg.AdminListenAddr != "" {
		sidecar = admin.Appear(s.cfg.NodeID, s.cfg.AdminListenAddr, s.cfg.CorsOrigins, s).Serve
	}
	return s.serveWith(ctx, ln, sidecar)
}

// serveWith runs Serve next to an optional sidecar. Either one failing stops
// the other through a shared context, so live connections are always closed.
func (s *Service) serveWith(ctx context.Context, ln net.Listener, sidecar func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sidecarErr := make(chan error, 1)
	if sidecar != nil {
		go func() {
			sidecarErr <- sidecar(ctx)
		}()
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.Serve(ctx, ln)
	}()
	select {
	case err := <-serveErr:
		return err
	case err := <-sidecarErr:
		if err != nil {
			log.Error().Err(err).Str("node", s.cfg.NodeID).Msg("admin stopped, shutting down")
			cancel()
			<-serveErr
			return err
		}
		return <-serveErr
	}
}

// Serve accepts connections on ln until ctx is done, then closes every live
// connection and waits for their handlers to return.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			s.closeAllConns()
			_ = ln.Close()
		case <-stopped:
		}
	}()

	var acceptErr error
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				acceptErr = err
			}
			break
		}
		if !s.trackConn(conn) {
			_ = conn.Close()
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
	if acceptErr != nil {
		log.Error().Err(acceptErr).Str("node", s.cfg.NodeID).Msg("accept failed")
		s.closeAllConns()
	}
	s.wg.Wait()
	return acceptErr
}

// trackConn refuses connections accepted after shutdown began.
func (s *Service) trackConn(conn net.Conn) bool {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	if s.closing {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Service) untrackConn(conn net.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	delete(s.conns, conn)
}

func (s *Service) closeAllConns() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	s.closing = true
	for conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, conn)
	}
}

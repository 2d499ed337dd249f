package server

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/danmuck/kvwire/internal/observability"
	"github.com/danmuck/kvwire/internal/protocol"
	"github.com/danmuck/kvwire/internal/protocol/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type connState uint8

const (
	stateConnected connState = iota
	stateServing
	stateClosed
)

func (c connState) String() string {
	switch c {
	case stateConnected:
		return "connected"
	case stateServing:
		return "serving"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// connection is the per-client state owned by one handler goroutine.
type connection struct {
	id     string
	remote string
	sock   *session.Socket
	state  connState
	log    zerolog.Logger
}

func (c *connection) close() {
	if c.state == stateClosed {
		return
	}
	c.state = stateClosed
	_ = c.sock.Close()
}

func (s *Service) handleConn(conn net.Conn) {
	defer s.untrackConn(conn)
	c := &connection{
		id:     uuid.NewString(),
		remote: conn.RemoteAddr().String(),
		sock:   session.NewSocket(conn, s.cfg.Limits),
		state:  stateConnected,
	}
	c.log = log.With().Str("node", s.cfg.NodeID).Str("conn", c.id).Str("remote", c.remote).Logger()
	defer c.close()

	s.total.Add(1)
	active := s.active.Add(1)
	observability.RecordConnOpened(s.cfg.NodeID)
	c.log.Info().Int64("active_clients", active).Msg("client connected")
	defer func() {
		remaining := s.active.Add(-1)
		observability.RecordConnClosed(s.cfg.NodeID)
		c.log.Info().Int64("active_clients", remaining).Str("state", c.state.String()).Msg("client disconnected")
	}()

	if err := c.sock.Send(protocol.Text(s.cfg.Greeting)); err != nil {
		c.log.Warn().Err(err).Msg("greeting failed")
		return
	}
	c.state = stateServing
	s.serveConn(c)
}

// serveConn answers requests in arrival order until the peer leaves or
// breaks the wire contract.
func (s *Service) serveConn(c *connection) {
	for {
		pkt, err := c.sock.Receive()
		if err != nil {
			s.logReceiveError(c, err)
			return
		}
		start := time.Now()
		res := s.dispatch(c.log, pkt)
		if res.reply {
			if err := c.sock.Send(protocol.Text(res.text)); err != nil {
				c.log.Warn().Err(err).Str("type", pkt.Type.String()).Msg("reply failed")
				return
			}
		}
		observability.RecordRequest(s.cfg.NodeID, pkt.Type.String(), res.outcome, time.Since(start))
	}
}

func (s *Service) logReceiveError(c *connection, err error) {
	switch {
	case errors.Is(err, io.EOF):
		c.log.Debug().Msg("client closed stream")
	case protocol.IsProtocolError(err):
		reason := protocol.Reason(err)
		observability.RecordProtocolError(s.cfg.NodeID, reason)
		c.log.Warn().Err(err).Str("reason", reason).Int("buffered", c.sock.Buffered()).Msg("protocol error, closing")
	case errors.Is(err, net.ErrClosed):
		c.log.Debug().Msg("connection closed during shutdown")
	default:
		c.log.Warn().Err(err).Msg("receive failed")
	}
}

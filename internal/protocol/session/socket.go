package session

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/danmuck/kvwire/internal/protocol"
	"github.com/danmuck/kvwire/internal/protocol/frame"
)

const readChunkSize = 4096

var ErrSocketBroken = errors.New("session: socket unusable after error")

// Socket sends and receives whole packets over one duplex stream. A Socket is
// owned by a single goroutine; it is not safe for concurrent use.
type Socket struct {
	conn    io.ReadWriteCloser
	codec   *protocol.Codec
	inbox   bytes.Buffer
	chunk   []byte
	readErr error
	broken  error
}

func NewSocket(conn io.ReadWriteCloser, limits frame.Limits) *Socket {
	return &Socket{
		conn:  conn,
		codec: protocol.NewCodec(limits),
		chunk: make([]byte, readChunkSize),
	}
}

// Send writes exactly one full frame and returns once the write completes.
func (s *Socket) Send(p protocol.Packet) error {
	if s.broken != nil {
		return fmt.Errorf("%w: %v", ErrSocketBroken, s.broken)
	}
	buf, err := protocol.Marshal(p)
	if err != nil {
		return err
	}
	if _, err := s.conn.Write(buf); err != nil {
		s.broken = err
		return fmt.Errorf("session: send %s: %w", p.Type, err)
	}
	return nil
}

// Receive blocks until one packet is decoded. A clean end of stream with no
// buffered bytes returns io.EOF. A stream that ends mid-frame returns
// protocol.ErrFrameTruncated. Any decode or read error leaves the socket
// unusable; the caller closes it.
func (s *Socket) Receive() (protocol.Packet, error) {
	if s.broken != nil {
		return protocol.Packet{}, fmt.Errorf("%w: %v", ErrSocketBroken, s.broken)
	}
	for {
		p, ok, err := s.codec.Decode(&s.inbox)
		if err != nil {
			s.broken = err
			return protocol.Packet{}, err
		}
		if ok {
			return p, nil
		}
		if s.readErr != nil {
			return protocol.Packet{}, s.endOfInput()
		}

		n, err := s.conn.Read(s.chunk)
		if n > 0 {
			s.inbox.Write(s.chunk[:n])
		}
		if err != nil {
			s.readErr = err
		}
	}
}

func (s *Socket) endOfInput() error {
	err := s.readErr
	switch {
	case errors.Is(err, io.EOF) && s.inbox.Len() == 0:
		return io.EOF
	case errors.Is(err, io.EOF):
		s.broken = err
		return fmt.Errorf("%w: stream ended with %d buffered bytes", protocol.ErrFrameTruncated, s.inbox.Len())
	default:
		s.broken = err
		return fmt.Errorf("session: receive: %w", err)
	}
}

// Buffered reports bytes received but not yet decoded.
func (s *Socket) Buffered() int {
	return s.inbox.Len()
}

func (s *Socket) Close() error {
	return s.conn.Close()
}

// RemoteAddr returns the peer address when the stream is a net.Conn.
func (s *Socket) RemoteAddr() string {
	if c, ok := s.conn.(net.Conn); ok && c.RemoteAddr() != nil {
		return c.RemoteAddr().String()
	}
	return ""
}

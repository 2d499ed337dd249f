// Package client dials a kv server and exchanges request/reply packets with it.
package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/kvwire/internal/protocol"
	"github.com/danmuck/kvwire/internal/protocol/session"
	"github.com/rs/zerolog/log"
)

const failurePrefix = "Request failed"

var (
	ErrAddressRequired  = errors.New("client: server address required")
	ErrRequestFailed    = errors.New("client: request failed")
	ErrUnexpectedReply  = errors.New("client: unexpected reply")
	ErrConnectionClosed = errors.New("client: connection closed")
	ErrReservedValue    = errors.New("client: value starts with the server failure prefix")
)

type Config struct {
	Address            string
	Session            session.Config
	MaxConnectAttempts int
}

func DefaultConfig() Config {
	return Config{
		Address:            "127.0.0.1:7070",
		Session:            session.DefaultConfig(),
		MaxConnectAttempts: 5,
	}
}

// Client is one live connection. Requests are serialized so each reply pairs
// with the request that caused it.
type Client struct {
	cfg      Config
	conn     net.Conn
	greeting string

	mu     sync.Mutex
	sock   *session.Socket
	closed bool
}

// Dial connects with exponential backoff and consumes the server greeting.
// MaxConnectAttempts <= 0 retries until ctx is done.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, ErrAddressRequired
	}
	cfg.Session = cfg.Session.WithDefaults()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var attempt int
	for {
		attempt++
		c, err := dialOnce(ctx, cfg)
		if err == nil {
			return c, nil
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("addr", cfg.Address).Msg("dial failed")
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if cfg.MaxConnectAttempts > 0 && attempt >= cfg.MaxConnectAttempts {
			return nil, err
		}
		delay := session.NextBackoffDelay(cfg.Session.Backoff, attempt, rng)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func dialOnce(ctx context.Context, cfg Config) (*Client, error) {
	dialer := net.Dialer{Timeout: cfg.Session.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Address)
	if err != nil {
		return nil, err
	}
	c := &Client{
		cfg:  cfg,
		conn: conn,
		sock: session.NewSocket(conn, cfg.Session.Limits),
	}

	_ = conn.SetReadDeadline(time.Now().Add(cfg.Session.ConnectTimeout))
	greet, err := c.sock.Receive()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("client: read greeting: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})
	text, ok := greet.TextContent()
	if !ok {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: greeting was %s", ErrUnexpectedReply, greet)
	}
	c.greeting = text
	log.Debug().Str("addr", cfg.Address).Str("greeting", text).Msg("connected")
	return c, nil
}

func (c *Client) Greeting() string {
	return c.greeting
}

func (c *Client) RemoteAddr() string {
	return c.sock.RemoteAddr()
}

// Do sends p and waits for its text reply. Text packets get no reply and
// return "". A failure reply is returned along with ErrRequestFailed.
//
// Failures travel in-band as text starting with "Request failed", so a stored
// value with that prefix would read back as a failure. SET refuses such
// values with ErrReservedValue before anything is sent.
func (c *Client) Do(ctx context.Context, p protocol.Packet) (string, error) {
	if req, ok := p.Request(); ok && p.Type == protocol.TypeSet && strings.HasPrefix(req.Value, failurePrefix) {
		return "", fmt.Errorf("%w: %.32q", ErrReservedValue, req.Value)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", ErrConnectionClosed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	deadline, _ := ctx.Deadline()
	_ = c.conn.SetDeadline(deadline)

	if err := c.sock.Send(p); err != nil {
		return "", err
	}
	if p.Type == protocol.TypeText {
		return "", nil
	}

	reply, err := c.sock.Receive()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	text, ok := reply.TextContent()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedReply, reply)
	}
	if strings.HasPrefix(text, failurePrefix) {
		return text, fmt.Errorf("%w: %s", ErrRequestFailed, text)
	}
	return text, nil
}

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.Do(ctx, protocol.Get(key))
}

func (c *Client) Set(ctx context.Context, key, value string) error {
	_, err := c.Do(ctx, protocol.Set(key, value))
	return err
}

func (c *Client) Del(ctx context.Context, key string) error {
	_, err := c.Do(ctx, protocol.Del(key))
	return err
}

func (c *Client) Ping(ctx context.Context) (string, error) {
	return c.Do(ctx, protocol.Ping())
}

// Say sends an observational text packet.
func (c *Client) Say(ctx context.Context, text string) error {
	_, err := c.Do(ctx, protocol.Text(text))
	return err
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.sock.Close()
}

package client

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/danmuck/kvwire/internal/protocol"
)

var (
	ErrEmptyCommand  = errors.New("client: empty command")
	ErrUnknownMethod = errors.New("client: unknown method")
	ErrUsage         = errors.New("client: usage")
)

const Usage = "GET key | SET key value | DEL key | PING | TEXT message"

// ParseCommand turns one input line of the form METHOD KEY [VALUE] into a
// packet. The method is case-insensitive and VALUE runs to the end of the
// line, spaces included.
func ParseCommand(line string) (protocol.Packet, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return protocol.Packet{}, ErrEmptyCommand
	}
	method, rest := cutSpace(line)
	key, value := cutSpace(rest)

	switch strings.ToUpper(method) {
	case "GET":
		if key == "" || value != "" {
			return protocol.Packet{}, fmt.Errorf("%w: GET key", ErrUsage)
		}
		return protocol.Get(key), nil
	case "SET":
		if key == "" || value == "" {
			return protocol.Packet{}, fmt.Errorf("%w: SET key value", ErrUsage)
		}
		return protocol.Set(key, value), nil
	case "DEL":
		if key == "" || value != "" {
			return protocol.Packet{}, fmt.Errorf("%w: DEL key", ErrUsage)
		}
		return protocol.Del(key), nil
	case "PING":
		if rest != "" {
			return protocol.Packet{}, fmt.Errorf("%w: PING", ErrUsage)
		}
		return protocol.Ping(), nil
	case "TEXT":
		if rest == "" {
			return protocol.Packet{}, fmt.Errorf("%w: TEXT message", ErrUsage)
		}
		return protocol.Text(rest), nil
	default:
		return protocol.Packet{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// cutSpace splits s at the first run of whitespace.
func cutSpace(s string) (head, tail string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}

package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/danmuck/kvwire/internal/protocol/frame"
)

// Codec decodes frames out of an accumulating buffer.
type Codec struct {
	Limits frame.Limits
}

func NewCodec(limits frame.Limits) *Codec {
	return &Codec{Limits: limits}
}

// Decode yields at most one packet from buf. When buf holds less than one
// complete frame it returns ok=false and leaves buf untouched. On success it
// consumes exactly that frame and leaves any remainder for the next call.
func (c *Codec) Decode(buf *bytes.Buffer) (p Packet, ok bool, err error) {
	p, n, err := DecodeFrame(buf.Bytes(), c.Limits)
	if err != nil || n == 0 {
		return Packet{}, false, err
	}
	buf.Next(n)
	return p, true, nil
}

// DecodeFrame decodes the first frame in src without retaining src. It returns
// n=0 with a nil error when src does not yet hold a complete frame.
func DecodeFrame(src []byte, limits frame.Limits) (p Packet, n int, err error) {
	if len(src) < frame.HeaderLen {
		return Packet{}, 0, nil
	}
	t, err := ParsePacketType(src[0])
	if err != nil {
		return Packet{}, 0, err
	}
	h, complete, err := frame.Peek(src, limits)
	if err != nil {
		if errors.Is(err, frame.ErrBodyTooLarge) {
			return Packet{}, 0, fmt.Errorf("%w: %v", ErrPayloadTooLarge, err)
		}
		return Packet{}, 0, err
	}
	if !complete {
		return Packet{}, 0, nil
	}

	end := int(h.FrameLen())
	body, err := decodeBody(t, src[frame.HeaderLen:end])
	if err != nil {
		return Packet{}, 0, err
	}
	return Packet{Type: t, Body: body}, end, nil
}

func decodeBody(t PacketType, raw []byte) (Body, error) {
	switch t {
	case TypeText:
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("%w: text", ErrMalformedUTF8)
		}
		return TextBody{Text: string(raw)}, nil
	case TypeGet, TypeSet, TypeDel:
		return decodeRequest(raw)
	case TypePing:
		if len(raw) != 0 {
			return nil, fmt.Errorf("%w: ping body_len=%d", ErrInvalidLength, len(raw))
		}
		return EmptyBody{}, nil
	default:
		return nil, fmt.Errorf("%w: tag=%d", ErrInvalidPacketType, uint8(t))
	}
}

// decodeRequest reads key_len|key and, only when bytes remain after the key,
// value_len|value.
func decodeRequest(raw []byte) (RequestBody, error) {
	key, rest, err := readLenPrefixed(raw, "key")
	if err != nil {
		return RequestBody{}, err
	}
	if len(rest) == 0 {
		return RequestBody{Key: key}, nil
	}
	value, rest, err := readLenPrefixed(rest, "value")
	if err != nil {
		return RequestBody{}, err
	}
	if len(rest) != 0 {
		return RequestBody{}, fmt.Errorf("%w: %d trailing bytes after value", ErrInvalidLength, len(rest))
	}
	return RequestBody{Key: key, Value: value, HasValue: true}, nil
}

func readLenPrefixed(b []byte, field string) (string, []byte, error) {
	if len(b) < lenPrefixSize {
		return "", nil, fmt.Errorf("%w: %s length needs %d bytes, have %d", ErrFrameTruncated, field, lenPrefixSize, len(b))
	}
	n := binary.BigEndian.Uint32(b[:lenPrefixSize])
	b = b[lenPrefixSize:]
	if uint64(n) > uint64(len(b)) {
		return "", nil, fmt.Errorf("%w: %s_len=%d exceeds remaining %d", ErrFrameTruncated, field, n, len(b))
	}
	s := b[:n]
	if !utf8.Valid(s) {
		return "", nil, fmt.Errorf("%w: %s", ErrMalformedUTF8, field)
	}
	return string(s), b[n:], nil
}

package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderLen is the fixed prefix of every frame: tag(1) | body_len(4, big-endian).
const HeaderLen = 5

const DefaultMaxBodyBytes uint32 = 8 * 1024 * 1024

var (
	ErrShortHeader  = errors.New("frame: short header")
	ErrBodyTooLarge = errors.New("frame: body too large")
)

// Header is the fixed wire header.
type Header struct {
	Tag     uint8
	BodyLen uint32
}

// FrameLen is the total number of bytes the frame occupies on the wire.
func (h Header) FrameLen() uint64 {
	return HeaderLen + uint64(h.BodyLen)
}

// Limits constrains decode memory use. A zero MaxBodyBytes disables the check.
type Limits struct {
	MaxBodyBytes uint32
}

func DefaultLimits() Limits {
	return Limits{MaxBodyBytes: DefaultMaxBodyBytes}
}

func (l Limits) Check(h Header) error {
	if l.MaxBodyBytes > 0 && h.BodyLen > l.MaxBodyBytes {
		return fmt.Errorf("%w: body_len=%d max=%d", ErrBodyTooLarge, h.BodyLen, l.MaxBodyBytes)
	}
	return nil
}

func AppendHeader(dst []byte, h Header) []byte {
	dst = append(dst, h.Tag)
	return binary.BigEndian.AppendUint32(dst, h.BodyLen)
}

func EncodeHeader(h Header) []byte {
	return AppendHeader(make([]byte, 0, HeaderLen), h)
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, ErrShortHeader
	}
	return Header{
		Tag:     b[0],
		BodyLen: binary.BigEndian.Uint32(b[1:HeaderLen]),
	}, nil
}

// Peek inspects src without consuming it. complete is false when src holds
// fewer than HeaderLen bytes or fewer than the declared body; the header is
// still returned once HeaderLen bytes are present.
func Peek(src []byte, limits Limits) (h Header, complete bool, err error) {
	if len(src) < HeaderLen {
		return Header{}, false, nil
	}
	h, err = DecodeHeader(src)
	if err != nil {
		return Header{}, false, err
	}
	if err := limits.Check(h); err != nil {
		return h, false, err
	}
	return h, uint64(len(src)) >= h.FrameLen(), nil
}

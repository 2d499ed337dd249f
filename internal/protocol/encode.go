package protocol

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/danmuck/kvwire/internal/protocol/frame"
)

const lenPrefixSize = 4

// BodyLen returns the exact number of body bytes AppendPacket writes for b.
func BodyLen(b Body) (uint64, error) {
	switch v := b.(type) {
	case EmptyBody:
		return 0, nil
	case TextBody:
		return uint64(len(v.Text)), nil
	case RequestBody:
		n := uint64(lenPrefixSize + len(v.Key))
		if v.HasValue {
			n += uint64(lenPrefixSize + len(v.Value))
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: body %T", ErrBodyMismatch, b)
	}
}

// AppendPacket appends the full frame for p to dst.
func AppendPacket(dst []byte, p Packet) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return dst, err
	}
	bodyLen, err := BodyLen(p.Body)
	if err != nil {
		return dst, err
	}
	if bodyLen > math.MaxUint32 {
		return dst, fmt.Errorf("%w: body_len=%d", ErrPayloadTooLarge, bodyLen)
	}

	start := len(dst)
	dst = frame.AppendHeader(dst, frame.Header{Tag: uint8(p.Type), BodyLen: uint32(bodyLen)})
	switch v := p.Body.(type) {
	case EmptyBody:
	case TextBody:
		dst = append(dst, v.Text...)
	case RequestBody:
		dst = appendLenPrefixed(dst, v.Key)
		if v.HasValue {
			dst = appendLenPrefixed(dst, v.Value)
		}
	default:
		return dst[:start], fmt.Errorf("%w: body %T", ErrBodyMismatch, p.Body)
	}

	if written := uint64(len(dst) - start - frame.HeaderLen); written != bodyLen {
		return dst[:start], fmt.Errorf("%w: declared=%d written=%d", ErrInvalidLength, bodyLen, written)
	}
	return dst, nil
}

// Marshal returns the full frame for p.
func Marshal(p Packet) ([]byte, error) {
	return AppendPacket(nil, p)
}

func appendLenPrefixed(dst []byte, s string) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(s)))
	return append(dst, s...)
}

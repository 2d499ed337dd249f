package protocol

import "errors"

var (
	ErrInvalidPacketType = errors.New("protocol: invalid packet type")
	ErrMalformedUTF8     = errors.New("protocol: malformed utf-8")
	ErrFrameTruncated    = errors.New("protocol: truncated frame")
	ErrInvalidLength     = errors.New("protocol: invalid length")
	ErrPayloadTooLarge   = errors.New("protocol: payload too large")
	ErrBodyMismatch      = errors.New("protocol: body does not match packet type")
)

var protocolErrors = []struct {
	err    error
	reason string
}{
	{ErrInvalidPacketType, "invalid_packet_type"},
	{ErrMalformedUTF8, "malformed_utf8"},
	{ErrFrameTruncated, "frame_truncated"},
	{ErrInvalidLength, "invalid_length"},
	{ErrPayloadTooLarge, "payload_too_large"},
	{ErrBodyMismatch, "body_mismatch"},
}

// IsProtocolError reports whether err is fatal to a connection because the
// peer violated the wire contract.
func IsProtocolError(err error) bool {
	return Reason(err) != ""
}

// Reason returns a stable label for a protocol error, or "" for anything else.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	for _, pe := range protocolErrors {
		if errors.Is(err, pe.err) {
			return pe.reason
		}
	}
	return ""
}

package protocol

import (
	"fmt"
	"unicode/utf8"
)

// PacketType is the 1-byte tag identifying a frame.
type PacketType uint8

const (
	TypeText PacketType = 1
	TypeGet  PacketType = 2
	TypeSet  PacketType = 3
	TypeDel  PacketType = 4
	TypePing PacketType = 5
)

func (t PacketType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeGet:
		return "get"
	case TypeSet:
		return "set"
	case TypeDel:
		return "del"
	case TypePing:
		return "ping"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

func ParsePacketType(tag byte) (PacketType, error) {
	t := PacketType(tag)
	switch t {
	case TypeText, TypeGet, TypeSet, TypeDel, TypePing:
		return t, nil
	default:
		return 0, fmt.Errorf("%w: tag=%d", ErrInvalidPacketType, tag)
	}
}

// Body is the closed set of packet payloads: EmptyBody, TextBody, RequestBody.
// The unexported marker keeps the set sealed to this package.
type Body interface {
	isBody()
}

type EmptyBody struct{}

type TextBody struct {
	Text string
}

// RequestBody carries a key and an optional replacement value.
type RequestBody struct {
	Key      string
	Value    string
	HasValue bool
}

func (EmptyBody) isBody()   {}
func (TextBody) isBody()    {}
func (RequestBody) isBody() {}

// NewValue returns the value section, if one is present.
func (r RequestBody) NewValue() (string, bool) {
	return r.Value, r.HasValue
}

// Packet is one request or response. Body must match Type; see Validate.
type Packet struct {
	Type PacketType
	Body Body
}

func Text(s string) Packet {
	return Packet{Type: TypeText, Body: TextBody{Text: s}}
}

func Get(key string) Packet {
	return Packet{Type: TypeGet, Body: RequestBody{Key: key}}
}

func Set(key, value string) Packet {
	return Packet{Type: TypeSet, Body: RequestBody{Key: key, Value: value, HasValue: true}}
}

func Del(key string) Packet {
	return Packet{Type: TypeDel, Body: RequestBody{Key: key}}
}

func Ping() Packet {
	return Packet{Type: TypePing, Body: EmptyBody{}}
}

// Validate checks the tag/body pairing and that every string is valid UTF-8.
func (p Packet) Validate() error {
	switch b := p.Body.(type) {
	case EmptyBody:
		if p.Type != TypePing {
			return mismatch(p)
		}
	case TextBody:
		if p.Type != TypeText {
			return mismatch(p)
		}
		if !utf8.ValidString(b.Text) {
			return fmt.Errorf("%w: text", ErrMalformedUTF8)
		}
	case RequestBody:
		switch p.Type {
		case TypeGet, TypeSet, TypeDel:
		default:
			return mismatch(p)
		}
		if !utf8.ValidString(b.Key) {
			return fmt.Errorf("%w: key", ErrMalformedUTF8)
		}
		if b.HasValue && !utf8.ValidString(b.Value) {
			return fmt.Errorf("%w: value", ErrMalformedUTF8)
		}
	case nil:
		return fmt.Errorf("%w: type=%s body=<nil>", ErrBodyMismatch, p.Type)
	default:
		return fmt.Errorf("%w: body %T", ErrBodyMismatch, p.Body)
	}
	return nil
}

// TextContent returns the payload of a text packet.
func (p Packet) TextContent() (string, bool) {
	b, ok := p.Body.(TextBody)
	if !ok || p.Type != TypeText {
		return "", false
	}
	return b.Text, true
}

// Request returns the request body of a get/set/del packet.
func (p Packet) Request() (RequestBody, bool) {
	b, ok := p.Body.(RequestBody)
	if !ok {
		return RequestBody{}, false
	}
	switch p.Type {
	case TypeGet, TypeSet, TypeDel:
		return b, true
	default:
		return RequestBody{}, false
	}
}

func (p Packet) String() string {
	switch b := p.Body.(type) {
	case EmptyBody:
		return p.Type.String()
	case TextBody:
		return fmt.Sprintf("%s %q", p.Type, b.Text)
	case RequestBody:
		if b.HasValue {
			return fmt.Sprintf("%s key=%q value_len=%d", p.Type, b.Key, len(b.Value))
		}
		return fmt.Sprintf("%s key=%q", p.Type, b.Key)
	default:
		return fmt.Sprintf("%s body=%T", p.Type, p.Body)
	}
}

func mismatch(p Packet) error {
	return fmt.Errorf("%w: type=%s body=%T", ErrBodyMismatch, p.Type, p.Body)
}

package frame

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeDecodeHeaderRoundTrip(t *testing.T) {
	in := Header{Tag: 3, BodyLen: 0x01020304}
	buf := EncodeHeader(in)
	if !bytes.Equal(buf, []byte{3, 1, 2, 3, 4}) {
		t.Fatalf("unexpected header bytes: %v", buf)
	}
	out, err := DecodeHeader(buf)
	if err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if out != in {
		t.Fatalf("header mismatch: got=%+v want=%+v", out, in)
	}
}

func TestDecodeHeaderShortIsDeterministic(t *testing.T) {
	_, err := DecodeHeader([]byte{1, 2, 3})
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestPeekNeedsFullHeaderAndBody(t *testing.T) {
	frame := append(EncodeHeader(Header{Tag: 1, BodyLen: 3}), 'a', 'b', 'c')
	for i := 0; i < len(frame); i++ {
		_, complete, err := Peek(frame[:i], DefaultLimits())
		if err != nil {
			t.Fatalf("peek prefix %d: %v", i, err)
		}
		if complete {
			t.Fatalf("prefix %d reported complete", i)
		}
	}
	h, complete, err := Peek(frame, DefaultLimits())
	if err != nil || !complete {
		t.Fatalf("expected complete frame, complete=%v err=%v", complete, err)
	}
	if h.FrameLen() != uint64(len(frame)) {
		t.Fatalf("unexpected frame len: %d", h.FrameLen())
	}
}

func TestPeekRejectsOversizedBody(t *testing.T) {
	buf := EncodeHeader(Header{Tag: 1, BodyLen: 65})
	_, _, err := Peek(buf, Limits{MaxBodyBytes: 64})
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", err)
	}
	if _, _, err := Peek(buf, Limits{}); err != nil {
		t.Fatalf("zero limits should not reject: %v", err)
	}
}

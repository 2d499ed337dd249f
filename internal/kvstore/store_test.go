package kvstore

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/danmuck/kvwire/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetDelAbsentKey(t *testing.T) {
	testlog.Start(t)
	s := New()
	if _, err := s.Get("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if err := s.Del("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestStorePutGetOverwriteDel(t *testing.T) {
	testlog.Start(t)
	s := New()
	if err := s.Put("foo", RawDocument("bar")); err != nil {
		t.Fatalf("put: %v", err)
	}
	doc, err := s.Get("foo")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc != RawDocument("bar") {
		t.Fatalf("unexpected doc: %#v", doc)
	}

	if err := s.Put("foo", JSONDocument(`{"n":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	doc, err = s.Get("foo")
	if err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}
	if doc != JSONDocument(`{"n":2}`) || doc.String() != `{"n":2}` {
		t.Fatalf("expected second value only, got %#v", doc)
	}
	if s.Len() != 1 {
		t.Fatalf("unexpected len: %d", s.Len())
	}

	if err := s.Del("foo"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := s.Get("foo"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after del, got %v", err)
	}
}

func TestStoreInvalidJSONLeavesMapUnchanged(t *testing.T) {
	testlog.Start(t)
	malformed := []string{`{invalid`, ``, `{"a":}`, `[1,2`, `nul`, `{"a":1}}`, `'single'`}

	for _, payload := range malformed {
		s := New()
		require.NoError(t, s.Put("present", RawDocument("before")))

		err := s.Put("present", JSONDocument(payload))
		require.ErrorIs(t, err, ErrInvalidJSON, "payload %q", payload)
		doc, err := s.Get("present")
		require.NoError(t, err)
		assert.Equal(t, RawDocument("before"), doc, "payload %q replaced prior value", payload)

		err = s.Put("absent", JSONDocument(payload))
		require.ErrorIs(t, err, ErrInvalidJSON)
		_, err = s.Get("absent")
		assert.ErrorIs(t, err, ErrKeyNotFound, "payload %q created key", payload)
		assert.Equal(t, 1, s.Len())
	}
}

func TestSharedInvalidJSONLeavesMapUnchanged(t *testing.T) {
	testlog.Start(t)
	malformed := []string{`{invalid`, ``, `{"a":}`, `[1,2`, `nul`, `{"a":1}}`, `'single'`}

	s := NewShared()
	require.NoError(t, s.Put("present", JSONDocument(`{"v":1}`)))
	for _, payload := range malformed {
		err := s.Put("present", JSONDocument(payload))
		require.ErrorIs(t, err, ErrInvalidJSON, "payload %q", payload)
		doc, err := s.Get("present")
		require.NoError(t, err)
		assert.Equal(t, JSONDocument(`{"v":1}`), doc, "payload %q replaced prior value", payload)

		err = s.Put("absent", JSONDocument(payload))
		require.ErrorIs(t, err, ErrInvalidJSON)
		_, err = s.Get("absent")
		assert.ErrorIs(t, err, ErrKeyNotFound, "payload %q created key", payload)
		assert.Equal(t, 1, s.Len())
	}
	require.ErrorIs(t, s.Put("k", Document{}), ErrInvalidDocument)
	assert.Equal(t, 1, s.Len())
}

func TestStoreAcceptsValidJSON(t *testing.T) {
	testlog.Start(t)
	s := New()
	for i, payload := range []string{`{}`, `[]`, `"s"`, `1.5e3`, `null`, ` {"nested":{"a":[true,false]}} `} {
		key := strconv.Itoa(i)
		require.NoError(t, s.Put(key, JSONDocument(payload)))
		doc, err := s.Get(key)
		require.NoError(t, err)
		assert.Equal(t, payload, doc.String())
	}
}

func TestStoreRejectsEmptyDocument(t *testing.T) {
	testlog.Start(t)
	s := New()
	if err := s.Put("k", Document{}); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("rejected document stored")
	}
}

func TestPingDoesNotTouchMap(t *testing.T) {
	testlog.Start(t)
	s := NewShared()
	if got := s.Ping(); got != RawDocument("pong") {
		t.Fatalf("unexpected ping doc: %#v", got)
	}
	if s.Len() != 0 {
		t.Fatalf("ping mutated store")
	}
}

func TestSharedConcurrentDistinctKeys(t *testing.T) {
	testlog.Start(t)
	s := NewShared()
	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i)
			assert.NoError(t, s.Put(key, RawDocument(fmt.Sprintf("value-%d", i))))
		}(i)
	}
	wg.Wait()

	require.Equal(t, n, s.Len())
	for i := 0; i < n; i++ {
		doc, err := s.Get(fmt.Sprintf("key-%d", i))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("value-%d", i), doc.String())
	}
}

func TestSharedConcurrentSameKeyLastWriterWins(t *testing.T) {
	testlog.Start(t)
	s := NewShared()
	const n = 64
	candidates := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		candidates[fmt.Sprintf(`{"writer":%d,"pad":"%064d"}`, i, i)] = true
	}

	var wg sync.WaitGroup
	for v := range candidates {
		wg.Add(1)
		go func(v string) {
			defer wg.Done()
			assert.NoError(t, s.Put("same", JSONDocument(v)))
		}(v)
	}
	wg.Wait()

	doc, err := s.Get("same")
	require.NoError(t, err)
	assert.True(t, candidates[doc.String()], "final value %q is not one of the written values", doc.String())
	assert.Equal(t, 1, s.Len())
}

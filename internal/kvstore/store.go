// Package kvstore holds the in-memory document map and its lock-guarded handle.
package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrKeyNotFound     = errors.New("kvstore: key not found")
	ErrInvalidJSON     = errors.New("kvstore: invalid json")
	ErrInvalidDocument = errors.New("kvstore: document has no data")
)

// DocType is either Raw or JSON text.
type DocType interface {
	fmt.Stringer
	isDocType()
}

// Raw is opaque text stored as given.
type Raw string

// JSON is text that must parse as a JSON value.
type JSON string

func (r Raw) String() string  { return string(r) }
func (j JSON) String() string { return string(j) }

func (Raw) isDocType()  {}
func (JSON) isDocType() {}

// Document is one stored value.
type Document struct {
	Data DocType
}

func RawDocument(s string) Document  { return Document{Data: Raw(s)} }
func JSONDocument(s string) Document { return Document{Data: JSON(s)} }

// String returns the stored text regardless of document kind.
func (d Document) String() string {
	if d.Data == nil {
		return ""
	}
	return d.Data.String()
}

// Validate checks the document payload without touching any store.
func (d Document) Validate() error {
	switch v := d.Data.(type) {
	case Raw:
		return nil
	case JSON:
		if !json.Valid([]byte(v)) {
			return fmt.Errorf("%w: %.64q", ErrInvalidJSON, string(v))
		}
		return nil
	case nil:
		return ErrInvalidDocument
	default:
		return fmt.Errorf("%w: unsupported %T", ErrInvalidDocument, d.Data)
	}
}

// Store maps keys to documents. It is not safe for concurrent use; share it
// through Shared.
type Store struct {
	docs map[string]Document
}

func New() *Store {
	return &Store{docs: make(map[string]Document)}
}

func (s *Store) Get(key string) (Document, error) {
	doc, ok := s.docs[key]
	if !ok {
		return Document{}, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return doc, nil
}

// Put validates doc before mutating; a rejected document leaves the map unchanged.
func (s *Store) Put(key string, doc Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	s.set(key, doc)
	return nil
}

// set stores an already validated document.
func (s *Store) set(key string, doc Document) {
	s.docs[key] = doc
}

func (s *Store) Del(key string) error {
	if _, ok := s.docs[key]; !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	delete(s.docs, key)
	return nil
}

func (s *Store) Len() int {
	return len(s.docs)
}

// Ping returns the canned liveness document.
func Ping() Document {
	return RawDocument("pong")
}

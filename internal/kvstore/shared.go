package kvstore

import "sync"

// Shared is the process-wide handle connection handlers receive. Every
// operation holds the mutex for exactly one map operation and never across I/O.
type Shared struct {
	mu    sync.Mutex
	store *Store
}

func NewShared() *Shared {
	return &Shared{store: New()}
}

func (s *Shared) Get(key string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(key)
}

// Put parses JSON payloads before taking the lock, so the critical section
// is a single map assignment.
func (s *Shared) Put(key string, doc Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.set(key, doc)
	return nil
}

func (s *Shared) Del(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Del(key)
}

func (s *Shared) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

// Ping never takes the lock.
func (s *Shared) Ping() Document {
	return Ping()
}

package hoststate

import (
	"sort"
	"sync"
)

// MemStore keeps values in memory.
type MemStore struct {
	mu       sync.RWMutex
	sections map[string]map[string]string
	closed   bool
}

func NewMemStore() *MemStore {
	return &MemStore{sections: make(map[string]map[string]string)}
}

func (s *MemStore) Get(section, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}
	v, ok := s.sections[section][key]
	return v, ok, nil
}

func (s *MemStore) Set(section, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	bucket := s.sections[section]
	if bucket == nil {
		bucket = make(map[string]string)
		s.sections[section] = bucket
	}
	bucket[key] = value
	return nil
}

func (s *MemStore) Delete(section, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	bucket := s.sections[section]
	delete(bucket, key)
	if len(bucket) == 0 {
		delete(s.sections, section)
	}
	return nil
}

func (s *MemStore) Keys(section string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(s.sections[section]))
	for k := range s.sections[section] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

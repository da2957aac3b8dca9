// Package hoststate persists the ExtState values of the emulated REAPER host.
// Values are strings addressed by section and key; an absent key and an
// empty value are the same thing to the host.
package hoststate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("hoststate: backend closed")

// Backend stores persisted ExtState values.
type Backend interface {
	Get(section, key string) (string, bool, error)
	Set(section, key, value string) error
	Delete(section, key string) error
	// Keys lists the keys of a section in ascending order.
	Keys(section string) ([]string, error)
	Close() error
}

// Kind names a backend implementation.
type Kind string

const (
	KindMemory Kind = "memory"
	KindBolt   Kind = "bolt"
	KindBadger Kind = "badger"
)

// Open returns a backend of the given kind. path is ignored for memory.
func Open(kind Kind, path string) (Backend, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case "", KindMemory:
		return NewMemStore(), nil
	case KindBolt:
		if path == "" {
			return nil, errors.New("hoststate: bolt backend requires a path")
		}
		return OpenBoltStore(path)
	case KindBadger:
		if path == "" {
			return nil, errors.New("hoststate: badger backend requires a path")
		}
		return OpenBadgerStore(path)
	default:
		return nil, fmt.Errorf("hoststate: unknown backend %q", kind)
	}
}

// Package kvstore is a small key-value database over REAPER ExtState. Records
// are stored through an extstate.Accessor, and the section's key index is
// kept in step on every Add, Update and Delete so List can enumerate them.
package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reaper-setlist/reaper_sdk_go/pkg/extstate"
	"github.com/reaper-setlist/reaper_sdk_go/pkg/reaper"
)

// DefaultBatchBudget bounds the summed key lengths of one List batch so the
// batched request stays under the host's URL limit.
const DefaultBatchBudget = 1900

// ErrReservedKey is returned for keys that collide with the index key.
var ErrReservedKey = fmt.Errorf("kvstore: key %q is reserved", extstate.IndexKey)

// Identifiable is implemented by record types that carry their own key.
type Identifiable[T any] interface {
	WithID(id string) T
}

// Option configures a Store.
type Option func(*config)

type config struct {
	budget   int
	newID    func() string
	log      *zap.Logger
	extstate []extstate.Option
}

// WithBatchBudget sets the key length budget of one List batch.
func WithBatchBudget(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.budget = n
		}
	}
}

// WithIDGenerator replaces the uuid generator used by Add.
func WithIDGenerator(fn func() string) Option {
	return func(c *config) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithLogger sets the logger of the store and of its chunked accessor.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithStoreOptions passes options to the underlying extstate.Store.
func WithStoreOptions(opts ...extstate.Option) Option {
	return func(c *config) { c.extstate = append(c.extstate, opts...) }
}

// Store is a key-value store of T records in one section.
type Store[T Identifiable[T]] struct {
	items  extstate.Accessor[T]
	budget int
	newID  func() string
	log    *zap.Logger
}

// New returns a Store for section reached through ch.
func New[T Identifiable[T]](ch reaper.Channel, section string, opts ...Option) (*Store[T], error) {
	cfg := config{
		budget: DefaultBatchBudget,
		newID:  uuid.NewString,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	items, err := extstate.New[T](ch, section, append([]extstate.Option{extstate.WithLogger(cfg.log)}, cfg.extstate...)...)
	if err != nil {
		return nil, err
	}
	return NewWithAccessor[T](items, opts...), nil
}

// NewWithAccessor returns a Store over an existing accessor. Store options
// passed with WithStoreOptions are ignored.
func NewWithAccessor[T Identifiable[T]](items extstate.Accessor[T], opts ...Option) *Store[T] {
	cfg := config{
		budget: DefaultBatchBudget,
		newID:  uuid.NewString,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store[T]{items: items, budget: cfg.budget, newID: cfg.newID, log: cfg.log}
}

// Get returns the record stored under key, or nil when absent.
func (s *Store[T]) Get(ctx context.Context, key string) (*T, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	return s.items.GetItem(ctx, key)
}

// List returns every indexed record that can be read. Keys listed in the
// index but without a readable value are left out.
func (s *Store[T]) List(ctx context.Context) (map[string]T, error) {
	index, err := s.items.GetIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]T, len(index))
	for _, batch := range Batches(index, s.budget) {
		items, err := s.items.GetItems(ctx, batch)
		if err != nil {
			return nil, err
		}
		for k, v := range items {
			if v != nil {
				out[k] = *v
			}
		}
	}
	return out, nil
}

// Add stores value under a new key and returns it with the key attached.
func (s *Store[T]) Add(ctx context.Context, value T) (T, error) {
	id := s.newID()
	value = value.WithID(id)
	if err := s.items.SetItem(ctx, id, value); err != nil {
		var zero T
		return zero, err
	}
	index, err := s.items.GetIndex(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := s.items.SetIndex(ctx, append(index, id)); err != nil {
		var zero T
		return zero, err
	}
	s.log.Debug("Added record", zap.String("key", id))
	return value, nil
}

// Update overwrites the record under key, adding key to the index when it is
// not there yet.
func (s *Store[T]) Update(ctx context.Context, key string, value T) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.items.SetItem(ctx, key, value); err != nil {
		return err
	}
	index, err := s.items.GetIndex(ctx)
	if err != nil {
		return err
	}
	if contains(index, key) {
		return nil
	}
	return s.items.SetIndex(ctx, append(index, key))
}

// Delete removes the record under key. Deleting an absent key succeeds.
func (s *Store[T]) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.items.DeleteItem(ctx, key); err != nil {
		return err
	}
	index, err := s.items.GetIndex(ctx)
	if err != nil {
		return err
	}
	return s.items.SetIndex(ctx, remove(index, key))
}

// Keys returns the key index.
func (s *Store[T]) Keys(ctx context.Context) ([]string, error) {
	return s.items.GetIndex(ctx)
}

// Batches splits keys into groups whose summed lengths stay below budget.
// A key of at least budget length gets a batch of its own.
func Batches(keys []string, budget int) [][]string {
	var (
		out   [][]string
		cur   []string
		total int
	)
	for _, k := range keys {
		if len(cur) > 0 && total+len(k) >= budget {
			out = append(out, cur)
			cur, total = nil, 0
		}
		cur = append(cur, k)
		total += len(k)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func checkKey(key string) error {
	if key == "" {
		return errors.New("kvstore: key is required")
	}
	if key == extstate.IndexKey {
		return ErrReservedKey
	}
	return nil
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func remove(keys []string, key string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

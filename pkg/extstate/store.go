package extstate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/reaper-setlist/reaper_sdk_go/pkg/reaper"
)

// IndexKey is the logical key holding a section's key index.
const IndexKey = "__index__"

// Accessor reads and writes chunked values of type T in one section.
// GetItem and GetItems return nil for absent keys.
type Accessor[T any] interface {
	GetItem(ctx context.Context, key string) (*T, error)
	SetItem(ctx context.Context, key string, value T) error
	DeleteItem(ctx context.Context, key string) error
	GetItems(ctx context.Context, keys []string) (map[string]*T, error)
	GetIndex(ctx context.Context) ([]string, error)
	SetIndex(ctx context.Context, index []string) error
}

// Store is the ExtState implementation of Accessor.
type Store[T any] struct {
	ch      reaper.Channel
	section string
	config
}

var _ Accessor[struct{}] = (*Store[struct{}])(nil)

// New returns a Store for section.
func New[T any](ch reaper.Channel, section string, opts ...Option) (*Store[T], error) {
	if ch == nil {
		return nil, errors.New("extstate: channel is required")
	}
	if strings.TrimSpace(section) == "" {
		return nil, errors.New("extstate: section is required")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.codec.Validate(); err != nil {
		return nil, err
	}
	return &Store[T]{ch: ch, section: section, config: cfg}, nil
}

// ChunkKey returns the ExtState key of chunk i of key.
func ChunkKey(key string, i int) string {
	return key + "." + strconv.Itoa(i)
}

// GetItem returns the value stored under key, or nil when key is absent.
// A payload that does not decode yields a *chunk.ParseError.
func (s *Store[T]) GetItem(ctx context.Context, key string) (*T, error) {
	var v T
	ok, err := s.get(ctx, key, &v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

// SetItem overwrites the value stored under key. A value whose serialized
// form contains the continuation marker is rejected with
// chunk.ErrMarkerCollision before anything is written.
func (s *Store[T]) SetItem(ctx context.Context, key string, value T) error {
	return s.set(ctx, key, value)
}

// DeleteItem clears every chunk of key. Deleting an absent key is a no-op.
func (s *Store[T]) DeleteItem(ctx context.Context, key string) error {
	n, err := s.clearFrom(ctx, key, 0)
	if err != nil {
		return err
	}
	s.log.Debug("Deleted item", zap.String("section", s.section), zap.String("key", key), zap.Int("chunks", n))
	return nil
}

// GetItems reads several keys, fetching every first chunk in one request.
// Absent keys map to nil. Unlike GetItem, a key whose payload does not decode
// is reported as absent instead of failing the call.
func (s *Store[T]) GetItems(ctx context.Context, keys []string) (map[string]*T, error) {
	out := make(map[string]*T, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	firstKeys := make([]string, len(keys))
	for i, k := range keys {
		firstKeys[i] = ChunkKey(k, 0)
	}
	firsts, err := reaper.ReadExtStates(ctx, s.ch, s.section, firstKeys)
	if err != nil {
		return nil, err
	}

	results := make([]*T, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, first := range firsts {
		if first == "" {
			continue
		}
		g.Go(func() error {
			chunks, err := s.follow(gctx, keys[i], first)
			if err != nil {
				return err
			}
			var v T
			if err := s.codec.Decode(chunks, &v); err != nil {
				s.log.Warn("Treating undecodable item as absent",
					zap.String("section", s.section),
					zap.String("key", keys[i]),
					zap.Error(err))
				return nil
			}
			results[i] = &v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, k := range keys {
		out[k] = results[i]
	}
	return out, nil
}

// GetIndex returns the key index of the section, or an empty list when none
// has been stored.
func (s *Store[T]) GetIndex(ctx context.Context) ([]string, error) {
	var index []string
	ok, err := s.get(ctx, IndexKey, &index)
	if err != nil {
		return nil, err
	}
	if !ok || index == nil {
		return []string{}, nil
	}
	return index, nil
}

// SetIndex replaces the key index of the section.
func (s *Store[T]) SetIndex(ctx context.Context, index []string) error {
	if index == nil {
		index = []string{}
	}
	return s.set(ctx, IndexKey, index)
}

// Chunks returns the raw chunk chain of key, markers included.
func (s *Store[T]) Chunks(ctx context.Context, key string) ([]string, error) {
	first, err := s.readChunk(ctx, key, 0)
	if err != nil || first == "" {
		return nil, err
	}
	return s.follow(ctx, key, first)
}

func (s *Store[T]) get(ctx context.Context, key string, out any) (bool, error) {
	chunks, err := s.Chunks(ctx, key)
	if err != nil || len(chunks) == 0 {
		return false, err
	}
	if err := s.codec.Decode(chunks, out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store[T]) set(ctx context.Context, key string, value any) error {
	chunks, err := s.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("extstate: encode %q: %w", key, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, c := range chunks {
		g.Go(func() error {
			return s.writeChunk(gctx, key, i, c)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	cleared, err := s.clearFrom(ctx, key, len(chunks))
	if err != nil {
		return err
	}
	s.log.Debug("Wrote item",
		zap.String("section", s.section),
		zap.String("key", key),
		zap.Int("chunks", len(chunks)),
		zap.Int("cleared", cleared))
	return nil
}

// follow collects the chain that starts with first, reading continuation
// chunks one at a time.
func (s *Store[T]) follow(ctx context.Context, key, first string) ([]string, error) {
	chunks := []string{first}
	for i := 1; s.codec.Continues(chunks[len(chunks)-1]); i++ {
		next, err := s.readChunk(ctx, key, i)
		if err != nil {
			return nil, err
		}
		if next == "" {
			break
		}
		chunks = append(chunks, next)
	}
	return chunks, nil
}

// clearFrom empties chunk slots from index start until the first empty one
// and returns how many it cleared.
func (s *Store[T]) clearFrom(ctx context.Context, key string, start int) (int, error) {
	n := 0
	for i := start; ; i++ {
		v, err := s.readChunk(ctx, key, i)
		if err != nil {
			return n, err
		}
		if v == "" {
			return n, nil
		}
		if err := s.writeChunk(ctx, key, i, ""); err != nil {
			return n, err
		}
		n++
	}
}

func (s *Store[T]) readChunk(ctx context.Context, key string, i int) (string, error) {
	return reaper.ReadExtState(ctx, s.ch, s.section, ChunkKey(key, i))
}

func (s *Store[T]) writeChunk(ctx context.Context, key string, i int, value string) error {
	return reaper.WriteExtState(ctx, s.ch, s.section, ChunkKey(key, i), value, s.persist)
}

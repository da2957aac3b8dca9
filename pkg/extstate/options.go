package extstate

import (
	"go.uber.org/zap"

	"github.com/reaper-setlist/reaper_sdk_go/pkg/chunk"
)

// DefaultConcurrency bounds the parallel chunk writes and continuation reads
// issued by one call.
const DefaultConcurrency = 4

// Option configures a Store.
type Option func(*config)

type config struct {
	codec       chunk.Codec
	persist     bool
	concurrency int
	log         *zap.Logger
}

func defaultConfig() config {
	return config{
		codec:       chunk.Default(),
		persist:     true,
		concurrency: DefaultConcurrency,
		log:         zap.NewNop(),
	}
}

// WithCodec sets the chunk size and continuation marker. Every client of a
// section must use the same codec.
func WithCodec(c chunk.Codec) Option {
	return func(cfg *config) { cfg.codec = c }
}

// WithPersist selects SET/EXTSTATEPERSIST (true, the default) or the volatile
// SET/EXTSTATE, whose values are lost when REAPER exits.
func WithPersist(persist bool) Option {
	return func(cfg *config) { cfg.persist = persist }
}

// WithConcurrency bounds the number of in-flight requests per call.
func WithConcurrency(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(cfg *config) {
		if log != nil {
			cfg.log = log
		}
	}
}

package reaper_sdk

import (
	"fmt"
	"os"
	"strings"

	"github.com/reaper-setlist/reaper_sdk_go/internal/hoststate"
	"github.com/reaper-setlist/reaper_sdk_go/pkg/kvstore"
	"github.com/reaper-setlist/reaper_sdk_go/pkg/reaper"
	"github.com/reaper-setlist/reaper_sdk_go/pkg/reaper/mock"
)

const (
	envMode        = "REAPER_RUNTIME_MODE"
	envURL         = "REAPER_URL"
	envUsername    = "REAPER_USERNAME"
	envPassword    = "REAPER_PASSWORD"
	envMockBackend = "REAPER_MOCK_BACKEND"
	envMockPath    = "REAPER_MOCK_PATH"
	envMockSeed    = "REAPER_MOCK_SEED"
	modeAuto       = "auto"
	modeHTTP       = "http"
	modeMock       = "mock"
)

// NewFromEnv returns a channel configured from the environment and the
// resolved mode ("http" or "mock"). opts apply to the HTTP client only.
func NewFromEnv(opts ...reaper.Option) (reaper.Channel, string, error) {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv(envMode)))
	url := strings.TrimSpace(os.Getenv(envURL))

	switch mode {
	case "", modeAuto:
		if url != "" {
			return newHTTPChannel(url, opts)
		}
		return newMockChannel()
	case modeHTTP:
		if url == "" {
			return nil, "", fmt.Errorf("reaper_sdk: HTTP mode requires %s", envURL)
		}
		return newHTTPChannel(url, opts)
	case modeMock:
		return newMockChannel()
	default:
		return nil, "", fmt.Errorf("reaper_sdk: unsupported %s value %q", envMode, mode)
	}
}

// Open returns a key-value store for section.
func Open[T kvstore.Identifiable[T]](ch reaper.Channel, section string, opts ...kvstore.Option) (*kvstore.Store[T], error) {
	return kvstore.New[T](ch, section, opts...)
}

func newHTTPChannel(url string, opts []reaper.Option) (reaper.Channel, string, error) {
	if user := os.Getenv(envUsername); user != "" {
		opts = append([]reaper.Option{reaper.WithBasicAuth(user, os.Getenv(envPassword))}, opts...)
	}
	cl, err := reaper.New(url, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("reaper_sdk: init HTTP client: %w", err)
	}
	return cl, modeHTTP, nil
}

func newMockChannel() (reaper.Channel, string, error) {
	backend, err := hoststate.Open(
		hoststate.Kind(strings.TrimSpace(os.Getenv(envMockBackend))),
		strings.TrimSpace(os.Getenv(envMockPath)))
	if err != nil {
		return nil, "", fmt.Errorf("reaper_sdk: open mock backend: %w", err)
	}
	host := mock.New(mock.WithBackend(backend))
	if path := strings.TrimSpace(os.Getenv(envMockSeed)); path != "" {
		seed, err := LoadSeed(path)
		if err != nil {
			host.Close()
			return nil, "", fmt.Errorf("reaper_sdk: load seed: %w", err)
		}
		if err := seed.Apply(host); err != nil {
			host.Close()
			return nil, "", fmt.Errorf("reaper_sdk: apply seed: %w", err)
		}
	}
	return host, modeMock, nil
}

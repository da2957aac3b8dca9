package reaper

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/reaper-setlist/reaper_sdk_go/internal/httpx"
	"github.com/reaper-setlist/reaper_sdk_go/internal/reaperapi"
)

// Channel executes REAPER commands. ExecuteCommands returns exactly one
// result per command, in order. Implementations execute each call at most
// once and do not retry.
type Channel interface {
	ExecuteCommand(ctx context.Context, command Command) (string, error)
	ExecuteCommands(ctx context.Context, commands []Command) ([]string, error)
}

// commandRoot is the path under which REAPER's web interface accepts commands.
const commandRoot = "_"

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	httpOpts   []httpx.Option
	log        *zap.Logger
	metrics    *Metrics
	maxRequest int
}

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *clientConfig) { c.httpOpts = append(c.httpOpts, httpx.WithHTTPClient(h)) }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.httpOpts = append(c.httpOpts, httpx.WithTimeout(d)) }
}

// WithBasicAuth sets the credentials of a password-protected web interface.
func WithBasicAuth(username, password string) Option {
	return func(c *clientConfig) { c.httpOpts = append(c.httpOpts, httpx.WithBasicAuth(username, password)) }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *clientConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics records request metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(c *clientConfig) { c.metrics = m }
}

// WithMaxRequestLength rejects requests whose escaped command path is longer
// than n bytes before sending them. Zero disables the check.
func WithMaxRequestLength(n int) Option {
	return func(c *clientConfig) { c.maxRequest = n }
}

// Client is the HTTP implementation of Channel.
type Client struct {
	http       *httpx.Client
	log        *zap.Logger
	metrics    *Metrics
	maxRequest int
}

var _ Channel = (*Client)(nil)

// UserAgent is sent with every request.
const UserAgent = "reaper_sdk_go"

// New constructs a Client bound to the web interface at baseURL, for example
// http://localhost:8080.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{log: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	httpOpts := append([]httpx.Option{
		httpx.WithLogger(cfg.log),
		httpx.WithHeaders(http.Header{"User-Agent": {UserAgent}}),
	}, cfg.httpOpts...)
	cl, err := httpx.NewClient(baseURL, httpOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{
		http:       cl,
		log:        cfg.log,
		metrics:    cfg.metrics,
		maxRequest: cfg.maxRequest,
	}, nil
}

// ExecuteCommand sends a single command and returns the raw reply body.
func (c *Client) ExecuteCommand(ctx context.Context, command Command) (string, error) {
	commands := []Command{command}
	body, err := c.send(ctx, "single", commands)
	if err != nil {
		return "", err
	}
	return body, nil
}

// ExecuteCommands sends all commands in one request and returns one reply line
// per command. Only commands that produce a reply (GET/EXTSTATE, TRANSPORT)
// can be batched; a line count mismatch is reported as ErrResultCount.
func (c *Client) ExecuteCommands(ctx context.Context, commands []Command) ([]string, error) {
	if len(commands) == 0 {
		return nil, nil
	}
	body, err := c.send(ctx, "batch", commands)
	if err != nil {
		return nil, err
	}
	lines := reaperapi.Lines(body)
	if len(lines) != len(commands) {
		c.log.Warn("Batch reply line count mismatch",
			zap.Int("commands", len(commands)),
			zap.Int("lines", len(lines)))
		return nil, newChannelError(commands, ErrResultCount)
	}
	return lines, nil
}

func (c *Client) send(ctx context.Context, mode string, commands []Command) (body string, err error) {
	path := commandRoot + "/" + joinCommands(commands)
	if c.maxRequest > 0 && len(path) > c.maxRequest {
		return "", newChannelError(commands, ErrRequestTooLong)
	}

	start := time.Now()
	defer func() {
		c.metrics.observe(mode, commands, time.Since(start).Seconds(), err)
	}()

	resp, err := c.http.Do(ctx, &httpx.Request{
		Method: http.MethodGet,
		Path:   path,
	})
	if err != nil {
		return "", newChannelError(commands, err)
	}
	data, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return "", newChannelError(commands, err)
	}
	return string(data), nil
}

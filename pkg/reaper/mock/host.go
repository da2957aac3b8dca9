// Package mock provides an in-process REAPER host that understands the subset
// of the web interface used by this SDK. A Host can be used directly as a
// reaper.Channel or served over HTTP as the command endpoint.
package mock

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/reaper-setlist/reaper_sdk_go/internal/hoststate"
	"github.com/reaper-setlist/reaper_sdk_go/internal/reaperapi"
	"github.com/reaper-setlist/reaper_sdk_go/pkg/reaper"
)

// Option configures a Host.
type Option func(*Host)

// WithBackend sets the store for persisted values. The Host takes ownership
// and closes it in Close.
func WithBackend(b hoststate.Backend) Option {
	return func(h *Host) {
		if b != nil {
			h.backend = b
		}
	}
}

// WithMaxRequestLength rejects requests whose command path exceeds n bytes,
// the way a real host refuses overlong URLs. Zero disables the limit.
func WithMaxRequestLength(n int) Option {
	return func(h *Host) { h.maxRequest = n }
}

// WithProjectLength sets the length in seconds of the emulated project, which
// is where the go-to-end action moves the cursor.
func WithProjectLength(seconds float64) Option {
	return func(h *Host) { h.projectLength = seconds }
}

// WithTransport sets the initial transport state.
func WithTransport(state reaper.TransportState) Option {
	return func(h *Host) {
		h.playState = state.PlayState
		h.position = state.PositionSeconds
		h.repeat = state.Repeat
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(h *Host) {
		if log != nil {
			h.log = log
		}
	}
}

// Host emulates the ExtState and transport surface of a REAPER instance.
type Host struct {
	mu      sync.Mutex
	backend hoststate.Backend
	// volatile holds values written without persistence. It shadows the
	// backend and is lost on Restart.
	volatile map[string]map[string]string

	playState     reaper.PlayState
	position      float64
	repeat        bool
	projectLength float64
	tabs          int
	actions       []string

	maxRequest int
	log        *zap.Logger
	commands   atomic.Int64
	requests   atomic.Int64
}

var (
	_ reaper.Channel = (*Host)(nil)
	_ http.Handler   = (*Host)(nil)
)

// New creates a Host backed by an in-memory store unless WithBackend is given.
func New(opts ...Option) *Host {
	h := &Host{
		backend:  hoststate.NewMemStore(),
		volatile: make(map[string]map[string]string),
		tabs:     1,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ExecuteCommand implements reaper.Channel.
func (h *Host) ExecuteCommand(ctx context.Context, command reaper.Command) (string, error) {
	commands := []reaper.Command{command}
	lines, err := h.execute(ctx, commands)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", nil
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// ExecuteCommands implements reaper.Channel. Like the HTTP channel, it fails
// with reaper.ErrResultCount when some command produced no reply line.
func (h *Host) ExecuteCommands(ctx context.Context, commands []reaper.Command) ([]string, error) {
	if len(commands) == 0 {
		return nil, nil
	}
	lines, err := h.execute(ctx, commands)
	if err != nil {
		return nil, err
	}
	if len(lines) != len(commands) {
		return nil, channelError(commands, reaper.ErrResultCount)
	}
	return lines, nil
}

func (h *Host) execute(ctx context.Context, commands []reaper.Command) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, channelError(commands, err)
	}
	parts := make([]string, len(commands))
	for i, c := range commands {
		parts[i] = string(c)
	}
	path := strings.Join(parts, ";")
	if h.maxRequest > 0 && len("_/"+path) > h.maxRequest {
		return nil, channelError(commands, reaper.ErrRequestTooLong)
	}
	lines, err := h.run(path)
	if err != nil {
		return nil, channelError(commands, err)
	}
	return lines, nil
}

// ServeHTTP answers GET /_/{commands} like REAPER's web interface.
func (h *Host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	escaped := r.URL.EscapedPath()
	if !strings.HasPrefix(escaped, "/_/") {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(escaped, "/_/")
	if h.maxRequest > 0 && len("_/"+path) > h.maxRequest {
		http.Error(w, "request too long", http.StatusRequestURITooLong)
		return
	}
	lines, err := h.run(path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// Commands returns the number of commands executed so far.
func (h *Host) Commands() int64 { return h.commands.Load() }

// Requests returns the number of requests (single or batched) served so far.
func (h *Host) Requests() int64 { return h.requests.Load() }

// Actions returns the non-builtin action ids triggered so far, in order.
func (h *Host) Actions() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.actions...)
}

// Tabs returns the number of open project tabs.
func (h *Host) Tabs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tabs
}

// Value returns the current value of section/key as the host sees it.
func (h *Host) Value(section, key string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.get(section, key)
}

// Keys lists the keys of section with a non-empty value.
func (h *Host) Keys(section string) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	persisted, err := h.backend.Keys(section)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(persisted))
	var keys []string
	for _, k := range persisted {
		seen[k] = true
		if v, err := h.get(section, k); err == nil && v != "" {
			keys = append(keys, k)
		}
	}
	for k, v := range h.volatile[section] {
		if !seen[k] && v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Restart drops every value that was not persisted.
func (h *Host) Restart() {
	h.mu.Lock()
	h.volatile = make(map[string]map[string]string)
	h.mu.Unlock()
}

// Close releases the backend.
func (h *Host) Close() error {
	return h.backend.Close()
}

func (h *Host) run(path string) ([]string, error) {
	h.requests.Add(1)
	h.mu.Lock()
	defer h.mu.Unlock()

	var lines []string
	for _, raw := range strings.Split(path, ";") {
		if raw == "" {
			continue
		}
		h.commands.Add(1)
		line, ok, err := h.exec(raw)
		if err != nil {
			h.log.Debug("Command rejected", zap.String("command", raw), zap.Error(err))
			return nil, err
		}
		if ok {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (h *Host) exec(raw string) (string, bool, error) {
	segs := strings.Split(raw, "/")
	for i, s := range segs {
		u, err := reaper.UnescapeSegment(s)
		if err != nil {
			return "", false, fmt.Errorf("mock: bad segment %q: %w", s, err)
		}
		segs[i] = u
	}
	switch op := strings.ToUpper(segs[0]); op {
	case "GET":
		if len(segs) < 4 || !strings.EqualFold(segs[1], "EXTSTATE") {
			return "", false, nil
		}
		v, err := h.get(segs[2], segs[3])
		if err != nil {
			return "", false, err
		}
		return strings.Join([]string{reaperapi.KindExtState, segs[2], segs[3], reaperapi.EscapeValue(v)}, "\t"), true, nil
	case "SET":
		if len(segs) < 4 {
			return "", false, nil
		}
		persist := strings.EqualFold(segs[1], "EXTSTATEPERSIST")
		if !persist && !strings.EqualFold(segs[1], "EXTSTATE") {
			return "", false, nil
		}
		value := ""
		if len(segs) >= 5 {
			value = strings.Join(segs[4:], "/")
		}
		return "", false, h.set(segs[2], segs[3], value, persist)
	case reaperapi.KindTransport:
		return h.transportLine(), true, nil
	default:
		h.action(segs[0])
		return "", false, nil
	}
}

func (h *Host) get(section, key string) (string, error) {
	if v, ok := h.volatile[section][key]; ok {
		return v, nil
	}
	v, _, err := h.backend.Get(section, key)
	return v, err
}

func (h *Host) set(section, key, value string, persist bool) error {
	if persist {
		var err error
		if value == "" {
			err = h.backend.Delete(section, key)
		} else {
			err = h.backend.Set(section, key, value)
		}
		if err != nil {
			return err
		}
		if m := h.volatile[section]; m != nil {
			delete(m, key)
		}
		return nil
	}
	m := h.volatile[section]
	if m == nil {
		m = make(map[string]string)
		h.volatile[section] = m
	}
	m[key] = value
	return nil
}

func (h *Host) action(id string) {
	switch id {
	case reaper.ActionGoToStart:
		h.position = 0
	case reaper.ActionGoToEnd:
		h.position = h.projectLength
	case reaper.ActionNewTab:
		h.tabs++
	case reaper.ActionCloseAllTabs:
		h.tabs = 1
		h.position = 0
	default:
		h.actions = append(h.actions, id)
	}
}

func (h *Host) transportLine() string {
	repeat := "0"
	if h.repeat {
		repeat = "1"
	}
	return strings.Join([]string{
		reaperapi.KindTransport,
		strconv.Itoa(int(h.playState)),
		strconv.FormatFloat(h.position, 'f', 3, 64),
		repeat,
		formatPosition(h.position),
		"1.1.00",
	}, "\t")
}

func formatPosition(seconds float64) string {
	minutes := math.Floor(seconds / 60)
	return fmt.Sprintf("%d:%06.3f", int(minutes), seconds-minutes*60)
}

func channelError(commands []reaper.Command, err error) *reaper.ChannelError {
	return &reaper.ChannelError{Commands: len(commands), First: commands[0], Err: err}
}

package reaper_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/reaper-setlist/reaper_sdk_go/internal/httpx"
	"github.com/reaper-setlist/reaper_sdk_go/pkg/reaper"
)

func TestClientSendsEscapedPath(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.URL.EscapedPath())
		mu.Unlock()
		io.WriteString(w, "EXTSTATE\ts\tk\tvalue\n")
	}))
	defer srv.Close()

	cl, err := reaper.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if err := reaper.WriteExtState(ctx, cl, "my/sec", "k;1", "a b+c", true); err != nil {
		t.Fatalf("WriteExtState: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := "/_/SET/EXTSTATEPERSIST/my%2Fsec/k%3B1/a%20b%2Bc"
	if len(seen) != 1 || seen[0] != want {
		t.Fatalf("unexpected path %v, want %s", seen, want)
	}
}

func TestClientExecuteCommandsSplitsLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cmds := strings.Split(strings.TrimPrefix(r.URL.EscapedPath(), "/_/"), ";")
		for _, c := range cmds {
			parts := strings.Split(c, "/")
			io.WriteString(w, "EXTSTATE\t"+parts[2]+"\t"+parts[3]+"\tv-"+parts[3]+"\n\n")
		}
	}))
	defer srv.Close()

	cl, err := reaper.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	values, err := reaper.ReadExtStates(context.Background(), cl, "s", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("ReadExtStates: %v", err)
	}
	if strings.Join(values, ",") != "v-a,v-b,v-c" {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestClientResultCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "EXTSTATE\ts\ta\t1\n")
	}))
	defer srv.Close()

	cl, err := reaper.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = cl.ExecuteCommands(context.Background(), []reaper.Command{
		reaper.GetExtState("s", "a"),
		reaper.GetExtState("s", "b"),
	})
	if !errors.Is(err, reaper.ErrResultCount) {
		t.Fatalf("expected ErrResultCount, got %v", err)
	}
	var ce *reaper.ChannelError
	if !errors.As(err, &ce) || ce.Commands != 2 {
		t.Fatalf("expected ChannelError for 2 commands, got %#v", err)
	}
}

func TestClientHTTPErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := reaper.NewMetrics()
	cl, err := reaper.New(srv.URL, reaper.WithMetrics(m))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = reaper.ReadExtState(context.Background(), cl, "s", "k")
	var httpErr *httpx.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected HTTPError 500, got %v", err)
	}
	var ce *reaper.ChannelError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ChannelError, got %T", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected exactly one attempt, got %d", n)
	}
	if got := testutil.ToFloat64(m.Errors.WithLabelValues("single")); got != 1 {
		t.Fatalf("errors_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Commands.WithLabelValues("get_extstate")); got != 1 {
		t.Fatalf("commands_total = %v, want 1", got)
	}
}

func TestClientBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != reaper.UserAgent {
			t.Errorf("User-Agent = %q", ua)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "reaper" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, "EXTSTATE\ts\tk\tok\n")
	}))
	defer srv.Close()

	ctx := context.Background()
	anon, err := reaper.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = reaper.ReadExtState(ctx, anon, "s", "k")
	var httpErr *httpx.HTTPError
	if !errors.As(err, &httpErr) || !httpErr.Unauthorized() {
		t.Fatalf("expected unauthorized error, got %v", err)
	}

	cl, err := reaper.New(srv.URL, reaper.WithBasicAuth("reaper", "secret"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := reaper.ReadExtState(ctx, cl, "s", "k")
	if err != nil || v != "ok" {
		t.Fatalf("ReadExtState = %q, %v", v, err)
	}
}

func TestClientRequestTooLong(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request should not be sent")
	}))
	defer srv.Close()

	cl, err := reaper.New(srv.URL, reaper.WithMaxRequestLength(32))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = reaper.ReadExtState(context.Background(), cl, "section", strings.Repeat("k", 40))
	if !errors.Is(err, reaper.ErrRequestTooLong) {
		t.Fatalf("expected ErrRequestTooLong, got %v", err)
	}
}

func TestClientEmptyBatch(t *testing.T) {
	cl, err := reaper.New("http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := cl.ExecuteCommands(context.Background(), nil)
	if err != nil || out != nil {
		t.Fatalf("ExecuteCommands(nil) = %v, %v", out, err)
	}
}

func TestNewRejectsInvalidURL(t *testing.T) {
	if _, err := reaper.New("localhost"); err == nil {
		t.Fatalf("expected error for URL without scheme")
	}
}

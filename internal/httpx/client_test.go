package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDoKeepsEscapedPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, r.Header.Get("X-Client")+" "+r.URL.EscapedPath())
	}))
	defer srv.Close()

	cl, err := NewClient(srv.URL+"/base/", WithHeaders(http.Header{"X-Client": {"sdk"}}))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	resp, err := cl.Do(context.Background(), &Request{Method: http.MethodGet, Path: "_/GET/EXTSTATE/a%2Fb/c%3Bd"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	body, err := ReadAllAndClose(resp.Body)
	if err != nil {
		t.Fatalf("ReadAllAndClose: %v", err)
	}
	if want := "sdk /base/_/GET/EXTSTATE/a%2Fb/c%3Bd"; string(body) != want {
		t.Fatalf("body = %q, want %q", body, want)
	}
}

func TestDoReturnsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()

	cl, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = cl.Do(context.Background(), &Request{Method: http.MethodGet, Path: "_/TRANSPORT"})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if !httpErr.Unauthorized() || httpErr.StatusCode != http.StatusForbidden {
		t.Fatalf("unexpected error %+v", httpErr)
	}
}

func TestNewClientValidation(t *testing.T) {
	for _, raw := range []string{"", "   ", "localhost:8080/path", "http://"} {
		if _, err := NewClient(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestDoRejectsMissingMethod(t *testing.T) {
	cl, err := NewClient("http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := cl.Do(context.Background(), &Request{Path: "_/TRANSPORT"}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := cl.Do(context.Background(), nil); err == nil {
		t.Fatalf("expected error")
	}
}

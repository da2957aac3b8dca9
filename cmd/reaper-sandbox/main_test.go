package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reaper-setlist/reaper_sdk_go/internal/httpx"
	"github.com/reaper-setlist/reaper_sdk_go/pkg/reaper"
	"github.com/reaper-setlist/reaper_sdk_go/pkg/reaper/mock"
)

func TestParseFailConfig(t *testing.T) {
	cases := []struct {
		raw     string
		want    failConfig
		wantErr bool
	}{
		{raw: "", want: failConfig{}},
		{raw: "rate=0.5", want: failConfig{rate: 0.5, code: http.StatusInternalServerError}},
		{raw: "rate=1, code=503", want: failConfig{rate: 1, code: 503}},
		{raw: "rate=2", wantErr: true},
		{raw: "rate", wantErr: true},
		{raw: "speed=3", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseFailConfig(tc.raw)
		if tc.wantErr {
			require.Error(t, err, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.want, got, tc.raw)
	}
}

func TestMiddlewareInjectsFailures(t *testing.T) {
	host := mock.New()
	m := newMetrics(host)
	srv := httptest.NewServer(withMiddleware(0, failConfig{rate: 1, code: http.StatusServiceUnavailable}, m, zap.NewNop(), host))
	defer srv.Close()

	cl, err := reaper.New(srv.URL)
	require.NoError(t, err)
	_, err = reaper.ReadExtState(context.Background(), cl, "s", "k")
	var httpErr *httpx.HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)

	require.Equal(t, 1.0, testutil.ToFloat64(m.injected))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("503")))
	require.Zero(t, host.Commands())
}

func TestMiddlewarePassesThrough(t *testing.T) {
	host := mock.New()
	m := newMetrics(host)
	srv := httptest.NewServer(withMiddleware(0, failConfig{}, m, zap.NewNop(), host))
	defer srv.Close()

	cl, err := reaper.New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, reaper.WriteExtState(ctx, cl, "s", "k", "v", true))
	v, err := reaper.ReadExtState(ctx, cl, "s", "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)

	require.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("200")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.commands))
}

package mock

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reaper-setlist/reaper_sdk_go/pkg/reaper"
)

func TestHostExtStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	h := New()
	defer h.Close()

	value := "a/b;c d\te\\f\ng"
	require.NoError(t, reaper.WriteExtState(ctx, h, "sec", "key.0", value, true))

	got, err := reaper.ReadExtState(ctx, h, "sec", "key.0")
	require.NoError(t, err)
	require.Equal(t, value, got)

	missing, err := reaper.ReadExtState(ctx, h, "sec", "nope")
	require.NoError(t, err)
	require.Equal(t, "", missing)
}

func TestHostVolatileValuesDropOnRestart(t *testing.T) {
	ctx := context.Background()
	h := New()
	require.NoError(t, reaper.WriteExtState(ctx, h, "s", "persisted", "p", true))
	require.NoError(t, reaper.WriteExtState(ctx, h, "s", "volatile", "v", false))

	keys, err := h.Keys("s")
	require.NoError(t, err)
	require.Equal(t, []string{"persisted", "volatile"}, keys)

	h.Restart()
	v, err := h.Value("s", "volatile")
	require.NoError(t, err)
	require.Equal(t, "", v)
	v, err = h.Value("s", "persisted")
	require.NoError(t, err)
	require.Equal(t, "p", v)
}

func TestHostEmptyValueDeletes(t *testing.T) {
	ctx := context.Background()
	h := New()
	require.NoError(t, reaper.WriteExtState(ctx, h, "s", "k", "v", true))
	require.NoError(t, reaper.WriteExtState(ctx, h, "s", "k", "", true))

	keys, err := h.Keys("s")
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestHostBatchCounts(t *testing.T) {
	ctx := context.Background()
	h := New()
	values, err := reaper.ReadExtStates(ctx, h, "s", []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, []string{"", "", ""}, values)
	require.EqualValues(t, 3, h.Commands())
	require.EqualValues(t, 1, h.Requests())

	_, err = h.ExecuteCommands(ctx, []reaper.Command{
		reaper.GetExtState("s", "a"),
		reaper.SetExtState("s", "a", "x", true),
	})
	require.ErrorIs(t, err, reaper.ErrResultCount)
}

func TestHostMaxRequestLength(t *testing.T) {
	h := New(WithMaxRequestLength(40))
	_, err := h.ExecuteCommand(context.Background(), reaper.GetExtState("section", "a-rather-long-key-name-here"))
	var ce *reaper.ChannelError
	require.True(t, errors.As(err, &ce))
	require.ErrorIs(t, err, reaper.ErrRequestTooLong)
	require.EqualValues(t, 0, h.Commands())
}

func TestHostTransportActions(t *testing.T) {
	ctx := context.Background()
	h := New(WithProjectLength(183.5), WithTransport(reaper.TransportState{PlayState: reaper.PlayStatePaused}))

	d, err := reaper.ProjectDuration(ctx, h)
	require.NoError(t, err)
	require.Equal(t, 183.5, d.Seconds())

	tr, err := reaper.ReadTransport(ctx, h)
	require.NoError(t, err)
	require.Equal(t, reaper.PlayStatePaused, tr.PlayState)
	require.Equal(t, "3:03.500", tr.Position)

	require.NoError(t, reaper.GoToStart(ctx, h))
	tr, err = reaper.ReadTransport(ctx, h)
	require.NoError(t, err)
	require.Zero(t, tr.PositionSeconds)

	require.NoError(t, reaper.NewTab(ctx, h))
	require.NoError(t, reaper.NewTab(ctx, h))
	require.Equal(t, 3, h.Tabs())
	require.NoError(t, reaper.CloseAllTabs(ctx, h))
	require.Equal(t, 1, h.Tabs())
}

func TestHostServeHTTP(t *testing.T) {
	h := New(WithMaxRequestLength(200))
	srv := httptest.NewServer(h)
	defer srv.Close()

	cl, err := reaper.New(srv.URL)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, reaper.WriteExtState(ctx, cl, "my section", "k/1", "100% ; done", true))
	got, err := reaper.ReadExtState(ctx, cl, "my section", "k/1")
	require.NoError(t, err)
	require.Equal(t, "100% ; done", got)

	v, err := h.Value("my section", "k/1")
	require.NoError(t, err)
	require.Equal(t, "100% ; done", v)

	resp, err := http.Get(srv.URL + "/other")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'k'
	}
	_, err = reaper.ReadExtState(ctx, cl, "s", string(long))
	var ce *reaper.ChannelError
	require.True(t, errors.As(err, &ce))
}

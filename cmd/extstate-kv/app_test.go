package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reaper-setlist/reaper_sdk_go/pkg/reaper/mock"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer, *mock.Host) {
	t.Helper()
	host := mock.New()
	var out bytes.Buffer
	a := &app{out: &out, ch: host}
	a.opts.section = "Songs"
	return a, &out, host
}

func TestShellSession(t *testing.T) {
	ctx := context.Background()
	a, out, _ := newTestApp(t)

	require.NoError(t, a.exec(ctx, `add {"name": "Tune A", "length": 180}`))
	var added map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &added))
	id, _ := added["id"].(string)
	require.NotEmpty(t, id)

	out.Reset()
	require.NoError(t, a.exec(ctx, "keys"))
	require.Equal(t, id+"\n", out.String())

	out.Reset()
	require.NoError(t, a.exec(ctx, `update `+id+` {"name": "Tune A (live)", "length": 181}`))
	require.NoError(t, a.exec(ctx, "get "+id))
	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Equal(t, "Tune A (live)", got["name"])
	require.Equal(t, id, got["id"])

	out.Reset()
	require.NoError(t, a.exec(ctx, "raw "+id))
	require.True(t, strings.HasPrefix(out.String(), id+".0\t"))

	out.Reset()
	require.NoError(t, a.exec(ctx, "delete "+id))
	require.NoError(t, a.exec(ctx, "list"))
	require.Equal(t, "{}", strings.TrimSpace(out.String()))

	require.Error(t, a.exec(ctx, "get "+id), "deleted key")
}

func TestShellErrors(t *testing.T) {
	ctx := context.Background()
	a, out, _ := newTestApp(t)

	require.ErrorIs(t, a.exec(ctx, "exit"), errExit)
	require.Error(t, a.exec(ctx, "bogus"))
	require.Error(t, a.exec(ctx, "get"))
	require.Error(t, a.exec(ctx, "get a b"))
	require.Error(t, a.exec(ctx, "add [1,2]"))
	require.Error(t, a.exec(ctx, "update onlykey"))
	require.NoError(t, a.exec(ctx, ""))

	require.NoError(t, a.exec(ctx, "section Sets"))
	require.Equal(t, "Sets\n", out.String())
	require.Equal(t, "extstate-kv:Sets> ", a.prompt())
}

func TestCommandUsesFlags(t *testing.T) {
	a, out, host := newTestApp(t)
	cmd := newCommand(a)
	cmd.SetArgs([]string{"--section", "Sets", "add", `{"name":"Friday"}`})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), `"Friday"`)

	keys, err := host.Keys("Sets")
	require.NoError(t, err)
	require.NotEmpty(t, keys)
}

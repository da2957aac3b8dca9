package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tidwall/pretty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reaper-setlist/reaper_sdk_go/internal/logger"
	"github.com/reaper-setlist/reaper_sdk_go/pkg/chunk"
	"github.com/reaper-setlist/reaper_sdk_go/pkg/extstate"
	"github.com/reaper-setlist/reaper_sdk_go/pkg/kvstore"
	"github.com/reaper-setlist/reaper_sdk_go/pkg/reaper"
	"github.com/reaper-setlist/reaper_sdk_go/pkg/reaper_sdk"
)

type options struct {
	url      string
	section  string
	username string
	password string
	timeout  time.Duration
	volatile bool
	logLevel zapcore.Level
}

type app struct {
	opts options
	out  io.Writer

	// ch is opened on first use. Tests set it directly.
	ch     reaper.Channel
	log    *zap.Logger
	closer io.Closer
}

func (a *app) channel() (reaper.Channel, error) {
	if a.ch != nil {
		return a.ch, nil
	}
	if a.log == nil {
		log, err := logger.Config{Format: "console", Level: a.opts.logLevel}.New(os.Stderr)
		if err != nil {
			return nil, err
		}
		a.log = log
	}
	opts := []reaper.Option{reaper.WithLogger(a.log), reaper.WithTimeout(a.opts.timeout)}
	if a.opts.username != "" {
		opts = append(opts, reaper.WithBasicAuth(a.opts.username, a.opts.password))
	}
	if a.opts.url != "" {
		cl, err := reaper.New(a.opts.url, opts...)
		if err != nil {
			return nil, err
		}
		a.ch = cl
		return cl, nil
	}
	ch, mode, err := reaper_sdk.NewFromEnv(opts...)
	if err != nil {
		return nil, err
	}
	a.log.Info("Using channel from environment", zap.String("mode", mode))
	if c, ok := ch.(io.Closer); ok {
		a.closer = c
	}
	a.ch = ch
	return ch, nil
}

func (a *app) logger() *zap.Logger {
	if a.log == nil {
		return zap.NewNop()
	}
	return a.log
}

func (a *app) items() (*extstate.Store[json.RawMessage], error) {
	ch, err := a.channel()
	if err != nil {
		return nil, err
	}
	return extstate.New[json.RawMessage](ch, a.opts.section,
		extstate.WithPersist(!a.opts.volatile),
		extstate.WithLogger(a.logger()))
}

func (a *app) store() (*kvstore.Store[kvstore.Record], error) {
	ch, err := a.channel()
	if err != nil {
		return nil, err
	}
	return kvstore.New[kvstore.Record](ch, a.opts.section,
		kvstore.WithLogger(a.logger()),
		kvstore.WithStoreOptions(extstate.WithPersist(!a.opts.volatile)))
}

func (a *app) close() error {
	if a.closer == nil {
		return nil
	}
	c := a.closer
	a.closer = nil
	return c.Close()
}

func (a *app) get(ctx context.Context, key string) error {
	items, err := a.items()
	if err != nil {
		return err
	}
	v, err := items.GetItem(ctx, key)
	if err != nil {
		return err
	}
	if v == nil {
		return fmt.Errorf("key %q not found in section %q", key, a.opts.section)
	}
	return a.printJSON(*v)
}

func (a *app) list(ctx context.Context) error {
	st, err := a.store()
	if err != nil {
		return err
	}
	all, err := st.List(ctx)
	if err != nil {
		return err
	}
	return a.printValue(all)
}

func (a *app) keys(ctx context.Context) error {
	st, err := a.store()
	if err != nil {
		return err
	}
	keys, err := st.Keys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintln(a.out, k)
	}
	return nil
}

func (a *app) add(ctx context.Context, raw string) error {
	rec, err := parseRecord(raw)
	if err != nil {
		return err
	}
	st, err := a.store()
	if err != nil {
		return err
	}
	added, err := st.Add(ctx, rec)
	if err != nil {
		return err
	}
	return a.printValue(added)
}

func (a *app) update(ctx context.Context, key, raw string) error {
	rec, err := parseRecord(raw)
	if err != nil {
		return err
	}
	st, err := a.store()
	if err != nil {
		return err
	}
	return st.Update(ctx, key, rec.WithID(key))
}

func (a *app) delete(ctx context.Context, key string) error {
	st, err := a.store()
	if err != nil {
		return err
	}
	return st.Delete(ctx, key)
}

func (a *app) raw(ctx context.Context, key string) error {
	items, err := a.items()
	if err != nil {
		return err
	}
	chunks, err := items.Chunks(ctx, key)
	if err != nil {
		return err
	}
	for i, c := range chunks {
		fmt.Fprintf(a.out, "%s\t%d chars\t%s\n", extstate.ChunkKey(key, i), len([]rune(c)), c)
	}
	return nil
}

func (a *app) printValue(v any) error {
	data, err := chunk.Marshal(v)
	if err != nil {
		return err
	}
	return a.printJSON(data)
}

func (a *app) printJSON(data []byte) error {
	_, err := a.out.Write(pretty.Pretty(data))
	return err
}

func parseRecord(raw string) (kvstore.Record, error) {
	var rec kvstore.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("record must be a JSON object: %w", err)
	}
	if rec == nil {
		return nil, errors.New("record must be a JSON object")
	}
	return rec, nil
}

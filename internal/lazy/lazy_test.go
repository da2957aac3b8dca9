package lazy

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestCellRunsInitializerOnce(t *testing.T) {
	calls := 0
	c := New(func(context.Context) (string, error) {
		calls++
		return "40001", nil
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := c.Get(ctx); err != nil || v != "40001" {
				t.Errorf("Get = %q, %v", v, err)
			}
		}()
	}
	wg.Wait()
	if calls != 1 {
		t.Fatalf("expected one initializer run, got %d", calls)
	}
}

func TestCellResetDoesNotReinitialize(t *testing.T) {
	calls := 0
	c := New(func(context.Context) (int, error) {
		calls++
		return calls, nil
	})
	ctx := context.Background()

	if v, _ := c.Get(ctx); v != 1 {
		t.Fatalf("first Get = %d", v)
	}
	c.Reset()
	if calls != 1 {
		t.Fatalf("Reset ran the initializer")
	}
	if v, _ := c.Get(ctx); v != 2 {
		t.Fatalf("Get after Reset = %d", v)
	}
}

func TestCellDoesNotCacheErrors(t *testing.T) {
	fail := true
	c := New(func(context.Context) (string, error) {
		if fail {
			return "", errors.New("not set")
		}
		return "ok", nil
	})
	ctx := context.Background()
	if _, err := c.Get(ctx); err == nil {
		t.Fatalf("expected error")
	}
	fail = false
	if v, err := c.Get(ctx); err != nil || v != "ok" {
		t.Fatalf("Get = %q, %v", v, err)
	}
}

func TestCellSet(t *testing.T) {
	c := New(func(context.Context) (string, error) {
		t.Fatalf("initializer should not run after Set")
		return "", nil
	})
	c.Set("manual")
	if v, err := c.Get(context.Background()); err != nil || v != "manual" {
		t.Fatalf("Get = %q, %v", v, err)
	}
}

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_SetAndGet(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "k", "v")
	v, ok := store.Get(ctx, "k")
	if !ok || v != "v" {
		t.Fatalf("Get = (%v, %v), want (v, true)", v, ok)
	}

	if _, ok := store.Get(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
	if _, ok := store.Get(ctx, ""); ok {
		t.Fatal("expected miss for empty key")
	}
}

func TestStore_ExpiresEntries(t *testing.T) {
	t.Parallel()

	store := NewStore(30 * time.Second)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	store.Set(ctx, "k", "v")
	if _, ok := store.Get(ctx, "k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	now = now.Add(31 * time.Second)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatal("expected miss after expiry")
	}
}

func TestStore_SetWithTTL(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	store.SetWithTTL(ctx, "short", "v", 5*time.Second)
	store.SetWithTTL(ctx, "default", "v", 0)

	now = now.Add(6 * time.Second)
	if _, ok := store.Get(ctx, "short"); ok {
		t.Fatal("expected short entry to expire")
	}
	if _, ok := store.Get(ctx, "default"); !ok {
		t.Fatal("expected default-ttl entry to survive")
	}
}

func TestStore_DeleteAndDeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "matches:list:all", 1)
	store.Set(ctx, "matches:detail:m1", 2)
	store.Set(ctx, "series:list", 3)

	store.Delete(ctx, "series:list")
	if _, ok := store.Get(ctx, "series:list"); ok {
		t.Fatal("expected deleted key to miss")
	}

	store.DeletePrefix(ctx, "matches:")
	if _, ok := store.Get(ctx, "matches:list:all"); ok {
		t.Fatal("expected prefix delete to remove list entry")
	}
	if _, ok := store.Get(ctx, "matches:detail:m1"); ok {
		t.Fatal("expected prefix delete to remove detail entry")
	}
}

func TestStore_GetOrLoad_CachesLoadedValue(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()
	var calls int

	for i := 0; i < 3; i++ {
		v, err := store.GetOrLoad(ctx, "k", 0, func(context.Context) (any, error) {
			calls++
			return "loaded", nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "loaded" {
			t.Fatalf("value = %v, want loaded", v)
		}
	}

	if calls != 1 {
		t.Fatalf("loader called %d times, want 1", calls)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()
	wantErr := errors.New("upstream down")
	var calls int

	for i := 0; i < 2; i++ {
		if _, err := store.GetOrLoad(ctx, "k", 0, func(context.Context) (any, error) {
			calls++
			return nil, wantErr
		}); !errors.Is(err, wantErr) {
			t.Fatalf("expected %v, got %v", wantErr, err)
		}
	}

	if calls != 2 {
		t.Fatalf("loader called %d times, want 2", calls)
	}
}

func TestStore_GetOrLoad_CollapsesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	const workers = 24
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", 0, func(context.Context) (any, error) {
				calls.Add(1)
				time.Sleep(20 * time.Millisecond)
				return "value", nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if v != "value" {
				t.Errorf("value = %v, want value", v)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_EmptyKeyBypassesCache(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()
	var calls int

	for i := 0; i < 2; i++ {
		if _, err := store.GetOrLoad(ctx, "", 0, func(context.Context) (any, error) {
			calls++
			return "v", nil
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if calls != 2 {
		t.Fatalf("loader called %d times, want 2", calls)
	}
}

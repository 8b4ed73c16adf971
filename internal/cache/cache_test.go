package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielpatrickdp/response-fusion/go-controller/internal/logging"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/store"
)

type readerFunc func(ctx context.Context, contextType string) (store.WeightProfile, error)

func (f readerFunc) GetProduction(ctx context.Context, contextType string) (store.WeightProfile, error) {
	return f(ctx, contextType)
}

func newTestCache(reader ProductionReader) *Cache {
	return New(reader, DefaultConfig(), logging.NewNop())
}

func fixedProfile(contextType string, symbolic float64) store.WeightProfile {
	return store.WeightProfile{
		SymbolicWeight: symbolic,
		NeuralWeight:   1.0 - symbolic,
		ContextType:    contextType,
		SampleCount:    12,
	}
}

func TestGetWeightsMissReturnsDefault(t *testing.T) {
	c := newTestCache(readerFunc(func(ctx context.Context, contextType string) (store.WeightProfile, error) {
		return store.WeightProfile{}, errors.New("store down")
	}))

	got := c.GetWeights("normal")
	want := store.DefaultProfile("normal")
	if got != want {
		t.Fatalf("expected default profile %+v, got %+v", want, got)
	}
}

func TestGetWeightsNeverBlocksOnSlowStore(t *testing.T) {
	// Reader blocks until its (deadline-bounded) context is cancelled.
	c := newTestCache(readerFunc(func(ctx context.Context, contextType string) (store.WeightProfile, error) {
		<-ctx.Done()
		return store.WeightProfile{}, ctx.Err()
	}))

	start := time.Now()
	got := c.GetWeights("normal")
	elapsed := time.Since(start)

	if got != store.DefaultProfile("normal") {
		t.Fatalf("expected default profile, got %+v", got)
	}
	if elapsed > 500*time.Millisecond {
		t.Fatalf("GetWeights took %v, must not wait on the store", elapsed)
	}
}

func TestFreshHitSkipsStore(t *testing.T) {
	var calls atomic.Int32
	c := newTestCache(readerFunc(func(ctx context.Context, contextType string) (store.WeightProfile, error) {
		calls.Add(1)
		return fixedProfile(contextType, 0.6), nil
	}))

	// Populate via a synchronous refresh, then read within the TTL.
	c.refresh("normal")
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected 1 store read, got %d", n)
	}

	for i := 0; i < 5; i++ {
		got := c.GetWeights("normal")
		if got.SymbolicWeight != 0.6 {
			t.Fatalf("expected refreshed profile, got %+v", got)
		}
	}
	time.Sleep(50 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Fatalf("fresh hits must not re-read the store, saw %d reads", n)
	}
}

func TestStaleReadServesOldValueAndRefreshes(t *testing.T) {
	profile := atomic.Value{}
	profile.Store(fixedProfile("normal", 0.6))
	c := newTestCache(readerFunc(func(ctx context.Context, contextType string) (store.WeightProfile, error) {
		return profile.Load().(store.WeightProfile), nil
	}))

	c.refresh("normal")

	// Expire the entry and change what the store would return.
	c.mu.Lock()
	c.fetched["normal"] = c.now().Add(-time.Minute)
	c.mu.Unlock()
	profile.Store(fixedProfile("normal", 0.8))

	got := c.GetWeights("normal")
	if got.SymbolicWeight != 0.6 {
		t.Fatalf("stale read must serve the old snapshot, got %+v", got)
	}

	// The background refresh eventually lands the new value.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.GetWeights("normal").SymbolicWeight == 0.8 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("refresh never landed the new production value")
}

func TestRefreshFailureKeepsOldEntry(t *testing.T) {
	fail := atomic.Bool{}
	c := newTestCache(readerFunc(func(ctx context.Context, contextType string) (store.WeightProfile, error) {
		if fail.Load() {
			return store.WeightProfile{}, errors.New("store down")
		}
		return fixedProfile(contextType, 0.6), nil
	}))

	c.refresh("normal")
	fail.Store(true)
	c.refresh("normal")

	got := c.GetWeights("normal")
	if got.SymbolicWeight != 0.6 {
		t.Fatalf("failed refresh must leave the old entry, got %+v", got)
	}
}

func TestFreshnessWindow(t *testing.T) {
	now := time.Now()
	var calls atomic.Int32
	c := newTestCache(readerFunc(func(ctx context.Context, contextType string) (store.WeightProfile, error) {
		calls.Add(1)
		return fixedProfile(contextType, 0.6), nil
	}))
	c.now = func() time.Time { return now }

	c.refresh("normal")

	// Any read before TTL expiry returns the snapshot without a store read.
	now = now.Add(c.config.TTL - time.Millisecond)
	if got := c.GetWeights("normal"); got.SymbolicWeight != 0.6 {
		t.Fatalf("expected snapshot inside TTL, got %+v", got)
	}
	time.Sleep(50 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected no refresh inside TTL, saw %d reads", n)
	}

	// Crossing the TTL boundary triggers one.
	now = now.Add(2 * time.Millisecond)
	c.GetWeights("normal")
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if calls.Load() == 2 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("expected a refresh after TTL expiry")
}

func TestInvalidateKeepsValueClearsFreshness(t *testing.T) {
	profile := atomic.Value{}
	profile.Store(fixedProfile("normal", 0.6))
	c := newTestCache(readerFunc(func(ctx context.Context, contextType string) (store.WeightProfile, error) {
		return profile.Load().(store.WeightProfile), nil
	}))

	c.refresh("normal")
	profile.Store(fixedProfile("normal", 0.8))
	c.Invalidate("normal")

	// The invalidated read still returns the old value immediately.
	got := c.GetWeights("normal")
	if got.SymbolicWeight != 0.6 {
		t.Fatalf("invalidated read must still serve the old value, got %+v", got)
	}

	// But it scheduled a refresh that picks up the promoted weights.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.GetWeights("normal").SymbolicWeight == 0.8 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("invalidation never triggered a refresh")
}

func TestInvalidateAllDropsEntries(t *testing.T) {
	c := newTestCache(readerFunc(func(ctx context.Context, contextType string) (store.WeightProfile, error) {
		return fixedProfile(contextType, 0.6), nil
	}))

	c.refresh("normal")
	c.refresh("crisis")
	c.InvalidateAll()

	got := c.GetWeights("normal")
	if got != store.DefaultProfile("normal") {
		t.Fatalf("expected default after InvalidateAll, got %+v", got)
	}
}

func TestWeightSumInvariant(t *testing.T) {
	c := newTestCache(readerFunc(func(ctx context.Context, contextType string) (store.WeightProfile, error) {
		return fixedProfile(contextType, 0.55), nil
	}))
	c.refresh("normal")

	for _, ct := range []string{"normal", "crisis", "never_seen"} {
		p := c.GetWeights(ct)
		if sum := p.SymbolicWeight + p.NeuralWeight; sum < 0.999999 || sum > 1.000001 {
			t.Fatalf("weights for %s sum to %f", ct, sum)
		}
	}
}

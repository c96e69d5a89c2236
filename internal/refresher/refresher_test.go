package refresher_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x0BSoD/newsfeed/internal/feedstore"
	"github.com/0x0BSoD/newsfeed/internal/model"
	"github.com/0x0BSoD/newsfeed/internal/provider"
	"github.com/0x0BSoD/newsfeed/internal/refresher"
)

type recordingReporter struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingReporter) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingReporter) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

// countingProvider returns a batch with one title per call.
type countingProvider struct {
	calls      atomic.Int64
	categories sync.Map
}

func (p *countingProvider) Generate(_ context.Context, category string) ([]model.RawItem, error) {
	n := p.calls.Add(1)
	p.categories.Store(category, true)
	return []model.RawItem{{Title: fmt.Sprintf("item %d", n)}}, nil
}

func titles(store *feedstore.Store) []string {
	var out []string
	for _, item := range store.Snapshot().Items {
		out = append(out, item.Title)
	}
	return out
}

func TestCycle_Success(t *testing.T) {
	store := feedstore.New()
	src := provider.Func(func(_ context.Context, category string) ([]model.RawItem, error) {
		assert.Equal(t, "general", category)
		return []model.RawItem{{Title: " A "}, {Title: "B"}}, nil
	})

	r := refresher.New(store, src, nil, time.Hour, "")
	r.Cycle(context.Background(), "")

	snap := store.Snapshot()
	assert.Equal(t, []string{"A", "B"}, titles(store))
	assert.False(t, snap.IsRefreshing)
	assert.Empty(t, snap.LastError)
	assert.False(t, snap.LastRefreshAt.IsZero())
}

func TestCycle_FailureKeepsItems(t *testing.T) {
	store := feedstore.New()
	store.Merge([]model.RawItem{{Title: "kept"}})
	before := store.Snapshot()

	reporter := &recordingReporter{}
	fail := true
	src := provider.Func(func(context.Context, string) ([]model.RawItem, error) {
		if fail {
			return nil, &provider.Error{Provider: "openai", Message: "quota exceeded"}
		}
		return []model.RawItem{{Title: "fresh"}}, nil
	})

	r := refresher.New(store, src, reporter, time.Hour, "general")
	r.Cycle(context.Background(), model.CategoryResearch)

	snap := store.Snapshot()
	assert.Equal(t, before.Items, snap.Items)
	assert.Equal(t, before.LastRefreshAt, snap.LastRefreshAt)
	assert.False(t, snap.IsRefreshing)
	assert.Equal(t, "openai: quota exceeded", snap.LastError)
	require.Len(t, reporter.Messages(), 1)
	assert.Contains(t, reporter.Messages()[0], "quota exceeded")

	fail = false
	r.Cycle(context.Background(), model.CategoryResearch)

	snap = store.Snapshot()
	assert.Empty(t, snap.LastError)
	assert.Equal(t, []string{"fresh", "kept"}, titles(store))
}

func TestCycle_PlainErrorBecomesProviderError(t *testing.T) {
	store := feedstore.New()
	src := provider.Func(func(context.Context, string) ([]model.RawItem, error) {
		return nil, errors.New("connection refused")
	})

	refresher.New(store, src, nil, time.Hour, "").Cycle(context.Background(), "")

	assert.Contains(t, store.Snapshot().LastError, "connection refused")
}

func TestCycle_InvalidBatchMergesNothing(t *testing.T) {
	store := feedstore.New()
	store.Merge([]model.RawItem{{Title: "kept"}})

	src := provider.Func(func(context.Context, string) ([]model.RawItem, error) {
		return []model.RawItem{{Title: "good"}, {Title: ""}}, nil
	})

	refresher.New(store, src, nil, time.Hour, "").Cycle(context.Background(), "")

	snap := store.Snapshot()
	assert.Equal(t, []string{"kept"}, titles(store))
	assert.Contains(t, snap.LastError, "invalid item")
}

func TestActivate_StartupCycleOnce(t *testing.T) {
	store := feedstore.New()
	src := &countingProvider{}

	r := refresher.New(store, src, nil, time.Hour, "")
	r.Activate(context.Background())
	r.Activate(context.Background())
	r.Wait()

	assert.True(t, r.Armed())
	assert.Equal(t, int64(1), src.calls.Load())
	assert.Equal(t, []string{"item 1"}, titles(store))

	r.Deactivate()
	assert.False(t, r.Armed())
	r.Deactivate()
}

func TestActivate_Periodic(t *testing.T) {
	store := feedstore.New()
	src := &countingProvider{}

	r := refresher.New(store, src, nil, 10*time.Millisecond, model.CategoryStartups)
	r.Activate(context.Background())

	require.Eventually(t, func() bool {
		return src.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	r.Deactivate()
	r.Wait()
	stopped := src.calls.Load()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, src.calls.Load())

	_, ok := src.categories.Load(model.CategoryStartups)
	assert.True(t, ok)
}

func TestActivate_ParentContextCancel(t *testing.T) {
	store := feedstore.New()
	src := &countingProvider{}

	ctx, cancel := context.WithCancel(context.Background())
	r := refresher.New(store, src, nil, 10*time.Millisecond, "")
	r.Activate(ctx)
	cancel()

	// let the timer loop observe the cancellation before waiting on cycles
	time.Sleep(30 * time.Millisecond)
	r.Wait()
	calls := src.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, src.calls.Load())
}

func TestActivate_AfterParentCancel(t *testing.T) {
	store := feedstore.New()
	src := &countingProvider{}

	ctx, cancel := context.WithCancel(context.Background())
	r := refresher.New(store, src, nil, 10*time.Millisecond, "")
	r.Activate(ctx)
	require.True(t, r.Armed())

	cancel()
	require.Eventually(t, func() bool { return !r.Armed() }, time.Second, time.Millisecond)
	r.Wait()
	before := src.calls.Load()

	r.Activate(context.Background())
	assert.True(t, r.Armed())
	require.Eventually(t, func() bool {
		return src.calls.Load() >= before+3
	}, time.Second, 5*time.Millisecond)

	r.Deactivate()
	assert.False(t, r.Armed())
	r.Wait()
}

func TestWait_ConcurrentTriggers(t *testing.T) {
	store := feedstore.New()
	src := &countingProvider{}
	r := refresher.New(store, src, nil, time.Hour, "")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.RefreshNow("")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Wait()
			}
		}()
	}
	wg.Wait()
	r.Wait()

	assert.Equal(t, int64(400), src.calls.Load())
	assert.False(t, store.Snapshot().IsRefreshing)
}

// gatedProvider blocks each call until the matching gate is released.
type gatedProvider struct {
	gates map[string]chan struct{}
}

func (p *gatedProvider) Generate(ctx context.Context, category string) ([]model.RawItem, error) {
	<-p.gates[category]
	return []model.RawItem{{Title: category}}, nil
}

func TestRefreshNow_OverlappingCycles(t *testing.T) {
	store := feedstore.New()
	src := &gatedProvider{gates: map[string]chan struct{}{
		"slow": make(chan struct{}),
		"fast": make(chan struct{}),
	}}

	r := refresher.New(store, src, nil, time.Hour, "")
	r.RefreshNow("slow")
	require.Eventually(t, func() bool { return store.Snapshot().IsRefreshing }, time.Second, time.Millisecond)

	r.RefreshNow("fast")
	close(src.gates["fast"])

	require.Eventually(t, func() bool {
		snap := store.Snapshot()
		return len(snap.Items) == 1 && !snap.IsRefreshing
	}, time.Second, time.Millisecond)

	// the fast cycle already reset the flag although the slow one is pending
	assert.False(t, store.Snapshot().IsRefreshing)
	assert.Equal(t, []string{"fast"}, titles(store))

	close(src.gates["slow"])
	r.Wait()

	assert.Equal(t, []string{"slow", "fast"}, titles(store))
}

func TestDeactivate_InFlightCycleCompletes(t *testing.T) {
	store := feedstore.New()
	src := &gatedProvider{gates: map[string]chan struct{}{"general": make(chan struct{})}}

	r := refresher.New(store, src, nil, time.Hour, "")
	r.Activate(context.Background())
	require.Eventually(t, func() bool { return store.Snapshot().IsRefreshing }, time.Second, time.Millisecond)

	r.Deactivate()
	close(src.gates["general"])
	r.Wait()

	snap := store.Snapshot()
	assert.False(t, snap.IsRefreshing)
	assert.Equal(t, []string{"general"}, titles(store))
}

// Package refresher decides when a fetch-and-merge cycle runs: once on
// activation, on demand, and on a fixed interval while active.
package refresher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/0x0BSoD/newsfeed/internal/model"
	"github.com/0x0BSoD/newsfeed/internal/provider"
)

// DefaultInterval is the period between automatic refreshes.
const DefaultInterval = 5 * time.Minute

type Store interface {
	BeginRefresh()
	Merge(batch []model.RawItem)
	EndRefresh(err error)
}

type Provider interface {
	Generate(ctx context.Context, category string) ([]model.RawItem, error)
}

// FailureReporter is told about every failed cycle.
type FailureReporter interface {
	Notify(msg string)
}

type Refresher struct {
	store    Store
	provider Provider
	reporter FailureReporter

	interval        time.Duration
	defaultCategory string

	mu       sync.Mutex
	cancel   context.CancelFunc
	loopDone chan struct{}

	// inflight counts running cycles; a WaitGroup would forbid Add racing
	// with Wait on a zero counter.
	inflightMu   sync.Mutex
	inflight     int
	inflightDone *sync.Cond
}

func New(
	store Store,
	source Provider,
	reporter FailureReporter,
	interval time.Duration,
	defaultCategory string,
) *Refresher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if defaultCategory == "" {
		defaultCategory = provider.DefaultCategory
	}
	r := &Refresher{
		store:           store,
		provider:        source,
		reporter:        reporter,
		interval:        interval,
		defaultCategory: defaultCategory,
	}
	r.inflightDone = sync.NewCond(&r.inflightMu)
	return r
}

// Activate runs the startup cycle and arms the periodic timer. Calling it
// while already armed does nothing. Cancelling ctx disarms the timer.
func (r *Refresher) Activate(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.loopDone = done

	// cycles outlive deactivation: only the timer is tied to loopCtx
	cycleCtx := context.WithoutCancel(ctx)

	r.spawn(cycleCtx, r.defaultCategory)
	go r.loop(loopCtx, cycleCtx, done)

	slog.Info("refresher activated", "interval", r.interval)
}

// Deactivate disarms the periodic timer and returns once the timer loop has
// stopped. Cycles already in flight are left to finish.
func (r *Refresher) Deactivate() {
	r.mu.Lock()
	cancel, done := r.cancel, r.loopDone
	r.cancel, r.loopDone = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	slog.Info("refresher deactivated")
}

func (r *Refresher) Armed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cancel != nil
}

// RefreshNow starts a cycle immediately, even if another one is in flight.
func (r *Refresher) RefreshNow(category string) {
	r.spawn(context.Background(), category)
}

// Wait blocks until every in-flight cycle has settled. It is safe to call
// concurrently with new triggers.
func (r *Refresher) Wait() {
	r.inflightMu.Lock()
	defer r.inflightMu.Unlock()

	for r.inflight > 0 {
		r.inflightDone.Wait()
	}
}

func (r *Refresher) loop(ctx, cycleCtx context.Context, done chan struct{}) {
	defer close(done)
	defer r.disarm(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			r.spawn(cycleCtx, r.defaultCategory)
		}
	}
}

// disarm clears the armed state when the loop stopped on its own, i.e. the
// parent context of Activate was cancelled.
func (r *Refresher) disarm(done chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loopDone != done {
		return
	}
	r.cancel()
	r.cancel, r.loopDone = nil, nil

	slog.Info("refresher disarmed by context")
}

func (r *Refresher) spawn(ctx context.Context, category string) {
	r.inflightMu.Lock()
	r.inflight++
	r.inflightMu.Unlock()

	go func() {
		defer r.settle()
		r.Cycle(ctx, category)
	}()
}

func (r *Refresher) settle() {
	r.inflightMu.Lock()
	defer r.inflightMu.Unlock()

	r.inflight--
	if r.inflight == 0 {
		r.inflightDone.Broadcast()
	}
}

// Cycle runs one fetch-and-merge cycle synchronously. Failures end up in
// the store's last error and are never returned; there is no retry.
func (r *Refresher) Cycle(ctx context.Context, category string) {
	if category == "" {
		category = r.defaultCategory
	}

	cyclesInFlight.Inc()
	defer cyclesInFlight.Dec()
	timer := prometheus.NewTimer(cycleDuration)
	defer timer.ObserveDuration()

	r.store.BeginRefresh()

	batch, err := r.fetch(ctx, category)
	if err != nil {
		slog.Error("refresh cycle failed", "category", category, "err", err)
		cyclesTotal.WithLabelValues("error").Inc()
		r.store.EndRefresh(err)
		if r.reporter != nil {
			r.reporter.Notify("refresh failed: " + err.Error())
		}
		return
	}

	r.store.Merge(batch)
	r.store.EndRefresh(nil)
	cyclesTotal.WithLabelValues("success").Inc()
	mergedItems.Add(float64(len(batch)))

	slog.Info("refresh cycle complete", "category", category, "items", len(batch))
}

func (r *Refresher) fetch(ctx context.Context, category string) ([]model.RawItem, error) {
	batch, err := r.provider.Generate(ctx, category)
	if err != nil {
		return nil, provider.Errorf("", err, "fetch %q", category)
	}

	batch, err = model.ValidateBatch(batch)
	if err != nil {
		return nil, provider.Errorf("", err, "rejected batch for %q", category)
	}

	return batch, nil
}

// Package engine ties the feed store, the refresher and the view
// projections together behind the interface consumers use.
package engine

import (
	"context"

	"github.com/0x0BSoD/newsfeed/internal/feedstore"
	"github.com/0x0BSoD/newsfeed/internal/model"
	"github.com/0x0BSoD/newsfeed/internal/refresher"
	"github.com/0x0BSoD/newsfeed/internal/view"
)

type Engine struct {
	store     *feedstore.Store
	refresher *refresher.Refresher
	projector *view.Projector
}

func New(store *feedstore.Store, refresher *refresher.Refresher) *Engine {
	return &Engine{
		store:     store,
		refresher: refresher,
		projector: view.NewProjector(),
	}
}

func (e *Engine) Snapshot() feedstore.Snapshot {
	return e.store.Snapshot()
}

// FilteredView returns the snapshot items matching category and search term.
func (e *Engine) FilteredView(category, term string) []model.Item {
	snap := e.store.Snapshot()
	return e.projector.Filter(snap.Version, snap.Items, category, term)
}

// View returns a snapshot together with its items filtered by category and
// search term, so status and items always agree.
func (e *Engine) View(category, term string) (feedstore.Snapshot, []model.Item) {
	snap := e.store.Snapshot()
	return snap, e.projector.Filter(snap.Version, snap.Items, category, term)
}

// Trending returns the trending subset of an already filtered view.
func (e *Engine) Trending(filtered []model.Item) []model.Item {
	return view.Trending(filtered)
}

func (e *Engine) Item(key string) (model.Item, bool) {
	return e.store.Item(key)
}

func (e *Engine) RefreshNow(category string) {
	e.refresher.RefreshNow(category)
}

func (e *Engine) Activate(ctx context.Context) {
	e.refresher.Activate(ctx)
}

func (e *Engine) Deactivate() {
	e.refresher.Deactivate()
}

// Wait blocks until in-flight refresh cycles settle.
func (e *Engine) Wait() {
	e.refresher.Wait()
}

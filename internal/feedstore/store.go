// Package feedstore holds the authoritative in-memory feed: the ordered item
// collection plus refresh status. Every operation is atomic with respect to
// readers.
package feedstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/0x0BSoD/newsfeed/internal/model"
)

// DefaultCap is the maximum number of retained items.
const DefaultCap = 50

// Snapshot is a consistent view of the store. Items must be treated as
// read-only.
type Snapshot struct {
	Items         []model.Item
	IsRefreshing  bool
	LastError     string
	LastRefreshAt time.Time
	// Version changes on every store mutation.
	Version uint64
}

type Store struct {
	mu sync.RWMutex

	items         []model.Item
	isRefreshing  bool
	lastError     string
	lastRefreshAt time.Time
	version       uint64

	retention int
	now       func() time.Time
	newID     func() string
}

type Option func(*Store)

// WithCap overrides the retention cap. Non-positive values are ignored.
func WithCap(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.retention = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func New(opts ...Option) *Store {
	s := &Store{
		retention: DefaultCap,
		now:       time.Now,
		newID:     newItemID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newItemID returns a time-ordered UUIDv7, falling back to a random UUID if
// the v7 generator fails.
func newItemID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Merge prepends a fetched batch in received order, drops later duplicates
// by title and truncates to the retention cap. Newly fetched items take
// precedence over retained ones with the same title.
func (s *Store) Merge(batch []model.RawItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	fresh := lo.Map(batch, func(raw model.RawItem, _ int) model.Item {
		return model.NewItem(s.newID(), raw, now)
	})

	combined := make([]model.Item, 0, len(fresh)+len(s.items))
	combined = append(combined, fresh...)
	combined = append(combined, s.items...)

	merged := lo.UniqBy(combined, func(item model.Item) string {
		return item.Title
	})
	if len(merged) > s.retention {
		merged = merged[:s.retention]
	}

	s.items = merged
	s.lastRefreshAt = now
	s.version++
}

func (s *Store) BeginRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isRefreshing = true
	s.lastError = ""
	s.version++
}

// EndRefresh closes a cycle. A non-nil err is recorded as the last error;
// the item collection is never touched here.
func (s *Store) EndRefresh(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isRefreshing = false
	if err != nil {
		s.lastError = err.Error()
	}
	s.version++
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.Item, len(s.items))
	copy(items, s.items)

	return Snapshot{
		Items:         items,
		IsRefreshing:  s.isRefreshing,
		LastError:     s.lastError,
		LastRefreshAt: s.lastRefreshAt,
		Version:       s.version,
	}
}

// Item looks an item up by id or by url slug.
func (s *Store) Item(key string) (model.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if key == "" {
		return model.Item{}, false
	}
	return lo.Find(s.items, func(item model.Item) bool {
		return item.ID == key || item.URL == key
	})
}

// Package store holds the canonical in-memory application state and exposes
// the action surface that is the only legal mutation path. Every
// external-facing mutation is optimistic: in-memory state is updated
// synchronously before any network round-trip, and rolled back if the
// mirrored remote write fails.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/mbuchner/linkhaven/internal/logger"
	"github.com/mbuchner/linkhaven/internal/model"
	"github.com/mbuchner/linkhaven/internal/storage"
)

// Remote mirrors mutations to the hosted multi-device backend.
type Remote interface {
	InsertBookmark(ctx context.Context, b model.Bookmark) error
	UpdateBookmark(ctx context.Context, b model.Bookmark) error
	DeleteBookmark(ctx context.Context, id string) error

	InsertCollection(ctx context.Context, c model.Collection) error
	UpdateCollection(ctx context.Context, c model.Collection) error
	DeleteCollection(ctx context.Context, id string) error

	InsertTag(ctx context.Context, t model.Tag) error
	UpdateTag(ctx context.Context, t model.Tag) error
	DeleteTag(ctx context.Context, id string) error
}

// Store is the single source of truth for bookmarks, collections, tags and
// view state. All components read it through accessors and mutate it only
// through its action surface; no other component holds a writable copy.
type Store struct {
	mu    sync.RWMutex
	state *model.State

	// Transient view state, never persisted.
	search        string
	selectedTags  []string
	syncing       bool
	sessionActive bool

	demo    bool
	remote  Remote
	adapter storage.Adapter
	log     logger.Logger
	now     func() time.Time

	jobs      chan remoteJob
	wg        sync.WaitGroup
	closeOnce sync.Once

	// jobMu serializes enqueues with Close so a send never hits a closed
	// channel. Separate from mu: the dispatch loop takes mu for rollbacks
	// while draining jobs.
	jobMu  sync.Mutex
	closed bool
}

// Params configures a new Store. Adapter and Remote may be nil, in which
// case persistence and remote mirroring are skipped respectively.
type Params struct {
	Adapter storage.Adapter
	Remote  Remote
	Logger  logger.Logger
	Demo    bool
}

// New creates a Store with empty default state and starts the remote
// dispatch loop. Call Close when done.
func New(params Params) *Store {
	log := params.Logger
	if log == nil {
		log = logger.Nop()
	}

	s := &Store{
		state:   model.NewState(),
		demo:    params.Demo,
		remote:  params.Remote,
		adapter: params.Adapter,
		log:     log,
		now:     time.Now,
		jobs:    make(chan remoteJob, 256),
	}

	s.wg.Add(1)
	go s.dispatchLoop()

	return s
}

// Close stops the remote dispatch loop after draining queued writes.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.jobMu.Lock()
		s.closed = true
		close(s.jobs)
		s.jobMu.Unlock()
		s.wg.Wait()
	})
}

// Hydrate replaces the current state with the cached one, if any. It is
// meant to be called asynchronously on startup; until it resolves the store
// serves its empty default state.
func (s *Store) Hydrate() (bool, error) {
	if s.adapter == nil {
		return false, nil
	}
	state, ok, err := s.adapter.Load(storage.StateKey)
	if err != nil || !ok {
		return false, err
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return true, nil
}

// ReplaceAll swaps in a full state, typically the result of a remote
// refetch, and persists it. System collections are always re-merged.
func (s *Store) ReplaceAll(state *model.State) {
	state.Normalize()

	s.mu.Lock()
	s.state = state.Clone()
	s.persistLocked()
	s.mu.Unlock()
}

// State returns a deep copy of the current persisted state.
func (s *Store) State() *model.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Bookmarks returns a copy of all bookmarks.
func (s *Store) Bookmarks() []model.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Bookmark, len(s.state.Bookmarks))
	for i := range s.state.Bookmarks {
		out[i] = s.state.Bookmarks[i].Clone()
	}
	return out
}

// Collections returns a copy of all collections, system ones included.
func (s *Store) Collections() []model.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Collection{}, s.state.Collections...)
}

// Tags returns a copy of all tags.
func (s *Store) Tags() []model.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Tag{}, s.state.Tags...)
}

// BookmarkByID returns a copy of the bookmark with the given ID.
func (s *Store) BookmarkByID(id string) (model.Bookmark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b := s.state.BookmarkByID(id); b != nil {
		return b.Clone(), true
	}
	return model.Bookmark{}, false
}

// CollectionByID returns a copy of the collection with the given ID.
func (s *Store) CollectionByID(id string) (model.Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c := s.state.CollectionByID(id); c != nil {
		return *c, true
	}
	return model.Collection{}, false
}

// TagByID returns a copy of the tag with the given ID.
func (s *Store) TagByID(id string) (model.Tag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t := s.state.TagByID(id); t != nil {
		return *t, true
	}
	return model.Tag{}, false
}

// DemoMode reports whether the store runs in read-only demo mode.
func (s *Store) DemoMode() bool {
	return s.demo
}

// SetSessionActive toggles remote mirroring. Mutations are mirrored only
// while a session is active and a remote is configured.
func (s *Store) SetSessionActive(active bool) {
	s.mu.Lock()
	s.sessionActive = active
	s.mu.Unlock()
}

// SetSyncing flags an ongoing background sync for the UI.
func (s *Store) SetSyncing(v bool) {
	s.mu.Lock()
	s.syncing = v
	s.mu.Unlock()
}

// Syncing reports whether a background sync is in progress.
func (s *Store) Syncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncing
}

// SetSearch sets the transient search filter string.
func (s *Store) SetSearch(q string) {
	s.mu.Lock()
	s.search = q
	s.mu.Unlock()
}

// SetSelectedTags sets the transient tag filter.
func (s *Store) SetSelectedTags(tagIDs []string) {
	s.mu.Lock()
	s.selectedTags = append([]string{}, tagIDs...)
	s.mu.Unlock()
}

// SetViewMode persists the list presentation preference.
func (s *Store) SetViewMode(m model.ViewMode) {
	s.mu.Lock()
	s.state.ViewMode = m
	s.persistLocked()
	s.mu.Unlock()
}

// SetSortOption persists the active sort key.
func (s *Store) SetSortOption(o model.SortOption) {
	s.mu.Lock()
	s.state.SortOption = o
	s.persistLocked()
	s.mu.Unlock()
}

// SetActiveSection persists the active sidebar section.
func (s *Store) SetActiveSection(sec model.Section) {
	s.mu.Lock()
	s.state.ActiveSection = sec
	s.persistLocked()
	s.mu.Unlock()
}

// persistLocked saves the full state to the local adapter. A storage failure
// is logged but never corrupts or reverts the in-memory state.
func (s *Store) persistLocked() {
	if s.adapter == nil {
		return
	}
	if err := s.adapter.Save(storage.StateKey, s.state); err != nil {
		s.log.Warn("failed to persist state", logger.Error(err))
	}
}

// touchLocked bumps a bookmark's UpdatedAt, keeping it monotonic per record.
func (s *Store) touchLocked(b *model.Bookmark) {
	now := s.now()
	if !now.After(b.UpdatedAt) {
		now = b.UpdatedAt.Add(time.Millisecond)
	}
	b.UpdatedAt = now
}

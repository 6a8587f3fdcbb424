package store

import (
	"context"
	"net/url"
	"strings"

	"github.com/mbuchner/linkhaven/internal/model"
)

// validURL reports whether raw is an absolute http(s) URL.
func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// AddBookmark creates a bookmark and mirrors the insert. A malformed URL is
// a validation error: the action is rejected and nothing is created. The
// returned bookmark is the zero value when the action was rejected.
func (s *Store) AddBookmark(params model.NewBookmarkParams) (model.Bookmark, *Pending) {
	var created model.Bookmark

	p := s.apply(func(st *model.State) (remoteOp, bool) {
		if !validURL(params.URL) {
			return nil, false
		}
		if params.CollectionID != "" && st.CollectionByID(params.CollectionID) == nil {
			params.CollectionID = model.CollectionUnsorted
		}

		b := model.NewBookmark(params)
		st.Bookmarks = append(st.Bookmarks, b)
		created = b.Clone()

		mirror := created
		return func(ctx context.Context, r Remote) error {
			return r.InsertBookmark(ctx, mirror)
		}, true
	})

	return created, p
}

// UpdateBookmark replaces the bookmark with the same ID. CreatedAt is
// preserved, UpdatedAt bumped. Unknown IDs are a no-op.
func (s *Store) UpdateBookmark(b model.Bookmark) *Pending {
	return s.apply(func(st *model.State) (remoteOp, bool) {
		existing := st.BookmarkByID(b.ID)
		if existing == nil {
			return nil, false
		}
		if b.CollectionID == "" || st.CollectionByID(b.CollectionID) == nil {
			b.CollectionID = model.CollectionUnsorted
		}
		if b.Tags == nil {
			b.Tags = []string{}
		}

		b.CreatedAt = existing.CreatedAt
		*existing = b.Clone()
		s.touchLocked(existing)

		mirror := existing.Clone()
		return func(ctx context.Context, r Remote) error {
			return r.UpdateBookmark(ctx, mirror)
		}, true
	})
}

// ToggleFavorite flips a bookmark's favorite flag.
func (s *Store) ToggleFavorite(id string) *Pending {
	return s.updateBookmarkField(id, func(b *model.Bookmark) {
		b.IsFavorite = !b.IsFavorite
	})
}

// ToggleArchive flips a bookmark's archived flag. Archiving a trashed
// bookmark pulls it out of the trash; the two buckets are exclusive.
func (s *Store) ToggleArchive(id string) *Pending {
	return s.updateBookmarkField(id, func(b *model.Bookmark) {
		b.IsArchived = !b.IsArchived
		if b.IsArchived {
			b.IsTrashed = false
		}
	})
}

// TogglePin flips a bookmark's pinned flag.
func (s *Store) TogglePin(id string) *Pending {
	return s.updateBookmarkField(id, func(b *model.Bookmark) {
		b.IsPinned = !b.IsPinned
	})
}

// MoveToTrash soft-deletes a bookmark. Already-trashed IDs are a no-op.
func (s *Store) MoveToTrash(id string) *Pending {
	return s.apply(func(st *model.State) (remoteOp, bool) {
		b := st.BookmarkByID(id)
		if b == nil || b.IsTrashed {
			return nil, false
		}
		b.IsTrashed = true
		b.IsArchived = false
		s.touchLocked(b)

		mirror := b.Clone()
		return func(ctx context.Context, r Remote) error {
			return r.UpdateBookmark(ctx, mirror)
		}, true
	})
}

// RestoreFromTrash returns a trashed bookmark to its previous collection.
func (s *Store) RestoreFromTrash(id string) *Pending {
	return s.apply(func(st *model.State) (remoteOp, bool) {
		b := st.BookmarkByID(id)
		if b == nil || !b.IsTrashed {
			return nil, false
		}
		b.IsTrashed = false
		s.touchLocked(b)

		mirror := b.Clone()
		return func(ctx context.Context, r Remote) error {
			return r.UpdateBookmark(ctx, mirror)
		}, true
	})
}

// PermanentlyDelete removes a bookmark for good.
func (s *Store) PermanentlyDelete(id string) *Pending {
	return s.apply(func(st *model.State) (remoteOp, bool) {
		idx := -1
		for i := range st.Bookmarks {
			if st.Bookmarks[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, false
		}
		st.Bookmarks = append(st.Bookmarks[:idx], st.Bookmarks[idx+1:]...)

		return func(ctx context.Context, r Remote) error {
			return r.DeleteBookmark(ctx, id)
		}, true
	})
}

// EmptyTrash permanently deletes every trashed bookmark. With an empty
// trash the action is a no-op.
func (s *Store) EmptyTrash() *Pending {
	return s.apply(func(st *model.State) (remoteOp, bool) {
		var deleted []string
		kept := st.Bookmarks[:0]
		for _, b := range st.Bookmarks {
			if b.IsTrashed {
				deleted = append(deleted, b.ID)
			} else {
				kept = append(kept, b)
			}
		}
		if len(deleted) == 0 {
			return nil, false
		}
		st.Bookmarks = kept

		return func(ctx context.Context, r Remote) error {
			for _, id := range deleted {
				if err := r.DeleteBookmark(ctx, id); err != nil {
					return err
				}
			}
			return nil
		}, true
	})
}

// updateBookmarkField applies a small field change to an existing bookmark
// and mirrors the full updated record.
func (s *Store) updateBookmarkField(id string, change func(b *model.Bookmark)) *Pending {
	return s.apply(func(st *model.State) (remoteOp, bool) {
		b := st.BookmarkByID(id)
		if b == nil {
			return nil, false
		}
		change(b)
		s.touchLocked(b)

		mirror := b.Clone()
		return func(ctx context.Context, r Remote) error {
			return r.UpdateBookmark(ctx, mirror)
		}, true
	})
}

// AddCollection creates a collection. A blank name is rejected. The
// returned collection is the zero value when the action was rejected.
func (s *Store) AddCollection(params model.NewCollectionParams) (model.Collection, *Pending) {
	var created model.Collection

	p := s.apply(func(st *model.State) (remoteOp, bool) {
		params.Name = strings.TrimSpace(params.Name)
		if params.Name == "" {
			return nil, false
		}

		c := model.NewCollection(params)
		st.Collections = append(st.Collections, c)
		created = c

		return func(ctx context.Context, r Remote) error {
			return r.InsertCollection(ctx, c)
		}, true
	})

	return created, p
}

// UpdateCollection replaces a non-system collection by ID.
func (s *Store) UpdateCollection(c model.Collection) *Pending {
	return s.apply(func(st *model.State) (remoteOp, bool) {
		existing := st.CollectionByID(c.ID)
		if existing == nil || existing.IsSystem {
			return nil, false
		}
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, false
		}
		c.IsSystem = false
		*existing = c

		return func(ctx context.Context, r Remote) error {
			return r.UpdateCollection(ctx, c)
		}, true
	})
}

// DeleteCollection removes a non-system collection. Its members are
// reassigned to "unsorted", never deleted.
func (s *Store) DeleteCollection(id string) *Pending {
	return s.apply(func(st *model.State) (remoteOp, bool) {
		idx := -1
		for i := range st.Collections {
			if st.Collections[i].ID == id {
				if st.Collections[i].IsSystem {
					return nil, false
				}
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, false
		}
		st.Collections = append(st.Collections[:idx], st.Collections[idx+1:]...)

		for i := range st.Bookmarks {
			if st.Bookmarks[i].CollectionID == id {
				st.Bookmarks[i].CollectionID = model.CollectionUnsorted
				s.touchLocked(&st.Bookmarks[i])
			}
		}

		// Other devices apply the same reassignment when the delete event
		// arrives, so only the collection delete itself is mirrored.
		return func(ctx context.Context, r Remote) error {
			return r.DeleteCollection(ctx, id)
		}, true
	})
}

// AddTag creates a tag. A blank name is rejected. The returned tag is the
// zero value when the action was rejected.
func (s *Store) AddTag(params model.NewTagParams) (model.Tag, *Pending) {
	var created model.Tag

	p := s.apply(func(st *model.State) (remoteOp, bool) {
		params.Name = strings.TrimSpace(params.Name)
		if params.Name == "" {
			return nil, false
		}

		t := model.NewTag(params)
		st.Tags = append(st.Tags, t)
		created = t

		return func(ctx context.Context, r Remote) error {
			return r.InsertTag(ctx, t)
		}, true
	})

	return created, p
}

// UpdateTag replaces a tag by ID.
func (s *Store) UpdateTag(t model.Tag) *Pending {
	return s.apply(func(st *model.State) (remoteOp, bool) {
		existing := st.TagByID(t.ID)
		if existing == nil {
			return nil, false
		}
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return nil, false
		}
		*existing = t

		return func(ctx context.Context, r Remote) error {
			return r.UpdateTag(ctx, t)
		}, true
	})
}

// DeleteTag removes a tag and detaches it from every bookmark. Bookmarks
// themselves are never deleted by this.
func (s *Store) DeleteTag(id string) *Pending {
	return s.apply(func(st *model.State) (remoteOp, bool) {
		idx := -1
		for i := range st.Tags {
			if st.Tags[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, false
		}
		st.Tags = append(st.Tags[:idx], st.Tags[idx+1:]...)

		for i := range st.Bookmarks {
			if st.Bookmarks[i].DetachTag(id) {
				s.touchLocked(&st.Bookmarks[i])
			}
		}

		return func(ctx context.Context, r Remote) error {
			return r.DeleteTag(ctx, id)
		}, true
	})
}

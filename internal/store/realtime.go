package store

import "github.com/mbuchner/linkhaven/internal/model"

// Server-originated changes are applied directly, without the optimistic
// protocol: there is nothing to mirror back and nothing to roll back. The
// merge model is last write observed wins — full-record replacement, no
// field-level merge and no timestamp comparison.

// ApplyBookmarkChange merges a server-pushed bookmark change.
// Inserts are idempotent on id collision; deletes of unknown ids are a
// silent no-op.
func (s *Store) ApplyBookmarkChange(ch model.BookmarkChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ch.Kind {
	case model.ChangeInserted:
		if s.state.BookmarkByID(ch.Bookmark.ID) != nil {
			return
		}
		b := ch.Bookmark.Clone()
		s.normalizeBookmarkLocked(&b)
		s.state.Bookmarks = append(s.state.Bookmarks, b)

	case model.ChangeUpdated:
		b := ch.Bookmark.Clone()
		s.normalizeBookmarkLocked(&b)
		if existing := s.state.BookmarkByID(b.ID); existing != nil {
			*existing = b
		} else {
			// Update for a record this device never saw: treat as insert
			// so devices converge.
			s.state.Bookmarks = append(s.state.Bookmarks, b)
		}

	case model.ChangeDeleted:
		idx := -1
		for i := range s.state.Bookmarks {
			if s.state.Bookmarks[i].ID == ch.Bookmark.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		s.state.Bookmarks = append(s.state.Bookmarks[:idx], s.state.Bookmarks[idx+1:]...)
	}

	s.persistLocked()
}

// ApplyCollectionChange merges a server-pushed collection change. Deleting
// a collection reassigns its members to "unsorted", exactly like a local
// delete; system collections are never removed.
func (s *Store) ApplyCollectionChange(ch model.CollectionChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ch.Kind {
	case model.ChangeInserted:
		if s.state.CollectionByID(ch.Collection.ID) != nil {
			return
		}
		s.state.Collections = append(s.state.Collections, ch.Collection)

	case model.ChangeUpdated:
		if existing := s.state.CollectionByID(ch.Collection.ID); existing != nil {
			if existing.IsSystem {
				return
			}
			*existing = ch.Collection
		} else {
			s.state.Collections = append(s.state.Collections, ch.Collection)
		}

	case model.ChangeDeleted:
		idx := -1
		for i := range s.state.Collections {
			if s.state.Collections[i].ID == ch.Collection.ID {
				if s.state.Collections[i].IsSystem {
					return
				}
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		s.state.Collections = append(s.state.Collections[:idx], s.state.Collections[idx+1:]...)

		for i := range s.state.Bookmarks {
			if s.state.Bookmarks[i].CollectionID == ch.Collection.ID {
				s.state.Bookmarks[i].CollectionID = model.CollectionUnsorted
			}
		}
	}

	s.persistLocked()
}

// ApplyTagChange merges a server-pushed tag change. Deleting a tag detaches
// it from every bookmark, never deleting bookmarks.
func (s *Store) ApplyTagChange(ch model.TagChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ch.Kind {
	case model.ChangeInserted:
		if s.state.TagByID(ch.Tag.ID) != nil {
			return
		}
		s.state.Tags = append(s.state.Tags, ch.Tag)

	case model.ChangeUpdated:
		if existing := s.state.TagByID(ch.Tag.ID); existing != nil {
			*existing = ch.Tag
		} else {
			s.state.Tags = append(s.state.Tags, ch.Tag)
		}

	case model.ChangeDeleted:
		idx := -1
		for i := range s.state.Tags {
			if s.state.Tags[i].ID == ch.Tag.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		s.state.Tags = append(s.state.Tags[:idx], s.state.Tags[idx+1:]...)

		for i := range s.state.Bookmarks {
			s.state.Bookmarks[i].DetachTag(ch.Tag.ID)
		}
	}

	s.persistLocked()
}

// normalizeBookmarkLocked repairs a record arriving from the feed: nil tag
// slices become empty and dangling collection references fall back to
// "unsorted".
func (s *Store) normalizeBookmarkLocked(b *model.Bookmark) {
	if b.Tags == nil {
		b.Tags = []string{}
	}
	if b.CollectionID == "" || s.state.CollectionByID(b.CollectionID) == nil {
		b.CollectionID = model.CollectionUnsorted
	}
}

package store_test

import (
	"reflect"
	"testing"

	"github.com/mbuchner/linkhaven/internal/model"
)

func TestApplyBookmarkChange_InsertIdempotent(t *testing.T) {
	s := newLocalStore(t)

	b := model.NewBookmark(model.NewBookmarkParams{URL: "https://example.com", Title: "Example"})
	ch := model.BookmarkChange{Kind: model.ChangeInserted, Bookmark: b}

	s.ApplyBookmarkChange(ch)
	s.ApplyBookmarkChange(ch)

	if got := len(s.Bookmarks()); got != 1 {
		t.Errorf("expected 1 bookmark after duplicate insert events, got %d", got)
	}
}

func TestApplyBookmarkChange_UpdateReplacesWholeRecord(t *testing.T) {
	s := newLocalStore(t)

	b, _ := s.AddBookmark(model.NewBookmarkParams{URL: "https://example.com", Title: "Old title"})

	incoming := b.Clone()
	incoming.Title = "New title"
	incoming.IsFavorite = true
	s.ApplyBookmarkChange(model.BookmarkChange{Kind: model.ChangeUpdated, Bookmark: incoming})

	got, _ := s.BookmarkByID(b.ID)
	if got.Title != "New title" || !got.IsFavorite {
		t.Errorf("expected full-record replacement, got %+v", got)
	}
}

func TestApplyBookmarkChange_UpdateForUnknownInserts(t *testing.T) {
	s := newLocalStore(t)

	b := model.NewBookmark(model.NewBookmarkParams{URL: "https://example.com", Title: "From elsewhere"})
	s.ApplyBookmarkChange(model.BookmarkChange{Kind: model.ChangeUpdated, Bookmark: b})

	if _, ok := s.BookmarkByID(b.ID); !ok {
		t.Error("update for a never-seen record should be treated as an insert")
	}
}

func TestApplyBookmarkChange_DeleteUnknownIsNoOp(t *testing.T) {
	s := newLocalStore(t)

	s.AddBookmark(model.NewBookmarkParams{URL: "https://example.com", Title: "Kept"})
	before := s.State()

	s.ApplyBookmarkChange(model.BookmarkChange{
		Kind:     model.ChangeDeleted,
		Bookmark: model.Bookmark{ID: "never-seen"},
	})

	if !reflect.DeepEqual(s.State(), before) {
		t.Error("deleting an unknown id must leave the state untouched")
	}
}

func TestApplyBookmarkChange_DanglingCollectionFallsBack(t *testing.T) {
	s := newLocalStore(t)

	b := model.NewBookmark(model.NewBookmarkParams{URL: "https://example.com", Title: "Example"})
	b.CollectionID = "deleted-on-server"
	s.ApplyBookmarkChange(model.BookmarkChange{Kind: model.ChangeInserted, Bookmark: b})

	got, _ := s.BookmarkByID(b.ID)
	if got.CollectionID != model.CollectionUnsorted {
		t.Errorf("dangling collection should fall back to unsorted, got %q", got.CollectionID)
	}
}

func TestApplyCollectionChange_DeleteCascades(t *testing.T) {
	s := newLocalStore(t)

	c, _ := s.AddCollection(model.NewCollectionParams{Name: "Reading"})
	b, _ := s.AddBookmark(model.NewBookmarkParams{URL: "https://example.com", Title: "Example", CollectionID: c.ID})

	s.ApplyCollectionChange(model.CollectionChange{Kind: model.ChangeDeleted, Collection: c})

	if _, ok := s.CollectionByID(c.ID); ok {
		t.Error("collection should be removed")
	}
	got, _ := s.BookmarkByID(b.ID)
	if got.CollectionID != model.CollectionUnsorted {
		t.Errorf("members should be reassigned to unsorted, got %q", got.CollectionID)
	}
}

func TestApplyCollectionChange_SystemNeverRemoved(t *testing.T) {
	s := newLocalStore(t)

	s.ApplyCollectionChange(model.CollectionChange{
		Kind:       model.ChangeDeleted,
		Collection: model.Collection{ID: model.CollectionUnsorted},
	})

	if _, ok := s.CollectionByID(model.CollectionUnsorted); !ok {
		t.Error("system collections must survive server-pushed deletes")
	}
}

func TestApplyTagChange_DeleteDetaches(t *testing.T) {
	s := newLocalStore(t)

	tag, _ := s.AddTag(model.NewTagParams{Name: "golang"})
	b, _ := s.AddBookmark(model.NewBookmarkParams{URL: "https://example.com", Title: "Example", Tags: []string{tag.ID}})

	s.ApplyTagChange(model.TagChange{Kind: model.ChangeDeleted, Tag: tag})

	if _, ok := s.TagByID(tag.ID); ok {
		t.Error("tag should be removed")
	}
	got, _ := s.BookmarkByID(b.ID)
	if got.HasTag(tag.ID) {
		t.Error("tag should be detached from every bookmark")
	}
}

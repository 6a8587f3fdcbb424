package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mbuchner/linkhaven/internal/model"
)

func TestBookmark_JSONSerialization(t *testing.T) {
	tests := []struct {
		name     string
		bookmark model.Bookmark
	}{
		{
			name: "bookmark with all fields",
			bookmark: model.Bookmark{
				ID:           "b1",
				URL:          "https://tanstack.com/router",
				Title:        "TanStack Router",
				Description:  "Type-safe routing",
				CollectionID: "c1",
				Tags:         []string{"t1", "t2"},
				IsFavorite:   true,
				IsPinned:     true,
				CreatedAt:    time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
				UpdatedAt:    time.Date(2025, 1, 20, 14, 22, 0, 0, time.UTC),
			},
		},
		{
			name: "unsorted bookmark",
			bookmark: model.Bookmark{
				ID:           "b2",
				URL:          "https://news.ycombinator.com",
				Title:        "Hacker News",
				CollectionID: model.CollectionUnsorted,
				Tags:         []string{},
				CreatedAt:    time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
				UpdatedAt:    time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.bookmark)
			if err != nil {
				t.Fatalf("failed to marshal: %v", err)
			}

			var got model.Bookmark
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("failed to unmarshal: %v", err)
			}

			if got.ID != tt.bookmark.ID {
				t.Errorf("ID mismatch: got %q, want %q", got.ID, tt.bookmark.ID)
			}
			if got.URL != tt.bookmark.URL {
				t.Errorf("URL mismatch: got %q, want %q", got.URL, tt.bookmark.URL)
			}
			if got.CollectionID != tt.bookmark.CollectionID {
				t.Errorf("CollectionID mismatch: got %q, want %q", got.CollectionID, tt.bookmark.CollectionID)
			}
			if got.IsFavorite != tt.bookmark.IsFavorite {
				t.Errorf("IsFavorite mismatch: got %v, want %v", got.IsFavorite, tt.bookmark.IsFavorite)
			}
		})
	}
}

func TestNewBookmark_Defaults(t *testing.T) {
	b := model.NewBookmark(model.NewBookmarkParams{URL: "https://example.com", Title: "Example"})

	if b.ID == "" {
		t.Error("expected non-empty ID")
	}
	if b.CollectionID != model.CollectionUnsorted {
		t.Errorf("expected default collection %q, got %q", model.CollectionUnsorted, b.CollectionID)
	}
	if b.Tags == nil {
		t.Error("expected non-nil tag slice")
	}
	if b.CreatedAt.IsZero() || !b.UpdatedAt.Equal(b.CreatedAt) {
		t.Error("expected CreatedAt and UpdatedAt to be set and equal")
	}
}

func TestBookmark_DetachTag(t *testing.T) {
	b := model.Bookmark{ID: "b1", Tags: []string{"t1", "t2", "t3"}}

	if !b.DetachTag("t2") {
		t.Error("expected DetachTag to report removal")
	}
	if b.HasTag("t2") {
		t.Error("t2 should be gone")
	}
	if len(b.Tags) != 2 {
		t.Errorf("expected 2 tags, got %d", len(b.Tags))
	}

	if b.DetachTag("missing") {
		t.Error("detaching an unknown tag should report false")
	}
}

func TestState_Normalize_RemergesSystemCollections(t *testing.T) {
	s := &model.State{
		Bookmarks: []model.Bookmark{
			{ID: "b1", URL: "https://example.com", CollectionID: "gone"},
		},
	}

	s.Normalize()

	if s.CollectionByID(model.CollectionAll) == nil {
		t.Error("expected the all collection to be re-merged")
	}
	if s.CollectionByID(model.CollectionUnsorted) == nil {
		t.Error("expected the unsorted collection to be re-merged")
	}
	if s.Bookmarks[0].CollectionID != model.CollectionUnsorted {
		t.Errorf("dangling collection reference should fall back to unsorted, got %q", s.Bookmarks[0].CollectionID)
	}
	if s.ViewMode != model.ViewModeGrid || s.SortOption != model.SortCreatedDesc {
		t.Error("expected default view preferences")
	}
}

func TestState_Clone_IsIndependent(t *testing.T) {
	s := model.NewState()
	s.Bookmarks = append(s.Bookmarks, model.Bookmark{ID: "b1", Tags: []string{"t1"}})

	c := s.Clone()
	c.Bookmarks[0].Tags[0] = "mutated"
	c.Bookmarks[0].Title = "mutated"

	if s.Bookmarks[0].Tags[0] != "t1" {
		t.Error("clone shares the tag slice with the original")
	}
	if s.Bookmarks[0].Title == "mutated" {
		t.Error("clone shares bookmark records with the original")
	}
}

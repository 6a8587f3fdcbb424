package search

import (
	"testing"

	"github.com/mbuchner/linkhaven/internal/model"
)

func bookmark(id, title string) model.Bookmark {
	return model.Bookmark{ID: id, Title: title, URL: "https://example.com/" + id, Tags: []string{}}
}

func TestBookmarks_EmptyQuery(t *testing.T) {
	results := Bookmarks([]model.Bookmark{bookmark("b1", "GitHub")}, "")
	if len(results) != 0 {
		t.Errorf("expected 0 results for empty query, got %d", len(results))
	}
}

func TestBookmarks_ExactMatch(t *testing.T) {
	results := Bookmarks([]model.Bookmark{
		bookmark("b1", "GitHub"),
		bookmark("b2", "GitLab"),
	}, "GitHub")

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Bookmark.Title != "GitHub" {
		t.Errorf("expected GitHub, got %s", results[0].Bookmark.Title)
	}
}

func TestBookmarks_FuzzyMatch(t *testing.T) {
	// "tanrou" should fuzzy match "TanStack Router".
	results := Bookmarks([]model.Bookmark{
		bookmark("b1", "TanStack Router"),
		bookmark("b2", "React Router"),
	}, "tanrou")

	if len(results) == 0 {
		t.Fatal("expected a fuzzy match")
	}
	if results[0].Bookmark.Title != "TanStack Router" {
		t.Errorf("best match = %s, want TanStack Router", results[0].Bookmark.Title)
	}
}

func TestBookmarks_TrashedExcluded(t *testing.T) {
	trashed := bookmark("b1", "GitHub")
	trashed.IsTrashed = true

	results := Bookmarks([]model.Bookmark{trashed}, "GitHub")
	if len(results) != 0 {
		t.Errorf("trashed bookmarks should not be searchable, got %d results", len(results))
	}
}

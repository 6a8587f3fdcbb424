// Package search provides score-ranked fuzzy title search, used by the CLI
// quick-search where match quality matters more than list order.
package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/mbuchner/linkhaven/internal/model"
)

// Result represents a fuzzy search match.
type Result struct {
	Bookmark       model.Bookmark
	MatchedIndexes []int
	Score          int
}

// bookmarkTitles implements fuzzy.Source for bookmark slice.
type bookmarkTitles []model.Bookmark

func (bt bookmarkTitles) String(i int) string {
	return bt[i].Title
}

func (bt bookmarkTitles) Len() int {
	return len(bt)
}

// Bookmarks searches by title using fuzzy matching, best match first.
// Trashed bookmarks are excluded; an empty query returns nothing.
func Bookmarks(bookmarks []model.Bookmark, query string) []Result {
	if query == "" {
		return nil
	}

	candidates := make(bookmarkTitles, 0, len(bookmarks))
	for _, b := range bookmarks {
		if b.IsTrashed {
			continue
		}
		candidates = append(candidates, b)
	}

	matches := fuzzy.FindFrom(query, candidates)

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Bookmark:       candidates[m.Index].Clone(),
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}

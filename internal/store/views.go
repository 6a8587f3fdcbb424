package store

import (
	"sort"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mbuchner/linkhaven/internal/model"
)

// Filter is the UI filter state the derived bookmark list depends on.
type Filter struct {
	Section      model.Section
	CollectionID string   // non-empty narrows to a single collection
	TagIDs       []string // bookmark must carry every selected tag
	Search       string
	Sort         model.SortOption
}

// Counts holds the derived per-section, per-collection and per-tag bookmark
// counts. Counts are computed, never stored.
type Counts struct {
	All          int
	Unsorted     int
	Favorites    int
	Archived     int
	Trash        int
	ByCollection map[string]int
	ByTag        map[string]int
}

// active reports whether a bookmark is in the active lifecycle bucket.
func active(b *model.Bookmark) bool {
	return !b.IsTrashed && !b.IsArchived
}

// CountBookmarks computes counts as a pure function of the state.
func CountBookmarks(state *model.State) Counts {
	c := Counts{
		ByCollection: make(map[string]int),
		ByTag:        make(map[string]int),
	}

	for i := range state.Bookmarks {
		b := &state.Bookmarks[i]
		switch {
		case b.IsTrashed:
			c.Trash++
		case b.IsArchived:
			c.Archived++
		default:
			c.All++
			if b.CollectionID == model.CollectionUnsorted {
				c.Unsorted++
			}
			if b.IsFavorite {
				c.Favorites++
			}
			c.ByCollection[b.CollectionID]++
			for _, t := range b.Tags {
				c.ByTag[t]++
			}
		}
	}

	return c
}

// Counts returns the derived counts for the current state.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CountBookmarks(s.state)
}

// bookmarkTitles implements fuzzy.Source for a bookmark slice.
type bookmarkTitles []model.Bookmark

func (bt bookmarkTitles) String(i int) string { return bt[i].Title }
func (bt bookmarkTitles) Len() int            { return len(bt) }

// FilterBookmarks computes the visible, sorted bookmark list as a pure
// function of state plus filter. Pinned bookmarks sort first, then the
// active sort key applies; ties keep their input order.
func FilterBookmarks(state *model.State, f Filter) []model.Bookmark {
	if f.Section == "" {
		f.Section = model.SectionAll
	}
	if f.Sort == "" {
		f.Sort = model.SortCreatedDesc
	}

	var visible []model.Bookmark
	for i := range state.Bookmarks {
		b := &state.Bookmarks[i]
		if !inSection(b, f.Section) {
			continue
		}
		if f.CollectionID != "" && b.CollectionID != f.CollectionID {
			continue
		}
		if !hasAllTags(b, f.TagIDs) {
			continue
		}
		visible = append(visible, b.Clone())
	}

	if f.Search != "" {
		matches := fuzzy.FindFrom(f.Search, bookmarkTitles(visible))
		matched := make([]model.Bookmark, 0, len(matches))
		seen := make(map[int]bool, len(matches))
		// Keep input order so the sort below stays stable.
		for _, m := range matches {
			seen[m.Index] = true
		}
		for i := range visible {
			if seen[i] {
				matched = append(matched, visible[i])
			}
		}
		visible = matched
	}

	sortBookmarks(visible, f.Sort)
	return visible
}

// Visible returns the bookmark list for the store's current filter state.
func (s *Store) Visible() []model.Bookmark {
	s.mu.RLock()
	f := Filter{
		Section: s.state.ActiveSection,
		TagIDs:  append([]string{}, s.selectedTags...),
		Search:  s.search,
		Sort:    s.state.SortOption,
	}
	state := s.state
	result := FilterBookmarks(state, f)
	s.mu.RUnlock()
	return result
}

func inSection(b *model.Bookmark, sec model.Section) bool {
	switch sec {
	case model.SectionAll:
		return active(b)
	case model.SectionUnsorted:
		return active(b) && b.CollectionID == model.CollectionUnsorted
	case model.SectionFavorites:
		return active(b) && b.IsFavorite
	case model.SectionArchived:
		return b.IsArchived && !b.IsTrashed
	case model.SectionTrash:
		return b.IsTrashed
	default:
		return active(b)
	}
}

func hasAllTags(b *model.Bookmark, tagIDs []string) bool {
	for _, t := range tagIDs {
		if !b.HasTag(t) {
			return false
		}
	}
	return true
}

func sortBookmarks(bookmarks []model.Bookmark, opt model.SortOption) {
	var coll *collate.Collator
	if opt == model.SortTitleAsc || opt == model.SortTitleDesc {
		coll = collate.New(language.Und)
	}

	sort.SliceStable(bookmarks, func(i, j int) bool {
		a, b := &bookmarks[i], &bookmarks[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}

		switch opt {
		case model.SortCreatedAsc:
			return a.CreatedAt.Before(b.CreatedAt)
		case model.SortTitleAsc:
			return coll.CompareString(a.Title, b.Title) < 0
		case model.SortTitleDesc:
			return coll.CompareString(a.Title, b.Title) > 0
		default: // SortCreatedDesc
			return b.CreatedAt.Before(a.CreatedAt)
		}
	})
}

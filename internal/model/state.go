package model

// ViewMode is the persisted bookmark list presentation preference.
type ViewMode string

const (
	ViewModeGrid ViewMode = "grid"
	ViewModeList ViewMode = "list"
)

// SortOption selects the ordering of the visible bookmark list.
// Pinned bookmarks always sort before unpinned regardless of the option.
type SortOption string

const (
	SortCreatedDesc SortOption = "createdDesc"
	SortCreatedAsc  SortOption = "createdAsc"
	SortTitleAsc    SortOption = "titleAsc"
	SortTitleDesc   SortOption = "titleDesc"
)

// Section identifies a lifecycle bucket of the UI sidebar.
type Section string

const (
	SectionAll       Section = "all"
	SectionUnsorted  Section = "unsorted"
	SectionFavorites Section = "favorites"
	SectionArchived  Section = "archived"
	SectionTrash     Section = "trash"
)

// State is the persisted portion of the application state: all entities plus
// the view preferences that survive restarts. Transient filter state (search
// string, selected tags, session, sync flag) is deliberately excluded.
type State struct {
	Bookmarks     []Bookmark   `json:"bookmarks"`
	Collections   []Collection `json:"collections"`
	Tags          []Tag        `json:"tags"`
	ViewMode      ViewMode     `json:"viewMode"`
	SortOption    SortOption   `json:"sortOption"`
	ActiveSection Section      `json:"activeSection"`
}

// NewState creates an empty State with the system collections and default
// view preferences in place.
func NewState() *State {
	return &State{
		Bookmarks:     []Bookmark{},
		Collections:   SystemCollections(),
		Tags:          []Tag{},
		ViewMode:      ViewModeGrid,
		SortOption:    SortCreatedDesc,
		ActiveSection: SectionAll,
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	c := &State{
		Bookmarks:     make([]Bookmark, len(s.Bookmarks)),
		Collections:   append([]Collection{}, s.Collections...),
		Tags:          append([]Tag{}, s.Tags...),
		ViewMode:      s.ViewMode,
		SortOption:    s.SortOption,
		ActiveSection: s.ActiveSection,
	}
	for i := range s.Bookmarks {
		c.Bookmarks[i] = s.Bookmarks[i].Clone()
	}
	return c
}

// Normalize repairs a state loaded from cache or fetched from the backend:
// nil slices become empty, the system collections are re-merged, view
// preferences get defaults, and bookmarks pointing at a collection that no
// longer exists fall back to "unsorted".
func (s *State) Normalize() {
	if s.Bookmarks == nil {
		s.Bookmarks = []Bookmark{}
	}
	if s.Collections == nil {
		s.Collections = []Collection{}
	}
	if s.Tags == nil {
		s.Tags = []Tag{}
	}
	if s.ViewMode == "" {
		s.ViewMode = ViewModeGrid
	}
	if s.SortOption == "" {
		s.SortOption = SortCreatedDesc
	}
	if s.ActiveSection == "" {
		s.ActiveSection = SectionAll
	}

	// Re-merge system collections even if the source returned none.
	have := make(map[string]bool, len(s.Collections))
	for _, c := range s.Collections {
		have[c.ID] = true
	}
	for _, sys := range SystemCollections() {
		if !have[sys.ID] {
			s.Collections = append([]Collection{sys}, s.Collections...)
		}
	}

	known := make(map[string]bool, len(s.Collections))
	for _, c := range s.Collections {
		known[c.ID] = true
	}
	for i := range s.Bookmarks {
		if s.Bookmarks[i].CollectionID == "" || !known[s.Bookmarks[i].CollectionID] {
			s.Bookmarks[i].CollectionID = CollectionUnsorted
		}
		if s.Bookmarks[i].Tags == nil {
			s.Bookmarks[i].Tags = []string{}
		}
	}
}

// BookmarkByID finds a bookmark by ID, returns nil if not found.
func (s *State) BookmarkByID(id string) *Bookmark {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ID == id {
			return &s.Bookmarks[i]
		}
	}
	return nil
}

// CollectionByID finds a collection by ID, returns nil if not found.
func (s *State) CollectionByID(id string) *Collection {
	for i := range s.Collections {
		if s.Collections[i].ID == id {
			return &s.Collections[i]
		}
	}
	return nil
}

// TagByID finds a tag by ID, returns nil if not found.
func (s *State) TagByID(id string) *Tag {
	for i := range s.Tags {
		if s.Tags[i].ID == id {
			return &s.Tags[i]
		}
	}
	return nil
}

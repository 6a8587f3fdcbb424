package model

import "time"

// Bookmark represents a saved URL with metadata.
type Bookmark struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Favicon      string    `json:"favicon,omitempty"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	CollectionID string    `json:"collectionId"`
	Tags         []string  `json:"tags"`
	IsFavorite   bool      `json:"isFavorite"`
	IsArchived   bool      `json:"isArchived"`
	IsTrashed    bool      `json:"isTrashed"`
	IsPinned     bool      `json:"isPinned"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	URL          string
	Title        string
	Description  string
	CollectionID string    // empty = unsorted
	Tags         []string  // tag IDs
	CreatedAt    time.Time // zero = now
}

// NewBookmark creates a Bookmark with generated UUID and timestamps.
func NewBookmark(params NewBookmarkParams) Bookmark {
	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	collectionID := params.CollectionID
	if collectionID == "" {
		collectionID = CollectionUnsorted
	}

	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return Bookmark{
		ID:           GenerateUUID(),
		URL:          params.URL,
		Title:        params.Title,
		Description:  params.Description,
		CollectionID: collectionID,
		Tags:         tags,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// HasTag reports whether the bookmark carries the given tag ID.
func (b *Bookmark) HasTag(tagID string) bool {
	for _, t := range b.Tags {
		if t == tagID {
			return true
		}
	}
	return false
}

// DetachTag removes the given tag ID from the bookmark's tag set.
// Returns true if the tag was present.
func (b *Bookmark) DetachTag(tagID string) bool {
	for i, t := range b.Tags {
		if t == tagID {
			b.Tags = append(b.Tags[:i], b.Tags[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the bookmark.
func (b Bookmark) Clone() Bookmark {
	c := b
	c.Tags = append([]string{}, b.Tags...)
	return c
}

package remote

import (
	"encoding/json"
	"time"

	"github.com/mbuchner/linkhaven/internal/model"
)

// The backend stores rows in snake_case; the in-memory model uses Go naming.
// These row types are the only place the two shapes meet.

// BookmarkRow is the backend's bookmark record.
type BookmarkRow struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Favicon      string    `json:"favicon,omitempty"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	CollectionID string    `json:"collection_id"`
	Tags         []string  `json:"tags"`
	IsFavorite   bool      `json:"is_favorite"`
	IsArchived   bool      `json:"is_archived"`
	IsTrashed    bool      `json:"is_trashed"`
	IsPinned     bool      `json:"is_pinned"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CollectionRow is the backend's collection record.
type CollectionRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
	IsSystem bool   `json:"is_system"`
}

// TagRow is the backend's tag record.
type TagRow struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// ChangeMessage is the envelope pushed over the realtime feed for every row
// change. Record carries the full row for inserts and updates; for deletes
// only its id field is meaningful.
type ChangeMessage struct {
	Table  string          `json:"table"` // "bookmarks", "collections" or "tags"
	Type   string          `json:"type"`  // "insert", "update" or "delete"
	Record json.RawMessage `json:"record"`
}

// Table names used on the wire.
const (
	TableBookmarks   = "bookmarks"
	TableCollections = "collections"
	TableTags        = "tags"
)

func bookmarkToRow(b model.Bookmark) BookmarkRow {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	return BookmarkRow{
		ID:           b.ID,
		URL:          b.URL,
		Title:        b.Title,
		Description:  b.Description,
		Favicon:      b.Favicon,
		Thumbnail:    b.Thumbnail,
		CollectionID: b.CollectionID,
		Tags:         tags,
		IsFavorite:   b.IsFavorite,
		IsArchived:   b.IsArchived,
		IsTrashed:    b.IsTrashed,
		IsPinned:     b.IsPinned,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// RowToBookmark converts a backend row to the in-memory model.
func RowToBookmark(r BookmarkRow) model.Bookmark {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.Bookmark{
		ID:           r.ID,
		URL:          r.URL,
		Title:        r.Title,
		Description:  r.Description,
		Favicon:      r.Favicon,
		Thumbnail:    r.Thumbnail,
		CollectionID: r.CollectionID,
		Tags:         tags,
		IsFavorite:   r.IsFavorite,
		IsArchived:   r.IsArchived,
		IsTrashed:    r.IsTrashed,
		IsPinned:     r.IsPinned,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func collectionToRow(c model.Collection) CollectionRow {
	return CollectionRow{
		ID:       c.ID,
		Name:     c.Name,
		Icon:     c.Icon,
		Color:    c.Color,
		IsSystem: c.IsSystem,
	}
}

// RowToCollection converts a backend row to the in-memory model.
func RowToCollection(r CollectionRow) model.Collection {
	return model.Collection{
		ID:       r.ID,
		Name:     r.Name,
		Icon:     r.Icon,
		Color:    r.Color,
		IsSystem: r.IsSystem,
	}
}

func tagToRow(t model.Tag) TagRow {
	return TagRow{ID: t.ID, Name: t.Name, Color: t.Color}
}

// RowToTag converts a backend row to the in-memory model.
func RowToTag(r TagRow) model.Tag {
	return model.Tag{ID: r.ID, Name: r.Name, Color: r.Color}
}

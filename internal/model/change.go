package model

// ChangeKind classifies a server-pushed row change.
type ChangeKind string

const (
	ChangeInserted ChangeKind = "insert"
	ChangeUpdated  ChangeKind = "update"
	ChangeDeleted  ChangeKind = "delete"
)

// BookmarkChange is a row-level change event for a bookmark.
// For deletions only the ID field of Bookmark is meaningful.
type BookmarkChange struct {
	Kind     ChangeKind
	Bookmark Bookmark
}

// CollectionChange is a row-level change event for a collection.
type CollectionChange struct {
	Kind       ChangeKind
	Collection Collection
}

// TagChange is a row-level change event for a tag.
type TagChange struct {
	Kind ChangeKind
	Tag  Tag
}

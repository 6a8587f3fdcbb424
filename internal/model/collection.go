package model

// IDs of the two permanent system collections. "all" is virtual (computed,
// never a real bucket), "unsorted" is the default bucket.
const (
	CollectionAll      = "all"
	CollectionUnsorted = "unsorted"
)

// Collection represents a named container for bookmarks.
type Collection struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
	IsSystem bool   `json:"isSystem"`
}

// NewCollectionParams holds parameters for creating a new Collection.
type NewCollectionParams struct {
	Name  string
	Icon  string
	Color string
}

// NewCollection creates a Collection with generated UUID.
func NewCollection(params NewCollectionParams) Collection {
	return Collection{
		ID:    GenerateUUID(),
		Name:  params.Name,
		Icon:  params.Icon,
		Color: params.Color,
	}
}

// SystemCollections returns fresh copies of the two permanent collections.
func SystemCollections() []Collection {
	return []Collection{
		{ID: CollectionAll, Name: "All Bookmarks", IsSystem: true},
		{ID: CollectionUnsorted, Name: "Unsorted", IsSystem: true},
	}
}

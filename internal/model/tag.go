package model

// Tag represents a label that can be attached to bookmarks.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// NewTagParams holds parameters for creating a new Tag.
type NewTagParams struct {
	Name  string
	Color string
}

// NewTag creates a Tag with generated UUID.
func NewTag(params NewTagParams) Tag {
	return Tag{
		ID:    GenerateUUID(),
		Name:  params.Name,
		Color: params.Color,
	}
}

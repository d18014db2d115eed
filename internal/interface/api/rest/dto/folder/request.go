package folder

import "github.com/google/uuid"

type (
	CreateRequest struct {
		Name     string     `json:"name"`
		ParentID *uuid.UUID `json:"parent_id"`
	}
	// UpdateRequest renames and/or moves a folder; to_root moves it to the owner's root.
	UpdateRequest struct {
		Name     *string    `json:"name"`
		ParentID *uuid.UUID `json:"parent_id"`
		ToRoot   bool       `json:"to_root"`
	}
)

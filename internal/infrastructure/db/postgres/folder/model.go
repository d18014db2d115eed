package folder

import (
	"time"

	"github.com/google/uuid"
)

type (
	Folder struct {
		ID       uuid.UUID
		OwnerID  uuid.UUID
		ParentID *uuid.UUID
		Name     string
		Path     string

		CreatedAt time.Time

		Deleted   bool
		DeletedAt *time.Time
	}
	Folders []*Folder
)

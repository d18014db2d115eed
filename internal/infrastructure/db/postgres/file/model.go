package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	File struct {
		ID         uuid.UUID
		OwnerID    uuid.UUID
		FolderID   *uuid.UUID
		Name       string
		StoredName string
		SizeBytes  int64
		Hash       string
		MimeType   string
		Public     bool

		CreatedAt time.Time

		Deleted   bool
		DeletedAt *time.Time
	}
	Files []*File

	Release struct {
		OwnerID   uuid.UUID
		SizeBytes int64
	}
)

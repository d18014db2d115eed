package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	File struct {
		UUID      uuid.UUID  `json:"uuid"`
		OwnerID   uuid.UUID  `json:"owner_id"`
		FolderID  *uuid.UUID `json:"folder_id"`
		Name      string     `json:"name"`
		MimeType  string     `json:"mime_type"`
		SizeBytes uint64     `json:"size_bytes"`
		Size      string     `json:"size"`
		Hash      string     `json:"hash"`
		Public    bool       `json:"public"`
		CreatedAt time.Time  `json:"created_at"`
	}
	Files []File

	VisibilityRequest struct {
		Public *bool `json:"public"`
	}

	RenameRequest struct {
		Name          string `json:"name"`
		KeepExtension bool   `json:"keep_extension"`
	}
)

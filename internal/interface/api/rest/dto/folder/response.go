package folder

import (
	"time"

	"github.com/google/uuid"

	"filevault-api/internal/interface/api/rest/dto/file"
)

type (
	Permissions struct {
		View    bool `json:"view"`
		Edit    bool `json:"edit"`
		Delete  bool `json:"delete"`
		Reshare bool `json:"reshare"`
	}
	Folder struct {
		UUID      uuid.UUID  `json:"uuid"`
		OwnerID   uuid.UUID  `json:"owner_id"`
		ParentID  *uuid.UUID `json:"parent_id"`
		Name      string     `json:"name"`
		Path      string     `json:"path"`
		CreatedAt time.Time  `json:"created_at"`
	}
	Folders []Folder

	Content struct {
		Folder      *Folder      `json:"folder"`
		Owner       bool         `json:"owner"`
		Permissions *Permissions `json:"permissions,omitempty"`
		Folders     Folders      `json:"folders"`
		Files       file.Files   `json:"files"`
	}
	ResponseData struct {
		Data Folders `json:"data"`
	}
)

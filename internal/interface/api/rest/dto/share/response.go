package share

import (
	"time"

	"github.com/google/uuid"

	"filevault-api/internal/interface/api/rest/dto/folder"
)

type (
	Token struct {
		UUID        uuid.UUID  `json:"uuid"`
		FileID      uuid.UUID  `json:"file_id"`
		Token       string     `json:"token"`
		ExpiresAt   *time.Time `json:"expires_at"`
		MaxAccesses *int64     `json:"max_accesses"`
		Accesses    int64      `json:"accesses"`
		CreatedAt   time.Time  `json:"created_at"`
	}
	Grant struct {
		UUID        uuid.UUID          `json:"uuid"`
		FolderID    uuid.UUID          `json:"folder_id"`
		OwnerID     uuid.UUID          `json:"owner_id"`
		GranteeID   uuid.UUID          `json:"grantee_id"`
		Permissions folder.Permissions `json:"permissions"`
		CreatedAt   time.Time          `json:"created_at"`
	}
)

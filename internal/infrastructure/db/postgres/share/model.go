package share

import (
	"time"

	"github.com/google/uuid"
)

type (
	FileShare struct {
		ID          uuid.UUID
		FileID      uuid.UUID
		Token       string
		CreatedBy   uuid.UUID
		ExpiresAt   *time.Time
		MaxAccesses *int64
		Accesses    int64
		Active      bool

		CreatedAt time.Time
	}

	FolderGrant struct {
		ID         uuid.UUID
		FolderID   uuid.UUID
		OwnerID    uuid.UUID
		GranteeID  uuid.UUID
		CanEdit    bool
		CanDelete  bool
		CanReshare bool
		Active     bool

		CreatedAt time.Time
	}
	FolderGrants []*FolderGrant
)

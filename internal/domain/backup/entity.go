package backup

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

const KindManifest = "manifest"

type (
	Backup struct {
		UUID      uuid.UUID
		UserID    *uuid.UUID
		Kind      string
		Location  string
		SizeBytes uint64
		Status    Status
		CreatedAt time.Time
	}

	// ManifestEntry is one live file in a backup manifest.
	ManifestEntry struct {
		FileID     uuid.UUID `json:"file_id"`
		OwnerID    uuid.UUID `json:"owner_id"`
		StoredName string    `json:"stored_name"`
		SizeBytes  uint64    `json:"size_bytes"`
		Hash       string    `json:"hash"`
	}

	Backups []*Backup

	// Repository scopes reads and deletes to the user who requested the backup; scheduled runs
	// carry no user.
	Repository interface {
		CreateBackup(ctx context.Context, req *Backup) (*Backup, error)
		FetchUserBackups(ctx context.Context, userID uuid.UUID) (Backups, error)
		FetchUserBackup(ctx context.Context, id, userID uuid.UUID) (*Backup, error)
		DeleteUserBackup(ctx context.Context, id, userID uuid.UUID) (bool, error)
	}
)

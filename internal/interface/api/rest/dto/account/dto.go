package account

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	domain "filevault-api/internal/domain/user"
)

type (
	// Request may override the name carried by the token.
	Request struct {
		Name string `json:"name"`
	}
	Account struct {
		UUID                uuid.UUID  `json:"uuid"`
		Email               string     `json:"email"`
		Name                string     `json:"name"`
		QuotaBytes          uint64     `json:"quota_bytes"`
		UsedBytes           uint64     `json:"used_bytes"`
		Quota               string     `json:"quota"`
		Used                string     `json:"used"`
		CreatedAt           time.Time  `json:"created_at"`
		DeletionRequested   bool       `json:"deletion_requested"`
		DeletionRequestedAt *time.Time `json:"deletion_requested_at,omitempty"`
	}
)

func ToResponseAccount(u domain.User) Account {
	return Account{
		UUID:                u.UUID,
		Email:               u.Email,
		Name:                u.Name,
		QuotaBytes:          u.QuotaBytes,
		UsedBytes:           u.UsedBytes,
		Quota:               humanize.IBytes(u.QuotaBytes),
		Used:                humanize.IBytes(u.UsedBytes),
		CreatedAt:           u.CreatedAt,
		DeletionRequested:   u.DeletionRequested,
		DeletionRequestedAt: u.DeletionRequestedAt,
	}
}

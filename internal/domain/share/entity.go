package share

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"filevault-api/internal/domain/access"
)

// TokenStatus is why a token share can or cannot be resolved right now.
type TokenStatus int

const (
	TokenUsable TokenStatus = iota
	TokenInactive
	TokenExpired
	TokenExhausted
)

type (
	UUID      = uuid.UUID
	FileShare struct {
		UUID        UUID
		FileID      UUID
		Token       string
		CreatedBy   UUID
		ExpiresAt   *time.Time
		MaxAccesses *int64
		Accesses    int64
		Active      bool

		CreatedAt time.Time
	}
	FileShares []*FileShare

	TokenOptions struct {
		ExpiresAt   *time.Time
		MaxAccesses *int64
	}

	FolderGrant struct {
		UUID        UUID
		FolderID    UUID
		OwnerID     UUID
		GranteeID   UUID
		Permissions access.Permissions
		Active      bool

		CreatedAt time.Time
	}
	FolderGrants []*FolderGrant
)

// Status checks the terminal conditions in order: inactive, expired, exhausted.
func (s *FileShare) Status(now time.Time) TokenStatus {
	switch {
	case !s.Active:
		return TokenInactive
	case s.ExpiresAt != nil && !now.Before(*s.ExpiresAt):
		return TokenExpired
	case s.MaxAccesses != nil && s.Accesses >= *s.MaxAccesses:
		return TokenExhausted
	}
	return TokenUsable
}

// ErrDuplicateGrant is returned by stores enforcing one active grant per (folder, grantee).
var ErrDuplicateGrant = errors.New("active grant already exists")

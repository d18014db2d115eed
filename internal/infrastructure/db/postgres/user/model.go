package user

import (
	"time"

	"github.com/google/uuid"
)

type (
	User struct {
		ID         uuid.UUID
		Email      string
		Name       string
		QuotaBytes int64
		UsedBytes  int64

		CreatedAt time.Time

		DeletionRequested   bool
		DeletionRequestedAt *time.Time

		TermsVersion    string
		TermsAcceptedAt *time.Time
	}
	Users []*User
)

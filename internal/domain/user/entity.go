package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEmailTaken is returned by stores enforcing case-insensitive unique emails.
var ErrEmailTaken = errors.New("email already registered")

type (
	UUID = uuid.UUID
	User struct {
		UUID       UUID
		Email      string
		Name       string
		QuotaBytes uint64
		UsedBytes  uint64

		CreatedAt time.Time

		DeletionRequested   bool
		DeletionRequestedAt *time.Time

		// TermsVersion is empty until the account accepts a version of the terms of use.
		TermsVersion    string
		TermsAcceptedAt *time.Time
	}
	Users []*User
)

// AcceptedTerms reports whether the account accepted exactly this version.
func (u *User) AcceptedTerms(version string) bool {
	return u != nil && u.TermsVersion != "" && u.TermsVersion == version
}

// Active reports whether the account can act or receive grants.
func (u *User) Active() bool { return u != nil && !u.DeletionRequested }

// Fits reports whether size more bytes stay within the quota.
func (u *User) Fits(size uint64) bool {
	if u.UsedBytes > u.QuotaBytes {
		return false
	}
	return size <= u.QuotaBytes-u.UsedBytes
}

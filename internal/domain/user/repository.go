package user

import (
	"context"
	"time"
)

type Repository interface {
	FetchUserByID(ctx context.Context, id UUID) (*User, error)
	FetchUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, req User) (*User, error)
	LockUser(ctx context.Context, id UUID) (*User, error)
	AddUsedBytes(ctx context.Context, id UUID, delta int64) error
	MarkDeletionRequested(ctx context.Context, id UUID, at time.Time) error
	SetTermsAcceptance(ctx context.Context, id UUID, version string, at *time.Time) error
	FetchPurgeableUsers(ctx context.Context, cutoff time.Time) ([]UUID, error)
	PurgeUser(ctx context.Context, id UUID, cutoff time.Time) (bool, error)
}

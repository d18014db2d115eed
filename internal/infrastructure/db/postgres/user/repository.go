package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"filevault-api/internal/domain/user"
	"filevault-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DBTX
}

func NewRepository(db postgres.DBTX) user.Repository {
	return &Repository{db: db}
}

func (r *Repository) scanOne(row pgx.Row) (*user.User, error) {
	u := new(User)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.QuotaBytes,
		&u.UsedBytes,

		&u.CreatedAt,

		&u.DeletionRequested,
		&u.DeletionRequestedAt,

		&u.TermsVersion,
		&u.TermsAcceptedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(u), nil
}

func (r *Repository) FetchUserByID(ctx context.Context, id user.UUID) (*user.User, error) {
	return r.scanOne(r.db.QueryRow(ctx, SelectUserByID, id))
}

func (r *Repository) FetchUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.scanOne(r.db.QueryRow(ctx, SelectUserByEmail, email))
}

func (r *Repository) LockUser(ctx context.Context, id user.UUID) (*user.User, error) {
	return r.scanOne(r.db.QueryRow(ctx, LockUserByID, id))
}

func (r *Repository) CreateUser(ctx context.Context, req user.User) (*user.User, error) {
	u, err := r.scanOne(r.db.QueryRow(ctx, InsertUser, req.UUID, req.Email, req.Name, int64(req.QuotaBytes)))
	if err != nil {
		if postgres.IsPgUniqueViolation(err) {
			return nil, user.ErrEmailTaken
		}
		return nil, err
	}

	return u, nil
}

func (r *Repository) AddUsedBytes(ctx context.Context, id user.UUID, delta int64) error {
	_, err := r.db.Exec(ctx, AddUsedBytes, id, delta)
	return err
}

func (r *Repository) MarkDeletionRequested(ctx context.Context, id user.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, MarkDeletionRequested, id, at)
	return err
}

func (r *Repository) FetchPurgeableUsers(ctx context.Context, cutoff time.Time) ([]user.UUID, error) {
	return postgres.CollectIDs(ctx, r.db, SelectPurgeableUsers, cutoff)
}

func (r *Repository) PurgeUser(ctx context.Context, id user.UUID, cutoff time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, DeletePurgeableUser, id, cutoff)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (r *Repository) SetTermsAcceptance(ctx context.Context, id user.UUID, version string, at *time.Time) error {
	_, err := r.db.Exec(ctx, SetTermsAcceptance, id, version, at)
	return err
}

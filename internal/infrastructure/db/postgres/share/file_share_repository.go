package share

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"filevault-api/internal/domain/share"
	"filevault-api/internal/infrastructure/db/postgres"
)

type FileShareRepository struct {
	db postgres.DBTX
}

func NewFileShareRepository(db postgres.DBTX) share.FileShareRepository {
	return &FileShareRepository{db: db}
}

func (r *FileShareRepository) scanOne(row pgx.Row) (*share.FileShare, error) {
	s := new(FileShare)
	err := row.Scan(
		&s.ID,
		&s.FileID,
		&s.Token,
		&s.CreatedBy,
		&s.ExpiresAt,
		&s.MaxAccesses,
		&s.Accesses,
		&s.Active,

		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromFileShareModel(s), nil
}

func (r *FileShareRepository) CreateFileShare(ctx context.Context, req *share.FileShare) (*share.FileShare, error) {
	return r.scanOne(r.db.QueryRow(
		ctx,
		InsertFileShare,
		req.FileID, req.Token, req.CreatedBy, req.ExpiresAt, req.MaxAccesses, req.Active, req.CreatedAt,
	))
}

func (r *FileShareRepository) FetchFileShareByToken(ctx context.Context, token string) (*share.FileShare, error) {
	return r.scanOne(r.db.QueryRow(ctx, SelectFileShareByToken, token))
}

func (r *FileShareRepository) ConsumeFileShare(ctx context.Context, token string, now time.Time) (*share.FileShare, error) {
	return r.scanOne(r.db.QueryRow(ctx, ConsumeFileShare, token, now))
}

func (r *FileShareRepository) DeactivateOwnerShares(ctx context.Context, ownerID share.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, DeactivateOwnerShares, ownerID)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

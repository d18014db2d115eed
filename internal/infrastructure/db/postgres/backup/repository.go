package backup

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"filevault-api/internal/domain/backup"
	"filevault-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DBTX
}

func NewRepository(db postgres.DBTX) backup.Repository {
	return &Repository{db: db}
}

func scanBackup(row pgx.Row) (*backup.Backup, error) {
	var (
		b         backup.Backup
		sizeBytes int64
		status    string
		createdAt time.Time
	)
	if err := row.Scan(&b.UUID, &b.UserID, &b.Kind, &b.Location, &sizeBytes, &status, &createdAt); err != nil {
		return nil, err
	}
	b.SizeBytes = uint64(max(sizeBytes, 0))
	b.Status = backup.Status(status)
	b.CreatedAt = createdAt

	return &b, nil
}

func (r *Repository) CreateBackup(ctx context.Context, req *backup.Backup) (*backup.Backup, error) {
	return scanBackup(r.db.QueryRow(ctx, InsertBackup,
		req.UserID, req.Kind, req.Location, int64(req.SizeBytes), string(req.Status), req.CreatedAt,
	))
}

func (r *Repository) FetchUserBackups(ctx context.Context, userID uuid.UUID) (backup.Backups, error) {
	rows, err := r.db.Query(ctx, SelectUserBackups, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(backup.Backups, 0)
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}

	return out, rows.Err()
}

func (r *Repository) FetchUserBackup(ctx context.Context, id, userID uuid.UUID) (*backup.Backup, error) {
	b, err := scanBackup(r.db.QueryRow(ctx, SelectUserBackup, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *Repository) DeleteUserBackup(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, DeleteUserBackup, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

package file

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"filevault-api/internal/domain/file"
	"filevault-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DBTX
}

func NewRepository(db postgres.DBTX) file.Repository {
	return &Repository{db: db}
}

func scanFile(row pgx.Row) (*File, error) {
	f := new(File)
	err := row.Scan(
		&f.ID,
		&f.OwnerID,
		&f.FolderID,
		&f.Name,
		&f.StoredName,
		&f.SizeBytes,
		&f.Hash,
		&f.MimeType,
		&f.Public,

		&f.CreatedAt,

		&f.Deleted,
		&f.DeletedAt,
	)
	return f, err
}

func (r *Repository) fetchOne(ctx context.Context, sql string, args ...any) (*file.File, error) {
	f, err := scanFile(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(f), nil
}

func (r *Repository) fetchMany(ctx context.Context, sql string, args ...any) (file.Files, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fs := Files{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(fs), nil
}

func (r *Repository) releases(ctx context.Context, sql string, args ...any) (file.Releases, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rs []Release
	for rows.Next() {
		var rel Release
		if err = rows.Scan(&rel.OwnerID, &rel.SizeBytes); err != nil {
			return nil, err
		}
		rs = append(rs, rel)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBReleases(rs), nil
}

func (r *Repository) FetchFileByID(ctx context.Context, id file.UUID) (*file.File, error) {
	return r.fetchOne(ctx, SelectFileByID, id)
}

func (r *Repository) LockFile(ctx context.Context, id file.UUID) (*file.File, error) {
	return r.fetchOne(ctx, LockFileByID, id)
}

func (r *Repository) FetchFolderFiles(ctx context.Context, folderID file.UUID) (file.Files, error) {
	return r.fetchMany(ctx, SelectFolderFiles, folderID)
}

func (r *Repository) FetchRootFiles(ctx context.Context, ownerID file.UUID) (file.Files, error) {
	return r.fetchMany(ctx, SelectRootFiles, ownerID)
}

func (r *Repository) FetchActiveFiles(ctx context.Context) (file.Files, error) {
	return r.fetchMany(ctx, SelectActiveFiles)
}

func (r *Repository) ExistsActiveName(ctx context.Context, ownerID file.UUID, folderID *file.UUID, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, ExistsActiveName, ownerID, folderID, name).Scan(&exists)
	return exists, err
}

func (r *Repository) CreateFile(ctx context.Context, req *file.File) (*file.File, error) {
	f, err := scanFile(r.db.QueryRow(
		ctx,
		InsertFile,
		req.OwnerID, req.FolderID, req.Name, req.StoredName, int64(req.SizeBytes), req.Hash, req.MimeType, req.Public, req.CreatedAt,
	))
	if err != nil {
		if postgres.IsPgUniqueViolation(err) {
			return nil, file.ErrDuplicateName
		}
		return nil, err
	}

	return fromDBModel(f), nil
}

func (r *Repository) UpdateVisibility(ctx context.Context, id file.UUID, public bool) error {
	_, err := r.db.Exec(ctx, UpdateVisibility, id, public)
	return err
}

func (r *Repository) Rename(ctx context.Context, id file.UUID, name string) error {
	_, err := r.db.Exec(ctx, RenameFile, id, name)
	if postgres.IsPgUniqueViolation(err) {
		return file.ErrDuplicateName
	}
	return err
}

func (r *Repository) MarkDeleted(ctx context.Context, id file.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, MarkDeleted, id, at)
	return err
}

func (r *Repository) MarkFolderFilesDeleted(ctx context.Context, folderID file.UUID, at time.Time) (file.Releases, error) {
	return r.releases(ctx, MarkFolderFilesDeleted, folderID, at)
}

func (r *Repository) MarkOwnerFilesDeleted(ctx context.Context, ownerID file.UUID, at time.Time) (file.Releases, error) {
	return r.releases(ctx, MarkOwnerFilesDeleted, ownerID, at)
}

func (r *Repository) FetchPurgeableFiles(ctx context.Context, cutoff time.Time) ([]file.UUID, error) {
	return postgres.CollectIDs(ctx, r.db, SelectPurgeableFiles, cutoff)
}

func (r *Repository) PurgeFile(ctx context.Context, id file.UUID, cutoff time.Time) (string, bool, error) {
	var storedName string
	if err := r.db.QueryRow(ctx, DeletePurgeableFile, id, cutoff).Scan(&storedName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}

	return storedName, true, nil
}

func (r *Repository) PurgeFolderFiles(ctx context.Context, folderID file.UUID) ([]string, error) {
	return postgres.CollectStrings(ctx, r.db, DeleteFolderFiles, folderID)
}

func (r *Repository) PurgeOwnerFiles(ctx context.Context, ownerID file.UUID) ([]string, error) {
	return postgres.CollectStrings(ctx, r.db, DeleteOwnerFiles, ownerID)
}

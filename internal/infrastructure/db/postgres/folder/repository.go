package folder

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"filevault-api/internal/domain/folder"
	"filevault-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DBTX
}

func NewRepository(db postgres.DBTX) folder.Repository {
	return &Repository{db: db}
}

func scanFolder(row pgx.Row) (*Folder, error) {
	f := new(Folder)
	err := row.Scan(
		&f.ID,
		&f.OwnerID,
		&f.ParentID,
		&f.Name,
		&f.Path,

		&f.CreatedAt,

		&f.Deleted,
		&f.DeletedAt,
	)
	return f, err
}

func (r *Repository) fetchOne(ctx context.Context, sql string, args ...any) (*folder.Folder, error) {
	f, err := scanFolder(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(f), nil
}

func (r *Repository) fetchMany(ctx context.Context, sql string, args ...any) (folder.Folders, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fs := Folders{}
	for rows.Next() {
		f, err := scanFolder(rows)
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

func (r *Repository) FetchFolderByID(ctx context.Context, id folder.UUID) (*folder.Folder, error) {
	return r.fetchOne(ctx, SelectFolderByID, id)
}

func (r *Repository) LockFolder(ctx context.Context, id folder.UUID) (*folder.Folder, error) {
	return r.fetchOne(ctx, LockFolderByID, id)
}

func (r *Repository) LockFolderShared(ctx context.Context, id folder.UUID) (*folder.Folder, error) {
	return r.fetchOne(ctx, LockFolderByIDShared, id)
}

func (r *Repository) FetchRootFolders(ctx context.Context, ownerID folder.UUID) (folder.Folders, error) {
	return r.fetchMany(ctx, SelectRootFolders, ownerID)
}

func (r *Repository) FetchChildFolders(ctx context.Context, parentID folder.UUID, withDeleted bool) (folder.Folders, error) {
	return r.fetchMany(ctx, SelectChildFolders, parentID, withDeleted)
}

func (r *Repository) FetchOwnerFolders(ctx context.Context, ownerID folder.UUID) (folder.Folders, error) {
	return r.fetchMany(ctx, SelectOwnerFolders, ownerID)
}

func (r *Repository) ExistsActiveName(
	ctx context.Context,
	ownerID folder.UUID,
	parentID *folder.UUID,
	name string,
	exclude *folder.UUID,
) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, ExistsActiveName, ownerID, parentID, name, exclude).Scan(&exists)
	return exists, err
}

func (r *Repository) CreateFolder(ctx context.Context, req *folder.Folder) (*folder.Folder, error) {
	f, err := scanFolder(r.db.QueryRow(ctx, InsertFolder, req.OwnerID, req.ParentID, req.Name, req.Path, req.CreatedAt))
	if err != nil {
		if postgres.IsPgUniqueViolation(err) {
			return nil, folder.ErrDuplicateName
		}
		return nil, err
	}

	return fromDBModel(f), nil
}

func (r *Repository) UpdatePlacement(ctx context.Context, id folder.UUID, parentID *folder.UUID, name, path string) error {
	if _, err := r.db.Exec(ctx, UpdatePlacement, id, parentID, name, path); err != nil {
		if postgres.IsPgUniqueViolation(err) {
			return folder.ErrDuplicateName
		}
		return err
	}

	return nil
}

func (r *Repository) UpdatePath(ctx context.Context, id folder.UUID, path string) error {
	_, err := r.db.Exec(ctx, UpdatePath, id, path)
	return err
}

func (r *Repository) MarkDeleted(ctx context.Context, id folder.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, MarkDeleted, id, at)
	return err
}

func (r *Repository) FetchPurgeableFolders(ctx context.Context, cutoff time.Time) ([]folder.UUID, error) {
	return postgres.CollectIDs(ctx, r.db, SelectPurgeableFolders, cutoff)
}

func (r *Repository) PurgeFolder(ctx context.Context, id folder.UUID, cutoff time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, DeletePurgeableFolder, id, cutoff)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

package file

import (
	"context"
	"time"
)

type Repository interface {
	FetchFileByID(ctx context.Context, id UUID) (*File, error)
	FetchFolderFiles(ctx context.Context, folderID UUID) (Files, error)
	FetchRootFiles(ctx context.Context, ownerID UUID) (Files, error)
	FetchActiveFiles(ctx context.Context) (Files, error)
	ExistsActiveName(ctx context.Context, ownerID UUID, folderID *UUID, name string) (bool, error)
	CreateFile(ctx context.Context, req *File) (*File, error)
	UpdateVisibility(ctx context.Context, id UUID, public bool) error
	Rename(ctx context.Context, id UUID, name string) error

	LockFile(ctx context.Context, id UUID) (*File, error)
	MarkDeleted(ctx context.Context, id UUID, at time.Time) error
	MarkFolderFilesDeleted(ctx context.Context, folderID UUID, at time.Time) (Releases, error)
	MarkOwnerFilesDeleted(ctx context.Context, ownerID UUID, at time.Time) (Releases, error)

	FetchPurgeableFiles(ctx context.Context, cutoff time.Time) ([]UUID, error)
	PurgeFile(ctx context.Context, id UUID, cutoff time.Time) (string, bool, error)
	PurgeFolderFiles(ctx context.Context, folderID UUID) ([]string, error)
	PurgeOwnerFiles(ctx context.Context, ownerID UUID) ([]string, error)
}

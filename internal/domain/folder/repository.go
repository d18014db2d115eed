package folder

import (
	"context"
	"time"
)

type Repository interface {
	FetchFolderByID(ctx context.Context, id UUID) (*Folder, error)
	FetchRootFolders(ctx context.Context, ownerID UUID) (Folders, error)
	FetchChildFolders(ctx context.Context, parentID UUID, withDeleted bool) (Folders, error)
	FetchOwnerFolders(ctx context.Context, ownerID UUID) (Folders, error)
	ExistsActiveName(ctx context.Context, ownerID UUID, parentID *UUID, name string, exclude *UUID) (bool, error)
	CreateFolder(ctx context.Context, req *Folder) (*Folder, error)

	LockFolder(ctx context.Context, id UUID) (*Folder, error)
	LockFolderShared(ctx context.Context, id UUID) (*Folder, error)
	UpdatePlacement(ctx context.Context, id UUID, parentID *UUID, name, path string) error
	UpdatePath(ctx context.Context, id UUID, path string) error
	MarkDeleted(ctx context.Context, id UUID, at time.Time) error

	FetchPurgeableFolders(ctx context.Context, cutoff time.Time) ([]UUID, error)
	PurgeFolder(ctx context.Context, id UUID, cutoff time.Time) (bool, error)
}

package share

import (
	"context"
	"time"
)

type FileShareRepository interface {
	CreateFileShare(ctx context.Context, req *FileShare) (*FileShare, error)
	FetchFileShareByToken(ctx context.Context, token string) (*FileShare, error)
	// ConsumeFileShare increments the access counter only if the share is usable at now and
	// its file is not deleted. It returns nil when nothing was consumed.
	ConsumeFileShare(ctx context.Context, token string, now time.Time) (*FileShare, error)
	DeactivateOwnerShares(ctx context.Context, ownerID UUID) (int64, error)
}

type FolderGrantRepository interface {
	CreateGrant(ctx context.Context, req *FolderGrant) (*FolderGrant, error)
	// FetchActiveGrant ignores grants whose grantee requested account deletion.
	FetchActiveGrant(ctx context.Context, folderID, granteeID UUID) (*FolderGrant, error)
	FetchGranteeGrants(ctx context.Context, granteeID UUID) (FolderGrants, error)
	DeactivateGrant(ctx context.Context, id UUID) error
	DeactivateUserGrants(ctx context.Context, userID UUID) (int64, error)
}

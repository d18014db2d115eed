package ports

import (
	"context"

	"filevault-api/internal/domain/file"
	"filevault-api/internal/domain/folder"
	"filevault-api/internal/domain/share"
	"filevault-api/internal/domain/user"
)

// Store groups the entity repositories bound to one connection or transaction.
type Store interface {
	Users() user.Repository
	Folders() folder.Repository
	Files() file.Repository
	FileShares() share.FileShareRepository
	FolderGrants() share.FolderGrantRepository
}

// TxManager runs fn inside a single transaction; fn's store is bound to it. A non-nil error
// from fn rolls everything back.
type TxManager interface {
	Store
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

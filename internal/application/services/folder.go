package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/access"
	"filevault-api/internal/domain/audit"
	"filevault-api/internal/domain/file"
	"filevault-api/internal/domain/folder"
)

type FolderService struct {
	tm        ports.TxManager
	lifecycle ports.LifecycleService
	sharing   ports.SharingService
	clock     ports.Clock
	audit     ports.AuditSink
	mCounter  *prometheus.CounterVec
}

func NewFolderService(
	tm ports.TxManager,
	lifecycle ports.LifecycleService,
	sharing ports.SharingService,
	clock ports.Clock,
	auditSink ports.AuditSink,
	mCounter *prometheus.CounterVec,
) ports.FolderService {
	return &FolderService{
		tm:        tm,
		lifecycle: lifecycle,
		sharing:   sharing,
		clock:     clock,
		audit:     auditSink,
		mCounter:  mCounter,
	}
}

// CreateFolder creates a folder at the actor's root or under parentID. Folders created inside a
// shared folder belong to the tree's owner, so a tree never mixes owners.
func (fs *FolderService) CreateFolder(
	ctx context.Context,
	actorID uuid.UUID,
	parentID *uuid.UUID,
	name string,
) (*folder.Folder, error) {
	name, err := folder.NormalizeName(name)
	if err != nil {
		return nil, ErrInvalidName
	}

	var out *folder.Folder
	err = fs.tm.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		actor, err := tx.Users().FetchUserByID(ctx, actorID)
		if err != nil {
			return err
		}
		if !actor.Active() {
			return ErrNotFoundOrForbidden
		}

		owner := actorID
		parentPath := ""
		if parentID != nil {
			parent, err := tx.Folders().LockFolderShared(ctx, *parentID)
			if err != nil {
				return err
			}
			if parent == nil || parent.Deleted {
				return ErrNotFoundOrForbidden
			}
			res, err := resolveFolderAccess(ctx, tx, actorID, parent.UUID)
			if err != nil {
				return err
			}
			if !res.Allows(access.NeedEdit) {
				return ErrNotFoundOrForbidden
			}
			owner = parent.OwnerID
			parentPath = parent.Path
		}

		taken, err := tx.Folders().ExistsActiveName(ctx, owner, parentID, name, nil)
		if err != nil {
			return err
		}
		if taken {
			return ErrNameCollision
		}

		out, err = tx.Folders().CreateFolder(ctx, &folder.Folder{
			OwnerID:   owner,
			ParentID:  parentID,
			Name:      name,
			Path:      folder.ChildPath(parentPath, name),
			CreatedAt: fs.clock.Now(),
		})
		if errors.Is(err, folder.ErrDuplicateName) {
			return ErrNameCollision
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	fs.audit.Emit(audit.New(fs.clock.Now(), &actorID, audit.CategoryFolder, audit.SeverityInfo, "folder_created", out.Path).
		With("folder_id", out.UUID.String()))
	fs.mCounter.WithLabelValues("folder_created_total").Inc()

	return out, nil
}

// ListFolder returns the live content of a folder, or the actor's root view when folderID is
// nil: own root folders, top-most folders shared with the actor and own root files.
func (fs *FolderService) ListFolder(
	ctx context.Context,
	actorID uuid.UUID,
	folderID *uuid.UUID,
) (*ports.FolderContent, error) {
	if folderID == nil {
		return fs.listRoot(ctx, actorID)
	}

	res, err := resolveFolderAccess(ctx, fs.tm, actorID, *folderID)
	if err != nil {
		return nil, err
	}
	if !res.Allows(access.NeedView) {
		return nil, ErrNotFoundOrForbidden
	}

	f, err := fs.tm.Folders().FetchFolderByID(ctx, *folderID)
	if err != nil {
		return nil, err
	}
	if f == nil || f.Deleted {
		return nil, ErrNotFoundOrForbidden
	}

	children, err := fs.tm.Folders().FetchChildFolders(ctx, f.UUID, false)
	if err != nil {
		return nil, err
	}
	files, err := fs.tm.Files().FetchFolderFiles(ctx, f.UUID)
	if err != nil {
		return nil, err
	}

	return &ports.FolderContent{
		Folder:  f,
		Access:  res,
		Folders: children,
		Files:   files,
	}, nil
}

func (fs *FolderService) listRoot(ctx context.Context, actorID uuid.UUID) (*ports.FolderContent, error) {
	actor, err := fs.tm.Users().FetchUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Active() {
		return nil, ErrNotFoundOrForbidden
	}

	own, err := fs.tm.Folders().FetchRootFolders(ctx, actorID)
	if err != nil {
		return nil, err
	}
	shared, err := fs.sharing.SharedWithMe(ctx, actorID)
	if err != nil {
		return nil, err
	}
	files, err := fs.tm.Files().FetchRootFiles(ctx, actorID)
	if err != nil {
		return nil, err
	}

	folders := make(folder.Folders, 0, len(own)+len(shared))
	folders = append(folders, own...)
	folders = append(folders, shared...)

	return &ports.FolderContent{
		Access:  access.Owned(),
		Folders: folders,
		Files:   nonNilFiles(files),
	}, nil
}

func (fs *FolderService) RenameOrMove(
	ctx context.Context,
	actorID, folderID uuid.UUID,
	to folder.Placement,
) (*folder.Folder, error) {
	res, err := resolveFolderAccess(ctx, fs.tm, actorID, folderID)
	if err != nil {
		return nil, err
	}
	if !res.Allows(access.NeedEdit) {
		return nil, ErrNotFoundOrForbidden
	}
	// the owner's root is outside any grant
	if to.ToRoot && !res.Owner {
		return nil, ErrNotFoundOrForbidden
	}
	if to.ParentID != nil && !to.ToRoot {
		target, err := resolveFolderAccess(ctx, fs.tm, actorID, *to.ParentID)
		if err != nil {
			return nil, err
		}
		if !target.Allows(access.NeedEdit) {
			return nil, ErrNotFoundOrForbidden
		}
	}

	return fs.lifecycle.RenameOrMoveFolder(ctx, folderID, to)
}

func (fs *FolderService) DeleteFolder(ctx context.Context, actorID, folderID uuid.UUID) error {
	res, err := resolveFolderAccess(ctx, fs.tm, actorID, folderID)
	if err != nil {
		return err
	}
	if !res.Allows(access.NeedDelete) {
		return ErrNotFoundOrForbidden
	}

	return fs.lifecycle.SoftDeleteFolder(ctx, folderID)
}

func nonNilFiles(fs file.Files) file.Files {
	if fs == nil {
		return file.Files{}
	}
	return fs
}

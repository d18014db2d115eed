package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/audit"
	"filevault-api/internal/domain/file"
	"filevault-api/internal/domain/folder"
)

const tracerName = "filevault-api/lifecycle"

type LifecycleService struct {
	tm       ports.TxManager
	blobs    ports.BlobStore
	clock    ports.Clock
	audit    ports.AuditSink
	logger   *zap.Logger
	mCounter *prometheus.CounterVec
}

func NewLifecycleService(
	tm ports.TxManager,
	blobs ports.BlobStore,
	clock ports.Clock,
	auditSink ports.AuditSink,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.LifecycleService {
	return &LifecycleService{
		tm:       tm,
		blobs:    blobs,
		clock:    clock,
		audit:    auditSink,
		logger:   logger,
		mCounter: mCounter,
	}
}

// SoftDeleteFolder marks the folder and its whole live subtree deleted with one timestamp and
// releases the quota of every file in it. All or nothing.
func (ls *LifecycleService) SoftDeleteFolder(ctx context.Context, folderID uuid.UUID) error {
	now := ls.clock.Now()
	var root *folder.Folder
	err := ls.tm.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		var err error
		root, err = tx.Folders().LockFolder(ctx, folderID)
		if err != nil {
			return err
		}
		if root == nil {
			return ErrNotFoundOrForbidden
		}
		if root.Deleted {
			return ErrInvalidTransition
		}

		released, err := cascadeDelete(ctx, tx, root, now, make(map[uuid.UUID]struct{}))
		if err != nil {
			return err
		}
		return releaseQuota(ctx, tx, released)
	})
	if err != nil {
		return err
	}

	ls.audit.Emit(audit.New(now, &root.OwnerID, audit.CategoryFolder, audit.SeverityInfo, "folder_deleted", root.Path).
		With("folder_id", folderID.String()))
	ls.mCounter.WithLabelValues("folder_soft_deleted_total").Inc()

	return nil
}

func (ls *LifecycleService) SoftDeleteFile(ctx context.Context, fileID uuid.UUID) error {
	now := ls.clock.Now()
	var f *file.File
	err := ls.tm.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		var err error
		f, err = tx.Files().LockFile(ctx, fileID)
		if err != nil {
			return err
		}
		if f == nil {
			return ErrNotFoundOrForbidden
		}
		if f.Deleted {
			return ErrInvalidTransition
		}

		if err := tx.Files().MarkDeleted(ctx, fileID, now); err != nil {
			return err
		}
		return tx.Users().AddUsedBytes(ctx, f.OwnerID, -int64(f.SizeBytes))
	})
	if err != nil {
		return err
	}

	ls.audit.Emit(audit.New(now, &f.OwnerID, audit.CategoryFile, audit.SeverityInfo, "file_deleted", f.Name).
		With("file_id", fileID.String()))
	ls.mCounter.WithLabelValues("file_soft_deleted_total").Inc()

	return nil
}

// RenameOrMoveFolder applies the placement and rewrites the materialized path of every
// descendant, deleted ones included, in the same transaction.
func (ls *LifecycleService) RenameOrMoveFolder(
	ctx context.Context,
	folderID uuid.UUID,
	to folder.Placement,
) (*folder.Folder, error) {
	var out *folder.Folder
	err := ls.tm.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		f, err := tx.Folders().LockFolder(ctx, folderID)
		if err != nil {
			return err
		}
		if f == nil {
			return ErrNotFoundOrForbidden
		}
		if f.Deleted {
			return ErrInvalidTransition
		}

		name := f.Name
		if to.Name != nil {
			if name, err = folder.NormalizeName(*to.Name); err != nil {
				return ErrInvalidName
			}
		}

		parentID := f.ParentID
		switch {
		case to.ToRoot:
			parentID = nil
		case to.ParentID != nil:
			parentID = to.ParentID
		}

		parentPath := ""
		if parentID != nil {
			parent, err := tx.Folders().LockFolderShared(ctx, *parentID)
			if err != nil {
				return err
			}
			if parent == nil || parent.Deleted || parent.OwnerID != f.OwnerID {
				return ErrNotFoundOrForbidden
			}
			cyclic, err := isDescendantOrSelf(ctx, tx, parent, f.UUID)
			if err != nil {
				return err
			}
			if cyclic {
				return ErrInvalidTransition
			}
			parentPath = parent.Path
		}

		taken, err := tx.Folders().ExistsActiveName(ctx, f.OwnerID, parentID, name, &f.UUID)
		if err != nil {
			return err
		}
		if taken {
			return ErrNameCollision
		}

		path := folder.ChildPath(parentPath, name)
		if err := tx.Folders().UpdatePlacement(ctx, f.UUID, parentID, name, path); err != nil {
			if errors.Is(err, folder.ErrDuplicateName) {
				return ErrNameCollision
			}
			return err
		}
		if path != f.Path {
			if err := rebuildPaths(ctx, tx, f.UUID, path); err != nil {
				return err
			}
		}

		moved := *f
		moved.ParentID = parentID
		moved.Name = name
		moved.Path = path
		out = &moved

		return nil
	})
	if err != nil {
		return nil, err
	}

	ls.audit.Emit(audit.New(ls.clock.Now(), &out.OwnerID, audit.CategoryFolder, audit.SeverityInfo, "folder_moved", out.Path).
		With("folder_id", folderID.String()))
	ls.mCounter.WithLabelValues("folder_moved_total").Inc()

	return out, nil
}

// RequestAccountDeletion schedules the account for purge: it soft-deletes everything the user
// owns and deactivates every share issued by the user and every grant given by or to them.
func (ls *LifecycleService) RequestAccountDeletion(ctx context.Context, userID uuid.UUID) error {
	now := ls.clock.Now()
	err := ls.tm.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		u, err := tx.Users().LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return ErrNotFoundOrForbidden
		}
		if u.DeletionRequested {
			return ErrInvalidTransition
		}

		if err := tx.Users().MarkDeletionRequested(ctx, userID, now); err != nil {
			return err
		}

		owned, err := tx.Folders().FetchOwnerFolders(ctx, userID)
		if err != nil {
			return err
		}
		var released file.Releases
		visited := make(map[uuid.UUID]struct{}, len(owned))
		for _, f := range owned {
			if _, seen := visited[f.UUID]; seen || f.Deleted {
				continue
			}
			rs, err := cascadeDelete(ctx, tx, f, now, visited)
			if err != nil {
				return err
			}
			released = append(released, rs...)
		}

		rs, err := tx.Files().MarkOwnerFilesDeleted(ctx, userID, now)
		if err != nil {
			return err
		}
		released = append(released, rs...)
		if err := releaseQuota(ctx, tx, released); err != nil {
			return err
		}

		if _, err := tx.FileShares().DeactivateOwnerShares(ctx, userID); err != nil {
			return err
		}
		_, err = tx.FolderGrants().DeactivateUserGrants(ctx, userID)
		return err
	})
	if err != nil {
		return err
	}

	ls.audit.Emit(audit.New(now, &userID, audit.CategoryAccount, audit.SeverityWarning, "account_deletion_requested", ""))
	ls.mCounter.WithLabelValues("account_deletion_requested_total").Inc()

	return nil
}

// PurgeExpired physically removes files, folders and users soft-deleted at or before
// now-retention. Every record is purged in its own transaction and the sweep stops between
// records once ctx is done. Payloads are removed after the owning transaction commits.
func (ls *LifecycleService) PurgeExpired(ctx context.Context, retention time.Duration) (int, error) {
	if retention < 0 {
		return 0, fmt.Errorf("negative retention window %s", retention)
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "lifecycle.PurgeExpired")
	defer span.End()

	cutoff := ls.clock.Now().Add(-retention)
	span.SetAttributes(attribute.String("cutoff", cutoff.UTC().Format(time.RFC3339)))

	purged := 0
	steps := []func(context.Context, time.Time) (int, error){
		ls.purgeFiles,
		ls.purgeFolders,
		ls.purgeUsers,
	}
	for _, step := range steps {
		n, err := step(ctx, cutoff)
		purged += n
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return purged, err
		}
	}

	span.SetAttributes(attribute.Int("purged", purged))
	ls.mCounter.WithLabelValues("purged_records_total").Add(float64(purged))
	if purged > 0 {
		ls.audit.Emit(audit.New(ls.clock.Now(), nil, audit.CategorySystem, audit.SeverityInfo, "purge_completed", "").
			With("purged", fmt.Sprint(purged)))
	}

	return purged, nil
}

func (ls *LifecycleService) purgeFiles(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := ls.tm.Files().FetchPurgeableFiles(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		var stored string
		var ok bool
		err := ls.tm.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
			var err error
			stored, ok, err = tx.Files().PurgeFile(ctx, id, cutoff)
			return err
		})
		if err != nil {
			ls.logger.Error("purge file", zap.String("file_id", id.String()), zap.Error(err))
			continue
		}
		if ok {
			n++
			ls.removeBlobs(stored)
		}
	}

	return n, nil
}

func (ls *LifecycleService) purgeFolders(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := ls.tm.Folders().FetchPurgeableFolders(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		var stored []string
		var ok bool
		err := ls.tm.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
			var err error
			if stored, err = tx.Files().PurgeFolderFiles(ctx, id); err != nil {
				return err
			}
			ok, err = tx.Folders().PurgeFolder(ctx, id, cutoff)
			return err
		})
		if err != nil {
			ls.logger.Error("purge folder", zap.String("folder_id", id.String()), zap.Error(err))
			continue
		}
		if ok {
			n++
			ls.removeBlobs(stored...)
		}
	}

	return n, nil
}

func (ls *LifecycleService) purgeUsers(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := ls.tm.Users().FetchPurgeableUsers(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		var stored []string
		var ok bool
		err := ls.tm.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
			var err error
			if stored, err = tx.Files().PurgeOwnerFiles(ctx, id); err != nil {
				return err
			}
			ok, err = tx.Users().PurgeUser(ctx, id, cutoff)
			return err
		})
		if err != nil {
			ls.logger.Error("purge user", zap.String("user_id", id.String()), zap.Error(err))
			continue
		}
		if ok {
			n++
			ls.removeBlobs(stored...)
		}
	}

	return n, nil
}

func (ls *LifecycleService) removeBlobs(keys ...string) {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if err := ls.blobs.Remove(context.Background(), k); err != nil {
			ls.logger.Warn("remove purged payload", zap.String("key", k), zap.Error(err))
		}
	}
}

// cascadeDelete marks root and every live descendant folder deleted, together with their live
// files. It uses an explicit stack; visited guards against malformed cyclic parents.
func cascadeDelete(
	ctx context.Context,
	tx ports.Store,
	root *folder.Folder,
	at time.Time,
	visited map[uuid.UUID]struct{},
) (file.Releases, error) {
	var released file.Releases
	stack := []uuid.UUID{root.UUID}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}

		if err := tx.Folders().MarkDeleted(ctx, id, at); err != nil {
			return nil, err
		}
		rs, err := tx.Files().MarkFolderFilesDeleted(ctx, id, at)
		if err != nil {
			return nil, err
		}
		released = append(released, rs...)

		children, err := tx.Folders().FetchChildFolders(ctx, id, false)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			stack = append(stack, c.UUID)
		}
	}

	return released, nil
}

// rebuildPaths rewrites every descendant path below rootID, which now lives at rootPath.
func rebuildPaths(ctx context.Context, tx ports.Store, rootID uuid.UUID, rootPath string) error {
	type pending struct {
		id   uuid.UUID
		path string
	}
	visited := map[uuid.UUID]struct{}{rootID: {}}
	stack := []pending{{id: rootID, path: rootPath}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := tx.Folders().FetchChildFolders(ctx, p.id, true)
		if err != nil {
			return err
		}
		for _, c := range children {
			if _, seen := visited[c.UUID]; seen {
				continue
			}
			visited[c.UUID] = struct{}{}

			path := folder.ChildPath(p.path, c.Name)
			if err := tx.Folders().UpdatePath(ctx, c.UUID, path); err != nil {
				return err
			}
			stack = append(stack, pending{id: c.UUID, path: path})
		}
	}

	return nil
}

// isDescendantOrSelf reports whether target is from or one of its ancestors.
func isDescendantOrSelf(ctx context.Context, st ports.Store, from *folder.Folder, target uuid.UUID) (bool, error) {
	visited := make(map[uuid.UUID]struct{})
	current := from
	for current != nil {
		if current.UUID == target {
			return true, nil
		}
		if _, seen := visited[current.UUID]; seen {
			return true, nil
		}
		visited[current.UUID] = struct{}{}
		if current.ParentID == nil {
			return false, nil
		}

		var err error
		current, err = st.Folders().FetchFolderByID(ctx, *current.ParentID)
		if err != nil {
			return false, err
		}
	}

	return false, nil
}

func releaseQuota(ctx context.Context, tx ports.Store, released file.Releases) error {
	for owner, size := range released.ByOwner() {
		if size == 0 {
			continue
		}
		if err := tx.Users().AddUsedBytes(ctx, owner, -int64(size)); err != nil {
			return err
		}
	}
	return nil
}

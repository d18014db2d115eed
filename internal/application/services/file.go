package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/access"
	"filevault-api/internal/domain/audit"
	"filevault-api/internal/domain/file"
)

type FileService struct {
	tm        ports.TxManager
	blobs     ports.BlobStore
	sharing   ports.SharingService
	lifecycle ports.LifecycleService
	clock     ports.Clock
	audit     ports.AuditSink
	logger    *zap.Logger
	mCounter  *prometheus.CounterVec
}

func NewFileService(
	tm ports.TxManager,
	blobs ports.BlobStore,
	sharing ports.SharingService,
	lifecycle ports.LifecycleService,
	clock ports.Clock,
	auditSink ports.AuditSink,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.FileService {
	return &FileService{
		tm:        tm,
		blobs:     blobs,
		sharing:   sharing,
		lifecycle: lifecycle,
		clock:     clock,
		audit:     auditSink,
		logger:    logger,
		mCounter:  mCounter,
	}
}

func (fs *FileService) DownloadFile(ctx context.Context, actorID, fileID uuid.UUID) (*file.File, []byte, error) {
	f, err := fs.tm.Files().FetchFileByID(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	res, err := resolveFileAccess(ctx, fs.tm, actorID, f)
	if err != nil {
		return nil, nil, err
	}
	if !res.Allows(access.NeedView) {
		return nil, nil, ErrNotFoundOrForbidden
	}

	content, err := fs.readVerified(ctx, f)
	if err != nil {
		return nil, nil, err
	}

	fs.mCounter.WithLabelValues("file_downloaded_total").Inc()

	return f, content, nil
}

// DownloadShared returns the file behind the token. An access is consumed only once the
// payload has been read and verified.
func (fs *FileService) DownloadShared(ctx context.Context, token string) (*file.File, []byte, error) {
	peek, err := fs.sharing.CheckToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	f, err := fs.tm.Files().FetchFileByID(ctx, peek.FileID)
	if err != nil {
		return nil, nil, err
	}
	if f == nil || f.Deleted {
		return nil, nil, ErrNotFoundOrForbidden
	}

	content, err := fs.readVerified(ctx, f)
	if err != nil {
		return nil, nil, err
	}

	s, err := fs.sharing.ResolveToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	fs.audit.Emit(audit.New(fs.clock.Now(), nil, audit.CategoryFile, audit.SeverityInfo, "shared_file_downloaded", f.Name).
		With("file_id", f.UUID.String()).
		With("share_id", s.UUID.String()))
	fs.mCounter.WithLabelValues("shared_file_downloaded_total").Inc()

	return f, content, nil
}

func (fs *FileService) SetVisibility(ctx context.Context, actorID, fileID uuid.UUID, public bool) (*file.File, error) {
	var out *file.File
	err := fs.tm.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		f, err := tx.Files().LockFile(ctx, fileID)
		if err != nil {
			return err
		}
		res, err := resolveFileAccess(ctx, tx, actorID, f)
		if err != nil {
			return err
		}
		if !res.Owner {
			return ErrNotFoundOrForbidden
		}

		if err := tx.Files().UpdateVisibility(ctx, fileID, public); err != nil {
			return err
		}
		f.Public = public
		out = f

		return nil
	})
	if err != nil {
		return nil, err
	}

	fs.audit.Emit(audit.New(fs.clock.Now(), &actorID, audit.CategoryFile, audit.SeverityInfo, "file_visibility_changed", out.Name).
		With("file_id", fileID.String()).
		With("public", fmt.Sprint(public)))

	return out, nil
}

// RenameFile gives a live file a new display name in the same folder. With keepExt a name
// without extension inherits the current one and a different extension is refused; otherwise
// the new extension must be allow-listed.
func (fs *FileService) RenameFile(ctx context.Context, actorID, fileID uuid.UUID, newName string, keepExt bool) (*file.File, error) {
	name := file.DisplayName(newName)
	if name == "" {
		return nil, ErrInvalidName
	}

	var (
		out     *file.File
		oldName string
	)
	err := fs.tm.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		f, err := tx.Files().LockFile(ctx, fileID)
		if err != nil {
			return err
		}
		res, err := resolveFileAccess(ctx, tx, actorID, f)
		if err != nil {
			return err
		}
		if !res.Allows(access.NeedEdit) {
			return ErrNotFoundOrForbidden
		}

		target := name
		current := file.Extension(f.Name)
		switch {
		case keepExt && file.Extension(target) == "":
			target += current
		case keepExt && file.Extension(target) != current:
			return ErrExtensionChanged
		case !file.ExtensionAllowed(target):
			return ErrExtensionNotAllowed
		}

		oldName, out = f.Name, f
		if target == f.Name {
			return nil
		}

		taken, err := tx.Files().ExistsActiveName(ctx, f.OwnerID, f.FolderID, target)
		if err != nil {
			return err
		}
		if taken {
			return ErrNameCollision
		}
		if err := tx.Files().Rename(ctx, fileID, target); errors.Is(err, file.ErrDuplicateName) {
			return ErrNameCollision
		} else if err != nil {
			return err
		}
		f.Name = target

		return nil
	})
	if err != nil {
		return nil, err
	}

	if oldName != out.Name {
		fs.audit.Emit(audit.New(fs.clock.Now(), &actorID, audit.CategoryFile, audit.SeverityInfo, "file_renamed", out.Name).
			With("file_id", fileID.String()).
			With("old_name", oldName))
		fs.mCounter.WithLabelValues("file_renamed_total").Inc()
	}

	return out, nil
}

// DeleteFile soft-deletes a file the actor owns or may delete through a folder grant.
func (fs *FileService) DeleteFile(ctx context.Context, actorID, fileID uuid.UUID) error {
	f, err := fs.tm.Files().FetchFileByID(ctx, fileID)
	if err != nil {
		return err
	}
	res, err := resolveFileAccess(ctx, fs.tm, actorID, f)
	if err != nil {
		return err
	}
	if !res.Allows(access.NeedDelete) {
		return ErrNotFoundOrForbidden
	}

	return fs.lifecycle.SoftDeleteFile(ctx, fileID)
}

// readVerified loads the payload and refuses to return it when its digest no longer matches
// the one recorded at upload.
func (fs *FileService) readVerified(ctx context.Context, f *file.File) ([]byte, error) {
	rc, err := fs.blobs.Get(ctx, f.StoredName)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	sum := sha256.Sum256(content)
	if hex.EncodeToString(sum[:]) != f.Hash {
		fs.logger.Error("payload integrity violation",
			zap.String("file_id", f.UUID.String()),
			zap.String("stored_name", f.StoredName))
		fs.audit.Emit(audit.New(fs.clock.Now(), nil, audit.CategorySecurity, audit.SeverityCritical, "integrity_violation", f.Name).
			With("file_id", f.UUID.String()))
		fs.mCounter.WithLabelValues("integrity_violation_total").Inc()
		return nil, ErrIntegrityViolation
	}

	return content, nil
}

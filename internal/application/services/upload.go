package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/access"
	"filevault-api/internal/domain/audit"
	"filevault-api/internal/domain/file"
)

type UploadService struct {
	tm       ports.TxManager
	blobs    ports.BlobStore
	clock    ports.Clock
	audit    ports.AuditSink
	logger   *zap.Logger
	mCounter *prometheus.CounterVec
}

func NewUploadService(
	tm ports.TxManager,
	blobs ports.BlobStore,
	clock ports.Clock,
	auditSink ports.AuditSink,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.UploadService {
	return &UploadService{
		tm:       tm,
		blobs:    blobs,
		clock:    clock,
		audit:    auditSink,
		logger:   logger,
		mCounter: mCounter,
	}
}

// AdmitUpload persists the file record and charges the owner's quota in one transaction.
// Checks run in order: quota, then (owner, name, folder) collision among live files.
func (us *UploadService) AdmitUpload(ctx context.Context, userID uuid.UUID, in file.Admission) (*file.File, error) {
	var out *file.File
	err := us.tm.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		u, err := tx.Users().LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if !u.Active() {
			return ErrNotFoundOrForbidden
		}

		if in.FolderID != nil {
			parent, err := tx.Folders().LockFolderShared(ctx, *in.FolderID)
			if err != nil {
				return err
			}
			if parent == nil || parent.Deleted {
				return ErrNotFoundOrForbidden
			}
		}

		if !u.Fits(in.SizeBytes) {
			return ErrQuotaExceeded
		}

		exists, err := tx.Files().ExistsActiveName(ctx, userID, in.FolderID, in.Name)
		if err != nil {
			return err
		}
		if exists {
			return ErrNameCollision
		}

		out, err = tx.Files().CreateFile(ctx, &file.File{
			OwnerID:    userID,
			FolderID:   in.FolderID,
			Name:       in.Name,
			StoredName: in.StoredName,
			SizeBytes:  in.SizeBytes,
			Hash:       in.Hash,
			MimeType:   in.MimeType,
			Public:     in.Public,
			CreatedAt:  us.clock.Now(),
		})
		if errors.Is(err, file.ErrDuplicateName) {
			return ErrNameCollision
		}
		if err != nil {
			return err
		}

		return tx.Users().AddUsedBytes(ctx, userID, int64(in.SizeBytes))
	})
	if err != nil {
		us.mCounter.WithLabelValues("upload_rejected_total").Inc()
		return nil, err
	}

	us.mCounter.WithLabelValues("upload_admitted_total").Inc()

	return out, nil
}

// UploadFile validates, streams the payload to the blob store while hashing it, then admits it.
// The stored object is removed again whenever admission fails.
func (us *UploadService) UploadFile(ctx context.Context, actorID uuid.UUID, in file.Upload) (*file.File, error) {
	name := file.DisplayName(in.Name)
	if name == "" || in.Size < 0 || in.Content == nil {
		return nil, ErrInvalidName
	}
	if !file.ExtensionAllowed(name) {
		return nil, ErrExtensionNotAllowed
	}

	if in.FolderID != nil {
		res, err := resolveFolderAccess(ctx, us.tm, actorID, *in.FolderID)
		if err != nil {
			return nil, err
		}
		if !res.Allows(access.NeedEdit) {
			return nil, ErrNotFoundOrForbidden
		}
	}

	// fail fast before streaming; AdmitUpload re-checks under lock
	if err := us.precheck(ctx, actorID, in.FolderID, name, uint64(in.Size)); err != nil {
		return nil, err
	}

	storedName := genStoredName(actorID, name)
	mimeType := file.GuessMimeType(name)

	h := sha256.New()
	cr := &countingReader{r: io.TeeReader(io.LimitReader(in.Content, in.Size), h)}
	if err := us.blobs.Put(ctx, storedName, cr, in.Size, mimeType); err != nil {
		return nil, fmt.Errorf("store payload: %w", err)
	}
	if cr.n != in.Size {
		us.removeBlob(storedName)
		return nil, fmt.Errorf("payload size mismatch: declared %d, read %d", in.Size, cr.n)
	}
	var extra [1]byte
	if n, _ := io.ReadFull(in.Content, extra[:]); n > 0 {
		us.removeBlob(storedName)
		return nil, fmt.Errorf("payload size mismatch: longer than declared %d", in.Size)
	}

	out, err := us.AdmitUpload(ctx, actorID, file.Admission{
		FolderID:   in.FolderID,
		Name:       name,
		StoredName: storedName,
		SizeBytes:  uint64(in.Size),
		Hash:       hex.EncodeToString(h.Sum(nil)),
		MimeType:   mimeType,
		Public:     in.Public,
	})
	if err != nil {
		us.removeBlob(storedName)
		return nil, err
	}

	us.audit.Emit(audit.New(us.clock.Now(), &actorID, audit.CategoryFile, audit.SeverityInfo, "file_uploaded", out.Name).
		With("file_id", out.UUID.String()).
		With("size_bytes", fmt.Sprint(out.SizeBytes)))

	return out, nil
}

func (us *UploadService) precheck(ctx context.Context, userID uuid.UUID, folderID *uuid.UUID, name string, size uint64) error {
	u, err := us.tm.Users().FetchUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !u.Active() {
		return ErrNotFoundOrForbidden
	}
	if !u.Fits(size) {
		return ErrQuotaExceeded
	}
	exists, err := us.tm.Files().ExistsActiveName(ctx, userID, folderID, name)
	if err != nil {
		return err
	}
	if exists {
		return ErrNameCollision
	}
	return nil
}

func (us *UploadService) removeBlob(key string) {
	if err := us.blobs.Remove(context.Background(), key); err != nil {
		us.logger.Warn("orphaned payload left in blob store", zap.String("key", key), zap.Error(err))
	}
}

// genStoredName: "<owner-hex>/<random-hex><ext>", unrelated to the display name.
func genStoredName(ownerID uuid.UUID, name string) string {
	return fmt.Sprintf("%s/%s%s",
		strings.ReplaceAll(ownerID.String(), "-", ""),
		strings.ReplaceAll(uuid.NewString(), "-", ""),
		file.Extension(name),
	)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/audit"
	"filevault-api/internal/domain/backup"
)

const backupPrefix = "backups/"

type BackupService struct {
	store    ports.Store
	backups  backup.Repository
	blobs    ports.BlobStore
	clock    ports.Clock
	audit    ports.AuditSink
	logger   *zap.Logger
	mCounter *prometheus.CounterVec
}

func NewBackupService(
	store ports.Store,
	backups backup.Repository,
	blobs ports.BlobStore,
	clock ports.Clock,
	auditSink ports.AuditSink,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.BackupService {
	return &BackupService{
		store:    store,
		backups:  backups,
		blobs:    blobs,
		clock:    clock,
		audit:    auditSink,
		logger:   logger,
		mCounter: mCounter,
	}
}

// RunBackup is the scheduled run: a gzip'ed JSON manifest of every live file is written to the
// blob store and the outcome recorded. A failed run is still recorded, with status failed.
func (bs *BackupService) RunBackup(ctx context.Context) error {
	_, err := bs.run(ctx, nil)
	return err
}

// TriggerBackup runs a backup on behalf of a user, who can later list and delete its record.
func (bs *BackupService) TriggerBackup(ctx context.Context, actorID uuid.UUID) (*backup.Backup, error) {
	return bs.run(ctx, &actorID)
}

func (bs *BackupService) ListBackups(ctx context.Context, actorID uuid.UUID) (backup.Backups, error) {
	return bs.backups.FetchUserBackups(ctx, actorID)
}

func (bs *BackupService) GetBackup(ctx context.Context, actorID, backupID uuid.UUID) (*backup.Backup, error) {
	b, err := bs.backups.FetchUserBackup(ctx, backupID, actorID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFoundOrForbidden
	}
	return b, nil
}

// DeleteBackup drops the record and then its manifest; a manifest that cannot be removed is
// only logged.
func (bs *BackupService) DeleteBackup(ctx context.Context, actorID, backupID uuid.UUID) error {
	b, err := bs.GetBackup(ctx, actorID, backupID)
	if err != nil {
		return err
	}
	ok, err := bs.backups.DeleteUserBackup(ctx, backupID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFoundOrForbidden
	}

	if b.Status == backup.StatusCompleted {
		if err := bs.blobs.Remove(ctx, b.Location); err != nil {
			bs.logger.Warn("orphaned backup manifest left in blob store",
				zap.String("location", b.Location), zap.Error(err))
		}
	}

	bs.audit.Emit(audit.New(bs.clock.Now(), &actorID, audit.CategorySystem, audit.SeverityInfo, "backup_deleted", b.Location).
		With("backup_id", backupID.String()))

	return nil
}

func (bs *BackupService) run(ctx context.Context, requestedBy *uuid.UUID) (*backup.Backup, error) {
	now := bs.clock.Now().UTC()
	key := fmt.Sprintf("%s%s-%s.json.gz", backupPrefix, now.Format("20060102T150405Z"), uuid.NewString()[:8])

	size, runErr := bs.writeManifest(ctx, key)

	status := backup.StatusCompleted
	severity := audit.SeverityInfo
	if runErr != nil {
		status = backup.StatusFailed
		severity = audit.SeverityError
	}

	rec, err := bs.backups.CreateBackup(ctx, &backup.Backup{
		UserID:    requestedBy,
		Kind:      backup.KindManifest,
		Location:  key,
		SizeBytes: size,
		Status:    status,
		CreatedAt: now,
	})
	if err != nil {
		bs.logger.Error("record backup", zap.String("location", key), zap.Error(err))
		if runErr == nil {
			runErr = err
		}
	}

	bs.audit.Emit(audit.New(now, requestedBy, audit.CategorySystem, severity, "backup_"+string(status), key).
		With("size", humanize.Bytes(size)))
	bs.mCounter.WithLabelValues("backup_" + string(status) + "_total").Inc()

	return rec, runErr
}

func (bs *BackupService) writeManifest(ctx context.Context, key string) (uint64, error) {
	files, err := bs.store.Files().FetchActiveFiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("list files: %w", err)
	}

	entries := make([]backup.ManifestEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, backup.ManifestEntry{
			FileID:     f.UUID,
			OwnerID:    f.OwnerID,
			StoredName: f.StoredName,
			SizeBytes:  f.SizeBytes,
			Hash:       f.Hash,
		})
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(entries); err != nil {
		return 0, fmt.Errorf("encode manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("compress manifest: %w", err)
	}

	size := uint64(buf.Len())
	if err := bs.blobs.Put(ctx, key, &buf, int64(size), "application/gzip"); err != nil {
		return 0, fmt.Errorf("store manifest: %w", err)
	}

	bs.logger.Info("backup manifest written",
		zap.String("location", key),
		zap.Int("files", len(entries)),
		zap.String("size", humanize.Bytes(size)))

	return size, nil
}

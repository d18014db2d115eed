package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/policy"
)

const (
	purgeLockKey  = "filevault:lock:purge"
	backupLockKey = "filevault:lock:backup"
)

// Jobs are the scheduled background passes. Each pass holds a cluster-wide lock so only one
// replica runs it per slot.
type Jobs struct {
	lifecycle ports.LifecycleService
	backups   ports.BackupService
	policies  policy.Repository
	locker    ports.Locker
	retention time.Duration
	lockTTL   time.Duration
	logger    *zap.Logger
	mSweep    *prometheus.HistogramVec
}

func NewJobs(
	lifecycle ports.LifecycleService,
	backups ports.BackupService,
	policies policy.Repository,
	locker ports.Locker,
	retention, lockTTL time.Duration,
	logger *zap.Logger,
	mSweep *prometheus.HistogramVec,
) *Jobs {
	return &Jobs{
		lifecycle: lifecycle,
		backups:   backups,
		policies:  policies,
		locker:    locker,
		retention: retention,
		lockTTL:   lockTTL,
		logger:    logger,
		mSweep:    mSweep,
	}
}

// Purge runs one retention sweep. The active retention policy overrides the configured window.
func (j *Jobs) Purge(ctx context.Context) error {
	return j.locked(ctx, purgeLockKey, "purge", func(ctx context.Context) error {
		window, err := j.retentionWindow(ctx)
		if err != nil {
			return err
		}

		n, err := j.lifecycle.PurgeExpired(ctx, window)
		j.logger.Info("purge pass finished",
			zap.Int("purged", n),
			zap.Duration("retention", window),
			zap.Error(err))
		return err
	})
}

func (j *Jobs) Backup(ctx context.Context) error {
	return j.locked(ctx, backupLockKey, "backup", j.backups.RunBackup)
}

func (j *Jobs) retentionWindow(ctx context.Context) (time.Duration, error) {
	p, err := j.policies.FetchActivePolicy(ctx, policy.KindRetention)
	if err != nil {
		return 0, err
	}
	if w := p.Retention(); w > 0 {
		return w, nil
	}
	return j.retention, nil
}

func (j *Jobs) locked(ctx context.Context, key, job string, fn func(context.Context) error) error {
	release, ok, err := j.locker.TryLock(ctx, key, j.lockTTL)
	if err != nil {
		return err
	}
	if !ok {
		j.logger.Info("job held by another replica", zap.String("job", job))
		return nil
	}
	defer release()

	start := time.Now()
	err = fn(ctx)

	result := "ok"
	if err != nil {
		result = "error"
	}
	j.mSweep.WithLabelValues(job, result).Observe(time.Since(start).Seconds())

	return err
}

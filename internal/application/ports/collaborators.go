package ports

import (
	"context"
	"io"
	"time"

	"filevault-api/internal/domain/audit"
)

type Clock interface {
	Now() time.Time
}

// BlobStore keeps file payloads keyed by their opaque stored name.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// AuditSink accepts events without blocking; delivery failures never reach the caller.
type AuditSink interface {
	Emit(e audit.Event)
}

// Locker serialises background jobs across replicas. ok=false means another holder owns key.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

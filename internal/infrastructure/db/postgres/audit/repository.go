package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"filevault-api/internal/domain/audit"
	"filevault-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DBTX
}

func NewRepository(db postgres.DBTX) audit.Repository {
	return &Repository{db: db}
}

// CreateEvent is idempotent on the event id so redelivered messages are harmless.
func (r *Repository) CreateEvent(ctx context.Context, e audit.Event) error {
	md := []byte("{}")
	if len(e.Metadata) > 0 {
		var err error
		if md, err = json.Marshal(e.Metadata); err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
	}

	_, err := r.db.Exec(ctx, InsertEvent,
		e.ID, e.TS, e.ActorID, string(e.Category), string(e.Severity), e.Action, e.Detail, md,
	)
	return err
}

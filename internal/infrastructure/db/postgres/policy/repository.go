package policy

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"filevault-api/internal/domain/policy"
	"filevault-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DBTX
}

func NewRepository(db postgres.DBTX) policy.Repository {
	return &Repository{db: db}
}

// FetchActivePolicy returns nil when no active policy of kind exists.
func (r *Repository) FetchActivePolicy(ctx context.Context, kind string) (*policy.Policy, error) {
	p := new(policy.Policy)
	err := r.db.QueryRow(ctx, SelectActivePolicy, kind).Scan(
		&p.UUID,
		&p.Kind,
		&p.Version,
		&p.Content,
		&p.RetentionDays,
		&p.Active,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return p, nil
}

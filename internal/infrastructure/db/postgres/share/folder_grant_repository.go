package share

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"filevault-api/internal/domain/share"
	"filevault-api/internal/infrastructure/db/postgres"
)

type FolderGrantRepository struct {
	db postgres.DBTX
}

func NewFolderGrantRepository(db postgres.DBTX) share.FolderGrantRepository {
	return &FolderGrantRepository{db: db}
}

func scanGrant(row pgx.Row) (*FolderGrant, error) {
	g := new(FolderGrant)
	err := row.Scan(
		&g.ID,
		&g.FolderID,
		&g.OwnerID,
		&g.GranteeID,
		&g.CanEdit,
		&g.CanDelete,
		&g.CanReshare,
		&g.Active,

		&g.CreatedAt,
	)
	return g, err
}

func (r *FolderGrantRepository) CreateGrant(ctx context.Context, req *share.FolderGrant) (*share.FolderGrant, error) {
	p := req.Permissions
	g, err := scanGrant(r.db.QueryRow(
		ctx,
		InsertGrant,
		req.FolderID, req.OwnerID, req.GranteeID, p.Edit, p.Delete, p.Reshare, req.Active, req.CreatedAt,
	))
	if err != nil {
		if postgres.IsPgUniqueViolation(err) {
			return nil, share.ErrDuplicateGrant
		}
		return nil, err
	}

	return fromGrantModel(g), nil
}

func (r *FolderGrantRepository) FetchActiveGrant(ctx context.Context, folderID, granteeID share.UUID) (*share.FolderGrant, error) {
	g, err := scanGrant(r.db.QueryRow(ctx, SelectActiveGrant, folderID, granteeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromGrantModel(g), nil
}

func (r *FolderGrantRepository) FetchGranteeGrants(ctx context.Context, granteeID share.UUID) (share.FolderGrants, error) {
	rows, err := r.db.Query(ctx, SelectGranteeGrants, granteeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gs := FolderGrants{}
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		gs = append(gs, g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromGrantModels(gs), nil
}

func (r *FolderGrantRepository) DeactivateGrant(ctx context.Context, id share.UUID) error {
	_, err := r.db.Exec(ctx, DeactivateGrant, id)
	return err
}

func (r *FolderGrantRepository) DeactivateUserGrants(ctx context.Context, userID share.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, DeactivateUserGrants, userID)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

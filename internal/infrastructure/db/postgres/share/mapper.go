package share

import (
	"filevault-api/internal/domain/access"
	domain "filevault-api/internal/domain/share"
)

func fromFileShareModel(model *FileShare) *domain.FileShare {
	return &domain.FileShare{
		UUID:        model.ID,
		FileID:      model.FileID,
		Token:       model.Token,
		CreatedBy:   model.CreatedBy,
		ExpiresAt:   model.ExpiresAt,
		MaxAccesses: model.MaxAccesses,
		Accesses:    model.Accesses,
		Active:      model.Active,

		CreatedAt: model.CreatedAt,
	}
}

func fromGrantModel(model *FolderGrant) *domain.FolderGrant {
	return &domain.FolderGrant{
		UUID:        model.ID,
		FolderID:    model.FolderID,
		OwnerID:     model.OwnerID,
		GranteeID:   model.GranteeID,
		Permissions: access.Granted(model.CanEdit, model.CanDelete, model.CanReshare),
		Active:      model.Active,

		CreatedAt: model.CreatedAt,
	}
}

func fromGrantModels(models FolderGrants) domain.FolderGrants {
	gs := make(domain.FolderGrants, len(models))
	for idx, g := range models {
		gs[idx] = fromGrantModel(g)
	}

	return gs
}

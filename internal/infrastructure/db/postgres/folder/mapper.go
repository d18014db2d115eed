package folder

import (
	domain "filevault-api/internal/domain/folder"
)

func fromDBModel(model *Folder) *domain.Folder {
	return &domain.Folder{
		UUID:     model.ID,
		OwnerID:  model.OwnerID,
		ParentID: model.ParentID,
		Name:     model.Name,
		Path:     model.Path,

		CreatedAt: model.CreatedAt,

		Deleted:   model.Deleted,
		DeletedAt: model.DeletedAt,
	}
}

func fromDBModels(models Folders) domain.Folders {
	fs := make(domain.Folders, len(models))
	for idx, f := range models {
		fs[idx] = fromDBModel(f)
	}

	return fs
}

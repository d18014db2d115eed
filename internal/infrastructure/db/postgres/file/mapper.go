package file

import (
	domain "filevault-api/internal/domain/file"
)

func fromDBModel(model *File) *domain.File {
	return &domain.File{
		UUID:       model.ID,
		OwnerID:    model.OwnerID,
		FolderID:   model.FolderID,
		Name:       model.Name,
		StoredName: model.StoredName,
		SizeBytes:  uint64(max(model.SizeBytes, 0)),
		Hash:       model.Hash,
		MimeType:   model.MimeType,
		Public:     model.Public,

		CreatedAt: model.CreatedAt,

		Deleted:   model.Deleted,
		DeletedAt: model.DeletedAt,
	}
}

func fromDBModels(models Files) domain.Files {
	fs := make(domain.Files, len(models))
	for idx, f := range models {
		fs[idx] = fromDBModel(f)
	}

	return fs
}

func fromDBReleases(models []Release) domain.Releases {
	rs := make(domain.Releases, len(models))
	for idx, r := range models {
		rs[idx] = domain.Release{OwnerID: r.OwnerID, SizeBytes: uint64(max(r.SizeBytes, 0))}
	}

	return rs
}

package file

import (
	"github.com/dustin/go-humanize"

	domain "filevault-api/internal/domain/file"
)

func ToResponseFile(f domain.File) File {
	return File{
		UUID:      f.UUID,
		OwnerID:   f.OwnerID,
		FolderID:  f.FolderID,
		Name:      f.Name,
		MimeType:  f.MimeType,
		SizeBytes: f.SizeBytes,
		Size:      humanize.IBytes(f.SizeBytes),
		Hash:      f.Hash,
		Public:    f.Public,
		CreatedAt: f.CreatedAt,
	}
}

func ToResponseFiles(fs domain.Files) Files {
	out := make(Files, len(fs))
	for idx, f := range fs {
		out[idx] = ToResponseFile(*f)
	}
	return out
}

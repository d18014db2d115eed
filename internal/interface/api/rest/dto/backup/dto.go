package backup

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	domain "filevault-api/internal/domain/backup"
)

type (
	Backup struct {
		UUID      uuid.UUID `json:"uuid"`
		Kind      string    `json:"kind"`
		Location  string    `json:"location"`
		SizeBytes uint64    `json:"size_bytes"`
		Size      string    `json:"size"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"created_at"`
	}
	Backups []Backup

	List struct {
		Backups Backups `json:"backups"`
		Count   int     `json:"count"`
	}
)

func ToResponseBackup(b domain.Backup) Backup {
	return Backup{
		UUID:      b.UUID,
		Kind:      b.Kind,
		Location:  b.Location,
		SizeBytes: b.SizeBytes,
		Size:      humanize.Bytes(b.SizeBytes),
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
	}
}

func ToResponseList(bs domain.Backups) List {
	out := make(Backups, 0, len(bs))
	for _, b := range bs {
		out = append(out, ToResponseBackup(*b))
	}
	return List{Backups: out, Count: len(out)}
}

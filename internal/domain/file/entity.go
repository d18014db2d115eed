package file

import (
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultMimeType = "application/octet-stream"

// ErrDuplicateName is returned by stores enforcing unique live names per (owner, folder).
var ErrDuplicateName = errors.New("file name already exists")

var allowedExtensions = map[string]struct{}{
	// images
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "webp": {}, "svg": {}, "bmp": {}, "tiff": {},
	// documents
	"pdf": {}, "doc": {}, "docx": {}, "xls": {}, "xlsx": {}, "ppt": {}, "pptx": {}, "txt": {},
	"rtf": {}, "odt": {}, "ods": {}, "odp": {}, "epub": {},
	// archives
	"zip": {}, "rar": {}, "7z": {}, "tar": {}, "gz": {},
	// audio
	"mp3": {}, "wav": {}, "ogg": {}, "flac": {}, "aac": {},
	// video
	"mp4": {}, "avi": {}, "mov": {}, "wmv": {}, "flv": {}, "mkv": {},
	// other
	"csv": {}, "json": {}, "xml": {}, "html": {}, "htm": {}, "js": {}, "css": {}, "py": {},
	"php": {}, "c": {}, "cdr": {},
}

type (
	UUID = uuid.UUID
	File struct {
		UUID       UUID
		OwnerID    UUID
		FolderID   *UUID
		Name       string
		StoredName string
		SizeBytes  uint64
		Hash       string
		MimeType   string
		Public     bool

		CreatedAt time.Time

		Deleted   bool
		DeletedAt *time.Time
	}
	Files []*File

	// Admission is the metadata of an already stored payload waiting for quota admission.
	Admission struct {
		FolderID   *UUID
		Name       string
		StoredName string
		SizeBytes  uint64
		Hash       string
		MimeType   string
		Public     bool
	}

	Upload struct {
		FolderID *UUID
		Name     string
		Size     int64
		Public   bool
		Content  io.Reader
	}

	// Release is the quota freed by soft-deleting one file.
	Release struct {
		OwnerID   UUID
		SizeBytes uint64
	}
	Releases []Release
)

// ExtensionAllowed reports whether the display name carries an allow-listed extension.
func ExtensionAllowed(name string) bool {
	ext := Extension(name)
	if ext == "" {
		return false
	}
	_, ok := allowedExtensions[strings.TrimPrefix(ext, ".")]
	return ok
}

// Extension returns the lower-cased extension including the dot.
func Extension(name string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
}

func GuessMimeType(name string) string {
	if mt := mime.TypeByExtension(Extension(name)); mt != "" {
		return mt
	}
	return DefaultMimeType
}

// ByOwner sums released bytes per owner.
func (rs Releases) ByOwner() map[UUID]uint64 {
	out := make(map[UUID]uint64, len(rs))
	for _, r := range rs {
		out[r.OwnerID] += r.SizeBytes
	}
	return out
}

package folder

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const Separator = "/"

var (
	ErrInvalidName = errors.New("invalid folder name")
	// ErrDuplicateName is returned by stores enforcing unique live names per (owner, parent).
	ErrDuplicateName = errors.New("folder name already exists")
)

type (
	UUID   = uuid.UUID
	Folder struct {
		UUID     UUID
		OwnerID  UUID
		ParentID *UUID
		Name     string
		Path     string

		CreatedAt time.Time

		Deleted   bool
		DeletedAt *time.Time
	}
	Folders []*Folder

	// Placement describes a rename and/or move. A nil ParentID with ToRoot=false keeps the
	// current parent.
	Placement struct {
		Name     *string
		ParentID *UUID
		ToRoot   bool
	}
)

// ChildPath is the materialized path of a child named name under parentPath.
func ChildPath(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + Separator + name
}

// NormalizeName trims the name and rejects empty names and names containing the separator.
func NormalizeName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" || n == "." || n == ".." || strings.Contains(n, Separator) {
		return "", ErrInvalidName
	}
	return n, nil
}

func (f *Folder) IsRoot() bool { return f.ParentID == nil }

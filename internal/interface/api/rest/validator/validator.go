package validator

import (
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"filevault-api/internal/interface/api/rest/dto/account"
	"filevault-api/internal/interface/api/rest/dto/file"
	"filevault-api/internal/interface/api/rest/dto/folder"
	"filevault-api/internal/interface/api/rest/dto/share"
)

const (
	maxNameLen   = 255
	tokenHexLen  = 64
	maxAccessCap = 1_000_000
)

func IsUUID(s string) (bool, uuid.UUID) {
	id, err := uuid.Parse(s)
	return err == nil && id != uuid.Nil, id
}

// IsShareToken checks the shape of a share token before touching the store.
func IsShareToken(s string) bool {
	if len(s) != tokenHexLen {
		return false
	}
	for _, r := range s {
		if !unicode.Is(unicode.ASCII_Hex_Digit, r) {
			return false
		}
	}
	return true
}

func IsEmail(s string) bool {
	email := strings.TrimSpace(s)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validateName(errs map[string]string, key, name string, required bool) {
	n := strings.TrimSpace(name)
	switch {
	case n == "" && required:
		errs[key] = key + " is required"
	case utf8.RuneCountInString(n) > maxNameLen:
		errs[key] = key + " must be at most 255 characters"
	}
}

func ValidateCreateFolder(r folder.CreateRequest) map[string]string {
	errs := make(map[string]string)
	validateName(errs, "name", r.Name, true)
	if r.ParentID != nil && *r.ParentID == uuid.Nil {
		errs["parent_id"] = "parent_id must be a valid UUID"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ValidateUpdateFolder(r folder.UpdateRequest) map[string]string {
	errs := make(map[string]string)
	if r.Name == nil && r.ParentID == nil && !r.ToRoot {
		errs["body"] = "one of name, parent_id or to_root is required"
	}
	if r.Name != nil {
		validateName(errs, "name", *r.Name, true)
	}
	if r.ParentID != nil && r.ToRoot {
		errs["parent_id"] = "parent_id and to_root are mutually exclusive"
	} else if r.ParentID != nil && *r.ParentID == uuid.Nil {
		errs["parent_id"] = "parent_id must be a valid UUID"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ValidateGrant(r share.GrantRequest) map[string]string {
	errs := make(map[string]string)
	if !IsEmail(r.Email) {
		errs["email"] = "invalid email format"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ValidateRevoke(r share.RevokeRequest) map[string]string {
	if !IsEmail(r.Email) {
		return map[string]string{"email": "invalid email format"}
	}
	return nil
}

func ValidateToken(r share.TokenRequest, now time.Time) map[string]string {
	errs := make(map[string]string)
	if r.MaxAccesses != nil && (*r.MaxAccesses < 1 || *r.MaxAccesses > maxAccessCap) {
		errs["max_accesses"] = "max_accesses must be between 1 and 1000000"
	}
	if r.ExpiresAt != nil && !r.ExpiresAt.After(now) {
		errs["expires_at"] = "expires_at must be in the future"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ValidateRenameFile(r file.RenameRequest) map[string]string {
	errs := make(map[string]string)
	validateName(errs, "name", r.Name, true)
	if strings.ContainsAny(r.Name, "/\\") {
		errs["name"] = "name must not contain path separators"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ValidateAccount(r account.Request) map[string]string {
	errs := make(map[string]string)
	validateName(errs, "name", r.Name, false)
	for _, ch := range r.Name {
		if unicode.IsControl(ch) {
			errs["name"] = "name must not contain control characters"
			break
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

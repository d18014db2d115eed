package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFoundOrForbidden deliberately conflates "missing" and "no access".
	ErrNotFoundOrForbidden = errors.New("not found or forbidden")
	ErrQuotaExceeded       = errors.New("storage quota exceeded")
	ErrNameCollision       = errors.New("name already exists in destination")
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrIntegrityViolation  = errors.New("stored content hash mismatch")
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	ErrInvalidName         = errors.New("invalid name")
	ErrInvalidShareOptions = errors.New("invalid share options")
	ErrTermsNotAccepted    = errors.New("terms of use not accepted")

	ErrExtensionChanged = fmt.Errorf("%w: the extension of a stored file cannot change", ErrExtensionNotAllowed)

	ErrAlreadyShared = fmt.Errorf("%w: folder already shared with this user", ErrInvalidTransition)
	ErrSelfShare     = fmt.Errorf("%w: cannot share a folder with its owner", ErrInvalidTransition)

	ErrShareExpired   = fmt.Errorf("%w: share link expired", ErrNotFoundOrForbidden)
	ErrShareExhausted = fmt.Errorf("%w: share link access limit reached", ErrNotFoundOrForbidden)
)

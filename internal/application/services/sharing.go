package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/access"
	"filevault-api/internal/domain/audit"
	"filevault-api/internal/domain/folder"
	"filevault-api/internal/domain/share"
	"filevault-api/internal/domain/user"
)

type SharingService struct {
	tm       ports.TxManager
	clock    ports.Clock
	audit    ports.AuditSink
	mCounter *prometheus.CounterVec
}

func NewSharingService(
	tm ports.TxManager,
	clock ports.Clock,
	auditSink ports.AuditSink,
	mCounter *prometheus.CounterVec,
) ports.SharingService {
	return &SharingService{
		tm:       tm,
		clock:    clock,
		audit:    auditSink,
		mCounter: mCounter,
	}
}

// IssueFileToken creates a token share for a file owned by the actor.
func (ss *SharingService) IssueFileToken(
	ctx context.Context,
	actorID, fileID uuid.UUID,
	opts share.TokenOptions,
) (*share.FileShare, error) {
	now := ss.clock.Now()
	if opts.MaxAccesses != nil && *opts.MaxAccesses <= 0 {
		return nil, ErrInvalidShareOptions
	}
	if opts.ExpiresAt != nil && !opts.ExpiresAt.After(now) {
		return nil, ErrInvalidShareOptions
	}

	f, err := ss.tm.Files().FetchFileByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if f == nil || f.Deleted || f.OwnerID != actorID {
		return nil, ErrNotFoundOrForbidden
	}

	token, err := deriveToken(fileID, now, actorID)
	if err != nil {
		return nil, err
	}

	out, err := ss.tm.FileShares().CreateFileShare(ctx, &share.FileShare{
		FileID:      fileID,
		Token:       token,
		CreatedBy:   actorID,
		ExpiresAt:   opts.ExpiresAt,
		MaxAccesses: opts.MaxAccesses,
		Active:      true,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	ss.audit.Emit(audit.New(now, &actorID, audit.CategoryFile, audit.SeverityInfo, "file_token_issued", f.Name).
		With("file_id", fileID.String()))
	ss.mCounter.WithLabelValues("file_token_issued_total").Inc()

	return out, nil
}

// ResolveToken consumes one access. The increment is a single conditional update, so
// concurrent callers never lose counts and never exceed the limit.
func (ss *SharingService) ResolveToken(ctx context.Context, token string) (*share.FileShare, error) {
	if token == "" {
		return nil, ErrNotFoundOrForbidden
	}
	now := ss.clock.Now()

	s, err := ss.tm.FileShares().ConsumeFileShare(ctx, token, now)
	if err != nil {
		return nil, err
	}
	if s != nil {
		ss.mCounter.WithLabelValues("file_token_resolved_total").Inc()
		return s, nil
	}

	ss.mCounter.WithLabelValues("file_token_denied_total").Inc()

	_, err = ss.CheckToken(ctx, token)
	if err == nil {
		err = ErrNotFoundOrForbidden
	}
	return nil, err
}

// CheckToken reports whether the token could be resolved now without consuming an access.
func (ss *SharingService) CheckToken(ctx context.Context, token string) (*share.FileShare, error) {
	if token == "" {
		return nil, ErrNotFoundOrForbidden
	}
	s, err := ss.tm.FileShares().FetchFileShareByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNotFoundOrForbidden
	}
	switch s.Status(ss.clock.Now()) {
	case share.TokenUsable:
		return s, nil
	case share.TokenExpired:
		return nil, ErrShareExpired
	case share.TokenExhausted:
		return nil, ErrShareExhausted
	}

	return nil, ErrNotFoundOrForbidden
}

// GrantFolder gives the grantee view access plus perms on the folder and, transitively, on
// every descendant without a closer grant. The actor needs reshare rights; non-owners cannot
// hand out more than they hold.
func (ss *SharingService) GrantFolder(
	ctx context.Context,
	folderID, actorID uuid.UUID,
	granteeEmail string,
	perms access.Permissions,
) (*share.FolderGrant, error) {
	var out *share.FolderGrant
	err := ss.tm.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		f, res, err := lockResolved(ctx, tx, actorID, folderID, access.NeedReshare)
		if err != nil {
			return err
		}

		grantee, err := findGrantee(ctx, tx, granteeEmail)
		if err != nil {
			return err
		}
		if !grantee.Active() {
			return ErrNotFoundOrForbidden
		}
		if grantee.UUID == actorID || grantee.UUID == f.OwnerID {
			return ErrSelfShare
		}

		existing, err := tx.FolderGrants().FetchActiveGrant(ctx, folderID, grantee.UUID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyShared
		}

		if !res.Owner {
			perms.Edit = perms.Edit && res.Permissions.Edit
			perms.Delete = perms.Delete && res.Permissions.Delete
			perms.Reshare = perms.Reshare && res.Permissions.Reshare
		}
		perms.View = true

		out, err = tx.FolderGrants().CreateGrant(ctx, &share.FolderGrant{
			FolderID:    folderID,
			OwnerID:     actorID,
			GranteeID:   grantee.UUID,
			Permissions: perms,
			Active:      true,
			CreatedAt:   ss.clock.Now(),
		})
		if errors.Is(err, share.ErrDuplicateGrant) {
			return ErrAlreadyShared
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	ss.audit.Emit(audit.New(ss.clock.Now(), &actorID, audit.CategoryFolder, audit.SeverityInfo, "folder_shared", "").
		With("folder_id", folderID.String()).
		With("grantee_id", out.GranteeID.String()))
	ss.mCounter.WithLabelValues("folder_grant_created_total").Inc()

	return out, nil
}

// RevokeFolderGrant deactivates the grantee's active grant; the row is kept for audit.
func (ss *SharingService) RevokeFolderGrant(ctx context.Context, folderID, actorID uuid.UUID, granteeEmail string) error {
	var revoked uuid.UUID
	err := ss.tm.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		_, res, err := lockResolved(ctx, tx, actorID, folderID, access.NeedReshare)
		if err != nil {
			return err
		}

		grantee, err := findGrantee(ctx, tx, granteeEmail)
		if err != nil {
			return err
		}

		g, err := tx.FolderGrants().FetchActiveGrant(ctx, folderID, grantee.UUID)
		if err != nil {
			return err
		}
		// only the owner or whoever issued the grant may withdraw it
		if g == nil || (!res.Owner && g.OwnerID != actorID) {
			return ErrNotFoundOrForbidden
		}
		revoked = grantee.UUID

		return tx.FolderGrants().DeactivateGrant(ctx, g.UUID)
	})
	if err != nil {
		return err
	}

	ss.audit.Emit(audit.New(ss.clock.Now(), &actorID, audit.CategoryFolder, audit.SeverityInfo, "folder_unshared", "").
		With("folder_id", folderID.String()).
		With("grantee_id", revoked.String()))
	ss.mCounter.WithLabelValues("folder_grant_revoked_total").Inc()

	return nil
}

// SharedWithMe lists the top-most folders shared with the actor: a shared folder below another
// folder shared with the same actor is reached by browsing, not listed again.
func (ss *SharingService) SharedWithMe(ctx context.Context, actorID uuid.UUID) (folder.Folders, error) {
	actor, err := ss.tm.Users().FetchUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Active() {
		return folder.Folders{}, nil
	}

	grants, err := ss.tm.FolderGrants().FetchGranteeGrants(ctx, actorID)
	if err != nil {
		return nil, err
	}

	out := make(folder.Folders, 0, len(grants))
	seen := make(map[uuid.UUID]struct{}, len(grants))
	for _, g := range grants {
		if _, ok := seen[g.FolderID]; ok {
			continue
		}
		seen[g.FolderID] = struct{}{}

		f, err := ss.tm.Folders().FetchFolderByID(ctx, g.FolderID)
		if err != nil {
			return nil, err
		}
		if f == nil || f.Deleted {
			continue
		}
		nested, err := hasSharedAncestor(ctx, ss.tm, actorID, f)
		if err != nil {
			return nil, err
		}
		if !nested {
			out = append(out, f)
		}
	}

	return out, nil
}

// lockResolved locks the folder row and checks that the actor holds need on it.
func lockResolved(
	ctx context.Context,
	tx ports.Store,
	actorID, folderID uuid.UUID,
	need access.Permissions,
) (*folder.Folder, access.Result, error) {
	f, err := tx.Folders().LockFolder(ctx, folderID)
	if err != nil {
		return nil, access.Denied(), err
	}
	if f == nil || f.Deleted {
		return nil, access.Denied(), ErrNotFoundOrForbidden
	}

	res, err := resolveFolderAccess(ctx, tx, actorID, folderID)
	if err != nil {
		return nil, access.Denied(), err
	}
	if !res.Allows(need) {
		return nil, access.Denied(), ErrNotFoundOrForbidden
	}

	return f, res, nil
}

func findGrantee(ctx context.Context, st ports.Store, email string) (*user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, ErrNotFoundOrForbidden
	}
	u, err := st.Users().FetchUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFoundOrForbidden
	}
	return u, nil
}

// deriveToken hashes (file, issuance time, issuer) together with 16 random bytes so tokens
// are unique even for identical inputs and cannot be guessed from them.
func deriveToken(fileID uuid.UUID, issuedAt time.Time, issuerID uuid.UUID) (string, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return "", err
	}

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(issuedAt.UnixNano()))

	h := sha256.New()
	h.Write(fileID[:])
	h.Write(ts[:])
	h.Write(issuerID[:])
	h.Write(salt[:])

	return hex.EncodeToString(h.Sum(nil)), nil
}

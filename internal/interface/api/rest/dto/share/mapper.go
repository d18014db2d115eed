package share

import (
	"filevault-api/internal/domain/access"
	domain "filevault-api/internal/domain/share"
	"filevault-api/internal/interface/api/rest/dto/folder"
)

func ToResponseToken(s domain.FileShare) Token {
	return Token{
		UUID:        s.UUID,
		FileID:      s.FileID,
		Token:       s.Token,
		ExpiresAt:   s.ExpiresAt,
		MaxAccesses: s.MaxAccesses,
		Accesses:    s.Accesses,
		CreatedAt:   s.CreatedAt,
	}
}

func ToResponseGrant(g domain.FolderGrant) Grant {
	return Grant{
		UUID:        g.UUID,
		FolderID:    g.FolderID,
		OwnerID:     g.OwnerID,
		GranteeID:   g.GranteeID,
		Permissions: folder.ToResponsePermissions(g.Permissions),
		CreatedAt:   g.CreatedAt,
	}
}

func ToDomainTokenOptions(r TokenRequest) domain.TokenOptions {
	return domain.TokenOptions{ExpiresAt: r.ExpiresAt, MaxAccesses: r.MaxAccesses}
}

func ToDomainPermissions(r GrantRequest) access.Permissions {
	return access.Granted(r.Edit, r.Delete, r.Reshare)
}

package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"filevault-api/internal/domain/access"
	"filevault-api/internal/domain/backup"
	"filevault-api/internal/domain/file"
	"filevault-api/internal/domain/folder"
	"filevault-api/internal/domain/policy"
	"filevault-api/internal/domain/share"
	"filevault-api/internal/domain/user"
)

type AccessService interface {
	ResolveFolderAccess(ctx context.Context, actorID, folderID uuid.UUID) (access.Result, error)
	ResolveFileAccess(ctx context.Context, actorID, fileID uuid.UUID) (access.Result, error)
}

type UploadService interface {
	AdmitUpload(ctx context.Context, userID uuid.UUID, in file.Admission) (*file.File, error)
	UploadFile(ctx context.Context, actorID uuid.UUID, in file.Upload) (*file.File, error)
}

type FileService interface {
	DownloadFile(ctx context.Context, actorID, fileID uuid.UUID) (*file.File, []byte, error)
	DownloadShared(ctx context.Context, token string) (*file.File, []byte, error)
	SetVisibility(ctx context.Context, actorID, fileID uuid.UUID, public bool) (*file.File, error)
	RenameFile(ctx context.Context, actorID, fileID uuid.UUID, newName string, keepExt bool) (*file.File, error)
	DeleteFile(ctx context.Context, actorID, fileID uuid.UUID) error
}

type SharingService interface {
	IssueFileToken(ctx context.Context, actorID, fileID uuid.UUID, opts share.TokenOptions) (*share.FileShare, error)
	ResolveToken(ctx context.Context, token string) (*share.FileShare, error)
	CheckToken(ctx context.Context, token string) (*share.FileShare, error)
	GrantFolder(ctx context.Context, folderID, actorID uuid.UUID, granteeEmail string, perms access.Permissions) (*share.FolderGrant, error)
	RevokeFolderGrant(ctx context.Context, folderID, actorID uuid.UUID, granteeEmail string) error
	SharedWithMe(ctx context.Context, actorID uuid.UUID) (folder.Folders, error)
}

type LifecycleService interface {
	SoftDeleteFolder(ctx context.Context, folderID uuid.UUID) error
	SoftDeleteFile(ctx context.Context, fileID uuid.UUID) error
	RenameOrMoveFolder(ctx context.Context, folderID uuid.UUID, to folder.Placement) (*folder.Folder, error)
	RequestAccountDeletion(ctx context.Context, userID uuid.UUID) error
	PurgeExpired(ctx context.Context, retention time.Duration) (int, error)
}

type FolderContent struct {
	Folder  *folder.Folder
	Access  access.Result
	Folders folder.Folders
	Files   file.Files
}

type FolderService interface {
	CreateFolder(ctx context.Context, actorID uuid.UUID, parentID *uuid.UUID, name string) (*folder.Folder, error)
	ListFolder(ctx context.Context, actorID uuid.UUID, folderID *uuid.UUID) (*FolderContent, error)
	RenameOrMove(ctx context.Context, actorID, folderID uuid.UUID, to folder.Placement) (*folder.Folder, error)
	DeleteFolder(ctx context.Context, actorID, folderID uuid.UUID) error
}

type BackupService interface {
	RunBackup(ctx context.Context) error
	TriggerBackup(ctx context.Context, actorID uuid.UUID) (*backup.Backup, error)
	ListBackups(ctx context.Context, actorID uuid.UUID) (backup.Backups, error)
	GetBackup(ctx context.Context, actorID, backupID uuid.UUID) (*backup.Backup, error)
	DeleteBackup(ctx context.Context, actorID, backupID uuid.UUID) error
}

type TermsStatus struct {
	Current  *policy.Policy
	User     *user.User
	Accepted bool
}

type TermsService interface {
	CurrentTerms(ctx context.Context) (*policy.Policy, error)
	TermsStatus(ctx context.Context, userID uuid.UUID) (*TermsStatus, error)
	RespondToTerms(ctx context.Context, userID uuid.UUID, accept bool) (*TermsStatus, error)
	CheckTermsAccepted(ctx context.Context, userID uuid.UUID) error
}

type AccountService interface {
	ProvisionAccount(ctx context.Context, userID uuid.UUID, email, name string) (*user.User, error)
	FetchAccount(ctx context.Context, userID uuid.UUID) (*user.User, error)
	RequestDeletion(ctx context.Context, userID uuid.UUID) error
}

package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/access"
	"filevault-api/internal/domain/backup"
	"filevault-api/internal/domain/file"
	"filevault-api/internal/domain/folder"
	"filevault-api/internal/domain/policy"
	"filevault-api/internal/domain/share"
	"filevault-api/internal/domain/user"
	jwtSvc "filevault-api/internal/infrastructure/jwt"
)

var errNotUsed = errors.New("not used")

type FakeFolderService struct {
	CreateFolderFunc func(ctx context.Context, actorID uuid.UUID, parentID *uuid.UUID, name string) (*folder.Folder, error)
	ListFolderFunc   func(ctx context.Context, actorID uuid.UUID, folderID *uuid.UUID) (*ports.FolderContent, error)
	RenameOrMoveFunc func(ctx context.Context, actorID, folderID uuid.UUID, to folder.Placement) (*folder.Folder, error)
	DeleteFolderFunc func(ctx context.Context, actorID, folderID uuid.UUID) error
}

func (f *FakeFolderService) CreateFolder(ctx context.Context, actorID uuid.UUID, parentID *uuid.UUID, name string) (*folder.Folder, error) {
	if f.CreateFolderFunc == nil {
		return nil, errNotUsed
	}
	return f.CreateFolderFunc(ctx, actorID, parentID, name)
}
func (f *FakeFolderService) ListFolder(ctx context.Context, actorID uuid.UUID, folderID *uuid.UUID) (*ports.FolderContent, error) {
	if f.ListFolderFunc == nil {
		return nil, errNotUsed
	}
	return f.ListFolderFunc(ctx, actorID, folderID)
}
func (f *FakeFolderService) RenameOrMove(ctx context.Context, actorID, folderID uuid.UUID, to folder.Placement) (*folder.Folder, error) {
	if f.RenameOrMoveFunc == nil {
		return nil, errNotUsed
	}
	return f.RenameOrMoveFunc(ctx, actorID, folderID, to)
}
func (f *FakeFolderService) DeleteFolder(ctx context.Context, actorID, folderID uuid.UUID) error {
	if f.DeleteFolderFunc == nil {
		return errNotUsed
	}
	return f.DeleteFolderFunc(ctx, actorID, folderID)
}

type FakeSharingService struct {
	IssueFileTokenFunc    func(ctx context.Context, actorID, fileID uuid.UUID, opts share.TokenOptions) (*share.FileShare, error)
	ResolveTokenFunc      func(ctx context.Context, token string) (*share.FileShare, error)
	CheckTokenFunc        func(ctx context.Context, token string) (*share.FileShare, error)
	GrantFolderFunc       func(ctx context.Context, folderID, actorID uuid.UUID, email string, perms access.Permissions) (*share.FolderGrant, error)
	RevokeFolderGrantFunc func(ctx context.Context, folderID, actorID uuid.UUID, email string) error
	SharedWithMeFunc      func(ctx context.Context, actorID uuid.UUID) (folder.Folders, error)
}

func (f *FakeSharingService) IssueFileToken(ctx context.Context, actorID, fileID uuid.UUID, opts share.TokenOptions) (*share.FileShare, error) {
	if f.IssueFileTokenFunc == nil {
		return nil, errNotUsed
	}
	return f.IssueFileTokenFunc(ctx, actorID, fileID, opts)
}
func (f *FakeSharingService) ResolveToken(ctx context.Context, token string) (*share.FileShare, error) {
	if f.ResolveTokenFunc == nil {
		return nil, errNotUsed
	}
	return f.ResolveTokenFunc(ctx, token)
}
func (f *FakeSharingService) CheckToken(ctx context.Context, token string) (*share.FileShare, error) {
	if f.CheckTokenFunc == nil {
		return nil, errNotUsed
	}
	return f.CheckTokenFunc(ctx, token)
}
func (f *FakeSharingService) GrantFolder(ctx context.Context, folderID, actorID uuid.UUID, email string, perms access.Permissions) (*share.FolderGrant, error) {
	if f.GrantFolderFunc == nil {
		return nil, errNotUsed
	}
	return f.GrantFolderFunc(ctx, folderID, actorID, email, perms)
}
func (f *FakeSharingService) RevokeFolderGrant(ctx context.Context, folderID, actorID uuid.UUID, email string) error {
	if f.RevokeFolderGrantFunc == nil {
		return errNotUsed
	}
	return f.RevokeFolderGrantFunc(ctx, folderID, actorID, email)
}
func (f *FakeSharingService) SharedWithMe(ctx context.Context, actorID uuid.UUID) (folder.Folders, error) {
	if f.SharedWithMeFunc == nil {
		return nil, errNotUsed
	}
	return f.SharedWithMeFunc(ctx, actorID)
}

type FakeFileService struct {
	DownloadFileFunc   func(ctx context.Context, actorID, fileID uuid.UUID) (*file.File, []byte, error)
	DownloadSharedFunc func(ctx context.Context, token string) (*file.File, []byte, error)
	SetVisibilityFunc  func(ctx context.Context, actorID, fileID uuid.UUID, public bool) (*file.File, error)
	DeleteFileFunc     func(ctx context.Context, actorID, fileID uuid.UUID) error
	RenameFileFunc     func(ctx context.Context, actorID, fileID uuid.UUID, name string, keepExt bool) (*file.File, error)
}

func (f *FakeFileService) DownloadFile(ctx context.Context, actorID, fileID uuid.UUID) (*file.File, []byte, error) {
	if f.DownloadFileFunc == nil {
		return nil, nil, errNotUsed
	}
	return f.DownloadFileFunc(ctx, actorID, fileID)
}
func (f *FakeFileService) DownloadShared(ctx context.Context, token string) (*file.File, []byte, error) {
	if f.DownloadSharedFunc == nil {
		return nil, nil, errNotUsed
	}
	return f.DownloadSharedFunc(ctx, token)
}
func (f *FakeFileService) SetVisibility(ctx context.Context, actorID, fileID uuid.UUID, public bool) (*file.File, error) {
	if f.SetVisibilityFunc == nil {
		return nil, errNotUsed
	}
	return f.SetVisibilityFunc(ctx, actorID, fileID, public)
}
func (f *FakeFileService) RenameFile(ctx context.Context, actorID, fileID uuid.UUID, name string, keepExt bool) (*file.File, error) {
	if f.RenameFileFunc == nil {
		return nil, errNotUsed
	}
	return f.RenameFileFunc(ctx, actorID, fileID, name, keepExt)
}
func (f *FakeFileService) DeleteFile(ctx context.Context, actorID, fileID uuid.UUID) error {
	if f.DeleteFileFunc == nil {
		return errNotUsed
	}
	return f.DeleteFileFunc(ctx, actorID, fileID)
}

type FakeUploadService struct {
	AdmitUploadFunc func(ctx context.Context, userID uuid.UUID, in file.Admission) (*file.File, error)
	UploadFileFunc  func(ctx context.Context, actorID uuid.UUID, in file.Upload) (*file.File, error)
}

func (f *FakeUploadService) AdmitUpload(ctx context.Context, userID uuid.UUID, in file.Admission) (*file.File, error) {
	if f.AdmitUploadFunc == nil {
		return nil, errNotUsed
	}
	return f.AdmitUploadFunc(ctx, userID, in)
}
func (f *FakeUploadService) UploadFile(ctx context.Context, actorID uuid.UUID, in file.Upload) (*file.File, error) {
	if f.UploadFileFunc == nil {
		return nil, errNotUsed
	}
	return f.UploadFileFunc(ctx, actorID, in)
}

type FakeAccountService struct {
	ProvisionAccountFunc func(ctx context.Context, userID uuid.UUID, email, name string) (*user.User, error)
	FetchAccountFunc     func(ctx context.Context, userID uuid.UUID) (*user.User, error)
	RequestDeletionFunc  func(ctx context.Context, userID uuid.UUID) error
}

func (f *FakeAccountService) ProvisionAccount(ctx context.Context, userID uuid.UUID, email, name string) (*user.User, error) {
	if f.ProvisionAccountFunc == nil {
		return nil, errNotUsed
	}
	return f.ProvisionAccountFunc(ctx, userID, email, name)
}
func (f *FakeAccountService) FetchAccount(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	if f.FetchAccountFunc == nil {
		return nil, errNotUsed
	}
	return f.FetchAccountFunc(ctx, userID)
}
func (f *FakeAccountService) RequestDeletion(ctx context.Context, userID uuid.UUID) error {
	if f.RequestDeletionFunc == nil {
		return errNotUsed
	}
	return f.RequestDeletionFunc(ctx, userID)
}

type FakeBackupService struct {
	RunBackupFunc     func(ctx context.Context) error
	TriggerBackupFunc func(ctx context.Context, actorID uuid.UUID) (*backup.Backup, error)
	ListBackupsFunc   func(ctx context.Context, actorID uuid.UUID) (backup.Backups, error)
	GetBackupFunc     func(ctx context.Context, actorID, backupID uuid.UUID) (*backup.Backup, error)
	DeleteBackupFunc  func(ctx context.Context, actorID, backupID uuid.UUID) error
}

func (f *FakeBackupService) RunBackup(ctx context.Context) error {
	if f.RunBackupFunc == nil {
		return errNotUsed
	}
	return f.RunBackupFunc(ctx)
}
func (f *FakeBackupService) TriggerBackup(ctx context.Context, actorID uuid.UUID) (*backup.Backup, error) {
	if f.TriggerBackupFunc == nil {
		return nil, errNotUsed
	}
	return f.TriggerBackupFunc(ctx, actorID)
}
func (f *FakeBackupService) ListBackups(ctx context.Context, actorID uuid.UUID) (backup.Backups, error) {
	if f.ListBackupsFunc == nil {
		return nil, errNotUsed
	}
	return f.ListBackupsFunc(ctx, actorID)
}
func (f *FakeBackupService) GetBackup(ctx context.Context, actorID, backupID uuid.UUID) (*backup.Backup, error) {
	if f.GetBackupFunc == nil {
		return nil, errNotUsed
	}
	return f.GetBackupFunc(ctx, actorID, backupID)
}
func (f *FakeBackupService) DeleteBackup(ctx context.Context, actorID, backupID uuid.UUID) error {
	if f.DeleteBackupFunc == nil {
		return errNotUsed
	}
	return f.DeleteBackupFunc(ctx, actorID, backupID)
}

type FakeTermsService struct {
	CurrentTermsFunc       func(ctx context.Context) (*policy.Policy, error)
	TermsStatusFunc        func(ctx context.Context, userID uuid.UUID) (*ports.TermsStatus, error)
	RespondToTermsFunc     func(ctx context.Context, userID uuid.UUID, accept bool) (*ports.TermsStatus, error)
	CheckTermsAcceptedFunc func(ctx context.Context, userID uuid.UUID) error
}

func (f *FakeTermsService) CurrentTerms(ctx context.Context) (*policy.Policy, error) {
	if f.CurrentTermsFunc == nil {
		return nil, errNotUsed
	}
	return f.CurrentTermsFunc(ctx)
}
func (f *FakeTermsService) TermsStatus(ctx context.Context, userID uuid.UUID) (*ports.TermsStatus, error) {
	if f.TermsStatusFunc == nil {
		return nil, errNotUsed
	}
	return f.TermsStatusFunc(ctx, userID)
}
func (f *FakeTermsService) RespondToTerms(ctx context.Context, userID uuid.UUID, accept bool) (*ports.TermsStatus, error) {
	if f.RespondToTermsFunc == nil {
		return nil, errNotUsed
	}
	return f.RespondToTermsFunc(ctx, userID, accept)
}

// CheckTermsAccepted lets every caller through unless a func is set.
func (f *FakeTermsService) CheckTermsAccepted(ctx context.Context, userID uuid.UUID) error {
	if f.CheckTermsAcceptedFunc == nil {
		return nil
	}
	return f.CheckTermsAcceptedFunc(ctx, userID)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

// fakes bundles the service doubles; nil members get an empty fake.
type fakes struct {
	folders  *FakeFolderService
	sharing  *FakeSharingService
	files    *FakeFileService
	uploads  *FakeUploadService
	accounts *FakeAccountService
	backups  *FakeBackupService
	terms    *FakeTermsService
	maxSize  uint64
}

type testEnv struct {
	router *gin.Engine
	actor  jwtSvc.Identity
	token  string
}

func setupRouter(t *testing.T, s fakes) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if s.folders == nil {
		s.folders = &FakeFolderService{}
	}
	if s.sharing == nil {
		s.sharing = &FakeSharingService{}
	}
	if s.files == nil {
		s.files = &FakeFileService{}
	}
	if s.uploads == nil {
		s.uploads = &FakeUploadService{}
	}
	if s.accounts == nil {
		s.accounts = &FakeAccountService{}
	}
	if s.backups == nil {
		s.backups = &FakeBackupService{}
	}
	if s.terms == nil {
		s.terms = &FakeTermsService{}
	}
	if s.maxSize == 0 {
		s.maxSize = 1 << 20
	}

	r := gin.New()
	logger := zap.NewNop()
	j := jwtSvc.New("test-secret")

	NewFolderController(r, s.folders, s.sharing, logger, j, s.terms)
	NewFileController(r, s.uploads, s.files, logger, j, s.terms, s.maxSize)
	NewShareController(r, s.sharing, s.files, fixedClock{testNow}, logger, j, s.terms)
	NewAccountController(r, s.accounts, logger, j)
	NewTermsController(r, s.terms, logger, j)
	NewBackupController(r, s.backups, logger, j, s.terms)

	actor := jwtSvc.Identity{UserID: uuid.New(), Email: "owner@example.com", Name: "Owner"}
	token, err := j.GenerateJWT(actor, time.Hour)
	require.NoError(t, err)

	return &testEnv{router: r, actor: actor, token: token}
}

func (e *testEnv) authHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + e.token}
}

func doReq(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Reader
	switch v := body.(type) {
	case nil:
		buf = bytes.NewReader(nil)
	case string:
		buf = bytes.NewReader([]byte(v))
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func errorOf(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	msg, _ := resp["error"].(string)
	return msg
}

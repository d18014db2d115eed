package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/audit"
	"filevault-api/internal/domain/backup"
	"filevault-api/internal/domain/file"
	"filevault-api/internal/domain/folder"
	"filevault-api/internal/domain/policy"
	"filevault-api/internal/domain/share"
	"filevault-api/internal/domain/user"
)

// memDB is an in-memory entity store. A transaction holds the mutex for its whole duration
// and restores a snapshot when fn fails, which mimics row locks plus rollback.
type memDB struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*user.User
	folders map[uuid.UUID]*folder.Folder
	files   map[uuid.UUID]*file.File
	shares  map[uuid.UUID]*share.FileShare
	grants  map[uuid.UUID]*share.FolderGrant
}

func newMemDB() *memDB {
	return &memDB{
		users:   map[uuid.UUID]*user.User{},
		folders: map[uuid.UUID]*folder.Folder{},
		files:   map[uuid.UUID]*file.File{},
		shares:  map[uuid.UUID]*share.FileShare{},
		grants:  map[uuid.UUID]*share.FolderGrant{},
	}
}

type memSnapshot struct {
	users   map[uuid.UUID]user.User
	folders map[uuid.UUID]folder.Folder
	files   map[uuid.UUID]file.File
	shares  map[uuid.UUID]share.FileShare
	grants  map[uuid.UUID]share.FolderGrant
}

func (db *memDB) snapshot() memSnapshot {
	s := memSnapshot{
		users:   make(map[uuid.UUID]user.User, len(db.users)),
		folders: make(map[uuid.UUID]folder.Folder, len(db.folders)),
		files:   make(map[uuid.UUID]file.File, len(db.files)),
		shares:  make(map[uuid.UUID]share.FileShare, len(db.shares)),
		grants:  make(map[uuid.UUID]share.FolderGrant, len(db.grants)),
	}
	for k, v := range db.users {
		s.users[k] = *v
	}
	for k, v := range db.folders {
		s.folders[k] = *v
	}
	for k, v := range db.files {
		s.files[k] = *v
	}
	for k, v := range db.shares {
		s.shares[k] = *v
	}
	for k, v := range db.grants {
		s.grants[k] = *v
	}
	return s
}

func (db *memDB) restore(s memSnapshot) {
	db.users = make(map[uuid.UUID]*user.User, len(s.users))
	for k, v := range s.users {
		v := v
		db.users[k] = &v
	}
	db.folders = make(map[uuid.UUID]*folder.Folder, len(s.folders))
	for k, v := range s.folders {
		v := v
		db.folders[k] = &v
	}
	db.files = make(map[uuid.UUID]*file.File, len(s.files))
	for k, v := range s.files {
		v := v
		db.files[k] = &v
	}
	db.shares = make(map[uuid.UUID]*share.FileShare, len(s.shares))
	for k, v := range s.shares {
		v := v
		db.shares[k] = &v
	}
	db.grants = make(map[uuid.UUID]*share.FolderGrant, len(s.grants))
	for k, v := range s.grants {
		v := v
		db.grants[k] = &v
	}
}

// memStore binds the repositories either to the shared db (each call locks) or to a running
// transaction (the caller already holds the lock).
type memStore struct {
	db   *memDB
	inTx bool
}

func (s *memStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.db.mu.Lock()
	return s.db.mu.Unlock
}

func (s *memStore) Users() user.Repository { return memUsers{s} }
func (s *memStore) Folders() folder.Repository { return memFolders{s} }
func (s *memStore) Files() file.Repository { return memFiles{s} }
func (s *memStore) FileShares() share.FileShareRepository { return memShares{s} }
func (s *memStore) FolderGrants() share.FolderGrantRepository { return memGrants{s} }

type memTxManager struct {
	*memStore
	txs     int
	failErr error
}

func newMemTxManager(db *memDB) *memTxManager {
	return &memTxManager{memStore: &memStore{db: db}}
}

func (m *memTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	m.txs++

	if m.failErr != nil {
		return m.failErr
	}

	snap := m.db.snapshot()
	if err := fn(ctx, &memStore{db: m.db, inTx: true}); err != nil {
		m.db.restore(snap)
		return err
	}
	return nil
}

type memUsers struct{ s *memStore }

func (r memUsers) FetchUserByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	defer r.s.lock()()
	if u, ok := r.s.db.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (r memUsers) FetchUserByEmail(_ context.Context, email string) (*user.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.db.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r memUsers) CreateUser(_ context.Context, req user.User) (*user.User, error) {
	defer r.s.lock()()
	if req.UUID == uuid.Nil {
		req.UUID = uuid.New()
	}
	for _, u := range r.s.db.users {
		if strings.EqualFold(u.Email, req.Email) {
			return nil, user.ErrEmailTaken
		}
	}
	r.s.db.users[req.UUID] = &req
	c := req
	return &c, nil
}

func (r memUsers) LockUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.FetchUserByID(ctx, id)
}

func (r memUsers) AddUsedBytes(_ context.Context, id uuid.UUID, delta int64) error {
	defer r.s.lock()()
	u, ok := r.s.db.users[id]
	if !ok {
		return nil
	}
	next := int64(u.UsedBytes) + delta
	if next < 0 {
		next = 0
	}
	u.UsedBytes = uint64(next)
	return nil
}

func (r memUsers) MarkDeletionRequested(_ context.Context, id uuid.UUID, at time.Time) error {
	defer r.s.lock()()
	if u, ok := r.s.db.users[id]; ok {
		u.DeletionRequested = true
		u.DeletionRequestedAt = &at
	}
	return nil
}

func (r memUsers) SetTermsAcceptance(_ context.Context, id uuid.UUID, version string, at *time.Time) error {
	defer r.s.lock()()
	if u, ok := r.s.db.users[id]; ok {
		u.TermsVersion = version
		u.TermsAcceptedAt = at
	}
	return nil
}

func (r memUsers) FetchPurgeableUsers(_ context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	defer r.s.lock()()
	var out []uuid.UUID
	for _, u := range r.s.db.users {
		if u.DeletionRequested && u.DeletionRequestedAt != nil && !u.DeletionRequestedAt.After(cutoff) {
			out = append(out, u.UUID)
		}
	}
	return out, nil
}

func (r memUsers) PurgeUser(_ context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	defer r.s.lock()()
	db := r.s.db
	u, ok := db.users[id]
	if !ok || !u.DeletionRequested || u.DeletionRequestedAt == nil || u.DeletionRequestedAt.After(cutoff) {
		return false, nil
	}
	for fid, f := range db.folders {
		if f.OwnerID == id {
			delete(db.folders, fid)
		}
	}
	for fid, f := range db.files {
		if f.OwnerID == id {
			delete(db.files, fid)
		}
	}
	for sid, s := range db.shares {
		if s.CreatedBy == id {
			delete(db.shares, sid)
		}
	}
	for gid, g := range db.grants {
		if g.OwnerID == id || g.GranteeID == id {
			delete(db.grants, gid)
		}
	}
	delete(db.users, id)
	return true, nil
}

type memFolders struct{ s *memStore }

func (r memFolders) FetchFolderByID(_ context.Context, id uuid.UUID) (*folder.Folder, error) {
	defer r.s.lock()()
	if f, ok := r.s.db.folders[id]; ok {
		c := *f
		return &c, nil
	}
	return nil, nil
}

func (r memFolders) collect(keep func(*folder.Folder) bool) folder.Folders {
	out := folder.Folders{}
	for _, f := range r.s.db.folders {
		if keep(f) {
			c := *f
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (r memFolders) FetchRootFolders(_ context.Context, ownerID uuid.UUID) (folder.Folders, error) {
	defer r.s.lock()()
	return r.collect(func(f *folder.Folder) bool {
		return f.OwnerID == ownerID && f.ParentID == nil && !f.Deleted
	}), nil
}

func (r memFolders) FetchChildFolders(_ context.Context, parentID uuid.UUID, withDeleted bool) (folder.Folders, error) {
	defer r.s.lock()()
	return r.collect(func(f *folder.Folder) bool {
		return f.ParentID != nil && *f.ParentID == parentID && (withDeleted || !f.Deleted)
	}), nil
}

func (r memFolders) FetchOwnerFolders(_ context.Context, ownerID uuid.UUID) (folder.Folders, error) {
	defer r.s.lock()()
	return r.collect(func(f *folder.Folder) bool { return f.OwnerID == ownerID }), nil
}

func (r memFolders) ExistsActiveName(
	_ context.Context,
	ownerID uuid.UUID,
	parentID *uuid.UUID,
	name string,
	exclude *uuid.UUID,
) (bool, error) {
	defer r.s.lock()()
	return r.nameTaken(ownerID, parentID, name, exclude), nil
}

func (r memFolders) nameTaken(ownerID uuid.UUID, parentID *uuid.UUID, name string, exclude *uuid.UUID) bool {
	for _, f := range r.s.db.folders {
		if f.Deleted || f.OwnerID != ownerID || f.Name != name || !sameID(f.ParentID, parentID) {
			continue
		}
		if exclude != nil && f.UUID == *exclude {
			continue
		}
		return true
	}
	return false
}

func (r memFolders) CreateFolder(_ context.Context, req *folder.Folder) (*folder.Folder, error) {
	defer r.s.lock()()
	if r.nameTaken(req.OwnerID, req.ParentID, req.Name, nil) {
		return nil, folder.ErrDuplicateName
	}
	c := *req
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	r.s.db.folders[c.UUID] = &c
	out := c
	return &out, nil
}

func (r memFolders) LockFolder(ctx context.Context, id uuid.UUID) (*folder.Folder, error) {
	return r.FetchFolderByID(ctx, id)
}

func (r memFolders) LockFolderShared(ctx context.Context, id uuid.UUID) (*folder.Folder, error) {
	return r.FetchFolderByID(ctx, id)
}

func (r memFolders) UpdatePlacement(_ context.Context, id uuid.UUID, parentID *uuid.UUID, name, path string) error {
	defer r.s.lock()()
	if f, ok := r.s.db.folders[id]; ok {
		f.ParentID = parentID
		f.Name = name
		f.Path = path
	}
	return nil
}

func (r memFolders) UpdatePath(_ context.Context, id uuid.UUID, path string) error {
	defer r.s.lock()()
	if f, ok := r.s.db.folders[id]; ok {
		f.Path = path
	}
	return nil
}

func (r memFolders) MarkDeleted(_ context.Context, id uuid.UUID, at time.Time) error {
	defer r.s.lock()()
	if f, ok := r.s.db.folders[id]; ok {
		f.Deleted = true
		f.DeletedAt = &at
	}
	return nil
}

func (r memFolders) FetchPurgeableFolders(_ context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	defer r.s.lock()()
	var fs folder.Folders
	for _, f := range r.s.db.folders {
		if f.Deleted && f.DeletedAt != nil && !f.DeletedAt.After(cutoff) {
			fs = append(fs, f)
		}
	}
	sort.Slice(fs, func(i, j int) bool { return len(fs[i].Path) > len(fs[j].Path) })
	out := make([]uuid.UUID, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.UUID)
	}
	return out, nil
}

func (r memFolders) PurgeFolder(_ context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	defer r.s.lock()()
	db := r.s.db
	f, ok := db.folders[id]
	if !ok || !f.Deleted || f.DeletedAt == nil || f.DeletedAt.After(cutoff) {
		return false, nil
	}
	for _, c := range db.folders {
		if c.ParentID != nil && *c.ParentID == id {
			return false, nil
		}
	}
	for gid, g := range db.grants {
		if g.FolderID == id {
			delete(db.grants, gid)
		}
	}
	delete(db.folders, id)
	return true, nil
}

type memFiles struct{ s *memStore }

func (r memFiles) FetchFileByID(_ context.Context, id uuid.UUID) (*file.File, error) {
	defer r.s.lock()()
	if f, ok := r.s.db.files[id]; ok {
		c := *f
		return &c, nil
	}
	return nil, nil
}

func (r memFiles) collect(keep func(*file.File) bool) file.Files {
	out := file.Files{}
	for _, f := range r.s.db.files {
		if keep(f) {
			c := *f
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r memFiles) FetchFolderFiles(_ context.Context, folderID uuid.UUID) (file.Files, error) {
	defer r.s.lock()()
	return r.collect(func(f *file.File) bool {
		return !f.Deleted && f.FolderID != nil && *f.FolderID == folderID
	}), nil
}

func (r memFiles) FetchRootFiles(_ context.Context, ownerID uuid.UUID) (file.Files, error) {
	defer r.s.lock()()
	return r.collect(func(f *file.File) bool {
		return !f.Deleted && f.FolderID == nil && f.OwnerID == ownerID
	}), nil
}

func (r memFiles) FetchActiveFiles(_ context.Context) (file.Files, error) {
	defer r.s.lock()()
	return r.collect(func(f *file.File) bool { return !f.Deleted }), nil
}

func (r memFiles) ExistsActiveName(_ context.Context, ownerID uuid.UUID, folderID *uuid.UUID, name string) (bool, error) {
	defer r.s.lock()()
	return r.nameTaken(ownerID, folderID, name), nil
}

func (r memFiles) nameTaken(ownerID uuid.UUID, folderID *uuid.UUID, name string) bool {
	for _, f := range r.s.db.files {
		if !f.Deleted && f.OwnerID == ownerID && f.Name == name && sameID(f.FolderID, folderID) {
			return true
		}
	}
	return false
}

func (r memFiles) CreateFile(_ context.Context, req *file.File) (*file.File, error) {
	defer r.s.lock()()
	if r.nameTaken(req.OwnerID, req.FolderID, req.Name) {
		return nil, file.ErrDuplicateName
	}
	c := *req
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	r.s.db.files[c.UUID] = &c
	out := c
	return &out, nil
}

func (r memFiles) UpdateVisibility(_ context.Context, id uuid.UUID, public bool) error {
	defer r.s.lock()()
	if f, ok := r.s.db.files[id]; ok {
		f.Public = public
	}
	return nil
}

func (r memFiles) Rename(_ context.Context, id uuid.UUID, name string) error {
	defer r.s.lock()()
	f, ok := r.s.db.files[id]
	if !ok || f.Deleted {
		return nil
	}
	for _, o := range r.s.db.files {
		if o.UUID != id && !o.Deleted && o.OwnerID == f.OwnerID && o.Name == name && sameID(o.FolderID, f.FolderID) {
			return file.ErrDuplicateName
		}
	}
	f.Name = name
	return nil
}

func (r memFiles) LockFile(ctx context.Context, id uuid.UUID) (*file.File, error) {
	return r.FetchFileByID(ctx, id)
}

func (r memFiles) MarkDeleted(_ context.Context, id uuid.UUID, at time.Time) error {
	defer r.s.lock()()
	if f, ok := r.s.db.files[id]; ok {
		f.Deleted = true
		f.DeletedAt = &at
	}
	return nil
}

func (r memFiles) markWhere(at time.Time, match func(*file.File) bool) file.Releases {
	var out file.Releases
	for _, f := range r.s.db.files {
		if f.Deleted || !match(f) {
			continue
		}
		f.Deleted = true
		f.DeletedAt = &at
		out = append(out, file.Release{OwnerID: f.OwnerID, SizeBytes: f.SizeBytes})
	}
	return out
}

func (r memFiles) MarkFolderFilesDeleted(_ context.Context, folderID uuid.UUID, at time.Time) (file.Releases, error) {
	defer r.s.lock()()
	return r.markWhere(at, func(f *file.File) bool { return f.FolderID != nil && *f.FolderID == folderID }), nil
}

func (r memFiles) MarkOwnerFilesDeleted(_ context.Context, ownerID uuid.UUID, at time.Time) (file.Releases, error) {
	defer r.s.lock()()
	return r.markWhere(at, func(f *file.File) bool { return f.OwnerID == ownerID }), nil
}

func (r memFiles) FetchPurgeableFiles(_ context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	defer r.s.lock()()
	var out []uuid.UUID
	for _, f := range r.s.db.files {
		if f.Deleted && f.DeletedAt != nil && !f.DeletedAt.After(cutoff) {
			out = append(out, f.UUID)
		}
	}
	return out, nil
}

func (r memFiles) drop(id uuid.UUID) string {
	db := r.s.db
	stored := db.files[id].StoredName
	for sid, s := range db.shares {
		if s.FileID == id {
			delete(db.shares, sid)
		}
	}
	delete(db.files, id)
	return stored
}

func (r memFiles) PurgeFile(_ context.Context, id uuid.UUID, cutoff time.Time) (string, bool, error) {
	defer r.s.lock()()
	f, ok := r.s.db.files[id]
	if !ok || !f.Deleted || f.DeletedAt == nil || f.DeletedAt.After(cutoff) {
		return "", false, nil
	}
	return r.drop(id), true, nil
}

func (r memFiles) PurgeFolderFiles(_ context.Context, folderID uuid.UUID) ([]string, error) {
	defer r.s.lock()()
	var out []string
	for id, f := range r.s.db.files {
		if f.FolderID != nil && *f.FolderID == folderID {
			out = append(out, r.drop(id))
		}
	}
	return out, nil
}

func (r memFiles) PurgeOwnerFiles(_ context.Context, ownerID uuid.UUID) ([]string, error) {
	defer r.s.lock()()
	var out []string
	for id, f := range r.s.db.files {
		inOwned := false
		if f.FolderID != nil {
			if parent, ok := r.s.db.folders[*f.FolderID]; ok && parent.OwnerID == ownerID {
				inOwned = true
			}
		}
		if f.OwnerID == ownerID || inOwned {
			out = append(out, r.drop(id))
		}
	}
	return out, nil
}

type memShares struct{ s *memStore }

func (r memShares) CreateFileShare(_ context.Context, req *share.FileShare) (*share.FileShare, error) {
	defer r.s.lock()()
	c := *req
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	r.s.db.shares[c.UUID] = &c
	out := c
	return &out, nil
}

func (r memShares) byToken(token string) *share.FileShare {
	for _, s := range r.s.db.shares {
		if s.Token == token {
			return s
		}
	}
	return nil
}

func (r memShares) FetchFileShareByToken(_ context.Context, token string) (*share.FileShare, error) {
	defer r.s.lock()()
	if s := r.byToken(token); s != nil {
		c := *s
		return &c, nil
	}
	return nil, nil
}

func (r memShares) ConsumeFileShare(_ context.Context, token string, now time.Time) (*share.FileShare, error) {
	defer r.s.lock()()
	s := r.byToken(token)
	if s == nil || s.Status(now) != share.TokenUsable {
		return nil, nil
	}
	if f, ok := r.s.db.files[s.FileID]; !ok || f.Deleted {
		return nil, nil
	}
	s.Accesses++
	c := *s
	return &c, nil
}

func (r memShares) DeactivateOwnerShares(_ context.Context, ownerID uuid.UUID) (int64, error) {
	defer r.s.lock()()
	var n int64
	for _, s := range r.s.db.shares {
		if s.CreatedBy == ownerID && s.Active {
			s.Active = false
			n++
		}
	}
	return n, nil
}

type memGrants struct{ s *memStore }

func (r memGrants) active(folderID, granteeID uuid.UUID) *share.FolderGrant {
	for _, g := range r.s.db.grants {
		if g.Active && g.FolderID == folderID && g.GranteeID == granteeID {
			return g
		}
	}
	return nil
}

func (r memGrants) CreateGrant(_ context.Context, req *share.FolderGrant) (*share.FolderGrant, error) {
	defer r.s.lock()()
	if r.active(req.FolderID, req.GranteeID) != nil {
		return nil, share.ErrDuplicateGrant
	}
	c := *req
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	r.s.db.grants[c.UUID] = &c
	out := c
	return &out, nil
}

func (r memGrants) FetchActiveGrant(_ context.Context, folderID, granteeID uuid.UUID) (*share.FolderGrant, error) {
	defer r.s.lock()()
	g := r.active(folderID, granteeID)
	if g == nil {
		return nil, nil
	}
	if u, ok := r.s.db.users[granteeID]; !ok || u.DeletionRequested {
		return nil, nil
	}
	c := *g
	return &c, nil
}

func (r memGrants) FetchGranteeGrants(_ context.Context, granteeID uuid.UUID) (share.FolderGrants, error) {
	defer r.s.lock()()
	out := share.FolderGrants{}
	for _, g := range r.s.db.grants {
		if g.Active && g.GranteeID == granteeID {
			c := *g
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memGrants) DeactivateGrant(_ context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	if g, ok := r.s.db.grants[id]; ok {
		g.Active = false
	}
	return nil
}

func (r memGrants) DeactivateUserGrants(_ context.Context, userID uuid.UUID) (int64, error) {
	defer r.s.lock()()
	var n int64
	for _, g := range r.s.db.grants {
		if g.Active && (g.OwnerID == userID || g.GranteeID == userID) {
			g.Active = false
			n++
		}
	}
	return n, nil
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// collaborators

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemBlobs() *memBlobs { return &memBlobs{objects: map[string][]byte{}} }

// Put reads at most size bytes, as the object store does.
func (b *memBlobs) Put(_ context.Context, key string, r io.Reader, size int64, _ string) error {
	if b.putErr != nil {
		return b.putErr
	}
	data, err := io.ReadAll(io.LimitReader(r, size))
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *memBlobs) Get(_ context.Context, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *memBlobs) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *memBlobs) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}

func (b *memBlobs) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *recordingSink) Emit(e audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Action)
	}
	return out
}

type fakeLocker struct {
	held    bool
	err     error
	acquire int
}

func (l *fakeLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held {
		return nil, false, nil
	}
	l.acquire++
	return func() {}, true, nil
}

type fakePolicies struct {
	p   *policy.Policy
	err error
}

func (f fakePolicies) FetchActivePolicy(context.Context, string) (*policy.Policy, error) {
	return f.p, f.err
}

type memBackups struct {
	created []*backup.Backup
}

func (m *memBackups) CreateBackup(_ context.Context, req *backup.Backup) (*backup.Backup, error) {
	c := *req
	c.UUID = uuid.New()
	m.created = append(m.created, &c)
	return &c, nil
}

func (m *memBackups) FetchUserBackups(_ context.Context, userID uuid.UUID) (backup.Backups, error) {
	out := make(backup.Backups, 0)
	for i := len(m.created) - 1; i >= 0; i-- {
		if b := m.created[i]; b.UserID != nil && *b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBackups) FetchUserBackup(_ context.Context, id, userID uuid.UUID) (*backup.Backup, error) {
	for _, b := range m.created {
		if b.UUID == id && b.UserID != nil && *b.UserID == userID {
			return b, nil
		}
	}
	return nil, nil
}

func (m *memBackups) DeleteUserBackup(_ context.Context, id, userID uuid.UUID) (bool, error) {
	for i, b := range m.created {
		if b.UUID == id && b.UserID != nil && *b.UserID == userID {
			m.created = append(m.created[:i], m.created[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// fixture wires every service against one memDB.
type fixture struct {
	db    *memDB
	tm    *memTxManager
	clock *fakeClock
	blobs *memBlobs
	sink  *recordingSink

	access    ports.AccessService
	upload    ports.UploadService
	sharing   ports.SharingService
	lifecycle ports.LifecycleService
	folders   ports.FolderService
	files     ports.FileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newMemDB()
	fx := &fixture{
		db:    db,
		tm:    newMemTxManager(db),
		clock: newFakeClock(),
		blobs: newMemBlobs(),
		sink:  &recordingSink{},
	}
	counter := newTestCounter()
	logger := zap.NewNop()

	fx.access = NewAccessService(fx.tm)
	fx.upload = NewUploadService(fx.tm, fx.blobs, fx.clock, fx.sink, logger, counter)
	fx.sharing = NewSharingService(fx.tm, fx.clock, fx.sink, counter)
	fx.lifecycle = NewLifecycleService(fx.tm, fx.blobs, fx.clock, fx.sink, logger, counter)
	fx.folders = NewFolderService(fx.tm, fx.lifecycle, fx.sharing, fx.clock, fx.sink, counter)
	fx.files = NewFileService(fx.tm, fx.blobs, fx.sharing, fx.lifecycle, fx.clock, fx.sink, logger, counter)

	return fx
}

func newTestCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "filevault_test",
		Name:      "general_counters",
	}, []string{"result"})
}

func (fx *fixture) addUser(t *testing.T, email string, quota uint64) *user.User {
	t.Helper()
	u, err := fx.tm.Users().CreateUser(context.Background(), user.User{
		Email:      email,
		Name:       strings.Split(email, "@")[0],
		QuotaBytes: quota,
		CreatedAt:  fx.clock.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func (fx *fixture) mkdir(t *testing.T, owner *user.User, parent *folder.Folder, name string) *folder.Folder {
	t.Helper()
	var parentID *uuid.UUID
	if parent != nil {
		parentID = &parent.UUID
	}
	f, err := fx.folders.CreateFolder(context.Background(), owner.UUID, parentID, name)
	if err != nil {
		t.Fatalf("mkdir %s: %v", name, err)
	}
	return f
}

func (fx *fixture) put(t *testing.T, owner *user.User, parent *folder.Folder, name, content string) *file.File {
	t.Helper()
	var parentID *uuid.UUID
	if parent != nil {
		parentID = &parent.UUID
	}
	f, err := fx.upload.UploadFile(context.Background(), owner.UUID, file.Upload{
		FolderID: parentID,
		Name:     name,
		Size:     int64(len(content)),
		Content:  strings.NewReader(content),
	})
	if err != nil {
		t.Fatalf("upload %s: %v", name, err)
	}
	return f
}

func (fx *fixture) folder(id uuid.UUID) *folder.Folder {
	f, _ := fx.tm.Folders().FetchFolderByID(context.Background(), id)
	return f
}

func (fx *fixture) file(id uuid.UUID) *file.File {
	f, _ := fx.tm.Files().FetchFileByID(context.Background(), id)
	return f
}

func (fx *fixture) user(id uuid.UUID) *user.User {
	u, _ := fx.tm.Users().FetchUserByID(context.Background(), id)
	return u
}

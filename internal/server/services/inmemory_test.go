package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/files"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/folders"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/users"
	"github.com/dmitrijs2005/docvault/internal/server/sessions"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sessionsRegistry() *sessions.Registry {
	return sessions.NewRegistry(24 * time.Hour)
}

// In-memory repositories backing service tests. They ignore the DBTX handle,
// so transactional rollback is not modeled; tests assert on returned errors
// for failure paths.

type fakeFolderRepo struct {
	mu     sync.Mutex
	rows   map[int64]*models.Folder
	nextID int64
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{rows: map[int64]*models.Folder{}, nextID: 1}
}

func (r *fakeFolderRepo) add(id int64, name string, parentID *int64) *models.Folder {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := &models.Folder{ID: id, Name: name, ParentID: parentID, CreatedBy: 1}
	r.rows[id] = f
	if id >= r.nextID {
		r.nextID = id + 1
	}
	return f
}

func (r *fakeFolderRepo) Create(ctx context.Context, name string, parentID *int64, createdBy int64) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := &models.Folder{ID: r.nextID, Name: name, ParentID: parentID, CreatedBy: createdBy}
	r.rows[f.ID] = f
	r.nextID++
	return f, nil
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFolderRepo) ListByParent(ctx context.Context, parentID *int64, excluded []int64) ([]*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	skip := map[int64]struct{}{}
	for _, id := range excluded {
		skip[id] = struct{}{}
	}
	var out []*models.Folder
	for _, f := range r.rows {
		if !sameParent(f.ParentID, parentID) {
			continue
		}
		if _, ok := skip[f.ID]; ok {
			continue
		}
		cp := *f
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFolderRepo) Rename(ctx context.Context, id int64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	f.Name = name
	return nil
}

func (r *fakeFolderRepo) UpdateParentBulk(ctx context.Context, ids []int64, parentID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if f, ok := r.rows[id]; ok {
			f.ParentID = parentID
		}
	}
	return nil
}

func (r *fakeFolderRepo) DescendantIDs(ctx context.Context, roots []int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[int64]struct{}{}
	queue := append([]int64(nil), roots...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := seen[id]; ok {
			continue
		}
		if _, ok := r.rows[id]; !ok {
			continue
		}
		seen[id] = struct{}{}
		for _, f := range r.rows {
			if f.ParentID != nil && *f.ParentID == id {
				queue = append(queue, f.ID)
			}
		}
	}
	out := make([]int64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *fakeFolderRepo) DeleteByIDs(ctx context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.rows, id)
	}
	return nil
}

type fakeFileRepo struct {
	mu     sync.Mutex
	rows   map[int64]*models.File
	nextID int64
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{rows: map[int64]*models.File{}, nextID: 1}
}

func (r *fakeFileRepo) add(id int64, name, key string, folderID *int64) *models.File {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := &models.File{ID: id, Name: name, StorageKey: key, FolderID: folderID, CreatedBy: 1}
	r.rows[id] = f
	if id >= r.nextID {
		r.nextID = id + 1
	}
	return f
}

func (r *fakeFileRepo) Create(ctx context.Context, file *models.File) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.StorageKey == file.StorageKey {
			return nil, common.ErrorInternal
		}
	}
	cp := *file
	cp.ID = r.nextID
	r.rows[cp.ID] = &cp
	r.nextID++
	out := cp
	return &out, nil
}

func (r *fakeFileRepo) GetByID(ctx context.Context, id int64) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFileRepo) ListByFolder(ctx context.Context, folderID *int64) ([]*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.File
	for _, f := range r.rows {
		if sameParent(f.FolderID, folderID) {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFileRepo) ListRecent(ctx context.Context, limit, offset int) ([]*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.File
	for _, f := range r.rows {
		cp := *f
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeFileRepo) Rename(ctx context.Context, id int64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	f.Name = name
	return nil
}

func (r *fakeFileRepo) UpdateFolderBulk(ctx context.Context, ids []int64, folderID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if f, ok := r.rows[id]; ok {
			f.FolderID = folderID
		}
	}
	return nil
}

func (r *fakeFileRepo) StorageKeysByFileIDs(ctx context.Context, ids []int64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []string
	for _, id := range ids {
		if f, ok := r.rows[id]; ok {
			keys = append(keys, f.StorageKey)
		}
	}
	return keys, nil
}

func (r *fakeFileRepo) StorageKeysByFolderIDs(ctx context.Context, folderIDs []int64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in := map[int64]struct{}{}
	for _, id := range folderIDs {
		in[id] = struct{}{}
	}
	var keys []string
	for _, f := range r.rows {
		if f.FolderID == nil {
			continue
		}
		if _, ok := in[*f.FolderID]; ok {
			keys = append(keys, f.StorageKey)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *fakeFileRepo) DeleteByIDs(ctx context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.rows, id)
	}
	return nil
}

func (r *fakeFileRepo) DeleteByFolderIDs(ctx context.Context, folderIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	in := map[int64]struct{}{}
	for _, id := range folderIDs {
		in[id] = struct{}{}
	}
	for id, f := range r.rows {
		if f.FolderID == nil {
			continue
		}
		if _, ok := in[*f.FolderID]; ok {
			delete(r.rows, id)
		}
	}
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	rows   map[string]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: map[string]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	cp.ID = r.nextID
	r.rows[cp.Login] = &cp
	r.nextID++
	out := cp
	return &out, nil
}

func (r *fakeUserRepo) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeRM struct {
	folderRepo *fakeFolderRepo
	fileRepo   *fakeFileRepo
	userRepo   *fakeUserRepo
}

func newFakeRM() *fakeRM {
	return &fakeRM{
		folderRepo: newFakeFolderRepo(),
		fileRepo:   newFakeFileRepo(),
		userRepo:   newFakeUserRepo(),
	}
}

func (m *fakeRM) Users(db dbx.DBTX) users.Repository     { return m.userRepo }
func (m *fakeRM) Folders(db dbx.DBTX) folders.Repository { return m.folderRepo }
func (m *fakeRM) Files(db dbx.DBTX) files.Repository     { return m.fileRepo }
func (m *fakeRM) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// fakeGateway records calls and can be primed with errors per operation.
type fakeGateway struct {
	mu sync.Mutex

	singleURLs  int
	partURLs    []int32
	initiated   int
	completed   [][]models.CompletedPart
	aborted     []string
	deletedKeys []string
	getURLs     []string
	completeErr error
	batchDelErr error
	nextSession string
	nextKey     string
}

func (g *fakeGateway) IssueSingleURL(ctx context.Context, contentType string) (string, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.singleURLs++
	return "http://signed/put", g.nextKey, nil
}

func (g *fakeGateway) InitiateSession(ctx context.Context, contentType string) (string, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initiated++
	return g.nextSession, g.nextKey, nil
}

func (g *fakeGateway) IssuePartURL(ctx context.Context, storageKey, sessionID string, partNumber int32) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.partURLs = append(g.partURLs, partNumber)
	return "http://signed/part", nil
}

func (g *fakeGateway) CompleteSession(ctx context.Context, storageKey, sessionID string, parts []models.CompletedPart) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.completeErr != nil {
		return g.completeErr
	}
	g.completed = append(g.completed, parts)
	return nil
}

func (g *fakeGateway) AbortSession(ctx context.Context, storageKey, sessionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.aborted = append(g.aborted, storageKey+"/"+sessionID)
	return nil
}

func (g *fakeGateway) BatchDelete(ctx context.Context, storageKeys []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.batchDelErr != nil {
		return g.batchDelErr
	}
	g.deletedKeys = append(g.deletedKeys, storageKeys...)
	return nil
}

func (g *fakeGateway) IssueGetURL(ctx context.Context, storageKey string, download bool, name string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.getURLs = append(g.getURLs, storageKey)
	return "http://signed/get", nil
}

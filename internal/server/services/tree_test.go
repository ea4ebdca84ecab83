package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

func ptr(v int64) *int64 { return &v }

func newTreeFixture(t *testing.T) (*TreeService, *fakeRM, *fakeGateway, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rm := newFakeRM()
	gw := &fakeGateway{}
	svc := NewTreeService(db, rm, gw, testLogger())
	return svc, rm, gw, mock
}

func TestTreeList(t *testing.T) {
	svc, rm, _, _ := newTreeFixture(t)
	ctx := context.Background()

	rm.folderRepo.add(1, "docs", nil)
	rm.folderRepo.add(2, "img", ptr(1))
	rm.fileRepo.add(10, "a.pdf", "k/a", ptr(1))
	rm.fileRepo.add(11, "b.pdf", "k/b", nil)

	listing, err := svc.List(ctx, ptr(1))
	require.NoError(t, err)
	require.Len(t, listing.Folders, 1)
	assert.Equal(t, "img", listing.Folders[0].Name)
	require.Len(t, listing.Files, 1)
	assert.Equal(t, "a.pdf", listing.Files[0].Name)
	require.Len(t, listing.Breadcrumbs, 2)
	assert.Nil(t, listing.Breadcrumbs[0].ID)
	assert.Equal(t, RootName, listing.Breadcrumbs[0].Name)
	assert.Equal(t, "docs", listing.Breadcrumbs[1].Name)
}

func TestBreadcrumbsDeterministic(t *testing.T) {
	svc, rm, _, _ := newTreeFixture(t)
	ctx := context.Background()

	rm.folderRepo.add(1, "a", nil)
	rm.folderRepo.add(2, "b", ptr(1))
	rm.folderRepo.add(3, "c", ptr(2))

	first, err := svc.Breadcrumbs(ctx, ptr(3))
	require.NoError(t, err)
	second, err := svc.Breadcrumbs(ctx, ptr(3))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.Len(t, first, 4)
	assert.Equal(t, RootName, first[0].Name)
	assert.Equal(t, "a", first[1].Name)
	assert.Equal(t, "b", first[2].Name)
	assert.Equal(t, "c", first[3].Name)
}

func TestBreadcrumbsRootOnly(t *testing.T) {
	svc, _, _, _ := newTreeFixture(t)

	crumbs, err := svc.Breadcrumbs(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, crumbs, 1)
	assert.Nil(t, crumbs[0].ID)
	assert.Equal(t, RootName, crumbs[0].Name)
}

func TestDeleteCascades(t *testing.T) {
	svc, rm, gw, mock := newTreeFixture(t)
	ctx := context.Background()

	// docs/ -> img/ -> deep/, plus a loose file.
	rm.folderRepo.add(1, "docs", nil)
	rm.folderRepo.add(2, "img", ptr(1))
	rm.folderRepo.add(3, "deep", ptr(2))
	rm.folderRepo.add(4, "untouched", nil)
	rm.fileRepo.add(10, "a.pdf", "k/a", ptr(1))
	rm.fileRepo.add(11, "b.pdf", "k/b", ptr(3))
	rm.fileRepo.add(12, "loose.pdf", "k/loose", nil)
	rm.fileRepo.add(13, "other.pdf", "k/other", ptr(4))

	mock.ExpectBegin()
	mock.ExpectCommit()

	removed, err := svc.Delete(ctx, []models.Target{
		{ID: 1, Kind: models.TargetFolder},
		{ID: 12, Kind: models.TargetFile},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	assert.ElementsMatch(t, []string{"k/loose", "k/a", "k/b"}, gw.deletedKeys)

	_, err = rm.folderRepo.GetByID(ctx, 1)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = rm.folderRepo.GetByID(ctx, 3)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = rm.fileRepo.GetByID(ctx, 11)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	// Siblings survive.
	_, err = rm.folderRepo.GetByID(ctx, 4)
	assert.NoError(t, err)
	_, err = rm.fileRepo.GetByID(ctx, 13)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteStorageFailureRollsBack(t *testing.T) {
	svc, rm, gw, mock := newTreeFixture(t)
	ctx := context.Background()

	rm.fileRepo.add(10, "a.pdf", "k/a", nil)
	gw.batchDelErr = errors.New("s3 down")

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Delete(ctx, []models.Target{{ID: 10, Kind: models.TargetFile}})
	require.Error(t, err)
	assert.Empty(t, gw.deletedKeys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNothing(t *testing.T) {
	svc, _, gw, mock := newTreeFixture(t)

	removed, err := svc.Delete(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Empty(t, gw.deletedKeys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveReparents(t *testing.T) {
	svc, rm, _, mock := newTreeFixture(t)
	ctx := context.Background()

	rm.folderRepo.add(1, "docs", nil)
	rm.folderRepo.add(2, "img", nil)
	rm.fileRepo.add(10, "a.pdf", "k/a", nil)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := svc.Move(ctx, []models.Target{
		{ID: 2, Kind: models.TargetFolder},
		{ID: 10, Kind: models.TargetFile},
	}, ptr(1))
	require.NoError(t, err)

	f, err := rm.folderRepo.GetByID(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, f.ParentID)
	assert.Equal(t, int64(1), *f.ParentID)

	file, err := rm.fileRepo.GetByID(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, file.FolderID)
	assert.Equal(t, int64(1), *file.FolderID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveToRoot(t *testing.T) {
	svc, rm, _, mock := newTreeFixture(t)
	ctx := context.Background()

	rm.folderRepo.add(1, "docs", nil)
	rm.folderRepo.add(2, "img", ptr(1))

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := svc.Move(ctx, []models.Target{{ID: 2, Kind: models.TargetFolder}}, nil)
	require.NoError(t, err)

	f, err := rm.folderRepo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, f.ParentID)

	crumbs, err := svc.Breadcrumbs(ctx, ptr(2))
	require.NoError(t, err)
	require.Len(t, crumbs, 2)
	assert.Equal(t, RootName, crumbs[0].Name)
	assert.Equal(t, "img", crumbs[1].Name)
}

func TestMoveIntoItselfRejected(t *testing.T) {
	svc, rm, _, mock := newTreeFixture(t)

	rm.folderRepo.add(1, "docs", nil)

	err := svc.Move(context.Background(), []models.Target{{ID: 1, Kind: models.TargetFolder}}, ptr(1))
	assert.ErrorIs(t, err, common.ErrMoveCycle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveIntoDescendantRejected(t *testing.T) {
	svc, rm, _, mock := newTreeFixture(t)
	ctx := context.Background()

	rm.folderRepo.add(1, "docs", nil)
	rm.folderRepo.add(2, "img", ptr(1))
	rm.folderRepo.add(3, "deep", ptr(2))

	err := svc.Move(ctx, []models.Target{{ID: 1, Kind: models.TargetFolder}}, ptr(3))
	assert.ErrorIs(t, err, common.ErrMoveCycle)

	// Nothing was written.
	f, err := rm.folderRepo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, f.ParentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveCandidatesExcludesMoved(t *testing.T) {
	svc, rm, _, _ := newTreeFixture(t)
	ctx := context.Background()

	rm.folderRepo.add(1, "docs", nil)
	rm.folderRepo.add(2, "img", nil)
	rm.folderRepo.add(3, "misc", nil)

	folders, crumbs, err := svc.MoveCandidates(ctx, nil, []int64{2})
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "docs", folders[0].Name)
	assert.Equal(t, "misc", folders[1].Name)
	require.Len(t, crumbs, 1)
	assert.Equal(t, RootName, crumbs[0].Name)
}

func TestRename(t *testing.T) {
	svc, rm, _, _ := newTreeFixture(t)
	ctx := context.Background()

	rm.folderRepo.add(1, "docs", nil)
	rm.fileRepo.add(10, "a.pdf", "k/a", nil)

	require.NoError(t, svc.Rename(ctx, models.Target{ID: 1, Kind: models.TargetFolder}, "papers"))
	require.NoError(t, svc.Rename(ctx, models.Target{ID: 10, Kind: models.TargetFile}, "b.pdf"))

	f, _ := rm.folderRepo.GetByID(ctx, 1)
	assert.Equal(t, "papers", f.Name)
	file, _ := rm.fileRepo.GetByID(ctx, 10)
	assert.Equal(t, "b.pdf", file.Name)

	err := svc.Rename(ctx, models.Target{ID: 1, Kind: "symlink"}, "x")
	assert.Error(t, err)
}

func TestRecentsClampsLimit(t *testing.T) {
	svc, rm, _, _ := newTreeFixture(t)
	ctx := context.Background()

	for i := int64(1); i <= 40; i++ {
		rm.fileRepo.add(i, "f", "k", nil)
	}

	files, err := svc.Recents(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, files, 30)

	files, err = svc.Recents(ctx, 500, 0)
	require.NoError(t, err)
	assert.Len(t, files, 30)

	files, err = svc.Recents(ctx, 5, 38)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

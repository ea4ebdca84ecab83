// Package files persists file metadata rows coupled to object-storage keys.
package files

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// Repository is the storage contract for file rows.
type Repository interface {
	// Create inserts a finalized file record and returns it with the
	// assigned id. It is only called after the store confirmed the object.
	Create(ctx context.Context, file *models.File) (*models.File, error)
	// GetByID returns a file row or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.File, error)
	// ListByFolder returns files directly under folderID (nil = root).
	ListByFolder(ctx context.Context, folderID *int64) ([]*models.File, error)
	// ListRecent returns files ordered by modification time, newest first.
	ListRecent(ctx context.Context, limit, offset int) ([]*models.File, error)
	// Rename updates the display name, leaving the storage key untouched.
	Rename(ctx context.Context, id int64, name string) error
	// UpdateFolderBulk re-homes all ids to folderID in one statement.
	UpdateFolderBulk(ctx context.Context, ids []int64, folderID *int64) error
	// StorageKeysByFileIDs returns the storage keys of the given file rows.
	StorageKeysByFileIDs(ctx context.Context, ids []int64) ([]string, error)
	// StorageKeysByFolderIDs returns storage keys of every file directly
	// inside any of the given folders.
	StorageKeysByFolderIDs(ctx context.Context, folderIDs []int64) ([]string, error)
	// DeleteByIDs removes the given file rows.
	DeleteByIDs(ctx context.Context, ids []int64) error
	// DeleteByFolderIDs removes every file row directly inside the folders.
	DeleteByFolderIDs(ctx context.Context, folderIDs []int64) error
}

// Package folders persists the folder tree.
package folders

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// Repository is the storage contract for folder rows.
type Repository interface {
	// Create inserts a folder under parentID (nil = root).
	Create(ctx context.Context, name string, parentID *int64, createdBy int64) (*models.Folder, error)
	// GetByID returns a folder row or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.Folder, error)
	// ListByParent returns the direct children of parentID (nil = root) with
	// derived file/child counts, excluding any ids in excluded.
	ListByParent(ctx context.Context, parentID *int64, excluded []int64) ([]*models.Folder, error)
	// Rename updates the folder name.
	Rename(ctx context.Context, id int64, name string) error
	// UpdateParentBulk reparents all ids to parentID in one statement.
	UpdateParentBulk(ctx context.Context, ids []int64, parentID *int64) error
	// DescendantIDs returns roots plus every folder id reachable below them.
	DescendantIDs(ctx context.Context, roots []int64) ([]int64, error)
	// DeleteByIDs removes the given folder rows.
	DeleteByIDs(ctx context.Context, ids []int64) error
}

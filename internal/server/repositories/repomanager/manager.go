// Package repomanager vends repository implementations bound to a DBTX,
// letting services run several repositories inside one transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/files"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/folders"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/users"
)

// RepositoryManager is implemented by database-specific managers.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Folders(db dbx.DBTX) folders.Repository
	Files(db dbx.DBTX) files.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}

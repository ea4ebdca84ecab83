package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements file storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const fileColumns = `id, name, storage_key, size, content_type, folder_id, created_by, created_at, updated_at`

func scanFile(scan func(dest ...any) error) (*models.File, error) {
	f := &models.File{}
	err := scan(&f.ID, &f.Name, &f.StorageKey, &f.Size, &f.ContentType, &f.FolderID,
		&f.CreatedBy, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

// Create inserts a finalized file row and returns it with assigned id and
// timestamps. The storage_key unique constraint guards key immutability.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (name, storage_key, size, content_type, folder_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at;
	`
	if err := r.db.QueryRowContext(ctx, query,
		file.Name, file.StorageKey, file.Size, file.ContentType, file.FolderID, file.CreatedBy).
		Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

// GetByID returns one file row.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id=$1`

	row := r.db.QueryRowContext(ctx, query, id)
	f, err := scanFile(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// ListByFolder returns files directly under folderID (nil = root), newest
// first so fresh uploads surface at the top of the listing.
func (r *PostgresRepository) ListByFolder(ctx context.Context, folderID *int64) ([]*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE folder_id IS NOT DISTINCT FROM $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()
	return collectFiles(rows)
}

// ListRecent returns a page of files ordered by updated_at descending.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit, offset int) ([]*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files ORDER BY updated_at DESC, id DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select recent files: %w", err)
	}
	defer rows.Close()
	return collectFiles(rows)
}

func collectFiles(rows *sql.Rows) ([]*models.File, error) {
	var result []*models.File
	for rows.Next() {
		f, err := scanFile(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Rename updates the display name only; the storage key never changes.
func (r *PostgresRepository) Rename(ctx context.Context, id int64, name string) error {
	query := `UPDATE files SET name=$1, updated_at=now() WHERE id=$2`
	result, err := r.db.ExecContext(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if ra != 1 {
		return common.ErrorNotFound
	}
	return nil
}

// UpdateFolderBulk re-homes every file in ids to folderID (nil = root).
func (r *PostgresRepository) UpdateFolderBulk(ctx context.Context, ids []int64, folderID *int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE files SET folder_id=$1, updated_at=now() WHERE id = ANY($2)`
	if _, err := r.db.ExecContext(ctx, query, folderID, ids); err != nil {
		return fmt.Errorf("failed to move files: %w", err)
	}
	return nil
}

// StorageKeysByFileIDs looks up the storage keys of the given file rows.
func (r *PostgresRepository) StorageKeysByFileIDs(ctx context.Context, ids []int64) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.selectKeys(ctx, `SELECT storage_key FROM files WHERE id = ANY($1)`, ids)
}

// StorageKeysByFolderIDs looks up the storage keys of every file directly
// inside any of the given folders.
func (r *PostgresRepository) StorageKeysByFolderIDs(ctx context.Context, folderIDs []int64) ([]string, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}
	return r.selectKeys(ctx, `SELECT storage_key FROM files WHERE folder_id = ANY($1)`, folderIDs)
}

func (r *PostgresRepository) selectKeys(ctx context.Context, query string, ids []int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to select storage keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteByIDs removes the given file rows.
func (r *PostgresRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}
	return nil
}

// DeleteByFolderIDs removes every file row directly inside the folders.
func (r *PostgresRepository) DeleteByFolderIDs(ctx context.Context, folderIDs []int64) error {
	if len(folderIDs) == 0 {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE folder_id = ANY($1)`, folderIDs); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}
	return nil
}

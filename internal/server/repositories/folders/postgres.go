package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements folder storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a folder row and returns it with assigned id and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, name string, parentID *int64, createdBy int64) (*models.Folder, error) {
	query := `
		INSERT INTO folders (name, parent_id, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at;
	`
	f := &models.Folder{Name: name, ParentID: parentID, CreatedBy: createdBy}
	if err := r.db.QueryRowContext(ctx, query, name, parentID, createdBy).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// GetByID returns one folder row without derived counts.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	query := `SELECT id, name, parent_id, created_by, created_at, updated_at FROM folders WHERE id=$1`

	f := &models.Folder{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&f.ID, &f.Name, &f.ParentID, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// ListByParent returns direct children of parentID with direct file and
// child-folder counts. excluded filters out ids being moved so a folder is
// never offered as its own drop target; pass nil for plain listings.
func (r *PostgresRepository) ListByParent(ctx context.Context, parentID *int64, excluded []int64) ([]*models.Folder, error) {
	if excluded == nil {
		excluded = []int64{}
	}
	query := `
		SELECT f.id, f.name, f.parent_id, f.created_by, f.created_at, f.updated_at,
			(SELECT count(*) FROM files fi WHERE fi.folder_id = f.id) AS file_count,
			(SELECT count(*) FROM folders c WHERE c.parent_id = f.id) AS folder_count
		FROM folders f
		WHERE f.parent_id IS NOT DISTINCT FROM $1
		  AND NOT (f.id = ANY($2))
		ORDER BY f.name, f.id;
	`
	rows, err := r.db.QueryContext(ctx, query, parentID, excluded)
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	var result []*models.Folder
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.ParentID, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt,
			&f.FileCount, &f.FolderCount); err != nil {
			return nil, err
		}
		result = append(result, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Rename updates the folder name. Exactly one row must be affected.
func (r *PostgresRepository) Rename(ctx context.Context, id int64, name string) error {
	query := `UPDATE folders SET name=$1, updated_at=now() WHERE id=$2`
	result, err := r.db.ExecContext(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("failed to rename folder: %w", err)
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

// UpdateParentBulk reparents every folder in ids to parentID (nil = root)
// in a single statement.
func (r *PostgresRepository) UpdateParentBulk(ctx context.Context, ids []int64, parentID *int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE folders SET parent_id=$1, updated_at=now() WHERE id = ANY($2)`
	if _, err := r.db.ExecContext(ctx, query, parentID, ids); err != nil {
		return fmt.Errorf("failed to move folders: %w", err)
	}
	return nil
}

// DescendantIDs resolves the transitive closure below roots, roots included.
func (r *PostgresRepository) DescendantIDs(ctx context.Context, roots []int64) ([]int64, error) {
	if len(roots) == 0 {
		return nil, nil
	}
	query := `
		WITH RECURSIVE sub AS (
			SELECT id FROM folders WHERE id = ANY($1)
			UNION
			SELECT f.id FROM folders f JOIN sub s ON f.parent_id = s.id
		)
		SELECT id FROM sub;
	`
	rows, err := r.db.QueryContext(ctx, query, roots)
	if err != nil {
		return nil, fmt.Errorf("failed to select descendants: %w", err)
	}
	defer rows.Close()

	var result []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByIDs removes the given folder rows in one statement so the
// self-referencing FK sees a closed set.
func (r *PostgresRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM folders WHERE id = ANY($1)`
	if _, err := r.db.ExecContext(ctx, query, ids); err != nil {
		return fmt.Errorf("failed to delete folders: %w", err)
	}
	return nil
}

package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements user storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account row. Capabilities are stored as a JSONB array
// of flag names.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	caps, err := json.Marshal(user.Capabilities)
	if err != nil {
		return nil, fmt.Errorf("marshal capabilities: %w", err)
	}

	query := `
		INSERT INTO users (login, password_hash, capabilities)
		VALUES ($1, $2, $3)
		RETURNING id, created_at;
	`
	if err := r.db.QueryRowContext(ctx, query, user.Login, user.PasswordHash, caps).
		Scan(&user.ID, &user.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// GetByLogin returns the account row for login.
func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `SELECT id, login, password_hash, capabilities, created_at FROM users WHERE login=$1`

	var (
		user models.User
		caps []byte
	)
	err := r.db.QueryRowContext(ctx, query, login).
		Scan(&user.ID, &user.Login, &user.PasswordHash, &caps, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(caps, &user.Capabilities); err != nil {
		return nil, fmt.Errorf("unmarshal capabilities: %w", err)
	}
	return &user, nil
}

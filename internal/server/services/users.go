// Package services implements the application services: login, the upload
// coordination pipeline and the tree mutation engine.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/auth"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
)

// UserService authenticates accounts and issues access tokens carrying the
// account's capability set.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs the service.
func NewUserService(db *sql.DB, rm repomanager.RepositoryManager, jwtSecret string, accessTokenValidity time.Duration) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 rm,
		jwtSecret:                   []byte(jwtSecret),
		accessTokenValidityDuration: accessTokenValidity,
	}
}

// Login verifies the password and returns a signed access token plus the
// account. Unknown logins and wrong passwords are indistinguishable to the
// caller.
func (s *UserService) Login(ctx context.Context, login, password string) (string, *models.User, error) {
	userRepo := s.repomanager.Users(s.db)

	user, err := userRepo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return "", nil, common.ErrorUnauthorized
	}

	caps := auth.ParseCapabilities(user.Capabilities)
	token, err := auth.GenerateToken(user.ID, caps, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	return token, user, nil
}

// EnsureAdmin creates the bootstrap account with every capability when it
// does not exist yet. Called once at startup.
func (s *UserService) EnsureAdmin(ctx context.Context, login, password string) error {
	userRepo := s.repomanager.Users(s.db)

	_, err := userRepo.GetByLogin(ctx, login)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error looking up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	_, err = userRepo.Create(ctx, &models.User{
		Login:        login,
		PasswordHash: hash,
		Capabilities: []string{
			string(auth.CapView), string(auth.CapDownload), string(auth.CapUpload),
			string(auth.CapCreateFolder), string(auth.CapEditFolder),
			string(auth.CapDelete), string(auth.CapDeleteFolder), string(auth.CapMove),
		},
	})
	if err != nil {
		return fmt.Errorf("error creating admin: %w", err)
	}
	return nil
}

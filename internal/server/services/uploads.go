package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docvault/internal/server/sessions"
)

// Gateway is the object-storage surface the services depend on. Implemented
// by storage.S3Gateway.
type Gateway interface {
	IssueSingleURL(ctx context.Context, contentType string) (url, storageKey string, err error)
	InitiateSession(ctx context.Context, contentType string) (sessionID, storageKey string, err error)
	IssuePartURL(ctx context.Context, storageKey, sessionID string, partNumber int32) (string, error)
	CompleteSession(ctx context.Context, storageKey, sessionID string, parts []models.CompletedPart) error
	AbortSession(ctx context.Context, storageKey, sessionID string) error
	BatchDelete(ctx context.Context, storageKeys []string) error
	IssueGetURL(ctx context.Context, storageKey string, download bool, name string) (string, error)
}

// UploadService coordinates the chunked upload pipeline: signed-URL
// issuance, the multipart session registry and the metadata writer.
type UploadService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	gateway     Gateway
	registry    *sessions.Registry
	logger      logging.Logger
}

// NewUploadService constructs the service.
func NewUploadService(db *sql.DB, rm repomanager.RepositoryManager, gw Gateway, reg *sessions.Registry, logger logging.Logger) *UploadService {
	return &UploadService{
		db:          db,
		repomanager: rm,
		gateway:     gw,
		registry:    reg,
		logger:      logger.With("module", "uploads"),
	}
}

// IssueSingleURL returns a presigned PUT URL for a whole-object upload.
func (s *UploadService) IssueSingleURL(ctx context.Context, contentType string) (url, storageKey string, err error) {
	return s.gateway.IssueSingleURL(ctx, contentType)
}

// Initiate starts a multipart session and registers it.
func (s *UploadService) Initiate(ctx context.Context, contentType string) (sessionID, storageKey string, err error) {
	sessionID, storageKey, err = s.gateway.InitiateSession(ctx, contentType)
	if err != nil {
		return "", "", err
	}
	s.registry.Add(sessionID, storageKey, contentType)
	return sessionID, storageKey, nil
}

// PartURL issues a presigned URL for one part and records the part number
// against the session.
func (s *UploadService) PartURL(ctx context.Context, sessionID string, partNumber int32) (string, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return "", err
	}

	url, err := s.gateway.IssuePartURL(ctx, sess.StorageKey, sessionID, partNumber)
	if err != nil {
		return "", err
	}
	if err := s.registry.RecordPart(sessionID, partNumber); err != nil {
		return "", err
	}
	return url, nil
}

// Complete validates the part list against the session, asks the store to
// assemble the object and then persists the metadata record. The part list
// is rejected before any store call when it is not contiguous from 1..N or
// omits a recorded part.
func (s *UploadService) Complete(ctx context.Context, sessionID string, parts []models.CompletedPart, md models.FileMetadata) (*models.File, error) {
	sess, err := s.registry.Finalize(sessionID, parts)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.CompleteSession(ctx, sess.StorageKey, sessionID, parts); err != nil {
		// The session is consumed; the store's own expiry reclaims the
		// orphaned parts. No metadata record is ever written.
		return nil, fmt.Errorf("error completing session: %w", err)
	}

	return s.finalizeFile(ctx, sess.StorageKey, md)
}

// Abort cancels a registered session and releases store-side resources.
func (s *UploadService) Abort(ctx context.Context, sessionID string) error {
	sess, err := s.registry.Abort(sessionID)
	if err != nil {
		return err
	}
	return s.gateway.AbortSession(ctx, sess.StorageKey, sessionID)
}

// FinalizeSingle persists the metadata record for a single-shot upload the
// client reports as complete. The PUT itself is not independently verified
// against the store.
func (s *UploadService) FinalizeSingle(ctx context.Context, storageKey string, md models.FileMetadata) (*models.File, error) {
	return s.finalizeFile(ctx, storageKey, md)
}

// finalizeFile is the only code path that creates a file row.
func (s *UploadService) finalizeFile(ctx context.Context, storageKey string, md models.FileMetadata) (*models.File, error) {
	file := &models.File{
		Name:        md.Name,
		StorageKey:  storageKey,
		Size:        md.Size,
		ContentType: md.ContentType,
		FolderID:    md.FolderID,
		CreatedBy:   md.UserID,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Files(tx).Create(ctx, file)
		if err != nil {
			return err
		}
		file = created
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error finalizing file: %w", err)
	}

	s.logger.Info(ctx, "file finalized", "storage_key", storageKey, "size", md.Size)
	return file, nil
}

// FileURL issues a presigned GET URL for viewing or downloading a file.
func (s *UploadService) FileURL(ctx context.Context, fileID int64, download bool) (string, error) {
	f, err := s.repomanager.Files(s.db).GetByID(ctx, fileID)
	if err != nil {
		return "", err
	}
	return s.gateway.IssueGetURL(ctx, f.StorageKey, download, f.Name)
}

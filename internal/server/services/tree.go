package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
)

// RootName is the label of the breadcrumb root sentinel.
const RootName = "My Files"

// maxTreeDepth bounds ancestor walks so corrupted parent chains cannot spin
// forever.
const maxTreeDepth = 256

// TreeService executes structural mutations over the folder/file tree and
// the queries layered on top of them. It is, together with the upload
// finalize step, the only component that creates or destroys rows.
type TreeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	gateway     Gateway
	logger      logging.Logger
}

// NewTreeService constructs the service.
func NewTreeService(db *sql.DB, rm repomanager.RepositoryManager, gw Gateway, logger logging.Logger) *TreeService {
	return &TreeService{
		db:          db,
		repomanager: rm,
		gateway:     gw,
		logger:      logger.With("module", "tree"),
	}
}

// Listing is the content of one folder plus its ancestor chain.
type Listing struct {
	Folders     []*models.Folder    `json:"folders"`
	Files       []*models.File      `json:"files"`
	Breadcrumbs []models.Breadcrumb `json:"breadcrumbs"`
}

// List returns the direct children of folderID (nil = root) with
// breadcrumbs.
func (s *TreeService) List(ctx context.Context, folderID *int64) (*Listing, error) {
	folderRepo := s.repomanager.Folders(s.db)
	fileRepo := s.repomanager.Files(s.db)

	folders, err := folderRepo.ListByParent(ctx, folderID, nil)
	if err != nil {
		return nil, fmt.Errorf("error listing folders: %w", err)
	}
	files, err := fileRepo.ListByFolder(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	crumbs, err := s.Breadcrumbs(ctx, folderID)
	if err != nil {
		return nil, err
	}

	return &Listing{Folders: folders, Files: files, Breadcrumbs: crumbs}, nil
}

// CreateFolder inserts a folder under parentID (nil = root).
func (s *TreeService) CreateFolder(ctx context.Context, name string, parentID *int64, createdBy int64) (*models.Folder, error) {
	f, err := s.repomanager.Folders(s.db).Create(ctx, name, parentID, createdBy)
	if err != nil {
		return nil, fmt.Errorf("error creating folder: %w", err)
	}
	return f, nil
}

// Rename updates the display name of a file or folder.
func (s *TreeService) Rename(ctx context.Context, target models.Target, name string) error {
	switch target.Kind {
	case models.TargetFolder:
		return s.repomanager.Folders(s.db).Rename(ctx, target.ID, name)
	case models.TargetFile:
		return s.repomanager.Files(s.db).Rename(ctx, target.ID, name)
	default:
		return fmt.Errorf("unknown target kind: %q", target.Kind)
	}
}

// Delete removes the targeted files and folders. Folder deletion cascades:
// every descendant folder and every file underneath goes too. Metadata rows
// and storage objects are removed inside one transactional unit; if the
// store delete fails the transaction rolls back and nothing is lost. The
// residual case (store objects gone, commit failed) is logged for manual
// reconciliation.
func (s *TreeService) Delete(ctx context.Context, targets []models.Target) (int, error) {
	fileIDs, folderIDs := models.PartitionTargets(targets)
	if len(fileIDs) == 0 && len(folderIDs) == 0 {
		return 0, nil
	}

	var (
		keys           []string
		storageDeleted bool
	)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		folderRepo := s.repomanager.Folders(tx)
		fileRepo := s.repomanager.Files(tx)

		// Resolve the cascade before touching anything.
		allFolderIDs, err := folderRepo.DescendantIDs(ctx, folderIDs)
		if err != nil {
			return err
		}

		fileKeys, err := fileRepo.StorageKeysByFileIDs(ctx, fileIDs)
		if err != nil {
			return err
		}
		folderFileKeys, err := fileRepo.StorageKeysByFolderIDs(ctx, allFolderIDs)
		if err != nil {
			return err
		}
		keys = append(fileKeys, folderFileKeys...)

		if err := fileRepo.DeleteByIDs(ctx, fileIDs); err != nil {
			return err
		}
		if err := fileRepo.DeleteByFolderIDs(ctx, allFolderIDs); err != nil {
			return err
		}
		if err := folderRepo.DeleteByIDs(ctx, allFolderIDs); err != nil {
			return err
		}

		if err := s.gateway.BatchDelete(ctx, keys); err != nil {
			return fmt.Errorf("error deleting storage objects: %w", err)
		}
		storageDeleted = true
		return nil
	})
	if err != nil {
		if storageDeleted {
			s.logger.Error(ctx, "storage objects deleted but metadata commit failed, manual reconciliation required",
				"keys", keys, "error", err.Error())
		}
		return 0, fmt.Errorf("error deleting targets: %w", err)
	}

	return len(keys), nil
}

// Move reparents the targeted files and folders under destID (nil = root).
// A folder may never be moved into itself or one of its own descendants;
// the destination's ancestor chain is validated before anything is written.
func (s *TreeService) Move(ctx context.Context, targets []models.Target, destID *int64) error {
	fileIDs, folderIDs := models.PartitionTargets(targets)

	if destID != nil && len(folderIDs) > 0 {
		moved := make(map[int64]struct{}, len(folderIDs))
		for _, id := range folderIDs {
			moved[id] = struct{}{}
		}

		folderRepo := s.repomanager.Folders(s.db)
		current := destID
		for depth := 0; current != nil && depth < maxTreeDepth; depth++ {
			if _, ok := moved[*current]; ok {
				return common.ErrMoveCycle
			}
			f, err := folderRepo.GetByID(ctx, *current)
			if err != nil {
				return fmt.Errorf("error resolving destination: %w", err)
			}
			current = f.ParentID
		}
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Folders(tx).UpdateParentBulk(ctx, folderIDs, destID); err != nil {
			return err
		}
		return s.repomanager.Files(tx).UpdateFolderBulk(ctx, fileIDs, destID)
	})
	if err != nil {
		return fmt.Errorf("error moving targets: %w", err)
	}
	return nil
}

// Breadcrumbs resolves the ancestor chain of folderID, root sentinel first.
// It is deterministic and has no side effects.
func (s *TreeService) Breadcrumbs(ctx context.Context, folderID *int64) ([]models.Breadcrumb, error) {
	folderRepo := s.repomanager.Folders(s.db)

	var chain []models.Breadcrumb
	current := folderID
	for depth := 0; current != nil && depth < maxTreeDepth; depth++ {
		f, err := folderRepo.GetByID(ctx, *current)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				break
			}
			return nil, fmt.Errorf("error resolving breadcrumbs: %w", err)
		}
		id := f.ID
		chain = append([]models.Breadcrumb{{ID: &id, Name: f.Name}}, chain...)
		current = f.ParentID
	}

	return append([]models.Breadcrumb{{ID: nil, Name: RootName}}, chain...), nil
}

// MoveCandidates lists the folders under navigatedID that are valid move
// destinations, excluding the ids being moved, plus breadcrumbs for the
// picker.
func (s *TreeService) MoveCandidates(ctx context.Context, navigatedID *int64, excluded []int64) ([]*models.Folder, []models.Breadcrumb, error) {
	folders, err := s.repomanager.Folders(s.db).ListByParent(ctx, navigatedID, excluded)
	if err != nil {
		return nil, nil, fmt.Errorf("error listing candidates: %w", err)
	}
	crumbs, err := s.Breadcrumbs(ctx, navigatedID)
	if err != nil {
		return nil, nil, err
	}
	return folders, crumbs, nil
}

// Recents returns a page of recently modified files.
func (s *TreeService) Recents(ctx context.Context, limit, offset int) ([]*models.File, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}
	files, err := s.repomanager.Files(s.db).ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing recent files: %w", err)
	}
	return files, nil
}

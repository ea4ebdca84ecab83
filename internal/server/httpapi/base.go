// Package httpapi exposes the vault over REST: the upload coordination
// endpoints, the tree queries and mutations, and login.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/services"
)

// UserService is the authentication surface the handlers need.
type UserService interface {
	Login(ctx context.Context, login, password string) (string, *models.User, error)
}

// UploadService is the upload-pipeline surface the handlers need.
// Implemented by services.UploadService.
type UploadService interface {
	IssueSingleURL(ctx context.Context, contentType string) (url, storageKey string, err error)
	Initiate(ctx context.Context, contentType string) (sessionID, storageKey string, err error)
	PartURL(ctx context.Context, sessionID string, partNumber int32) (string, error)
	Complete(ctx context.Context, sessionID string, parts []models.CompletedPart, md models.FileMetadata) (*models.File, error)
	Abort(ctx context.Context, sessionID string) error
	FinalizeSingle(ctx context.Context, storageKey string, md models.FileMetadata) (*models.File, error)
	FileURL(ctx context.Context, fileID int64, download bool) (string, error)
}

// TreeService is the tree-engine surface the handlers need. Implemented by
// services.TreeService.
type TreeService interface {
	List(ctx context.Context, folderID *int64) (*services.Listing, error)
	CreateFolder(ctx context.Context, name string, parentID *int64, createdBy int64) (*models.Folder, error)
	Rename(ctx context.Context, target models.Target, name string) error
	Delete(ctx context.Context, targets []models.Target) (int, error)
	Move(ctx context.Context, targets []models.Target, destID *int64) error
	MoveCandidates(ctx context.Context, navigatedID *int64, excluded []int64) ([]*models.Folder, []models.Breadcrumb, error)
	Recents(ctx context.Context, limit, offset int) ([]*models.File, error)
}

// Handlers bundles the endpoint implementations over the three services.
type Handlers struct {
	users   UserService
	uploads UploadService
	tree    TreeService
	logger  logging.Logger
}

// NewHandlers constructs the handler set.
func NewHandlers(users UserService, uploads UploadService, tree TreeService, logger logging.Logger) *Handlers {
	return &Handlers{
		users:   users,
		uploads: uploads,
		tree:    tree,
		logger:  logger.With("module", "httpapi"),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) sendJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError maps service errors onto the response taxonomy: expired or
// invalid credentials read as 401, missing capabilities as 403, unknown
// targets as 404, malformed operations as 400. Everything else collapses to
// a generic message so internals never leak.
func (h *Handlers) sendError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrCredentialExpired):
		h.sendJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrorPermissionDenied):
		h.sendJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		h.sendJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrSessionNotFound),
		errors.Is(err, common.ErrPartListInvalid),
		errors.Is(err, common.ErrMoveCycle):
		h.sendJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
		h.sendJSON(w, http.StatusInternalServerError, errorResponse{Error: "something went wrong, please try again later"})
	}
}

func (h *Handlers) sendBadRequest(w http.ResponseWriter, message string) {
	h.sendJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// optionalID parses an optional folder-id query parameter. Absent, empty
// and the literal "null" all mean the root.
func optionalID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// targetsParam parses the itemsIds query parameter: a JSON-encoded target
// list of {id, type} pairs.
func targetsParam(r *http.Request, name string) ([]models.Target, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	var targets []models.Target
	if err := json.Unmarshal([]byte(raw), &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

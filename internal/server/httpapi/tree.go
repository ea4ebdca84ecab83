package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/docvault/internal/server/auth"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// ListFiles returns the contents of a folder plus its breadcrumbs.
// currentFolderId absent or "null" means the root.
func (h *Handlers) ListFiles(w http.ResponseWriter, r *http.Request) {
	folderID, err := optionalID(r, "currentFolderId")
	if err != nil {
		h.sendBadRequest(w, "invalid currentFolderId")
		return
	}

	listing, err := h.tree.List(r.Context(), folderID)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, listing)
}

type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

// CreateFolder inserts a folder under the given parent.
func (h *Handlers) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendBadRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		h.sendBadRequest(w, "name is required")
		return
	}

	id := auth.IdentityFromContext(r.Context())
	folder, err := h.tree.CreateFolder(r.Context(), req.Name, req.ParentID, id.UserID)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, folder)
}

type renameRequest struct {
	ID      int64             `json:"id"`
	Kind    models.TargetKind `json:"type"`
	NewName string            `json:"newName"`
}

// Rename updates the display name of a file or folder.
func (h *Handlers) Rename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendBadRequest(w, "invalid request body")
		return
	}
	if req.NewName == "" || (req.Kind != models.TargetFile && req.Kind != models.TargetFolder) {
		h.sendBadRequest(w, "newName and a valid type are required")
		return
	}

	if err := h.tree.Rename(r.Context(), models.Target{ID: req.ID, Kind: req.Kind}, req.NewName); err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, map[string]string{"status": "renamed"})
}

type deleteResponse struct {
	Deleted int `json:"deleted"`
}

// Delete removes the targeted files and folders, folders cascading to their
// descendants, together with the backing storage objects.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	var targets []models.Target
	if err := decodeJSON(r, &targets); err != nil {
		h.sendBadRequest(w, "invalid request body")
		return
	}

	deleted, err := h.tree.Delete(r.Context(), targets)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
}

type moveCandidatesResponse struct {
	Folders     []*models.Folder    `json:"folders"`
	Breadcrumbs []models.Breadcrumb `json:"breadcrumbs"`
}

// MoveCandidates lists valid move destinations under navigatedFolderId,
// excluding the folders being moved so none is offered as its own target.
func (h *Handlers) MoveCandidates(w http.ResponseWriter, r *http.Request) {
	navigatedID, err := optionalID(r, "navigatedFolderId")
	if err != nil {
		h.sendBadRequest(w, "invalid navigatedFolderId")
		return
	}
	targets, err := targetsParam(r, "itemsIds")
	if err != nil {
		h.sendBadRequest(w, "invalid itemsIds")
		return
	}
	_, folderIDs := models.PartitionTargets(targets)

	folders, crumbs, err := h.tree.MoveCandidates(r.Context(), navigatedID, folderIDs)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, moveCandidatesResponse{Folders: folders, Breadcrumbs: crumbs})
}

// Move reparents the targeted files and folders under targetFolderId
// (absent or "null" = root).
func (h *Handlers) Move(w http.ResponseWriter, r *http.Request) {
	destID, err := optionalID(r, "targetFolderId")
	if err != nil {
		h.sendBadRequest(w, "invalid targetFolderId")
		return
	}
	targets, err := targetsParam(r, "itemsIds")
	if err != nil {
		h.sendBadRequest(w, "invalid itemsIds")
		return
	}
	if len(targets) == 0 {
		h.sendBadRequest(w, "itemsIds is required")
		return
	}

	if err := h.tree.Move(r.Context(), targets, destID); err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, map[string]string{"status": "moved"})
}

// Recents returns a page of recently modified files.
func (h *Handlers) Recents(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	files, err := h.tree.Recents(r.Context(), limit, offset)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	if files == nil {
		files = []*models.File{}
	}
	h.sendJSON(w, http.StatusOK, files)
}

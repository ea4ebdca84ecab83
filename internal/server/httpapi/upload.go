package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/docvault/internal/server/auth"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type singleURLRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

type singleURLResponse struct {
	URL        string `json:"url"`
	StorageKey string `json:"s3Key"`
}

// SingleURL issues a presigned PUT URL for a whole-object upload.
func (h *Handlers) SingleURL(w http.ResponseWriter, r *http.Request) {
	var req singleURLRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendBadRequest(w, "invalid request body")
		return
	}
	if req.ContentType == "" {
		h.sendBadRequest(w, "contentType is required")
		return
	}

	url, key, err := h.uploads.IssueSingleURL(r.Context(), req.ContentType)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, singleURLResponse{URL: url, StorageKey: key})
}

type completeSingleRequest struct {
	StorageKey string              `json:"s3Key"`
	Metadata   models.FileMetadata `json:"metadata"`
}

// CompleteSingle persists the metadata record for a finished single-shot
// upload. The owner is taken from the request identity, never from the body.
func (h *Handlers) CompleteSingle(w http.ResponseWriter, r *http.Request) {
	var req completeSingleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendBadRequest(w, "invalid request body")
		return
	}
	if req.StorageKey == "" || req.Metadata.Name == "" {
		h.sendBadRequest(w, "s3Key and metadata.name are required")
		return
	}
	req.Metadata.UserID = auth.IdentityFromContext(r.Context()).UserID

	file, err := h.uploads.FinalizeSingle(r.Context(), req.StorageKey, req.Metadata)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, file)
}

type initiateRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

type initiateResponse struct {
	UploadID   string `json:"uploadId"`
	StorageKey string `json:"s3Key"`
}

// Initiate starts a multipart session.
func (h *Handlers) Initiate(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendBadRequest(w, "invalid request body")
		return
	}
	if req.ContentType == "" {
		h.sendBadRequest(w, "contentType is required")
		return
	}

	sessionID, key, err := h.uploads.Initiate(r.Context(), req.ContentType)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, initiateResponse{UploadID: sessionID, StorageKey: key})
}

type partURLRequest struct {
	UploadID   string `json:"uploadId"`
	PartNumber int32  `json:"partNumber"`
}

type partURLResponse struct {
	URL string `json:"url"`
}

// PartURL issues a presigned URL for one part of a multipart session.
func (h *Handlers) PartURL(w http.ResponseWriter, r *http.Request) {
	var req partURLRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendBadRequest(w, "invalid request body")
		return
	}
	if req.UploadID == "" || req.PartNumber < 1 {
		h.sendBadRequest(w, "uploadId and a positive partNumber are required")
		return
	}

	url, err := h.uploads.PartURL(r.Context(), req.UploadID, req.PartNumber)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, partURLResponse{URL: url})
}

type completeRequest struct {
	UploadID string                 `json:"uploadId"`
	Parts    []models.CompletedPart `json:"parts"`
	Metadata models.FileMetadata    `json:"metadata"`
}

// Complete finalizes a multipart session and persists the file record.
func (h *Handlers) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendBadRequest(w, "invalid request body")
		return
	}
	if req.UploadID == "" || req.Metadata.Name == "" {
		h.sendBadRequest(w, "uploadId and metadata.name are required")
		return
	}
	req.Metadata.UserID = auth.IdentityFromContext(r.Context()).UserID

	file, err := h.uploads.Complete(r.Context(), req.UploadID, req.Parts, req.Metadata)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusCreated, file)
}

type abortRequest struct {
	UploadID string `json:"uploadId"`
}

// Abort cancels a multipart session and releases store-side resources.
func (h *Handlers) Abort(w http.ResponseWriter, r *http.Request) {
	var req abortRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendBadRequest(w, "invalid request body")
		return
	}
	if req.UploadID == "" {
		h.sendBadRequest(w, "uploadId is required")
		return
	}

	if err := h.uploads.Abort(r.Context(), req.UploadID); err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, map[string]string{"status": "aborted"})
}

type fileURLRequest struct {
	FileID int64 `json:"fileId"`
}

type fileURLResponse struct {
	URL string `json:"url"`
}

// ViewURL issues an inline presigned GET URL for a file.
func (h *Handlers) ViewURL(w http.ResponseWriter, r *http.Request) {
	h.fileURL(w, r, false)
}

// DownloadURL issues an attachment presigned GET URL for a file.
func (h *Handlers) DownloadURL(w http.ResponseWriter, r *http.Request) {
	h.fileURL(w, r, true)
}

func (h *Handlers) fileURL(w http.ResponseWriter, r *http.Request, download bool) {
	var req fileURLRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendBadRequest(w, "invalid request body")
		return
	}
	if req.FileID == 0 {
		h.sendBadRequest(w, "fileId is required")
		return
	}

	url, err := h.uploads.FileURL(r.Context(), req.FileID, download)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSON(w, http.StatusOK, fileURLResponse{URL: url})
}

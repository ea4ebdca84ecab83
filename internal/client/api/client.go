// Package api is the JSON client for the vault's HTTP endpoints. Every call
// carries the access token explicitly; there is no ambient session state.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// Client talks to the vault server. It is safe for concurrent use once the
// token has been set.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewClient constructs a client for baseURL with the given per-request
// timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetToken injects the access token carried on every subsequent request.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.asError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) asError(resp *http.Response) error {
	var er struct {
		Error string `json:"error"`
	}
	json.NewDecoder(resp.Body).Decode(&er)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if er.Error != "" && strings.Contains(er.Error, common.ErrCredentialExpired.Error()) {
			return common.ErrCredentialExpired
		}
		return common.ErrorUnauthorized
	case http.StatusForbidden:
		return common.ErrorPermissionDenied
	case http.StatusNotFound:
		return common.ErrorNotFound
	default:
		if er.Error != "" {
			return fmt.Errorf("server error: %s", er.Error)
		}
		return fmt.Errorf("server error: %s", resp.Status)
	}
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, login, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/login",
		map[string]string{"login": login, "password": password}, &resp)
	if err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// SingleURL requests a presigned PUT URL for a whole-object upload.
func (c *Client) SingleURL(ctx context.Context, fileName, contentType string) (url, storageKey string, err error) {
	var resp struct {
		URL        string `json:"url"`
		StorageKey string `json:"s3Key"`
	}
	err = c.do(ctx, http.MethodPost, "/api/getSinglePresignedUrl",
		map[string]string{"fileName": fileName, "contentType": contentType}, &resp)
	return resp.URL, resp.StorageKey, err
}

// CompleteSingle reports a finished single-shot upload.
func (c *Client) CompleteSingle(ctx context.Context, storageKey string, md models.FileMetadata) (*models.File, error) {
	var file models.File
	err := c.do(ctx, http.MethodPost, "/api/completeSingleUpload", map[string]any{
		"s3Key":    storageKey,
		"metadata": md,
	}, &file)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// Initiate starts a multipart session.
func (c *Client) Initiate(ctx context.Context, fileName, contentType string) (uploadID, storageKey string, err error) {
	var resp struct {
		UploadID   string `json:"uploadId"`
		StorageKey string `json:"s3Key"`
	}
	err = c.do(ctx, http.MethodPost, "/api/initiateUpload",
		map[string]string{"fileName": fileName, "contentType": contentType}, &resp)
	return resp.UploadID, resp.StorageKey, err
}

// PartURL requests a presigned URL for one part.
func (c *Client) PartURL(ctx context.Context, uploadID string, partNumber int32) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	err := c.do(ctx, http.MethodPost, "/api/getPreSignedUrl", map[string]any{
		"uploadId":   uploadID,
		"partNumber": partNumber,
	}, &resp)
	return resp.URL, err
}

// Complete submits the ordered part list and finalizes the file.
func (c *Client) Complete(ctx context.Context, uploadID string, parts []models.CompletedPart, md models.FileMetadata) (*models.File, error) {
	var file models.File
	err := c.do(ctx, http.MethodPost, "/api/completeUpload", map[string]any{
		"uploadId": uploadID,
		"parts":    parts,
		"metadata": md,
	}, &file)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// Abort cancels a multipart session.
func (c *Client) Abort(ctx context.Context, uploadID string) error {
	return c.do(ctx, http.MethodPost, "/api/abortUpload",
		map[string]string{"uploadId": uploadID}, nil)
}

// List fetches the contents of a folder (nil = root).
func (c *Client) List(ctx context.Context, folderID *int64) (json.RawMessage, error) {
	path := "/api/files"
	if folderID != nil {
		path += "?currentFolderId=" + url.QueryEscape(fmt.Sprint(*folderID))
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

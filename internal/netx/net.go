// Package netx contains the HTTP plumbing for direct client-to-store
// transfers over presigned URLs.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/common"
)

// progressReader counts bytes handed to the transport and reports them
// through the callback. Bytes are counted when read, which is the closest
// observable point to "acknowledged by the transport layer".
type progressReader struct {
	r          io.Reader
	onProgress func(n int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.onProgress != nil {
		p.onProgress(int64(n))
	}
	return n, err
}

// PutPresigned streams body to a presigned URL with a single PUT and returns
// the ETag the store assigned. A 403 response maps to
// common.ErrCredentialExpired so callers can re-request a fresh URL instead
// of treating the failure as fatal.
func PutPresigned(ctx context.Context, client *http.Client, url, contentType string, body []byte, onProgress func(n int64)) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	var r io.Reader = bytes.NewReader(body)
	if onProgress != nil {
		r = &progressReader{r: r, onProgress: onProgress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, r)
	if err != nil {
		return "", err
	}
	req.ContentLength = int64(len(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("x-amz-content-sha256", "UNSIGNED-PAYLOAD")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return "", common.ErrCredentialExpired
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}

	etag := strings.Trim(resp.Header.Get("ETag"), `"`)
	return etag, nil
}

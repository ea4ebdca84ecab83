// Package uploader is the client-side transfer orchestrator: it classifies
// each file against the multipart threshold, slices payloads into parts,
// streams them to presigned URLs and requests finalization, aggregating
// progress per file.
package uploader

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/netx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// API is the server surface the orchestrator needs. Implemented by
// api.Client.
type API interface {
	SingleURL(ctx context.Context, fileName, contentType string) (url, storageKey string, err error)
	CompleteSingle(ctx context.Context, storageKey string, md models.FileMetadata) (*models.File, error)
	Initiate(ctx context.Context, fileName, contentType string) (uploadID, storageKey string, err error)
	PartURL(ctx context.Context, uploadID string, partNumber int32) (string, error)
	Complete(ctx context.Context, uploadID string, parts []models.CompletedPart, md models.FileMetadata) (*models.File, error)
	Abort(ctx context.Context, uploadID string) error
}

// Item is one file to transfer.
type Item struct {
	Name        string
	ContentType string
	FolderID    *int64
	Data        []byte
}

// maxConcurrentFiles bounds the parallel batch; files beyond it queue.
const maxConcurrentFiles = 3

// reissueAttempts bounds how many times an expired signed URL is
// re-requested before the part is given up on.
const reissueAttempts = 2

// Uploader orchestrates transfers against an API.
type Uploader struct {
	api        API
	onProgress ProgressFunc

	partSize  int64
	threshold int64

	// put is a seam for netx.PutPresigned.
	put func(ctx context.Context, url, contentType string, body []byte, onProgress func(int64)) (string, error)
}

// New constructs an orchestrator. onProgress may be nil.
func New(api API, onProgress ProgressFunc) *Uploader {
	transferClient := &http.Client{}
	return &Uploader{
		api:        api,
		onProgress: onProgress,
		partSize:   common.PartSize,
		threshold:  common.MultipartThreshold,
		put: func(ctx context.Context, url, contentType string, body []byte, onProgress func(int64)) (string, error) {
			return netx.PutPresigned(ctx, transferClient, url, contentType, body, onProgress)
		},
	}
}

// UploadAll transfers a batch of files, at most maxConcurrentFiles in
// flight. Files upload independently: one failure does not stop the others.
// The returned slice is index-aligned with items; failed entries are nil.
// The first error encountered, if any, is returned after the whole batch
// settled.
func (u *Uploader) UploadAll(ctx context.Context, items []Item) ([]*models.File, error) {
	results := make([]*models.File, len(items))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFiles)

	for i, item := range items {
		g.Go(func() error {
			f, err := u.Upload(ctx, item)
			if err != nil {
				return err
			}
			results[i] = f
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

// Upload transfers one file, choosing single-shot or multipart by size.
func (u *Uploader) Upload(ctx context.Context, item Item) (*models.File, error) {
	tr := newTracker(item.Name, int64(len(item.Data)), u.onProgress)

	var (
		f   *models.File
		err error
	)
	if int64(len(item.Data)) < u.threshold {
		f, err = u.uploadSingle(ctx, item, tr)
	} else {
		f, err = u.uploadMultipart(ctx, item, tr)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			tr.cancelled()
		} else {
			tr.failed()
		}
		return nil, err
	}

	tr.done()
	return f, nil
}

func (u *Uploader) uploadSingle(ctx context.Context, item Item, tr *tracker) (*models.File, error) {
	var storageKey string
	issue := func(ctx context.Context) (string, error) {
		url, key, err := u.api.SingleURL(ctx, item.Name, item.ContentType)
		if err != nil {
			return "", err
		}
		storageKey = key
		return url, nil
	}

	if _, err := u.putWithReissue(ctx, issue, item.ContentType, item.Data, tr.add); err != nil {
		return nil, err
	}

	return u.api.CompleteSingle(ctx, storageKey, u.metadata(item))
}

func (u *Uploader) uploadMultipart(ctx context.Context, item Item, tr *tracker) (*models.File, error) {
	uploadID, _, err := u.api.Initiate(ctx, item.Name, item.ContentType)
	if err != nil {
		return nil, err
	}

	size := int64(len(item.Data))
	numParts := int32((size + u.partSize - 1) / u.partSize)
	parts := make([]models.CompletedPart, 0, numParts)

	// Parts go up serially; the completion payload must be ascending by
	// part number either way.
	for part := int32(1); part <= numParts; part++ {
		if err := ctx.Err(); err != nil {
			u.abortSession(uploadID)
			return nil, err
		}

		start := int64(part-1) * u.partSize
		end := min(start+u.partSize, size)

		issue := func(ctx context.Context) (string, error) {
			return u.api.PartURL(ctx, uploadID, part)
		}
		etag, err := u.putWithReissue(ctx, issue, item.ContentType, item.Data[start:end], tr.add)
		if err != nil {
			u.abortSession(uploadID)
			return nil, err
		}

		parts = append(parts, models.CompletedPart{ETag: etag, PartNumber: part})
	}

	return u.api.Complete(ctx, uploadID, parts, u.metadata(item))
}

// putWithReissue streams body to a freshly issued URL, re-requesting the URL
// when the store reports the credential expired. Any other failure is final
// for this part.
func (u *Uploader) putWithReissue(ctx context.Context, issue func(context.Context) (string, error), contentType string, body []byte, onBytes func(int64)) (string, error) {
	var etag string

	backoff := retry.WithMaxRetries(reissueAttempts, retry.NewConstant(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		url, err := issue(ctx)
		if err != nil {
			return err
		}

		tag, err := u.put(ctx, url, contentType, body, onBytes)
		if err != nil {
			if errors.Is(err, common.ErrCredentialExpired) {
				return retry.RetryableError(err)
			}
			return err
		}
		etag = tag
		return nil
	})
	if err != nil {
		return "", err
	}
	return etag, nil
}

// abortSession releases store-side resources for an abandoned session. It
// runs on its own context so it still goes out after the transfer context
// was cancelled.
func (u *Uploader) abortSession(uploadID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = u.api.Abort(ctx, uploadID)
}

func (u *Uploader) metadata(item Item) models.FileMetadata {
	return models.FileMetadata{
		Name:        item.Name,
		Size:        int64(len(item.Data)),
		ContentType: item.ContentType,
		FolderID:    item.FolderID,
	}
}

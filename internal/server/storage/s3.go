// Package storage is the object-storage gateway: it issues time-limited
// signed URLs for direct client-to-store transfers and performs the
// multipart lifecycle and batch delete calls against an S3-compatible
// backend.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	presignUploadPart = func(pc *s3.PresignClient, ctx context.Context, in *s3.UploadPartInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignUploadPart(ctx, in, optFns...)
	}
	createMultipartUpload = func(c *s3.Client, ctx context.Context, in *s3.CreateMultipartUploadInput) (*s3.CreateMultipartUploadOutput, error) {
		return c.CreateMultipartUpload(ctx, in)
	}
	completeMultipartUpload = func(c *s3.Client, ctx context.Context, in *s3.CompleteMultipartUploadInput) (*s3.CompleteMultipartUploadOutput, error) {
		return c.CompleteMultipartUpload(ctx, in)
	}
	abortMultipartUpload = func(c *s3.Client, ctx context.Context, in *s3.AbortMultipartUploadInput) (*s3.AbortMultipartUploadOutput, error) {
		return c.AbortMultipartUpload(ctx, in)
	}
	deleteObjects = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
		return c.DeleteObjects(ctx, in)
	}
)

// Config carries the S3 connection settings the gateway needs.
type Config struct {
	RootUser     string
	RootPassword string
	Bucket       string
	Region       string
	BaseEndpoint string
	// PresignExpiry is the validity window of every signed URL issued.
	// Requests arriving after it fail with an expired-credential error the
	// caller must treat as retryable-by-reissue.
	PresignExpiry time.Duration
}

// S3Gateway implements the object-storage operations against an S3-compatible
// store (MinIO in development).
type S3Gateway struct {
	cfg Config
}

// NewS3Gateway constructs a gateway for the given settings.
func NewS3Gateway(cfg Config) *S3Gateway {
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = time.Hour
	}
	return &S3Gateway{cfg: cfg}
}

// NewStorageKey derives an opaque, date-prefixed storage key. The
// human-readable name never becomes part of the key.
func NewStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("uploads/%d/%02d/%02d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (g *S3Gateway) getClients(ctx context.Context) (*s3.Client, *s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(g.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			g.cfg.RootUser,
			g.cfg.RootPassword,
			"",
		)))
	if err != nil {
		return nil, nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(g.cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, newS3PresignClient(client), nil
}

// IssueSingleURL returns a presigned PUT URL for a whole-object upload and
// the storage key it is scoped to.
func (g *S3Gateway) IssueSingleURL(ctx context.Context, contentType string) (url, storageKey string, err error) {
	_, presignClient, err := g.getClients(ctx)
	if err != nil {
		return "", "", err
	}

	key := NewStorageKey()
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &g.cfg.Bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(g.cfg.PresignExpiry))
	if err != nil {
		return "", "", err
	}

	return req.URL, key, nil
}

// InitiateSession starts a multipart session and returns the store-assigned
// session id together with the storage key.
func (g *S3Gateway) InitiateSession(ctx context.Context, contentType string) (sessionID, storageKey string, err error) {
	client, _, err := g.getClients(ctx)
	if err != nil {
		return "", "", err
	}

	key := NewStorageKey()
	out, err := createMultipartUpload(client, ctx, &s3.CreateMultipartUploadInput{
		Bucket:      &g.cfg.Bucket,
		Key:         &key,
		ContentType: &contentType,
	})
	if err != nil {
		return "", "", err
	}

	return aws.ToString(out.UploadId), key, nil
}

// IssuePartURL returns a presigned URL scoped to one part of a session.
func (g *S3Gateway) IssuePartURL(ctx context.Context, storageKey, sessionID string, partNumber int32) (string, error) {
	_, presignClient, err := g.getClients(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignUploadPart(presignClient, ctx, &s3.UploadPartInput{
		Bucket:     &g.cfg.Bucket,
		Key:        &storageKey,
		UploadId:   &sessionID,
		PartNumber: aws.Int32(partNumber),
	}, s3.WithPresignExpires(g.cfg.PresignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// CompleteSession submits the ordered part list and triggers store-side
// assembly. The parts slice must already be ascending by part number.
func (g *S3Gateway) CompleteSession(ctx context.Context, storageKey, sessionID string, parts []models.CompletedPart) error {
	client, _, err := g.getClients(ctx)
	if err != nil {
		return err
	}

	completed := make([]types.CompletedPart, 0, len(parts))
	for _, p := range parts {
		completed = append(completed, types.CompletedPart{
			ETag:       aws.String(p.ETag),
			PartNumber: aws.Int32(p.PartNumber),
		})
	}

	_, err = completeMultipartUpload(client, ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          &g.cfg.Bucket,
		Key:             &storageKey,
		UploadId:        &sessionID,
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	return err
}

// AbortSession cancels a multipart session, releasing store-side resources.
func (g *S3Gateway) AbortSession(ctx context.Context, storageKey, sessionID string) error {
	client, _, err := g.getClients(ctx)
	if err != nil {
		return err
	}

	_, err = abortMultipartUpload(client, ctx, &s3.AbortMultipartUploadInput{
		Bucket:   &g.cfg.Bucket,
		Key:      &storageKey,
		UploadId: &sessionID,
	})
	return err
}

// BatchDelete removes the given objects in one call.
func (g *S3Gateway) BatchDelete(ctx context.Context, storageKeys []string) error {
	if len(storageKeys) == 0 {
		return nil
	}

	client, _, err := g.getClients(ctx)
	if err != nil {
		return err
	}

	objects := make([]types.ObjectIdentifier, 0, len(storageKeys))
	for _, k := range storageKeys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
	}

	_, err = deleteObjects(client, ctx, &s3.DeleteObjectsInput{
		Bucket: &g.cfg.Bucket,
		Delete: &types.Delete{Objects: objects},
	})
	return err
}

// IssueGetURL returns a presigned GET URL for viewing. When download is set,
// the response forces an attachment disposition with the given file name.
func (g *S3Gateway) IssueGetURL(ctx context.Context, storageKey string, download bool, name string) (string, error) {
	_, presignClient, err := g.getClients(ctx)
	if err != nil {
		return "", err
	}

	in := &s3.GetObjectInput{
		Bucket: &g.cfg.Bucket,
		Key:    &storageKey,
	}
	if download {
		in.ResponseContentDisposition = aws.String(fmt.Sprintf("attachment; filename=%q", name))
	}

	req, err := presignGetObject(presignClient, ctx, in, s3.WithPresignExpires(g.cfg.PresignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

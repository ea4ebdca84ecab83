package models

import "time"

// File describes metadata for a binary payload kept in object storage.
// The StorageKey is assigned when the upload starts and is immutable once
// the record is finalized; a File row must never exist for content the
// store did not confirm.
type File struct {
	// ID is the database-assigned identifier.
	ID int64 `json:"id"`
	// Name is the human-readable file name; independent of StorageKey.
	Name string `json:"name"`
	// StorageKey is the opaque object-storage locator.
	StorageKey string `json:"s3Key"`
	// Size is the declared byte size of the object.
	Size int64 `json:"size"`
	// ContentType is the MIME type reported at upload time.
	ContentType string `json:"mimeType"`
	// FolderID references the owning folder, nil = root.
	FolderID *int64 `json:"folderId"`
	// CreatedBy references the user that uploaded the file.
	CreatedBy int64 `json:"createdBy"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FileMetadata carries the caller-declared attributes of an upload that the
// finalize step persists alongside the storage key.
type FileMetadata struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"mimeType"`
	UserID      int64  `json:"userId"`
	FolderID    *int64 `json:"folderId"`
}

// CompletedPart is one element of a multipart completion payload: the part
// number and the integrity tag the store returned for it.
type CompletedPart struct {
	ETag       string `json:"ETag"`
	PartNumber int32  `json:"PartNumber"`
}

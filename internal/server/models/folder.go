// Package models defines server-side data models persisted in the database.
package models

import "time"

// Folder is a node of the document tree. ParentID is nil for folders that
// live at the root. A folder may never appear in its own ancestor chain.
type Folder struct {
	// ID is the database-assigned identifier.
	ID int64 `json:"id"`
	// Name is the display name shown in listings and breadcrumbs.
	Name string `json:"name"`
	// ParentID references the owning folder, nil = root.
	ParentID *int64 `json:"parentId"`
	// CreatedBy references the user that created the folder.
	CreatedBy int64 `json:"createdBy"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// FileCount and FolderCount are derived direct-child counts filled by
	// listing queries, never stored.
	FileCount   int64 `json:"fileCount"`
	FolderCount int64 `json:"folderCount"`
}

// Breadcrumb is one element of the ancestor chain shown for navigation.
// The root sentinel has a nil ID and the name "My Files".
type Breadcrumb struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// folderListing mirrors the server's listing payload.
type folderListing struct {
	Folders     []*models.Folder    `json:"folders"`
	Files       []*models.File      `json:"files"`
	Breadcrumbs []models.Breadcrumb `json:"breadcrumbs"`
}

// List prints the contents of a folder. With no argument the root is
// listed.
func (a *App) List(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return fmt.Errorf("please log in first")
	}

	var folderID *int64
	if len(args) > 0 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("usage: list [folderId]")
		}
		folderID = &id
	}

	raw, err := a.api.List(ctx, folderID)
	if err != nil {
		return err
	}
	var listing folderListing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return fmt.Errorf("unexpected listing payload: %w", err)
	}

	names := make([]string, 0, len(listing.Breadcrumbs))
	for _, b := range listing.Breadcrumbs {
		names = append(names, b.Name)
	}
	fmt.Fprintln(a.out, strings.Join(names, " / "))

	for _, f := range listing.Folders {
		fmt.Fprintf(a.out, "  [%d] %s/ (%d folders, %d files)\n",
			f.ID, f.Name, f.FolderCount, f.FileCount)
	}
	for _, f := range listing.Files {
		fmt.Fprintf(a.out, "  [%d] %s  %s  %s\n",
			f.ID, f.Name, formatSize(f.Size), f.CreatedAt.Format(time.DateTime))
	}
	if len(listing.Folders) == 0 && len(listing.Files) == 0 {
		fmt.Fprintln(a.out, "  (empty)")
	}
	return nil
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

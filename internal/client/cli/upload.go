package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/docvault/internal/client/uploader"
)

// Upload transfers one or more local files. The last argument may be a
// numeric folder id; everything before it is a file path.
func (a *App) Upload(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return fmt.Errorf("please log in first")
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: upload <path> [<path> ...] [folderId]")
	}

	var folderID *int64
	paths := args
	if len(args) > 1 {
		if id, err := strconv.ParseInt(args[len(args)-1], 10, 64); err == nil {
			folderID = &id
			paths = args[:len(args)-1]
		}
	}

	items := make([]uploader.Item, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		name := filepath.Base(path)
		items = append(items, uploader.Item{
			Name:        name,
			ContentType: contentTypeFor(name),
			FolderID:    folderID,
			Data:        data,
		})
	}

	u := uploader.New(a.api, a.printProgress)
	files, err := u.UploadAll(ctx, items)
	for i, f := range files {
		if f != nil {
			fmt.Fprintf(a.out, "uploaded %s (id %d)\n", items[i].Name, f.ID)
		}
	}
	return err
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (a *App) printProgress(p uploader.Progress) {
	switch p.Status {
	case uploader.StatusUploading:
		fmt.Fprintf(a.out, "%s: %d%%\n", p.Name, p.Percent)
	default:
		fmt.Fprintf(a.out, "%s: %s\n", p.Name, p.Status)
	}
}

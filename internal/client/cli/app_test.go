package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docvault/internal/client/api"
	"github.com/dmitrijs2005/docvault/internal/client/config"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

func newTestApp(serverURL string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{
		config: &config.Config{ServerEndpointAddr: serverURL, RequestTimeout: 5 * time.Second},
		api:    api.NewClient(serverURL, 5*time.Second),
		in:     bufio.NewReader(strings.NewReader("")),
		out:    &out,
	}, &out
}

func TestDispatchHelpDependsOnLoginState(t *testing.T) {
	app, out := newTestApp("http://127.0.0.1:1")

	require.NoError(t, app.Dispatch(context.Background(), "help", nil))
	assert.Contains(t, out.String(), "login, exit")
	assert.NotContains(t, out.String(), "upload")

	out.Reset()
	app.login = "alice"
	require.NoError(t, app.Dispatch(context.Background(), "help", nil))
	assert.Contains(t, out.String(), "upload <path>")
}

func TestDispatchExit(t *testing.T) {
	app, _ := newTestApp("http://127.0.0.1:1")
	err := app.Dispatch(context.Background(), "exit", nil)
	assert.Equal(t, errExit, err)
	err = app.Dispatch(context.Background(), "quit", nil)
	assert.Equal(t, errExit, err)
}

func TestDispatchUnknownCommand(t *testing.T) {
	app, out := newTestApp("http://127.0.0.1:1")
	require.NoError(t, app.Dispatch(context.Background(), "frobnicate", nil))
	assert.Contains(t, out.String(), "Unknown command")
}

func TestDispatchLogoutClearsState(t *testing.T) {
	app, _ := newTestApp("http://127.0.0.1:1")
	app.login = "alice"
	require.NoError(t, app.Dispatch(context.Background(), "logout", nil))
	assert.False(t, app.isLoggedIn())
	assert.Equal(t, "(guest)", app.showLogin())
}

func TestCommandsRequireLogin(t *testing.T) {
	app, _ := newTestApp("http://127.0.0.1:1")

	err := app.Upload(context.Background(), []string{"/tmp/x"})
	assert.ErrorContains(t, err, "log in first")

	err = app.List(context.Background(), nil)
	assert.ErrorContains(t, err, "log in first")
}

func TestListPrintsFoldersAndFiles(t *testing.T) {
	two := int64(2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/files", r.URL.Path)
		require.Equal(t, "5", r.URL.Query().Get("currentFolderId"))
		json.NewEncoder(w).Encode(folderListing{
			Folders: []*models.Folder{
				{ID: 2, Name: "photos", FolderCount: 1, FileCount: 3},
			},
			Files: []*models.File{
				{ID: 9, Name: "cv.pdf", Size: 2048, FolderID: &two},
			},
			Breadcrumbs: []models.Breadcrumb{
				{Name: "My Files"},
				{ID: &two, Name: "docs"},
			},
		})
	}))
	defer srv.Close()

	app, out := newTestApp(srv.URL)
	app.login = "alice"

	require.NoError(t, app.List(context.Background(), []string{"5"}))
	assert.Contains(t, out.String(), "My Files / docs")
	assert.Contains(t, out.String(), "[2] photos/ (1 folders, 3 files)")
	assert.Contains(t, out.String(), "[9] cv.pdf  2.0 KiB")
}

func TestListRejectsBadFolderID(t *testing.T) {
	app, _ := newTestApp("http://127.0.0.1:1")
	app.login = "alice"
	err := app.List(context.Background(), []string{"abc"})
	assert.ErrorContains(t, err, "usage")
}

func TestUploadUsage(t *testing.T) {
	app, _ := newTestApp("http://127.0.0.1:1")
	app.login = "alice"
	err := app.Upload(context.Background(), nil)
	assert.ErrorContains(t, err, "usage")
}

func TestContentTypeFor(t *testing.T) {
	assert.Contains(t, contentTypeFor("report.pdf"), "application/pdf")
	assert.Equal(t, "application/octet-stream", contentTypeFor("noext"))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.5 KiB", formatSize(1536))
	assert.Equal(t, "12.0 MiB", formatSize(12<<20))
}

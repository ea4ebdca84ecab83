package httpapi

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/docvault/internal/server/auth"
)

// NewRouter assembles the full route table. Everything except login and the
// health probe sits behind token authentication, and every mutation behind
// its capability gate.
func NewRouter(h *Handlers, secretKey []byte) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Get("/check", h.Check)

	router.Route("/api", func(api chi.Router) {
		api.Post("/login", h.Login)

		api.Group(func(private chi.Router) {
			private.Use(h.Authenticate(secretKey))

			private.Group(func(g chi.Router) {
				g.Use(h.Require(auth.CapUpload))
				g.Post("/getSinglePresignedUrl", h.SingleURL)
				g.Post("/completeSingleUpload", h.CompleteSingle)
				g.Post("/initiateUpload", h.Initiate)
				g.Post("/getPreSignedUrl", h.PartURL)
				g.Post("/completeUpload", h.Complete)
				g.Post("/abortUpload", h.Abort)
			})

			private.Group(func(g chi.Router) {
				g.Use(h.Require(auth.CapView))
				g.Get("/files", h.ListFiles)
				g.Get("/files/recents", h.Recents)
				g.Post("/getFileViewUrl", h.ViewURL)
			})

			private.Group(func(g chi.Router) {
				g.Use(h.Require(auth.CapView, auth.CapDownload))
				g.Post("/getFileDownloadUrl", h.DownloadURL)
			})

			private.Group(func(g chi.Router) {
				g.Use(h.Require(auth.CapCreateFolder))
				g.Post("/folder", h.CreateFolder)
			})

			private.Group(func(g chi.Router) {
				g.Use(h.Require(auth.CapEditFolder))
				g.Patch("/renameFileOrFolder", h.Rename)
			})

			private.Group(func(g chi.Router) {
				g.Use(h.Require(auth.CapDelete, auth.CapDeleteFolder))
				g.Delete("/delete/filesandfoldersIds", h.Delete)
			})

			private.Group(func(g chi.Router) {
				g.Use(h.Require(auth.CapMove))
				g.Get("/folderNamesById", h.MoveCandidates)
				g.Get("/moveFoldersToTargetId", h.Move)
			})
		})
	})

	return router
}

package httpserver

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/web3-dashboard-backend/api"
	"github.com/ruteri/web3-dashboard-backend/auth"
	"github.com/ruteri/web3-dashboard-backend/interfaces"
	"github.com/ruteri/web3-dashboard-backend/metrics"
)

// Handler serves the /api routes.
type Handler struct {
	repo    interfaces.Repository
	auth    *auth.Service
	storage interfaces.StorageBackend
	metrics *metrics.Metrics
	log     *slog.Logger

	maxUploadBytes int64
	auditLimit     int
}

// NewHandler creates the API handler. A non-positive maxUploadBytes selects
// api.DefaultMaxUploadBytes. m may be nil.
func NewHandler(repo interfaces.Repository, authService *auth.Service, storage interfaces.StorageBackend, m *metrics.Metrics, maxUploadBytes int64, log *slog.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = api.DefaultMaxUploadBytes
	}

	return &Handler{
		repo:           repo,
		auth:           authService,
		storage:        storage,
		metrics:        m,
		log:            log,
		maxUploadBytes: maxUploadBytes,
		auditLimit:     api.DefaultAuditLimit,
	}
}

// RegisterRoutes mounts the API on r. Paths are relative to the /api prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/nonce", h.HandleNonce)
	r.Post("/auth/verify", h.HandleVerify)

	r.Group(func(r chi.Router) {
		r.Use(RequireSession(h.auth.Sessions(), h.log))

		r.Get("/files", h.HandleListFiles)
		r.Post("/files/upload", h.HandleUpload)
		r.Delete("/files/{id}", h.HandleDeleteFile)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin(h.repo, h.log))

			r.Get("/admin/files", h.HandleAdminFiles)
			r.Get("/admin/audit", h.HandleAdminAudit)
		})
	})
}

package httpserver

import (
	"net/http"
)

// HandleAdminFiles lists every file together with its owner's wallet address.
func (h *Handler) HandleAdminFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.repo.ListFilesWithOwners(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, files)
}

// HandleAdminAudit returns the most recent audit records.
func (h *Handler) HandleAdminAudit(w http.ResponseWriter, r *http.Request) {
	logs, err := h.repo.ListAuditLogs(r.Context(), h.auditLimit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, logs)
}

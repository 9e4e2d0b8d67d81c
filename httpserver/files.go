package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/ruteri/web3-dashboard-backend/api"
	"github.com/ruteri/web3-dashboard-backend/interfaces"
	"github.com/ruteri/web3-dashboard-backend/metrics"
)

// uploadFormField is the multipart field carrying the file.
const uploadFormField = "file"

// multipartOverhead is allowed on top of the file size for boundaries,
// part headers and other form fields.
const multipartOverhead = 64 << 10

const genericContentType = "application/octet-stream"

type upload struct {
	filename    string
	contentType string
	data        []byte
}

func isMaxBytesError(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

// readUpload streams the multipart body and returns the first file part.
// Other parts are skipped.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: expected multipart/form-data body", interfaces.ErrValidation)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no file uploaded", interfaces.ErrValidation)
		}
		if err != nil {
			if isMaxBytesError(err) {
				return nil, interfaces.ErrPayloadTooLarge
			}
			return nil, fmt.Errorf("%w: malformed multipart body", interfaces.ErrValidation)
		}

		if part.FormName() != uploadFormField || part.FileName() == "" {
			if _, err := io.Copy(io.Discard, part); err != nil {
				if isMaxBytesError(err) {
					return nil, interfaces.ErrPayloadTooLarge
				}
				return nil, fmt.Errorf("%w: malformed multipart body", interfaces.ErrValidation)
			}
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, h.maxUploadBytes+1))
		if err != nil {
			if isMaxBytesError(err) {
				return nil, interfaces.ErrPayloadTooLarge
			}
			return nil, fmt.Errorf("%w: malformed multipart body", interfaces.ErrValidation)
		}
		if int64(len(data)) > h.maxUploadBytes {
			return nil, interfaces.ErrPayloadTooLarge
		}

		contentType := part.Header.Get("Content-Type")
		if contentType == "" || contentType == genericContentType {
			contentType = mimetype.Detect(data).String()
		}

		return &upload{
			filename:    part.FileName(),
			contentType: contentType,
			data:        data,
		}, nil
	}
}

// HandleListFiles returns the caller's files, newest first.
func (h *Handler) HandleListFiles(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	files, err := h.repo.ListFilesByUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, h.log, http.StatusOK, files)
}

// HandleUpload pins the uploaded file and records it for the caller.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	up, err := h.readUpload(w, r)
	if err != nil {
		h.metrics.IncUpload(metrics.ResultDenied)
		writeError(w, h.log, err)
		return
	}

	cid, err := h.storage.Store(r.Context(), up.data, up.filename)
	if err != nil {
		h.metrics.IncUpload(metrics.ResultFailure)
		writeError(w, h.log, fmt.Errorf("%w: %w", interfaces.ErrUpstreamStorage, err))
		return
	}

	metadata, err := json.Marshal(api.UploadMetadata{Filename: up.filename, CID: cid.String()})
	if err != nil {
		h.metrics.IncUpload(metrics.ResultFailure)
		writeError(w, h.log, err)
		return
	}
	auditMetadata := string(metadata)

	file, err := h.repo.CreateFile(r.Context(), interfaces.File{
		UserID:   userID,
		CID:      cid.String(),
		Filename: up.filename,
		FileSize: int64(len(up.data)),
		FileType: up.contentType,
	}, interfaces.AuditLog{
		UserID:   userID,
		Action:   interfaces.AuditFileUpload,
		Metadata: &auditMetadata,
	})
	if err != nil {
		// The blob stays pinned. A retry yields the same content id.
		h.metrics.IncUpload(metrics.ResultFailure)
		writeError(w, h.log, fmt.Errorf("could not record upload of %s: %w", cid, err))
		return
	}

	h.metrics.IncUpload(metrics.ResultSuccess)
	h.log.Info("File uploaded", "userID", userID, "fileID", file.ID, "cid", file.CID, "size", file.FileSize)
	writeJSON(w, h.log, http.StatusOK, file)
}

// HandleDeleteFile removes one of the caller's files.
func (h *Handler) HandleDeleteFile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	fileID := chi.URLParam(r, "id")

	file, err := h.repo.GetFile(r.Context(), fileID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	if file.UserID != userID {
		h.metrics.IncDelete(metrics.ResultDenied)
		h.log.Warn("Rejected deletion of foreign file", "userID", userID, "fileID", fileID)
		writeError(w, h.log, interfaces.ErrForbidden)
		return
	}

	metadata, err := json.Marshal(api.DeleteMetadata{Filename: file.Filename})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	auditMetadata := string(metadata)

	err = h.repo.DeleteFile(r.Context(), file.ID, interfaces.AuditLog{
		UserID:   userID,
		Action:   interfaces.AuditFileDelete,
		FileID:   &file.ID,
		Metadata: &auditMetadata,
	})
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			h.metrics.IncDelete(metrics.ResultFailure)
		}
		writeError(w, h.log, err)
		return
	}

	h.metrics.IncDelete(metrics.ResultSuccess)
	h.log.Info("File deleted", "userID", userID, "fileID", file.ID)
	writeJSON(w, h.log, http.StatusOK, api.DeleteResponse{Success: true})
}

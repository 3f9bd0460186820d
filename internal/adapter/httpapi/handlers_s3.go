package httpapi

import (
	"errors"
	"net/http"
	"path"

	"cloud-agent/internal/domain/entity"
)

type objectListResponse struct {
	Files   []entity.ObjectInfo `json:"files"`
	Folders []string            `json:"folders"`
}

type objectActionResponse struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
}

func (h *handlers) handleListObjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	listing, err := h.storage.ListObjects(r.Context(), q.Get("region"), q.Get("bucket"), q.Get("prefix"))
	if err != nil {
		h.logger.Warn("List objects failed", "bucket", q.Get("bucket"), "error", err)
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, objectListResponse{Files: listing.Files, Folders: listing.Folders})
}

func (h *handlers) handleUploadObject(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bucket := q.Get("bucket")
	if bucket == "" {
		writeMappedError(w, invalidRequestError("bucket is required"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, errorCodeInvalidRequest, "upload too large")
			return
		}
		writeMappedError(w, invalidRequestError("multipart form expected: "+err.Error()))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeMappedError(w, invalidRequestError("file is required"))
		return
	}
	defer file.Close()

	key := q.Get("prefix") + path.Base(header.Filename)
	if err := h.storage.PutObject(r.Context(), q.Get("region"), bucket, key, file); err != nil {
		h.logger.Error("Upload failed", "bucket", bucket, "key", key, "error", err)
		writeMappedError(w, err)
		return
	}

	h.logger.Info("Object uploaded", "bucket", bucket, "key", key, "size", header.Size)
	writeJSON(w, http.StatusOK, objectActionResponse{Success: true, Key: key})
}

func (h *handlers) handleDeleteObject(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bucket, key := q.Get("bucket"), q.Get("key")
	if bucket == "" || key == "" {
		writeMappedError(w, invalidRequestError("bucket and key are required"))
		return
	}

	if err := h.storage.DeleteObject(r.Context(), q.Get("region"), bucket, key); err != nil {
		h.logger.Error("Delete failed", "bucket", bucket, "key", key, "error", err)
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, objectActionResponse{Success: true, Key: key})
}

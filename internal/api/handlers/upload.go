package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/moviecatalog/internal/api/httpx"
	"github.com/baharkarakas/moviecatalog/internal/metrics"
	"github.com/baharkarakas/moviecatalog/internal/upload"
)

const uploadField = "image"

type UploadHandler struct {
	Store    upload.Store
	MaxBytes int64
}

func NewUploadHandler(s upload.Store, maxBytes int64) *UploadHandler {
	return &UploadHandler{Store: s, MaxBytes: maxBytes}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			metrics.UploadsTotal.WithLabelValues("too_large").Inc()
			httpx.WriteMessage(w, http.StatusRequestEntityTooLarge, "Image file is too large")
			return
		}
		metrics.UploadsTotal.WithLabelValues("missing").Inc()
		httpx.WriteMessage(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	url, err := h.Store.Upload(r.Context(), file, header.Filename)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		slog.ErrorContext(r.Context(), "image upload", "file", header.Filename, "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Failed to upload image",
			"error":   err.Error(),
		})
		return
	}
	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Image uploaded successfully",
		"image":   url,
	})
}

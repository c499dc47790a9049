package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxUploadBytes caps a single image upload.
const maxUploadBytes = 10 << 20

// allowedImageExts restricts upload filenames to common image extensions.
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// uploadImage accepts a multipart file, stores it under the configured
// upload directory with a generated name, and returns the URL path where the
// file is served. The backend never interprets the image bytes; the returned
// reference is what catalog entries store.
func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		writeError(w, http.StatusBadRequest, "unsupported file type")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		writeDomainError(w, r, fmt.Errorf("creating upload dir: %w", err))
		return
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		writeDomainError(w, r, fmt.Errorf("creating upload file: %w", err))
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		writeDomainError(w, r, fmt.Errorf("writing upload file: %w", err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"url": "/images/" + name})
}

package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const maxImageSize = 5 << 20 // 5 MiB

var whitespacePattern = regexp.MustCompile(`\s+`)

type uploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

func (h *HTTPHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.blobs == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "image uploads are not configured"})
		return
	}

	if err := r.ParseMultipartForm(maxImageSize + 1024); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart request"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No file uploaded"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Only image files are allowed"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read file"})
		return
	}
	if len(data) > maxImageSize {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "file exceeds the 5MB limit"})
		return
	}

	eventName := r.FormValue("eventName")
	if eventName == "" {
		eventName = "event"
	}
	slug := whitespacePattern.ReplaceAllString(strings.ToLower(eventName), "-")
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), slug, filepath.Ext(header.Filename))

	url, err := h.blobs.UploadImage(r.Context(), name, contentType, data)
	if err != nil {
		h.logger.WithError(err).WithField("object", name).Error("image upload failed")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "failed to upload image"})
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Success: true, URL: url, FileName: name})
}

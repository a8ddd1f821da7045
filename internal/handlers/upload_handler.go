package handlers

import (
	"log"
	"net/http"

	"github.com/limbahku/backend/internal/models"
	"github.com/limbahku/backend/internal/services"
)

type UploadHandler struct {
	uploader      *services.CloudinaryUploader
	maxUploadSize int64
}

func NewUploadHandler(uploader *services.CloudinaryUploader, maxUploadSizeMB int64) *UploadHandler {
	return &UploadHandler{
		uploader:      uploader,
		maxUploadSize: maxUploadSizeMB << 20,
	}
}

// UploadImage forwards a multipart "file" part to the image host and
// returns the hosted URL. Images never touch local disk.
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid multipart form or file too large"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Missing file field: file"))
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		log.Printf("[Upload] Cloudinary upload failed: %v", err)
		writeJSON(w, http.StatusBadGateway, models.NewErrorResponse("Image upload failed"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.UploadResponse{URL: url}))
}

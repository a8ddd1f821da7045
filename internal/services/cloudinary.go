package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// CloudinaryUploader sends images to Cloudinary's unsigned upload endpoint
// and returns the hosted URL. Uploads are unsigned: the preset, not a
// credential, authorizes them.
type CloudinaryUploader struct {
	CloudName    string
	UploadPreset string
	Endpoint     string
	HTTPClient   *http.Client
}

func NewCloudinaryUploader(cloudName, uploadPreset string) *CloudinaryUploader {
	name := strings.TrimSpace(cloudName)
	return &CloudinaryUploader{
		CloudName:    name,
		UploadPreset: strings.TrimSpace(uploadPreset),
		Endpoint:     fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", name),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type cloudinaryUploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload streams the file to Cloudinary and returns the secure URL.
func (u *CloudinaryUploader) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	if u == nil || u.CloudName == "" || u.UploadPreset == "" {
		return "", fmt.Errorf("cloudinary uploader not configured")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := mw.WriteField("upload_preset", u.UploadPreset); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.Endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := u.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out cloudinaryUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error.Message != "" {
			return "", fmt.Errorf("cloudinary upload: %s", out.Error.Message)
		}
		return "", fmt.Errorf("cloudinary upload http %d", resp.StatusCode)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload returned no url")
	}
	return out.SecureURL, nil
}

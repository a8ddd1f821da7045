package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUpload_SendsUnsignedMultipart(t *testing.T) {
	var gotPreset, gotFile string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotPreset = r.FormValue("upload_preset")

		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			b, _ := io.ReadAll(file)
			gotFile = string(b)
			file.Close()
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"secure_url": "https://res.cloudinary.com/demo/image/upload/v1/photo.jpg"}`))
	}))
	defer server.Close()

	uploader := NewCloudinaryUploader("demo", "LimbahKu")
	uploader.Endpoint = server.URL

	url, err := uploader.Upload(context.Background(), "photo.jpg", strings.NewReader("image-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://res.cloudinary.com/demo/image/upload/v1/photo.jpg" {
		t.Errorf("url wrong: %q", url)
	}
	if gotPreset != "LimbahKu" {
		t.Errorf("upload_preset wrong: %q", gotPreset)
	}
	if gotFile != "image-bytes" {
		t.Errorf("file content wrong: %q", gotFile)
	}
}

func TestUpload_SurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Upload preset not found"}}`))
	}))
	defer server.Close()

	uploader := NewCloudinaryUploader("demo", "wrong-preset")
	uploader.Endpoint = server.URL

	_, err := uploader.Upload(context.Background(), "photo.jpg", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Upload preset not found") {
		t.Errorf("expected API message in error, got: %v", err)
	}
}

func TestUpload_NotConfigured(t *testing.T) {
	uploader := NewCloudinaryUploader("", "")

	_, err := uploader.Upload(context.Background(), "photo.jpg", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error when unconfigured")
	}
}

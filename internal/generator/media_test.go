package generator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func noGalleryDL(string) (string, error) { return "", errors.New("not found") }

func TestMediaDownloader_DirectFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp4-bytes"))
	}))
	defer server.Close()

	d := NewMediaDownloader(t.TempDir())
	d.lookPath = noGalleryDL

	path := d.Download(context.Background(), "42", "https://x.com/a/status/42", server.URL+"/v.mp4", ".mp4")
	if path == "" {
		t.Fatal("direct download should succeed")
	}
	if filepath.Base(path) != "42.mp4" {
		t.Errorf("unexpected file name %q", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "mp4-bytes" {
		t.Error("downloaded content mismatch")
	}
}

func TestMediaDownloader_TotalFailureReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	d := NewMediaDownloader(t.TempDir())
	d.lookPath = noGalleryDL

	if path := d.Download(context.Background(), "42", "", server.URL+"/v.mp4", ".mp4"); path != "" {
		t.Errorf("failed download must return empty path, got %q", path)
	}

	if path := d.Download(context.Background(), "43", "", "", ""); path != "" {
		t.Errorf("no urls must return empty path, got %q", path)
	}
}

func TestFindDownloaded_FlattensNestedOutput(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "twitter", "someone")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "pic_42_1.jpg"), []byte("jpg"), 0644); err != nil {
		t.Fatal(err)
	}
	// A non-media file with a matching name must be ignored.
	if err := os.WriteFile(filepath.Join(nested, "42.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	d := NewMediaDownloader(dir)
	path := d.findDownloaded("42")
	if path != filepath.Join(dir, "42.jpg") {
		t.Errorf("expected flattened path, got %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("flattened file missing: %v", err)
	}
}

func TestFindDownloaded_NothingMatches(t *testing.T) {
	d := NewMediaDownloader(t.TempDir())
	if path := d.findDownloaded("42"); path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
}

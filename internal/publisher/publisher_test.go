package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDryPublisher(t *testing.T) {
	p := NewDryPublisher()
	id, err := p.Publish(context.Background(), "hello", "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "dry-") {
		t.Errorf("dry post id should carry the dry- prefix, got %q", id)
	}

	other, _ := p.Publish(context.Background(), "hello again", "")
	if other == id {
		t.Error("dry post ids should be unique")
	}
}

func TestXPublisher_TextOnly(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); !strings.HasPrefix(auth, "OAuth ") {
			t.Errorf("expected OAuth signature, got %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatal(err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "1234567890"}})
	}))
	defer server.Close()

	p := NewXPublisher("k", "s", "at", "ats")
	p.tweetURL = server.URL

	id, err := p.Publish(context.Background(), "a fine post", "")
	if err != nil {
		t.Fatal(err)
	}
	if id != "1234567890" {
		t.Errorf("unexpected post id %q", id)
	}
	if gotBody["text"] != "a fine post" {
		t.Errorf("unexpected payload %v", gotBody)
	}
	if _, hasMedia := gotBody["media"]; hasMedia {
		t.Error("text-only post must not carry a media block")
	}
}

func TestXPublisher_WithMedia(t *testing.T) {
	mediaPath := filepath.Join(t.TempDir(), "pic.png")
	if err := os.WriteFile(mediaPath, []byte("png-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("expected multipart upload: %v", err)
		}
		if _, _, err := r.FormFile("media"); err != nil {
			t.Errorf("missing media form field: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"media_id_string": "media-99"})
	}))
	defer upload.Close()

	var tweetBody map[string]any
	tweet := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&tweetBody)
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "42"}})
	}))
	defer tweet.Close()

	p := NewXPublisher("k", "s", "at", "ats")
	p.uploadURL = upload.URL
	p.tweetURL = tweet.URL

	id, err := p.Publish(context.Background(), "with a picture", mediaPath)
	if err != nil {
		t.Fatal(err)
	}
	if id != "42" {
		t.Errorf("unexpected post id %q", id)
	}

	media, ok := tweetBody["media"].(map[string]any)
	if !ok {
		t.Fatalf("tweet payload missing media block: %v", tweetBody)
	}
	ids, _ := media["media_ids"].([]any)
	if len(ids) != 1 || ids[0] != "media-99" {
		t.Errorf("unexpected media ids %v", ids)
	}
}

func TestXPublisher_UploadFailureStopsPublish(t *testing.T) {
	mediaPath := filepath.Join(t.TempDir(), "pic.png")
	if err := os.WriteFile(mediaPath, []byte("png-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "media type not allowed", http.StatusBadRequest)
	}))
	defer upload.Close()

	tweetCalled := false
	tweet := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tweetCalled = true
	}))
	defer tweet.Close()

	p := NewXPublisher("k", "s", "at", "ats")
	p.uploadURL = upload.URL
	p.tweetURL = tweet.URL

	if _, err := p.Publish(context.Background(), "with a picture", mediaPath); err == nil {
		t.Fatal("upload failure must fail the publish")
	}
	if tweetCalled {
		t.Error("tweet endpoint must not be hit after a failed upload")
	}
}

func TestXPublisher_TweetAPIError(t *testing.T) {
	tweet := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"duplicate content"}`, http.StatusForbidden)
	}))
	defer tweet.Close()

	p := NewXPublisher("k", "s", "at", "ats")
	p.tweetURL = tweet.URL

	_, err := p.Publish(context.Background(), "a fine post", "")
	if err == nil {
		t.Fatal("API error must surface")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error should carry the status code, got %v", err)
	}
}

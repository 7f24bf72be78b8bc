package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SimonStenelid/X-team/internal/content"
)

type fakeRenderer struct {
	urls      []string
	requestID string
	err       error
	prompt    string
}

func (f *fakeRenderer) Render(ctx context.Context, prompt string) ([]string, string, error) {
	f.prompt = prompt
	return f.urls, f.requestID, f.err
}

func TestImageGenerator_Generate(t *testing.T) {
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes"))
	}))
	defer imageServer.Close()

	llm := &fakeLLM{content: "neural pathways as golden threads, cinematic, 8k"}
	renderer := &fakeRenderer{urls: []string{imageServer.URL + "/out.png"}, requestID: "req-1"}
	mediaDir := t.TempDir()

	g := NewImageGenerator(llm, renderer, mediaDir, fixedNow)
	if g.Type() != content.TypeImage {
		t.Errorf("wrong type %s", g.Type())
	}

	cand, err := g.Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cand.Text != "The future of AI agents >" {
		t.Errorf("unexpected caption %q", cand.Text)
	}
	if renderer.prompt != llm.content {
		t.Errorf("enhanced prompt not passed to renderer: %q", renderer.prompt)
	}

	if !strings.HasPrefix(cand.MediaPath, mediaDir) || !strings.HasSuffix(cand.MediaPath, "req-1.png") {
		t.Errorf("unexpected media path %q", cand.MediaPath)
	}
	data, err := os.ReadFile(cand.MediaPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "png-bytes" {
		t.Error("downloaded file content mismatch")
	}

	meta, ok := cand.Meta.(content.ImageMeta)
	if !ok {
		t.Fatalf("expected ImageMeta, got %T", cand.Meta)
	}
	if meta.Prompt != llm.content || meta.ImageURL != renderer.urls[0] {
		t.Errorf("unexpected meta %+v", meta)
	}
}

func TestImageGenerator_DownloadFailureFailsCandidate(t *testing.T) {
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer imageServer.Close()

	g := NewImageGenerator(
		&fakeLLM{content: "prompt"},
		&fakeRenderer{urls: []string{imageServer.URL + "/out.png"}, requestID: "req-2"},
		t.TempDir(), fixedNow)

	if _, err := g.Generate(context.Background()); err == nil {
		t.Error("a failed download must fail the whole candidate")
	}
}

func TestImageGenerator_RenderFailure(t *testing.T) {
	g := NewImageGenerator(
		&fakeLLM{content: "prompt"},
		&fakeRenderer{err: errors.New("render quota")},
		t.TempDir(), fixedNow)
	if _, err := g.Generate(context.Background()); err == nil {
		t.Error("render failure must fail generation")
	}

	g = NewImageGenerator(&fakeLLM{content: "prompt"}, &fakeRenderer{requestID: "r"}, t.TempDir(), fixedNow)
	if _, err := g.Generate(context.Background()); err == nil {
		t.Error("render with no outputs must fail generation")
	}
}

func TestRenderClient_SubmitAndPoll(t *testing.T) {
	var polls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/midjourney/text-to-image"):
			if got := r.Header.Get("Authorization"); got != "Bearer ws-key" {
				t.Errorf("unexpected auth header %q", got)
			}
			var req map[string]any
			json.NewDecoder(r.Body).Decode(&req)
			if req["aspect_ratio"] != "1:1" || req["version"] != "7" {
				t.Errorf("unexpected job parameters %v", req)
			}
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "job-1"}})

		case r.Method == "GET" && strings.HasSuffix(r.URL.Path, "/predictions/job-1/result"):
			status := "processing"
			var outputs []string
			if polls.Add(1) >= 2 {
				status = "completed"
				outputs = []string{"https://cdn/img.png"}
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"status": status, "outputs": outputs},
			})

		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	c := NewRenderClient("ws-key", server.URL)
	c.pollInterval = 10 * time.Millisecond

	urls, requestID, err := c.Render(context.Background(), "a prompt")
	if err != nil {
		t.Fatal(err)
	}
	if requestID != "job-1" {
		t.Errorf("unexpected request id %q", requestID)
	}
	if len(urls) != 1 || urls[0] != "https://cdn/img.png" {
		t.Errorf("unexpected outputs %v", urls)
	}
}

func TestRenderClient_JobFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "job-2"}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"status": "failed", "error": "content policy"},
		})
	}))
	defer server.Close()

	c := NewRenderClient("ws-key", server.URL)
	c.pollInterval = 10 * time.Millisecond

	_, _, err := c.Render(context.Background(), "a prompt")
	if err == nil {
		t.Fatal("failed job must surface as an error")
	}
	if !strings.Contains(err.Error(), "content policy") {
		t.Errorf("error should carry the job failure reason, got %v", err)
	}
}

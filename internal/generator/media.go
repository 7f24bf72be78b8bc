package generator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// MediaDownloader fetches post media into a local directory. gallery-dl is
// preferred when it is on PATH since it handles platform auth and picks the
// highest-quality rendition; a direct URL fetch is the fallback.
type MediaDownloader struct {
	dir        string
	timeout    time.Duration
	httpClient *http.Client

	lookPath func(string) (string, error)
}

// NewMediaDownloader creates a downloader that saves into dir.
func NewMediaDownloader(dir string) *MediaDownloader {
	return &MediaDownloader{
		dir:     dir,
		timeout: 60 * time.Second,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		lookPath: exec.LookPath,
	}
}

// Download tries gallery-dl against postURL first, then the direct media
// URL. Returns the local path, or "" when no strategy succeeded.
func (d *MediaDownloader) Download(ctx context.Context, postID, postURL, directURL, directExt string) string {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		slog.Warn("Media dir unavailable", "dir", d.dir, "error", err)
		return ""
	}

	if postURL != "" {
		if path := d.galleryDL(ctx, postID, postURL); path != "" {
			return path
		}
	}

	if directURL != "" {
		path, err := d.direct(ctx, postID, directURL, directExt)
		if err != nil {
			slog.Warn("Direct media download failed", "post_id", postID, "error", err)
			return ""
		}
		return path
	}

	slog.Warn("No media download strategy succeeded", "post_id", postID, "post_url", postURL)
	return ""
}

func (d *MediaDownloader) galleryDL(ctx context.Context, postID, postURL string) string {
	bin, err := d.lookPath("gallery-dl")
	if err != nil {
		slog.Info("gallery-dl not on PATH, falling back to direct download")
		return ""
	}

	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin,
		"--no-part",
		"--no-mtime",
		"-o", fmt.Sprintf("filename=%s.{extension}", postID),
		"-d", d.dir,
		postURL,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		slog.Warn("gallery-dl failed", "post_id", postID, "error", err, "output", truncate(string(out), 200))
		return ""
	}

	// gallery-dl may nest output under site/user subdirectories.
	path := d.findDownloaded(postID)
	if path == "" {
		slog.Warn("gallery-dl completed but no media file found", "post_id", postID)
	}
	return path
}

func (d *MediaDownloader) findDownloaded(postID string) string {
	var found string
	filepath.WalkDir(d.dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil || entry.IsDir() || found != "" {
			return err
		}
		name := entry.Name()
		if !strings.Contains(name, postID) {
			return nil
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".mp4", ".jpg", ".jpeg", ".png", ".gif", ".webm":
			found = path
		}
		return nil
	})
	if found == "" {
		return ""
	}

	// Flatten into the media dir root under a clean name.
	target := filepath.Join(d.dir, postID+filepath.Ext(found))
	if found != target {
		if err := os.Rename(found, target); err != nil {
			return found
		}
	}
	return target
}

func (d *MediaDownloader) direct(ctx context.Context, postID, url, ext string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media fetch failed (status %d)", resp.StatusCode)
	}

	path := filepath.Join(d.dir, postID+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	slog.Info("Media downloaded", "post_id", postID, "path", path)
	return path, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

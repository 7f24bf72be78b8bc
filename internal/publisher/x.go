package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dghubble/oauth1"
)

const (
	mediaUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
	createTweetURL = "https://api.twitter.com/2/tweets"
)

// XPublisher posts to X with OAuth 1.0a user-context credentials. Media goes
// through the v1.1 upload endpoint, the tweet itself through v2.
type XPublisher struct {
	httpClient *http.Client

	uploadURL string
	tweetURL  string
}

// NewXPublisher creates a publisher signing with the given credentials.
func NewXPublisher(apiKey, apiSecret, accessToken, accessTokenSecret string) *XPublisher {
	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessTokenSecret)

	client := config.Client(oauth1.NoContext, token)
	client.Timeout = 120 * time.Second

	return &XPublisher{
		httpClient: client,
		uploadURL:  mediaUploadURL,
		tweetURL:   createTweetURL,
	}
}

// Publish uploads the media when present, then creates the tweet.
func (p *XPublisher) Publish(ctx context.Context, text, mediaPath string) (string, error) {
	var mediaID string
	if mediaPath != "" {
		id, err := p.uploadMedia(ctx, mediaPath)
		if err != nil {
			return "", fmt.Errorf("upload media: %w", err)
		}
		mediaID = id
		slog.Info("Media uploaded", "media_id", mediaID, "path", mediaPath)
	}

	postID, err := p.createTweet(ctx, text, mediaID)
	if err != nil {
		return "", fmt.Errorf("create tweet: %w", err)
	}
	slog.Info("Posted to X", "post_id", postID, "chars", len(text), "has_media", mediaID != "")
	return postID, nil
}

func (p *XPublisher) uploadMedia(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open media: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("media", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read media: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.uploadURL, &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("media upload failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var upload struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.Unmarshal(respBody, &upload); err != nil {
		return "", fmt.Errorf("parse upload response: %w", err)
	}
	if upload.MediaIDString == "" {
		return "", fmt.Errorf("no media id in upload response")
	}
	return upload.MediaIDString, nil
}

func (p *XPublisher) createTweet(ctx context.Context, text, mediaID string) (string, error) {
	payload := map[string]any{"text": text}
	if mediaID != "" {
		payload["media"] = map[string]any{"media_ids": []string{mediaID}}
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.tweetURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("tweet creation failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", fmt.Errorf("parse tweet response: %w", err)
	}
	if created.Data.ID == "" {
		return "", fmt.Errorf("no post id in tweet response")
	}
	return created.Data.ID, nil
}

package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	scraperAPIBase = "https://api.apify.com/v2"

	// Pay-per-result X scraper actor. "~" is the Apify path separator.
	defaultScraperActorID = "kaitoeasyapi~twitter-x-data-tweet-scraper-pay-per-result-cheapest"
)

// ViralPost is one platform post returned by the scraper.
type ViralPost struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Text   string `json:"text"`
	Author struct {
		UserName string `json:"userName"`
	} `json:"author"`
	LikeCount    int    `json:"likeCount"`
	RetweetCount int    `json:"retweetCount"`
	ReplyCount   int    `json:"replyCount"`
	CreatedAt    string `json:"createdAt"`

	Videos []struct {
		Variants []struct {
			URL     string `json:"url"`
			Bitrate int    `json:"bitrate"`
		} `json:"variants"`
	} `json:"videos"`
	Photos []struct {
		URL string `json:"url"`
	} `json:"photos"`
}

// BestMediaURL returns the preferred direct media URL and its extension, or
// empty strings when the post carries no downloadable media. Videos win over
// photos; variants are compared by bitrate.
func (p *ViralPost) BestMediaURL() (string, string) {
	for _, v := range p.Videos {
		best, bitrate := "", -1
		for _, variant := range v.Variants {
			if variant.URL != "" && variant.Bitrate > bitrate {
				best, bitrate = variant.URL, variant.Bitrate
			}
		}
		if best != "" {
			return best, ".mp4"
		}
	}
	for _, photo := range p.Photos {
		if photo.URL != "" {
			return photo.URL, ".jpg"
		}
	}
	return "", ""
}

// ScraperClient runs the X scraper actor synchronously and returns the
// dataset items.
type ScraperClient struct {
	token      string
	actorID    string
	apiBase    string
	httpClient *http.Client
}

// NewScraperClient creates a scraper API client.
func NewScraperClient(token, actorID string) *ScraperClient {
	if actorID == "" {
		actorID = defaultScraperActorID
	}
	return &ScraperClient{
		token:   token,
		actorID: actorID,
		apiBase: scraperAPIBase,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // actor runs are slow
		},
	}
}

// SearchInput is the actor input for a viral-post search.
type SearchInput struct {
	SearchTerms []string `json:"searchTerms"`
	Lang        string   `json:"lang"`
	Since       string   `json:"since"`
	Until       string   `json:"until"`
	MinFaves    int      `json:"min_faves"`
	MaxItems    int      `json:"maxItems"`
}

// Search runs the actor with the given input and returns the scraped posts.
func (c *ScraperClient) Search(ctx context.Context, input SearchInput) ([]ViralPost, error) {
	jsonBody, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal actor input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items?token=%s",
		c.apiBase, c.actorID, url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("scraper API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var posts []ViralPost
	if err := json.Unmarshal(respBody, &posts); err != nil {
		return nil, fmt.Errorf("parse dataset items: %w", err)
	}
	return posts, nil
}

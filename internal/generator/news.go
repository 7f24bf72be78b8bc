package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SimonStenelid/X-team/internal/content"
	"github.com/SimonStenelid/X-team/internal/provider"
)

const newsQuery = "AI agents automation"

const newsSystemPrompt = `You are an AI news curator specializing in AI agents and automation.

From the headlines provided, identify THE ONE most viral-worthy story:
- Most recent (within the last 24-48 hours)
- High engagement potential
- Significant impact on the AI/tech community
- Preferably about AI agents or automation

Then create ONE X post (max 280 characters) about this story:
- Professional but engaging tone
- Tech-focused, not humorous, but not too serious
- Include the key insight or takeaway
- Keep it concise and impactful
- Follow the typical non-serious but viral-making X posting style

Return ONLY the post text, nothing else.`

// NewsSearcher is the news search dependency of the news generator.
type NewsSearcher interface {
	SearchNews(ctx context.Context, query string, num int) ([]NewsResult, error)
}

// NewsGenerator composes a post from a fresh news search.
type NewsGenerator struct {
	llm    provider.LLMProvider
	search NewsSearcher
	now    func() time.Time
}

// NewNewsGenerator creates the news generator.
func NewNewsGenerator(llm provider.LLMProvider, search NewsSearcher, now func() time.Time) *NewsGenerator {
	if now == nil {
		now = time.Now
	}
	return &NewsGenerator{llm: llm, search: search, now: now}
}

func (g *NewsGenerator) Type() content.Type { return content.TypeNews }

// Generate searches for recent AI news and composes a post about the most
// promising story.
func (g *NewsGenerator) Generate(ctx context.Context) (*content.Candidate, error) {
	results, err := g.search.SearchNews(ctx, newsQuery, 10)
	if err != nil {
		return nil, fmt.Errorf("search news: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no news results for %q", newsQuery)
	}
	slog.Info("News search complete", "query", newsQuery, "results", len(results))

	var digest strings.Builder
	fmt.Fprintf(&digest, "Today's date: %s\n\nHeadlines:\n", g.now().Format("January 2, 2006"))
	for i, r := range results {
		fmt.Fprintf(&digest, "%d. %s (%s, %s)\n   %s\n", i+1, r.Title, r.Source, r.Date, r.Snippet)
	}
	digest.WriteString("\nPick the most viral-worthy story and write ONE X post about it (MUST BE UNDER 280 CHARACTERS). Return ONLY the post text.")

	resp, err := g.llm.Chat(ctx, &provider.ChatRequest{
		Messages: []provider.Message{
			{Role: "system", Content: newsSystemPrompt},
			{Role: "user", Content: digest.String()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compose news post: %w", err)
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return nil, fmt.Errorf("empty news post from model")
	}

	return &content.Candidate{
		Text: text,
		Meta: content.NewsMeta{
			Query:    newsQuery,
			Headline: results[0].Title,
			Link:     results[0].Link,
		},
	}, nil
}

package generator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SimonStenelid/X-team/internal/content"
	"github.com/SimonStenelid/X-team/internal/provider"
)

const (
	curatorMinEngagement = 1000
	curatorSweetSpotMax  = 5000
	curatorMaxAgeHours   = 48
	curatorMaxItems      = 30
)

const commentarySystemTemplate = `You are writing viral X posts about AI.

ORIGINAL TWEET: %s
ORIGINAL AUTHOR: @%s

Write a SHORT reaction (max 200 characters for the main text, not counting attribution).

MUST START WITH one of these hooks (choose the most appropriate):
- "This is wild."
- "[Tool/Company] just dropped [feature]"
- "[Tool] absolutely cooked with [feature]"
- "Wow [Tool] continue to impress."

STYLE RULES:
- Excited educator, never corporate
- Genuine enthusiasm, not cynical
- Short and punchy
- MUST be completely different from the original text (don't copy)
- Focus on WHY it matters, not just WHAT it is

AVOID:
- Corporate jargon
- "Check this out" / "Link in bio"
- Excessive hashtags

FORMAT:
[Your commentary - max 200 chars]

via @%s

OUTPUT ONLY THE COMPLETE TEXT (commentary + attribution). NO QUOTES OR EXPLANATION.
The attribution line "via @%s" MUST be included at the end.`

// ViralSearcher is the scraper dependency of the curator.
type ViralSearcher interface {
	Search(ctx context.Context, input SearchInput) ([]ViralPost, error)
}

// CuratedChecker reports whether a source post was already reposted, so the
// curator never offers a candidate the dedup layer would reject anyway.
type CuratedChecker interface {
	AlreadyCurated(ctx context.Context, sourcePostID string) (bool, error)
}

// CuratorGenerator finds a viral AI post, downloads its media best-effort,
// and writes commentary over it. A candidate with text but no media is still
// a valid candidate.
type CuratorGenerator struct {
	llm     provider.LLMProvider
	search  ViralSearcher
	media   *MediaDownloader
	curated CuratedChecker
	now     func() time.Time
}

// NewCuratorGenerator creates the curator. curated may be nil to disable the
// pre-filter.
func NewCuratorGenerator(llm provider.LLMProvider, search ViralSearcher, media *MediaDownloader, curated CuratedChecker, now func() time.Time) *CuratorGenerator {
	if now == nil {
		now = time.Now
	}
	return &CuratorGenerator{llm: llm, search: search, media: media, curated: curated, now: now}
}

func (g *CuratorGenerator) Type() content.Type { return content.TypeCurator }

// Generate searches for viral posts, picks the best unseen one, and builds a
// commentary candidate around it.
func (g *CuratorGenerator) Generate(ctx context.Context) (*content.Candidate, error) {
	posts, err := g.search.Search(ctx, g.searchInput())
	if err != nil {
		return nil, fmt.Errorf("search viral posts: %w", err)
	}
	slog.Info("Viral search complete", "candidates", len(posts))

	ranked := g.rank(ctx, posts)
	if len(ranked) == 0 {
		return nil, fmt.Errorf("no viral posts passed filtering")
	}
	top := ranked[0]
	slog.Info("Top viral post", "author", top.Author.UserName, "likes", top.LikeCount)

	commentary, err := g.commentary(ctx, &top)
	if err != nil {
		return nil, err
	}

	// Media failure never fails a candidate that has text.
	var mediaPath string
	if g.media != nil {
		directURL, directExt := top.BestMediaURL()
		mediaPath = g.media.Download(ctx, top.ID, top.URL, directURL, directExt)
	}

	return &content.Candidate{
		Text:      commentary,
		MediaPath: mediaPath,
		Meta: content.CuratorMeta{
			OriginalAuthor: top.Author.UserName,
			OriginalPostID: top.ID,
			Likes:          top.LikeCount,
			Retweets:       top.RetweetCount,
			Replies:        top.ReplyCount,
		},
	}, nil
}

func (g *CuratorGenerator) searchInput() SearchInput {
	until := g.now().UTC()
	since := until.Add(-curatorMaxAgeHours * time.Hour)

	// The scraper takes advanced-search operators inside each term.
	const stamp = "2006-01-02_15:04:05_UTC"
	window := fmt.Sprintf("since:%s until:%s", since.Format(stamp), until.Format(stamp))
	terms := []string{
		fmt.Sprintf("#Veo2 min_faves:%d %s", curatorMinEngagement, window),
		fmt.Sprintf("#Sora min_faves:%d %s", curatorMinEngagement, window),
		fmt.Sprintf("#AIVideo min_faves:%d %s", curatorMinEngagement, window),
		fmt.Sprintf("ChatGPT video min_faves:%d %s", curatorMinEngagement, window),
	}

	return SearchInput{
		SearchTerms: terms,
		Lang:        "en",
		Since:       since.Format(stamp),
		Until:       until.Format(stamp),
		MinFaves:    curatorMinEngagement,
		MaxItems:    curatorMaxItems,
	}
}

// rank filters out under-engaged and already-curated posts and orders the
// rest by a heuristic score.
func (g *CuratorGenerator) rank(ctx context.Context, posts []ViralPost) []ViralPost {
	var kept []ViralPost
	scores := make(map[string]int)

	for _, p := range posts {
		if p.LikeCount < curatorMinEngagement {
			continue
		}
		if g.curated != nil {
			seen, err := g.curated.AlreadyCurated(ctx, p.ID)
			if err != nil {
				slog.Warn("Curated lookup failed", "post_id", p.ID, "error", err)
			} else if seen {
				continue
			}
		}
		scores[p.ID] = scorePost(&p)
		kept = append(kept, p)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return scores[kept[i].ID] > scores[kept[j].ID]
	})
	return kept
}

// scorePost rewards the engagement sweet spot, key AI tool mentions, fresh
// releases, and attached media.
func scorePost(p *ViralPost) int {
	score := 0

	switch {
	case p.LikeCount >= curatorMinEngagement && p.LikeCount <= curatorSweetSpotMax:
		score += 10
	case p.LikeCount < curatorMinEngagement:
		score += 5
	default:
		score += 3 // already too viral, probably too late
	}

	text := strings.ToLower(p.Text)
	if containsAny(text, "veo", "sora", "chatgpt", "claude") {
		score += 5
	}
	if containsAny(text, "tool", "model", "release", "launched", "dropped") {
		score += 3
	} else if containsAny(text, "demo", "showcase", "generated", "ai") {
		score += 2
	}

	if len(p.Videos) > 0 {
		score += 2
	} else if len(p.Photos) > 0 {
		score += 1
	}
	return score
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func (g *CuratorGenerator) commentary(ctx context.Context, p *ViralPost) (string, error) {
	system := fmt.Sprintf(commentarySystemTemplate,
		p.Text, p.Author.UserName, p.Author.UserName, p.Author.UserName)

	resp, err := g.llm.Chat(ctx, &provider.ChatRequest{
		Messages: []provider.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: "Generate the commentary for this tweet. Return the complete text including attribution."},
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate commentary: %w", err)
	}

	commentary := strings.TrimSpace(resp.Content)
	if commentary == "" {
		return "", fmt.Errorf("empty commentary from model")
	}

	attribution := "via @" + p.Author.UserName
	if !strings.Contains(commentary, attribution) {
		commentary += "\n\n" + attribution
	}
	return commentary, nil
}

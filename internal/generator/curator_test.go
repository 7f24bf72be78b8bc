package generator

import (
	"context"
	"strings"
	"testing"

	"github.com/SimonStenelid/X-team/internal/content"
)

type fakeViralSearcher struct {
	posts []ViralPost
	err   error
	input SearchInput
}

func (f *fakeViralSearcher) Search(ctx context.Context, input SearchInput) ([]ViralPost, error) {
	f.input = input
	return f.posts, f.err
}

type fakeCuratedChecker struct {
	seen map[string]bool
}

func (f *fakeCuratedChecker) AlreadyCurated(ctx context.Context, id string) (bool, error) {
	return f.seen[id], nil
}

func viralPost(id, author, text string, likes int) ViralPost {
	var p ViralPost
	p.ID = id
	p.Author.UserName = author
	p.Text = text
	p.LikeCount = likes
	return p
}

func TestCuratorGenerator_Generate(t *testing.T) {
	search := &fakeViralSearcher{posts: []ViralPost{
		viralPost("1", "minchoi", "Sora just dropped a new model", 2400),
	}}
	llm := &fakeLLM{content: "This is wild. Sora keeps raising the bar.\n\nvia @minchoi"}

	g := NewCuratorGenerator(llm, search, nil, nil, fixedNow)
	if g.Type() != content.TypeCurator {
		t.Errorf("wrong type %s", g.Type())
	}

	cand, err := g.Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(cand.Text, "via @minchoi") {
		t.Errorf("attribution missing: %q", cand.Text)
	}
	if strings.Count(cand.Text, "via @minchoi") != 1 {
		t.Errorf("attribution duplicated: %q", cand.Text)
	}

	meta, ok := cand.Meta.(content.CuratorMeta)
	if !ok {
		t.Fatalf("expected CuratorMeta, got %T", cand.Meta)
	}
	if meta.OriginalPostID != "1" || meta.OriginalAuthor != "minchoi" || meta.Likes != 2400 {
		t.Errorf("unexpected meta %+v", meta)
	}

	// The search window carries the engagement floor.
	if len(search.input.SearchTerms) == 0 {
		t.Fatal("no search terms sent")
	}
	for _, term := range search.input.SearchTerms {
		if !strings.Contains(term, "min_faves:1000") {
			t.Errorf("term missing engagement floor: %q", term)
		}
		if !strings.Contains(term, "since:2025-06-08_09:00:00_UTC") {
			t.Errorf("term missing 48h window: %q", term)
		}
	}
}

func TestCuratorGenerator_AppendsAttribution(t *testing.T) {
	search := &fakeViralSearcher{posts: []ViralPost{
		viralPost("7", "someone", "ChatGPT demo", 1500),
	}}
	// Model forgot the attribution line.
	llm := &fakeLLM{content: "Wow ChatGPT continue to impress."}

	g := NewCuratorGenerator(llm, search, nil, nil, fixedNow)
	cand, err := g.Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(cand.Text, "via @someone") {
		t.Errorf("attribution not appended: %q", cand.Text)
	}
}

func TestCuratorGenerator_SkipsAlreadyCurated(t *testing.T) {
	search := &fakeViralSearcher{posts: []ViralPost{
		viralPost("seen", "a", "Sora release", 2000),
		viralPost("fresh", "b", "Veo release", 2000),
	}}
	checker := &fakeCuratedChecker{seen: map[string]bool{"seen": true}}
	llm := &fakeLLM{content: "This is wild.\n\nvia @b"}

	g := NewCuratorGenerator(llm, search, nil, checker, fixedNow)
	cand, err := g.Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	meta := cand.Meta.(content.CuratorMeta)
	if meta.OriginalPostID != "fresh" {
		t.Errorf("already-curated post must be skipped, picked %q", meta.OriginalPostID)
	}
}

func TestCuratorGenerator_NothingPassesFilter(t *testing.T) {
	search := &fakeViralSearcher{posts: []ViralPost{
		viralPost("1", "a", "meh", 200), // under the engagement floor
	}}
	g := NewCuratorGenerator(&fakeLLM{content: "x"}, search, nil, nil, fixedNow)
	if _, err := g.Generate(context.Background()); err == nil {
		t.Error("no qualifying posts must fail generation")
	}
}

func TestScorePost(t *testing.T) {
	sweet := viralPost("1", "a", "Sora just launched a new model", 2000)
	sweet.Videos = append(sweet.Videos, struct {
		Variants []struct {
			URL     string `json:"url"`
			Bitrate int    `json:"bitrate"`
		} `json:"variants"`
	}{})
	// 10 (sweet spot) + 5 (tool) + 3 (release words) + 2 (video)
	if got := scorePost(&sweet); got != 20 {
		t.Errorf("sweet-spot video post scored %d, want 20", got)
	}

	tooViral := viralPost("2", "a", "random text", 50000)
	if got := scorePost(&tooViral); got != 3 {
		t.Errorf("over-viral plain post scored %d, want 3", got)
	}
}

func TestRank_OrdersByScore(t *testing.T) {
	low := viralPost("low", "a", "nothing special", 80000)
	high := viralPost("high", "b", "Claude just dropped a new tool", 3000)

	g := NewCuratorGenerator(&fakeLLM{}, nil, nil, nil, fixedNow)
	ranked := g.rank(context.Background(), []ViralPost{low, high})
	if len(ranked) != 2 {
		t.Fatalf("expected both posts kept, got %d", len(ranked))
	}
	if ranked[0].ID != "high" {
		t.Errorf("expected high-score post first, got %q", ranked[0].ID)
	}
}

func TestBestMediaURL(t *testing.T) {
	var p ViralPost
	if u, ext := p.BestMediaURL(); u != "" || ext != "" {
		t.Errorf("no media should yield empty, got %q %q", u, ext)
	}

	p.Photos = []struct {
		URL string `json:"url"`
	}{{URL: "https://cdn/p.jpg"}}
	if u, ext := p.BestMediaURL(); u != "https://cdn/p.jpg" || ext != ".jpg" {
		t.Errorf("photo fallback wrong: %q %q", u, ext)
	}

	p.Videos = []struct {
		Variants []struct {
			URL     string `json:"url"`
			Bitrate int    `json:"bitrate"`
		} `json:"variants"`
	}{{Variants: []struct {
		URL     string `json:"url"`
		Bitrate int    `json:"bitrate"`
	}{
		{URL: "https://cdn/v-low.mp4", Bitrate: 832},
		{URL: "https://cdn/v-high.mp4", Bitrate: 2176},
	}}}
	if u, ext := p.BestMediaURL(); u != "https://cdn/v-high.mp4" || ext != ".mp4" {
		t.Errorf("video variant choice wrong: %q %q", u, ext)
	}
}

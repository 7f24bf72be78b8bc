package generator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SimonStenelid/X-team/internal/content"
	"github.com/SimonStenelid/X-team/internal/provider"
)

const imageDefaultCaption = "The future of AI agents >"

const promptEnhancerSystem = `You are a Midjourney prompt expert specializing in viral-worthy AI-themed imagery.

Create a stunning Midjourney v7 prompt that:
- Creates aesthetic, cinematic, viral-potential visuals
- Relates to AI, technology, automation, or futuristic themes
- Goes beyond just "robots": abstract AI concepts, digital aesthetics, cyber scenes, futuristic landscapes

PROMPT STYLE GUIDELINES:
- Start with the main subject/scene
- Add style keywords: ultra-realistic, cinematic, aesthetic, ethereal, dreamlike, surreal
- Include lighting: soft lighting, dramatic lighting, neon glow, volumetric lighting
- Include quality boosters: masterpiece, 8k, highly detailed, professional photography
- Keep it focused and under 300 characters

EXAMPLES:
- "neural network pathways visualized as glowing golden threads in deep space, ethereal, cinematic lighting, ultra-detailed, 8k, dreamlike atmosphere"
- "minimalist AI consciousness sphere floating in void, soft neon glow, aesthetic composition, surreal, professional render, clean and beautiful"

Return ONLY the Midjourney prompt text, nothing else. Keep it under 300 characters.`

// ImageRenderer is the render API dependency of the image generator.
type ImageRenderer interface {
	Render(ctx context.Context, prompt string) (urls []string, requestID string, err error)
}

// ImageGenerator enhances a prompt with the LLM, renders an image, and
// downloads the first output. Unlike the other media paths, a download
// failure fails the whole candidate: an image post without the image is
// pointless.
type ImageGenerator struct {
	llm      provider.LLMProvider
	renderer ImageRenderer
	mediaDir string
	now      func() time.Time

	httpClient *http.Client
}

// NewImageGenerator creates the image generator. Images are saved under
// mediaDir.
func NewImageGenerator(llm provider.LLMProvider, renderer ImageRenderer, mediaDir string, now func() time.Time) *ImageGenerator {
	if now == nil {
		now = time.Now
	}
	return &ImageGenerator{
		llm:      llm,
		renderer: renderer,
		mediaDir: mediaDir,
		now:      now,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (g *ImageGenerator) Type() content.Type { return content.TypeImage }

// Generate renders one AI-themed image and returns it with the default
// caption.
func (g *ImageGenerator) Generate(ctx context.Context) (*content.Candidate, error) {
	prompt, err := g.enhancePrompt(ctx)
	if err != nil {
		return nil, err
	}

	urls, requestID, err := g.renderer.Render(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("render image: %w", err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("render returned no image urls")
	}

	path, err := g.download(ctx, urls[0], requestID)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}

	return &content.Candidate{
		Text:      imageDefaultCaption,
		MediaPath: path,
		Meta: content.ImageMeta{
			Prompt:   prompt,
			ImageURL: urls[0],
		},
	}, nil
}

func (g *ImageGenerator) enhancePrompt(ctx context.Context) (string, error) {
	resp, err := g.llm.Chat(ctx, &provider.ChatRequest{
		Messages: []provider.Message{
			{Role: "system", Content: promptEnhancerSystem},
			{Role: "user", Content: "Create a Midjourney prompt for a viral AI-themed image. Return ONLY the prompt text."},
		},
	})
	if err != nil {
		return "", fmt.Errorf("enhance prompt: %w", err)
	}
	prompt := strings.TrimSpace(resp.Content)
	if prompt == "" {
		return "", fmt.Errorf("empty prompt from model")
	}
	return prompt, nil
}

func (g *ImageGenerator) download(ctx context.Context, url, requestID string) (string, error) {
	if err := os.MkdirAll(g.mediaDir, 0755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image fetch failed (status %d)", resp.StatusCode)
	}

	name := fmt.Sprintf("%s_%s.png", g.now().Format("20060102_150405"), requestID)
	path := filepath.Join(g.mediaDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

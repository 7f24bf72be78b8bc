package cli

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/SimonStenelid/X-team/internal/config"
	"github.com/SimonStenelid/X-team/internal/content"
	"github.com/SimonStenelid/X-team/internal/dedup"
	"github.com/SimonStenelid/X-team/internal/events"
	"github.com/SimonStenelid/X-team/internal/generator"
	"github.com/SimonStenelid/X-team/internal/notify"
	"github.com/SimonStenelid/X-team/internal/orchestrator"
	"github.com/SimonStenelid/X-team/internal/provider"
	"github.com/SimonStenelid/X-team/internal/publisher"
	"github.com/SimonStenelid/X-team/internal/schedule"
	"github.com/SimonStenelid/X-team/internal/selector"
	"github.com/SimonStenelid/X-team/internal/store"
	"github.com/SimonStenelid/X-team/internal/validator"
)

// app bundles the wired pipeline for one CLI invocation.
type app struct {
	cfg     *config.Config
	store   *store.Store
	orch    *orchestrator.Orchestrator
	emitter *events.Emitter
}

// newApp loads configuration and wires the full pipeline. dry selects the
// dry-run publisher; it is also forced when posting credentials are missing.
func newApp(dry bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(dry); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := config.EnsureDir(cfg.Paths.DataDir); err != nil {
		return nil, err
	}
	if err := config.EnsureDir(cfg.Paths.MediaDir); err != nil {
		return nil, err
	}

	st, err := store.Open(filepath.Join(cfg.Paths.DataDir, "xteam.db"))
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Posting.Timezone)
	if err != nil {
		slog.Warn("Unknown timezone, using UTC", "timezone", cfg.Posting.Timezone)
		loc = time.UTC
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	llm := provider.NewOpenAIProvider(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.APIBase, cfg.Providers.OpenAI.Model)
	embedder := &embeddingAdapter{provider: llm, model: cfg.Providers.OpenAI.EmbeddingModel}

	windows := make([]schedule.Window, 0, len(cfg.Posting.Windows))
	for _, w := range cfg.Posting.Windows {
		windows = append(windows, schedule.Window{
			Name:        w.Name,
			StartHour:   w.StartHour,
			EndHour:     w.EndHour,
			Probability: w.Probability,
		})
	}
	scheduler := schedule.New(windows, cfg.Posting.TimeVarianceMinutes, cfg.Posting.MinGapHours, loc, rng, nil)

	detector := dedup.New(st, embedder, cfg.Quality.SimilarityThreshold, cfg.History.TrackDays, nil)

	media := generator.NewMediaDownloader(cfg.Paths.MediaDir)
	generators := map[content.Type]generator.Generator{
		content.TypeNews: generator.NewNewsGenerator(llm,
			generator.NewSerperClient(cfg.Providers.Serper.APIKey), nil),
		content.TypeMeme: generator.NewMemeGenerator(llm),
		content.TypeImage: generator.NewImageGenerator(llm,
			generator.NewRenderClient(cfg.Providers.Render.APIKey, cfg.Providers.Render.APIBase),
			cfg.Paths.MediaDir, nil),
		content.TypeCurator: generator.NewCuratorGenerator(llm,
			generator.NewScraperClient(cfg.Providers.Scraper.APIKey, cfg.Providers.Scraper.ActorID),
			media, &curatedChecker{store: st}, nil),
	}

	var pub publisher.Publisher
	if dry || !cfg.X.Complete() {
		if !dry {
			slog.Warn("X credentials incomplete, falling back to dry-run publisher")
		}
		pub = publisher.NewDryPublisher()
	} else {
		pub = publisher.NewXPublisher(cfg.X.APIKey, cfg.X.APISecret, cfg.X.AccessToken, cfg.X.AccessTokenSecret)
	}

	emitter := events.NewEmitter(cfg.Events.Kafka.Enabled, cfg.Events.Kafka.Brokers, cfg.Events.Kafka.Topic)

	orch := orchestrator.New(orchestrator.Options{
		Store:     st,
		Selector:  selector.New(cfg.Posting.BaseWeights, rng),
		Scheduler: scheduler,
		Validator: validator.New(cfg.Quality.MaxTextLength, cfg.Quality.MinScore, cfg.Quality.MaxMediaSizeMB),
		Detector:  detector,

		Generators: generators,
		Publisher:  pub,
		Embedder:   embedder,
		Backups:    content.DefaultBackupSet(),

		Notifier: notify.NewNotifier(cfg.Notify.Slack.Enabled, cfg.Notify.Slack.Token, cfg.Notify.Slack.Channel),
		Emitter:  emitter,

		MaxRegenerationAttempts: cfg.Quality.MaxRegenerationAttempts,
		RetentionDays:           cfg.History.TrackDays,
		RecentTopicsSize:        cfg.History.RecentTopicsSize,
		Location:                loc,
	})

	return &app{cfg: cfg, store: st, orch: orch, emitter: emitter}, nil
}

func (a *app) Close() {
	if err := a.emitter.Close(); err != nil {
		slog.Warn("Event emitter close failed", "error", err)
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("Store close failed", "error", err)
	}
}

// embeddingAdapter narrows the provider's embedding API to the dedup
// contract, pinning the configured model.
type embeddingAdapter struct {
	provider provider.Embedder
	model    string
}

func (a *embeddingAdapter) EmbedText(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.provider.Embed(ctx, &provider.EmbeddingRequest{Input: text, Model: a.model})
	if err != nil {
		return nil, err
	}
	return resp.Vector, nil
}

// curatedChecker lets the curator skip source posts already in history.
type curatedChecker struct {
	store *store.Store
}

func (c *curatedChecker) AlreadyCurated(ctx context.Context, sourcePostID string) (bool, error) {
	return c.store.HasSourcePost(ctx, sourcePostID)
}

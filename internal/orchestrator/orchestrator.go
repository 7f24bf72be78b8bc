// Package orchestrator runs the daily posting cycle: schedule gate, type
// selection, bounded generation attempts, validation, dedup, publish, and
// the state update that follows a successful post.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/SimonStenelid/X-team/internal/content"
	"github.com/SimonStenelid/X-team/internal/dedup"
	"github.com/SimonStenelid/X-team/internal/events"
	"github.com/SimonStenelid/X-team/internal/generator"
	"github.com/SimonStenelid/X-team/internal/notify"
	"github.com/SimonStenelid/X-team/internal/publisher"
	"github.com/SimonStenelid/X-team/internal/schedule"
	"github.com/SimonStenelid/X-team/internal/selector"
	"github.com/SimonStenelid/X-team/internal/store"
	"github.com/SimonStenelid/X-team/internal/validator"
)

// Outcome classifies how a run ended.
type Outcome string

const (
	// OutcomePosted means content was published and state updated.
	OutcomePosted Outcome = "posted"
	// OutcomeNotTime means the schedule gate declined; clean no-op.
	OutcomeNotTime Outcome = "not_time"
	// OutcomeAborted means no valid content survived; clean no-op.
	OutcomeAborted Outcome = "aborted"
)

// Result describes one finished run.
type Result struct {
	RunID       string
	Outcome     Outcome
	ContentType content.Type
	PostID      string
	Score       float64
	Reason      string
}

// Orchestrator wires the collaborators of the posting pipeline. All
// dependencies are constructor-injected; notifier and emitter may be nil.
type Orchestrator struct {
	store     *store.Store
	selector  *selector.Selector
	scheduler *schedule.Scheduler
	validator *validator.Validator
	detector  *dedup.Detector

	generators map[content.Type]generator.Generator
	publisher  publisher.Publisher
	embedder   dedup.Embedder
	backups    *content.BackupSet

	notifier *notify.Notifier
	emitter  *events.Emitter

	maxAttempts   int // total tries = maxAttempts + 1
	retentionDays int
	topicsCap     int
	loc           *time.Location
	now           func() time.Time
}

// Options carries the orchestrator's collaborators and policy knobs.
type Options struct {
	Store     *store.Store
	Selector  *selector.Selector
	Scheduler *schedule.Scheduler
	Validator *validator.Validator
	Detector  *dedup.Detector

	Generators map[content.Type]generator.Generator
	Publisher  publisher.Publisher
	Embedder   dedup.Embedder
	Backups    *content.BackupSet

	Notifier *notify.Notifier
	Emitter  *events.Emitter

	MaxRegenerationAttempts int
	RetentionDays           int
	RecentTopicsSize        int
	Location                *time.Location
	Now                     func() time.Time
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		store:         opts.Store,
		selector:      opts.Selector,
		scheduler:     opts.Scheduler,
		validator:     opts.Validator,
		detector:      opts.Detector,
		generators:    opts.Generators,
		publisher:     opts.Publisher,
		embedder:      opts.Embedder,
		backups:       opts.Backups,
		notifier:      opts.Notifier,
		emitter:       opts.Emitter,
		maxAttempts:   opts.MaxRegenerationAttempts,
		retentionDays: opts.RetentionDays,
		topicsCap:     opts.RecentTopicsSize,
		loc:           loc,
		now:           now,
	}
}

// RunOnce executes one daily cycle. force skips the schedule gate. An abort
// (no valid content) is a clean no-op, not an error; publish failures are
// errors with no state mutation.
func (o *Orchestrator) RunOnce(ctx context.Context, force bool) (*Result, error) {
	runID := uuid.NewString()
	slog.Info("Daily run starting", "run_id", runID, "force", force)

	state, err := o.store.LoadState(ctx, o.now().In(o.loc))
	if err != nil {
		return nil, err
	}

	if !force {
		if ok, reason := o.scheduler.ShouldPostNow(state); !ok {
			slog.Info("Not time to post", "reason", reason)
			return &Result{RunID: runID, Outcome: OutcomeNotTime, Reason: reason}, nil
		}
	}

	selected := o.selector.Select(state)

	final, score := o.attemptLoop(ctx, selected)
	if final == nil {
		return o.abort(ctx, runID, selected, "no valid content after all attempts"), nil
	}

	// Defensive re-check right before the irreversible step.
	ok, score, reason := o.validator.Validate(final.Text, final.MediaPath)
	if !ok {
		return o.abort(ctx, runID, selected, fmt.Sprintf("final validation failed: %s", reason)), nil
	}

	postID, err := o.publisher.Publish(ctx, final.Text, final.MediaPath)
	if err != nil {
		o.notifier.RunFailed(ctx, err)
		o.emit(ctx, runID, "failed", selected, "", err.Error())
		return nil, fmt.Errorf("publish: %w", err)
	}

	if err := o.updateAfterPost(ctx, state, selected, final, postID, score); err != nil {
		// The post is out; a state write failure must surface loudly.
		return nil, fmt.Errorf("post %s published but state update failed: %w", postID, err)
	}

	slog.Info("Daily run completed", "run_id", runID, "type", selected, "post_id", postID, "score", score)
	o.notifier.PostSuccess(ctx, selected, postID, score)
	o.emit(ctx, runID, string(OutcomePosted), selected, postID, "")

	return &Result{
		RunID:       runID,
		Outcome:     OutcomePosted,
		ContentType: selected,
		PostID:      postID,
		Score:       score,
	}, nil
}

// attemptLoop runs the bounded generate-validate-dedup loop. A generation
// failure on the last attempt substitutes the static backup candidate;
// validation or duplicate failure on the last attempt yields no candidate.
func (o *Orchestrator) attemptLoop(ctx context.Context, t content.Type) (*content.Candidate, float64) {
	total := o.maxAttempts + 1

	for attempt := 1; attempt <= total; attempt++ {
		slog.Info("Content generation attempt", "attempt", attempt, "of", total, "type", t)

		cand, err := o.generate(ctx, t)
		if err != nil {
			slog.Warn("Generation failed", "attempt", attempt, "type", t, "error", err)
			if attempt < total {
				continue
			}
			return o.backup(t)
		}

		ok, score, reason := o.validator.Validate(cand.Text, cand.MediaPath)
		if !ok {
			slog.Warn("Validation failed", "attempt", attempt, "type", t, "reason", reason)
			continue
		}

		dup, dupReason, err := o.detector.Check(ctx, cand)
		if err != nil {
			slog.Warn("Duplicate check failed", "attempt", attempt, "error", err)
			continue
		}
		if dup {
			slog.Warn("Duplicate candidate", "attempt", attempt, "type", t, "reason", dupReason)
			continue
		}

		return cand, score
	}
	return nil, 0
}

func (o *Orchestrator) generate(ctx context.Context, t content.Type) (*content.Candidate, error) {
	gen, ok := o.generators[t]
	if !ok {
		return nil, fmt.Errorf("no generator for type %s", t)
	}
	cand, err := gen.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if cand == nil {
		return nil, fmt.Errorf("generator for %s returned no candidate", t)
	}
	return cand, nil
}

func (o *Orchestrator) backup(t content.Type) (*content.Candidate, float64) {
	cand, ok := o.backups.ForType(t)
	if !ok {
		slog.Error("No backup content available", "type", t)
		return nil, 0
	}
	slog.Info("Using backup content", "type", t)
	return cand, 0
}

func (o *Orchestrator) abort(ctx context.Context, runID string, t content.Type, reason string) *Result {
	slog.Error("Daily run aborted", "run_id", runID, "type", t, "reason", reason)
	o.notifier.RunAborted(ctx, reason)
	o.emit(ctx, runID, string(OutcomeAborted), t, "", reason)
	return &Result{RunID: runID, Outcome: OutcomeAborted, ContentType: t, Reason: reason}
}

// updateAfterPost performs the post-publish state mutation and appends the
// history record. The embedding is computed at write time, best-effort.
func (o *Orchestrator) updateAfterPost(ctx context.Context, state *store.State, t content.Type, cand *content.Candidate, postID string, score float64) error {
	now := o.now().In(o.loc)

	state.LastPostTime = &now
	state.AppendDayPost(store.DayPost{
		Type:   t,
		Date:   now.Format("2006-01-02"),
		PostID: postID,
	})
	state.WeekCounts[t]++
	state.AddTopics(ExtractTopics(cand.Text, 3), o.topicsCap)

	if cand.Meta != nil {
		if sourceID := cand.Meta.SourcePostID(); sourceID != "" {
			state.AddCuratedID(sourceID)
		}
	}

	next := o.scheduler.NextPostTime(now)
	state.NextPostScheduled = &next

	if err := o.store.SaveState(ctx, state); err != nil {
		return err
	}

	rec := &store.PostRecord{
		PostID:       postID,
		PostedAt:     now,
		ContentType:  t,
		Text:         cand.Text,
		TextHash:     dedup.Fingerprint(cand.Text),
		MediaPath:    cand.MediaPath,
		QualityScore: score,
	}
	if o.embedder != nil {
		vec, err := o.embedder.EmbedText(ctx, cand.Text)
		if err != nil {
			slog.Warn("Embedding at write time failed", "error", err)
		} else {
			rec.Embedding = vec
		}
	}
	if cand.Meta != nil {
		rec.AgentUsed = cand.Meta.AgentName()
		rec.SourcePostID = cand.Meta.SourcePostID()
		if encoded, err := content.EncodeMetadata(cand.Meta); err == nil {
			rec.Metadata = encoded
		}
	}
	return o.store.AppendPost(ctx, rec, o.retentionDays)
}

func (o *Orchestrator) emit(ctx context.Context, runID, outcome string, t content.Type, postID, reason string) {
	o.emitter.Emit(ctx, events.RunEvent{
		RunID:       runID,
		Outcome:     outcome,
		ContentType: string(t),
		PostID:      postID,
		Reason:      reason,
		At:          o.now().UTC(),
	})
}

// ExtractTopics pulls up to max topic tokens from the text: words longer
// than three characters that start with an uppercase letter.
func ExtractTopics(text string, max int) []string {
	var topics []string
	for _, word := range strings.Fields(text) {
		if utf8.RuneCountInString(word) <= 3 {
			continue
		}
		first, _ := utf8.DecodeRuneInString(word)
		if !unicode.IsUpper(first) {
			continue
		}
		topics = append(topics, word)
		if len(topics) == max {
			break
		}
	}
	return topics
}

package orchestrator

import (
	"context"
	"log/slog"

	"github.com/SimonStenelid/X-team/internal/content"
	"github.com/SimonStenelid/X-team/internal/store"
)

// RunWeeklyAnalysis scans the last seven days of history, computes mean
// likes and retweets per content type, and writes the averages into the
// state document. It never changes week counts or selection weights.
func (o *Orchestrator) RunWeeklyAnalysis(ctx context.Context) (map[content.Type]store.EngagementStats, error) {
	slog.Info("Running weekly analysis")

	now := o.now().In(o.loc)
	state, err := o.store.LoadState(ctx, now)
	if err != nil {
		return nil, err
	}

	posts, err := o.store.PostsSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}

	type sums struct {
		likes    int
		retweets int
		count    int
	}
	byType := make(map[content.Type]sums)
	for _, p := range posts {
		s := byType[p.ContentType]
		s.likes += p.Likes
		s.retweets += p.Retweets
		s.count++
		byType[p.ContentType] = s
	}

	for _, t := range content.AllTypes() {
		s := byType[t]
		stats := store.EngagementStats{Count: s.count}
		if s.count > 0 {
			stats.AvgLikes = float64(s.likes) / float64(s.count)
			stats.AvgRetweets = float64(s.retweets) / float64(s.count)
		}
		state.EngagementByType[t] = stats
		slog.Info("Engagement summary", "type", t, "posts", stats.Count,
			"avg_likes", stats.AvgLikes, "avg_retweets", stats.AvgRetweets)
	}

	if err := o.store.SaveState(ctx, state); err != nil {
		return nil, err
	}
	slog.Info("Weekly analysis complete")
	return state.EngagementByType, nil
}

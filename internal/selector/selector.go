// Package selector picks the next content type via weighted random choice,
// adjusted by recent posting history.
package selector

import (
	"log/slog"
	"math/rand"

	"github.com/SimonStenelid/X-team/internal/content"
	"github.com/SimonStenelid/X-team/internal/store"
)

const (
	recencyPenalty  = 0.3
	underuseBoost   = 1.5
	quotaDamping    = 0.5
	underuseDays    = 4
	trackedDays     = 7
)

// Selector chooses a content type from base weights and state history. The
// random source is injected so tests can pin outcomes.
type Selector struct {
	base map[content.Type]float64
	rng  *rand.Rand
}

// New creates a Selector. Base weights are expected to sum to 1.
func New(base map[content.Type]float64, rng *rand.Rand) *Selector {
	return &Selector{base: base, rng: rng}
}

// Weights returns the adjusted, normalized selection probabilities for the
// given state. The result always sums to 1 and has no negative entries.
func (s *Selector) Weights(state *store.State) map[content.Type]float64 {
	weights := make(map[content.Type]float64, len(s.base))
	for t, w := range s.base {
		weights[t] = w
	}

	history := state.Last7DaysPosts
	var yesterday, dayBefore content.Type
	if len(history) >= 1 {
		yesterday = history[len(history)-1].Type
	}
	if len(history) >= 2 {
		dayBefore = history[len(history)-2].Type
	}

	for t := range weights {
		original := weights[t]

		// Rule 1: recency penalty.
		if yesterday == t {
			weights[t] *= recencyPenalty
			slog.Info("Selector: recency penalty", "type", t, "from", original, "to", weights[t])
		}

		// Rule 2: repetition veto. The veto dominates rule 1's result, but
		// both are computed and logged so the decision stays reconstructable.
		if yesterday == t && dayBefore == t {
			weights[t] = 0
			slog.Info("Selector: repetition veto (two days in a row)", "type", t)
		}

		// Rule 3: underuse boost. Distance clamps at the tracked window
		// length, so "absent for 8 days" and "absent for 30" look the same.
		days := daysSinceType(history, t)
		if days >= underuseDays {
			weights[t] *= underuseBoost
			slog.Info("Selector: underuse boost", "type", t, "days_since", days, "weight", weights[t])
		}

		// Rule 4: weekly-quota damping.
		expected := s.base[t] * trackedDays
		if float64(state.WeekCounts[t]) > expected {
			weights[t] *= quotaDamping
			slog.Info("Selector: over weekly quota", "type", t,
				"count", state.WeekCounts[t], "expected", expected, "weight", weights[t])
		}
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		slog.Warn("Selector: all weights vetoed, falling back to base weights")
		for t, w := range s.base {
			weights[t] = w
			total += w
		}
	}
	for t := range weights {
		weights[t] /= total
	}
	return weights
}

// Select draws one content type from the adjusted weights.
func (s *Selector) Select(state *store.State) content.Type {
	weights := s.Weights(state)
	slog.Info("Selector: final probabilities", "weights", weights)

	// Draw over the fixed type order so a seeded source is deterministic.
	r := s.rng.Float64()
	var cumulative float64
	types := content.AllTypes()
	for _, t := range types {
		cumulative += weights[t]
		if r < cumulative {
			slog.Info("Selector: selected content type", "type", t)
			return t
		}
	}
	// Floating-point slack can leave r just past the last boundary.
	last := types[len(types)-1]
	slog.Info("Selector: selected content type", "type", last)
	return last
}

// daysSinceType scans the tracked history from most recent backward and
// returns how many entries back the type last appeared. Absence within the
// window yields the window length.
func daysSinceType(history []store.DayPost, t content.Type) int {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Type == t {
			return len(history) - 1 - i
		}
	}
	return trackedDays
}

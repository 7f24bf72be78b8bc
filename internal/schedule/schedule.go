// Package schedule decides when a post may go out and picks the next
// posting moment inside weighted time-of-day windows.
package schedule

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/SimonStenelid/X-team/internal/store"
)

// Window is a named time-of-day bucket with an hour range and a selection
// probability. EndHour is exclusive.
type Window struct {
	Name        string
	StartHour   int
	EndHour     int
	Probability float64
}

// Scheduler evaluates the posting schedule. Clock and randomness are
// injected so tests can pin both.
type Scheduler struct {
	windows         []Window
	varianceMinutes int
	minGap          time.Duration
	loc             *time.Location
	rng             *rand.Rand
	now             func() time.Time
}

// New creates a Scheduler.
func New(windows []Window, varianceMinutes, minGapHours int, loc *time.Location, rng *rand.Rand, now func() time.Time) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		windows:         windows,
		varianceMinutes: varianceMinutes,
		minGap:          time.Duration(minGapHours) * time.Hour,
		loc:             loc,
		rng:             rng,
		now:             now,
	}
}

// ShouldPostNow reports whether the current moment is a valid posting time
// for the given state. The reason explains a negative answer.
func (s *Scheduler) ShouldPostNow(state *store.State) (bool, string) {
	now := s.now().In(s.loc)

	// An explicit schedule takes precedence over the once-per-day heuristic.
	if state.NextPostScheduled != nil {
		scheduled := state.NextPostScheduled.In(s.loc)
		if now.Before(scheduled) {
			return false, fmt.Sprintf("next post scheduled for %s", scheduled.Format(time.RFC3339))
		}
		slog.Info("Scheduled post time reached", "scheduled", scheduled)
		return true, ""
	}

	if state.LastPostTime != nil {
		last := state.LastPostTime.In(s.loc)

		if sameDate(last, now) {
			return false, "already posted today"
		}

		if elapsed := now.Sub(last); elapsed < s.minGap {
			return false, fmt.Sprintf("too soon since last post (%.1f hours)", elapsed.Hours())
		}
	}

	return true, ""
}

// NextPostTime computes the next posting moment: a weighted window draw on
// the day after current, a uniform hour and minute inside the window, and a
// symmetric minute jitter on top. Pure apart from the injected randomness;
// the caller persists the result.
func (s *Scheduler) NextPostTime(current time.Time) time.Time {
	current = current.In(s.loc)
	window := s.pickWindow()

	hour := window.StartHour
	if span := window.EndHour - window.StartHour; span > 0 {
		hour += s.rng.Intn(span)
	}
	minute := s.rng.Intn(60)

	tomorrow := current.AddDate(0, 0, 1)
	scheduled := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), hour, minute, 0, 0, s.loc)

	if s.varianceMinutes > 0 {
		jitter := s.rng.Intn(2*s.varianceMinutes+1) - s.varianceMinutes
		scheduled = scheduled.Add(time.Duration(jitter) * time.Minute)
	}

	slog.Info("Next post scheduled", "at", scheduled, "window", window.Name)
	return scheduled
}

func (s *Scheduler) pickWindow() Window {
	r := s.rng.Float64()
	var cumulative float64
	for _, w := range s.windows {
		cumulative += w.Probability
		if r < cumulative {
			return w
		}
	}
	return s.windows[len(s.windows)-1]
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

package store

import (
	"time"

	"github.com/SimonStenelid/X-team/internal/content"
)

// DayPost is one entry in the rolling 7-day post ring.
type DayPost struct {
	Type   content.Type `json:"type"`
	Date   string       `json:"date"` // YYYY-MM-DD, posting timezone
	PostID string       `json:"post_id"`
}

// EngagementStats holds per-type averages produced by the weekly analysis.
type EngagementStats struct {
	AvgLikes    float64 `json:"avg_likes"`
	AvgRetweets float64 `json:"avg_rt"`
	Count       int     `json:"count"`
}

// State is the orchestrator's single mutable document. It is loaded, passed
// through the decision functions, and saved back at the workflow boundary,
// never accessed through globals.
type State struct {
	LastPostTime      *time.Time                           `json:"last_post_time,omitempty"`
	Last7DaysPosts    []DayPost                            `json:"last_7_days_posts"`
	WeekCounts        map[content.Type]int                 `json:"week_counts"`
	RecentTopics      []string                             `json:"recent_topics"`
	CuratedTweetIDs   []string                             `json:"curated_tweet_ids"`
	EngagementByType  map[content.Type]EngagementStats     `json:"engagement_by_type"`
	NextPostScheduled *time.Time                           `json:"next_post_scheduled,omitempty"`
	WeekStartDate     string                               `json:"week_start_date"` // YYYY-MM-DD
}

// maxCuratedIDs caps the curated source-post ring.
const maxCuratedIDs = 50

// DefaultState returns the initial state document.
func DefaultState(now time.Time) *State {
	weekCounts := make(map[content.Type]int, len(content.AllTypes()))
	engagement := make(map[content.Type]EngagementStats, len(content.AllTypes()))
	for _, t := range content.AllTypes() {
		weekCounts[t] = 0
		engagement[t] = EngagementStats{}
	}
	return &State{
		Last7DaysPosts:   []DayPost{},
		WeekCounts:       weekCounts,
		RecentTopics:     []string{},
		CuratedTweetIDs:  []string{},
		EngagementByType: engagement,
		WeekStartDate:    now.Format("2006-01-02"),
	}
}

// AppendDayPost records a post in the 7-day ring, evicting the oldest entry
// beyond seven.
func (s *State) AppendDayPost(p DayPost) {
	s.Last7DaysPosts = append(s.Last7DaysPosts, p)
	if len(s.Last7DaysPosts) > 7 {
		s.Last7DaysPosts = s.Last7DaysPosts[len(s.Last7DaysPosts)-7:]
	}
}

// AddTopics appends topic tokens to the sliding recent-topics window.
func (s *State) AddTopics(topics []string, cap int) {
	s.RecentTopics = append(s.RecentTopics, topics...)
	if cap > 0 && len(s.RecentTopics) > cap {
		s.RecentTopics = s.RecentTopics[len(s.RecentTopics)-cap:]
	}
}

// AddCuratedID records a curated source-post identifier, capped at 50.
func (s *State) AddCuratedID(id string) {
	s.CuratedTweetIDs = append(s.CuratedTweetIDs, id)
	if len(s.CuratedTweetIDs) > maxCuratedIDs {
		s.CuratedTweetIDs = s.CuratedTweetIDs[len(s.CuratedTweetIDs)-maxCuratedIDs:]
	}
}

// ResetWeekIfElapsed zeroes the weekly counters when seven or more days have
// passed since WeekStartDate. Returns true when a reset happened.
func (s *State) ResetWeekIfElapsed(now time.Time) bool {
	weekStart, err := time.ParseInLocation("2006-01-02", s.WeekStartDate, now.Location())
	if err != nil {
		weekStart = now
	}
	if now.Sub(weekStart) < 7*24*time.Hour {
		return false
	}
	for _, t := range content.AllTypes() {
		s.WeekCounts[t] = 0
	}
	s.WeekStartDate = now.Format("2006-01-02")
	return true
}

// PostRecord is one row of the append-only post history.
type PostRecord struct {
	PostID       string
	PostedAt     time.Time
	ContentType  content.Type
	Text         string
	TextHash     string
	Embedding    []float32
	MediaPath    string
	AgentUsed    string
	SourcePostID string // originating platform post for curated content
	Metadata     []byte // encoded content.Metadata envelope
	QualityScore float64
	Likes        int
	Retweets     int
	Views        int
}

// Schema creates the state and history tables.
const Schema = `
CREATE TABLE IF NOT EXISTS orchestrator_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	document TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id TEXT UNIQUE NOT NULL,
	posted_at DATETIME NOT NULL,
	content_type TEXT NOT NULL,
	text TEXT NOT NULL,
	text_hash TEXT NOT NULL,
	embedding BLOB,
	media_path TEXT DEFAULT '',
	agent_used TEXT DEFAULT '',
	source_post_id TEXT DEFAULT '',
	metadata TEXT DEFAULT '{}',
	quality_score REAL NOT NULL DEFAULT 0,
	likes INTEGER NOT NULL DEFAULT 0,
	retweets INTEGER NOT NULL DEFAULT 0,
	views INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_posts_posted_at ON posts(posted_at);
CREATE INDEX IF NOT EXISTS idx_posts_hash ON posts(text_hash);
CREATE INDEX IF NOT EXISTS idx_posts_source ON posts(source_post_id);
`

// Package config provides configuration types and loading for xteam.
package config

import (
	"time"

	"github.com/SimonStenelid/X-team/internal/content"
)

// Config is the root configuration struct.
type Config struct {
	Paths     PathsConfig     `json:"paths"`
	Posting   PostingConfig   `json:"posting"`
	Quality   QualityConfig   `json:"quality"`
	History   HistoryConfig   `json:"history"`
	Providers ProvidersConfig `json:"providers"`
	X         XConfig         `json:"x"`
	Notify    NotifyConfig    `json:"notify"`
	Events    EventsConfig    `json:"events"`
	Daemon    DaemonConfig    `json:"daemon"`
}

// ---------------------------------------------------------------------------
// Paths – filesystem locations
// ---------------------------------------------------------------------------

// PathsConfig groups all filesystem path settings.
type PathsConfig struct {
	DataDir  string `json:"dataDir" envconfig:"DATA_DIR"`
	MediaDir string `json:"mediaDir" envconfig:"MEDIA_DIR"`
}

// ---------------------------------------------------------------------------
// Posting – schedule and content mix
// ---------------------------------------------------------------------------

// Window is a named time-of-day bucket for post scheduling.
type Window struct {
	Name        string  `json:"name"`
	StartHour   int     `json:"startHour"`
	EndHour     int     `json:"endHour"` // exclusive
	Probability float64 `json:"probability"`
}

// PostingConfig groups scheduling and content-mix settings.
type PostingConfig struct {
	Timezone            string                   `json:"timezone" envconfig:"TIMEZONE"`
	Windows             []Window                 `json:"windows"`
	TimeVarianceMinutes int                      `json:"timeVarianceMinutes" envconfig:"TIME_VARIANCE_MINUTES"`
	MinGapHours         int                      `json:"minGapHours" envconfig:"MIN_GAP_HOURS"`
	BaseWeights         map[content.Type]float64 `json:"baseWeights"`
}

// ---------------------------------------------------------------------------
// Quality – validation and dedup thresholds
// ---------------------------------------------------------------------------

// QualityConfig groups quality-control settings.
type QualityConfig struct {
	MinScore                float64 `json:"minScore" envconfig:"MIN_SCORE"`
	MaxRegenerationAttempts int     `json:"maxRegenerationAttempts" envconfig:"MAX_REGENERATION_ATTEMPTS"`
	SimilarityThreshold     float64 `json:"similarityThreshold" envconfig:"SIMILARITY_THRESHOLD"`
	MaxTextLength           int     `json:"maxTextLength" envconfig:"MAX_TEXT_LENGTH"`
	MaxMediaSizeMB          int     `json:"maxMediaSizeMB" envconfig:"MAX_MEDIA_SIZE_MB"`
}

// ---------------------------------------------------------------------------
// History – retention windows
// ---------------------------------------------------------------------------

// HistoryConfig groups history retention settings.
type HistoryConfig struct {
	TrackDays        int `json:"trackDays" envconfig:"TRACK_DAYS"`
	RecentTopicsSize int `json:"recentTopicsSize" envconfig:"RECENT_TOPICS_SIZE"`
}

// ---------------------------------------------------------------------------
// Providers – external API credentials and endpoints
// ---------------------------------------------------------------------------

// ProvidersConfig contains external collaborator configurations.
type ProvidersConfig struct {
	OpenAI  OpenAIConfig  `json:"openai"`
	Serper  SerperConfig  `json:"serper"`
	Scraper ScraperConfig `json:"scraper"`
	Render  RenderConfig  `json:"render"`
}

// OpenAIConfig configures the OpenAI-compatible LLM/embedding provider.
type OpenAIConfig struct {
	APIKey         string `json:"apiKey" envconfig:"API_KEY"`
	APIBase        string `json:"apiBase,omitempty" envconfig:"API_BASE"`
	Model          string `json:"model" envconfig:"MODEL"`
	EmbeddingModel string `json:"embeddingModel" envconfig:"EMBEDDING_MODEL"`
}

// SerperConfig configures the news search API.
type SerperConfig struct {
	APIKey string `json:"apiKey" envconfig:"API_KEY"`
}

// ScraperConfig configures the viral-post scraper API.
type ScraperConfig struct {
	APIKey  string `json:"apiKey" envconfig:"API_KEY"`
	ActorID string `json:"actorId" envconfig:"ACTOR_ID"`
}

// RenderConfig configures the image render API.
type RenderConfig struct {
	APIKey  string `json:"apiKey" envconfig:"API_KEY"`
	APIBase string `json:"apiBase,omitempty" envconfig:"API_BASE"`
}

// ---------------------------------------------------------------------------
// X – posting credentials
// ---------------------------------------------------------------------------

// XConfig contains the X API user-context credentials.
type XConfig struct {
	APIKey            string `json:"apiKey" envconfig:"API_KEY"`
	APISecret         string `json:"apiSecret" envconfig:"API_SECRET"`
	AccessToken       string `json:"accessToken" envconfig:"ACCESS_TOKEN"`
	AccessTokenSecret string `json:"accessTokenSecret" envconfig:"ACCESS_TOKEN_SECRET"`
	BearerToken       string `json:"bearerToken,omitempty" envconfig:"BEARER_TOKEN"`
}

// Complete reports whether all credentials needed for posting are present.
func (x XConfig) Complete() bool {
	return x.APIKey != "" && x.APISecret != "" && x.AccessToken != "" && x.AccessTokenSecret != ""
}

// ---------------------------------------------------------------------------
// Notify – operator notifications
// ---------------------------------------------------------------------------

// NotifyConfig contains operator notification settings.
type NotifyConfig struct {
	Slack SlackConfig `json:"slack"`
}

// SlackConfig configures Slack run-outcome notifications.
type SlackConfig struct {
	Enabled bool   `json:"enabled" envconfig:"ENABLED"`
	Token   string `json:"token" envconfig:"TOKEN"`
	Channel string `json:"channel" envconfig:"CHANNEL"`
}

// ---------------------------------------------------------------------------
// Events – run-outcome event stream
// ---------------------------------------------------------------------------

// EventsConfig contains event stream settings.
type EventsConfig struct {
	Kafka KafkaConfig `json:"kafka"`
}

// KafkaConfig configures the Kafka run-event emitter.
type KafkaConfig struct {
	Enabled bool   `json:"enabled" envconfig:"ENABLED"`
	Brokers string `json:"brokers" envconfig:"BROKERS"` // comma-separated
	Topic   string `json:"topic" envconfig:"TOPIC"`
}

// ---------------------------------------------------------------------------
// Daemon – wake-up loop
// ---------------------------------------------------------------------------

// DaemonConfig contains settings for the daemon wake-up loop.
type DaemonConfig struct {
	CheckInterval time.Duration `json:"checkInterval" envconfig:"CHECK_INTERVAL"`
	ErrorBackoff  time.Duration `json:"errorBackoff" envconfig:"ERROR_BACKOFF"`
	LockPath      string        `json:"lockPath" envconfig:"LOCK_PATH"`
}

// DefaultConfig returns a Config with the stock posting policy.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir:  "~/.xteam",
			MediaDir: "~/.xteam/media",
		},
		Posting: PostingConfig{
			Timezone: "Europe/Stockholm",
			Windows: []Window{
				{Name: "morning", StartHour: 8, EndHour: 10, Probability: 0.30},
				{Name: "lunch", StartHour: 12, EndHour: 13, Probability: 0.20},
				{Name: "afternoon", StartHour: 15, EndHour: 17, Probability: 0.10},
				{Name: "evening", StartHour: 18, EndHour: 20, Probability: 0.30},
				{Name: "night", StartHour: 21, EndHour: 22, Probability: 0.10},
			},
			TimeVarianceMinutes: 30,
			MinGapHours:         20,
			BaseWeights: map[content.Type]float64{
				content.TypeNews:    0.35,
				content.TypeCurator: 0.30,
				content.TypeMeme:    0.20,
				content.TypeImage:   0.15,
			},
		},
		Quality: QualityConfig{
			MinScore:                6,
			MaxRegenerationAttempts: 2,
			SimilarityThreshold:     0.85,
			MaxTextLength:           280,
			MaxMediaSizeMB:          512,
		},
		History: HistoryConfig{
			TrackDays:        30,
			RecentTopicsSize: 10,
		},
		Providers: ProvidersConfig{
			OpenAI: OpenAIConfig{
				Model:          "gpt-5-mini",
				EmbeddingModel: "text-embedding-3-small",
			},
		},
		Events: EventsConfig{
			Kafka: KafkaConfig{Topic: "xteam.runs"},
		},
		Daemon: DaemonConfig{
			CheckInterval: time.Hour,
			ErrorBackoff:  5 * time.Minute,
		},
	}
}

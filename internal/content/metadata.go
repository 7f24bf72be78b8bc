package content

import (
	"encoding/json"
	"fmt"
)

// Metadata carries the per-type provenance of a candidate. Each content type
// has its own variant; the common accessors cover what the core needs
// (logging, persistence, provenance dedup).
type Metadata interface {
	// AgentName identifies the generator that produced the candidate.
	AgentName() string
	// Source names where the content came from (search, generated, ...).
	Source() string
	// SourcePostID returns the originating platform post ID for curated
	// content, or "" for everything else.
	SourcePostID() string
}

// NewsMeta describes a post composed from a news search.
type NewsMeta struct {
	Query    string `json:"query,omitempty"`
	Headline string `json:"headline,omitempty"`
	Link     string `json:"link,omitempty"`
}

func (NewsMeta) AgentName() string    { return "news_hunter" }
func (NewsMeta) Source() string       { return "serper_search" }
func (NewsMeta) SourcePostID() string { return "" }

// MemeMeta describes a purely generated meme post.
type MemeMeta struct{}

func (MemeMeta) AgentName() string    { return "meme_lord" }
func (MemeMeta) Source() string       { return "generated" }
func (MemeMeta) SourcePostID() string { return "" }

// ImageMeta describes a post with a rendered image attached.
type ImageMeta struct {
	Prompt   string `json:"prompt,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

func (ImageMeta) AgentName() string    { return "image_generator" }
func (ImageMeta) Source() string       { return "midjourney" }
func (ImageMeta) SourcePostID() string { return "" }

// CuratorMeta describes a curated repost of a viral platform post.
type CuratorMeta struct {
	OriginalAuthor string `json:"original_author"`
	OriginalPostID string `json:"original_post_id"`
	Likes          int    `json:"likes"`
	Retweets       int    `json:"retweets"`
	Replies        int    `json:"replies"`
}

func (CuratorMeta) AgentName() string      { return "content_curator" }
func (CuratorMeta) Source() string         { return "x_viral" }
func (m CuratorMeta) SourcePostID() string { return m.OriginalPostID }

// BackupMeta marks a statically configured fallback item.
type BackupMeta struct {
	OriginalType Type `json:"original_type"`
}

func (BackupMeta) AgentName() string    { return "backup" }
func (BackupMeta) Source() string       { return "backup_content" }
func (BackupMeta) SourcePostID() string { return "" }

// metadataEnvelope is the persisted form: the agent name discriminates the
// variant on decode.
type metadataEnvelope struct {
	Agent  string          `json:"agent"`
	Source string          `json:"source"`
	Fields json.RawMessage `json:"fields,omitempty"`
}

// EncodeMetadata serializes metadata for storage in the post history.
func EncodeMetadata(m Metadata) ([]byte, error) {
	fields, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata fields: %w", err)
	}
	return json.Marshal(metadataEnvelope{
		Agent:  m.AgentName(),
		Source: m.Source(),
		Fields: fields,
	})
}

// DecodeMetadata restores a metadata variant from its stored form.
func DecodeMetadata(data []byte) (Metadata, error) {
	var env metadataEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal metadata envelope: %w", err)
	}

	decode := func(dst any) error {
		if len(env.Fields) == 0 {
			return nil
		}
		return json.Unmarshal(env.Fields, dst)
	}

	switch env.Agent {
	case NewsMeta{}.AgentName():
		var m NewsMeta
		return m, decode(&m)
	case MemeMeta{}.AgentName():
		var m MemeMeta
		return m, decode(&m)
	case ImageMeta{}.AgentName():
		var m ImageMeta
		return m, decode(&m)
	case CuratorMeta{}.AgentName():
		var m CuratorMeta
		return m, decode(&m)
	case BackupMeta{}.AgentName():
		var m BackupMeta
		return m, decode(&m)
	default:
		return nil, fmt.Errorf("unknown metadata agent %q", env.Agent)
	}
}

// Package content defines the content types, candidates, and metadata
// shared between the generators and the orchestrator core.
package content

// Type is a post category.
type Type string

const (
	TypeNews    Type = "news"
	TypeMeme    Type = "meme"
	TypeImage   Type = "image"
	TypeCurator Type = "curator"
)

// AllTypes returns the known content types in base-weight order.
func AllTypes() []Type {
	return []Type{TypeNews, TypeCurator, TypeMeme, TypeImage}
}

// Valid reports whether t is a known content type.
func (t Type) Valid() bool {
	switch t {
	case TypeNews, TypeMeme, TypeImage, TypeCurator:
		return true
	}
	return false
}

// Candidate is an unpublished piece of generated content. It lives for one
// orchestrator cycle: it either becomes a post record or is discarded.
type Candidate struct {
	Text      string
	MediaPath string // local file path, empty for text-only posts
	Meta      Metadata
}

// HasMedia reports whether the candidate carries a media attachment.
func (c *Candidate) HasMedia() bool {
	return c.MediaPath != ""
}

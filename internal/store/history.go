package store

import (
	"context"
	"fmt"
	"time"

	"github.com/SimonStenelid/X-team/internal/content"
)

// AppendPost inserts a post record and prunes history older than the
// retention window in the same call.
func (s *Store) AppendPost(ctx context.Context, rec *PostRecord, retentionDays int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (post_id, posted_at, content_type, text, text_hash,
			embedding, media_path, agent_used, source_post_id, metadata,
			quality_score, likes, retweets, views)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.PostID, rec.PostedAt.UTC().Format(time.RFC3339), string(rec.ContentType),
		rec.Text, rec.TextHash, encodeFloat32s(rec.Embedding), rec.MediaPath,
		rec.AgentUsed, rec.SourcePostID, string(rec.Metadata),
		rec.QualityScore, rec.Likes, rec.Retweets, rec.Views)
	if err != nil {
		return fmt.Errorf("append post: %w", err)
	}

	if retentionDays > 0 {
		cutoff := rec.PostedAt.AddDate(0, 0, -retentionDays)
		if err := s.PrunePosts(ctx, cutoff); err != nil {
			return err
		}
	}
	return nil
}

// PrunePosts deletes history records posted before the cutoff.
func (s *Store) PrunePosts(ctx context.Context, olderThan time.Time) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE posted_at < ?`,
		olderThan.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("prune posts: %w", err)
	}
	return nil
}

// PostsSince returns all history records posted at or after the given time,
// oldest first.
func (s *Store) PostsSince(ctx context.Context, since time.Time) ([]PostRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT post_id, posted_at, content_type, text, text_hash, embedding,
			media_path, agent_used, source_post_id, metadata,
			quality_score, likes, retweets, views
		FROM posts
		WHERE posted_at >= ?
		ORDER BY posted_at ASC
	`, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var out []PostRecord
	for rows.Next() {
		var rec PostRecord
		var postedAt, contentType, metadata string
		var blob []byte
		if err := rows.Scan(&rec.PostID, &postedAt, &contentType, &rec.Text,
			&rec.TextHash, &blob, &rec.MediaPath, &rec.AgentUsed,
			&rec.SourcePostID, &metadata, &rec.QualityScore,
			&rec.Likes, &rec.Retweets, &rec.Views); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		rec.PostedAt, _ = time.Parse(time.RFC3339, postedAt)
		rec.ContentType = content.Type(contentType)
		rec.Embedding = decodeFloat32s(blob)
		rec.Metadata = []byte(metadata)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// HasTextHash reports whether any stored post carries the given content
// fingerprint. Lookback is unbounded within the retained history.
func (s *Store) HasTextHash(ctx context.Context, hash string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE text_hash = ?`, hash).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup text hash: %w", err)
	}
	return n > 0, nil
}

// HasSourcePost reports whether a curated post with the given source-post
// identifier was already published.
func (s *Store) HasSourcePost(ctx context.Context, sourcePostID string) (bool, error) {
	if sourcePostID == "" {
		return false, nil
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE source_post_id = ?`, sourcePostID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup source post: %w", err)
	}
	return n > 0, nil
}

// UpdateEngagement overwrites the engagement counters of one post.
func (s *Store) UpdateEngagement(ctx context.Context, postID string, likes, retweets, views int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE posts SET likes = ?, retweets = ?, views = ? WHERE post_id = ?
	`, likes, retweets, views, postID)
	if err != nil {
		return fmt.Errorf("update engagement: %w", err)
	}
	return nil
}

// Package validator scores candidate posts for structural quality.
package validator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const maxScore = 10.0

// Validator applies the structural quality checks. Deductions are
// independent and cumulative; only empty text fails immediately.
type Validator struct {
	MaxTextLength  int
	MinScore       float64
	MaxMediaBytes  int64
	ValidMediaExts []string
}

// New creates a Validator with the given limits.
func New(maxTextLength int, minScore float64, maxMediaSizeMB int) *Validator {
	return &Validator{
		MaxTextLength:  maxTextLength,
		MinScore:       minScore,
		MaxMediaBytes:  int64(maxMediaSizeMB) * 1024 * 1024,
		ValidMediaExts: []string{".mp4", ".jpg", ".jpeg", ".png", ".gif", ".webm"},
	}
}

// Validate scores the candidate and reports whether it meets the minimum.
// The reason string joins all issues found, or "OK".
func (v *Validator) Validate(text, mediaPath string) (bool, float64, string) {
	if strings.TrimSpace(text) == "" {
		return false, 0, "empty text"
	}

	score := maxScore
	var issues []string

	if n := utf8.RuneCountInString(text); n > v.MaxTextLength {
		score -= 5
		issues = append(issues, fmt.Sprintf("text too long (%d/%d chars)", n, v.MaxTextLength))
	}

	if strings.Count(text, `"`)%2 != 0 || strings.Count(text, `'`)%2 != 0 {
		score -= 1
		issues = append(issues, "unbalanced quotes")
	}

	if mediaPath != "" {
		info, err := os.Stat(mediaPath)
		if err != nil {
			score -= 3
			issues = append(issues, "media file not found")
		} else {
			if info.Size() > v.MaxMediaBytes {
				score -= 2
				issues = append(issues, fmt.Sprintf("media too large (%.1f MB)", float64(info.Size())/(1024*1024)))
			}
			ext := strings.ToLower(filepath.Ext(mediaPath))
			if !v.validExt(ext) {
				score -= 2
				issues = append(issues, fmt.Sprintf("invalid media format (%s)", ext))
			}
		}
	}

	if score < v.MinScore {
		reason := strings.Join(issues, "; ")
		slog.Warn("Content validation failed", "score", score, "issues", reason)
		return false, score, reason
	}

	slog.Info("Content validated", "score", score)
	return true, score, "OK"
}

func (v *Validator) validExt(ext string) bool {
	for _, e := range v.ValidMediaExts {
		if e == ext {
			return true
		}
	}
	return false
}

package content

// BackupSet holds statically configured fallback texts per content type,
// used when all generation attempts for a cycle fail.
type BackupSet struct {
	items map[Type][]string
}

// DefaultBackupSet returns the built-in fallback content. Curated and image
// posts have no sensible static fallback, so those lists are empty.
func DefaultBackupSet() *BackupSet {
	return &BackupSet{items: map[Type][]string{
		TypeNews: {
			"AI agents are transforming how we work. The future of automation is here and it's getting wild.",
			"New AI models dropping every week. Can't keep up anymore but loving the chaos.",
		},
		TypeMeme: {
			"me: automates everything\nalso me: spends 10 hours debugging the automation",
			"AI in 2025: generates entire movies\nAlso AI: can't count the Rs in strawberry",
		},
	}}
}

// NewBackupSet builds a BackupSet from configured texts.
func NewBackupSet(items map[Type][]string) *BackupSet {
	return &BackupSet{items: items}
}

// ForType returns a text-only fallback candidate for the given content type,
// or false when none is configured.
func (b *BackupSet) ForType(t Type) (*Candidate, bool) {
	if b == nil {
		return nil, false
	}
	texts := b.items[t]
	if len(texts) == 0 {
		return nil, false
	}
	return &Candidate{
		Text: texts[0],
		Meta: BackupMeta{OriginalType: t},
	}, true
}

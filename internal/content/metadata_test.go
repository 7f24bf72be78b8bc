package content

import (
	"testing"
)

func TestEncodeDecodeMetadata_Variants(t *testing.T) {
	cases := []Metadata{
		NewsMeta{Query: "AI agents automation", Headline: "Something launched", Link: "https://example.com"},
		MemeMeta{},
		ImageMeta{Prompt: "neural pathways, 8k", ImageURL: "https://cdn.example.com/a.png"},
		CuratorMeta{OriginalAuthor: "someone", OriginalPostID: "123", Likes: 2400, Retweets: 310, Replies: 45},
		BackupMeta{OriginalType: TypeNews},
	}

	for _, m := range cases {
		data, err := EncodeMetadata(m)
		if err != nil {
			t.Fatalf("%s: encode: %v", m.AgentName(), err)
		}
		decoded, err := DecodeMetadata(data)
		if err != nil {
			t.Fatalf("%s: decode: %v", m.AgentName(), err)
		}
		if decoded.AgentName() != m.AgentName() {
			t.Errorf("agent mismatch: %q vs %q", decoded.AgentName(), m.AgentName())
		}
		if decoded.Source() != m.Source() {
			t.Errorf("source mismatch: %q vs %q", decoded.Source(), m.Source())
		}
		if decoded.SourcePostID() != m.SourcePostID() {
			t.Errorf("source post id mismatch: %q vs %q", decoded.SourcePostID(), m.SourcePostID())
		}
	}
}

func TestDecodeMetadata_CuratorFields(t *testing.T) {
	data, err := EncodeMetadata(CuratorMeta{OriginalAuthor: "minchoi", OriginalPostID: "42", Likes: 3000})
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeMetadata(data)
	if err != nil {
		t.Fatal(err)
	}
	cm, ok := decoded.(CuratorMeta)
	if !ok {
		t.Fatalf("expected CuratorMeta, got %T", decoded)
	}
	if cm.OriginalAuthor != "minchoi" || cm.Likes != 3000 {
		t.Errorf("fields did not roundtrip: %+v", cm)
	}
	if cm.SourcePostID() != "42" {
		t.Errorf("expected source post id 42, got %q", cm.SourcePostID())
	}
}

func TestDecodeMetadata_UnknownAgent(t *testing.T) {
	if _, err := DecodeMetadata([]byte(`{"agent":"mystery","source":"nowhere"}`)); err == nil {
		t.Error("unknown agent should fail to decode")
	}
}

func TestBackupSet_ForType(t *testing.T) {
	b := DefaultBackupSet()

	cand, ok := b.ForType(TypeNews)
	if !ok {
		t.Fatal("expected news backup content")
	}
	if cand.Text == "" || cand.HasMedia() {
		t.Errorf("backup must be non-empty text-only, got %+v", cand)
	}
	if cand.Meta.AgentName() != "backup" {
		t.Errorf("expected backup agent, got %q", cand.Meta.AgentName())
	}

	if _, ok := b.ForType(TypeImage); ok {
		t.Error("image has no static fallback")
	}
	if _, ok := b.ForType(TypeCurator); ok {
		t.Error("curator has no static fallback")
	}

	var nilSet *BackupSet
	if _, ok := nilSet.ForType(TypeNews); ok {
		t.Error("nil set must return nothing")
	}
}

func TestTypeValid(t *testing.T) {
	for _, ct := range AllTypes() {
		if !ct.Valid() {
			t.Errorf("%s should be valid", ct)
		}
	}
	if Type("podcast").Valid() {
		t.Error("unknown type should be invalid")
	}
}

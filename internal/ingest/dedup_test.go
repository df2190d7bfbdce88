package ingest

import (
	"strings"
	"testing"

	"github.com/kaive-ai/kaive-backend/internal/types"
)

func post(content string, url string) *types.CreatorPost {
	p := &types.CreatorPost{Author: "creator", PostContent: content}
	if url != "" {
		p.PostURL = &url
	}
	return p
}

func TestDeduplicateByContentPrefix(t *testing.T) {
	long := strings.Repeat("a", 250)
	existing := []*types.CreatorPost{post(long, "")}

	// Same 200-char prefix with a different tail is still a duplicate.
	candidate := post(strings.Repeat("a", 200)+"different tail", "")
	unique, dupes := Deduplicate([]*types.CreatorPost{candidate}, existing)
	if len(unique) != 0 || dupes != 1 {
		t.Fatalf("expected prefix duplicate, got unique=%d dupes=%d", len(unique), dupes)
	}

	fresh := post("completely different content", "")
	unique, dupes = Deduplicate([]*types.CreatorPost{fresh}, existing)
	if len(unique) != 1 || dupes != 0 {
		t.Fatalf("expected fresh post kept, got unique=%d dupes=%d", len(unique), dupes)
	}
}

func TestDeduplicateByURL(t *testing.T) {
	existing := []*types.CreatorPost{post("old content", "https://example.com/p/1")}

	candidate := post("new content entirely", "https://example.com/p/1")
	unique, dupes := Deduplicate([]*types.CreatorPost{candidate}, existing)
	if len(unique) != 0 || dupes != 1 {
		t.Fatalf("expected URL duplicate, got unique=%d dupes=%d", len(unique), dupes)
	}
}

func TestDeduplicateWithinBatch(t *testing.T) {
	a := post("same text", "")
	b := post("same text", "")
	unique, dupes := Deduplicate([]*types.CreatorPost{a, b}, nil)
	if len(unique) != 1 || dupes != 1 {
		t.Fatalf("expected batch-internal dedup, got unique=%d dupes=%d", len(unique), dupes)
	}
}

func TestDeduplicateEmptyURLNeverMatches(t *testing.T) {
	existing := []*types.CreatorPost{post("one", "")}
	candidate := post("two", "")
	unique, dupes := Deduplicate([]*types.CreatorPost{candidate}, existing)
	if len(unique) != 1 || dupes != 0 {
		t.Fatalf("posts without URLs must only match on content, got unique=%d dupes=%d", len(unique), dupes)
	}
}

func TestContentKeyRuneSafe(t *testing.T) {
	s := strings.Repeat("é", 300)
	key := ContentKey(s)
	if len([]rune(key)) != 200 {
		t.Fatalf("expected 200-rune key, got %d", len([]rune(key)))
	}
	short := "short"
	if ContentKey(short) != short {
		t.Fatalf("short content must pass through")
	}
}

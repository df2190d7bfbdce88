package ingest

import (
	"github.com/kaive-ai/kaive-backend/internal/types"
)

// Length of the content prefix used as the duplicate key. Comparing a prefix
// instead of the whole body tolerates minor trailing edits.
const contentKeyLen = 200

// Deduplicate filters candidates against a creator's existing posts. A
// candidate is a duplicate when its 200-character content prefix matches an
// existing post, or its non-empty URL does. Accepted candidates join the
// comparison set immediately so duplicates inside one batch are also caught.
// Both slices must belong to the same author; the caller scopes the query.
func Deduplicate(candidates, existing []*types.CreatorPost) ([]*types.CreatorPost, int) {
	seenContent := make(map[string]bool, len(existing))
	seenURLs := make(map[string]bool, len(existing))
	for _, p := range existing {
		if p == nil {
			continue
		}
		seenContent[ContentKey(p.PostContent)] = true
		if p.PostURL != nil && *p.PostURL != "" {
			seenURLs[*p.PostURL] = true
		}
	}

	unique := make([]*types.CreatorPost, 0, len(candidates))
	duplicates := 0

	for _, p := range candidates {
		if p == nil {
			continue
		}
		key := ContentKey(p.PostContent)
		url := ""
		if p.PostURL != nil {
			url = *p.PostURL
		}

		if seenContent[key] || (url != "" && seenURLs[url]) {
			duplicates++
			continue
		}

		unique = append(unique, p)
		seenContent[key] = true
		if url != "" {
			seenURLs[url] = true
		}
	}

	return unique, duplicates
}

// ContentKey returns the first 200 characters of content, counting runes so
// multibyte text is not split mid-character.
func ContentKey(content string) string {
	runes := []rune(content)
	if len(runes) <= contentKeyLen {
		return content
	}
	return string(runes[:contentKeyLen])
}

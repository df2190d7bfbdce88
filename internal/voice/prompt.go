package voice

import (
	"fmt"
	"strings"

	"github.com/kaive-ai/kaive-backend/internal/types"
)

const (
	maxPromptPosts  = 5
	maxPromptChars  = 300
	maxNameLen      = 50
	maxDescLen      = 200
	DefaultName     = "Content Series"
	DefaultDesc     = "A collection of related posts"
	LabelSystemRole = "You are an expert at analyzing content patterns."
)

// BuildLabelPrompt assembles the bounded labeling prompt: creator, cluster,
// total post count, and up to 5 representative posts truncated to 300 chars.
func BuildLabelPrompt(creator string, clusterID int, posts []*types.CreatorPost, totalPosts int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze content cluster %d for %s (%d total posts).\n\n", clusterID, creator, totalPosts)

	for i, post := range posts {
		if i >= maxPromptPosts {
			break
		}
		if post == nil {
			continue
		}
		fmt.Fprintf(&b, "Post %d: %s\n---\n", i+1, truncateRunes(post.PostContent, maxPromptChars))
	}

	b.WriteString("\nProvide:\nName: [2-4 words]\nDescription: [One sentence]")
	return b.String()
}

// ParseLabelResponse scans a completion for Name:/Description: lines, trims
// surrounding quotes, and bounds both fields. Empty fields fall back to
// deterministic defaults so a malformed response still yields a label.
func ParseLabelResponse(response string) (string, string) {
	var name, description string

	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		if strings.HasPrefix(line, "Name:") {
			name = truncateRunes(strings.Trim(strings.TrimSpace(line[len("Name:"):]), `"'`), maxNameLen)
		} else if strings.HasPrefix(line, "Description:") {
			description = truncateRunes(strings.Trim(strings.TrimSpace(line[len("Description:"):]), `"'`), maxDescLen)
		}
	}

	if name == "" {
		name = DefaultName
	}
	if description == "" {
		description = DefaultDesc
	}
	return name, description
}

// FallbackLabel is the label used when generation fails outright.
func FallbackLabel(clusterID int) (string, string) {
	return fmt.Sprintf("Content Series %d", clusterID+1), fmt.Sprintf("A collection of posts in cluster %d", clusterID)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

package voice

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kaive-ai/kaive-backend/internal/types"
)

// ClusterMetrics holds every derived number for one cluster.
type ClusterMetrics struct {
	ClusterID               int
	PostCount               int
	AvgWordsPerSentence     float64
	LineBreaksPer100Words   float64
	EmDashesPer100Words     float64
	EllipsesPer100Words     float64
	QuestionsPer100Words    float64
	ExclamationsPer100Words float64
	AvgParagraphsPerPost    float64
	AvgWordsPerPost         float64
	AvgLikes                float64
	AvgComments             float64
	AvgReposts              float64
	TotalEngagement         float64
	TopPostIDs              []uuid.UUID
}

var sentenceSplitter = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

// AggregateMetrics computes style and engagement statistics per cluster.
// Posts with empty content contribute nothing to the sums; a cluster whose
// posts are all empty produces no entry. Division by zero yields 0.
func AggregateMetrics(postsByCluster map[int][]*types.CreatorPost) map[int]ClusterMetrics {
	results := make(map[int]ClusterMetrics, len(postsByCluster))

	for clusterID, posts := range postsByCluster {
		if len(posts) == 0 {
			continue
		}

		var (
			words        []int
			sentences    []int
			lineBreaks   []int
			emDashes     []int
			ellipses     []int
			questions    []int
			exclamations []int
			paragraphs   []int
			likes        []int
			comments     []int
			reposts      []int
			postIDs      []uuid.UUID
		)

		for _, post := range posts {
			if post == nil {
				continue
			}
			content := post.PostContent
			if content == "" {
				continue
			}

			words = append(words, countWords(content))
			sentences = append(sentences, countSentences(content))
			lineBreaks = append(lineBreaks, strings.Count(content, "\n"))
			emDashes = append(emDashes, strings.Count(content, "—")+strings.Count(content, "--"))
			ellipses = append(ellipses, strings.Count(content, "...")+strings.Count(content, "…"))
			questions = append(questions, strings.Count(content, "?"))
			exclamations = append(exclamations, strings.Count(content, "!"))
			paragraphs = append(paragraphs, countParagraphs(content))
			likes = append(likes, post.LikeCount)
			comments = append(comments, post.CommentCount)
			reposts = append(reposts, post.RepostCount)
			postIDs = append(postIDs, post.ID)
		}

		if len(words) == 0 {
			continue
		}

		totalWords := sumInts(words)
		totalSentences := sumInts(sentences)
		numPosts := len(posts)

		engagements := make([]int, len(likes))
		for i := range likes {
			engagements[i] = likes[i] + comments[i] + reposts[i]
		}

		results[clusterID] = ClusterMetrics{
			ClusterID:               clusterID,
			PostCount:               numPosts,
			AvgWordsPerSentence:     round1(safeRatio(totalWords, totalSentences)),
			LineBreaksPer100Words:   round1(per100Words(sumInts(lineBreaks), totalWords)),
			EmDashesPer100Words:     round2(per100Words(sumInts(emDashes), totalWords)),
			EllipsesPer100Words:     round2(per100Words(sumInts(ellipses), totalWords)),
			QuestionsPer100Words:    round2(per100Words(sumInts(questions), totalWords)),
			ExclamationsPer100Words: round2(per100Words(sumInts(exclamations), totalWords)),
			AvgParagraphsPerPost:    round1(meanInts(paragraphs)),
			AvgWordsPerPost:         math.Round(safeRatio(totalWords, numPosts)),
			AvgLikes:                math.Round(meanInts(likes)),
			AvgComments:             math.Round(meanInts(comments)),
			AvgReposts:              math.Round(meanInts(reposts)),
			TotalEngagement:         math.Round(meanInts(engagements)),
			TopPostIDs:              topPostIDs(postIDs, engagements, 3),
		}
	}

	return results
}

func countWords(content string) int {
	return len(strings.Fields(content))
}

// countSentences splits on runs of terminal punctuation followed by
// whitespace or end of text. A post with no terminal punctuation still
// counts as one sentence.
func countSentences(content string) int {
	n := 0
	for _, part := range sentenceSplitter.Split(content, -1) {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

func countParagraphs(content string) int {
	n := 0
	for _, part := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

// topPostIDs returns the ids of the limit highest-engagement posts, ties
// broken by ingestion order.
func topPostIDs(ids []uuid.UUID, engagements []int, limit int) []uuid.UUID {
	idx := make([]int, len(ids))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return engagements[idx[a]] > engagements[idx[b]]
	})
	if limit > len(idx) {
		limit = len(idx)
	}
	out := make([]uuid.UUID, 0, limit)
	for _, i := range idx[:limit] {
		out = append(out, ids[i])
	}
	return out
}

func sumInts(vals []int) int {
	total := 0
	for _, v := range vals {
		total += v
	}
	return total
}

func meanInts(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	return float64(sumInts(vals)) / float64(len(vals))
}

func safeRatio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func per100Words(count, totalWords int) float64 {
	if totalWords == 0 {
		return 0
	}
	return float64(count) / float64(totalWords) * 100
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }

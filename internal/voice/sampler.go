package voice

import (
	"sort"

	"github.com/kaive-ai/kaive-backend/internal/cluster"
	"github.com/kaive-ai/kaive-backend/internal/types"
)

const maxRepresentative = 6

// SelectRepresentative picks posts from one cluster for label prompting:
// the 2 closest to the cluster centroid, 3 spread evenly across the rest,
// the single highest-engagement post, and similarity-ranked fill so larger
// clusters always yield exactly 6. Clusters of 6 or fewer posts pass through
// unchanged; with fewer than 6 decodable embeddings the selection falls back
// to engagement ranking.
func SelectRepresentative(posts []*types.CreatorPost, cache *ParseCache) []*types.CreatorPost {
	if len(posts) <= maxRepresentative {
		return posts
	}

	valid := make([]*types.CreatorPost, 0, len(posts))
	vecs := make([][]float32, 0, len(posts))
	for _, p := range posts {
		if p == nil {
			continue
		}
		v, ok := cache.Decode(p.Embedding)
		if !ok {
			continue
		}
		valid = append(valid, p)
		vecs = append(vecs, v)
	}

	if len(valid) < maxRepresentative {
		ranked := make([]*types.CreatorPost, len(posts))
		copy(ranked, posts)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].LikeCount+ranked[i].CommentCount > ranked[j].LikeCount+ranked[j].CommentCount
		})
		return ranked[:maxRepresentative]
	}

	centroid, ok := cluster.MeanVector(vecs)
	if !ok {
		return posts[:maxRepresentative]
	}

	order := make([]int, len(valid))
	for i := range order {
		order[i] = i
	}
	sims := make([]float64, len(valid))
	for i, v := range vecs {
		sims[i] = cluster.CosineSimilarity(centroid, v)
	}
	sort.SliceStable(order, func(a, b int) bool { return sims[order[a]] > sims[order[b]] })

	selected := make([]*types.CreatorPost, 0, maxRepresentative)
	selectedIdx := make(map[int]bool, maxRepresentative)

	for _, i := range order[:2] {
		selected = append(selected, valid[i])
		selectedIdx[i] = true
	}

	remaining := make([]int, 0, len(valid))
	for i := range valid {
		if !selectedIdx[i] {
			remaining = append(remaining, i)
		}
	}
	if len(remaining) >= 3 {
		step := len(remaining) / 3
		for j := 0; j < 3; j++ {
			i := remaining[j*step]
			selected = append(selected, valid[i])
			selectedIdx[i] = true
		}
	}

	topIdx := 0
	topScore := -1
	for i, p := range valid {
		score := p.LikeCount + p.CommentCount
		if score > topScore {
			topScore = score
			topIdx = i
		}
	}
	if !selectedIdx[topIdx] && len(selected) < maxRepresentative {
		selected = append(selected, valid[topIdx])
		selectedIdx[topIdx] = true
	}

	// When the engagement pick overlaps earlier picks, top up from the
	// similarity ranking so 7+ posts always yield 6.
	for _, i := range order {
		if len(selected) >= maxRepresentative {
			break
		}
		if selectedIdx[i] {
			continue
		}
		selected = append(selected, valid[i])
		selectedIdx[i] = true
	}

	if len(selected) > maxRepresentative {
		selected = selected[:maxRepresentative]
	}
	return selected
}

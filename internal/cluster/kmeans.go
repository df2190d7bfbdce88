package cluster

import "math/rand"

const (
	// Fixed seed keeps partitions reproducible for identical inputs.
	partitionSeed = 42

	restarts = 10
	maxIter  = 100
)

// Partition groups vectors into at most k clusters and returns one label per
// vector, using consecutive integers 0..k'-1 where k' = min(k, len(vectors)).
// Labels carry no meaning beyond grouping. With zero or one vector no
// algorithm runs; the single vector gets label 0.
func Partition(vectors [][]float32, k int) []int {
	n := len(vectors)
	if n == 0 {
		return []int{}
	}
	if n == 1 {
		return []int{0}
	}
	if k > n {
		k = n
	}
	if k < 1 {
		k = 1
	}

	rng := rand.New(rand.NewSource(partitionSeed))

	bestLabels := make([]int, n)
	bestInertia := -1.0

	for r := 0; r < restarts; r++ {
		labels, inertia := runKMeans(vectors, k, rng)
		if bestInertia < 0 || inertia < bestInertia {
			bestInertia = inertia
			copy(bestLabels, labels)
		}
	}
	return bestLabels
}

func runKMeans(vectors [][]float32, k int, rng *rand.Rand) ([]int, float64) {
	n := len(vectors)

	// Initial centroids: k distinct vectors chosen at random.
	perm := rng.Perm(n)
	centroids := make([][]float32, k)
	for i := 0; i < k; i++ {
		src := vectors[perm[i]]
		c := make([]float32, len(src))
		copy(c, src)
		centroids[i] = c
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, v := range vectors {
			best := 0
			bestDist := squaredDistance(v, centroids[0])
			for c := 1; c < k; c++ {
				d := squaredDistance(v, centroids[c])
				if d < bestDist {
					bestDist = d
					best = c
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}

		for c := 0; c < k; c++ {
			members := make([][]float32, 0)
			for i, l := range labels {
				if l == c {
					members = append(members, vectors[i])
				}
			}
			if len(members) == 0 {
				// Reseed an empty cluster from the point farthest from
				// its current centroid so every label stays populated.
				far := farthestIndex(vectors, labels, centroids)
				labels[far] = c
				centroids[c] = append([]float32(nil), vectors[far]...)
				changed = true
				continue
			}
			if mean, ok := MeanVector(members); ok {
				centroids[c] = mean
			}
		}

		if !changed {
			break
		}
	}

	var inertia float64
	for i, v := range vectors {
		inertia += squaredDistance(v, centroids[labels[i]])
	}
	return labels, inertia
}

func farthestIndex(vectors [][]float32, labels []int, centroids [][]float32) int {
	far := 0
	farDist := -1.0
	for i, v := range vectors {
		l := labels[i]
		if l < 0 || l >= len(centroids) {
			continue
		}
		d := squaredDistance(v, centroids[l])
		if d > farDist {
			farDist = d
			far = i
		}
	}
	return far
}

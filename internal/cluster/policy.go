package cluster

const (
	// Below this corpus size a full recluster is cheap and more stable than
	// clustering increments.
	fullReclusterFloor = 20

	// New posts above this share of the corpus invalidate old centroids.
	fullReclusterRatio = 0.3
)

// ShouldFullRecluster decides between reclustering all of a creator's posts
// and clustering only the new ones. Rules are evaluated in order: small
// corpus, significant composition change, bootstrap (no assignments yet).
func ShouldFullRecluster(totalPosts, newPosts int, hasExistingClusters bool) bool {
	if totalPosts < fullReclusterFloor {
		return true
	}
	if totalPosts > 0 && float64(newPosts)/float64(totalPosts) > fullReclusterRatio {
		return true
	}
	if !hasExistingClusters {
		return true
	}
	return false
}

package types

import "github.com/google/uuid"

// ClusterAssignment maps one post to the cluster label produced by a
// partitioning run. It is never persisted on its own; it is only written
// back to creator_post.cluster_id.
type ClusterAssignment struct {
	PostID    uuid.UUID
	ClusterID int
}

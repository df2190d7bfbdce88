package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CreatorPost struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Author        string         `gorm:"column:author;not null;index" json:"author"`
	PostContent   string         `gorm:"column:post_content;not null" json:"post_content"`
	PostDate      string         `gorm:"column:post_date" json:"post_date"`
	PostTimestamp time.Time      `gorm:"column:post_timestamp" json:"post_timestamp"`
	LikeCount     int            `gorm:"column:like_count;not null;default:0" json:"like_count"`
	CommentCount  int            `gorm:"column:comment_count;not null;default:0" json:"comment_count"`
	RepostCount   int            `gorm:"column:repost_count;not null;default:0" json:"repost_count"`
	PostURL       *string        `gorm:"column:post_url" json:"post_url,omitempty"`
	ImgURL        *string        `gorm:"column:imgurl" json:"imgurl,omitempty"`
	Embedding     datatypes.JSON `gorm:"column:embedding;type:jsonb" json:"embedding,omitempty"`
	ClusterID     *int           `gorm:"column:cluster_id;index" json:"cluster_id,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

func (CreatorPost) TableName() string { return "creator_post" }

// Engagement is likes+comments+reposts, the score used for top-post
// selection and cluster ranking.
func (p *CreatorPost) Engagement() int {
	return p.LikeCount + p.CommentCount + p.RepostCount
}

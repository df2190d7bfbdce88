package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CreatorVoiceProfile struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Creator             string         `gorm:"column:creator;not null;uniqueIndex:idx_voice_profile_creator_cluster" json:"creator"`
	ClusterID           int            `gorm:"column:cluster_id;not null;uniqueIndex:idx_voice_profile_creator_cluster" json:"cluster_id"`
	ClusterName         string         `gorm:"column:cluster_name;not null" json:"cluster_name"`
	ClusterDescription  string         `gorm:"column:cluster_description" json:"cluster_description"`
	VoiceSchema         datatypes.JSON `gorm:"column:voice_schema;type:jsonb" json:"voice_schema"`
	Engagement          datatypes.JSON `gorm:"column:engagement;type:jsonb" json:"engagement"`
	PostCharacteristics datatypes.JSON `gorm:"column:post_characteristics;type:jsonb" json:"post_characteristics"`
	TopPostIDs          datatypes.JSON `gorm:"column:top_post_ids;type:jsonb" json:"top_post_ids"`
	PerformanceRank     int            `gorm:"column:performance_rank;not null;default:0" json:"performance_rank"`
	TotalEngagement     float64        `gorm:"column:total_engagement;not null;default:0" json:"total_engagement"`
	CreatedAt           time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null" json:"updated_at"`
}

func (CreatorVoiceProfile) TableName() string { return "creator_voice_profile" }

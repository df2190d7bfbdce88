package types

import (
	"time"
	"github.com/google/uuid"
)

// Upload batch statuses. Transitions are one-way:
// processing -> posts_saved -> completed
// processing -> failed
// posts_saved -> voice_profile_failed
const (
	UploadStatusProcessing         = "processing"
	UploadStatusPostsSaved         = "posts_saved"
	UploadStatusCompleted          = "completed"
	UploadStatusFailed             = "failed"
	UploadStatusVoiceProfileFailed = "voice_profile_failed"
)

type UploadedFile struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Filename           string    `gorm:"column:filename;not null" json:"filename"`
	Status             string    `gorm:"column:status;not null;index" json:"status"`
	TotalPosts         int       `gorm:"column:total_posts;not null;default:0" json:"total_posts"`
	NewPosts           int       `gorm:"column:new_posts;not null;default:0" json:"new_posts"`
	DuplicatePosts     int       `gorm:"column:duplicate_posts;not null;default:0" json:"duplicate_posts"`
	VoiceProfilesCount int       `gorm:"column:voice_profiles_count;not null;default:0" json:"voice_profiles_count"`
	ErrorMessage       string    `gorm:"column:error_message" json:"error_message"`
	CreatedAt          time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null" json:"updated_at"`
}

func (UploadedFile) TableName() string { return "uploaded_file" }

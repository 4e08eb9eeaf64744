package model

import (
	"time"
)

// 图片任务状态
const (
	ImageJobStatusQueued     = "queued"
	ImageJobStatusProcessing = "processing"
	ImageJobStatusDone       = "done"
	ImageJobStatusSkipped    = "skipped"
	ImageJobStatusFailed     = "failed"
)

// ImageJob 图片生成任务记录
type ImageJob struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	UserID       string     `gorm:"size:64;not null;index" json:"user_id"`
	CharacterID  int64      `gorm:"not null" json:"character_id"`
	Prompt       string     `gorm:"type:text" json:"prompt"`
	Style        string     `gorm:"size:50" json:"style"`
	LoraKey      string     `gorm:"size:100" json:"lora_key"`
	Status       string     `gorm:"size:20;default:queued;index" json:"status"`
	ImageURL     string     `gorm:"size:500" json:"image_url,omitempty"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (ImageJob) TableName() string {
	return "image_jobs"
}

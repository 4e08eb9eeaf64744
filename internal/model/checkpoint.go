package model

import (
	"time"
)

// Checkpoint 会话存档，创建后不可变
type Checkpoint struct {
	ID             string      `gorm:"primaryKey;size:36" json:"id"`
	UserID         string      `gorm:"size:64;not null;index" json:"user_id"`
	CharacterID    int64       `gorm:"not null" json:"character_id"`
	CheckpointName string      `gorm:"size:100;not null" json:"checkpoint_name"`
	ChatHistory    ChatHistory `gorm:"type:json" json:"chat_history"`
	CurrentStyle   string      `gorm:"size:50" json:"current_style"`
	CreatedAt      time.Time   `gorm:"index" json:"created_at"`
}

func (Checkpoint) TableName() string {
	return "checkpoints"
}

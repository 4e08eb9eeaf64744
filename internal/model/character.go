package model

import (
	"time"
)

// Character 角色参考数据，由运营侧维护，核心只读
type Character struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	SystemPrompt string    `gorm:"type:text;not null" json:"system_prompt"`
	ImageLoraKey string    `gorm:"size:100" json:"image_lora_key"`
	IsFree       bool      `gorm:"default:true" json:"is_free"`
	SortOrder    int       `gorm:"default:0;index" json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Character) TableName() string {
	return "characters"
}

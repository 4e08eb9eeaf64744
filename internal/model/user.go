package model

import (
	"time"
)

type User struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"` // 消息平台的用户 ID
	Username      string    `gorm:"size:100" json:"username"`
	FirstName     string    `gorm:"size:100" json:"first_name"`
	DailyMsgCount int       `gorm:"default:0" json:"daily_msg_count"`
	DailyImgCount int       `gorm:"default:0" json:"daily_img_count"`
	IsPremium     bool      `gorm:"default:false" json:"is_premium"`
	LastResetTime time.Time `gorm:"not null" json:"last_reset_time"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

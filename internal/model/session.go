package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// 对话角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxHistoryTurns 会话历史上限，超出时丢弃最旧的记录
const MaxHistoryTurns = 20

// ChatTurn 一条对话记录
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatHistory 用于 JSON 数组字段
type ChatHistory []ChatTurn

func (h ChatHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	return json.Marshal(h)
}

func (h *ChatHistory) Scan(value interface{}) error {
	if value == nil {
		*h = ChatHistory{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, h)
}

// Trim 保留最近 n 条记录
func (h ChatHistory) Trim(n int) ChatHistory {
	if len(h) <= n {
		return h
	}
	return h[len(h)-n:]
}

// Session 活跃会话，每个用户至多一条
type Session struct {
	UserID       string      `gorm:"primaryKey;size:64" json:"user_id"`
	CharacterID  int64       `gorm:"not null;index" json:"character_id"`
	CurrentStyle string      `gorm:"size:50;default:Realistic" json:"current_style"`
	ChatHistory  ChatHistory `gorm:"type:json" json:"chat_history"`
	MsgCounter   int         `gorm:"default:0" json:"msg_counter"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	// 关联
	Character *Character `gorm:"foreignKey:CharacterID" json:"character,omitempty"`
}

func (Session) TableName() string {
	return "active_sessions"
}

package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/companion_go_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	user := &model.User{
		ID:            fmt.Sprintf("tg_%d", time.Now().UnixNano()),
		Username:      fmt.Sprintf("testuser_%d", time.Now().UnixNano()%10000),
		FirstName:     "Test",
		DailyMsgCount: 0,
		DailyImgCount: 0,
		IsPremium:     false,
		LastResetTime: time.Now(),
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUserID 设置用户 ID
func WithUserID(id string) func(*model.User) {
	return func(u *model.User) {
		u.ID = id
	}
}

// WithPremium 设置为付费用户
func WithPremium() func(*model.User) {
	return func(u *model.User) {
		u.IsPremium = true
	}
}

// WithMsgCount 设置已用消息数
func WithMsgCount(count int) func(*model.User) {
	return func(u *model.User) {
		u.DailyMsgCount = count
	}
}

// WithImgCount 设置已用图片数
func WithImgCount(count int) func(*model.User) {
	return func(u *model.User) {
		u.DailyImgCount = count
	}
}

// WithLastReset 设置上次重置时间
func WithLastReset(at time.Time) func(*model.User) {
	return func(u *model.User) {
		u.LastResetTime = at
	}
}

// TestCharacter 创建测试角色
func TestCharacter(t *testing.T, db *gorm.DB, opts ...func(*model.Character)) *model.Character {
	t.Helper()

	character := &model.Character{
		Name:         fmt.Sprintf("Luna %d", time.Now().UnixNano()%10000),
		SystemPrompt: "You are Luna, a warm and playful companion.",
		ImageLoraKey: "luna_v1",
		IsFree:       true,
	}

	for _, opt := range opts {
		opt(character)
	}

	if err := db.Create(character).Error; err != nil {
		t.Fatalf("Failed to create test character: %v", err)
	}

	return character
}

// WithLocked 设置为付费解锁角色
func WithLocked() func(*model.Character) {
	return func(c *model.Character) {
		c.IsFree = false
	}
}

// WithCharacterName 设置角色名称
func WithCharacterName(name string) func(*model.Character) {
	return func(c *model.Character) {
		c.Name = name
	}
}

// TestSession 创建测试会话
func TestSession(t *testing.T, db *gorm.DB, userID string, characterID int64, opts ...func(*model.Session)) *model.Session {
	t.Helper()

	session := &model.Session{
		UserID:       userID,
		CharacterID:  characterID,
		CurrentStyle: "Realistic",
		ChatHistory:  model.ChatHistory{},
		MsgCounter:   0,
	}

	for _, opt := range opts {
		opt(session)
	}

	if err := db.Create(session).Error; err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return session
}

// WithHistory 设置会话历史
func WithHistory(history model.ChatHistory) func(*model.Session) {
	return func(s *model.Session) {
		s.ChatHistory = history
	}
}

// WithMsgCounter 设置会话计数器
func WithMsgCounter(counter int) func(*model.Session) {
	return func(s *model.Session) {
		s.MsgCounter = counter
	}
}

// WithStyle 设置会话风格
func WithStyle(style string) func(*model.Session) {
	return func(s *model.Session) {
		s.CurrentStyle = style
	}
}

// TestCheckpoint 创建测试存档
func TestCheckpoint(t *testing.T, db *gorm.DB, userID string, characterID int64, opts ...func(*model.Checkpoint)) *model.Checkpoint {
	t.Helper()

	checkpoint := &model.Checkpoint{
		ID:             fmt.Sprintf("cp_%d", time.Now().UnixNano()),
		UserID:         userID,
		CharacterID:    characterID,
		CheckpointName: "Save 2025-01-01 12:00",
		ChatHistory:    model.ChatHistory{{Role: model.RoleUser, Content: "hi"}},
		CurrentStyle:   "Realistic",
	}

	for _, opt := range opts {
		opt(checkpoint)
	}

	if err := db.Create(checkpoint).Error; err != nil {
		t.Fatalf("Failed to create test checkpoint: %v", err)
	}

	return checkpoint
}

// WithCheckpointHistory 设置存档历史
func WithCheckpointHistory(history model.ChatHistory) func(*model.Checkpoint) {
	return func(c *model.Checkpoint) {
		c.ChatHistory = history
	}
}

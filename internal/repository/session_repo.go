package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/companion_go_server/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// GetByUserID 获取用户的活跃会话，带角色信息
func (r *SessionRepository) GetByUserID(userID string) (*model.Session, error) {
	var session model.Session
	err := r.db.Preload("Character").Where("user_id = ?", userID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Replace 删除旧会话并插入新会话，同一事务内完成
func (r *SessionRepository) Replace(session *model.Session) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", session.UserID).Delete(&model.Session{}).Error; err != nil {
			return err
		}
		return tx.Create(session).Error
	})
}

func (r *SessionRepository) UpdateHistory(userID string, history model.ChatHistory) error {
	return r.db.Model(&model.Session{}).Where("user_id = ?", userID).
		Update("chat_history", history).Error
}

func (r *SessionRepository) UpdateMsgCounter(userID string, counter int) error {
	return r.db.Model(&model.Session{}).Where("user_id = ?", userID).
		Update("msg_counter", counter).Error
}

func (r *SessionRepository) Delete(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.Session{}).Error
}

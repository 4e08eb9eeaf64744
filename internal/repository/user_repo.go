package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/companion_go_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id string) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *UserRepository) IncrementMsgCount(id string) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		Update("daily_msg_count", gorm.Expr("daily_msg_count + 1")).Error
}

func (r *UserRepository) IncrementImgCount(id string) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		Update("daily_img_count", gorm.Expr("daily_img_count + 1")).Error
}

func (r *UserRepository) ResetQuota(id string, resetTime time.Time) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"daily_msg_count": 0,
		"daily_img_count": 0,
		"last_reset_time": resetTime,
	}).Error
}

// ResetExpiredQuotas 批量重置超过 24 小时未重置的用户，滚动窗口语义保持不变
func (r *UserRepository) ResetExpiredQuotas(olderThan time.Time, resetTime time.Time) (int64, error) {
	result := r.db.Model(&model.User{}).Where("last_reset_time < ?", olderThan).
		Updates(map[string]interface{}{
			"daily_msg_count": 0,
			"daily_img_count": 0,
			"last_reset_time": resetTime,
		})
	return result.RowsAffected, result.Error
}

func (r *UserRepository) SetPremium(id string, premium bool) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		Update("is_premium", premium).Error
}

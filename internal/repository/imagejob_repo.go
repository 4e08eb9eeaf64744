package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/companion_go_server/internal/model"
)

type ImageJobRepository struct {
	db *gorm.DB
}

func NewImageJobRepository(db *gorm.DB) *ImageJobRepository {
	return &ImageJobRepository{db: db}
}

func (r *ImageJobRepository) Create(job *model.ImageJob) error {
	return r.db.Create(job).Error
}

func (r *ImageJobRepository) GetByID(id int64) (*model.ImageJob, error) {
	var job model.ImageJob
	err := r.db.Where("id = ?", id).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *ImageJobRepository) Update(job *model.ImageJob) error {
	return r.db.Save(job).Error
}

// ListByUserID 按创建时间倒序返回用户最近的任务
func (r *ImageJobRepository) ListByUserID(userID string, limit int) ([]*model.ImageJob, error) {
	var jobs []*model.ImageJob
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

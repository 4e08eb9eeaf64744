package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/companion_go_server/internal/model"
)

type CheckpointRepository struct {
	db *gorm.DB
}

func NewCheckpointRepository(db *gorm.DB) *CheckpointRepository {
	return &CheckpointRepository{db: db}
}

func (r *CheckpointRepository) Create(checkpoint *model.Checkpoint) error {
	return r.db.Create(checkpoint).Error
}

func (r *CheckpointRepository) GetByID(id string) (*model.Checkpoint, error) {
	var checkpoint model.Checkpoint
	err := r.db.Where("id = ?", id).First(&checkpoint).Error
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}

// ListByUserID 按创建时间倒序返回用户的所有存档
func (r *CheckpointRepository) ListByUserID(userID string) ([]*model.Checkpoint, error) {
	var checkpoints []*model.Checkpoint
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&checkpoints).Error
	if err != nil {
		return nil, err
	}
	return checkpoints, nil
}

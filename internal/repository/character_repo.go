package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/companion_go_server/internal/model"
)

type CharacterRepository struct {
	db *gorm.DB
}

func NewCharacterRepository(db *gorm.DB) *CharacterRepository {
	return &CharacterRepository{db: db}
}

func (r *CharacterRepository) GetByID(id int64) (*model.Character, error) {
	var character model.Character
	err := r.db.Where("id = ?", id).First(&character).Error
	if err != nil {
		return nil, err
	}
	return &character, nil
}

func (r *CharacterRepository) List() ([]*model.Character, error) {
	var characters []*model.Character
	err := r.db.Order("sort_order ASC, id ASC").Find(&characters).Error
	if err != nil {
		return nil, err
	}
	return characters, nil
}

// Upsert 按名称更新或插入，供运营工具使用
func (r *CharacterRepository) Upsert(character *model.Character) error {
	var existing model.Character
	err := r.db.Where("name = ?", character.Name).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(character).Error
	}
	if err != nil {
		return err
	}

	character.ID = existing.ID
	character.CreatedAt = existing.CreatedAt
	return r.db.Save(character).Error
}

package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qs3c/companion_go_server/internal/model"
	"github.com/qs3c/companion_go_server/internal/repository"
)

var (
	ErrNoActiveSession    = errors.New("没有活跃会话")
	ErrCheckpointNotFound = errors.New("存档不存在")
)

type CheckpointService struct {
	checkpointRepo *repository.CheckpointRepository
	sessionService *SessionService
}

func NewCheckpointService(
	checkpointRepo *repository.CheckpointRepository,
	sessionService *SessionService,
) *CheckpointService {
	return &CheckpointService{
		checkpointRepo: checkpointRepo,
		sessionService: sessionService,
	}
}

// Create 把当前会话快照成一条不可变存档，名称取自创建时间
func (s *CheckpointService) Create(userID string) (*model.Checkpoint, error) {
	session, err := s.sessionService.GetActive(userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoActiveSession
	}

	checkpoint := &model.Checkpoint{
		ID:             uuid.NewString(),
		UserID:         userID,
		CharacterID:    session.CharacterID,
		CheckpointName: "Save " + time.Now().Format("2006-01-02 15:04"),
		ChatHistory:    session.ChatHistory,
		CurrentStyle:   session.CurrentStyle,
	}
	if err := s.checkpointRepo.Create(checkpoint); err != nil {
		return nil, err
	}

	return checkpoint, nil
}

// List 按创建时间倒序返回用户的存档
func (s *CheckpointService) List(userID string) ([]*model.Checkpoint, error) {
	return s.checkpointRepo.ListByUserID(userID)
}

// Restore 读取存档并覆盖活跃会话。
// 存档不存在或不属于该用户都按 NotFound 处理，不泄露他人存档的存在。
func (s *CheckpointService) Restore(userID, checkpointID string) (*model.Checkpoint, error) {
	checkpoint, err := s.checkpointRepo.GetByID(checkpointID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCheckpointNotFound
	}
	if err != nil {
		return nil, err
	}

	// 归属校验
	if checkpoint.UserID != userID {
		return nil, ErrCheckpointNotFound
	}

	if err := s.sessionService.RestoreSession(userID, checkpoint); err != nil {
		return nil, err
	}

	return checkpoint, nil
}

package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/companion_go_server/internal/model"
	"github.com/qs3c/companion_go_server/internal/repository"
)

var (
	ErrCharacterNotFound = errors.New("角色不存在")
	ErrCharacterLocked   = errors.New("角色未解锁")
)

// DefaultStyle 新会话的默认画风
const DefaultStyle = "Realistic"

type SessionService struct {
	sessionRepo   *repository.SessionRepository
	characterRepo *repository.CharacterRepository
	quotaService  *QuotaService
}

func NewSessionService(
	sessionRepo *repository.SessionRepository,
	characterRepo *repository.CharacterRepository,
	quotaService *QuotaService,
) *SessionService {
	return &SessionService{
		sessionRepo:   sessionRepo,
		characterRepo: characterRepo,
		quotaService:  quotaService,
	}
}

// ListCharacters 按展示顺序返回全部角色
func (s *SessionService) ListCharacters() ([]*model.Character, error) {
	return s.characterRepo.List()
}

// GetActive 获取用户的活跃会话，没有则返回 nil（不是错误）
func (s *SessionService) GetActive(userID string) (*model.Session, error) {
	session, err := s.sessionRepo.GetByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SelectCharacter 选择角色并开启新会话。
// 先做访问检查，然后覆盖式替换：旧会话直接删除，每个用户只有一个活跃会话。
func (s *SessionService) SelectCharacter(user *model.User, characterID int64) (*model.Character, error) {
	character, err := s.characterRepo.GetByID(characterID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, err
	}

	if !s.quotaService.CanSelectCharacter(character, user) {
		return nil, ErrCharacterLocked
	}

	session := &model.Session{
		UserID:       user.ID,
		CharacterID:  character.ID,
		CurrentStyle: DefaultStyle,
		ChatHistory:  model.ChatHistory{},
		MsgCounter:   0,
	}
	if err := s.sessionRepo.Replace(session); err != nil {
		return nil, err
	}

	return character, nil
}

// RestoreSession 用存档内容覆盖活跃会话，存档本身不做任何修改
func (s *SessionService) RestoreSession(userID string, checkpoint *model.Checkpoint) error {
	session := &model.Session{
		UserID:       userID,
		CharacterID:  checkpoint.CharacterID,
		CurrentStyle: checkpoint.CurrentStyle,
		ChatHistory:  checkpoint.ChatHistory,
		MsgCounter:   0,
	}
	return s.sessionRepo.Replace(session)
}

// AppendTurn 向会话历史追加一条记录并截断到最近 20 条。
// 没有活跃会话时返回 nil 历史，属于可恢复的前置条件失败，不是错误。
func (s *SessionService) AppendTurn(userID, role, content string) (model.ChatHistory, error) {
	session, err := s.GetActive(userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	history := append(session.ChatHistory, model.ChatTurn{Role: role, Content: content})
	history = history.Trim(model.MaxHistoryTurns)

	if err := s.sessionRepo.UpdateHistory(userID, history); err != nil {
		return nil, err
	}
	return history, nil
}

// SetMsgCounter 更新会话的图片触发计数
func (s *SessionService) SetMsgCounter(userID string, counter int) error {
	return s.sessionRepo.UpdateMsgCounter(userID, counter)
}

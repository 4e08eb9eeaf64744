package service

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/companion_go_server/internal/model"
	"github.com/qs3c/companion_go_server/internal/model/dto"
	"github.com/qs3c/companion_go_server/internal/repository"
)

var (
	ErrUserNotFound = errors.New("用户不存在")
)

// quotaWindow 配额滚动窗口
const quotaWindow = 24 * time.Hour

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// GetOrCreate 按 ID 获取用户，不存在则创建。
// 读取时惰性重置：超过 24 小时窗口则清零计数并落库，重复调用幂等。
func (s *UserService) GetOrCreate(id, username, firstName string) (*model.User, error) {
	user, err := s.userRepo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &model.User{
			ID:            id,
			Username:      username,
			FirstName:     firstName,
			DailyMsgCount: 0,
			DailyImgCount: 0,
			IsPremium:     false,
			LastResetTime: time.Now(),
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if err != nil {
		return nil, err
	}

	// 检查是否需要重置
	if time.Since(user.LastResetTime) > quotaWindow {
		now := time.Now()
		if err := s.userRepo.ResetQuota(id, now); err != nil {
			return nil, err
		}
		user.DailyMsgCount = 0
		user.DailyImgCount = 0
		user.LastResetTime = now
	}

	return user, nil
}

// IncrementMessageCount 消息计数 +1
func (s *UserService) IncrementMessageCount(id string) error {
	return s.userRepo.IncrementMsgCount(id)
}

// IncrementImageCount 图片计数 +1
func (s *UserService) IncrementImageCount(id string) error {
	return s.userRepo.IncrementImgCount(id)
}

// GrantPremium 开通付费，仅由支付事件消费方调用。
// 用户不存在只记日志不报错，支付回调不能因此失败。
func (s *UserService) GrantPremium(id string) error {
	_, err := s.userRepo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("GrantPremium: user %s not found, ignoring payment event", id)
		return nil
	}
	if err != nil {
		return err
	}

	return s.userRepo.SetPremium(id, true)
}

// GetQuotaInfo 获取用户配额信息，读取时同样应用惰性重置
func (s *UserService) GetQuotaInfo(id string) (*dto.QuotaInfo, error) {
	user, err := s.userRepo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if time.Since(user.LastResetTime) > quotaWindow {
		now := time.Now()
		if err := s.userRepo.ResetQuota(id, now); err != nil {
			return nil, err
		}
		user.DailyMsgCount = 0
		user.DailyImgCount = 0
		user.LastResetTime = now
	}

	return &dto.QuotaInfo{
		IsPremium: user.IsPremium,
		MsgUsed:   user.DailyMsgCount,
		MsgLimit:  FreeMessageLimit,
		ImgUsed:   user.DailyImgCount,
		ImgLimit:  FreeImageLimit,
		ResetAt:   user.LastResetTime.Add(quotaWindow).Format(time.RFC3339),
	}, nil
}

// ResetExpiredQuotas 批量重置窗口已过期的用户，供定时任务调用。
// 只触碰 last_reset_time 已超过 24 小时的行，不影响滚动窗口语义。
func (s *UserService) ResetExpiredQuotas() (int64, error) {
	now := time.Now()
	return s.userRepo.ResetExpiredQuotas(now.Add(-quotaWindow), now)
}

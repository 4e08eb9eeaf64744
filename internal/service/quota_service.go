package service

import (
	"github.com/qs3c/companion_go_server/internal/model"
)

// 免费额度与触发阈值，产品定死的常量
const (
	FreeMessageLimit  = 10
	FreeImageLimit    = 3
	ImageTriggerTurns = 3
)

// QuotaService 配额与访问策略，纯决策逻辑，无副作用。
// 每次请求都重新判定，付费状态可能在对话中途被支付回调改变。
type QuotaService struct{}

func NewQuotaService() *QuotaService {
	return &QuotaService{}
}

// CanSendMessage 是否允许发送消息
func (s *QuotaService) CanSendMessage(user *model.User) bool {
	if user.IsPremium {
		return true
	}
	return user.DailyMsgCount < FreeMessageLimit
}

// CanGenerateImage 是否允许生成图片
func (s *QuotaService) CanGenerateImage(user *model.User) bool {
	if user.IsPremium {
		return true
	}
	return user.DailyImgCount < FreeImageLimit
}

// CanSelectCharacter 是否允许选择该角色
func (s *QuotaService) CanSelectCharacter(character *model.Character, user *model.User) bool {
	if character.IsFree {
		return true
	}
	return user.IsPremium
}

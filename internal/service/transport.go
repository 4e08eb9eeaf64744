package service

import (
	"context"

	"github.com/qs3c/companion_go_server/internal/model"
)

// Option 发给用户的按钮，Action 与 URL 二选一
type Option struct {
	Label  string `json:"label"`
	Action string `json:"action,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Transport 出站投递接口，由网关侧实现（生产环境走 redis pub/sub + websocket）
type Transport interface {
	SendText(ctx context.Context, chatID string, text string) error
	SendImage(ctx context.Context, chatID string, imageURL string) error
	SendOptions(ctx context.Context, chatID string, text string, options []Option) error
	AckCallback(ctx context.Context, token string) error
}

// TextGenerator 文本生成后端
type TextGenerator interface {
	Generate(ctx context.Context, systemInstruction string, history []model.ChatTurn) (string, error)
}

package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelBotOutbound = "bot_outbound"
)

// 出站消息类型
const (
	KindText    = "send_text"
	KindImage   = "send_image"
	KindOptions = "send_options"
	KindAck     = "ack"
)

// OutboundOption 选项按钮，action 与 url 二选一
type OutboundOption struct {
	Label  string `json:"label"`
	Action string `json:"action,omitempty"`
	URL    string `json:"url,omitempty"`
}

// OutboundMessage 出站投递消息，经 redis 广播后由网关 websocket 下发
type OutboundMessage struct {
	Kind     string           `json:"kind"`
	ChatID   string           `json:"chat_id,omitempty"`
	Text     string           `json:"text,omitempty"`
	ImageURL string           `json:"image_url,omitempty"`
	Options  []OutboundOption `json:"options,omitempty"`
	Token    string           `json:"token,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish 发布出站消息
func (p *Publisher) Publish(ctx context.Context, msg *OutboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal outbound message: %w", err)
	}

	return p.client.Publish(ctx, ChannelBotOutbound, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅出站消息，阻塞直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*OutboundMessage)) error {
	pubsub := s.client.Subscribe(ctx, ChannelBotOutbound)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var outbound OutboundMessage
			if err := json.Unmarshal([]byte(msg.Payload), &outbound); err != nil {
				continue // 忽略解析错误
			}

			handler(&outbound)
		}
	}
}

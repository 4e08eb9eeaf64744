package pubsub

import (
	"context"

	"github.com/qs3c/companion_go_server/internal/service"
)

// RedisTransport 经 redis 频道投递出站消息，网关订阅后走 websocket 下发
type RedisTransport struct {
	publisher *Publisher
}

func NewRedisTransport(publisher *Publisher) *RedisTransport {
	return &RedisTransport{publisher: publisher}
}

func (t *RedisTransport) SendText(ctx context.Context, chatID string, text string) error {
	return t.publisher.Publish(ctx, &OutboundMessage{
		Kind:   KindText,
		ChatID: chatID,
		Text:   text,
	})
}

func (t *RedisTransport) SendImage(ctx context.Context, chatID string, imageURL string) error {
	return t.publisher.Publish(ctx, &OutboundMessage{
		Kind:     KindImage,
		ChatID:   chatID,
		ImageURL: imageURL,
	})
}

func (t *RedisTransport) SendOptions(ctx context.Context, chatID string, text string, options []service.Option) error {
	outOptions := make([]OutboundOption, 0, len(options))
	for _, opt := range options {
		outOptions = append(outOptions, OutboundOption{
			Label:  opt.Label,
			Action: opt.Action,
			URL:    opt.URL,
		})
	}

	return t.publisher.Publish(ctx, &OutboundMessage{
		Kind:    KindOptions,
		ChatID:  chatID,
		Text:    text,
		Options: outOptions,
	})
}

func (t *RedisTransport) AckCallback(ctx context.Context, token string) error {
	return t.publisher.Publish(ctx, &OutboundMessage{
		Kind:  KindAck,
		Token: token,
	})
}

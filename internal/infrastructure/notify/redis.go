package notify

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/infrastructure/config"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// redisPublisher go-redis客户端中用到的部分
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
}

// Envelope 频道消息格式
type Envelope struct {
	Type    string                    `json:"type"`
	Payload reservation.CopyAvailable `json:"payload"`
}

// RedisNotifier 通过Redis Pub/Sub广播
// Pub/Sub不持久化:没有订阅者时消息直接丢弃
type RedisNotifier struct {
	client  redisPublisher
	channel string
}

func NewRedisNotifier(client redisPublisher, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) NotifyCopyAvailable(ctx context.Context, notice reservation.CopyAvailable) error {
	body, err := json.Marshal(Envelope{Type: RoutingKeyCopyAvailable, Payload: notice})
	if err != nil {
		return apperrors.Wrap(err, "序列化通知失败")
	}

	err = n.client.Publish(ctx, n.channel, body).Err()
	observe(config.NotifyRedis, err)
	if err != nil {
		return &apperrors.AppError{Code: apperrors.ErrCodeNotifyError, Message: "发布Redis通知失败", Err: err}
	}
	return nil
}

// Subscribe 订阅频道,逐条回调直到ctx取消(libctl notify listen使用)
func Subscribe(ctx context.Context, client *goredis.Client, channel string, handle func(Envelope)) error {
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("订阅Redis频道失败: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			handle(env)
		}
	}
}

package notify

import (
	"context"
	"errors"

	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
)

// amqpPublisher mq.Publisher中用到的部分
type amqpPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// AMQPNotifier 发布到RabbitMQ topic exchange
// 每次投递都经过熔断器:Broker持续不可用时直接拒绝,归还请求不被拖慢
type AMQPNotifier struct {
	pub     amqpPublisher
	breaker *circuitbreaker.Breaker
}

func NewAMQPNotifier(pub amqpPublisher, breaker *circuitbreaker.Breaker) *AMQPNotifier {
	return &AMQPNotifier{pub: pub, breaker: breaker}
}

func (n *AMQPNotifier) NotifyCopyAvailable(ctx context.Context, notice reservation.CopyAvailable) error {
	err := n.breaker.Execute(ctx, func(ctx context.Context) error {
		return n.pub.Publish(ctx, RoutingKeyCopyAvailable, notice)
	})

	switch {
	case errors.Is(err, circuitbreaker.ErrOpen):
		metrics.NotificationsTotal.WithLabelValues(config.NotifyRabbitMQ, "rejected").Inc()
		return &apperrors.AppError{Code: apperrors.ErrCodeNotifyError, Message: "通知通道熔断中", Err: err}
	case err != nil:
		observe(config.NotifyRabbitMQ, err)
		return &apperrors.AppError{Code: apperrors.ErrCodeNotifyError, Message: "发布RabbitMQ通知失败", Err: err}
	}

	observe(config.NotifyRabbitMQ, nil)
	return nil
}

// Package notify 副本可借通知的投递实现
//
// 归还事务提交后,借阅用例把CopyAvailable交给reservation.Notifier。
// 投递只是通知候补队首,不会自动生成新的借阅;失败由调用方记录日志。
package notify

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/mq"
)

// RoutingKeyCopyAvailable RabbitMQ路由键 / Redis消息类型
const RoutingKeyCopyAvailable = "library.copy.available"

// CleanupFunc 释放通知器持有的连接
type CleanupFunc func()

// New 按notify.driver创建通知器
// redis驱动复用已有的Redis客户端;rabbitmq驱动自行建立连接并套上熔断器
func New(cfg *config.Config, redisClient *goredis.Client, log *slog.Logger) (reservation.Notifier, CleanupFunc, error) {
	switch cfg.Notify.Driver {
	case config.NotifyRedis:
		if redisClient == nil {
			return nil, nil, fmt.Errorf("notify.driver=redis 需要Redis客户端")
		}
		return NewRedisNotifier(redisClient, cfg.Notify.RedisChannel), func() {}, nil

	case config.NotifyRabbitMQ:
		pub, err := mq.NewPublisher(cfg.Notify.AMQPURL, cfg.Notify.Exchange, log)
		if err != nil {
			return nil, nil, err
		}
		breaker := NewBreaker("notify-rabbitmq", cfg.Notify, log)
		return NewAMQPNotifier(pub, breaker), func() { _ = pub.Close() }, nil

	default:
		return NewLogNotifier(log), func() {}, nil
	}
}

// NewBreaker 通知投递用的熔断器,状态变化写日志并更新指标
func NewBreaker(name string, cfg config.NotifyConfig, log *slog.Logger) *circuitbreaker.Breaker {
	return circuitbreaker.New(name, circuitbreaker.Settings{
		MaxFailures: cfg.MaxFailures,
		Interval:    cfg.StatInterval,
		OpenTimeout: cfg.OpenTimeout,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			log.Warn("熔断器状态变化", "breaker", name, "from", from.String(), "to", to.String())
			metrics.SetBreakerState(name, int(to))
		},
	})
}

func observe(driver string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.NotificationsTotal.WithLabelValues(driver, result).Inc()
}

// =========================================
// 仅日志
// =========================================

// LogNotifier 只写日志(开发环境或未部署消息中间件时)
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyCopyAvailable(ctx context.Context, notice reservation.CopyAvailable) error {
	n.log.InfoContext(ctx, "副本可借,通知候补队首",
		"copy_id", notice.CopyID,
		"reservation_id", notice.ReservationID,
		"user_id", notice.UserID,
		"position", notice.Position,
		"returned_loan_id", notice.ReturnedLoan,
	)
	observe(config.NotifyLog, nil)
	return nil
}

package reservation

import (
	"context"
)

// Notifier 副本可借通知的投递方
// 实现:RabbitMQ(熔断保护)、Redis Pub/Sub、仅写日志
// 投递失败只记录日志,不影响归还事务
type Notifier interface {
	NotifyCopyAvailable(ctx context.Context, notice CopyAvailable) error
}

// NotifierFunc 函数适配器
type NotifierFunc func(ctx context.Context, notice CopyAvailable) error

func (f NotifierFunc) NotifyCopyAvailable(ctx context.Context, notice CopyAvailable) error {
	return f(ctx, notice)
}

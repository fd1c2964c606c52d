package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/notify"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/pkg/mq"
)

func newNotifyCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "到馆通知",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "listen",
		Short: "按notify.driver订阅到馆通知并逐条打印,Ctrl+C退出",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			switch e.cfg.Notify.Driver {
			case config.NotifyRedis:
				return e.listenRedis(ctx, cmd)
			case config.NotifyRabbitMQ:
				return e.listenAMQP(ctx, cmd)
			default:
				return fmt.Errorf("notify.driver=%s 不支持订阅,通知只写入服务日志", e.cfg.Notify.Driver)
			}
		},
	})
	return cmd
}

func (e *env) listenRedis(ctx context.Context, cmd *cobra.Command) error {
	client, err := redis.NewClient(e.cfg, e.log)
	if err != nil {
		return err
	}
	defer client.Close()

	e.log.Info("订阅Redis频道", "channel", e.cfg.Notify.RedisChannel)
	return notify.Subscribe(ctx, client, e.cfg.Notify.RedisChannel, func(msg notify.Envelope) {
		printNotice(cmd, msg)
	})
}

func (e *env) listenAMQP(ctx context.Context, cmd *cobra.Command) error {
	consumer, err := mq.NewConsumer(e.cfg.Notify.AMQPURL, e.cfg.Notify.Exchange, "",
		[]string{notify.RoutingKeyCopyAvailable}, e.log)
	if err != nil {
		return err
	}
	defer consumer.Close()

	return consumer.Consume(ctx, func(_ context.Context, body []byte) error {
		var notice reservation.CopyAvailable
		if err := json.Unmarshal(body, &notice); err != nil {
			// 格式错误的消息重新入队没有意义
			e.log.Warn("无法解析的通知", "error", err)
			return nil
		}
		printNotice(cmd, notify.Envelope{Type: notify.RoutingKeyCopyAvailable, Payload: notice})
		return nil
	})
}

func printNotice(cmd *cobra.Command, msg notify.Envelope) {
	n := msg.Payload
	fmt.Fprintf(cmd.OutOrStdout(), "%s copy=%d reservation=%d user=%d position=%d loan=%d at=%s\n",
		msg.Type, n.CopyID, n.ReservationID, n.UserID, n.Position, n.ReturnedLoan, n.OccurredAt.Format("2006-01-02 15:04:05"))
}

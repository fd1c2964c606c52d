package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var notice = reservation.CopyAvailable{
	CopyID:        3,
	ReservationID: 5,
	UserID:        8,
	Position:      1,
	ReturnedLoan:  13,
	OccurredAt:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, n.NotifyCopyAvailable(context.Background(), notice))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, float64(8), line["user_id"])
	assert.Equal(t, float64(3), line["copy_id"])
}

type fakeRedis struct {
	channel string
	message interface{}
	err     error
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd {
	f.channel, f.message = channel, message
	cmd := goredis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedisNotifier(t *testing.T) {
	client := &fakeRedis{}
	n := NewRedisNotifier(client, "library:notifications")

	require.NoError(t, n.NotifyCopyAvailable(context.Background(), notice))
	assert.Equal(t, "library:notifications", client.channel)

	var env Envelope
	require.NoError(t, json.Unmarshal(client.message.([]byte), &env))
	assert.Equal(t, RoutingKeyCopyAvailable, env.Type)
	assert.Equal(t, notice.UserID, env.Payload.UserID)
	assert.True(t, notice.OccurredAt.Equal(env.Payload.OccurredAt))
}

func TestRedisNotifier_Error(t *testing.T) {
	n := NewRedisNotifier(&fakeRedis{err: errors.New("connection refused")}, "ch")

	err := n.NotifyCopyAvailable(context.Background(), notice)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotifyError))
}

type fakeAMQP struct {
	calls int
	keys  []string
	err   error
}

func (f *fakeAMQP) Publish(_ context.Context, routingKey string, _ interface{}) error {
	f.calls++
	f.keys = append(f.keys, routingKey)
	return f.err
}

func TestAMQPNotifier_Publishes(t *testing.T) {
	pub := &fakeAMQP{}
	n := NewAMQPNotifier(pub, NewBreaker("test-ok", config.NotifyConfig{MaxFailures: 2}, slog.Default()))

	require.NoError(t, n.NotifyCopyAvailable(context.Background(), notice))
	assert.Equal(t, []string{RoutingKeyCopyAvailable}, pub.keys)
}

func TestAMQPNotifier_BreakerOpens(t *testing.T) {
	pub := &fakeAMQP{err: errors.New("broker down")}
	breaker := NewBreaker("test-down", config.NotifyConfig{MaxFailures: 2, OpenTimeout: time.Minute}, slog.Default())
	n := NewAMQPNotifier(pub, breaker)

	for i := 0; i < 2; i++ {
		err := n.NotifyCopyAvailable(context.Background(), notice)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotifyError))
	}
	assert.Equal(t, circuitbreaker.StateOpen, breaker.State())

	// 熔断后不再调用Broker
	err := n.NotifyCopyAvailable(context.Background(), notice)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.Equal(t, 2, pub.calls)
}

func TestNew_DefaultsToLog(t *testing.T) {
	cfg := &config.Config{Notify: config.NotifyConfig{Driver: config.NotifyLog}}
	n, cleanup, err := New(cfg, nil, slog.Default())
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &LogNotifier{}, n)

	cfg.Notify.Driver = config.NotifyRedis
	_, _, err = New(cfg, nil, slog.Default())
	assert.Error(t, err)
}

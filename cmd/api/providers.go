package main

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/application/lending"
	appreservation "github.com/xiebiao/library/internal/application/reservation"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/notify"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/internal/interface/http/router"
	"github.com/xiebiao/library/pkg/jwt"
)

// ========================================
// Custom Providers
// ========================================
// 构造函数参数需要从Config中提取,或者需要附带cleanup的依赖

// provideDB 数据库连接,cleanup时关闭连接池
func provideDB(cfg *config.Config, log *slog.Logger) (*gorm.DB, func(), error) {
	db, err := rdb.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideRedis Redis客户端,cleanup时关闭
func provideRedis(cfg *config.Config, log *slog.Logger) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideFinePolicy 借阅期限与每日罚金来自lending配置
func provideFinePolicy(cfg *config.Config) (loan.FinePolicy, error) {
	rate, err := cfg.Lending.FineRate()
	if err != nil {
		return loan.FinePolicy{}, err
	}
	return loan.NewFinePolicy(cfg.Lending.LoanPeriodDays, rate), nil
}

func provideNotifier(cfg *config.Config, client *goredis.Client, log *slog.Logger) (reservation.Notifier, func(), error) {
	n, cleanup, err := notify.New(cfg, client, log)
	if err != nil {
		return nil, nil, err
	}
	return n, cleanup, nil
}

func provideLendingClock() lending.Clock { return time.Now }

func provideReservationClock() appreservation.Clock { return time.Now }

// provideLoginUseCase 会话有效期与Refresh Token一致
func provideLoginUseCase(
	cfg *config.Config,
	userService user.Service,
	jwtManager *jwt.Manager,
	sessions appuser.SessionStore,
	log *slog.Logger,
) *appuser.LoginUseCase {
	return appuser.NewLoginUseCase(userService, jwtManager, sessions, cfg.JWT.RefreshTokenExpire, log)
}

func provideLogoutUseCase(sessions appuser.SessionStore, log *slog.Logger) *appuser.LogoutUseCase {
	return appuser.NewLogoutUseCase(sessions, time.Now, log)
}

// provideEngine 创建Gin引擎,release模式下不开放Swagger
func provideEngine(
	cfg *config.Config,
	handlers router.Handlers,
	auth *middleware.AuthMiddleware,
	log *slog.Logger,
) *gin.Engine {
	return router.New(router.Options{
		Mode:          cfg.Server.Mode,
		ServiceName:   cfg.Tracing.ServiceName,
		EnableSwagger: cfg.Server.Mode != gin.ReleaseMode,
	}, handlers, auth, log)
}

//go:build wireinject
// +build wireinject

// Wire依赖注入声明
//
// 运行 `wire gen ./cmd/api` 生成wire_gen.go后,可以用生成的initializeApp替换app.go中的手动组装

package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	appcatalog "github.com/xiebiao/library/internal/application/catalog"
	"github.com/xiebiao/library/internal/application/lending"
	appreport "github.com/xiebiao/library/internal/application/report"
	appreservation "github.com/xiebiao/library/internal/application/reservation"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/internal/interface/http/router"
)

// infrastructureSet 数据库、Redis、通知与借阅规则
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedis,
	provideNotifier,
	provideFinePolicy,
	provideSessionStore,
	provideJWTManager,
	provideLendingClock,
	provideReservationClock,
	wire.Bind(new(appuser.SessionStore), new(*redis.SessionStore)),
	wire.Bind(new(middleware.RevocationChecker), new(*redis.SessionStore)),
)

// repositorySet 仓储
var repositorySet = wire.NewSet(
	rdb.NewUserRepository,
	rdb.NewGroupRepository,
	rdb.NewBookRepository,
	rdb.NewAuthorRepository,
	rdb.NewPublisherRepository,
	rdb.NewCategoryRepository,
	rdb.NewCopyRepository,
	rdb.NewLoanRepository,
	rdb.NewFineRepository,
	rdb.NewReservationRepository,
	rdb.NewWaitlistRepository,
	rdb.NewReportRepository,
	rdb.NewTxManager,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	user.NewService,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	provideLoginUseCase,
	provideLogoutUseCase,
	appuser.NewRefreshTokenUseCase,
	appuser.NewListUsersUseCase,
	appuser.NewAssignGroupUseCase,

	appcatalog.NewCreateBookUseCase,
	appcatalog.NewGetBookUseCase,
	appcatalog.NewListBooksUseCase,
	appcatalog.NewDeleteBookUseCase,
	appcatalog.NewTaxonomyUseCase,
	appcatalog.NewCopyUseCase,

	lending.NewRegisterLoanUseCase,
	lending.NewReturnLoanUseCase,
	lending.NewAssessFineUseCase,
	lending.NewPayFineUseCase,
	lending.NewListLoansUseCase,

	appreservation.NewCreateReservationUseCase,
	appreservation.NewCancelReservationUseCase,
	appreservation.NewListUserReservationsUseCase,
	appreservation.NewJoinWaitlistUseCase,
	appreservation.NewLeaveWaitlistUseCase,
	appreservation.NewListWaitlistUseCase,

	appreport.NewTopUseCase,
)

// interfaceSet 中间件、处理器与Gin引擎
var interfaceSet = wire.NewSet(
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	handler.NewCatalogHandler,
	handler.NewLendingHandler,
	handler.NewReservationHandler,
	handler.NewReportHandler,
	wire.Struct(new(router.Handlers), "*"),
	provideEngine,
)

func initializeApp(cfg *config.Config, log *slog.Logger) (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
	)
	return nil, nil, nil
}

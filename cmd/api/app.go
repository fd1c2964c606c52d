//go:build !wireinject

package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/library/internal/application/catalog"
	"github.com/xiebiao/library/internal/application/lending"
	appreport "github.com/xiebiao/library/internal/application/report"
	appreservation "github.com/xiebiao/library/internal/application/reservation"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/internal/interface/http/router"
)

// initializeApp 按wire.go声明的依赖图手动组装
// 依赖链:Repository ← Service ← UseCase ← Handler ← Engine
func initializeApp(cfg *config.Config, log *slog.Logger) (*gin.Engine, func(), error) {
	db, cleanupDB, err := provideDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	redisClient, cleanupRedis, err := provideRedis(cfg, log)
	if err != nil {
		cleanupDB()
		return nil, nil, err
	}
	notifier, cleanupNotifier, err := provideNotifier(cfg, redisClient, log)
	if err != nil {
		cleanupRedis()
		cleanupDB()
		return nil, nil, err
	}
	policy, err := provideFinePolicy(cfg)
	if err != nil {
		cleanupNotifier()
		cleanupRedis()
		cleanupDB()
		return nil, nil, err
	}

	// 基础设施层
	userRepo := rdb.NewUserRepository(db)
	groupRepo := rdb.NewGroupRepository(db)
	bookRepo := rdb.NewBookRepository(db)
	authorRepo := rdb.NewAuthorRepository(db)
	publisherRepo := rdb.NewPublisherRepository(db)
	categoryRepo := rdb.NewCategoryRepository(db)
	copyRepo := rdb.NewCopyRepository(db)
	loanRepo := rdb.NewLoanRepository(db)
	fineRepo := rdb.NewFineRepository(db)
	reservationRepo := rdb.NewReservationRepository(db)
	waitlistRepo := rdb.NewWaitlistRepository(db)
	reportRepo := rdb.NewReportRepository(db)
	txManager := rdb.NewTxManager(db)
	sessionStore := provideSessionStore(redisClient)
	jwtManager := provideJWTManager(cfg)

	// 领域层
	userService := user.NewService(userRepo)

	// 应用层
	lendingClock := provideLendingClock()

	handlers := router.Handlers{
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userService, log),
			provideLoginUseCase(cfg, userService, jwtManager, sessionStore, log),
			provideLogoutUseCase(sessionStore, log),
			appuser.NewRefreshTokenUseCase(userRepo, jwtManager),
			appuser.NewListUsersUseCase(userRepo),
			appuser.NewAssignGroupUseCase(userRepo, groupRepo, log),
		),
		Catalog: handler.NewCatalogHandler(
			appcatalog.NewCreateBookUseCase(bookRepo, authorRepo, publisherRepo, categoryRepo, log),
			appcatalog.NewGetBookUseCase(bookRepo, copyRepo),
			appcatalog.NewListBooksUseCase(bookRepo),
			appcatalog.NewDeleteBookUseCase(bookRepo, txManager, log),
			appcatalog.NewTaxonomyUseCase(authorRepo, publisherRepo, categoryRepo, txManager, log),
			appcatalog.NewCopyUseCase(bookRepo, copyRepo, log),
		),
		Lending: handler.NewLendingHandler(
			lending.NewRegisterLoanUseCase(userRepo, copyRepo, loanRepo, txManager, policy, lendingClock, log),
			lending.NewReturnLoanUseCase(copyRepo, loanRepo, fineRepo, waitlistRepo, notifier, txManager, policy, lendingClock, log),
			lending.NewAssessFineUseCase(loanRepo, fineRepo, txManager, policy, lendingClock, log),
			lending.NewPayFineUseCase(fineRepo, txManager, lendingClock, log),
			lending.NewListLoansUseCase(loanRepo, policy),
		),
		Reservation: handler.NewReservationHandler(
			appreservation.NewCreateReservationUseCase(userRepo, copyRepo, reservationRepo, provideReservationClock(), log),
			appreservation.NewCancelReservationUseCase(reservationRepo, log),
			appreservation.NewListUserReservationsUseCase(reservationRepo),
			appreservation.NewJoinWaitlistUseCase(userRepo, reservationRepo, waitlistRepo, txManager, log),
			appreservation.NewLeaveWaitlistUseCase(reservationRepo, waitlistRepo, txManager, log),
			appreservation.NewListWaitlistUseCase(reservationRepo, waitlistRepo),
		),
		Report: handler.NewReportHandler(appreport.NewTopUseCase(reportRepo)),
	}

	// 接口层
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)
	engine := provideEngine(cfg, handlers, authMiddleware, log)

	return engine, func() {
		cleanupNotifier()
		cleanupRedis()
		cleanupDB()
	}, nil
}

// Package router 组装Gin引擎:全局中间件、公开路由与按权限保护的业务路由
package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/response"
)

// Handlers 全部HTTP处理器
type Handlers struct {
	User        *handler.UserHandler
	Catalog     *handler.CatalogHandler
	Lending     *handler.LendingHandler
	Reservation *handler.ReservationHandler
	Report      *handler.ReportHandler
}

// Options 引擎选项
type Options struct {
	Mode          string // debug | release | test
	ServiceName   string // Span名前缀所属的服务
	EnableSwagger bool
}

// New 创建Gin引擎并注册全部路由
func New(opts Options, h Handlers, auth *middleware.AuthMiddleware, log *slog.Logger) *gin.Engine {
	switch opts.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(opts.Mode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.Tracing(opts.ServiceName),
		middleware.Logger(log),
		middleware.Metrics(),
	)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if opts.EnableSwagger {
		// http://localhost:8080/swagger/index.html
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")

	// 公开接口
	public := v1.Group("/users")
	{
		public.POST("/register", h.User.Register)
		public.POST("/login", h.User.Login)
		public.POST("/refresh", h.User.Refresh)
	}

	authed := v1.Group("")
	authed.Use(auth.RequireAuth())
	registerUserRoutes(authed, h.User)
	registerCatalogRoutes(authed, h.Catalog)
	registerLendingRoutes(authed, h.Lending)
	registerReservationRoutes(authed, h.Reservation)
	registerReportRoutes(authed, h.Report)

	return r
}

// can 简写
func can(perm middleware.Permission) gin.HandlerFunc {
	return middleware.RequirePermission(perm)
}

func registerUserRoutes(g *gin.RouterGroup, h *handler.UserHandler) {
	users := g.Group("/users")
	users.POST("/logout", h.Logout)
	users.GET("", can(middleware.PermViewUser), h.List)
	users.PUT("/:id/group", can(middleware.PermChangeUser), h.AssignGroup)
}

func registerCatalogRoutes(g *gin.RouterGroup, h *handler.CatalogHandler) {
	books := g.Group("/books")
	{
		books.GET("", can(middleware.PermViewBook), h.ListBooks)
		books.GET("/:id", can(middleware.PermViewBook), h.GetBook)
		books.POST("", can(middleware.PermManageCatalog), h.CreateBook)
		books.DELETE("/:id", can(middleware.PermManageCatalog), h.DeleteBook)

		books.GET("/:id/copies", can(middleware.PermViewBook), h.ListCopies)
		books.POST("/:id/copies", can(middleware.PermManageCatalog), h.RegisterCopy)
	}
	g.PUT("/copies/:id/condition", can(middleware.PermManageCatalog), h.UpdateCopyCondition)

	authors := g.Group("/authors")
	authors.GET("", can(middleware.PermViewBook), h.ListAuthors)
	authors.POST("", can(middleware.PermManageCatalog), h.CreateAuthor)

	publishers := g.Group("/publishers")
	publishers.GET("", can(middleware.PermViewBook), h.ListPublishers)
	publishers.POST("", can(middleware.PermManageCatalog), h.CreatePublisher)
	publishers.DELETE("/:id", can(middleware.PermManageCatalog), h.DeletePublisher)

	categories := g.Group("/categories")
	categories.GET("", can(middleware.PermViewBook), h.ListCategories)
	categories.POST("", can(middleware.PermManageCatalog), h.CreateCategory)
}

func registerLendingRoutes(g *gin.RouterGroup, h *handler.LendingHandler) {
	loans := g.Group("/loans")
	{
		loans.GET("", can(middleware.PermViewLoan), h.ListLoans)
		loans.POST("", can(middleware.PermAddLoan), h.RegisterLoan)
		loans.POST("/:id/return", can(middleware.PermAddLoan), h.ReturnLoan)
		loans.POST("/:id/fine", can(middleware.PermAddLoan), h.AssessFine)
	}
	g.POST("/fines/:id/pay", can(middleware.PermAddLoan), h.PayFine)
}

func registerReservationRoutes(g *gin.RouterGroup, h *handler.ReservationHandler) {
	rs := g.Group("/reservations")
	rs.POST("", can(middleware.PermAddReservation), h.Create)
	rs.GET("/mine", can(middleware.PermAddReservation), h.Mine)
	rs.DELETE("/:id", can(middleware.PermAddReservation), h.Cancel)

	rs.GET("/:id/waitlist", can(middleware.PermViewWaitlist), h.ListWaitlist)
	rs.POST("/:id/waitlist", can(middleware.PermAddReservation), h.JoinWaitlist)
	rs.DELETE("/:id/waitlist", can(middleware.PermAddReservation), h.LeaveWaitlist)
}

func registerReportRoutes(g *gin.RouterGroup, h *handler.ReportHandler) {
	reports := g.Group("/reports", can(middleware.PermViewReport))
	reports.GET("/top-books", h.TopBooks)
	reports.GET("/top-users", h.TopUsers)
}

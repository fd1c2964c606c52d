package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/pkg/jwt"
)

// SessionStore 会话与Token黑名单(Redis实现)
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, fields map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID uint) error
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// LoginUseCase 用户登录用例
// 1. 验证用户名密码
// 2. 生成JWT Token对
// 3. 保存会话到Redis
type LoginUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
	sessions    SessionStore
	sessionTTL  time.Duration // 与Refresh Token有效期一致
	log         *slog.Logger
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessions SessionStore,
	sessionTTL time.Duration,
	log *slog.Logger,
) *LoginUseCase {
	return &LoginUseCase{
		userService: userService,
		jwtManager:  jwtManager,
		sessions:    sessions,
		sessionTTL:  sessionTTL,
		log:         log,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := uc.userService.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	tokenPair, err := uc.jwtManager.GenerateToken(identityOf(u))
	if err != nil {
		return nil, err
	}

	sessionData := map[string]interface{}{
		"user_id":  u.ID,
		"username": u.Username,
		"login_at": time.Now().Unix(),
		"ip":       req.ClientIP,
	}
	// 会话保存失败不影响登录
	if err := uc.sessions.SaveSession(ctx, u.ID, sessionData, uc.sessionTTL); err != nil {
		uc.log.WarnContext(ctx, "保存会话失败", "user_id", u.ID, "error", err)
	}

	uc.log.InfoContext(ctx, "用户登录", "user_id", u.ID, "ip", req.ClientIP)
	return &LoginResponse{
		User:         toUserInfo(u),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	sessions SessionStore
	now      func() time.Time
	log      *slog.Logger
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessions SessionStore, now func() time.Time, log *slog.Logger) *LogoutUseCase {
	return &LogoutUseCase{sessions: sessions, now: now, log: log}
}

// Execute 执行登出
// Access Token以jti加入黑名单,黑名单有效期等于Token剩余有效期
func (uc *LogoutUseCase) Execute(ctx context.Context, claims *jwt.Claims) error {
	if err := uc.sessions.Revoke(ctx, claims.ID, claims.TTL(uc.now())); err != nil {
		return err
	}
	if err := uc.sessions.DeleteSession(ctx, claims.UserID); err != nil {
		return err
	}

	uc.log.InfoContext(ctx, "用户登出", "user_id", claims.UserID)
	return nil
}

// RefreshTokenUseCase 刷新Access Token
// 重新查库签入最新的馆员标记和用户组
type RefreshTokenUseCase struct {
	userRepo   user.Repository
	jwtManager *jwt.Manager
}

func NewRefreshTokenUseCase(userRepo user.Repository, jwtManager *jwt.Manager) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{userRepo: userRepo, jwtManager: jwtManager}
}

func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (string, error) {
	return uc.jwtManager.RefreshAccessToken(refreshToken, func(userID uint) (jwt.Identity, error) {
		u, err := uc.userRepo.FindByID(ctx, userID)
		if err != nil {
			return jwt.Identity{}, err
		}
		return identityOf(u), nil
	})
}

func identityOf(u *user.User) jwt.Identity {
	return jwt.Identity{
		UserID:   u.ID,
		Username: u.Username,
		IsStaff:  u.IsStaff,
		Groups:   u.Groups,
	}
}

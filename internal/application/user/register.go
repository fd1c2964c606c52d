package user

import (
	"context"
	"log/slog"

	"github.com/xiebiao/library/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 用户名格式、密码强度、bcrypt加密都由领域服务负责,这里只做编排
type RegisterUseCase struct {
	userService user.Service
	log         *slog.Logger
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service, log *slog.Logger) *RegisterUseCase {
	return &RegisterUseCase{
		userService: userService,
		log:         log,
	}
}

// Execute 执行注册
// 用户名重复返回ErrUsernameDuplicate(由数据库唯一索引转换)
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	u, err := uc.userService.Register(ctx, req.Username, req.Password, user.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		return nil, err
	}

	uc.log.InfoContext(ctx, "用户注册成功", "user_id", u.ID, "username", u.Username)
	info := toUserInfo(u)
	return &info, nil
}

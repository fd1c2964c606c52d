package user

import (
	"time"

	"github.com/xiebiao/library/internal/domain/user"
)

// =========================================
// 应用层DTO
// =========================================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string
	Password string
	ClientIP string // 由HTTP层填入,写入会话
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // Access Token过期时间(秒)
}

// AssignGroupRequest 分配用户组(替换原有全部用户组)
type AssignGroupRequest struct {
	UserID uint
	Group  string
}

// ListUsersRequest 用户列表
type ListUsersRequest struct {
	Page     int
	PageSize int
}

// ListUsersResponse 用户列表
type ListUsersResponse struct {
	List     []UserInfo `json:"list"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// UserInfo 用户信息
// 不返回密码字段
type UserInfo struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	IsStaff   bool      `json:"is_staff"`
	Groups    []string  `json:"groups"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserInfo(u *user.User) UserInfo {
	groups := u.Groups
	if groups == nil {
		groups = []string{}
	}
	return UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName(),
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		IsStaff:   u.IsStaff,
		Groups:    groups,
		CreatedAt: u.CreatedAt,
	}
}

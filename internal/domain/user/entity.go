package user

import (
	"time"
)

// User 用户实体（聚合根）
// DDD设计说明：
// 1. 用户既可以是借阅人，也可以是馆员（IsStaff）
// 2. 密码已加密存储（bcrypt），不应该有GetPassword()等方法暴露明文
// 3. Groups是角色成员关系（librarian、member等），用于权限判断，核心业务不读取
type User struct {
	ID        uint
	Username  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	IsStaff   bool
	Password  string // bcrypt哈希值
	Groups    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile 注册时填写的个人信息
type Profile struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(username, hashedPassword string, profile Profile) *User {
	now := time.Now()
	return &User{
		Username:  username,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Email:     profile.Email,
		Phone:     profile.Phone,
		Address:   profile.Address,
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FullName 姓名
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// InGroup 是否属于指定用户组
func (u *User) InGroup(name string) bool {
	for _, g := range u.Groups {
		if g == name {
			return true
		}
	}
	return false
}

// Group 用户组（角色）
type Group struct {
	ID   uint
	Name string
}

// 内置用户组
const (
	GroupLibrarian = "librarian" // 馆员：管理馆藏、借还
	GroupMember    = "member"    // 读者：查询、预约
)

// DefaultGroups 初始化数据库时创建的用户组
var DefaultGroups = []string{GroupLibrarian, GroupMember}

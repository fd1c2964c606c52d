package middleware

import (
	"slices"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/pkg/jwt"
)

// Permission 接口权限
type Permission string

const (
	PermViewUser       Permission = "user.view"
	PermChangeUser     Permission = "user.change"
	PermViewBook       Permission = "book.view"
	PermManageCatalog  Permission = "catalog.manage" // 图书、副本、作者、出版社、分类的增删改
	PermAddLoan        Permission = "loan.add"       // 借出、归还、罚款
	PermViewLoan       Permission = "loan.view"
	PermAddReservation Permission = "reservation.add"
	PermViewWaitlist   Permission = "waitlist.view"
	PermViewReport     Permission = "report.view"
)

// groupPermissions 用户组 → 权限
// 馆员(IsStaff)拥有全部权限,不走此表
var groupPermissions = map[string][]Permission{
	user.GroupLibrarian: {
		PermViewUser, PermViewBook, PermManageCatalog, PermAddLoan, PermViewLoan,
		PermAddReservation, PermViewWaitlist, PermViewReport,
	},
	user.GroupMember: {
		PermViewBook, PermViewLoan, PermAddReservation, PermViewWaitlist,
	},
}

// Principal 当前请求的调用者
// 由JWT Claims构造,只在HTTP层用于鉴权,不传入核心用例
type Principal struct {
	UserID   uint
	Username string
	IsStaff  bool
	Groups   []string
}

// PrincipalFromClaims 从Claims构造Principal
func PrincipalFromClaims(claims *jwt.Claims) Principal {
	return Principal{
		UserID:   claims.UserID,
		Username: claims.Username,
		IsStaff:  claims.IsStaff,
		Groups:   claims.Groups,
	}
}

// Can 是否拥有权限
func (p Principal) Can(perm Permission) bool {
	if p.IsStaff {
		return true
	}
	for _, g := range p.Groups {
		if slices.Contains(groupPermissions[g], perm) {
			return true
		}
	}
	return false
}

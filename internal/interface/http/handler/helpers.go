package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// bindJSON 绑定并校验请求体,失败时写入40900响应
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return false
	}
	return true
}

// bindOptionalJSON 请求体可以为空
func bindOptionalJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return false
	}
	return true
}

// bindQuery 绑定query string
func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return false
	}
	return true
}

// pathID 解析路径中的ID参数
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的"+name)
		return 0, false
	}
	return uint(id), true
}

// actingUserID 请求未指定用户时使用当前登录用户
// 代他人操作需要查看用户的权限(馆员),否则写入403响应
func actingUserID(c *gin.Context, requested uint) (uint, bool) {
	p, _ := middleware.GetPrincipal(c)
	if requested == 0 || requested == p.UserID {
		return p.UserID, true
	}
	if !p.Can(middleware.PermViewUser) {
		response.Error(c, apperrors.ErrForbidden)
		return 0, false
	}
	return requested, true
}

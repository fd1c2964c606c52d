package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// UserHandler 用户HTTP处理器
// Handler只负责解析请求、调用应用层、返回响应,不包含业务逻辑
type UserHandler struct {
	registerUseCase    *appuser.RegisterUseCase
	loginUseCase       *appuser.LoginUseCase
	logoutUseCase      *appuser.LogoutUseCase
	refreshUseCase     *appuser.RefreshTokenUseCase
	listUsersUseCase   *appuser.ListUsersUseCase
	assignGroupUseCase *appuser.AssignGroupUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
	refreshUseCase *appuser.RefreshTokenUseCase,
	listUsersUseCase *appuser.ListUsersUseCase,
	assignGroupUseCase *appuser.AssignGroupUseCase,
) *UserHandler {
	return &UserHandler{
		registerUseCase:    registerUseCase,
		loginUseCase:       loginUseCase,
		logoutUseCase:      logoutUseCase,
		refreshUseCase:     refreshUseCase,
		listUsersUseCase:   listUsersUseCase,
		assignGroupUseCase: assignGroupUseCase,
	}
}

// Register 用户注册
// @Summary      用户注册
// @Description  创建新的借阅人账号
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      201 {object} response.Response{data=appuser.UserInfo} "注册成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "用户名已存在"
// @Router       /api/v1/users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Login 用户登录
// @Summary      用户登录
// @Description  验证用户名密码，返回JWT Token
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=appuser.LoginResponse} "登录成功"
// @Failure      401 {object} response.Response "用户名或密码错误"
// @Router       /api/v1/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appuser.LoginRequest{
		Username: req.Username,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Refresh 用Refresh Token换取新的Access Token
// @Summary      刷新Token
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshTokenRequest true "Refresh Token"
// @Success      200 {object} response.Response{data=dto.RefreshTokenResponse}
// @Failure      401 {object} response.Response "Token无效或过期"
// @Router       /api/v1/users/refresh [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.refreshUseCase.Execute(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.RefreshTokenResponse{AccessToken: token})
}

// Logout 登出,当前Access Token加入黑名单
// @Summary      用户登出
// @Tags         用户
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/users/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.logoutUseCase.Execute(c.Request.Context(), middleware.MustGetClaims(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// List 用户列表
// @Summary      用户列表
// @Tags         用户
// @Security     BearerAuth
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=appuser.ListUsersResponse}
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}

	result, err := h.listUsersUseCase.Execute(c.Request.Context(), appuser.ListUsersRequest{
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// AssignGroup 分配用户组(替换原有用户组)
// @Summary      分配用户组
// @Tags         用户
// @Security     BearerAuth
// @Accept       json
// @Param        id      path int true "用户ID"
// @Param        request body dto.AssignGroupRequest true "用户组"
// @Success      200 {object} response.Response{data=appuser.UserInfo}
// @Failure      404 {object} response.Response "用户或用户组不存在"
// @Router       /api/v1/users/{id}/group [put]
func (h *UserHandler) AssignGroup(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.assignGroupUseCase.Execute(c.Request.Context(), appuser.AssignGroupRequest{
		UserID: id,
		Group:  req.Group,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

package user

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 用户领域错误定义
var (
	ErrUserNotFound      = apperrors.New(apperrors.ErrCodeUserNotFound, "用户不存在")
	ErrUsernameDuplicate = apperrors.New(apperrors.ErrCodeUsernameDuplicate, "用户名已存在")
	ErrGroupNotFound     = apperrors.New(apperrors.ErrCodeGroupNotFound, "用户组不存在")
	ErrWeakPassword      = apperrors.New(apperrors.ErrCodeWeakPassword, "密码强度不足，需8-20位且包含字母和数字")
	ErrInvalidUsername   = apperrors.New(apperrors.ErrCodeInvalidParams, "用户名需为1-150位字母、数字或@.+-_")
	ErrInvalidEmail      = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
)

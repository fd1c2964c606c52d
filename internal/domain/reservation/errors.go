package reservation

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 预约与候补领域错误定义
var (
	// ErrReservationNotFound 预约不存在
	ErrReservationNotFound = apperrors.New(apperrors.ErrCodeReservationNotFound, "预约不存在")

	// ErrReservationInactive 预约已失效
	ErrReservationInactive = apperrors.New(apperrors.ErrCodeReservationInactive, "预约已失效")

	// ErrDuplicateEntry 用户已在该预约的候补名单中
	ErrDuplicateEntry = apperrors.New(apperrors.ErrCodeDuplicateEntry, "已在候补名单中")

	// ErrEntryNotFound 候补条目不存在
	ErrEntryNotFound = apperrors.New(apperrors.ErrCodeNotFound, "不在候补名单中")
)

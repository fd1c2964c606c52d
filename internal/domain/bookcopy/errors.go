package bookcopy

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 副本领域错误定义
var (
	// ErrCopyNotFound 副本不存在
	ErrCopyNotFound = apperrors.New(apperrors.ErrCodeCopyNotFound, "馆藏副本不存在")

	// ErrBarcodeDuplicate 条码已存在
	ErrBarcodeDuplicate = apperrors.New(apperrors.ErrCodeBarcodeDuplicate, "条码已存在")

	// ErrCopyUnavailable 副本当前不可借(已借出)
	ErrCopyUnavailable = apperrors.New(apperrors.ErrCodeCopyUnavailable, "副本当前不可借")

	// ErrCopyNotLoaned 副本未借出,不能归还
	ErrCopyNotLoaned = apperrors.New(apperrors.ErrCodeCopyNotLoaned, "副本未借出")

	ErrInvalidBarcode   = apperrors.New(apperrors.ErrCodeInvalidParams, "条码不能为空")
	ErrInvalidFormat    = apperrors.New(apperrors.ErrCodeInvalidParams, "副本形态必须为physical或digital")
	ErrInvalidCondition = apperrors.New(apperrors.ErrCodeInvalidParams, "副本品相必须为new、good或damaged")
)

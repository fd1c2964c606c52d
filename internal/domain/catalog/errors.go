package catalog

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 馆藏目录领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "ISBN号已存在")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")

	// ErrInvalidTitle 书名为空
	ErrInvalidTitle = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能为空")

	ErrAuthorNotFound    = apperrors.New(apperrors.ErrCodeNotFound, "作者不存在")
	ErrPublisherNotFound = apperrors.New(apperrors.ErrCodeNotFound, "出版社不存在")
	ErrCategoryNotFound  = apperrors.New(apperrors.ErrCodeNotFound, "分类不存在")

	// ErrInvalidName 名称为空
	ErrInvalidName = apperrors.New(apperrors.ErrCodeInvalidParams, "名称不能为空")
)

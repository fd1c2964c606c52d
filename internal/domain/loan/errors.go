package loan

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 借阅领域错误定义
var (
	// ErrLoanNotFound 借阅记录不存在
	ErrLoanNotFound = apperrors.New(apperrors.ErrCodeLoanNotFound, "借阅记录不存在")

	// ErrAlreadyReturned 借阅已归还
	ErrAlreadyReturned = apperrors.New(apperrors.ErrCodeAlreadyReturned, "该借阅已归还")

	// ErrFineNotFound 罚款不存在
	ErrFineNotFound = apperrors.New(apperrors.ErrCodeFineNotFound, "罚款记录不存在")

	// ErrFineAlreadyPaid 罚款已缴纳
	ErrFineAlreadyPaid = apperrors.New(apperrors.ErrCodeFineAlreadyPaid, "罚款已缴纳")

	// ErrFineDuplicate 该借阅已有罚款记录(loan_id唯一)
	ErrFineDuplicate = apperrors.New(apperrors.ErrCodeDuplicateKey, "该借阅已有罚款记录")

	// ErrInvalidAmount 罚款金额为负
	ErrInvalidAmount = apperrors.New(apperrors.ErrCodeInvalidParams, "罚款金额不能为负数")
)

package bookcopy

import (
	"time"
)

// Format 副本形态
type Format string

const (
	FormatPhysical Format = "physical" // 纸质
	FormatDigital  Format = "digital"  // 电子
)

// Valid 是否为合法形态
func (f Format) Valid() bool {
	return f == FormatPhysical || f == FormatDigital
}

// Condition 副本品相
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionGood    Condition = "good"
	ConditionDamaged Condition = "damaged"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionGood, ConditionDamaged:
		return true
	}
	return false
}

// Status 副本借阅状态
// 状态机:Available → Loaned(借出) → Available(归还),不允许其他转换
type Status string

const (
	StatusAvailable Status = "available" // 可借
	StatusLoaned    Status = "loaned"    // 已借出
)

// String 实现Stringer接口(方便日志输出)
func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "可借"
	case StatusLoaned:
		return "已借出"
	default:
		return "未知状态"
	}
}

// Copy 馆藏副本
// 不变量:Status为Loaned当且仅当存在引用它的未归还借阅记录
type Copy struct {
	ID        uint
	BookID    uint   // 所属图书
	Barcode   string // 条码(唯一)
	Location  string // 馆藏位置
	Format    Format
	Condition Condition
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCopy 登记新副本(初始状态为可借)
func NewCopy(bookID uint, barcode, location string, format Format, condition Condition) (*Copy, error) {
	if barcode == "" {
		return nil, ErrInvalidBarcode
	}
	if !format.Valid() {
		return nil, ErrInvalidFormat
	}
	if !condition.Valid() {
		return nil, ErrInvalidCondition
	}

	now := time.Now()
	return &Copy{
		BookID:    bookID,
		Barcode:   barcode,
		Location:  location,
		Format:    format,
		Condition: condition,
		Status:    StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsAvailable 是否可借
func (c *Copy) IsAvailable() bool {
	return c.Status == StatusAvailable
}

// MarkLoaned 借出(领域行为)
func (c *Copy) MarkLoaned() error {
	if c.Status != StatusAvailable {
		return ErrCopyUnavailable
	}
	c.Status = StatusLoaned
	c.UpdatedAt = time.Now()
	return nil
}

// MarkAvailable 归还(领域行为)
func (c *Copy) MarkAvailable() error {
	if c.Status != StatusLoaned {
		return ErrCopyNotLoaned
	}
	c.Status = StatusAvailable
	c.UpdatedAt = time.Now()
	return nil
}

// UpdateCondition 更新品相
func (c *Copy) UpdateCondition(condition Condition) error {
	if !condition.Valid() {
		return ErrInvalidCondition
	}
	c.Condition = condition
	c.UpdatedAt = time.Now()
	return nil
}

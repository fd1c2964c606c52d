package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// 默认借阅规则:借期14天,逾期每天0.50
const DefaultAllowanceDays = 14

var DefaultDailyRate = decimal.RequireFromString("0.50")

// FinePolicy 逾期罚款规则
// fine = max(0, 借阅天数 - 借期) × 每日罚金,保留2位小数
// 天数按自然日计算:第14天归还不罚款,第20天归还罚款(20-14)×0.50=3.00
type FinePolicy struct {
	AllowanceDays int
	DailyRate     decimal.Decimal
}

// DefaultFinePolicy 默认罚款规则
func DefaultFinePolicy() FinePolicy {
	return FinePolicy{
		AllowanceDays: DefaultAllowanceDays,
		DailyRate:     DefaultDailyRate,
	}
}

// NewFinePolicy 创建罚款规则
func NewFinePolicy(allowanceDays int, dailyRate decimal.Decimal) FinePolicy {
	return FinePolicy{
		AllowanceDays: allowanceDays,
		DailyRate:     dailyRate,
	}
}

// OverdueDays 逾期天数(未逾期为0)
func (p FinePolicy) OverdueDays(loanDate, effective time.Time) int {
	overdue := calendarDays(loanDate, effective) - p.AllowanceDays
	if overdue < 0 {
		return 0
	}
	return overdue
}

// Calculate 计算罚款金额
func (p FinePolicy) Calculate(loanDate, effective time.Time) decimal.Decimal {
	overdue := p.OverdueDays(loanDate, effective)
	if overdue == 0 {
		return decimal.Zero
	}
	return p.DailyRate.Mul(decimal.NewFromInt(int64(overdue))).Round(2)
}

// Assess 按借阅记录计算罚款(未归还按now,已归还按归还时间)
func (p FinePolicy) Assess(l *Loan, now time.Time) decimal.Decimal {
	return p.Calculate(l.LoanDate, l.EffectiveDate(now))
}

// calendarDays 两个时间之间相差的自然日数
// 先统一到from的时区再取日期,避免夏令时导致的23/25小时误差
func calendarDays(from, to time.Time) int {
	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.In(from.Location()).Date()
	start := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	end := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

package loan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinePolicy_Calculate(t *testing.T) {
	policy := DefaultFinePolicy()
	day0 := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		days int
		want string
	}{
		{"same day", 0, "0.00"},
		{"day 13", 13, "0.00"},
		{"day 14 boundary", 14, "0.00"},
		{"day 15", 15, "0.50"},
		{"day 20", 20, "3.00"},
		{"day 45", 45, "15.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Calculate(day0, day0.AddDate(0, 0, tt.days))
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestFinePolicy_CalendarDays(t *testing.T) {
	policy := DefaultFinePolicy()

	// 借出于深夜,第15天清晨归还,按自然日算逾期1天
	loanDate := time.Date(2024, 3, 1, 23, 50, 0, 0, time.UTC)
	returned := time.Date(2024, 3, 16, 0, 10, 0, 0, time.UTC)
	assert.Equal(t, 1, policy.OverdueDays(loanDate, returned))

	// 不同时区表示的同一时刻
	shanghai := time.FixedZone("CST", 8*3600)
	assert.Equal(t, 15, calendarDays(loanDate, returned.In(shanghai)))

	// 归还时间早于借出时间(时钟回拨)不产生负罚款
	assert.True(t, policy.Calculate(loanDate, loanDate.Add(-48*time.Hour)).IsZero())
}

func TestFinePolicy_CustomRate(t *testing.T) {
	policy := NewFinePolicy(7, decimal.RequireFromString("1.25"))
	day0 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "3.75", policy.Calculate(day0, day0.AddDate(0, 0, 10)).StringFixed(2))
}

func TestFinePolicy_Assess(t *testing.T) {
	policy := DefaultFinePolicy()
	day0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	now := day0.AddDate(0, 0, 30)

	open := NewLoan(1, 1, day0)
	assert.Equal(t, "8.00", policy.Assess(open, now).StringFixed(2))

	closed := NewLoan(1, 1, day0)
	require.NoError(t, closed.Return(day0.AddDate(0, 0, 20)))
	assert.Equal(t, "3.00", policy.Assess(closed, now).StringFixed(2))
}

// Package rdbtest 为仓储与用例测试提供临时SQLite数据库和常用测试数据
package rdbtest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
)

// NewDB 每个测试一个独立的临时SQLite文件,测试结束自动关闭
// 连接池限制为1:并发事务在连接上排队,效果等同于行锁串行化
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "library.db")
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", path)

	db, err := rdb.Open(sqlite.Open(dsn), logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, rdb.AutoMigrate(db))
	return db
}

// SeedUser 直接写入一个用户(跳过bcrypt,测试更快)
func SeedUser(t testing.TB, db *gorm.DB, username string) uint {
	t.Helper()
	m := &rdb.UserModel{Username: username, Password: "x"}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

// SeedBook 写入一本图书
func SeedBook(t testing.TB, db *gorm.DB, title, isbn string) uint {
	t.Helper()
	m := &rdb.BookModel{Title: title, ISBN: isbn}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

// SeedCopy 写入一个可借副本
func SeedCopy(t testing.TB, db *gorm.DB, bookID uint, barcode string) uint {
	t.Helper()
	m := &rdb.CopyModel{
		BookID:    bookID,
		Barcode:   barcode,
		Format:    "physical",
		Condition: "good",
		Status:    "available",
	}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

// SeedLoan 写入一条借阅记录并把副本置为已借出(保持副本与借阅一致)
func SeedLoan(t testing.TB, db *gorm.DB, userID, copyID uint, loanDate time.Time) uint {
	t.Helper()
	m := &rdb.LoanModel{UserID: userID, CopyID: copyID, LoanDate: loanDate}
	require.NoError(t, db.Create(m).Error)
	require.NoError(t, db.Model(&rdb.CopyModel{}).Where("id = ?", copyID).Update("status", "loaned").Error)
	return m.ID
}

// SeedReturnedLoan 写入一条已归还的借阅记录(用于报表统计)
func SeedReturnedLoan(t testing.TB, db *gorm.DB, userID, copyID uint, loanDate time.Time) uint {
	t.Helper()
	returned := loanDate.Add(24 * time.Hour)
	m := &rdb.LoanModel{UserID: userID, CopyID: copyID, LoanDate: loanDate, ReturnDate: &returned, Returned: true}
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

// CopyStatus 读取副本当前状态
func CopyStatus(t testing.TB, db *gorm.DB, copyID uint) string {
	t.Helper()
	var m rdb.CopyModel
	require.NoError(t, db.WithContext(context.Background()).First(&m, copyID).Error)
	return m.Status
}

// OpenLoanCount 统计副本上未归还的借阅数
func OpenLoanCount(t testing.TB, db *gorm.DB, copyID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&rdb.LoanModel{}).Where("copy_id = ? AND returned = ?", copyID, false).Count(&n).Error)
	return n
}

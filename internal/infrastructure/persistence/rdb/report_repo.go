package rdb

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/report"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// reportRepository 报表查询
// 聚合SQL用goqu显式构造(LEFT JOIN + GROUP BY + ORDER BY + LIMIT),再交给GORM执行
type reportRepository struct {
	db      *gorm.DB
	dialect goqu.DialectWrapper
}

// NewReportRepository 创建报表仓储,按GORM方言选择goqu方言
func NewReportRepository(db *gorm.DB) report.Repository {
	return &reportRepository{
		db:      db,
		dialect: goqu.Dialect(goquDialect(db.Dialector.Name())),
	}
}

func goquDialect(gormDialect string) string {
	switch gormDialect {
	case "postgres":
		return "postgres"
	case "sqlite":
		return "sqlite3"
	default:
		return "mysql"
	}
}

// topBooksSQL 借阅次数最多的图书
//
//	SELECT b.id AS book_id, b.title, b.isbn, COUNT(l.id) AS loan_count
//	FROM books b
//	LEFT JOIN copies c ON c.book_id = b.id
//	LEFT JOIN loans l ON l.copy_id = c.id
//	GROUP BY b.id, b.title, b.isbn
//	ORDER BY loan_count DESC, b.id ASC
//	LIMIT ?
func (r *reportRepository) topBooksSQL(limit int) (string, []interface{}, error) {
	return r.dialect.
		From(goqu.T("books").As("b")).
		LeftJoin(goqu.T("copies").As("c"), goqu.On(goqu.I("c.book_id").Eq(goqu.I("b.id")))).
		LeftJoin(goqu.T("loans").As("l"), goqu.On(goqu.I("l.copy_id").Eq(goqu.I("c.id")))).
		Select(
			goqu.I("b.id").As("book_id"),
			goqu.I("b.title").As("title"),
			goqu.I("b.isbn").As("isbn"),
			goqu.COUNT(goqu.I("l.id")).As("loan_count"),
		).
		GroupBy(goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.isbn")).
		Order(goqu.C("loan_count").Desc(), goqu.I("b.id").Asc()).
		Limit(uint(limit)).
		ToSQL()
}

// topUsersSQL 借阅次数最多的用户
func (r *reportRepository) topUsersSQL(limit int) (string, []interface{}, error) {
	return r.dialect.
		From(goqu.T("users").As("u")).
		LeftJoin(goqu.T("loans").As("l"), goqu.On(goqu.I("l.user_id").Eq(goqu.I("u.id")))).
		Select(
			goqu.I("u.id").As("user_id"),
			goqu.I("u.username").As("username"),
			goqu.COUNT(goqu.I("l.id")).As("loan_count"),
		).
		GroupBy(goqu.I("u.id"), goqu.I("u.username")).
		Order(goqu.C("loan_count").Desc(), goqu.I("u.id").Asc()).
		Limit(uint(limit)).
		ToSQL()
}

func (r *reportRepository) TopBooks(ctx context.Context, limit int) ([]report.BookLoanCount, error) {
	query, args, err := r.topBooksSQL(limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "构造图书排行SQL失败")
	}

	var rows []report.BookLoanCount
	if err := dbFromContext(ctx, r.db).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询图书排行失败")
	}
	return rows, nil
}

func (r *reportRepository) TopUsers(ctx context.Context, limit int) ([]report.UserLoanCount, error) {
	query, args, err := r.topUsersSQL(limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "构造用户排行SQL失败")
	}

	var rows []report.UserLoanCount
	if err := dbFromContext(ctx, r.db).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询用户排行失败")
	}
	return rows, nil
}

package lending

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/bookcopy"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb/rdbtest"
)

var loanDay = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	db *gorm.DB

	mu  sync.Mutex
	now time.Time

	notified  []reservation.CopyAvailable
	notifyErr error

	register *RegisterLoanUseCase
	ret      *ReturnLoanUseCase
	assess   *AssessFineUseCase
	pay      *PayFineUseCase
	list     *ListLoansUseCase
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) setDay(day int) {
	f.mu.Lock()
	f.now = loanDay.AddDate(0, 0, day)
	f.mu.Unlock()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := rdbtest.NewDB(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{db: db, now: loanDay}
	notifier := reservation.NotifierFunc(func(_ context.Context, n reservation.CopyAvailable) error {
		if f.notifyErr != nil {
			return f.notifyErr
		}
		f.notified = append(f.notified, n)
		return nil
	})

	tx := rdb.NewTxManager(db)
	policy := loan.DefaultFinePolicy()
	users := rdb.NewUserRepository(db)
	copies := rdb.NewCopyRepository(db)
	loans := rdb.NewLoanRepository(db)
	fines := rdb.NewFineRepository(db)
	waitlist := rdb.NewWaitlistRepository(db)

	f.register = NewRegisterLoanUseCase(users, copies, loans, tx, policy, f.clock, log)
	f.ret = NewReturnLoanUseCase(copies, loans, fines, waitlist, notifier, tx, policy, f.clock, log)
	f.assess = NewAssessFineUseCase(loans, fines, tx, policy, f.clock, log)
	f.pay = NewPayFineUseCase(fines, tx, f.clock, log)
	f.list = NewListLoansUseCase(loans, policy)
	return f
}

// seed 一个用户 + 一本书的一个副本
func (f *fixture) seed(t *testing.T) (userID, copyID uint) {
	t.Helper()
	userID = rdbtest.SeedUser(t, f.db, "alice")
	copyID = rdbtest.SeedCopy(t, f.db, rdbtest.SeedBook(t, f.db, "Dune", "9780441013593"), "BC-001")
	return userID, copyID
}

func TestRegisterLoan(t *testing.T) {
	f := newFixture(t)
	uid, cid := f.seed(t)
	ctx := context.Background()

	resp, err := f.register.Execute(ctx, RegisterLoanRequest{UserID: uid, CopyID: cid})
	require.NoError(t, err)
	assert.False(t, resp.Returned)
	assert.True(t, resp.LoanDate.Equal(loanDay))
	assert.True(t, resp.DueDate.Equal(loanDay.AddDate(0, 0, 14)))

	assert.Equal(t, "loaned", rdbtest.CopyStatus(t, f.db, cid))
	assert.Equal(t, int64(1), rdbtest.OpenLoanCount(t, f.db, cid))

	t.Run("copy already loaned", func(t *testing.T) {
		other := rdbtest.SeedUser(t, f.db, "bob")
		_, err := f.register.Execute(ctx, RegisterLoanRequest{UserID: other, CopyID: cid})
		assert.ErrorIs(t, err, bookcopy.ErrCopyUnavailable)
		assert.Equal(t, int64(1), rdbtest.OpenLoanCount(t, f.db, cid))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.register.Execute(ctx, RegisterLoanRequest{UserID: 999, CopyID: cid})
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("unknown copy", func(t *testing.T) {
		_, err := f.register.Execute(ctx, RegisterLoanRequest{UserID: uid, CopyID: 999})
		assert.ErrorIs(t, err, bookcopy.ErrCopyNotFound)
	})
}

func TestRegisterLoan_ConcurrentOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	_, cid := f.seed(t)
	alice := rdbtest.SeedUser(t, f.db, "alice2")
	bob := rdbtest.SeedUser(t, f.db, "bob")

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i, uid := range []uint{alice, bob} {
		wg.Add(1)
		go func(i int, uid uint) {
			defer wg.Done()
			_, errs[i] = f.register.Execute(context.Background(), RegisterLoanRequest{UserID: uid, CopyID: cid})
		}(i, uid)
	}
	wg.Wait()

	var wins, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, bookcopy.ErrCopyUnavailable):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, unavailable)
	assert.Equal(t, int64(1), rdbtest.OpenLoanCount(t, f.db, cid))
	assert.Equal(t, "loaned", rdbtest.CopyStatus(t, f.db, cid))
}

func TestReturnLoan_FineBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		day      int
		wantFine string // 空表示没有罚款
	}{
		{name: "same day", day: 0},
		{name: "last allowed day", day: 14},
		{name: "one day late", day: 15, wantFine: "0.50"},
		{name: "six days late", day: 20, wantFine: "3.00"},
		{name: "long overdue", day: 45, wantFine: "15.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			uid, cid := f.seed(t)
			ctx := context.Background()

			l, err := f.register.Execute(ctx, RegisterLoanRequest{UserID: uid, CopyID: cid})
			require.NoError(t, err)

			f.setDay(tt.day)
			resp, err := f.ret.Execute(ctx, ReturnLoanRequest{LoanID: l.ID})
			require.NoError(t, err)

			assert.True(t, resp.Loan.Returned)
			require.NotNil(t, resp.Loan.ReturnDate)
			assert.Equal(t, "available", rdbtest.CopyStatus(t, f.db, cid))
			assert.Zero(t, rdbtest.OpenLoanCount(t, f.db, cid))

			if tt.wantFine == "" {
				assert.Nil(t, resp.Fine)
				var n int64
				require.NoError(t, f.db.Model(&rdb.FineModel{}).Count(&n).Error)
				assert.Zero(t, n)
				return
			}
			require.NotNil(t, resp.Fine)
			assert.Equal(t, tt.wantFine, resp.Fine.Amount)
			assert.Equal(t, tt.day-14, resp.Fine.OverdueDays)
			assert.Equal(t, "created", resp.Fine.Action)
		})
	}
}

func TestReturnLoan_Twice(t *testing.T) {
	f := newFixture(t)
	uid, cid := f.seed(t)
	ctx := context.Background()

	l, err := f.register.Execute(ctx, RegisterLoanRequest{UserID: uid, CopyID: cid})
	require.NoError(t, err)
	_, err = f.ret.Execute(ctx, ReturnLoanRequest{LoanID: l.ID})
	require.NoError(t, err)

	_, err = f.ret.Execute(ctx, ReturnLoanRequest{LoanID: l.ID})
	assert.ErrorIs(t, err, loan.ErrAlreadyReturned)

	_, err = f.ret.Execute(ctx, ReturnLoanRequest{LoanID: 999})
	assert.ErrorIs(t, err, loan.ErrLoanNotFound)
}

func TestReturnLoan_NotifiesWaitlistHead(t *testing.T) {
	f := newFixture(t)
	uid, cid := f.seed(t)
	ctx := context.Background()

	bob := rdbtest.SeedUser(t, f.db, "bob")
	carol := rdbtest.SeedUser(t, f.db, "carol")

	l, err := f.register.Execute(ctx, RegisterLoanRequest{UserID: uid, CopyID: cid})
	require.NoError(t, err)

	res := reservation.NewReservation(bob, cid, loanDay)
	require.NoError(t, rdb.NewReservationRepository(f.db).Create(ctx, res))

	waitlist := rdb.NewWaitlistRepository(f.db)
	require.NoError(t, waitlist.Create(ctx, &reservation.WaitlistEntry{ReservationID: res.ID, UserID: bob, Position: 1}))
	require.NoError(t, waitlist.Create(ctx, &reservation.WaitlistEntry{ReservationID: res.ID, UserID: carol, Position: 2}))

	f.setDay(3)
	resp, err := f.ret.Execute(ctx, ReturnLoanRequest{LoanID: l.ID})
	require.NoError(t, err)

	require.NotNil(t, resp.NotifiedUserID)
	assert.Equal(t, bob, *resp.NotifiedUserID)
	require.Len(t, f.notified, 1)
	assert.Equal(t, reservation.CopyAvailable{
		CopyID:        cid,
		ReservationID: res.ID,
		UserID:        bob,
		Position:      1,
		ReturnedLoan:  l.ID,
		OccurredAt:    loanDay.AddDate(0, 0, 3),
	}, f.notified[0])

	// 通知不会自动借出
	assert.Equal(t, "available", rdbtest.CopyStatus(t, f.db, cid))
}

func TestReturnLoan_NotifyFailureDoesNotFailReturn(t *testing.T) {
	f := newFixture(t)
	uid, cid := f.seed(t)
	ctx := context.Background()
	f.notifyErr = errors.New("broker down")

	res := reservation.NewReservation(uid, cid, loanDay)
	require.NoError(t, rdb.NewReservationRepository(f.db).Create(ctx, res))
	require.NoError(t, rdb.NewWaitlistRepository(f.db).Create(ctx, &reservation.WaitlistEntry{ReservationID: res.ID, UserID: uid, Position: 1}))

	l, err := f.register.Execute(ctx, RegisterLoanRequest{UserID: uid, CopyID: cid})
	require.NoError(t, err)

	resp, err := f.ret.Execute(ctx, ReturnLoanRequest{LoanID: l.ID})
	require.NoError(t, err)
	assert.Nil(t, resp.NotifiedUserID)
	assert.Equal(t, "available", rdbtest.CopyStatus(t, f.db, cid))
}

func TestAssessFine_Idempotent(t *testing.T) {
	f := newFixture(t)
	uid, cid := f.seed(t)
	ctx := context.Background()

	l, err := f.register.Execute(ctx, RegisterLoanRequest{UserID: uid, CopyID: cid})
	require.NoError(t, err)

	// 未逾期
	f.setDay(10)
	fine, err := f.assess.Execute(ctx, AssessFineRequest{LoanID: l.ID})
	require.NoError(t, err)
	assert.Equal(t, "0.00", fine.Amount)
	assert.Equal(t, "none", fine.Action)
	assert.Zero(t, fine.ID)

	f.setDay(20)
	fine, err = f.assess.Execute(ctx, AssessFineRequest{LoanID: l.ID})
	require.NoError(t, err)
	assert.Equal(t, "3.00", fine.Amount)
	assert.Equal(t, "created", fine.Action)
	fineID := fine.ID

	fine, err = f.assess.Execute(ctx, AssessFineRequest{LoanID: l.ID})
	require.NoError(t, err)
	assert.Equal(t, "unchanged", fine.Action)
	assert.Equal(t, fineID, fine.ID)

	// 逾期增加,未缴罚款随之更新
	f.setDay(22)
	fine, err = f.assess.Execute(ctx, AssessFineRequest{LoanID: l.ID})
	require.NoError(t, err)
	assert.Equal(t, "4.00", fine.Amount)
	assert.Equal(t, "updated", fine.Action)
	assert.Equal(t, fineID, fine.ID)

	var n int64
	require.NoError(t, f.db.Model(&rdb.FineModel{}).Where("loan_id = ?", l.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	// 已缴纳后不再变更
	paid, err := f.pay.Execute(ctx, PayFineRequest{FineID: fineID})
	require.NoError(t, err)
	assert.True(t, paid.Paid)

	f.setDay(30)
	fine, err = f.assess.Execute(ctx, AssessFineRequest{LoanID: l.ID})
	require.NoError(t, err)
	assert.Equal(t, "4.00", fine.Amount)
	assert.Equal(t, "unchanged", fine.Action)
	assert.True(t, fine.Paid)
}

func TestAssessFine_ReturnedLoanUsesReturnDate(t *testing.T) {
	f := newFixture(t)
	uid, cid := f.seed(t)
	ctx := context.Background()

	l, err := f.register.Execute(ctx, RegisterLoanRequest{UserID: uid, CopyID: cid})
	require.NoError(t, err)

	f.setDay(20)
	_, err = f.ret.Execute(ctx, ReturnLoanRequest{LoanID: l.ID})
	require.NoError(t, err)

	f.setDay(60)
	fine, err := f.assess.Execute(ctx, AssessFineRequest{LoanID: l.ID})
	require.NoError(t, err)
	assert.Equal(t, "3.00", fine.Amount)
	assert.Equal(t, 6, fine.OverdueDays)
	assert.Equal(t, "unchanged", fine.Action)

	_, err = f.assess.Execute(ctx, AssessFineRequest{LoanID: 999})
	assert.ErrorIs(t, err, loan.ErrLoanNotFound)
}

func TestPayFine(t *testing.T) {
	f := newFixture(t)
	uid, cid := f.seed(t)
	ctx := context.Background()

	l, err := f.register.Execute(ctx, RegisterLoanRequest{UserID: uid, CopyID: cid})
	require.NoError(t, err)
	f.setDay(16)
	resp, err := f.ret.Execute(ctx, ReturnLoanRequest{LoanID: l.ID})
	require.NoError(t, err)
	require.NotNil(t, resp.Fine)

	paid, err := f.pay.Execute(ctx, PayFineRequest{FineID: resp.Fine.ID})
	require.NoError(t, err)
	assert.Equal(t, "1.00", paid.Amount)
	require.NotNil(t, paid.PaidAt)

	_, err = f.pay.Execute(ctx, PayFineRequest{FineID: resp.Fine.ID})
	assert.ErrorIs(t, err, loan.ErrFineAlreadyPaid)

	_, err = f.pay.Execute(ctx, PayFineRequest{FineID: 999})
	assert.ErrorIs(t, err, loan.ErrFineNotFound)
}

func TestListLoans(t *testing.T) {
	f := newFixture(t)
	uid, cid := f.seed(t)
	ctx := context.Background()
	cid2 := rdbtest.SeedCopy(t, f.db, rdbtest.SeedBook(t, f.db, "Emma", "9780141439587"), "BC-002")

	first, err := f.register.Execute(ctx, RegisterLoanRequest{UserID: uid, CopyID: cid})
	require.NoError(t, err)
	f.setDay(1)
	_, err = f.register.Execute(ctx, RegisterLoanRequest{UserID: uid, CopyID: cid2})
	require.NoError(t, err)
	_, err = f.ret.Execute(ctx, ReturnLoanRequest{LoanID: first.ID})
	require.NoError(t, err)

	all, err := f.list.Execute(ctx, ListLoansRequest{UserID: uid})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	assert.Equal(t, 1, all.Page)
	assert.Equal(t, 20, all.PageSize)
	require.Len(t, all.Loans, 2)
	assert.Equal(t, cid2, all.Loans[0].CopyID) // 借出时间倒序

	open, err := f.list.Execute(ctx, ListLoansRequest{UserID: uid, OpenOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), open.Total)
	assert.Equal(t, cid2, open.Loans[0].CopyID)
}

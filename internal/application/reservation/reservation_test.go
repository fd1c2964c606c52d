package reservation

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/bookcopy"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb/rdbtest"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

type fixture struct {
	db     *gorm.DB
	create *CreateReservationUseCase
	cancel *CancelReservationUseCase
	mine   *ListUserReservationsUseCase
	join   *JoinWaitlistUseCase
	leave  *LeaveWaitlistUseCase
	list   *ListWaitlistUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := rdbtest.NewDB(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }

	tx := rdb.NewTxManager(db)
	users := rdb.NewUserRepository(db)
	reservations := rdb.NewReservationRepository(db)
	waitlist := rdb.NewWaitlistRepository(db)

	return &fixture{
		db:     db,
		create: NewCreateReservationUseCase(users, rdb.NewCopyRepository(db), reservations, now, log),
		cancel: NewCancelReservationUseCase(reservations, log),
		mine:   NewListUserReservationsUseCase(reservations),
		join:   NewJoinWaitlistUseCase(users, reservations, waitlist, tx, log),
		leave:  NewLeaveWaitlistUseCase(reservations, waitlist, tx, log),
		list:   NewListWaitlistUseCase(reservations, waitlist),
	}
}

// newReservation 建一个由owner发起的有效预约
func (f *fixture) newReservation(t *testing.T) (*ReservationResponse, uint) {
	t.Helper()
	owner := rdbtest.SeedUser(t, f.db, "owner")
	cid := rdbtest.SeedCopy(t, f.db, rdbtest.SeedBook(t, f.db, "Dune", "9780441013593"), "BC-001")
	res, err := f.create.Execute(context.Background(), CreateReservationRequest{UserID: owner, CopyID: cid})
	require.NoError(t, err)
	return res, cid
}

func positions(t *testing.T, f *fixture, reservationID uint) map[uint]int {
	t.Helper()
	entries, err := f.list.Execute(context.Background(), reservationID)
	require.NoError(t, err)
	out := make(map[uint]int, len(entries))
	for _, e := range entries {
		out[e.UserID] = e.Position
	}
	return out
}

func TestCreateReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := rdbtest.SeedUser(t, f.db, "alice")
	cid := rdbtest.SeedCopy(t, f.db, rdbtest.SeedBook(t, f.db, "Dune", "9780441013593"), "BC-001")

	// 副本已借出也可以预约
	rdbtest.SeedLoan(t, f.db, uid, cid, time.Now())

	res, err := f.create.Execute(ctx, CreateReservationRequest{UserID: uid, CopyID: cid})
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.NotZero(t, res.ID)

	// 不会自动加入候补
	entries, err := f.list.Execute(ctx, res.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	mine, err := f.mine.Execute(ctx, uid)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, res.ID, mine[0].ID)

	_, err = f.create.Execute(ctx, CreateReservationRequest{UserID: 999, CopyID: cid})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	_, err = f.create.Execute(ctx, CreateReservationRequest{UserID: uid, CopyID: 999})
	assert.ErrorIs(t, err, bookcopy.ErrCopyNotFound)
}

func TestJoinWaitlist_Positions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, _ := f.newReservation(t)

	var ids []uint
	for i, name := range []string{"u1", "u2", "u3"} {
		uid := rdbtest.SeedUser(t, f.db, name)
		ids = append(ids, uid)

		e, err := f.join.Execute(ctx, WaitlistRequest{ReservationID: res.ID, UserID: uid})
		require.NoError(t, err)
		assert.Equal(t, i+1, e.Position)
	}

	_, err := f.join.Execute(ctx, WaitlistRequest{ReservationID: res.ID, UserID: ids[1]})
	assert.ErrorIs(t, err, reservation.ErrDuplicateEntry)

	assert.Equal(t, map[uint]int{ids[0]: 1, ids[1]: 2, ids[2]: 3}, positions(t, f, res.ID))
}

func TestJoinWaitlist_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, _ := f.newReservation(t)
	uid := rdbtest.SeedUser(t, f.db, "alice")

	_, err := f.join.Execute(ctx, WaitlistRequest{ReservationID: 999, UserID: uid})
	assert.ErrorIs(t, err, reservation.ErrReservationNotFound)

	_, err = f.join.Execute(ctx, WaitlistRequest{ReservationID: res.ID, UserID: 999})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	require.NoError(t, f.cancel.Execute(ctx, CancelReservationRequest{ReservationID: res.ID, ActorID: res.UserID}))
	_, err = f.join.Execute(ctx, WaitlistRequest{ReservationID: res.ID, UserID: uid})
	assert.ErrorIs(t, err, reservation.ErrReservationInactive)
}

func TestLeaveWaitlist_Renumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, _ := f.newReservation(t)

	var ids []uint
	for _, name := range []string{"u1", "u2", "u3", "u4"} {
		uid := rdbtest.SeedUser(t, f.db, name)
		ids = append(ids, uid)
		_, err := f.join.Execute(ctx, WaitlistRequest{ReservationID: res.ID, UserID: uid})
		require.NoError(t, err)
	}

	require.NoError(t, f.leave.Execute(ctx, WaitlistRequest{ReservationID: res.ID, UserID: ids[1]}))
	assert.Equal(t, map[uint]int{ids[0]: 1, ids[2]: 2, ids[3]: 3}, positions(t, f, res.ID))

	// 新加入的排在末尾,位置连续
	_, err := f.join.Execute(ctx, WaitlistRequest{ReservationID: res.ID, UserID: ids[1]})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{ids[0]: 1, ids[2]: 2, ids[3]: 3, ids[1]: 4}, positions(t, f, res.ID))

	require.NoError(t, f.leave.Execute(ctx, WaitlistRequest{ReservationID: res.ID, UserID: ids[0]}))
	assert.Equal(t, map[uint]int{ids[2]: 1, ids[3]: 2, ids[1]: 3}, positions(t, f, res.ID))

	err = f.leave.Execute(ctx, WaitlistRequest{ReservationID: res.ID, UserID: ids[0]})
	assert.ErrorIs(t, err, reservation.ErrEntryNotFound)
}

func TestCancelReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, _ := f.newReservation(t)

	own := CancelReservationRequest{ReservationID: res.ID, ActorID: res.UserID}
	require.NoError(t, f.cancel.Execute(ctx, own))
	assert.ErrorIs(t, f.cancel.Execute(ctx, own), reservation.ErrReservationInactive)
	assert.ErrorIs(t, f.cancel.Execute(ctx, CancelReservationRequest{ReservationID: 999, ActorID: res.UserID}), reservation.ErrReservationNotFound)

	_, err := f.list.Execute(ctx, 999)
	assert.ErrorIs(t, err, reservation.ErrReservationNotFound)
}

func TestCancelReservation_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, _ := f.newReservation(t)
	other := rdbtest.SeedUser(t, f.db, "mallory")

	// 他人不能取消
	err := f.cancel.Execute(ctx, CancelReservationRequest{ReservationID: res.ID, ActorID: other})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	mine, err := f.mine.Execute(ctx, res.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, mine[0].Active)

	// 馆员可以取消任何人的预约
	require.NoError(t, f.cancel.Execute(ctx, CancelReservationRequest{ReservationID: res.ID, ActorID: other, AllowAny: true}))
	mine, err = f.mine.Execute(ctx, res.UserID)
	require.NoError(t, err)
	assert.False(t, mine[0].Active)
}

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcatalog "github.com/xiebiao/library/internal/application/catalog"
	"github.com/xiebiao/library/internal/application/lending"
	appreport "github.com/xiebiao/library/internal/application/report"
	appreservation "github.com/xiebiao/library/internal/application/reservation"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb/rdbtest"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/response"
)

// memSessions 内存版会话存储与黑名单
type memSessions struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (s *memSessions) SaveSession(context.Context, uint, map[string]interface{}, time.Duration) error {
	return nil
}

func (s *memSessions) DeleteSession(context.Context, uint) error { return nil }

func (s *memSessions) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = true
	return nil
}

func (s *memSessions) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[tokenID], nil
}

type server struct {
	engine  *gin.Engine
	jwt     *jwt.Manager
	notices []reservation.CopyAvailable
	mu      sync.Mutex

	librarian uint
	member    uint
	other     uint
}

func newServer(t *testing.T) *server {
	t.Helper()

	db := rdbtest.NewDB(t)
	log := logger.Discard()
	srv := &server{jwt: jwt.NewManager("test-secret", time.Hour, 24*time.Hour)}

	srv.librarian = rdbtest.SeedUser(t, db, "librarian")
	srv.member = rdbtest.SeedUser(t, db, "member")
	srv.other = rdbtest.SeedUser(t, db, "other")

	userRepo := rdb.NewUserRepository(db)
	groupRepo := rdb.NewGroupRepository(db)
	bookRepo := rdb.NewBookRepository(db)
	authorRepo := rdb.NewAuthorRepository(db)
	publisherRepo := rdb.NewPublisherRepository(db)
	categoryRepo := rdb.NewCategoryRepository(db)
	copyRepo := rdb.NewCopyRepository(db)
	loanRepo := rdb.NewLoanRepository(db)
	fineRepo := rdb.NewFineRepository(db)
	reservationRepo := rdb.NewReservationRepository(db)
	waitlistRepo := rdb.NewWaitlistRepository(db)
	txManager := rdb.NewTxManager(db)

	sessions := &memSessions{revoked: map[string]bool{}}
	notifier := reservation.NotifierFunc(func(_ context.Context, n reservation.CopyAvailable) error {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		srv.notices = append(srv.notices, n)
		return nil
	})
	policy := loan.DefaultFinePolicy()
	now := lending.Clock(time.Now)

	userService := user.NewService(userRepo)
	h := Handlers{
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userService, log),
			appuser.NewLoginUseCase(userService, srv.jwt, sessions, 24*time.Hour, log),
			appuser.NewLogoutUseCase(sessions, time.Now, log),
			appuser.NewRefreshTokenUseCase(userRepo, srv.jwt),
			appuser.NewListUsersUseCase(userRepo),
			appuser.NewAssignGroupUseCase(userRepo, groupRepo, log),
		),
		Catalog: handler.NewCatalogHandler(
			appcatalog.NewCreateBookUseCase(bookRepo, authorRepo, publisherRepo, categoryRepo, log),
			appcatalog.NewGetBookUseCase(bookRepo, copyRepo),
			appcatalog.NewListBooksUseCase(bookRepo),
			appcatalog.NewDeleteBookUseCase(bookRepo, txManager, log),
			appcatalog.NewTaxonomyUseCase(authorRepo, publisherRepo, categoryRepo, txManager, log),
			appcatalog.NewCopyUseCase(bookRepo, copyRepo, log),
		),
		Lending: handler.NewLendingHandler(
			lending.NewRegisterLoanUseCase(userRepo, copyRepo, loanRepo, txManager, policy, now, log),
			lending.NewReturnLoanUseCase(copyRepo, loanRepo, fineRepo, waitlistRepo, notifier, txManager, policy, now, log),
			lending.NewAssessFineUseCase(loanRepo, fineRepo, txManager, policy, now, log),
			lending.NewPayFineUseCase(fineRepo, txManager, now, log),
			lending.NewListLoansUseCase(loanRepo, policy),
		),
		Reservation: handler.NewReservationHandler(
			appreservation.NewCreateReservationUseCase(userRepo, copyRepo, reservationRepo, time.Now, log),
			appreservation.NewCancelReservationUseCase(reservationRepo, log),
			appreservation.NewListUserReservationsUseCase(reservationRepo),
			appreservation.NewJoinWaitlistUseCase(userRepo, reservationRepo, waitlistRepo, txManager, log),
			appreservation.NewLeaveWaitlistUseCase(reservationRepo, waitlistRepo, txManager, log),
			appreservation.NewListWaitlistUseCase(reservationRepo, waitlistRepo),
		),
		Report: handler.NewReportHandler(appreport.NewTopUseCase(rdb.NewReportRepository(db))),
	}

	srv.engine = New(Options{Mode: gin.TestMode, ServiceName: "library-test"}, h, middleware.NewAuthMiddleware(srv.jwt, sessions), log)
	return srv
}

func (s *server) token(t *testing.T, userID uint, groups ...string) string {
	t.Helper()
	pair, err := s.jwt.GenerateToken(jwt.Identity{UserID: userID, Username: "u", Groups: groups})
	require.NoError(t, err)
	return pair.AccessToken
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *server) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestPing(t *testing.T) {
	s := newServer(t)
	status, env := s.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, env.Code)
}

func TestAuth(t *testing.T) {
	s := newServer(t)

	t.Run("missing token", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/api/v1/books", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, 40100, env.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		pair, err := s.jwt.GenerateToken(jwt.Identity{UserID: s.member, Groups: []string{user.GroupMember}})
		require.NoError(t, err)
		status, _ := s.do(t, http.MethodGet, "/api/v1/books", pair.RefreshToken, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("logout revokes token", func(t *testing.T) {
		token := s.token(t, s.member, user.GroupMember)
		status, _ := s.do(t, http.MethodGet, "/api/v1/books", token, nil)
		require.Equal(t, http.StatusOK, status)

		status, _ = s.do(t, http.MethodPost, "/api/v1/users/logout", token, nil)
		require.Equal(t, http.StatusOK, status)

		status, env := s.do(t, http.MethodGet, "/api/v1/books", token, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, 40101, env.Code)
	})
}

func TestPermissions(t *testing.T) {
	s := newServer(t)
	librarian := s.token(t, s.librarian, user.GroupLibrarian)
	member := s.token(t, s.member, user.GroupMember)
	nobody := s.token(t, s.other)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"member lists books", http.MethodGet, "/api/v1/books", member, http.StatusOK},
		{"no group cannot list books", http.MethodGet, "/api/v1/books", nobody, http.StatusForbidden},
		{"member cannot create book", http.MethodPost, "/api/v1/books", member, http.StatusForbidden},
		{"member cannot register loan", http.MethodPost, "/api/v1/loans", member, http.StatusForbidden},
		{"member cannot view reports", http.MethodGet, "/api/v1/reports/top-books", member, http.StatusForbidden},
		{"member cannot list users", http.MethodGet, "/api/v1/users", member, http.StatusForbidden},
		{"librarian views reports", http.MethodGet, "/api/v1/reports/top-books", librarian, http.StatusOK},
		{"librarian lists users", http.MethodGet, "/api/v1/users", librarian, http.StatusOK},
		{"librarian cannot change groups", http.MethodPut, "/api/v1/users/1/group", librarian, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := s.do(t, tc.method, tc.path, tc.token, map[string]any{})
			assert.Equal(t, tc.want, status)
		})
	}
}

func TestLoanFlow(t *testing.T) {
	s := newServer(t)
	librarian := s.token(t, s.librarian, user.GroupLibrarian)
	member := s.token(t, s.member, user.GroupMember)
	other := s.token(t, s.other, user.GroupMember)

	status, env := s.do(t, http.MethodPost, "/api/v1/books", librarian, map[string]any{
		"title": "Dune",
		"isbn":  "978-0-441-01359-3",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	book := decode[appcatalog.BookResponse](t, env.Data)

	status, env = s.do(t, http.MethodPost, "/api/v1/books/"+itoa(book.ID)+"/copies", librarian, map[string]any{
		"barcode": "C-001",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	cp := decode[appcatalog.CopyResponse](t, env.Data)
	assert.Equal(t, "available", cp.Status)

	// 借出
	status, env = s.do(t, http.MethodPost, "/api/v1/loans", librarian, map[string]any{
		"user_id": s.member,
		"copy_id": cp.ID,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	l := decode[lending.LoanResponse](t, env.Data)
	assert.WithinDuration(t, l.LoanDate.AddDate(0, 0, 14), l.DueDate, time.Hour)

	// 同一副本不能再借
	status, env = s.do(t, http.MethodPost, "/api/v1/loans", librarian, map[string]any{
		"user_id": s.other,
		"copy_id": cp.ID,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, 40010, env.Code)

	// 读者不能替别人预约
	status, _ = s.do(t, http.MethodPost, "/api/v1/reservations", member, map[string]any{
		"user_id": s.other,
		"copy_id": cp.ID,
	})
	assert.Equal(t, http.StatusForbidden, status)

	// other预约已借出的副本并加入候补
	status, env = s.do(t, http.MethodPost, "/api/v1/reservations", other, map[string]any{"copy_id": cp.ID})
	require.Equal(t, http.StatusCreated, status, env.Message)
	r := decode[appreservation.ReservationResponse](t, env.Data)
	assert.Equal(t, s.other, r.UserID)

	status, env = s.do(t, http.MethodPost, "/api/v1/reservations/"+itoa(r.ID)+"/waitlist", other, nil)
	require.Equal(t, http.StatusCreated, status, env.Message)
	entry := decode[appreservation.WaitlistEntryResponse](t, env.Data)
	assert.Equal(t, 1, entry.Position)

	status, env = s.do(t, http.MethodPost, "/api/v1/reservations/"+itoa(r.ID)+"/waitlist", other, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, 40009, env.Code)

	status, env = s.do(t, http.MethodGet, "/api/v1/reservations/"+itoa(r.ID)+"/waitlist", member, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]appreservation.WaitlistEntryResponse](t, env.Data), 1)

	// 归还:未逾期没有罚款,通知候补队首
	status, env = s.do(t, http.MethodPost, "/api/v1/loans/"+itoa(l.ID)+"/return", librarian, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	ret := decode[lending.ReturnLoanResponse](t, env.Data)
	assert.True(t, ret.Loan.Returned)
	assert.Nil(t, ret.Fine)
	require.NotNil(t, ret.NotifiedUserID)
	assert.Equal(t, s.other, *ret.NotifiedUserID)

	s.mu.Lock()
	require.Len(t, s.notices, 1)
	assert.Equal(t, cp.ID, s.notices[0].CopyID)
	s.mu.Unlock()

	status, env = s.do(t, http.MethodPost, "/api/v1/loans/"+itoa(l.ID)+"/return", librarian, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, 40011, env.Code)

	// 统计
	status, env = s.do(t, http.MethodGet, "/api/v1/reports/top-users", librarian, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"loan_count":1`)

	status, env = s.do(t, http.MethodGet, "/api/v1/loans?user_id="+itoa(s.member), member, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"total":1`)
}

func TestOwnership(t *testing.T) {
	s := newServer(t)
	librarian := s.token(t, s.librarian, user.GroupLibrarian)
	member := s.token(t, s.member, user.GroupMember)
	other := s.token(t, s.other, user.GroupMember)

	status, env := s.do(t, http.MethodPost, "/api/v1/books", librarian, map[string]any{
		"title": "Solaris",
		"isbn":  "0-8044-2957-X",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	book := decode[appcatalog.BookResponse](t, env.Data)
	assert.Equal(t, "080442957X", book.ISBN)

	status, env = s.do(t, http.MethodPost, "/api/v1/books/"+itoa(book.ID)+"/copies", librarian, map[string]any{
		"barcode": "C-100",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	cp := decode[appcatalog.CopyResponse](t, env.Data)

	status, env = s.do(t, http.MethodPost, "/api/v1/loans", librarian, map[string]any{
		"user_id": s.member,
		"copy_id": cp.ID,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	t.Run("loan list scoped to caller", func(t *testing.T) {
		page := func(env envelope) response.PageData {
			return decode[response.PageData](t, env.Data)
		}

		status, env := s.do(t, http.MethodGet, "/api/v1/loans", member, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, int64(1), page(env).Total)

		status, env = s.do(t, http.MethodGet, "/api/v1/loans", other, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, int64(0), page(env).Total)

		status, _ = s.do(t, http.MethodGet, "/api/v1/loans?user_id="+itoa(s.member), other, nil)
		assert.Equal(t, http.StatusForbidden, status)

		status, env = s.do(t, http.MethodGet, "/api/v1/loans", librarian, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, int64(1), page(env).Total)
	})

	t.Run("cancel reservation", func(t *testing.T) {
		status, env := s.do(t, http.MethodPost, "/api/v1/reservations", other, map[string]any{"copy_id": cp.ID})
		require.Equal(t, http.StatusCreated, status, env.Message)
		r := decode[appreservation.ReservationResponse](t, env.Data)

		// 读者不能取消别人的预约
		status, env = s.do(t, http.MethodDelete, "/api/v1/reservations/"+itoa(r.ID), member, nil)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, 40104, env.Code)

		status, env = s.do(t, http.MethodGet, "/api/v1/reservations/mine", other, nil)
		require.Equal(t, http.StatusOK, status)
		mine := decode[[]appreservation.ReservationResponse](t, env.Data)
		require.Len(t, mine, 1)
		assert.True(t, mine[0].Active)

		status, env = s.do(t, http.MethodDelete, "/api/v1/reservations/"+itoa(r.ID), other, nil)
		require.Equal(t, http.StatusOK, status, env.Message)

		// 馆员可以取消任何人的预约
		status, env = s.do(t, http.MethodPost, "/api/v1/reservations", other, map[string]any{"copy_id": cp.ID})
		require.Equal(t, http.StatusCreated, status, env.Message)
		r = decode[appreservation.ReservationResponse](t, env.Data)

		status, env = s.do(t, http.MethodDelete, "/api/v1/reservations/"+itoa(r.ID), librarian, nil)
		require.Equal(t, http.StatusOK, status, env.Message)
	})
}

func TestValidation(t *testing.T) {
	s := newServer(t)
	librarian := s.token(t, s.librarian, user.GroupLibrarian)

	status, env := s.do(t, http.MethodPost, "/api/v1/loans", librarian, map[string]any{"user_id": s.member})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 40900, env.Code)

	status, _ = s.do(t, http.MethodGet, "/api/v1/books/abc", librarian, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = s.do(t, http.MethodPost, "/api/v1/loans/999/return", librarian, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 40404, env.Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

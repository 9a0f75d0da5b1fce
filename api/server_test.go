package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"apploto/application"
	"apploto/config"
	"apploto/domain/entities"
	"apploto/domain/interfaces"
	"apploto/domain/ranking"
	"apploto/domain/services"
	"apploto/domain/testhelpers"
	"apploto/infrastructure/auth"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var apiNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type testServer struct {
	server  *Server
	factory *application.MockUnitOfWorkFactory
	tokens  *auth.JWTProvider
	mailer  *testhelpers.MockMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log.SetOutput(io.Discard)

	cfg := config.NewTestConfig()
	clock := clockwork.NewFakeClockAt(apiNow)
	tokens := auth.NewJWTProvider(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, clock)
	mailer := new(testhelpers.MockMailer)
	factory := application.NewMockUnitOfWorkFactory()

	services := application.NewServiceFactory(application.ServiceDependencies{
		Clock:      clock,
		Hasher:     new(testhelpers.MockPasswordHasher),
		Issuer:     tokens,
		Mailer:     mailer,
		AdminEmail: cfg.AdminEmail,
	})

	return &testServer{
		server: NewServer(cfg, Dependencies{
			UoWFactory: factory,
			Services:   services,
			Metrics:    NewHTTPMetrics(),
		}),
		factory: factory,
		tokens:  tokens,
		mailer:  mailer,
	}
}

// accessToken issues a token for the user and marks it as not revoked
func (ts *testServer) accessToken(t *testing.T, userID int64, role entities.Role) string {
	t.Helper()
	token, claims, err := ts.tokens.Issue(userID, role, entities.TokenTypeAccess)
	require.NoError(t, err)
	ts.factory.UoW.Tokens.On("IsRevoked", mock.Anything, claims.JTI).Return(false, nil).Maybe()
	return token
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUserRoutes_RequireBearerToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/user/account", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodGet, "/api/user/account", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserRoutes_RejectRevokedToken(t *testing.T) {
	ts := newTestServer(t)
	token, claims, err := ts.tokens.Issue(7, entities.RoleUser, entities.TokenTypeAccess)
	require.NoError(t, err)
	ts.factory.UoW.Tokens.On("IsRevoked", mock.Anything, claims.JTI).Return(true, nil)

	rec := ts.do(http.MethodGet, "/api/user/account", token, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), services.ErrTokenRevoked.Error())
}

func TestUserRoutes_RejectRefreshTokenAsAccess(t *testing.T) {
	ts := newTestServer(t)
	refresh, _, err := ts.tokens.Issue(7, entities.RoleUser, entities.TokenTypeRefresh)
	require.NoError(t, err)

	rec := ts.do(http.MethodGet, "/api/user/account", refresh, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetAccount(t *testing.T) {
	ts := newTestServer(t)
	token := ts.accessToken(t, 7, entities.RoleUser)
	ts.factory.UoW.Users.On("GetByID", mock.Anything, int64(7)).Return(&entities.User{
		ID: 7, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Role: entities.RoleUser, Notification: true,
	}, nil)

	rec := ts.do(http.MethodGet, "/api/user/account", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	account := decode[accountResponse](t, rec)
	assert.Equal(t, "ada@example.com", account.Email)
	assert.Equal(t, "USER", account.Role)
	assert.True(t, account.Notification)

	_, committed, _ := ts.factory.UoW.Counts()
	assert.Equal(t, 2, committed, "auth check and handler each run in their own transaction")
}

func TestRole(t *testing.T) {
	ts := newTestServer(t)
	token := ts.accessToken(t, 1, entities.RoleAdmin)

	rec := ts.do(http.MethodGet, "/api/auth/role", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"role":"ADMIN"}`, rec.Body.String())
}

func TestAdminRoutes_RejectUsers(t *testing.T) {
	ts := newTestServer(t)
	token := ts.accessToken(t, 7, entities.RoleUser)

	rec := ts.do(http.MethodGet, "/api/admin/lotteries", token, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.factory.UoW.Users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)

	rec := ts.do(http.MethodPost, "/api/auth/login", "", loginRequest{Email: "Nobody@example.com", Password: "secret-password"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), services.ErrInvalidCredentials.Error())
}

func TestRegisterEntry_ValidationError(t *testing.T) {
	ts := newTestServer(t)
	token := ts.accessToken(t, 7, entities.RoleUser)

	rec := ts.do(http.MethodPost, "/api/user/entries", token, entryRequest{
		LotteryID:    3,
		Numbers:      []int{1, 2, 3, 4, 4},
		LuckyNumbers: []int{1, 10},
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "validation failed", body.Error)
	assert.Contains(t, body.Fields, "numbers")
	assert.Contains(t, body.Fields, "lucky_numbers")
	ts.factory.UoW.Entries.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCurrentLottery_NoneOpen(t *testing.T) {
	ts := newTestServer(t)
	token := ts.accessToken(t, 7, entities.RoleUser)
	ts.factory.UoW.Lottery.On("GetOpen", mock.Anything).Return(nil, nil)

	rec := ts.do(http.MethodGet, "/api/user/lotteries/current", token, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLottery_BadID(t *testing.T) {
	ts := newTestServer(t)
	token := ts.accessToken(t, 7, entities.RoleUser)

	rec := ts.do(http.MethodGet, "/api/user/lotteries/abc", token, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRankings_IncludesViewer(t *testing.T) {
	ts := newTestServer(t)
	token := ts.accessToken(t, 8, entities.RoleUser)
	uow := ts.factory.UoW
	uow.Lottery.On("GetByID", mock.Anything, int64(3)).Return(&entities.Lottery{ID: 3, Status: entities.LotteryStatusFinished}, nil)
	uow.Results.On("GetByLottery", mock.Anything, int64(3)).Return(&entities.LotteryResult{
		ID: 1, LotteryID: 3, WinningNumbers: "1,2,3,4,5", WinningLuckyNumbers: "1,2", CreatedAt: apiNow,
	}, nil)
	uow.Rankings.On("ListByLottery", mock.Anything, int64(3)).Return([]*entities.RankingView{
		{PlayerID: 7, Name: "Ada Lovelace", Rank: 1, Score: 100, Winnings: 400},
		{PlayerID: 8, Name: "", Rank: 2, Score: 50, Winnings: 100},
	}, nil)

	rec := ts.do(http.MethodGet, "/api/user/lotteries/3/rankings", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[rankingsResponse](t, rec)
	require.Len(t, body.Rankings, 2)
	assert.Equal(t, "1,2,3,4,5", body.Result.WinningNumbers)
	require.NotNil(t, body.Me)
	assert.Equal(t, 2, body.Me.Rank)
	assert.Equal(t, ranking.UnknownParticipantName, body.Me.Name)
}

func TestGetResult_NotDrawn(t *testing.T) {
	ts := newTestServer(t)
	token := ts.accessToken(t, 7, entities.RoleUser)
	ts.factory.UoW.Lottery.On("GetByID", mock.Anything, int64(3)).Return(&entities.Lottery{ID: 3, Status: entities.LotteryStatusOpen}, nil)
	ts.factory.UoW.Results.On("GetByLottery", mock.Anything, int64(3)).Return(nil, nil)

	rec := ts.do(http.MethodGet, "/api/user/lotteries/3/result", token, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveParticipant(t *testing.T) {
	ts := newTestServer(t)
	token := ts.accessToken(t, 1, entities.RoleAdmin)
	uow := ts.factory.UoW
	uow.Lottery.On("GetByID", mock.Anything, int64(3)).Return(&entities.Lottery{ID: 3, Status: entities.LotteryStatusOpen}, nil)
	uow.Entries.On("Delete", mock.Anything, int64(3), int64(9)).Return(true, nil)

	rec := ts.do(http.MethodDelete, "/api/admin/lotteries/3/participants/9", token, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	uow.Entries.AssertExpectations(t)
}

func TestContactUs(t *testing.T) {
	ts := newTestServer(t)
	ts.mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg interfaces.MailMessage) bool {
		return len(msg.To) == 1 && msg.To[0] == "admin@apploto.test" && msg.ReplyTo == "visitor@example.com"
	})).Return(nil)

	rec := ts.do(http.MethodPost, "/api/contact-us", "", contactRequest{Email: "visitor@example.com", Message: "When is the next draw?"})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	ts.mailer.AssertExpectations(t)
}

func TestContactUs_MailerFailureIsHidden(t *testing.T) {
	ts := newTestServer(t)
	ts.mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("dial tcp: connection refused"))

	rec := ts.do(http.MethodPost, "/api/contact-us", "", contactRequest{Email: "visitor@example.com", Message: "hello"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodGet, "/healthz", "", nil)

	rec := ts.do(http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `apploto_http_requests_total{code="200",method="GET",route="/healthz"} 1`)
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()

	ts.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 2)

	a := limiter.GetLimiter("10.0.0.1")
	assert.Same(t, a, limiter.GetLimiter("10.0.0.1"))
	assert.NotSame(t, a, limiter.GetLimiter("10.0.0.2"))

	assert.True(t, a.Allow())
	assert.True(t, a.Allow())
	assert.False(t, a.Allow())
}

func TestIPRateLimiter_PrunesIdleEntries(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Inf, 1)
	for i := 0; i <= cleanupThreshold; i++ {
		limiter.GetLimiter(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	for _, e := range limiter.ips {
		e.lastSeen = time.Now().Add(-2 * maxIdleAge)
	}

	limiter.GetLimiter("192.168.0.1")

	assert.Len(t, limiter.ips, 1)
}

func TestStatusFor(t *testing.T) {
	verr := services.NewValidationError()
	verr.Add("name", "is required")

	tests := []struct {
		err  error
		want int
	}{
		{verr, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", services.ErrLotteryNotFound), http.StatusNotFound},
		{services.ErrLotteryNotDrawn, http.StatusNotFound},
		{services.ErrInvalidToken, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrDuplicateEntry, http.StatusConflict},
		{services.ErrLotteryAlreadyRunning, http.StatusConflict},
		{services.ErrInvalidNumbers, http.StatusBadRequest},
		{errInvalidID, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(strings.ReplaceAll(tt.err.Error(), " ", "_"), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

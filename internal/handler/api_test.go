package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rankhwa/internal/auth"
	apperrors "rankhwa/internal/errors"
	"rankhwa/internal/handler"
	"rankhwa/internal/logging"
	"rankhwa/internal/model"
	"rankhwa/internal/repository"
	"rankhwa/internal/router"
	"rankhwa/internal/service"
	"rankhwa/internal/testutil"
)

type revocations struct {
	mu  sync.Mutex
	ids map[string]bool
}

func (r *revocations) Revoke(_ context.Context, id string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[id] = true
	return nil
}

func (r *revocations) IsRevoked(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ids[id], nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

type api struct {
	t  *testing.T
	e  *echo.Echo
	db *gorm.DB
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gormDB := testutil.NewDB(t)
	store := repository.NewStore(gormDB)
	log := logging.Discard()
	jwtService := auth.NewJWTService(testutil.TestSecret, 24*time.Hour)
	tokens := &revocations{ids: map[string]bool{}}

	ratingService := service.NewRatingService(store, nil, log)
	e := echo.New()
	router.Register(e, log, auth.Middleware(jwtService, tokens), router.Handlers{
		Auth:   handler.NewAuthHandler(service.NewAuthService(store, jwtService, tokens, log)),
		User:   handler.NewUserHandler(service.NewUserService(store.Users(), nil)),
		List:   handler.NewListHandler(service.NewListService(store, log)),
		Manhwa: handler.NewManhwaHandler(service.NewManhwaService(store.Manhwa(), nil, 100), ratingService),
		Health: handler.NewHealthHandler(store),
	})
	return &api{t: t, e: e, db: gormDB}
}

func (a *api) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *api) registerAndLogin(email string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email": email, "password": "password123", "displayName": "Reader " + email,
	})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(a.t, "Registration successful!", rec.Body.String())

	rec = a.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "password123"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var out handler.TokenResponse
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(a.t, out.Token)
	return out.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[apperrors.ErrorResponse](t, rec).Code
}

func TestEndToEnd_RegisterListsAndRating(t *testing.T) {
	a := newAPI(t)
	testutil.SeedManhwa(t, a.db, &model.Manhwa{Title: "Solo Leveling", Genres: []string{"Action"}})

	token := a.registerAndLogin("a@example.com")

	rec := a.do(http.MethodGet, "/lists", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lists := decode[[]model.ListSummary](t, rec)
	require.Len(t, lists, 4)
	for _, l := range lists {
		assert.True(t, l.IsDefault)
	}

	rec = a.do(http.MethodPost, "/manhwa/1/rating", token, map[string]int{"score": 8})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(http.MethodGet, "/manhwa/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[handler.ManhwaDetail](t, rec)
	assert.InDelta(t, 8.0, detail.AvgRating, 1e-9)
	assert.Equal(t, 1, detail.VoteCount)

	rec = a.do(http.MethodPost, "/manhwa/1/rating", token, map[string]int{"score": 4})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodGet, "/manhwa/1", "", nil)
	detail = decode[handler.ManhwaDetail](t, rec)
	assert.InDelta(t, 4.0, detail.AvgRating, 1e-9)
	assert.Equal(t, 1, detail.VoteCount)

	rec = a.do(http.MethodGet, "/manhwa/1/rating", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, decode[handler.ScoreResponse](t, rec).Score)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	a := newAPI(t)
	a.registerAndLogin("dup@example.com")

	rec := a.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email": "dup@example.com", "password": "password123", "displayName": "Again",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EMAIL_TAKEN", errorCode(t, rec))

	var users int64
	require.NoError(t, a.db.Model(&model.User{}).Count(&users).Error)
	assert.EqualValues(t, 1, users)
}

func TestRegister_Validation(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodPost, "/auth/register", "", map[string]string{"email": "not-an-email", "password": "password123", "displayName": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "ghost@example.com", "password": "whatever"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rec))
}

func TestProtectedRoutesNeedPrincipal(t *testing.T) {
	a := newAPI(t)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/users/me"},
		{http.MethodPatch, "/users/me"},
		{http.MethodGet, "/lists"},
		{http.MethodPost, "/lists"},
		{http.MethodGet, "/lists/1"},
		{http.MethodPatch, "/lists/1"},
		{http.MethodDelete, "/lists/1"},
		{http.MethodPost, "/lists/1/items"},
		{http.MethodDelete, "/lists/1/items/1"},
		{http.MethodPost, "/manhwa/1/rating"},
		{http.MethodGet, "/manhwa/1/rating"},
		{http.MethodPost, "/auth/logout"},
	}
	for _, r := range routes {
		for _, token := range []string{"", "garbage.token.value"} {
			t.Run(r.method+" "+r.path, func(t *testing.T) {
				rec := a.do(r.method, r.path, token, nil)
				assert.Equal(t, http.StatusUnauthorized, rec.Code)
			})
		}
	}
}

func TestLists_OwnershipAndDefaults(t *testing.T) {
	a := newAPI(t)
	testutil.SeedManhwa(t, a.db, &model.Manhwa{Title: "Tower of God"}, &model.Manhwa{Title: "Eleceed"})
	alice := a.registerAndLogin("alice@example.com")
	bob := a.registerAndLogin("bob@example.com")

	rec := a.do(http.MethodPost, "/lists", alice, map[string]string{"name": "Weekend"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[handler.ListDetailResponse](t, rec)
	assert.False(t, created.IsDefault)
	assert.NotNil(t, created.ManhwaIDs)
	assert.Empty(t, created.ManhwaIDs)

	rec = a.do(http.MethodPost, "/lists", alice, map[string]string{"name": "Weekend"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPost, "/lists", alice, map[string]string{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_NAME", errorCode(t, rec))
	rec = a.do(http.MethodPatch, "/lists/"+itoa(created.ID), alice, map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	listPath := "/lists/" + itoa(created.ID)
	for i := 0; i < 2; i++ {
		rec = a.do(http.MethodPost, listPath+"/items", alice, map[string]uint{"manhwaId": 1})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec = a.do(http.MethodDelete, listPath+"/items/2", alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodGet, listPath, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint{1}, decode[handler.ListDetailResponse](t, rec).ManhwaIDs)

	rec = a.do(http.MethodGet, listPath, bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(http.MethodPost, listPath+"/items", bob, map[string]uint{"manhwaId": 2})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(http.MethodGet, "/lists/999", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = a.do(http.MethodGet, "/lists/abc", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var defaultID uint
	rec = a.do(http.MethodGet, "/lists", alice, nil)
	for _, l := range decode[[]model.ListSummary](t, rec) {
		if l.IsDefault {
			defaultID = l.ID
		}
		if l.ID == created.ID {
			assert.Equal(t, 1, l.ItemCount)
		}
	}
	require.NotZero(t, defaultID)

	rec = a.do(http.MethodPatch, "/lists/"+itoa(defaultID), alice, map[string]string{"name": "Renamed"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "DEFAULT_LIST", errorCode(t, rec))
	rec = a.do(http.MethodDelete, "/lists/"+itoa(defaultID), alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPatch, listPath, alice, map[string]string{"name": "Reading"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = a.do(http.MethodPatch, listPath, alice, map[string]string{"name": "Someday"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodDelete, listPath, alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(http.MethodGet, listPath, alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRating_Errors(t *testing.T) {
	a := newAPI(t)
	testutil.SeedManhwa(t, a.db, &model.Manhwa{Title: "Noblesse"})
	token := a.registerAndLogin("r@example.com")

	for _, score := range []int{0, 11} {
		rec := a.do(http.MethodPost, "/manhwa/1/rating", token, map[string]int{"score": score})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_SCORE", errorCode(t, rec))
	}

	rec := a.do(http.MethodPost, "/manhwa/404/rating", token, map[string]int{"score": 5})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodGet, "/manhwa/1/rating", token, nil)
	assert.Equal(t, 0, decode[handler.ScoreResponse](t, rec).Score)

	rec = a.do(http.MethodGet, "/manhwa/404", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	a := newAPI(t)
	testutil.SeedManhwa(t, a.db,
		&model.Manhwa{Title: "Action One", Genres: []string{"Action"}, AvgRating: 9, VoteCount: 10, ReleaseDate: testutil.Date(2019, 1, 1)},
		&model.Manhwa{Title: "Romance Two", Genres: []string{"Romance"}, AvgRating: 7, VoteCount: 3, ReleaseDate: testutil.Date(2021, 5, 1)},
		&model.Manhwa{Title: "Drama Three", Genres: []string{"Drama"}, AvgRating: 8, VoteCount: 5, ReleaseDate: testutil.Date(2020, 1, 1)},
	)

	rec := a.do(http.MethodGet, "/manhwa?genres=Action,Romance&sort=date", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]handler.ManhwaSummary](t, rec)
	require.Len(t, got, 2)
	assert.Equal(t, "Romance Two", got[0].Title)
	assert.Equal(t, "Action One", got[1].Title)

	rec = a.do(http.MethodGet, "/manhwa?genres=", "", nil)
	assert.Len(t, decode[[]handler.ManhwaSummary](t, rec), 3)

	rec = a.do(http.MethodGet, "/manhwa?min_rating=7.5&min_votes=4", "", nil)
	got = decode[[]handler.ManhwaSummary](t, rec)
	require.Len(t, got, 2)
	assert.Equal(t, "Action One", got[0].Title)

	rec = a.do(http.MethodGet, "/manhwa?year=2020&query=drama", "", nil)
	got = decode[[]handler.ManhwaSummary](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Drama"}, got[0].Genres)

	rec = a.do(http.MethodGet, "/manhwa?page=5&size=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = a.do(http.MethodGet, "/manhwa?min_votes=lots", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsersEndpoints(t *testing.T) {
	a := newAPI(t)
	token := a.registerAndLogin("me@example.com")

	rec := a.do(http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[handler.UserResponse](t, rec)
	assert.Equal(t, "me@example.com", me.Email)

	rec = a.do(http.MethodPatch, "/users/me", token, map[string]string{"displayName": "Renamed Reader"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Renamed Reader", decode[handler.UserResponse](t, rec).DisplayName)

	rec = a.do(http.MethodPatch, "/users/me", token, map[string]string{"displayName": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_NAME", errorCode(t, rec))

	rec = a.do(http.MethodGet, "/users/"+itoa(me.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "me@example.com")
	profile := decode[service.PublicProfile](t, rec)
	assert.Equal(t, "Renamed Reader", profile.DisplayName)

	rec = a.do(http.MethodGet, "/users/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	a := newAPI(t)
	token := a.registerAndLogin("bye@example.com")

	rec := a.do(http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodGet, "/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/health/sanity_check", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"UP"}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	down := echo.New()
	down.GET("/healthz", handler.NewHealthHandler(failingPinger{}).Healthz)
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/middleware"
)

var secret = []byte("mw-secret")

func sign(t *testing.T, claims jwtv4.MapClaims) string {
	t.Helper()
	s, err := jwtv4.NewWithClaims(jwtv4.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return s
}

func serve(e *echo.Echo, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func whoami(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"id": middleware.UserID(c), "role": middleware.Role(c)})
}

func TestJWTMiddleware(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, middleware.JWTMiddleware(secret))
	e.GET("/sellers", whoami, middleware.JWTMiddleware(secret), middleware.RequireRoles("seller"))

	valid := sign(t, jwtv4.MapClaims{"user_id": "u3", "role": "seller", "exp": time.Now().Add(time.Hour).Unix()})
	buyer := sign(t, jwtv4.MapClaims{"user_id": "u1", "role": "buyer", "exp": time.Now().Add(time.Hour).Unix()})
	expired := sign(t, jwtv4.MapClaims{"user_id": "u3", "role": "seller", "exp": time.Now().Add(-time.Hour).Unix()})
	noExp := sign(t, jwtv4.MapClaims{"user_id": "u3", "role": "seller"})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"valid", "/me", "Bearer " + valid, http.StatusOK},
		{"missing", "/me", "", http.StatusUnauthorized},
		{"not bearer", "/me", "Token " + valid, http.StatusUnauthorized},
		{"expired", "/me", "Bearer " + expired, http.StatusUnauthorized},
		{"no expiry", "/me", "Bearer " + noExp, http.StatusUnauthorized},
		{"seller route", "/sellers", "Bearer " + valid, http.StatusOK},
		{"buyer on seller route", "/sellers", "Bearer " + buyer, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodGet, tt.path, map[string]string{echo.HeaderAuthorization: tt.header})
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	rec := serve(e, http.MethodGet, "/me", map[string]string{echo.HeaderAuthorization: "Bearer " + valid})
	assert.JSONEq(t, `{"id":"u3","role":"seller"}`, rec.Body.String())
}

func TestParseTokenRejectsOtherAlgorithms(t *testing.T) {
	s, err := jwtv4.NewWithClaims(jwtv4.SigningMethodHS512, jwtv4.MapClaims{
		"user_id": "u1", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = middleware.ParseToken(s, secret)
	assert.Error(t, err)
}

func TestAdminGuard(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

	e := echo.New()
	e.GET("/stats", ok, middleware.AdminGuard("k3y"))
	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/stats", map[string]string{middleware.AdminKeyHeader: "k3y"}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/stats", map[string]string{middleware.AdminKeyHeader: "nope"}).Code)

	locked := echo.New()
	locked.GET("/stats", ok, middleware.AdminGuard(""))
	assert.Equal(t, http.StatusUnauthorized, serve(locked, http.MethodGet, "/stats", map[string]string{middleware.AdminKeyHeader: "anything"}).Code)
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{apperr.NotFound("offer", "o9"), http.StatusNotFound, "offer not found"},
		{apperr.DuplicateOffer("r1", "u3"), http.StatusConflict, "seller already submitted an offer for this request"},
		{apperr.InvalidInput("bad"), http.StatusBadRequest, "bad"},
		{errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		require.NoError(t, middleware.RespondError(c, tt.err))

		assert.Equal(t, tt.code, rec.Code)
		assert.JSONEq(t, `{"error":"`+tt.msg+`"}`, rec.Body.String())
	}
}

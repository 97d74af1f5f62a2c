package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat_gateway_server/internal/dto/request"
	"chat_gateway_server/pkg/errorx"
)

type loginFunc func(ctx context.Context, req request.LoginRequest, meta request.LoginMeta) (string, error)

func (f loginFunc) Login(ctx context.Context, req request.LoginRequest, meta request.LoginMeta) (string, error) {
	return f(ctx, req, meta)
}

func zlibBody(t *testing.T, s string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return &buf
}

func newLoginRouter(svc LoginService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(svc, CookieOptions{MaxAge: 3600})
	r.POST("/auth/login", h.Login)
	return r
}

func doLogin(r *gin.Engine, body *bytes.Buffer) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("User-Agent", "handler-test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginIssuesTokenAndCookie(t *testing.T) {
	var gotMeta request.LoginMeta
	r := newLoginRouter(loginFunc(func(_ context.Context, req request.LoginRequest, meta request.LoginMeta) (string, error) {
		gotMeta = meta
		if req.Username == "ann" && req.Password == "pw" {
			return "tok-123", nil
		}
		return "", errorx.ErrInvalidCredentials
	}))

	w := doLogin(r, zlibBody(t, `{"username":"ann","password":"pw","cookie":true}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token":"tok-123"}`, w.Body.String())
	assert.Equal(t, "handler-test", gotMeta.UserAgent)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Equal(t, "tok-123", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.Equal(t, "/", cookies[0].Path)

	w = doLogin(r, zlibBody(t, `{"username":"ann","password":"pw"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestLoginInvalidCredentials(t *testing.T) {
	r := newLoginRouter(loginFunc(func(context.Context, request.LoginRequest, request.LoginMeta) (string, error) {
		return "", errorx.ErrInvalidCredentials
	}))

	w := doLogin(r, zlibBody(t, `{"username":"ann","password":"nope"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"ok":0,"error":"Invalid Credentials"}`, w.Body.String())
}

func TestLoginRejectsBadBodies(t *testing.T) {
	called := false
	r := newLoginRouter(loginFunc(func(context.Context, request.LoginRequest, request.LoginMeta) (string, error) {
		called = true
		return "", nil
	}))

	w := doLogin(r, bytes.NewBufferString(`{"username":"ann","password":"pw"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doLogin(r, zlibBody(t, `{"username":"","password":"pw"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}

func TestLoginServerError(t *testing.T) {
	r := newLoginRouter(loginFunc(func(context.Context, request.LoginRequest, request.LoginMeta) (string, error) {
		return "", errors.New("db down")
	}))
	w := doLogin(r, zlibBody(t, `{"username":"ann","password":"pw"}`))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

package https_server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat_gateway_server/internal/config"
	"chat_gateway_server/internal/dto/request"
	"chat_gateway_server/internal/gateway"
	"chat_gateway_server/internal/handler"
)

type stubLogin struct{}

func (stubLogin) Login(context.Context, request.LoginRequest, request.LoginMeta) (string, error) {
	return "tok", nil
}

func denyAll(c *gin.Context) {
	c.AbortWithStatus(http.StatusUnauthorized)
}

func newEngine(t *testing.T, conf *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handlers := handler.NewHandlers(
		handler.NewAuthHandler(stubLogin{}, handler.CookieOptions{}),
		handler.NewWsHandler(gateway.Deps{Hub: gateway.NewHub()}, handler.WsOptions{AllowOrigins: []string{"*"}}),
	)
	return Init(conf, handlers, denyAll)
}

func defaultConfig() *config.Config {
	return &config.Config{
		MainConfig: config.MainConfig{Host: "localhost", Port: 8443, Mode: "dev"},
		CorsConfig: config.CorsConfig{AllowOrigins: []string{"*"}},
	}
}

func TestRoutes(t *testing.T) {
	engine := newEngine(t, defaultConfig())

	var body bytes.Buffer
	zw := zlib.NewWriter(&body)
	_, err := zw.Write([]byte(`{"username":"ann","password":"pw"}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", &body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token":"tok"}`, w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws/stats", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":1000,"msg":"success","data":{"connections":0}}`, w.Body.String())
}

func TestCorsPreflight(t *testing.T) {
	engine := newEngine(t, defaultConfig())

	req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTLSRedirect(t *testing.T) {
	conf := defaultConfig()
	conf.TLSConfig.Redirect = true
	conf.MainConfig.Mode = "release"
	engine := newEngine(t, conf)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://localhost/ws/stats", nil))
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
}

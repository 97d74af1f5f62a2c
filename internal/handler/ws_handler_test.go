package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat_gateway_server/internal/codec"
	myredis "chat_gateway_server/internal/dao/redis"
	"chat_gateway_server/internal/dto/request"
	"chat_gateway_server/internal/dto/respond"
	"chat_gateway_server/internal/gateway"
	"chat_gateway_server/internal/infrastructure/middleware"
	"chat_gateway_server/internal/model"
	"chat_gateway_server/internal/service/presence"
	"chat_gateway_server/pkg/errorx"
)

type authFunc func(ctx context.Context, token string) (*request.AuthUser, error)

func (f authFunc) Authenticate(ctx context.Context, token string) (*request.AuthUser, error) {
	return f(ctx, token)
}

type stateFunc func(ctx context.Context, userID string) (*respond.InitialState, error)

func (f stateFunc) GetInitialState(ctx context.Context, userID string) (*respond.InitialState, error) {
	return f(ctx, userID)
}

// principals token -> 调用方
var principals = map[string]*request.AuthUser{
	"with-session": {
		User:    model.User{ID: "u1", Username: "ann"},
		Session: &model.Session{ID: "s1", UserID: "u1"},
	},
	"no-session": {User: model.User{ID: "u2"}},
	"broken": {
		User:    model.User{ID: "u3"},
		Session: &model.Session{ID: "s3", UserID: "u3"},
	},
}

func newGatewayServer(t *testing.T) (*httptest.Server, *gateway.Hub) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := myredis.NewRedisCache(client)
	bus := myredis.NewRedisBus(client)
	hub := gateway.NewHub()
	deps := gateway.Deps{
		State: stateFunc(func(_ context.Context, userID string) (*respond.InitialState, error) {
			if userID == "u3" {
				return nil, errorx.New(errorx.CodeAggregateFailed, "初始状态构建失败")
			}
			return &respond.InitialState{
				Me:    respond.Profile{ID: userID},
				Users: map[string]respond.Profile{"u9": {ID: "u9"}},
			}, nil
		}),
		Presence: presence.NewService(presence.Config{Cache: cache, Bus: bus}),
		Cache:    cache,
		Bus:      bus,
		Hub:      hub,
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	ws := NewWsHandler(deps, WsOptions{ReadBufferSize: 1024, WriteBufferSize: 1024, AllowOrigins: []string{"*"}})
	auth := middleware.JWTAuth(authFunc(func(_ context.Context, token string) (*request.AuthUser, error) {
		if p, ok := principals[token]; ok {
			return p, nil
		}
		return nil, errorx.ErrUnauthorized
	}))
	r.GET("/ws", auth, ws.Connect)
	r.GET("/ws/stats", ws.Stats)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub
}

func dial(srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	return websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
}

func readFrame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	raw, err := codec.Decompress(data)
	require.NoError(t, err)
	return string(raw)
}

func TestWsConnectPingPong(t *testing.T) {
	srv, hub := newGatewayServer(t)

	conn, _, err := dial(srv, "with-session")
	require.NoError(t, err)
	defer conn.Close()

	initFrame := readFrame(t, conn)
	assert.Contains(t, initFrame, `"type":"INIT"`)
	assert.Contains(t, initFrame, `"session":"s1"`)
	assert.Contains(t, initFrame, `"u9":{"presence":"OFFLINE","lastSeen":null}`)

	ping, err := codec.EncodeFrame(codec.TypePing, nil)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, ping))
	assert.JSONEq(t, `{"type":"PONG","data":null}`, readFrame(t, conn))
	assert.Equal(t, 1, hub.Count())

	resp, err := http.Get(srv.URL + "/ws/stats")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWsConnectRejections(t *testing.T) {
	srv, hub := newGatewayServer(t)

	cases := map[string]int{
		"unknown":    http.StatusUnauthorized,
		"no-session": http.StatusUnauthorized,
		"broken":     http.StatusServiceUnavailable,
	}
	for token, status := range cases {
		t.Run(token, func(t *testing.T) {
			_, resp, err := dial(srv, token)
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			require.NotNil(t, resp)
			defer resp.Body.Close()
			assert.Equal(t, status, resp.StatusCode)
		})
	}
	assert.Zero(t, hub.Count())
}

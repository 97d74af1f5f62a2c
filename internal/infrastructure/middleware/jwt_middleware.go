package middleware

import (
	"context"
	"net/http"
	"strings"

	"chat_gateway_server/internal/dto/request"
	"chat_gateway_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenCookie 登录时下发的 cookie 名
const TokenCookie = "token"

const authUserKey = "auth_user"

// Authenticator 由 token 还原调用方
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*request.AuthUser, error)
}

// JWTAuth 认证中间件
// token 优先取 cookie，其次取 Authorization: Bearer
func JWTAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortUnauthorized(c, "请先登录")
			return
		}

		principal, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errorx.HasCode(err, errorx.CodeUnauthorized) {
				abortUnauthorized(c, "Token 已过期或无效，请重新登录")
				return
			}
			zap.L().Error("authenticate failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code": errorx.CodeServerBusy,
				"msg":  errorx.ErrServerBusy.Msg,
			})
			return
		}

		c.Set(authUserKey, principal)
		c.Next()
	}
}

// GetAuthUser 读取 JWTAuth 写入的调用方
func GetAuthUser(c *gin.Context) (*request.AuthUser, bool) {
	v, ok := c.Get(authUserKey)
	if !ok {
		return nil, false
	}
	principal, ok := v.(*request.AuthUser)
	return principal, ok && principal != nil
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code": errorx.CodeUnauthorized,
		"msg":  msg,
	})
}

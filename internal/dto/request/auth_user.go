package request

import "chat_gateway_server/internal/model"

// AuthUser 认证中间件解析出的调用方
// Session 和 PushToken 可能为空
type AuthUser struct {
	User      model.User
	Session   *model.Session
	PushToken *model.PushToken
}

// SessionID 无会话时返回空串
func (a *AuthUser) SessionID() string {
	if a == nil || a.Session == nil {
		return ""
	}
	return a.Session.ID
}

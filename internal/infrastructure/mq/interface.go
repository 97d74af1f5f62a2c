// Package mq 将网关会话生命周期事件写入消息队列
// eventMode=kafka 时写 Kafka，否则为空实现
package mq

import (
	"context"
	"time"
)

// 事件类型
const (
	EventSessionConnected    = "SESSION_CONNECTED"
	EventSessionDisconnected = "SESSION_DISCONNECTED"
	EventPushTokenRegistered = "PUSH_TOKEN_REGISTERED"
)

// LifecycleEvent 会话生命周期事件
type LifecycleEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	ConnID    string    `json:"conn_id,omitempty"`
	At        time.Time `json:"at"`
}

// EventWriter 事件写入接口
type EventWriter interface {
	// WriteEvent 以 UserID 为 key 写入，同一用户的事件落在同一分区
	WriteEvent(ctx context.Context, event LifecycleEvent) error
	Close() error
}

// NopWriter 丢弃所有事件
type NopWriter struct{}

func (NopWriter) WriteEvent(context.Context, LifecycleEvent) error { return nil }
func (NopWriter) Close() error                                   { return nil }

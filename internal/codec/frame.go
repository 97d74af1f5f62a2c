package codec

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"chat_gateway_server/pkg/errorx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// 帧类型
const (
	TypeInit           = "INIT"
	TypePing           = "PING"
	TypePong           = "PONG"
	TypePushToken      = "PUSH_TOKEN"
	TypePresenceUpdate = "PRESENCE_UPDATE"
)

var (
	// ErrMalformedFrame 数据不是合法的压缩流
	ErrMalformedFrame = errorx.New(errorx.CodeCodecError, "malformed compressed frame")
	// ErrInvalidPayload 解压成功但内容不是合法的帧
	ErrInvalidPayload = errorx.New(errorx.CodeCodecError, "invalid frame payload")
)

type outFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type inFrame struct {
	Type string              `json:"type"`
	Data jsoniter.RawMessage `json:"data"`
}

// EncodeFrame 序列化并压缩一帧，data 为 nil 时输出 "data":null
func EncodeFrame(frameType string, data any) ([]byte, error) {
	raw, err := json.Marshal(outFrame{Type: frameType, Data: data})
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeCodecError, "encode %s frame", frameType)
	}
	return Compress(raw)
}

// Event 客户端上行事件，仅限本包定义的几种
type Event interface {
	EventType() string
	isEvent()
}

// PingEvent 心跳
type PingEvent struct{}

// PushTokenEvent 注册推送 token
type PushTokenEvent struct {
	Token string `json:"token" validate:"required,max=4096"`
}

// UnknownEvent 无法识别的类型，调用方忽略即可
type UnknownEvent struct {
	Type string
}

func (PingEvent) EventType() string      { return TypePing }
func (PushTokenEvent) EventType() string { return TypePushToken }
func (e UnknownEvent) EventType() string { return e.Type }

func (PingEvent) isEvent()      {}
func (PushTokenEvent) isEvent() {}
func (UnknownEvent) isEvent()   {}

// DecodeEvent 解压并解析客户端帧
// 解压失败返回 ErrMalformedFrame；JSON 或 data 结构不合法返回 ErrInvalidPayload
func DecodeEvent(data []byte) (Event, error) {
	raw, err := Decompress(data)
	if err != nil {
		return nil, err
	}

	var frame inFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	switch frame.Type {
	case TypePing:
		return PingEvent{}, nil
	case TypePushToken:
		if len(frame.Data) == 0 || bytes.Equal(bytes.TrimSpace(frame.Data), []byte("null")) {
			return nil, fmt.Errorf("%w: %s without data", ErrInvalidPayload, frame.Type)
		}
		var ev PushTokenEvent
		if err := json.Unmarshal(frame.Data, &ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return ev, nil
	default:
		return UnknownEvent{Type: frame.Type}, nil
	}
}

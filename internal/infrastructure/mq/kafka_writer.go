package mq

import (
	"context"
	"time"

	"chat_gateway_server/internal/config"
	"chat_gateway_server/pkg/errorx"

	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// messageWriter *kafka.Writer 的最小子集
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaWriter 基于 segmentio/kafka-go 的 EventWriter
type KafkaWriter struct {
	writer messageWriter
	topic  string
}

// NewKafkaWriter 根据配置创建 Kafka 生产者
func NewKafkaWriter(conf *config.KafkaConfig) *KafkaWriter {
	return newKafkaWriter(&kafka.Writer{
		Addr:                   kafka.TCP(conf.HostPort),
		Topic:                  conf.EventTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           conf.Timeout * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}, conf.EventTopic)
}

func newKafkaWriter(w messageWriter, topic string) *KafkaWriter {
	return &KafkaWriter{writer: w, topic: topic}
}

// NewEventWriter 按 eventMode 选择实现
func NewEventWriter(conf *config.KafkaConfig) EventWriter {
	if conf.EventMode == "kafka" {
		zap.L().Info("lifecycle events enabled", zap.String("broker", conf.HostPort), zap.String("topic", conf.EventTopic))
		return NewKafkaWriter(conf)
	}
	return NopWriter{}
}

// WriteEvent 序列化并写入一条事件
func (k *KafkaWriter) WriteEvent(ctx context.Context, event LifecycleEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeEventPublishError, "encode lifecycle event")
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: value,
	}); err != nil {
		return errorx.Wrapf(err, errorx.CodeEventPublishError, "kafka write topic=%s", k.topic)
	}
	return nil
}

// Close 刷新并关闭生产者
func (k *KafkaWriter) Close() error {
	return k.writer.Close()
}

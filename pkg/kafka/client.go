// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"support-bot-go/internal/config"
	"support-bot-go/pkg/events"
	"support-bot-go/pkg/log"

	"github.com/segmentio/kafka-go"
)

// Producer 封装了对话轮次事件的 Kafka 生产者。
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 初始化 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
	return &Producer{writer: writer}
}

// PublishTurnEvent 发送一条对话轮次事件到 Kafka。
func (p *Producer) PublishTurnEvent(ctx context.Context, event events.ChatTurnEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx,
		kafka.Message{
			Value: eventBytes,
		},
	)
}

// Close 关闭底层的 Kafka writer。
func (p *Producer) Close() error {
	return p.writer.Close()
}

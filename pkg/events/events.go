// Package events 定义了发往 Kafka 的事件结构。
package events

import "time"

// ChatTurnEvent 代表一个已完成的对话轮次，发布给下游统计消费。
type ChatTurnEvent struct {
	UserID     uint      `json:"user_id"`
	Intent     string    `json:"intent"`
	Confidence float64   `json:"confidence"`
	AIUsed     bool      `json:"ai_used"`
	Timestamp  time.Time `json:"timestamp"`
}

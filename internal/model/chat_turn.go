// Package model 包含了应用的数据模型定义。
package model

import "time"

// ChatTurn 代表一次完整的问答轮次，按 user_id + created_at 追加写入。
// 它是对话历史、记忆摘要和管理端统计的唯一事实来源。
type ChatTurn struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"userId"`
	UserMessage string    `gorm:"type:text;not null" json:"userMessage"`
	Intent      string    `gorm:"size:32;index;not null" json:"intent"`
	Confidence  float64   `gorm:"not null" json:"confidence"`
	BotReply    string    `gorm:"type:text;not null" json:"botReply"`
	AIUsed      bool      `gorm:"not null" json:"aiUsed"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (ChatTurn) TableName() string {
	return "chat_turns"
}

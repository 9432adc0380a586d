// Package model 包含了应用的数据模型定义。
package model

import "time"

// MemorySummary 代表某个用户的滚动对话记忆摘要，每用户一行，按轮次覆盖更新。
// 它是派生数据，随时可以从 ChatTurn 历史重新计算出来。
type MemorySummary struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"userId"`
	Summary   string    `gorm:"type:text" json:"summary"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (MemorySummary) TableName() string {
	return "memory_summaries"
}

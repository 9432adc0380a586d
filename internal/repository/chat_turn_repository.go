// Package repository 提供了数据访问层的实现。
package repository

import (
	"support-bot-go/internal/model"

	"gorm.io/gorm"
)

// UserTurnCount 是按用户分组的轮次计数。
type UserTurnCount struct {
	UserID uint  `json:"userId"`
	Count  int64 `json:"count"`
}

// IntentCount 是按意图分组的轮次计数。
type IntentCount struct {
	Intent string `json:"intent"`
	Count  int64  `json:"count"`
}

// DailyCount 是按自然日分组的轮次计数，Day 格式为 YYYY-MM-DD。
type DailyCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// ChatTurnRepository 定义了对话轮次的持久化与聚合查询接口。
type ChatTurnRepository interface {
	Create(turn *model.ChatTurn) error
	FindByUserID(userID uint) ([]model.ChatTurn, error)
	FindRecentByUserID(userID uint, limit int) ([]model.ChatTurn, error)
	FindLatestByUserID(userID uint) (*model.ChatTurn, error)
	CountAll() (int64, error)
	CountAIUsed() (int64, error)
	CountByUser() ([]UserTurnCount, error)
	CountByIntent() ([]IntentCount, error)
	CountByDay() ([]DailyCount, error)
}

// chatTurnRepository 是 ChatTurnRepository 接口的 GORM 实现。
type chatTurnRepository struct {
	db *gorm.DB
}

// NewChatTurnRepository 创建一个新的 ChatTurnRepository 实例。
func NewChatTurnRepository(db *gorm.DB) ChatTurnRepository {
	return &chatTurnRepository{db: db}
}

// Create 追加写入一条对话轮次记录。
func (r *chatTurnRepository) Create(turn *model.ChatTurn) error {
	return r.db.Create(turn).Error
}

// FindByUserID 按时间正序返回某个用户的全部对话轮次。
func (r *chatTurnRepository) FindByUserID(userID uint) ([]model.ChatTurn, error) {
	var turns []model.ChatTurn
	err := r.db.Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&turns).Error
	return turns, err
}

// FindRecentByUserID 按时间倒序返回某个用户最近的 limit 条轮次。
func (r *chatTurnRepository) FindRecentByUserID(userID uint, limit int) ([]model.ChatTurn, error) {
	var turns []model.ChatTurn
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&turns).Error
	return turns, err
}

// FindLatestByUserID 返回某个用户最近的一条轮次；没有历史时返回 gorm.ErrRecordNotFound。
func (r *chatTurnRepository) FindLatestByUserID(userID uint) (*model.ChatTurn, error) {
	var turn model.ChatTurn
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&turn).Error
	if err != nil {
		return nil, err
	}
	return &turn, nil
}

// CountAll 返回全部轮次总数。
func (r *chatTurnRepository) CountAll() (int64, error) {
	var total int64
	err := r.db.Model(&model.ChatTurn{}).Count(&total).Error
	return total, err
}

// CountAIUsed 返回走了 AI 兜底路径的轮次总数。
func (r *chatTurnRepository) CountAIUsed() (int64, error) {
	var total int64
	err := r.db.Model(&model.ChatTurn{}).Where("ai_used = ?", true).Count(&total).Error
	return total, err
}

// CountByUser 按用户分组统计轮次数，按数量降序排列。
func (r *chatTurnRepository) CountByUser() ([]UserTurnCount, error) {
	var rows []UserTurnCount
	err := r.db.Model(&model.ChatTurn{}).
		Select("user_id AS user_id, COUNT(*) AS count").
		Group("user_id").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// CountByIntent 按意图分组统计轮次数，按数量降序排列。
func (r *chatTurnRepository) CountByIntent() ([]IntentCount, error) {
	var rows []IntentCount
	err := r.db.Model(&model.ChatTurn{}).
		Select("intent AS intent, COUNT(*) AS count").
		Group("intent").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// CountByDay 按自然日分组统计轮次数，按日期升序排列。
func (r *chatTurnRepository) CountByDay() ([]DailyCount, error) {
	var rows []DailyCount
	err := r.db.Model(&model.ChatTurn{}).
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') AS day, COUNT(*) AS count").
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	return rows, err
}

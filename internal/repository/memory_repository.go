// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"errors"
	"fmt"
	"support-bot-go/internal/model"
	"support-bot-go/pkg/log"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// memoryCacheTTL 是记忆摘要在 Redis 中的缓存时长。
const memoryCacheTTL = 24 * time.Hour

// MemoryRepository 定义了用户记忆摘要的持久化操作。
// MySQL 为权威存储（摘要必须在重启与多实例间存活），Redis 作为读穿缓存。
type MemoryRepository interface {
	Upsert(ctx context.Context, userID uint, summary string) error
	Get(ctx context.Context, userID uint) (string, error)
}

type memoryRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewMemoryRepository 创建一个新的 MemoryRepository 实例。
// rdb 可以为 nil，此时只使用 MySQL。
func NewMemoryRepository(db *gorm.DB, rdb *redis.Client) MemoryRepository {
	return &memoryRepository{db: db, rdb: rdb}
}

func memoryCacheKey(userID uint) string {
	return fmt.Sprintf("memory:summary:%d", userID)
}

// Upsert 覆盖写入某个用户的记忆摘要，并刷新缓存。
func (r *memoryRepository) Upsert(ctx context.Context, userID uint, summary string) error {
	record := model.MemorySummary{UserID: userID, Summary: summary}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"summary", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert memory summary: %w", err)
	}

	// 缓存只做加速，写入失败不影响主流程
	if r.rdb != nil {
		if err := r.rdb.Set(ctx, memoryCacheKey(userID), summary, memoryCacheTTL).Err(); err != nil {
			log.Warnf("刷新记忆摘要缓存失败, userID: %d, err: %v", userID, err)
		}
	}
	return nil
}

// Get 返回某个用户的记忆摘要；没有记录时返回空字符串而不是错误。
func (r *memoryRepository) Get(ctx context.Context, userID uint) (string, error) {
	if r.rdb != nil {
		cached, err := r.rdb.Get(ctx, memoryCacheKey(userID)).Result()
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			log.Warnf("读取记忆摘要缓存失败, userID: %d, err: %v", userID, err)
		}
	}

	var record model.MemorySummary
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get memory summary: %w", err)
	}

	if r.rdb != nil {
		if err := r.rdb.Set(ctx, memoryCacheKey(userID), record.Summary, memoryCacheTTL).Err(); err != nil {
			log.Warnf("回填记忆摘要缓存失败, userID: %d, err: %v", userID, err)
		}
	}
	return record.Summary, nil
}

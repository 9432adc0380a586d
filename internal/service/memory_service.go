// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"support-bot-go/internal/chatbot"
	"support-bot-go/internal/repository"

	"gorm.io/gorm"
)

// MemoryService 维护每个用户的滚动对话记忆。
// 摘要是朴素的"截取最后几行拼接"，不做任何语义压缩——这是有意的简化，
// 摘要只用来给 AI 兜底提供少量上下文，不追求忠实概括。
type MemoryService interface {
	// RecentMessages 返回最近 limit 轮对话的文本转写，
	// 按时间正序逐行交替排列 "User: …" / "Bot: …"。
	RecentMessages(ctx context.Context, userID uint, limit int) (string, error)
	// Summarize 取转写文本的最后几行，用 " | " 拼接成摘要；空输入返回空摘要。
	Summarize(text string) string
	// UpdateMemory 重新计算并覆盖写入某个用户的记忆摘要。
	// 必须在轮次持久化之后调用，这样新轮次才会进入下一次摘要。
	UpdateMemory(ctx context.Context, userID uint) error
	// GetMemory 返回当前记忆摘要，不存在时返回空字符串。
	GetMemory(ctx context.Context, userID uint) (string, error)
	// GetLastContext 返回最近一条轮次的意图与回复；用户没有历史时 ok 为 false。
	GetLastContext(ctx context.Context, userID uint) (intent chatbot.Intent, reply string, ok bool, err error)
}

type memoryService struct {
	chatRepo     repository.ChatTurnRepository
	memoryRepo   repository.MemoryRepository
	window       int // 参与转写的最近轮次数
	summaryLines int // 进入摘要的行数
}

// NewMemoryService 创建一个新的 MemoryService 实例。
func NewMemoryService(chatRepo repository.ChatTurnRepository, memoryRepo repository.MemoryRepository, window, summaryLines int) MemoryService {
	if window <= 0 {
		window = 5
	}
	if summaryLines <= 0 {
		summaryLines = 4
	}
	return &memoryService{
		chatRepo:     chatRepo,
		memoryRepo:   memoryRepo,
		window:       window,
		summaryLines: summaryLines,
	}
}

// RecentMessages 取最近 limit 轮（按时间倒序查询后反转为正序），
// 每轮展开为一行用户消息和一行机器人回复。
func (s *memoryService) RecentMessages(ctx context.Context, userID uint, limit int) (string, error) {
	if limit <= 0 {
		limit = s.window
	}
	turns, err := s.chatRepo.FindRecentByUserID(userID, limit)
	if err != nil {
		return "", fmt.Errorf("failed to load recent turns: %w", err)
	}

	// 查询结果是 newest-first，反转成时间正序
	lines := make([]string, 0, len(turns)*2)
	for i := len(turns) - 1; i >= 0; i-- {
		lines = append(lines, "User: "+turns[i].UserMessage)
		lines = append(lines, "Bot: "+turns[i].BotReply)
	}
	return strings.Join(lines, "\n"), nil
}

// Summarize 取最后 summaryLines 行拼接为摘要。
func (s *memoryService) Summarize(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > s.summaryLines {
		lines = lines[len(lines)-s.summaryLines:]
	}
	return strings.Join(lines, " | ")
}

// UpdateMemory 重新计算并覆盖写入记忆摘要。
func (s *memoryService) UpdateMemory(ctx context.Context, userID uint) error {
	recent, err := s.RecentMessages(ctx, userID, s.window)
	if err != nil {
		return err
	}
	summary := s.Summarize(recent)
	return s.memoryRepo.Upsert(ctx, userID, summary)
}

// GetMemory 返回当前记忆摘要。
func (s *memoryService) GetMemory(ctx context.Context, userID uint) (string, error) {
	return s.memoryRepo.Get(ctx, userID)
}

// GetLastContext 返回最近一条轮次的意图与回复。
func (s *memoryService) GetLastContext(ctx context.Context, userID uint) (chatbot.Intent, string, bool, error) {
	turn, err := s.chatRepo.FindLatestByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("failed to load latest turn: %w", err)
	}
	return chatbot.Intent(turn.Intent), turn.BotReply, true, nil
}

// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"strings"
	"support-bot-go/internal/chatbot"
	"support-bot-go/internal/model"
	"support-bot-go/internal/repository"
	"support-bot-go/pkg/events"
	"support-bot-go/pkg/llm"
	"support-bot-go/pkg/log"
	"time"
)

// ChatResponse 是一次 /chat 调用的完整结果。
type ChatResponse struct {
	UserID     uint           `json:"userId"`
	Message    string         `json:"message"`
	Intent     chatbot.Intent `json:"intent"`
	Confidence float64        `json:"confidence"`
	BotReply   string         `json:"botReply"`
	AIUsed     bool           `json:"aiUsed"`
	MemoryUsed bool           `json:"memoryUsed"`
}

// TurnEventPublisher 抽象了轮次事件的发布端，解耦具体的 Kafka 实现。
type TurnEventPublisher interface {
	PublishTurnEvent(ctx context.Context, event events.ChatTurnEvent) error
}

// ChatService 是每条消息的中央决策引擎：
// 分类 → 上下文覆写 → 规则回复或 AI 兜底 → 持久化 → 更新记忆。
type ChatService interface {
	HandleMessage(ctx context.Context, user *model.User, message string) (*ChatResponse, error)
	// GetHistory 返回某个用户按时间正序排列的全部对话轮次。
	GetHistory(ctx context.Context, userID uint) ([]model.ChatTurn, error)
}

type chatService struct {
	chatRepo      repository.ChatTurnRepository
	memoryService MemoryService
	llmClient     llm.Client
	publisher     TurnEventPublisher // 可以为 nil，此时不发布事件
	thresholds    chatbot.Thresholds
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(
	chatRepo repository.ChatTurnRepository,
	memoryService MemoryService,
	llmClient llm.Client,
	publisher TurnEventPublisher,
	thresholds chatbot.Thresholds,
) ChatService {
	return &chatService{
		chatRepo:      chatRepo,
		memoryService: memoryService,
		llmClient:     llmClient,
		publisher:     publisher,
		thresholds:    thresholds,
	}
}

// HandleMessage 处理一条用户消息并返回完整的应答结果。
//
// 路由策略是两级阈值：置信度低于 Fallback 阈值（或意图未知）时走 AI 兜底；
// 规则路径内部另有更低的 Clarify 阈值控制澄清话术。注意两者的交互：
// 置信度落在 [Clarify, Fallback) 区间的消息永远到不了规则路径，
// 因为 Fallback 这道闸先把它们送去了 AI。这是有意保留的策略，不是缺陷。
func (s *chatService) HandleMessage(ctx context.Context, user *model.User, message string) (*ChatResponse, error) {
	// 1. 读取记忆摘要与上一轮意图
	memorySummary, err := s.memoryService.GetMemory(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	lastIntent, _, hasHistory, err := s.memoryService.GetLastContext(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	// 2. 意图分类
	result := chatbot.Classify(message)

	// 3. 上下文覆写：退款/订单对话之后的纯数字消息几乎一定是单号，
	// 无条件覆写为 order_reference（分类器自身的数字规则不掌握这个上下文）
	if chatbot.IsAllDigits(strings.TrimSpace(message)) && hasHistory &&
		(lastIntent == chatbot.IntentRefundRequest || lastIntent == chatbot.IntentOrderStatus) {
		result = chatbot.ClassificationResult{Intent: chatbot.IntentOrderReference, Confidence: 0.9}
	}

	// 4. 路由决策
	var botReply string
	var aiUsed bool
	if result.Confidence < s.thresholds.Fallback || result.Intent == chatbot.IntentUnknown {
		botReply = s.fallbackReply(ctx, memorySummary, message)
		aiUsed = true
	} else {
		botReply = chatbot.Respond(result.Intent, result.Confidence, s.thresholds)
		aiUsed = false
	}

	// 5. 持久化轮次。写入失败直接上抛：轮次无法可靠记录时不能返回部分成功
	turn := &model.ChatTurn{
		UserID:      user.ID,
		UserMessage: message,
		Intent:      string(result.Intent),
		Confidence:  result.Confidence,
		BotReply:    botReply,
		AIUsed:      aiUsed,
	}
	if err := s.chatRepo.Create(turn); err != nil {
		return nil, err
	}

	// 6. 更新记忆，让刚写入的轮次进入下一次摘要
	if err := s.memoryService.UpdateMemory(ctx, user.ID); err != nil {
		return nil, err
	}

	// 7. 发布轮次事件供下游统计消费，尽力而为
	if s.publisher != nil {
		event := events.ChatTurnEvent{
			UserID:     user.ID,
			Intent:     string(result.Intent),
			Confidence: result.Confidence,
			AIUsed:     aiUsed,
			Timestamp:  time.Now(),
		}
		if err := s.publisher.PublishTurnEvent(ctx, event); err != nil {
			log.Warnf("发布轮次事件失败, userID: %d, err: %v", user.ID, err)
		}
	}

	return &ChatResponse{
		UserID:     user.ID,
		Message:    message,
		Intent:     result.Intent,
		Confidence: result.Confidence,
		BotReply:   botReply,
		AIUsed:     aiUsed,
		MemoryUsed: memorySummary != "",
	}, nil
}

// fallbackReply 调用补全服务生成兜底回复。
// 任何失败都被翻译为固定的降级话术，从不向调用方抛错——
// 对话轮次照常落库，历史保持一致。
func (s *chatService) fallbackReply(ctx context.Context, memorySummary, message string) string {
	prompt := "Conversation memory:\n" + memorySummary + "\nUser: " + message
	messages := []llm.Message{
		{Role: "system", Content: "You are a helpful customer support assistant."},
		{Role: "user", Content: prompt},
	}

	reply, err := s.llmClient.Complete(ctx, messages)
	if err != nil {
		log.Warnf("AI 兜底调用失败，返回降级话术: %v", err)
		return chatbot.ReplyUnavailable
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return chatbot.ReplyUnavailable
	}
	return reply
}

// GetHistory 返回某个用户的完整对话历史，时间正序。
func (s *chatService) GetHistory(ctx context.Context, userID uint) ([]model.ChatTurn, error) {
	return s.chatRepo.FindByUserID(userID)
}

package service

import (
	"context"
	"testing"

	"support-bot-go/internal/chatbot"
	"support-bot-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatFixture struct {
	chatRepo  *fakeChatTurnRepo
	memRepo   *fakeMemoryRepo
	llmClient *fakeLLMClient
	publisher *fakePublisher
	svc       ChatService
}

func newChatFixture() *chatFixture {
	chatRepo := newFakeChatTurnRepo()
	memRepo := newFakeMemoryRepo()
	llmClient := &fakeLLMClient{reply: "ai generated reply"}
	publisher := &fakePublisher{}
	memSvc := NewMemoryService(chatRepo, memRepo, 5, 4)
	svc := NewChatService(chatRepo, memSvc, llmClient, publisher, chatbot.DefaultThresholds())
	return &chatFixture{
		chatRepo:  chatRepo,
		memRepo:   memRepo,
		llmClient: llmClient,
		publisher: publisher,
		svc:       svc,
	}
}

var testUser = &model.User{ID: 1, Username: "alice", Role: model.RoleUser}

func TestHandleMessageRulePath(t *testing.T) {
	f := newChatFixture()

	resp, err := f.svc.HandleMessage(context.Background(), testUser, "hi hello hey")
	require.NoError(t, err)

	assert.Equal(t, chatbot.IntentGreeting, resp.Intent)
	assert.Equal(t, 1.0, resp.Confidence)
	assert.Equal(t, "Hello! How can I help you today?", resp.BotReply)
	assert.False(t, resp.AIUsed)
	assert.False(t, resp.MemoryUsed)
	// 规则路径不应触碰补全客户端
	assert.Equal(t, 0, f.llmClient.calls)

	require.Len(t, f.chatRepo.turns, 1)
	turn := f.chatRepo.turns[0]
	assert.Equal(t, "hi hello hey", turn.UserMessage)
	assert.False(t, turn.AIUsed)
}

func TestHandleMessageUnknownRoutesToAI(t *testing.T) {
	f := newChatFixture()

	resp, err := f.svc.HandleMessage(context.Background(), testUser, "xyzabc qwerty")
	require.NoError(t, err)

	assert.Equal(t, chatbot.IntentUnknown, resp.Intent)
	assert.Equal(t, 0.0, resp.Confidence)
	assert.Equal(t, "ai generated reply", resp.BotReply)
	assert.True(t, resp.AIUsed)
	assert.Equal(t, 1, f.llmClient.calls)

	require.Len(t, f.chatRepo.turns, 1)
	assert.True(t, f.chatRepo.turns[0].AIUsed)
}

func TestHandleMessageMidBandRoutesToAI(t *testing.T) {
	// 置信度落在 [Clarify, Fallback) 区间的消息由 Fallback 闸门送去 AI，
	// 永远到不了规则路径里的澄清话术
	f := newChatFixture()

	resp, err := f.svc.HandleMessage(context.Background(), testUser, "hello there")
	require.NoError(t, err)

	assert.Equal(t, chatbot.IntentGreeting, resp.Intent)
	assert.Equal(t, 0.33, resp.Confidence)
	assert.True(t, resp.AIUsed)
	assert.Equal(t, "ai generated reply", resp.BotReply)
}

func TestHandleMessageDigitsOnly(t *testing.T) {
	f := newChatFixture()

	resp, err := f.svc.HandleMessage(context.Background(), testUser, "12345")
	require.NoError(t, err)

	assert.Equal(t, chatbot.IntentOrderReference, resp.Intent)
	assert.Equal(t, 0.9, resp.Confidence)
	assert.Equal(t, "Thanks! I have received your reference number. Our team will process it shortly.", resp.BotReply)
	assert.False(t, resp.AIUsed)
}

func TestHandleMessageContextOverrideAfterRefund(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	// 第一轮：退款请求走规则路径
	first, err := f.svc.HandleMessage(ctx, testUser, "refund return money back")
	require.NoError(t, err)
	require.Equal(t, chatbot.IntentRefundRequest, first.Intent)
	require.False(t, first.AIUsed)

	// 第二轮：纯数字消息在退款上下文中被覆写为订单号
	second, err := f.svc.HandleMessage(ctx, testUser, "98765")
	require.NoError(t, err)

	assert.Equal(t, chatbot.IntentOrderReference, second.Intent)
	assert.Equal(t, 0.9, second.Confidence)
	assert.Equal(t, "Thanks! I have received your reference number. Our team will process it shortly.", second.BotReply)
	assert.False(t, second.AIUsed)
	// 第一轮已写入记忆，第二轮应标记记忆可用
	assert.True(t, second.MemoryUsed)
}

func TestHandleMessageMemoryFlowsIntoPrompt(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	_, err := f.svc.HandleMessage(ctx, testUser, "hi hello hey")
	require.NoError(t, err)

	resp, err := f.svc.HandleMessage(ctx, testUser, "tell me a story")
	require.NoError(t, err)
	assert.True(t, resp.AIUsed)
	assert.True(t, resp.MemoryUsed)

	// 兜底 prompt 必须携带记忆摘要与当前消息
	require.Len(t, f.llmClient.lastMessages, 2)
	assert.Equal(t, "system", f.llmClient.lastMessages[0].Role)
	userPrompt := f.llmClient.lastMessages[1].Content
	assert.Contains(t, userPrompt, "Conversation memory:")
	assert.Contains(t, userPrompt, "User: hi hello hey")
	assert.Contains(t, userPrompt, "User: tell me a story")
}

func TestHandleMessageAIFailureDegrades(t *testing.T) {
	f := newChatFixture()
	f.llmClient.err = errStorageDown

	resp, err := f.svc.HandleMessage(context.Background(), testUser, "xyzabc qwerty")
	require.NoError(t, err)

	// 兜底失败被翻译为固定降级话术，不向调用方抛错
	assert.Equal(t, chatbot.ReplyUnavailable, resp.BotReply)
	assert.True(t, resp.AIUsed)

	// 轮次照常落库，历史保持一致
	require.Len(t, f.chatRepo.turns, 1)
	assert.Equal(t, chatbot.ReplyUnavailable, f.chatRepo.turns[0].BotReply)
	assert.True(t, f.chatRepo.turns[0].AIUsed)
}

func TestHandleMessageEmptyAIReplyDegrades(t *testing.T) {
	f := newChatFixture()
	f.llmClient.reply = "   "

	resp, err := f.svc.HandleMessage(context.Background(), testUser, "xyzabc qwerty")
	require.NoError(t, err)
	assert.Equal(t, chatbot.ReplyUnavailable, resp.BotReply)
}

func TestHandleMessageStorageErrorPropagates(t *testing.T) {
	f := newChatFixture()
	f.chatRepo.createErr = errStorageDown

	resp, err := f.svc.HandleMessage(context.Background(), testUser, "hi hello hey")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, errStorageDown)
}

func TestHandleMessageMemoryUpsertErrorPropagates(t *testing.T) {
	f := newChatFixture()
	f.memRepo.upsertErr = errStorageDown

	resp, err := f.svc.HandleMessage(context.Background(), testUser, "hi hello hey")
	require.Error(t, err)
	assert.Nil(t, resp)
}

func TestHandleMessagePublishesTurnEvent(t *testing.T) {
	f := newChatFixture()

	_, err := f.svc.HandleMessage(context.Background(), testUser, "hi hello hey")
	require.NoError(t, err)

	require.Len(t, f.publisher.events, 1)
	event := f.publisher.events[0]
	assert.Equal(t, uint(1), event.UserID)
	assert.Equal(t, string(chatbot.IntentGreeting), event.Intent)
	assert.Equal(t, 1.0, event.Confidence)
	assert.False(t, event.AIUsed)
	assert.False(t, event.Timestamp.IsZero())
}

func TestHandleMessagePublishFailureIsNonFatal(t *testing.T) {
	f := newChatFixture()
	f.publisher.err = errStorageDown

	resp, err := f.svc.HandleMessage(context.Background(), testUser, "hi hello hey")
	require.NoError(t, err)
	assert.NotNil(t, resp)
	require.Len(t, f.chatRepo.turns, 1)
}

func TestHandleMessageNilPublisher(t *testing.T) {
	chatRepo := newFakeChatTurnRepo()
	memSvc := NewMemoryService(chatRepo, newFakeMemoryRepo(), 5, 4)
	svc := NewChatService(chatRepo, memSvc, &fakeLLMClient{reply: "ok"}, nil, chatbot.DefaultThresholds())

	resp, err := svc.HandleMessage(context.Background(), testUser, "hi hello hey")
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestGetHistoryOrdering(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	_, err := f.svc.HandleMessage(ctx, testUser, "hi hello hey")
	require.NoError(t, err)
	_, err = f.svc.HandleMessage(ctx, testUser, "refund return money back")
	require.NoError(t, err)

	history, err := f.svc.GetHistory(ctx, testUser.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hi hello hey", history[0].UserMessage)
	assert.Equal(t, "refund return money back", history[1].UserMessage)
}

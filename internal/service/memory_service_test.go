package service

import (
	"context"
	"testing"

	"support-bot-go/internal/chatbot"
	"support-bot-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTurns(repo *fakeChatTurnRepo, userID uint, pairs [][2]string) {
	for _, p := range pairs {
		_ = repo.Create(&model.ChatTurn{
			UserID:      userID,
			UserMessage: p[0],
			BotReply:    p[1],
			Intent:      string(chatbot.IntentUnknown),
		})
	}
}

func TestRecentMessagesOrdering(t *testing.T) {
	chatRepo := newFakeChatTurnRepo()
	memRepo := newFakeMemoryRepo()
	svc := NewMemoryService(chatRepo, memRepo, 5, 4)

	seedTurns(chatRepo, 1, [][2]string{
		{"m1", "r1"},
		{"m2", "r2"},
		{"m3", "r3"},
	})

	got, err := svc.RecentMessages(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, "User: m1\nBot: r1\nUser: m2\nBot: r2\nUser: m3\nBot: r3", got)
}

func TestRecentMessagesWindow(t *testing.T) {
	chatRepo := newFakeChatTurnRepo()
	memRepo := newFakeMemoryRepo()
	svc := NewMemoryService(chatRepo, memRepo, 5, 4)

	// 写入 6 轮，窗口为 5，最早的一轮应被挤出
	seedTurns(chatRepo, 1, [][2]string{
		{"m1", "r1"}, {"m2", "r2"}, {"m3", "r3"},
		{"m4", "r4"}, {"m5", "r5"}, {"m6", "r6"},
	})

	got, err := svc.RecentMessages(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.NotContains(t, got, "User: m1")
	assert.Contains(t, got, "User: m2")
	assert.Contains(t, got, "User: m6")
}

func TestRecentMessagesEmptyHistory(t *testing.T) {
	svc := NewMemoryService(newFakeChatTurnRepo(), newFakeMemoryRepo(), 5, 4)
	got, err := svc.RecentMessages(context.Background(), 42, 5)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestSummarize(t *testing.T) {
	svc := NewMemoryService(newFakeChatTurnRepo(), newFakeMemoryRepo(), 5, 4)

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "空输入返回空摘要",
			text: "",
			want: "",
		},
		{
			name: "不足四行时全部保留",
			text: "User: hi\nBot: hello",
			want: "User: hi | Bot: hello",
		},
		{
			name: "恰好四行时保持不变",
			text: "a\nb\nc\nd",
			want: "a | b | c | d",
		},
		{
			name: "超过四行时只取最后四行",
			text: "a\nb\nc\nd\ne\nf",
			want: "c | d | e | f",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.Summarize(tt.text))
		})
	}
}

func TestUpdateMemoryRollingWindow(t *testing.T) {
	chatRepo := newFakeChatTurnRepo()
	memRepo := newFakeMemoryRepo()
	svc := NewMemoryService(chatRepo, memRepo, 5, 4)
	ctx := context.Background()

	// 5 轮对话 = 转写 10 行，摘要应只含最后 4 行（即最后两轮）
	seedTurns(chatRepo, 1, [][2]string{
		{"m1", "r1"}, {"m2", "r2"}, {"m3", "r3"}, {"m4", "r4"}, {"m5", "r5"},
	})

	require.NoError(t, svc.UpdateMemory(ctx, 1))

	summary, err := svc.GetMemory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "User: m4 | Bot: r4 | User: m5 | Bot: r5", summary)
}

func TestUpdateMemoryOverwrites(t *testing.T) {
	chatRepo := newFakeChatTurnRepo()
	memRepo := newFakeMemoryRepo()
	svc := NewMemoryService(chatRepo, memRepo, 5, 4)
	ctx := context.Background()

	seedTurns(chatRepo, 1, [][2]string{{"first", "reply1"}})
	require.NoError(t, svc.UpdateMemory(ctx, 1))

	seedTurns(chatRepo, 1, [][2]string{{"second", "reply2"}})
	require.NoError(t, svc.UpdateMemory(ctx, 1))

	summary, err := svc.GetMemory(ctx, 1)
	require.NoError(t, err)
	// 覆盖写入而不是追加：同一用户只保留一份最新摘要
	assert.Equal(t, "User: first | Bot: reply1 | User: second | Bot: reply2", summary)
}

func TestGetMemoryMissingUser(t *testing.T) {
	svc := NewMemoryService(newFakeChatTurnRepo(), newFakeMemoryRepo(), 5, 4)
	summary, err := svc.GetMemory(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, "", summary)
}

func TestGetLastContext(t *testing.T) {
	chatRepo := newFakeChatTurnRepo()
	svc := NewMemoryService(chatRepo, newFakeMemoryRepo(), 5, 4)
	ctx := context.Background()

	// 无历史：ok 为 false 且不报错
	_, _, ok, err := svc.GetLastContext(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_ = chatRepo.Create(&model.ChatTurn{
		UserID:      1,
		UserMessage: "I want a refund",
		Intent:      string(chatbot.IntentRefundRequest),
		BotReply:    "I can help with refunds. Please provide your order ID.",
	})

	intent, reply, ok, err := svc.GetLastContext(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, chatbot.IntentRefundRequest, intent)
	assert.Equal(t, "I can help with refunds. Please provide your order ID.", reply)
}

package chatbot

import (
	"testing"
)

func TestRespond(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name       string
		intent     Intent
		confidence float64
		want       string
	}{
		{
			name:       "高置信度问候返回固定话术",
			intent:     IntentGreeting,
			confidence: 1.0,
			want:       "Hello! How can I help you today?",
		},
		{
			name:       "密码重置话术",
			intent:     IntentPasswordReset,
			confidence: 0.67,
			want:       "To reset your password, click on 'Forgot Password' on the login page.",
		},
		{
			name:       "订单状态话术",
			intent:     IntentOrderStatus,
			confidence: 1.0,
			want:       "Please share your order ID so I can help track your order.",
		},
		{
			name:       "退款话术",
			intent:     IntentRefundRequest,
			confidence: 0.67,
			want:       "I can help with refunds. Please provide your order ID.",
		},
		{
			name:       "订单号确认话术",
			intent:     IntentOrderReference,
			confidence: 0.9,
			want:       "Thanks! I have received your reference number. Our team will process it shortly.",
		},
		{
			name:       "低于澄清阈值时统一要求补充信息",
			intent:     IntentOrderStatus,
			confidence: 0.29,
			want:       ReplyClarify,
		},
		{
			name:       "恰好等于澄清阈值时不触发澄清",
			intent:     IntentGreeting,
			confidence: 0.3,
			want:       "Hello! How can I help you today?",
		},
		{
			name:       "未知意图兜底转人工",
			intent:     IntentUnknown,
			confidence: 0.8,
			want:       ReplyHuman,
		},
		{
			name:       "未知意图且低置信度优先澄清",
			intent:     IntentUnknown,
			confidence: 0.0,
			want:       ReplyClarify,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Respond(tt.intent, tt.confidence, th)
			if got != tt.want {
				t.Errorf("Respond(%q, %v) = %q, want %q", tt.intent, tt.confidence, got, tt.want)
			}
		})
	}
}

func TestRespondDeterministic(t *testing.T) {
	th := DefaultThresholds()
	first := Respond(IntentRefundRequest, 0.67, th)
	for i := 0; i < 50; i++ {
		if got := Respond(IntentRefundRequest, 0.67, th); got != first {
			t.Fatalf("Respond 第 %d 次结果 %q 与首次 %q 不一致", i, got, first)
		}
	}
}

func TestRespondCustomThresholds(t *testing.T) {
	// 阈值可配：抬高 Clarify 后原本放行的置信度也会触发澄清
	th := Thresholds{Clarify: 0.7, Fallback: 0.9}
	if got := Respond(IntentGreeting, 0.67, th); got != ReplyClarify {
		t.Errorf("Respond(greeting, 0.67) = %q, want %q", got, ReplyClarify)
	}
	if got := Respond(IntentGreeting, 0.7, th); got != "Hello! How can I help you today?" {
		t.Errorf("Respond(greeting, 0.70) = %q, 不应触发澄清", got)
	}
}

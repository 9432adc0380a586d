package chatbot

// Thresholds 集中保存两级置信度策略的阈值。
// Clarify 由回复生成器使用（低于它统一要求用户补充信息），
// Fallback 由决策引擎使用（低于它路由到 AI 兜底）。
// 两个值语义不同且独立可配，放在同一结构体里避免彼此悄悄漂移。
type Thresholds struct {
	Clarify  float64
	Fallback float64
}

// DefaultThresholds 返回默认的两级阈值。
func DefaultThresholds() Thresholds {
	return Thresholds{Clarify: 0.3, Fallback: 0.5}
}

// 固定话术。ReplyUnavailable 是 AI 兜底失败时的降级回复。
const (
	ReplyClarify     = "I'm not fully confident about your request. Could you please provide more details?"
	ReplyHuman       = "Sorry, I couldn't understand your request. I'll connect you to human support."
	ReplyUnavailable = "AI service is temporarily unavailable. Please try again later."
)

// cannedReplies 是意图到固定回复的映射。
var cannedReplies = map[Intent]string{
	IntentGreeting:       "Hello! How can I help you today?",
	IntentPasswordReset:  "To reset your password, click on 'Forgot Password' on the login page.",
	IntentOrderStatus:    "Please share your order ID so I can help track your order.",
	IntentRefundRequest:  "I can help with refunds. Please provide your order ID.",
	IntentOrderReference: "Thanks! I have received your reference number. Our team will process it shortly.",
}

// Respond 根据意图与置信度返回规则回复。纯函数，无任何副作用。
// 置信度低于 Clarify 阈值时统一返回澄清话术；未知意图兜底转人工。
func Respond(intent Intent, confidence float64, th Thresholds) string {
	if confidence < th.Clarify {
		return ReplyClarify
	}
	if reply, ok := cannedReplies[intent]; ok {
		return reply
	}
	return ReplyHuman
}

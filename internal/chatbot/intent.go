// Package chatbot 实现了客服机器人的意图分类与规则回复核心。
package chatbot

// Intent 是用户消息意图的枚举标签，取值为一个固定的封闭集合。
type Intent string

const (
	IntentGreeting       Intent = "greeting"
	IntentPasswordReset  Intent = "password_reset"
	IntentOrderStatus    Intent = "order_status"
	IntentRefundRequest  Intent = "refund_request"
	IntentOrderReference Intent = "order_reference"
	IntentUnknown        Intent = "unknown"
)

// intentPriority 定义了关键词意图的固定优先级顺序。
// 分类打分出现并列时，按此顺序取第一个命中的意图，保证结果可复现，
// 而不是依赖 map 遍历的随机顺序。
var intentPriority = []Intent{
	IntentGreeting,
	IntentPasswordReset,
	IntentOrderStatus,
	IntentRefundRequest,
}

// intentKeywords 是初始化后不可变的意图关键词表。
var intentKeywords = map[Intent][]string{
	IntentGreeting:      {"hi", "hello", "hey"},
	IntentPasswordReset: {"password", "reset", "forgot"},
	IntentOrderStatus:   {"order", "track", "delivery"},
	IntentRefundRequest: {"refund", "return", "money back"},
}

// ClassificationResult 是分类器的输出：意图标签与 [0,1] 区间的置信度。
type ClassificationResult struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

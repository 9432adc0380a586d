package chatbot

import (
	"math"
	"strings"
)

// Classify 将一条原始消息映射为意图与置信度。
// 规则：
//  1. 纯数字消息直接短路为 order_reference / 0.9（极可能是订单或工单号，
//     关键词表覆盖不到这类输入）；
//  2. 否则对每个意图统计命中的关键词个数（子串匹配，忽略大小写），
//     置信度 = 命中数 / 该意图关键词总数，保留两位小数；
//  3. 所有意图都没有命中时返回 unknown / 0.0。
func Classify(message string) ClassificationResult {
	normalized := strings.ToLower(strings.TrimSpace(message))

	if IsAllDigits(normalized) {
		return ClassificationResult{Intent: IntentOrderReference, Confidence: 0.9}
	}

	bestIntent := IntentUnknown
	bestScore := 0
	for _, intent := range intentPriority {
		keywords := intentKeywords[intent]
		score := 0
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				score++
			}
		}
		// 严格大于：并列时保留优先级更高的意图
		if score > bestScore {
			bestIntent = intent
			bestScore = score
		}
	}

	if bestScore == 0 {
		return ClassificationResult{Intent: IntentUnknown, Confidence: 0.0}
	}

	size := len(intentKeywords[bestIntent])
	if size == 0 {
		size = 1
	}
	confidence := math.Round(float64(bestScore)/float64(size)*100) / 100

	return ClassificationResult{Intent: bestIntent, Confidence: confidence}
}

// IsAllDigits 判断消息是否由且仅由数字字符组成。
func IsAllDigits(message string) bool {
	if message == "" {
		return false
	}
	for _, r := range message {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

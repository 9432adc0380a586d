// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"support-bot-go/internal/model"
	"support-bot-go/internal/service"
	"support-bot-go/pkg/log"
	"support-bot-go/pkg/token"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// ChatHandler 负责处理对话相关的 API 请求，包括 REST 与 WebSocket 两种入口。
type ChatHandler struct {
	chatService service.ChatService
	userService service.UserService
	jwtManager  *token.JWTManager
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService, userService service.UserService, jwtManager *token.JWTManager) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// ChatRequest 定义了发送消息 API 的请求体结构。
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Chat 处理一条聊天消息并返回机器人的应答。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Chat: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：message 不能为空",
		})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：message 不能为空",
		})
		return
	}

	userValue, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法获取用户信息"})
		return
	}
	user := userValue.(*model.User)

	resp, err := h.chatService.HandleMessage(c.Request.Context(), user, req.Message)
	if err != nil {
		log.Error("Chat: Failed to handle message", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "消息处理失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": resp})
}

// History 返回当前用户按时间正序排列的全部对话轮次。
func (h *ChatHandler) History(c *gin.Context) {
	userValue, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法获取用户信息"})
		return
	}
	user := userValue.(*model.User)

	turns, err := h.chatService.GetHistory(c.Request.Context(), user.ID)
	if err != nil {
		log.Error("History: Failed to load chat history", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "获取对话历史失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"userId":  user.ID,
			"history": turns,
		},
	})
}

// HandleWebSocket 处理一个传入的 WebSocket 连接。
// 每个文本帧作为一条用户消息走同一套决策引擎，应答以 JSON 帧返回。
func (h *ChatHandler) HandleWebSocket(c *gin.Context) {
	tokenString := c.Param("token")
	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的 token", "data": nil})
		return
	}

	// 获取用户模型
	user, err := h.userService.GetProfile(claims.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "无法获取用户信息", "data": nil})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("WebSocket 连接已建立，用户: %s", claims.Username)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		text := strings.TrimSpace(string(message))
		if text == "" {
			continue
		}

		resp, err := h.chatService.HandleMessage(c.Request.Context(), user, text)
		if err != nil {
			log.Errorf("处理 WebSocket 消息失败: %v", err)
			errResp := map[string]interface{}{
				"type":      "error",
				"message":   "消息处理失败，请稍后重试",
				"timestamp": time.Now().UnixMilli(),
			}
			b, _ := json.Marshal(errResp)
			_ = conn.WriteMessage(websocket.TextMessage, b)
			continue
		}

		b, err := json.Marshal(gin.H{
			"type":      "reply",
			"data":      resp,
			"timestamp": time.Now().UnixMilli(),
		})
		if err != nil {
			log.Errorf("序列化 WebSocket 应答失败: %v", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Warnf("写入 WebSocket 应答失败: %v", err)
			break
		}
	}
}

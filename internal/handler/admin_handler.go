// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"strconv"
	"support-bot-go/internal/service"
	"support-bot-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AdminHandler 负责处理所有与管理员相关的 API 请求。
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler 创建一个新的 AdminHandler 实例。
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListUsers 处理分页获取用户列表的请求，密码字段不会出现在响应中。
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size < 1 {
		size = 10
	}

	users, err := h.adminService.ListUsers(page, size)
	if err != nil {
		log.Error("ListUsers: Failed to list users", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取用户列表失败", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": users})
}

// ChatStats 处理获取整体对话规模统计的请求。
func (h *AdminHandler) ChatStats(c *gin.Context) {
	stats, err := h.adminService.ChatStats()
	if err != nil {
		log.Error("ChatStats: Failed to compute chat stats", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取对话统计失败", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": stats})
}

// ChatsPerUser 处理获取每用户轮次计数的请求。
func (h *AdminHandler) ChatsPerUser(c *gin.Context) {
	rows, err := h.adminService.ChatsPerUser()
	if err != nil {
		log.Error("ChatsPerUser: Failed to aggregate per-user counts", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取用户对话分布失败", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": rows})
}

// TopIntents 处理获取意图分布的请求。
func (h *AdminHandler) TopIntents(c *gin.Context) {
	rows, err := h.adminService.TopIntents()
	if err != nil {
		log.Error("TopIntents: Failed to aggregate intent counts", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取意图分布失败", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": rows})
}

// AIUsage 处理获取 AI 兜底使用率的请求。
func (h *AdminHandler) AIUsage(c *gin.Context) {
	usage, err := h.adminService.AIUsage()
	if err != nil {
		log.Error("AIUsage: Failed to compute AI usage", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取 AI 使用率失败", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": usage})
}

// DailyChats 处理获取按日轮次计数的请求。
func (h *AdminHandler) DailyChats(c *gin.Context) {
	rows, err := h.adminService.DailyChats()
	if err != nil {
		log.Error("DailyChats: Failed to aggregate daily counts", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取每日对话统计失败", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": rows})
}

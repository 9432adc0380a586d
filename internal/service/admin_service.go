// Package service 包含了应用的业务逻辑层。
package service

import (
	"math"
	"support-bot-go/internal/model"
	"support-bot-go/internal/repository"
)

// UserListResponse 定义了用户列表 API 的响应结构。
type UserListResponse struct {
	Content       []UserDetailResponse `json:"content"`
	TotalElements int64                `json:"totalElements"`
	TotalPages    int                  `json:"totalPages"`
	Size          int                  `json:"size"`
	Number        int                  `json:"number"`
}

// UserDetailResponse 定义了用户列表项的详细结构，密码字段不对外暴露。
type UserDetailResponse struct {
	UserID    uint            `json:"userId"`
	Username  string          `json:"username"`
	Role      string          `json:"role"`
	CreatedAt model.LocalTime `json:"createdAt"`
}

// ChatStatsResponse 是整体对话规模的统计结果。
type ChatStatsResponse struct {
	TotalUsers int64 `json:"totalUsers"`
	TotalChats int64 `json:"totalChats"`
}

// AIUsageResponse 是 AI 兜底使用率的统计结果。
type AIUsageResponse struct {
	TotalMessages  int64   `json:"totalMessages"`
	AIResponses    int64   `json:"aiResponses"`
	AIUsagePercent float64 `json:"aiUsagePercent"`
}

// AdminService 接口定义了管理员侧的只读统计操作。
// 全部是对 chat_turns 历史的聚合查询，不参与分类核心的任何决策。
type AdminService interface {
	ListUsers(page, size int) (*UserListResponse, error)
	ChatStats() (*ChatStatsResponse, error)
	ChatsPerUser() ([]repository.UserTurnCount, error)
	TopIntents() ([]repository.IntentCount, error)
	AIUsage() (*AIUsageResponse, error)
	DailyChats() ([]repository.DailyCount, error)
}

// adminService 是 AdminService 接口的实现。
type adminService struct {
	userRepo repository.UserRepository
	chatRepo repository.ChatTurnRepository
}

// NewAdminService 创建一个新的 AdminService 实例。
func NewAdminService(userRepo repository.UserRepository, chatRepo repository.ChatTurnRepository) AdminService {
	return &adminService{
		userRepo: userRepo,
		chatRepo: chatRepo,
	}
}

// ListUsers 以分页的形式返回用户列表。
func (s *adminService) ListUsers(page, size int) (*UserListResponse, error) {
	offset := (page - 1) * size
	users, total, err := s.userRepo.FindWithPagination(offset, size)
	if err != nil {
		return nil, err
	}

	userResponses := make([]UserDetailResponse, 0, len(users))
	for _, u := range users {
		userResponses = append(userResponses, UserDetailResponse{
			UserID:    u.ID,
			Username:  u.Username,
			Role:      u.Role,
			CreatedAt: model.LocalTime(u.CreatedAt),
		})
	}

	totalPages := 0
	if total > 0 && size > 0 {
		totalPages = (int(total) + size - 1) / size
	}

	return &UserListResponse{
		Content:       userResponses,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
	}, nil
}

// ChatStats 返回用户数与轮次总数。
func (s *adminService) ChatStats() (*ChatStatsResponse, error) {
	totalUsers, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	totalChats, err := s.chatRepo.CountAll()
	if err != nil {
		return nil, err
	}
	return &ChatStatsResponse{TotalUsers: totalUsers, TotalChats: totalChats}, nil
}

// ChatsPerUser 返回按用户分组的轮次计数，数量降序。
func (s *adminService) ChatsPerUser() ([]repository.UserTurnCount, error) {
	return s.chatRepo.CountByUser()
}

// TopIntents 返回按意图分组的轮次计数，数量降序。
func (s *adminService) TopIntents() ([]repository.IntentCount, error) {
	return s.chatRepo.CountByIntent()
}

// AIUsage 返回 AI 兜底路径的使用占比，百分比保留两位小数。
func (s *adminService) AIUsage() (*AIUsageResponse, error) {
	total, err := s.chatRepo.CountAll()
	if err != nil {
		return nil, err
	}
	aiUsed, err := s.chatRepo.CountAIUsed()
	if err != nil {
		return nil, err
	}

	percent := 0.0
	if total > 0 {
		percent = math.Round(float64(aiUsed)/float64(total)*100*100) / 100
	}

	return &AIUsageResponse{
		TotalMessages:  total,
		AIResponses:    aiUsed,
		AIUsagePercent: percent,
	}, nil
}

// DailyChats 返回按自然日分组的轮次计数，日期升序。
func (s *adminService) DailyChats() ([]repository.DailyCount, error) {
	return s.chatRepo.CountByDay()
}

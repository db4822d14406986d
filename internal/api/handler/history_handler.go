package handler

import (
	"PlanForge/internal/pkg/response"
	"PlanForge/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	historySvc service.HistoryService
}

func NewHistoryHandler(historySvc service.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		historySvc: historySvc,
	}
}

// List 返回最近的历史标题，可按赛道过滤
func (s *HistoryHandler) List(c *gin.Context) {
	niche := c.Query("niche")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	items, err := s.historySvc.Recent(c.Request.Context(), niche, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

package handler

import (
	"PlanForge/internal/api/dto"
	"PlanForge/internal/pkg/response"
	"PlanForge/internal/service"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planSvc service.PlanService
}

func NewPlanHandler(planSvc service.PlanService) *PlanHandler {
	return &PlanHandler{
		planSvc: planSvc,
	}
}

// Generate 发起一次完整的计划生成任务
func (s *PlanHandler) Generate(c *gin.Context) {
	var req dto.GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	plan, err := s.planSvc.Generate(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, plan)
}

// Get 返回当前计划快照
func (s *PlanHandler) Get(c *gin.Context) {
	plan, err := s.planSvc.Current()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, plan)
}

// Edit 编辑单帖文案
func (s *PlanHandler) Edit(c *gin.Context) {
	postID := c.Param("post_id")

	var req dto.EditPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	post, err := s.planSvc.EditPost(postID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// Approve 批准单帖
func (s *PlanHandler) Approve(c *gin.Context) {
	postID := c.Param("post_id")

	post, err := s.planSvc.ApprovePost(postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// RegenerateImage 重新生成单帖配图
func (s *PlanHandler) RegenerateImage(c *gin.Context) {
	postID := c.Param("post_id")

	// 请求体可为空，空体等于不带参考图
	var req dto.RegenerateImageRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, err)
			return
		}
	}

	post, err := s.planSvc.RegenerateImage(c.Request.Context(), postID, req.ReferenceKey)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// Publish 批量发布所有已批准帖子
func (s *PlanHandler) Publish(c *gin.Context) {
	result, err := s.planSvc.Publish(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

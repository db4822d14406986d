package api

import (
	"PlanForge/internal/api/middleware"
	"PlanForge/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		planGroup := apiGroup.Group("/plan")
		{
			planGroup.POST("/generate", group.PlanHandler.Generate)
			planGroup.GET("", group.PlanHandler.Get)
			planGroup.PUT("/posts/:post_id", group.PlanHandler.Edit)
			planGroup.POST("/posts/:post_id/approve", group.PlanHandler.Approve)
			planGroup.POST("/posts/:post_id/image", group.PlanHandler.RegenerateImage)
			planGroup.POST("/publish", group.PlanHandler.Publish)
		}

		apiGroup.GET("/history", group.HistoryHandler.List)

		mediaGroup := apiGroup.Group("/media")
		{
			mediaGroup.POST("/reference", group.MediaHandler.Upload)
		}
	}

	return r
}

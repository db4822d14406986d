package api

import "PlanForge/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	PlanHandler    *handler.PlanHandler
	HistoryHandler *handler.HistoryHandler
	MediaHandler   *handler.MediaHandler
}

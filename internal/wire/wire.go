package wire

import (
	"PlanForge/internal/api"
	"PlanForge/internal/api/config"
	"PlanForge/internal/api/handler"
	"PlanForge/internal/job"
	"PlanForge/internal/model"
	"PlanForge/internal/pkg/cron"
	"PlanForge/internal/pkg/llm"
	"PlanForge/internal/repository"
	"PlanForge/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tmc/langchaingo/llms"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router  *gin.Engine
	DB      *gorm.DB
	CronMgr *cron.Manager
}

func BuildApplication(db *gorm.DB, chatModel llms.Model, cfg *config.Config) (*ApplicationContainer, error) {
	if err := db.AutoMigrate(&model.ContentHistory{}); err != nil {
		return nil, err
	}

	historyRepo := repository.NewHistoryRepo(db)

	var searcher *llm.WebSearcher
	if cfg.Pipeline.EnableWebSearch {
		searcher = llm.NewWebSearcher()
	}
	analyzer := llm.NewAnalyzer(chatModel, searcher)
	planner := llm.NewPlanner(chatModel)
	imageModel := llm.NewImageModel(cfg.LLM.ImageURL, cfg.LLM.ApiKey, cfg.LLM.ImageModel)

	planStore := service.NewPlanStore()
	storage := service.NewMinioStorage()
	imageService := service.NewImageService(
		imageModel,
		planStore,
		storage,
		time.Duration(cfg.Pipeline.ImageIntervalSeconds)*time.Second,
	)
	historyService := service.NewHistoryService(historyRepo)
	publisher := service.NewTelegramPublisher(cfg.Telegram)
	gate := service.NewRunGate()

	planService := service.NewPlanService(analyzer, planner, imageService, planStore, historyService, publisher, gate)

	handlers := &api.HandlersGroup{
		PlanHandler:    handler.NewPlanHandler(planService),
		HistoryHandler: handler.NewHistoryHandler(historyService),
		MediaHandler:   handler.NewMediaHandler(),
	}

	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(job.NewMediaCleanupJob())

	return &ApplicationContainer{
		Router:  router,
		DB:      db,
		CronMgr: cronMgr,
	}, nil
}

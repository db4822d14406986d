package llm

import (
	"PlanForge/internal/api/config"
	"errors"
	log "log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var textModelName string

var analysisSystemPrompt string
var planSystemPrompt string

// InitLLM 初始化文本模型客户端并加载系统 prompt
func InitLLM() (llms.Model, error) {
	cfg := config.Cfg.LLM

	if cfg.ApiKey == "" {
		return nil, errors.New("缺少大模型 API 凭证")
	}

	llm, err := openai.New(
		openai.WithModel(cfg.TextModel),
		openai.WithToken(cfg.ApiKey),
		openai.WithBaseURL(cfg.URL),
	)
	if err != nil {
		log.Error("AI大模型初始化失败", "err", err)
		return nil, err
	}

	textModelName = cfg.TextModel

	// prompt 文件存在时覆盖内置默认
	analysisSystemPrompt = readPrompt(cfg.PromptsPath.Analysis, defaultAnalysisPrompt)
	planSystemPrompt = readPrompt(cfg.PromptsPath.Plan, defaultPlanPrompt)

	return llm, nil
}

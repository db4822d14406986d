package llm

import (
	"PlanForge/internal/model"
	"context"
	log "log/slog"

	"github.com/goccy/go-json"
	"github.com/tmc/langchaingo/llms"
)

// Analyzer 赛道分析：一次结构化输出请求，可选联网检索佐证
type Analyzer interface {
	Analyze(ctx context.Context, niche string, goal model.Goal, withSearch bool) (*model.AnalysisData, error)
}

type analyzerImpl struct {
	model    llms.Model
	searcher *WebSearcher
}

func NewAnalyzer(m llms.Model, searcher *WebSearcher) Analyzer {
	return &analyzerImpl{
		model:    m,
		searcher: searcher,
	}
}

type analysisPayload struct {
	Competitors []string `json:"competitors"`
	Trends      []string `json:"trends"`
	Summary     string   `json:"summary"`
}

func (s *analyzerImpl) Analyze(ctx context.Context, niche string, goal model.Goal, withSearch bool) (*model.AnalysisData, error) {
	grounding := ""
	if withSearch && s.searcher != nil {
		res, err := Invoke(ctx, SearchRetryPolicy, func(ctx context.Context) (string, error) {
			return s.searcher.Search(ctx, niche+" social media trends competitors")
		})
		if err != nil {
			// 检索只是佐证，失败不阻断分析
			log.WarnContext(ctx, "赛道分析-联网检索失败，降级为纯模型分析", "err", err)
		} else {
			grounding = res
		}
	}

	policy := TextRetryPolicy
	if withSearch {
		policy = SearchRetryPolicy
	}

	userPrompt := buildAnalysisUserPrompt(niche, goal, grounding)
	raw, err := Invoke(ctx, policy, func(ctx context.Context) (string, error) {
		return fetchModel(ctx, s.model, "niche_analysis", analysisSystemPrompt, userPrompt, 0.3)
	})
	if err != nil {
		log.ErrorContext(ctx, "赛道分析-AI大模型请求失败", "err", err)
		return nil, err
	}

	var payload analysisPayload
	if err = json.Unmarshal([]byte(cleanModelJSON(raw)), &payload); err != nil {
		log.ErrorContext(ctx, "赛道分析-AI大模型返回数据解析失败", "err", err)
		return nil, invalidResponse("niche_analysis", "返回数据解析失败: %v", err)
	}
	if payload.Summary == "" {
		return nil, invalidResponse("niche_analysis", "返回数据缺少 summary 字段")
	}

	log.InfoContext(ctx, "赛道分析完成", "niche", niche, "competitors", len(payload.Competitors), "trends", len(payload.Trends))

	return &model.AnalysisData{
		Competitors: payload.Competitors,
		Trends:      payload.Trends,
		Summary:     payload.Summary,
	}, nil
}

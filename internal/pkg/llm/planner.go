package llm

import (
	"PlanForge/internal/model"
	"context"
	log "log/slog"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
)

// PlanRequest 计划文本生成入参
type PlanRequest struct {
	Niche         string
	Period        model.Period
	Tone          string
	Goal          model.Goal
	Analysis      *model.AnalysisData
	ExcludeTitles []string
	StartDate     time.Time
}

// Planner 计划文本生成：一次结构化输出请求，产出规范化的 Post 序列
type Planner interface {
	GeneratePosts(ctx context.Context, req *PlanRequest) ([]model.Post, error)
}

type plannerImpl struct {
	model llms.Model
}

func NewPlanner(m llms.Model) Planner {
	return &plannerImpl{model: m}
}

type rawPost struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Content     string `json:"content"`
	Script      string `json:"script"`
	Day         int    `json:"day"`
	ImagePrompt string `json:"imagePrompt"`
}

func (s *plannerImpl) GeneratePosts(ctx context.Context, req *PlanRequest) ([]model.Post, error) {
	userPrompt := buildPlanUserPrompt(req)

	raw, err := Invoke(ctx, TextRetryPolicy, func(ctx context.Context) (string, error) {
		return fetchModel(ctx, s.model, "plan_generation", planSystemPrompt, userPrompt, 0.7)
	})
	if err != nil {
		log.ErrorContext(ctx, "计划生成-AI大模型请求失败", "err", err)
		return nil, err
	}

	var rawPosts []rawPost
	if err = json.Unmarshal([]byte(cleanModelJSON(raw)), &rawPosts); err != nil {
		log.ErrorContext(ctx, "计划生成-AI大模型返回数据解析失败", "err", err)
		return nil, invalidResponse("plan_generation", "返回数据解析失败: %v", err)
	}
	if len(rawPosts) == 0 {
		return nil, invalidResponse("plan_generation", "返回数据为空")
	}

	posts := normalizePosts(rawPosts, req.StartDate)
	log.InfoContext(ctx, "计划生成完成", "niche", req.Niche, "posts", len(posts))
	return posts, nil
}

// normalizePosts 为每条草稿分配 id、派生日期并补齐默认字段。
// day 的缺口或重复按模型原样透传，不做重排
func normalizePosts(rawPosts []rawPost, startDate time.Time) []model.Post {
	posts := make([]model.Post, 0, len(rawPosts))
	day0 := startDate.Truncate(24 * time.Hour)

	for _, rp := range rawPosts {
		postType := model.PostTypePost
		if model.ValidPostType(rp.Type) {
			postType = model.PostType(rp.Type)
		}

		posts = append(posts, model.Post{
			ID:          uuid.NewString(),
			Title:       rp.Title,
			Type:        postType,
			Content:     rp.Content,
			Script:      rp.Script,
			Day:         rp.Day,
			Date:        day0.AddDate(0, 0, rp.Day-1),
			ImagePrompt: rp.ImagePrompt,
			ImageURL:    "",
			Status:      model.PostStatusPending,
			EditCount:   0,
		})
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Day < posts[j].Day
	})
	return posts
}

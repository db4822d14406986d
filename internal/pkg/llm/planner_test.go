package llm

import (
	"PlanForge/internal/model"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// stubModel 捕获用户 prompt 并返回预置输出
type stubModel struct {
	resp    string
	err     error
	prompts []string
}

func (s *stubModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, m := range messages {
		if m.Role != llms.ChatMessageTypeHuman {
			continue
		}
		for _, p := range m.Parts {
			if tp, ok := p.(llms.TextContent); ok {
				s.prompts = append(s.prompts, tp.Text)
			}
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: s.resp}},
	}, nil
}

func (s *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.resp, nil
}

func planReq(start time.Time) *PlanRequest {
	return &PlanRequest{
		Niche:     "手冲咖啡",
		Period:    model.PeriodWeek,
		Tone:      "轻松专业",
		Goal:      model.GoalGrowth,
		StartDate: start,
	}
}

func TestPlannerGeneratePosts(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	t.Run("围栏包裹的输出可解析并规范化", func(t *testing.T) {
		m := &stubModel{resp: "```json\n[" +
			`{"title":"冲煮比例入门","type":"Post","content":"正文A","day":1,"imagePrompt":"pour over setup"},` +
			`{"title":"三款滤杯对比","type":"Reels","content":"正文B","script":"口播B","day":3,"imagePrompt":"three drippers"}` +
			"]\n```"}

		posts, err := NewPlanner(m).GeneratePosts(context.Background(), planReq(start))
		require.NoError(t, err)
		require.Len(t, posts, 2)

		for _, p := range posts {
			assert.NotEmpty(t, p.ID)
			assert.Equal(t, model.PostStatusPending, p.Status)
			assert.Empty(t, p.ImageURL)
			assert.Zero(t, p.EditCount)
		}

		// day 派生日期：day=1 为起始日当天
		day0 := start.Truncate(24 * time.Hour)
		assert.Equal(t, day0, posts[0].Date)
		assert.Equal(t, day0.AddDate(0, 0, 2), posts[1].Date)
		assert.Equal(t, model.PostTypeReels, posts[1].Type)
		assert.Equal(t, "口播B", posts[1].Script)
	})

	t.Run("周计划七帖按天递增", func(t *testing.T) {
		resp := "["
		for day := 1; day <= 7; day++ {
			if day > 1 {
				resp += ","
			}
			resp += fmt.Sprintf(`{"title":"Day %d","type":"Post","content":"c","day":%d,"imagePrompt":"x"}`, day, day)
		}
		resp += "]"

		posts, err := NewPlanner(&stubModel{resp: resp}).GeneratePosts(context.Background(), planReq(start))
		require.NoError(t, err)
		require.Len(t, posts, 7)

		day0 := start.Truncate(24 * time.Hour)
		for i, p := range posts {
			assert.Equal(t, i+1, p.Day)
			assert.Equal(t, day0.AddDate(0, 0, i), p.Date)
		}
	})

	t.Run("非法类型回退为Post", func(t *testing.T) {
		m := &stubModel{resp: `[{"title":"T","type":"Carousel","content":"C","day":1,"imagePrompt":"x"}]`}

		posts, err := NewPlanner(m).GeneratePosts(context.Background(), planReq(start))
		require.NoError(t, err)
		assert.Equal(t, model.PostTypePost, posts[0].Type)
	})

	t.Run("day乱序时按day稳定排序且数值透传", func(t *testing.T) {
		m := &stubModel{resp: `[` +
			`{"title":"C","type":"Post","content":"c","day":5,"imagePrompt":"x"},` +
			`{"title":"A","type":"Post","content":"a","day":2,"imagePrompt":"x"},` +
			`{"title":"B","type":"Post","content":"b","day":5,"imagePrompt":"x"}]`}

		posts, err := NewPlanner(m).GeneratePosts(context.Background(), planReq(start))
		require.NoError(t, err)
		require.Len(t, posts, 3)

		// 缺口与重复不修复，稳定排序保持同 day 的相对顺序
		assert.Equal(t, []int{2, 5, 5}, []int{posts[0].Day, posts[1].Day, posts[2].Day})
		assert.Equal(t, "A", posts[0].Title)
		assert.Equal(t, "C", posts[1].Title)
		assert.Equal(t, "B", posts[2].Title)
	})

	t.Run("历史标题进入去重提示", func(t *testing.T) {
		m := &stubModel{resp: `[{"title":"T","type":"Post","content":"C","day":1,"imagePrompt":"x"}]`}
		req := planReq(start)
		req.ExcludeTitles = []string{"冲煮比例入门", "三款滤杯对比"}

		_, err := NewPlanner(m).GeneratePosts(context.Background(), req)
		require.NoError(t, err)
		require.NotEmpty(t, m.prompts)

		prompt := m.prompts[len(m.prompts)-1]
		assert.Contains(t, prompt, "Do NOT repeat these titles")
		assert.Contains(t, prompt, "冲煮比例入门")
		assert.Contains(t, prompt, "三款滤杯对比")
	})

	t.Run("空去重列表不注入提示", func(t *testing.T) {
		m := &stubModel{resp: `[{"title":"T","type":"Post","content":"C","day":1,"imagePrompt":"x"}]`}

		_, err := NewPlanner(m).GeneratePosts(context.Background(), planReq(start))
		require.NoError(t, err)
		require.NotEmpty(t, m.prompts)
		assert.NotContains(t, m.prompts[len(m.prompts)-1], "Do NOT repeat")
	})

	t.Run("空数组视为非法响应", func(t *testing.T) {
		m := &stubModel{resp: `[]`}

		_, err := NewPlanner(m).GeneratePosts(context.Background(), planReq(start))
		require.Error(t, err)
		assert.True(t, IsInvalidResponse(err))
	})

	t.Run("非JSON输出视为非法响应", func(t *testing.T) {
		m := &stubModel{resp: "抱歉，我无法生成内容计划。"}

		_, err := NewPlanner(m).GeneratePosts(context.Background(), planReq(start))
		require.Error(t, err)
		assert.True(t, IsInvalidResponse(err))
	})
}

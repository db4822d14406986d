package service

import (
	"PlanForge/internal/api/dto"
	"PlanForge/internal/model"
	"PlanForge/internal/pkg/llm"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	out   *model.AnalysisData
	err   error
	calls int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, niche string, goal model.Goal, withSearch bool) (*model.AnalysisData, error) {
	f.calls++
	return f.out, f.err
}

type fakePlanner struct {
	out   []model.Post
	err   error
	calls int
	last  *llm.PlanRequest
}

func (f *fakePlanner) GeneratePosts(ctx context.Context, req *llm.PlanRequest) ([]model.Post, error) {
	f.calls++
	f.last = req
	return f.out, f.err
}

type fakeFillService struct {
	filled chan []model.Post
	url    string
}

func (f *fakeFillService) FillPlanImages(ctx context.Context, posts []model.Post, tone string, refKeys []string) {
	if f.filled != nil {
		f.filled <- posts
	}
}

func (f *fakeFillService) GenerateOne(ctx context.Context, post model.Post, tone string, refKey string) string {
	return f.url
}

type fakeHistoryService struct {
	titles   []string
	titleErr error
	appended []string
}

func (f *fakeHistoryService) AppendTitles(ctx context.Context, niche string, titles []string) error {
	f.appended = append(f.appended, titles...)
	return nil
}

func (f *fakeHistoryService) TitlesForNiche(ctx context.Context, niche string) ([]string, error) {
	return f.titles, f.titleErr
}

func (f *fakeHistoryService) Recent(ctx context.Context, niche string, limit int) ([]*dto.HistoryItemDTO, error) {
	return nil, nil
}

type fakePublisher struct {
	err  error
	sent [][]model.Post
}

func (f *fakePublisher) PublishBatch(ctx context.Context, posts []model.Post) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, posts)
	return nil
}

type fakeGate struct {
	busy     bool
	released chan error // Release 被调用时的 ctx.Err()
}

func newFakeGate(busy bool) *fakeGate {
	return &fakeGate{busy: busy, released: make(chan error, 8)}
}

func (f *fakeGate) TryAcquire(ctx context.Context) (bool, error) {
	return !f.busy, nil
}

func (f *fakeGate) Release(ctx context.Context) {
	f.released <- ctx.Err()
}

type planServiceFixture struct {
	analyzer  *fakeAnalyzer
	planner   *fakePlanner
	images    *fakeFillService
	store     *PlanStore
	history   *fakeHistoryService
	publisher *fakePublisher
	gate      *fakeGate
	svc       PlanService
}

func newPlanServiceFixture() *planServiceFixture {
	f := &planServiceFixture{
		analyzer: &fakeAnalyzer{out: &model.AnalysisData{Summary: "教学为主"}},
		planner: &fakePlanner{out: []model.Post{
			{ID: "p1", Title: "A", Type: model.PostTypePost, Day: 1, Status: model.PostStatusPending},
			{ID: "p2", Title: "B", Type: model.PostTypeReels, Day: 2, Status: model.PostStatusPending},
		}},
		images:    &fakeFillService{filled: make(chan []model.Post, 1), url: "https://cdn.example.com/new.png"},
		store:     NewPlanStore(),
		history:   &fakeHistoryService{},
		publisher: &fakePublisher{},
		gate:      newFakeGate(false),
	}
	f.svc = NewPlanService(f.analyzer, f.planner, f.images, f.store, f.history, f.publisher, f.gate)
	return f
}

func generateReq() *dto.GeneratePlanRequest {
	return &dto.GeneratePlanRequest{
		Niche:  "手冲咖啡",
		Period: "WEEK",
		Tone:   "轻松专业",
		Goal:   "GROWTH",
	}
}

func waitReleased(t *testing.T, gate *fakeGate) {
	t.Helper()
	select {
	case ctxErr := <-gate.released:
		// 释放互斥门时上下文必须存活，否则 redis 解锁会被中断、锁活满整个过期时间
		assert.NoError(t, ctxErr)
	case <-time.After(2 * time.Second):
		t.Fatal("互斥门未释放")
	}
}

func TestPlanServiceGenerate(t *testing.T) {
	t.Run("已有任务在跑时拒绝", func(t *testing.T) {
		f := newPlanServiceFixture()
		f.gate.busy = true

		_, err := f.svc.Generate(context.Background(), generateReq())
		assert.ErrorIs(t, err, ErrRunActive)
		assert.Zero(t, f.analyzer.calls)
	})

	t.Run("分析失败不动当前计划且释放互斥门", func(t *testing.T) {
		f := newPlanServiceFixture()
		f.analyzer.err = errors.New("analysis failed")

		_, err := f.svc.Generate(context.Background(), generateReq())
		require.Error(t, err)
		assert.Zero(t, f.planner.calls)

		_, ok := f.store.Snapshot()
		assert.False(t, ok)
		waitReleased(t, f.gate)
	})

	t.Run("文本生成失败不动当前计划且释放互斥门", func(t *testing.T) {
		f := newPlanServiceFixture()
		f.planner.err = errors.New("plan failed")

		_, err := f.svc.Generate(context.Background(), generateReq())
		require.Error(t, err)

		_, ok := f.store.Snapshot()
		assert.False(t, ok)
		waitReleased(t, f.gate)
	})

	t.Run("成功时入库并后台补图", func(t *testing.T) {
		f := newPlanServiceFixture()
		f.history.titles = []string{"旧标题"}

		plan, err := f.svc.Generate(context.Background(), generateReq())
		require.NoError(t, err)
		require.Len(t, plan.Posts, 2)
		assert.Equal(t, "手冲咖啡", plan.Niche)
		assert.Equal(t, "教学为主", plan.Analysis.Summary)

		// 去重提示传入了历史标题
		require.NotNil(t, f.planner.last)
		assert.Equal(t, []string{"旧标题"}, f.planner.last.ExcludeTitles)

		// 新标题写入历史
		assert.Equal(t, []string{"A", "B"}, f.history.appended)

		select {
		case posts := <-f.images.filled:
			assert.Len(t, posts, 2)
		case <-time.After(2 * time.Second):
			t.Fatal("配图流水线未启动")
		}
		waitReleased(t, f.gate)
	})

	t.Run("历史读取失败只跳过去重提示", func(t *testing.T) {
		f := newPlanServiceFixture()
		f.history.titleErr = errors.New("db down")

		_, err := f.svc.Generate(context.Background(), generateReq())
		require.NoError(t, err)
		assert.Empty(t, f.planner.last.ExcludeTitles)
		waitReleased(t, f.gate)
	})
}

func TestPlanServicePostOperations(t *testing.T) {
	setup := func(t *testing.T) *planServiceFixture {
		t.Helper()
		f := newPlanServiceFixture()
		f.store.Initialize(testPlan())
		return f
	}

	t.Run("无计划时查询报错", func(t *testing.T) {
		f := newPlanServiceFixture()
		_, err := f.svc.Current()
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})

	t.Run("编辑重置状态并累加次数", func(t *testing.T) {
		f := setup(t)

		_, err := f.svc.ApprovePost("p1")
		require.NoError(t, err)

		content := "改过的正文"
		post, err := f.svc.EditPost("p1", &dto.EditPostRequest{Content: &content})
		require.NoError(t, err)

		assert.Equal(t, "改过的正文", post.Content)
		assert.Equal(t, string(model.PostStatusPending), post.Status)
		assert.Equal(t, 1, post.EditCount)
	})

	t.Run("仅待审批帖子可批准", func(t *testing.T) {
		f := setup(t)

		post, err := f.svc.ApprovePost("p1")
		require.NoError(t, err)
		assert.Equal(t, string(model.PostStatusApproved), post.Status)

		// 重复批准被拒绝
		_, err = f.svc.ApprovePost("p1")
		assert.ErrorIs(t, err, ErrPostNotPending)

		_, err = f.svc.ApprovePost("missing")
		assert.ErrorIs(t, err, ErrPostNotFound)
	})

	t.Run("重新生成配图写回计划", func(t *testing.T) {
		f := setup(t)

		post, err := f.svc.RegenerateImage(context.Background(), "p2", "")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/new.png", post.ImageURL)

		snap, _ := f.store.Snapshot()
		assert.Equal(t, "https://cdn.example.com/new.png", snap.Posts[1].ImageURL)
	})
}

func TestPlanServicePublish(t *testing.T) {
	t.Run("没有已批准帖子时拒绝", func(t *testing.T) {
		f := newPlanServiceFixture()
		f.store.Initialize(testPlan())

		_, err := f.svc.Publish(context.Background())
		assert.ErrorIs(t, err, ErrNoApprovedPosts)
	})

	t.Run("渠道失败时状态保持不变", func(t *testing.T) {
		f := newPlanServiceFixture()
		f.store.Initialize(testPlan())
		f.publisher.err = errors.New("telegram down")

		_, err := f.svc.ApprovePost("p1")
		require.NoError(t, err)

		_, err = f.svc.Publish(context.Background())
		require.Error(t, err)

		snap, _ := f.store.Snapshot()
		assert.Equal(t, model.PostStatusApproved, snap.Posts[0].Status)
	})

	t.Run("成功后整批流转为已发布", func(t *testing.T) {
		f := newPlanServiceFixture()
		f.store.Initialize(testPlan())

		_, err := f.svc.ApprovePost("p1")
		require.NoError(t, err)
		_, err = f.svc.ApprovePost("p3")
		require.NoError(t, err)

		result, err := f.svc.Publish(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, result.Published)
		assert.ElementsMatch(t, []string{"p1", "p3"}, result.PostIDs)

		require.Len(t, f.publisher.sent, 1)
		assert.Len(t, f.publisher.sent[0], 2)

		snap, _ := f.store.Snapshot()
		assert.Equal(t, model.PostStatusPublished, snap.Posts[0].Status)
		assert.Equal(t, model.PostStatusPending, snap.Posts[1].Status)
		assert.Equal(t, model.PostStatusPublished, snap.Posts[2].Status)
	})
}

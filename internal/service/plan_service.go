package service

import (
	"PlanForge/internal/api/dto"
	"PlanForge/internal/model"
	"PlanForge/internal/pkg/llm"
	"context"
	log "log/slog"
	"sync"
	"time"

	"github.com/jinzhu/copier"
)

// PlanService 生成任务编排与计划操作入口
type PlanService interface {
	Generate(ctx context.Context, req *dto.GeneratePlanRequest) (*dto.PlanDTO, error)
	Current() (*dto.PlanDTO, error)
	EditPost(postID string, req *dto.EditPostRequest) (*dto.PostDTO, error)
	ApprovePost(postID string) (*dto.PostDTO, error)
	RegenerateImage(ctx context.Context, postID string, referenceKey string) (*dto.PostDTO, error)
	Publish(ctx context.Context) (*dto.PublishResultDTO, error)
}

type planServiceImpl struct {
	analyzer  llm.Analyzer
	planner   llm.Planner
	images    ImageService
	store     *PlanStore
	history   HistoryService
	publisher Publisher
	gate      RunGate

	// 新生成任务会顶掉上一轮仍在跑的配图流水线
	mu         sync.Mutex
	cancelFill context.CancelFunc
}

func NewPlanService(
	analyzer llm.Analyzer,
	planner llm.Planner,
	images ImageService,
	store *PlanStore,
	history HistoryService,
	publisher Publisher,
	gate RunGate,
) PlanService {
	return &planServiceImpl{
		analyzer:  analyzer,
		planner:   planner,
		images:    images,
		store:     store,
		history:   history,
		publisher: publisher,
		gate:      gate,
	}
}

// Generate 执行 分析 -> 文本生成 -> 入库，然后在后台异步补全配图。
// 同一时刻只允许一个生成任务，文本阶段失败不会动当前计划
func (s *planServiceImpl) Generate(ctx context.Context, req *dto.GeneratePlanRequest) (*dto.PlanDTO, error) {
	ok, err := s.gate.TryAcquire(ctx)
	if err != nil {
		log.ErrorContext(ctx, "生成任务-互斥门检查失败", "err", err)
		return nil, UnExpectedError
	}
	if !ok {
		return nil, ErrRunActive
	}

	analysis, err := s.analyzer.Analyze(ctx, req.Niche, model.Goal(req.Goal), req.WithSearch)
	if err != nil {
		s.gate.Release(ctx)
		return nil, err
	}

	// 去重提示尽力而为，历史读取失败不阻断生成
	excludeTitles, err := s.history.TitlesForNiche(ctx, req.Niche)
	if err != nil {
		log.WarnContext(ctx, "生成任务-历史标题读取失败，跳过去重提示", "err", err)
		excludeTitles = nil
	}

	posts, err := s.planner.GeneratePosts(ctx, &llm.PlanRequest{
		Niche:         req.Niche,
		Period:        model.Period(req.Period),
		Tone:          req.Tone,
		Goal:          model.Goal(req.Goal),
		Analysis:      analysis,
		ExcludeTitles: excludeTitles,
		StartDate:     time.Now(),
	})
	if err != nil {
		s.gate.Release(ctx)
		return nil, err
	}

	plan := &model.ContentPlan{
		Niche:     req.Niche,
		Period:    model.Period(req.Period),
		Tone:      req.Tone,
		Goal:      model.Goal(req.Goal),
		Analysis:  analysis,
		Posts:     posts,
		CreatedAt: time.Now(),
	}
	s.store.Initialize(plan)

	titles := make([]string, 0, len(posts))
	for _, p := range posts {
		titles = append(titles, p.Title)
	}
	if err = s.history.AppendTitles(ctx, req.Niche, titles); err != nil {
		log.WarnContext(ctx, "生成任务-历史标题写入失败", "err", err)
	}

	s.startImageFill(plan.Tone, posts, req.ReferenceKeys)

	snapshot, _ := s.store.Snapshot()
	log.InfoContext(ctx, "生成任务-文本阶段完成，配图后台生成中", "niche", req.Niche, "posts", len(posts))
	return planToDTO(snapshot), nil
}

// startImageFill 启动后台配图流水线，并顶掉上一轮未完成的流水线
func (s *planServiceImpl) startImageFill(tone string, posts []model.Post, refKeys []string) {
	fillCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.cancelFill != nil {
		s.cancelFill()
	}
	s.cancelFill = cancel
	s.mu.Unlock()

	go func() {
		defer cancel()
		// 释放互斥门必须用存活的上下文：fillCtx 在流水线结束或被顶掉后已不可用
		defer s.gate.Release(context.Background())
		s.images.FillPlanImages(fillCtx, posts, tone, refKeys)
	}()
}

func (s *planServiceImpl) Current() (*dto.PlanDTO, error) {
	snapshot, ok := s.store.Snapshot()
	if !ok {
		return nil, ErrPlanNotFound
	}
	return planToDTO(snapshot), nil
}

// EditPost 编辑帖子文案，任何编辑都会把状态重置回待审批
func (s *planServiceImpl) EditPost(postID string, req *dto.EditPostRequest) (*dto.PostDTO, error) {
	status := model.PostStatusPending
	updated, err := s.store.PatchPost(postID, PostPatch{
		Content:     req.Content,
		Script:      req.Script,
		ImagePrompt: req.ImagePrompt,
		Status:      &status,
		BumpEdit:    true,
	})
	if err != nil {
		return nil, err
	}
	return postToDTO(updated), nil
}

// ApprovePost 批准帖子，仅允许 PENDING -> APPROVED
func (s *planServiceImpl) ApprovePost(postID string) (*dto.PostDTO, error) {
	post, ok := s.store.Post(postID)
	if !ok {
		if _, exists := s.store.Snapshot(); !exists {
			return nil, ErrPlanNotFound
		}
		return nil, ErrPostNotFound
	}
	if post.Status != model.PostStatusPending {
		return nil, ErrPostNotPending
	}

	status := model.PostStatusApproved
	updated, err := s.store.PatchPost(postID, PostPatch{Status: &status})
	if err != nil {
		return nil, err
	}
	return postToDTO(updated), nil
}

// RegenerateImage 对单帖同步重新生成配图，失败同样兜底为占位图
func (s *planServiceImpl) RegenerateImage(ctx context.Context, postID string, referenceKey string) (*dto.PostDTO, error) {
	snapshot, ok := s.store.Snapshot()
	if !ok {
		return nil, ErrPlanNotFound
	}
	post, ok := s.store.Post(postID)
	if !ok {
		return nil, ErrPostNotFound
	}

	url := s.images.GenerateOne(ctx, post, snapshot.Tone, referenceKey)
	updated, err := s.store.PatchPost(postID, PostPatch{ImageURL: &url})
	if err != nil {
		return nil, err
	}
	return postToDTO(updated), nil
}

// Publish 批量发布所有已批准的帖子，渠道失败时不改动任何状态
func (s *planServiceImpl) Publish(ctx context.Context) (*dto.PublishResultDTO, error) {
	snapshot, ok := s.store.Snapshot()
	if !ok {
		return nil, ErrPlanNotFound
	}

	approved := make([]model.Post, 0, len(snapshot.Posts))
	for _, p := range snapshot.Posts {
		if p.Status == model.PostStatusApproved {
			approved = append(approved, p)
		}
	}
	if len(approved) == 0 {
		return nil, ErrNoApprovedPosts
	}

	if err := s.publisher.PublishBatch(ctx, approved); err != nil {
		log.ErrorContext(ctx, "批量发布失败", "posts", len(approved), "err", err)
		return nil, err
	}

	affected := s.store.SetStatusForAll(func(p model.Post) bool {
		return p.Status == model.PostStatusApproved
	}, model.PostStatusPublished)

	return &dto.PublishResultDTO{
		Published: len(affected),
		PostIDs:   affected,
	}, nil
}

func postToDTO(post model.Post) *dto.PostDTO {
	out := &dto.PostDTO{}
	_ = copier.Copy(out, &post)
	out.Date = post.Date.Format("2006-01-02")
	return out
}

func planToDTO(plan *model.ContentPlan) *dto.PlanDTO {
	out := &dto.PlanDTO{
		Niche:     plan.Niche,
		Period:    string(plan.Period),
		Tone:      plan.Tone,
		Goal:      string(plan.Goal),
		CreatedAt: plan.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	if plan.Analysis != nil {
		analysis := &dto.AnalysisDTO{}
		_ = copier.Copy(analysis, plan.Analysis)
		out.Analysis = analysis
	}

	out.Posts = make([]*dto.PostDTO, 0, len(plan.Posts))
	for _, p := range plan.Posts {
		out.Posts = append(out.Posts, postToDTO(p))
	}
	return out
}

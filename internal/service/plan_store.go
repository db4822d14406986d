package service

import (
	"PlanForge/internal/model"
	"sync"
)

// PostPatch 针对单个帖子的字段合并，nil 字段不改动
type PostPatch struct {
	Content     *string
	Script      *string
	ImagePrompt *string
	ImageURL    *string
	Status      *model.PostStatus
	BumpEdit    bool
}

// PlanStore 持有唯一的活动计划。
// 所有变更都是整帖替换写，读方拿到的是快照副本，不会观察到写了一半的帖子
type PlanStore struct {
	mu   sync.RWMutex
	plan *model.ContentPlan
}

func NewPlanStore() *PlanStore {
	return &PlanStore{}
}

// Initialize 整体替换当前计划，在分析+文本生成完成后调用一次
func (s *PlanStore) Initialize(plan *model.ContentPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = plan
}

// Clear 丢弃当前计划
func (s *PlanStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = nil
}

// Snapshot 返回当前计划的深拷贝
func (s *PlanStore) Snapshot() (*model.ContentPlan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.plan == nil {
		return nil, false
	}
	return copyPlan(s.plan), true
}

// Post 按 id 返回单帖副本
func (s *PlanStore) Post(id string) (model.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.plan == nil {
		return model.Post{}, false
	}
	for _, p := range s.plan.Posts {
		if p.ID == id {
			return p, true
		}
	}
	return model.Post{}, false
}

// PatchPost 对指定帖子做整帖替换写，返回更新后的副本
func (s *PlanStore) PatchPost(id string, patch PostPatch) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return model.Post{}, ErrPlanNotFound
	}

	for i := range s.plan.Posts {
		if s.plan.Posts[i].ID != id {
			continue
		}

		updated := s.plan.Posts[i]
		if patch.Content != nil {
			updated.Content = *patch.Content
		}
		if patch.Script != nil {
			updated.Script = *patch.Script
		}
		if patch.ImagePrompt != nil {
			updated.ImagePrompt = *patch.ImagePrompt
		}
		if patch.ImageURL != nil {
			updated.ImageURL = *patch.ImageURL
		}
		if patch.Status != nil {
			updated.Status = *patch.Status
		}
		if patch.BumpEdit {
			updated.EditCount++
		}

		s.plan.Posts[i] = updated
		return updated, nil
	}
	return model.Post{}, ErrPostNotFound
}

// SetStatusForAll 批量状态迁移，返回受影响的帖子 id
func (s *PlanStore) SetStatusForAll(pred func(model.Post) bool, status model.PostStatus) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return nil
	}

	var affected []string
	for i := range s.plan.Posts {
		if !pred(s.plan.Posts[i]) {
			continue
		}
		updated := s.plan.Posts[i]
		updated.Status = status
		s.plan.Posts[i] = updated
		affected = append(affected, updated.ID)
	}
	return affected
}

func copyPlan(plan *model.ContentPlan) *model.ContentPlan {
	out := *plan
	out.Posts = make([]model.Post, len(plan.Posts))
	copy(out.Posts, plan.Posts)

	if plan.Analysis != nil {
		analysis := model.AnalysisData{
			Competitors: append([]string(nil), plan.Analysis.Competitors...),
			Trends:      append([]string(nil), plan.Analysis.Trends...),
			Summary:     plan.Analysis.Summary,
		}
		out.Analysis = &analysis
	}
	return &out
}

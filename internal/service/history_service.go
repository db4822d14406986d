package service

import (
	"PlanForge/internal/api/dto"
	"PlanForge/internal/model"
	"PlanForge/internal/pkg/consts"
	"PlanForge/internal/repository"
	"context"
	"strings"
)

type HistoryService interface {
	AppendTitles(ctx context.Context, niche string, titles []string) error
	TitlesForNiche(ctx context.Context, niche string) ([]string, error)
	Recent(ctx context.Context, niche string, limit int) ([]*dto.HistoryItemDTO, error)
}

type historyServiceImpl struct {
	repo repository.HistoryRepo
}

func NewHistoryService(repo repository.HistoryRepo) HistoryService {
	return &historyServiceImpl{repo: repo}
}

// AppendTitles 计划文本生成完成后写入历史
func (s *historyServiceImpl) AppendTitles(ctx context.Context, niche string, titles []string) error {
	items := make([]*model.ContentHistory, 0, len(titles))
	for _, title := range titles {
		if title == "" {
			continue
		}
		items = append(items, &model.ContentHistory{
			Niche: niche,
			Title: title,
		})
	}
	return s.repo.Append(ctx, items)
}

// TitlesForNiche 构造去重提示：同一赛道的历史标题列表
func (s *historyServiceImpl) TitlesForNiche(ctx context.Context, niche string) ([]string, error) {
	items, err := s.repo.Recent(ctx, consts.HistoryRetention)
	if err != nil {
		return nil, err
	}
	return FilterTitlesByNiche(items, niche), nil
}

func (s *historyServiceImpl) Recent(ctx context.Context, niche string, limit int) ([]*dto.HistoryItemDTO, error) {
	if limit <= 0 || limit > consts.HistoryRetention {
		limit = consts.HistoryRetention
	}

	items, err := s.repo.Recent(ctx, consts.HistoryRetention)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.HistoryItemDTO, 0, limit)
	for _, item := range items {
		if niche != "" && !strings.EqualFold(item.Niche, niche) {
			continue
		}
		out = append(out, &dto.HistoryItemDTO{
			Niche:     item.Niche,
			Title:     item.Title,
			CreatedAt: item.CreatedAt.Format("2006-01-02 15:04:05"),
		})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// FilterTitlesByNiche 纯函数：按赛道（忽略大小写）过滤历史标题，保持原有顺序。
// 无匹配时返回空结果，表示不注入去重提示
func FilterTitlesByNiche(items []model.ContentHistory, niche string) []string {
	var titles []string
	for _, item := range items {
		if strings.EqualFold(item.Niche, niche) {
			titles = append(titles, item.Title)
		}
	}
	return titles
}

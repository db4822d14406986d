package repository

import (
	"PlanForge/internal/model"
	"PlanForge/internal/pkg/consts"
	"context"

	"gorm.io/gorm"
)

type HistoryRepo interface {
	Append(ctx context.Context, items []*model.ContentHistory) error
	Recent(ctx context.Context, limit int) ([]model.ContentHistory, error)
}

type historyRepoImpl struct {
	db *gorm.DB
}

func NewHistoryRepo(db *gorm.DB) HistoryRepo {
	return &historyRepoImpl{db: db}
}

// Append 追加记录并裁剪，仅保留最新的 HistoryRetention 条
func (s *historyRepoImpl) Append(ctx context.Context, items []*model.ContentHistory) error {
	if len(items) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		// 自连接需要包一层派生表，MySQL 不允许直接在 DELETE 中引用同表子查询
		return tx.Exec(
			`DELETE FROM content_history WHERE id < (
				SELECT cutoff FROM (
					SELECT id AS cutoff FROM content_history ORDER BY id DESC LIMIT 1 OFFSET ?
				) t
			)`, consts.HistoryRetention-1,
		).Error
	})
}

// Recent 返回最新的 limit 条历史记录，新在前
func (s *historyRepoImpl) Recent(ctx context.Context, limit int) ([]model.ContentHistory, error) {
	var items []model.ContentHistory
	err := s.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

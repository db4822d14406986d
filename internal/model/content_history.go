package model

import (
	"time"
)

// ContentHistory 历史生成标题，用于跨计划去重提示
type ContentHistory struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Niche     string    `gorm:"type:varchar(100);index"`
	Title     string    `gorm:"type:varchar(255)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ContentHistory) TableName() string {
	return "content_history"
}

package model

import (
	"time"
)

type PostType string

const (
	PostTypePost  PostType = "Post"
	PostTypeReels PostType = "Reels"
	PostTypeStory PostType = "Story"
)

// ValidPostType 校验帖子类型是否合法
func ValidPostType(t string) bool {
	switch PostType(t) {
	case PostTypePost, PostTypeReels, PostTypeStory:
		return true
	}
	return false
}

type PostStatus string

const (
	// PostStatusPending 待审批，编辑操作会把任意状态重置回此状态
	PostStatusPending PostStatus = "PENDING"
	// PostStatusApproved 已批准，仅可由 PENDING 进入
	PostStatusApproved PostStatus = "APPROVED"
	// PostStatusPublished 已发布，仅可由 APPROVED 经批量发布进入
	PostStatusPublished PostStatus = "PUBLISHED"
)

// Post 计划内的单条内容
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Type        PostType   `json:"type"`
	Content     string     `json:"content"`
	Script      string     `json:"script,omitempty"` // 视频类内容的口播脚本
	Day         int        `json:"day"`
	Date        time.Time  `json:"date"`
	ImagePrompt string     `json:"image_prompt"`
	ImageURL    string     `json:"image_url"`
	Status      PostStatus `json:"status"`
	EditCount   int        `json:"edit_count"`
}

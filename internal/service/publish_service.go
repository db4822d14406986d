package service

import (
	"PlanForge/internal/api/config"
	"PlanForge/internal/model"
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTelegramAPI = "https://api.telegram.org"

// Publisher 发布渠道：要么整批成功，要么整批视为失败
type Publisher interface {
	PublishBatch(ctx context.Context, posts []model.Post) error
}

type telegramPublisher struct {
	client *resty.Client
	apiURL string
	token  string
	chatID string
}

func NewTelegramPublisher(cfg config.TelegramConfig) Publisher {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = defaultTelegramAPI
	}
	return &telegramPublisher{
		client: resty.New().SetTimeout(30 * time.Second),
		apiURL: strings.TrimRight(apiURL, "/"),
		token:  cfg.BotToken,
		chatID: cfg.ChatID,
	}
}

type telegramResponse struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description"`
}

// PublishBatch 把整批帖子合并为一条消息推送，保证批次原子性
func (s *telegramPublisher) PublishBatch(ctx context.Context, posts []model.Post) error {
	if s.token == "" || s.chatID == "" {
		return ErrPublishChannel
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("内容计划发布（%d 条）\n", len(posts)))
	for _, post := range posts {
		sb.WriteString(fmt.Sprintf("\n[%s] Day %d - %s\n%s\n", post.Type, post.Day, post.Title, post.Content))
		if post.ImageURL != "" {
			sb.WriteString(post.ImageURL + "\n")
		}
	}

	var result telegramResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"chat_id": s.chatID,
			"text":    sb.String(),
		}).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("%s/bot%s/sendMessage", s.apiURL, s.token))
	if err != nil {
		return fmt.Errorf("发布渠道请求失败: %w", err)
	}
	if resp.IsError() || !result.Ok {
		log.ErrorContext(ctx, "批量发布失败", "status", resp.StatusCode(), "description", result.Description)
		return fmt.Errorf("发布渠道拒绝请求: %s", result.Description)
	}

	log.InfoContext(ctx, "批量发布完成", "posts", len(posts))
	return nil
}

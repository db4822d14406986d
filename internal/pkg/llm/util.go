package llm

import (
	"context"
	log "log/slog"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

func readPrompt(file string, fallback string) string {
	if file == "" {
		return fallback
	}
	data, err := os.ReadFile(file)
	if err != nil {
		log.Warn("读取prompt文件失败，使用内置默认", "file", file, "err", err)
		return fallback
	}
	return string(data)
}

func fetchModel(ctx context.Context, m llms.Model, op string, systemPrompt string, userPrompt string, temp float64) (string, error) {
	if err := TextSem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer TextSem.Release(1)

	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(userPrompt),
			},
		},
	}

	opts := []llms.CallOption{
		llms.WithTemperature(temp),
	}
	if textModelName != "" {
		opts = append(opts, llms.WithModel(textModelName))
	}

	log.InfoContext(ctx, "正在请求AI大模型", "op", op)
	resp, err := m.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", ClassifyModelError(op, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", invalidResponse(op, "模型返回数据为空")
	}
	return resp.Choices[0].Content, nil
}

// cleanModelJSON 去掉模型输出中常见的 markdown 代码围栏
func cleanModelJSON(s string) string {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

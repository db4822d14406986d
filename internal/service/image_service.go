package service

import (
	"PlanForge/internal/model"
	"PlanForge/internal/pkg/llm"
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"image/color"
	log "log/slog"
	"math/rand/v2"
	"time"

	"github.com/disintegration/imaging"
)

// ImageService 配图流水线：串行生成整个计划的配图，单帖失败降级为占位图
type ImageService interface {
	FillPlanImages(ctx context.Context, posts []model.Post, tone string, refKeys []string)
	GenerateOne(ctx context.Context, post model.Post, tone string, refKey string) string
}

type imageServiceImpl struct {
	generator llm.ImageModel
	store     *PlanStore
	storage   ObjectStorage
	interval  time.Duration
	policy    llm.RetryPolicy
	waitFn    func(ctx context.Context, d time.Duration) error
}

func NewImageService(generator llm.ImageModel, store *PlanStore, storage ObjectStorage, interval time.Duration) ImageService {
	return &imageServiceImpl{
		generator: generator,
		store:     store,
		storage:   storage,
		interval:  interval,
		policy:    llm.ImageRetryPolicy,
		waitFn:    waitInterval,
	}
}

// FillPlanImages 按提交顺序逐帖生成配图并写回计划。
// 串行 + 帖间固定延迟（首帖前跳过）是对服务商分钟级限流的主动节流
func (s *imageServiceImpl) FillPlanImages(ctx context.Context, posts []model.Post, tone string, refKeys []string) {
	for i, post := range posts {
		if i > 0 {
			if err := s.waitFn(ctx, s.interval); err != nil {
				log.WarnContext(ctx, "配图流水线被取消", "remaining", len(posts)-i)
				return
			}
		}

		refKey := ""
		if len(refKeys) > 0 {
			// 整计划生成时随机挑一张参考图，让多张配图不至于千篇一律
			refKey = refKeys[rand.IntN(len(refKeys))]
		}

		url := s.GenerateOne(ctx, post, tone, refKey)
		if _, err := s.store.PatchPost(post.ID, PostPatch{ImageURL: &url}); err != nil {
			log.WarnContext(ctx, "配图写回失败", "post_id", post.ID, "err", err)
		}
	}
	log.InfoContext(ctx, "配图流水线完成", "posts", len(posts))
}

// GenerateOne 为单帖生成配图，返回最终可用的图片引用。
// 任何失败（含重试耗尽）都在此处兜底为占位图，绝不向上抛出
func (s *imageServiceImpl) GenerateOne(ctx context.Context, post model.Post, tone string, refKey string) string {
	req := &llm.ImageRequest{
		PostID:      post.ID,
		Title:       post.Title,
		Excerpt:     truncateExcerpt(post.Content, 160),
		ImagePrompt: post.ImagePrompt,
		Tone:        tone,
	}

	if refKey != "" {
		data, mime, err := s.storage.GetTempObject(ctx, refKey)
		if err != nil {
			log.WarnContext(ctx, "参考图读取失败，忽略", "key", refKey, "err", err)
		} else {
			req.Reference = &llm.ReferenceImage{Data: data, MimeType: mime}
		}
	}

	res, err := llm.Invoke(ctx, s.policy, func(ctx context.Context) (*llm.ImageResult, error) {
		return s.generator.Generate(ctx, req)
	})
	if err != nil {
		log.WarnContext(ctx, "配图生成失败，使用占位图", "post_id", post.ID, "err", err)
		return s.placeholder(ctx, post.ID)
	}

	objectName := fmt.Sprintf("plans/%s/%s%s", time.Now().Format("2006/01/02"), post.ID, extForMime(res.MimeType))
	url, err := s.storage.UploadImage(ctx, objectName, res.Data, res.MimeType)
	if err != nil {
		log.WarnContext(ctx, "配图上传失败，使用占位图", "post_id", post.ID, "err", err)
		return s.placeholder(ctx, post.ID)
	}
	return url
}

// placeholder 按帖子 id 确定性生成占位图：同一帖子永远得到同一个引用
func (s *imageServiceImpl) placeholder(ctx context.Context, postID string) string {
	objectName := "placeholders/" + postID + ".jpg"

	url, err := s.storage.UploadImage(ctx, objectName, renderPlaceholder(postID), "image/jpeg")
	if err != nil {
		log.WarnContext(ctx, "占位图上传失败，使用外部占位引用", "post_id", postID, "err", err)
		return FallbackPlaceholderURL(postID)
	}
	return url
}

// renderPlaceholder 从 id 哈希派生纯色底图
func renderPlaceholder(postID string) []byte {
	sum := sha256.Sum256([]byte(postID))
	c := color.NRGBA{R: sum[0], G: sum[1], B: sum[2], A: 255}

	img := imaging.New(1024, 1024, c)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		return nil
	}
	return buf.Bytes()
}

// FallbackPlaceholderURL 终极兜底：以 id 为种子的外部占位图地址
func FallbackPlaceholderURL(postID string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/1024/1024", postID)
}

func waitInterval(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncateExcerpt(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

func extForMime(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

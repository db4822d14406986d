package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	log "log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

// ReferenceImage 用户提供的参考图，内联进图像请求
type ReferenceImage struct {
	Data     []byte
	MimeType string
}

// ImageRequest 单张配图生成入参
type ImageRequest struct {
	PostID      string
	Title       string
	Excerpt     string
	ImagePrompt string
	Tone        string
	Reference   *ReferenceImage
}

type ImageResult struct {
	Data     []byte
	MimeType string
}

// ImageModel 图像模型适配器
type ImageModel interface {
	Generate(ctx context.Context, req *ImageRequest) (*ImageResult, error)
}

// 图像接入点走 Gemini 风格的 generateContent 接口：
// 请求为有序 parts（可选内联参考图 + 指令文本），响应 parts 中携带内联图像数据
type geminiImageModel struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	model   string
}

func NewImageModel(baseURL, apiKey, model string) ImageModel {
	client := resty.New().
		SetTimeout(90 * time.Second)

	return &geminiImageModel{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

type imagePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *imageBlobParam `json:"inline_data,omitempty"`
}

type imageBlobParam struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type imageGenRequest struct {
	Contents []struct {
		Parts []imagePart `json:"parts"`
	} `json:"contents"`
}

type imageGenResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (s *geminiImageModel) Generate(ctx context.Context, req *ImageRequest) (*ImageResult, error) {
	if err := ImageSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer ImageSem.Release(1)

	var parts []imagePart
	if req.Reference != nil {
		parts = append(parts, imagePart{
			InlineData: &imageBlobParam{
				MimeType: req.Reference.MimeType,
				Data:     base64.StdEncoding.EncodeToString(req.Reference.Data),
			},
		})
	}
	parts = append(parts, imagePart{Text: buildImageDirective(req)})

	var body imageGenRequest
	body.Contents = make([]struct {
		Parts []imagePart `json:"parts"`
	}, 1)
	body.Contents[0].Parts = parts

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.baseURL, s.model)

	log.InfoContext(ctx, "正在请求图像模型", "post_id", req.PostID)
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", s.apiKey).
		SetBody(body).
		Post(url)
	if err != nil {
		return nil, ClassifyModelError("image_generation", err)
	}
	if resp.IsError() {
		return nil, ClassifyHTTPStatus("image_generation", resp.StatusCode(), resp.String())
	}

	var out imageGenResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, invalidResponse("image_generation", "返回数据解析失败: %v", err)
	}

	// 取响应中第一个内联图像数据
	for _, cand := range out.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, decErr := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if decErr != nil {
				return nil, invalidResponse("image_generation", "图像数据解码失败: %v", decErr)
			}
			mime := part.InlineData.MimeType
			if mime == "" {
				mime = "image/png"
			}
			return &ImageResult{Data: data, MimeType: mime}, nil
		}
	}

	return nil, invalidResponse("image_generation", "模型未返回图像数据")
}

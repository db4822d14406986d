package handler

import (
	"PlanForge/internal/api/dto"
	"PlanForge/internal/pkg/consts"
	"PlanForge/internal/pkg/minio"
	"PlanForge/internal/pkg/redis"
	"PlanForge/internal/pkg/response"
	"PlanForge/internal/pkg/util"
	"PlanForge/internal/service"
	log "log/slog"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type MediaHandler struct{}

func NewMediaHandler() *MediaHandler {
	return &MediaHandler{}
}

// Upload 上传参考图到临时桶，仅接受图片，超过24小时未被引用会被定时清理
func (s *MediaHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	defer func() { _ = reader.Close() }()

	contentType, err := util.GetSafeContentType(reader)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if !strings.HasPrefix(contentType, consts.MimePrefixImage) {
		response.Error(c, service.ErrFileNotSupported)
		return
	}

	ext := path.Ext(file.Filename)
	objectName := time.Now().Format("2006/01/02/") + uuid.NewString() + ext

	fileKey, err := minio.UploadTempFile(c.Request.Context(), objectName, reader, file.Size, contentType)
	if err != nil {
		log.ErrorContext(c, "MinIO upload failed", "err", err)
		response.Error(c, service.UnExpectedError)
		return
	}

	meta := dto.MediaTempMetadata{
		MimeType:  contentType,
		Size:      file.Size,
		CreatedAt: time.Now().Unix(),
	}
	metaBytes, _ := json.Marshal(meta)
	_ = redis.HSet(c.Request.Context(), consts.MediaTempKey, fileKey, string(metaBytes))

	res := map[string]interface{}{
		"key":      fileKey,
		"mime":     contentType,
		"size":     file.Size,
		"original": file.Filename,
	}

	log.InfoContext(c, "media upload success and metadata cached", "fileKey", fileKey, "type", contentType)
	response.Success(c, res)
}

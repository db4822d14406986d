package service

import (
	"PlanForge/internal/pkg/minio"
	"context"
)

// ObjectStorage 图像流水线对对象存储的最小依赖
type ObjectStorage interface {
	UploadImage(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
	GetTempObject(ctx context.Context, key string) ([]byte, string, error)
}

type minioStorage struct{}

func NewMinioStorage() ObjectStorage {
	return &minioStorage{}
}

func (s *minioStorage) UploadImage(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	key, err := minio.UploadBytes(ctx, objectName, data, contentType)
	if err != nil {
		return "", err
	}
	return minio.GetPublicURL(key), nil
}

func (s *minioStorage) GetTempObject(ctx context.Context, key string) ([]byte, string, error) {
	return minio.GetTempObject(ctx, key)
}

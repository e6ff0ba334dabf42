package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// StorageService 上传原件归档。明细文件落库后原件存一份到对象存储，
// 便于追溯某次导入的来源。未配置 MinIO 时归档静默跳过。
type StorageService struct {
	minioClient *minio.Client
	bucket      string
	logger      *zap.Logger
}

func NewStorageService(minioClient *minio.Client, bucket string, logger *zap.Logger) *StorageService {
	return &StorageService{minioClient: minioClient, bucket: bucket, logger: logger}
}

// ArchiveUpload 归档上传原件，返回对象路径
func (s *StorageService) ArchiveUpload(ctx context.Context, projectCode, fileName string, reader io.Reader, size int64, contentType string) (string, error) {
	if s.minioClient == nil {
		return "", nil
	}

	objectName := fmt.Sprintf("uploads/%s/%s/%s%s",
		projectCode,
		time.Now().Format("2006/01/02"),
		uuid.New().String()[:8],
		filepath.Ext(fileName),
	)

	_, err := s.minioClient.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("archive upload: %w", err)
	}

	s.logger.Info("上传原件已归档",
		zap.String("project_code", projectCode),
		zap.String("object", objectName),
	)
	return objectName, nil
}

// PresignedURL 生成归档原件的临时下载链接
func (s *StorageService) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if s.minioClient == nil {
		return "", fmt.Errorf("对象存储未配置")
	}
	u, err := s.minioClient.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}
	return u.String(), nil
}

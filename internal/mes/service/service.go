package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/shange6/wantong/internal/config"
	"github.com/shange6/wantong/internal/mes/repository"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Project   *ProjectService
	Component *ComponentService
	Part      *PartService
	Order     *OrderService
	Import    *ImportService
	Storage   *StorageService
}

// NewServices 创建服务集合。Redis 可用时导入锁走 Redis，
// 单实例部署没配 Redis 就退回进程内锁。
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	var locker ProjectLocker
	if rdb != nil {
		locker = NewRedisLocker(rdb, cfg.Import.LockTTL)
	} else {
		locker = NewMemoryLocker()
	}

	// 初始化MinIO客户端
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("MinIO初始化失败，归档功能停用", zap.Error(err))
			minioClient = nil
		}
	}

	return &Services{
		Project:   NewProjectService(repos.Project),
		Component: NewComponentService(repos.Component, repos.Project),
		Part:      NewPartService(repos.Part, repos.Project),
		Order:     NewOrderService(repos.Order, repos.Component),
		Import:    NewImportService(repos, locker, logger),
		Storage:   NewStorageService(minioClient, cfg.MinIO.Bucket, logger),
	}
}

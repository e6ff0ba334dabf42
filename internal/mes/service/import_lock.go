package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProjectLocker 导入会话互斥：同一项目同时只允许一个导入会话，
// 第二个会话直接拿到 ConcurrentImportConflict，由调用方稍后重试。
// 不同项目的导入互不影响。
type ProjectLocker interface {
	Acquire(ctx context.Context, projectCode string) (release func(), err error)
}

// memoryLocker 单实例部署用的进程内锁
type memoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryLocker 创建进程内项目锁
func NewMemoryLocker() ProjectLocker {
	return &memoryLocker{held: make(map[string]struct{})}
}

func (l *memoryLocker) Acquire(_ context.Context, projectCode string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[projectCode]; ok {
		return nil, &ConcurrentImportConflict{ProjectCode: projectCode}
	}
	l.held[projectCode] = struct{}{}

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, projectCode)
	}, nil
}

// redisLocker 多实例部署用的 Redis SETNX 锁，TTL 兜底防止崩溃后死锁
type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker 创建 Redis 项目锁
func NewRedisLocker(client *redis.Client, ttl time.Duration) ProjectLocker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisLocker{client: client, ttl: ttl}
}

func (l *redisLocker) key(projectCode string) string {
	return fmt.Sprintf("wantong:import:lock:%s", projectCode)
}

func (l *redisLocker) Acquire(ctx context.Context, projectCode string) (func(), error) {
	ok, err := l.client.SetNX(ctx, l.key(projectCode), time.Now().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire import lock: %w", err)
	}
	if !ok {
		return nil, &ConcurrentImportConflict{ProjectCode: projectCode}
	}

	return func() {
		// 释放走后台上下文，避免请求取消把锁留到TTL过期
		l.client.Del(context.Background(), l.key(projectCode))
	}, nil
}

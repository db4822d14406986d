package service

import (
	"PlanForge/internal/pkg/consts"
	"PlanForge/internal/pkg/redis"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunGate 生成任务互斥门：同一时刻只允许一个生成任务在跑
type RunGate interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context)
}

// 锁带30分钟过期，防止异常退出的任务永久占门。
// token 由请求方与后台流水线两个 goroutine 访问，必须加锁
type redisRunGate struct {
	mu    sync.Mutex
	token string

	lockFn   func(ctx context.Context, key string, value interface{}, expiration time.Duration, retryTimes int) (bool, error)
	unlockFn func(ctx context.Context, key string, value interface{})
}

func NewRunGate() RunGate {
	return &redisRunGate{
		lockFn:   redis.TryLock,
		unlockFn: redis.UnLock,
	}
}

// TryAcquire 抢锁成功后才记录令牌，落败的调用不得覆盖在跑任务的令牌
func (s *redisRunGate) TryAcquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := s.lockFn(ctx, consts.RunLockKey, token, 30*time.Minute, 1)
	if err != nil || !ok {
		return false, err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return true, nil
}

func (s *redisRunGate) Release(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.token = ""
	s.mu.Unlock()

	if token == "" {
		return
	}
	s.unlockFn(ctx, consts.RunLockKey, token)
}

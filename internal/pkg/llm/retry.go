package llm

import (
	"context"
	log "log/slog"
	"time"
)

// RetryPolicy 限流重试预算，不同调用类别使用不同预算：
// 图像与联网检索类调用受更严的分钟级配额限制，预算更大
type RetryPolicy struct {
	Retries int
	Delay   time.Duration
	Backoff float64
}

var (
	TextRetryPolicy   = RetryPolicy{Retries: 2, Delay: 2 * time.Second, Backoff: 1.5}
	SearchRetryPolicy = RetryPolicy{Retries: 4, Delay: 3 * time.Second, Backoff: 2}
	ImageRetryPolicy  = RetryPolicy{Retries: 4, Delay: 5 * time.Second, Backoff: 2}
)

var waitFn = wait

// Invoke 执行一次外部调用，仅对限流类错误按指数退避重试。
// 总尝试次数不超过 Retries+1，其余错误原样向上传递
func Invoke[T any](ctx context.Context, policy RetryPolicy, call func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	delay := policy.Delay

	for attempt := 0; ; attempt++ {
		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		if !IsRateLimited(err) || attempt >= policy.Retries {
			return zero, err
		}

		log.WarnContext(ctx, "触发限流，等待后重试", "attempt", attempt+1, "delay", delay.String(), "err", err)
		if werr := waitFn(ctx, delay); werr != nil {
			return zero, werr
		}
		delay = time.Duration(float64(delay) * policy.Backoff)
	}
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

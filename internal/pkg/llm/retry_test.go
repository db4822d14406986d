package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubWait(delays *[]time.Duration) func(ctx context.Context, d time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestInvoke_RetryOnRateLimit(t *testing.T) {
	origWait := waitFn
	defer func() { waitFn = origWait }()

	var delays []time.Duration
	waitFn = stubWait(&delays)

	rateLimited := &CallError{Kind: KindRateLimited, Op: "test", Err: errors.New("429")}
	policy := RetryPolicy{Retries: 3, Delay: time.Second, Backoff: 2}

	t.Run("限流错误重试至预算耗尽", func(t *testing.T) {
		delays = nil
		attempts := 0
		_, err := Invoke(context.Background(), policy, func(ctx context.Context) (string, error) {
			attempts++
			return "", rateLimited
		})

		require.Error(t, err)
		assert.True(t, IsRateLimited(err))
		// Retries=3 意味着总共 4 次尝试
		assert.Equal(t, 4, attempts)
		assert.Len(t, delays, 3)
	})

	t.Run("退避延迟单调不减", func(t *testing.T) {
		delays = nil
		_, _ = Invoke(context.Background(), policy, func(ctx context.Context) (string, error) {
			return "", rateLimited
		})

		require.Len(t, delays, 3)
		for i := 1; i < len(delays); i++ {
			assert.GreaterOrEqual(t, delays[i], delays[i-1])
		}
		assert.Equal(t, time.Second, delays[0])
		assert.Equal(t, 2*time.Second, delays[1])
		assert.Equal(t, 4*time.Second, delays[2])
	})

	t.Run("重试成功后返回结果", func(t *testing.T) {
		delays = nil
		attempts := 0
		out, err := Invoke(context.Background(), policy, func(ctx context.Context) (string, error) {
			attempts++
			if attempts < 3 {
				return "", rateLimited
			}
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", out)
		assert.Equal(t, 3, attempts)
	})
}

func TestInvoke_NoRetryOnOtherErrors(t *testing.T) {
	origWait := waitFn
	defer func() { waitFn = origWait }()

	var delays []time.Duration
	waitFn = stubWait(&delays)

	policy := RetryPolicy{Retries: 3, Delay: time.Second, Backoff: 2}

	tests := []struct {
		name string
		err  error
	}{
		{"响应格式错误不重试", &CallError{Kind: KindInvalidResponse, Op: "test", Err: errors.New("bad json")}},
		{"未知错误不重试", errors.New("connection refused")},
		{"404不重试", &CallError{Kind: KindNotFound, Op: "test", Err: errors.New("status 404")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delays = nil
			attempts := 0
			_, err := Invoke(context.Background(), policy, func(ctx context.Context) (string, error) {
				attempts++
				return "", tt.err
			})

			require.Error(t, err)
			assert.Equal(t, 1, attempts)
			assert.Empty(t, delays)
		})
	}
}

func TestInvoke_ContextCanceledDuringWait(t *testing.T) {
	origWait := waitFn
	defer func() { waitFn = origWait }()

	waitFn = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	attempts := 0
	_, err := Invoke(context.Background(), RetryPolicy{Retries: 3, Delay: time.Second, Backoff: 2},
		func(ctx context.Context) (string, error) {
			attempts++
			return "", &CallError{Kind: KindRateLimited, Op: "test", Err: errors.New("429")}
		})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

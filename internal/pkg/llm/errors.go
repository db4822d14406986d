package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind 外部调用错误的机器可判定分类，重试逻辑只依赖此分类，不依赖错误文本
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindRateLimited
	KindInvalidResponse
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindInvalidResponse:
		return "invalid_response"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

// CallError 外部模型调用错误
type CallError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: [%s] %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: [%s]", e.Op, e.Kind)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// rateLimitMarkers 服务商限流/配额错误的特征串
var rateLimitMarkers = []string{
	"429",
	"resource_exhausted",
	"resource has been exhausted",
	"quota",
	"rate limit",
	"too many requests",
}

// ClassifyModelError 在适配层把底层错误转换为带分类的 CallError，
// 之后的所有判定都走 ErrorKind
func ClassifyModelError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CallError
	if errors.As(err, &ce) {
		return err
	}

	msg := strings.ToLower(err.Error())
	kind := KindUnknown
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			kind = KindRateLimited
			break
		}
	}
	if kind == KindUnknown && strings.Contains(msg, "not found") {
		kind = KindNotFound
	}
	return &CallError{Kind: kind, Op: op, Err: err}
}

// ClassifyHTTPStatus 按 HTTP 状态码与响应体分类
func ClassifyHTTPStatus(op string, status int, body string) error {
	lower := strings.ToLower(body)
	switch {
	case status == 429 || strings.Contains(lower, "resource_exhausted") || strings.Contains(lower, "quota"):
		return &CallError{Kind: KindRateLimited, Op: op, Err: fmt.Errorf("status %d: %s", status, truncateForLog(body))}
	case status == 404:
		return &CallError{Kind: KindNotFound, Op: op, Err: fmt.Errorf("status %d", status)}
	default:
		return &CallError{Kind: KindUnknown, Op: op, Err: fmt.Errorf("status %d: %s", status, truncateForLog(body))}
	}
}

func invalidResponse(op string, format string, args ...any) error {
	return &CallError{Kind: KindInvalidResponse, Op: op, Err: fmt.Errorf(format, args...)}
}

func IsRateLimited(err error) bool {
	return kindOf(err) == KindRateLimited
}

func IsInvalidResponse(err error) bool {
	return kindOf(err) == KindInvalidResponse
}

func kindOf(err error) ErrorKind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

func truncateForLog(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

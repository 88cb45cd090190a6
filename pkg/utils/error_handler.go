package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ToolError 是字幕处理工具错误的基础类型
type ToolError struct {
	Message string
	Cause   error
}

// Error 实现error接口
func (e *ToolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

// Unwrap 支持error chain
func (e *ToolError) Unwrap() error {
	return e.Cause
}

// NewError 创建一个新的ToolError
func NewError(message string, cause error) error {
	return &ToolError{
		Message: message,
		Cause:   cause,
	}
}

// permanentError 标记不应重试的错误
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent 包装一个错误，使 Retry 立即返回而不再重试
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// ErrorHandler 处理错误和重试
type ErrorHandler struct {
	MaxRetries int
	RetryDelay float64
	ErrorStats map[string]map[string]int // 操作 -> 错误信息 -> 计数

	mu sync.Mutex
}

// NewErrorHandler 创建新的错误处理器
func NewErrorHandler(maxRetries int, retryDelay float64) *ErrorHandler {
	return &ErrorHandler{
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
		ErrorStats: make(map[string]map[string]int),
	}
}

// Retry 执行函数并在失败时重试
func (h *ErrorHandler) Retry(operation string, fn func() error) error {
	return h.RetryContext(context.Background(), operation, fn)
}

// RetryContext 与 Retry 相同，但在等待重试期间响应 ctx 取消
func (h *ErrorHandler) RetryContext(ctx context.Context, operation string, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < h.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil // 成功执行
		}

		lastErr = err
		h.updateErrorStats(operation, err.Error())

		var perm *permanentError
		if errors.As(err, &perm) {
			return NewError(fmt.Sprintf("操作 %s 失败", operation), perm.err)
		}

		if attempt < h.MaxRetries-1 {
			delay := h.RetryDelay * float64(attempt+1)
			Warn("操作 %s 失败 (尝试 %d/%d): %s", operation, attempt+1, h.MaxRetries, err)
			Warn("等待 %.1f 秒后重试...", delay)

			timer := time.NewTimer(time.Duration(delay * float64(time.Second)))
			select {
			case <-ctx.Done():
				timer.Stop()
				return NewError(fmt.Sprintf("操作 %s 已取消", operation), ctx.Err())
			case <-timer.C:
			}
		}
	}

	return NewError(fmt.Sprintf("操作 %s 重试 %d 次后仍然失败", operation, h.MaxRetries), lastErr)
}

// SafeExecute 安全地执行函数，并在失败时进行清理
func (h *ErrorHandler) SafeExecute(operation string, fn func() error, cleanup func()) error {
	err := fn()
	if err != nil {
		h.updateErrorStats(operation, err.Error())

		// 执行清理
		if cleanup != nil {
			Info("执行清理操作...")
			cleanup()
		}

		return NewError(fmt.Sprintf("操作 %s 失败", operation), err)
	}
	return nil
}

// 更新错误统计
func (h *ErrorHandler) updateErrorStats(operation string, errMsg string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ErrorStats[operation] == nil {
		h.ErrorStats[operation] = make(map[string]int)
	}
	h.ErrorStats[operation][errMsg]++
}

// GetErrorStats 获取错误统计信息的副本
func (h *ErrorHandler) GetErrorStats() map[string]map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := make(map[string]map[string]int, len(h.ErrorStats))
	for operation, errs := range h.ErrorStats {
		inner := make(map[string]int, len(errs))
		for msg, count := range errs {
			inner[msg] = count
		}
		stats[operation] = inner
	}
	return stats
}

// PrintErrorStats 打印错误统计信息
func (h *ErrorHandler) PrintErrorStats() {
	stats := h.GetErrorStats()
	if len(stats) == 0 {
		Info("没有错误记录")
		return
	}

	Info("错误统计:")
	for operation, errs := range stats {
		Info("操作: %s", operation)
		for errMsg, count := range errs {
			Info("  - %s: %d次", errMsg, count)
		}
	}
}

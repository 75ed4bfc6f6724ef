// Package errors 定义业务错误分类。
//
// 服务层返回 *AppError 哨兵（或其包装），Handler 按 Kind 映射 HTTP 状态码，
// 其余未分类错误一律视为内部错误。
package errors

import (
	"errors"
	"fmt"
)

// Kind 错误类别
type Kind string

const (
	KindInvalid         Kind = "invalid"         // 输入校验失败（事务开启前）
	KindUnauthenticated Kind = "unauthenticated" // 身份凭证无效
	KindForbidden       Kind = "forbidden"       // 资源存在但无权操作
	KindNotFound        Kind = "not_found"       // 资源不存在或对调用方不可见
	KindConflict        Kind = "conflict"        // 唯一性冲突
	KindDependency      Kind = "dependency"      // 外部依赖（身份服务 / 对象存储）不可用
	KindInternal        Kind = "internal"
)

// AppError 携带类别与业务码的错误
type AppError struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is 同类别同业务码即视为同一错误，便于 Wrap 之后仍能 errors.Is 哨兵
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Code == e.Code
}

// Wrap 附加底层原因，返回新的 *AppError
func (e *AppError) Wrap(err error) *AppError {
	return &AppError{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: err}
}

// WithMessage 替换对外提示信息
func (e *AppError) WithMessage(format string, args ...interface{}) *AppError {
	return &AppError{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

// New 创建 AppError
func New(kind Kind, code int, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func Invalid(code int, message string) *AppError    { return New(KindInvalid, code, message) }
func NotFound(code int, message string) *AppError   { return New(KindNotFound, code, message) }
func Forbidden(code int, message string) *AppError  { return New(KindForbidden, code, message) }
func Conflict(code int, message string) *AppError   { return New(KindConflict, code, message) }
func Dependency(code int, message string) *AppError { return New(KindDependency, code, message) }
func Unauthenticated(code int, message string) *AppError {
	return New(KindUnauthenticated, code, message)
}

// As 提取错误链中的 *AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf 返回错误类别，未分类错误为 KindInternal
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind 判断错误是否属于指定类别
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

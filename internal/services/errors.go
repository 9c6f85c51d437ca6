package services

import (
	"errors"
	"fmt"
	"strings"
)

// 邀请码相关错误
var (
	ErrCodeNotFound        = errors.New("邀请码不存在")
	ErrCodeAlreadyUsed     = errors.New("邀请码已被使用")
	ErrCodeExpired         = errors.New("邀请码已过期")
	ErrInvalidTransition   = errors.New("邀请码状态不允许该操作")
	ErrGenerationExhausted = errors.New("邀请码生成重试次数耗尽")
)

// 开通账号相关错误
var (
	ErrLoginTaken = errors.New("用户名已存在")
	ErrEmailTaken = errors.New("邮箱已存在")
)

// ValidationError 字段级校验错误
// 字段名到错误描述的映射随错误一并返回给调用方
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "参数校验失败: " + strings.Join(parts, "; ")
}

// NewValidationError 创建字段级校验错误
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

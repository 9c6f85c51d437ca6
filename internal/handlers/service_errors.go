package handlers

import (
	"awp/internal/services"
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "awp/pkg/errors"
	"awp/pkg/response"
)

// writeServiceError 将服务层错误翻译为统一响应
func writeServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		response.ErrorWithData(c, apperrors.CodeInvalidParam, "参数校验失败", validationErr.Fields)
		return
	}

	switch {
	case errors.Is(err, services.ErrCodeNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrCodeAlreadyUsed),
		errors.Is(err, services.ErrCodeExpired):
		response.Gone(c, err.Error())
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrLoginTaken),
		errors.Is(err, services.ErrEmailTaken):
		response.Conflict(c, err.Error())
	case errors.Is(err, services.ErrGenerationExhausted):
		response.ServerError(c, err.Error())
	default:
		response.ServerError(c, err.Error())
	}
}

// isUserFacing 判断是否为用户可处理的业务错误
// 非业务错误（存储/基础设施故障）允许调用层透明重试一次
func isUserFacing(err error) bool {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return true
	}
	return errors.Is(err, services.ErrCodeNotFound) ||
		errors.Is(err, services.ErrCodeAlreadyUsed) ||
		errors.Is(err, services.ErrCodeExpired) ||
		errors.Is(err, services.ErrInvalidTransition) ||
		errors.Is(err, services.ErrLoginTaken) ||
		errors.Is(err, services.ErrEmailTaken)
}

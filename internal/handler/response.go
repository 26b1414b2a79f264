package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nelson-escalona/donations-ledger/internal/engine"
	"github.com/nelson-escalona/donations-ledger/internal/logic"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// respondError 把引擎/逻辑层错误映射为HTTP状态码后返回。
// 引擎不区分用户错误和程序错误，全部以具体错误种类上报，映射只在这一层做。
func respondError(c *gin.Context, err error) {
	ErrorResponse(c, errorStatus(err), err.Error())
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrCampaignNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrCampaignPaused),
		errors.Is(err, engine.ErrTierInactive),
		errors.Is(err, engine.ErrInsufficientBalance):
		return http.StatusConflict
	case errors.Is(err, engine.ErrIndexOutOfRange),
		errors.Is(err, engine.ErrAmountMismatch),
		errors.Is(err, engine.ErrInvalidAmount),
		errors.Is(err, engine.ErrInvalidGoal),
		errors.Is(err, engine.ErrOverflow),
		errors.Is(err, logic.ErrInvalidAddress),
		errors.Is(err, logic.ErrInvalidAmountFormat),
		errors.Is(err, logic.ErrEmptyName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

package response

import (
	"errors"
	"net/http"

	"anonboard/pkg/errs"
	"anonboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// Fail 业务失败响应 (HTTP 200, 业务码非 0)
func Fail(c *gin.Context, errCode int, msg string) {
	c.JSON(http.StatusOK, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// HandleError 按错误分类输出响应，未分类的错误记录日志并返回 500
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		Error(c, http.StatusNotFound, ErrResourceNotFound, err.Error())
	case errors.Is(err, errs.ErrForbidden):
		Error(c, http.StatusForbidden, ErrNoPermission, err.Error())
	case errors.Is(err, errs.ErrInvalidArgument):
		Error(c, http.StatusBadRequest, ErrInvalidParam, err.Error())
	case errors.Is(err, errs.ErrAlreadyExists):
		Error(c, http.StatusConflict, ErrDuplicate, err.Error())
	case errors.Is(err, errs.ErrConflict):
		Error(c, http.StatusConflict, ErrConcurrentUpdate, err.Error())
	default:
		logger.Log.Error("unhandled error",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		Error(c, http.StatusInternalServerError, ErrServerInternal, "internal server error")
	}
}

// BadRequest 参数绑定失败
func BadRequest(c *gin.Context, err error) {
	Error(c, http.StatusBadRequest, ErrInvalidParam, err.Error())
}

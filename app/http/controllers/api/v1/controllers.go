// Package v1 API v1 控制器
package v1

import (
	"errors"

	"github.com/gin-gonic/gin"

	"market/app/requests"
	"market/pkg/response"
)

// BaseAPIController 基础控制器
type BaseAPIController struct {
}

// handleValidationError 区分表单验证失败和请求格式错误
func handleValidationError(c *gin.Context, err error) {
	var ve requests.ValidationError
	if errors.As(err, &ve) {
		response.ValidationError(c, ve.Errors)
		return
	}
	response.BadRequest(c, err)
}

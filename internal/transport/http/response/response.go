package response

import (
	"github.com/gin-gonic/gin"

	"go-social-api/internal/apperr"
)

// 错误体固定 {message, data?}；状态码用真实 HTTP 码，
// 不走「200 + body code」那套

type errBody struct {
	Message string             `json:"message"`
	Data    []apperr.FieldError `json:"data,omitempty"`
}

// Err 把业务错误翻译成响应；缺码的按 500
func Err(c *gin.Context, err error) {
	ae := apperr.From(err)
	c.JSON(ae.Code, errBody{Message: ae.Message, Data: ae.Data})
}

func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errBody{Message: msg})
}

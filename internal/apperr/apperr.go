package apperr

import (
	"errors"
	"net/http"
)

// FieldError 单条字段错误，对外只暴露 message
type FieldError struct {
	Message string `json:"message"`
}

// E 业务错误：Code 直接用 HTTP 语义，Data 是字段级明细（422 才有）
type E struct {
	Code    int
	Message string
	Data    []FieldError
	Err     error // 内部原因，不出响应
}

func (e *E) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e *E) Unwrap() error { return e.Err }

// Extensions 让 graphql-go 把 code/data 带进 errors[].extensions
func (e *E) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.Code}
	if len(e.Data) > 0 {
		msgs := make([]map[string]interface{}, 0, len(e.Data))
		for _, d := range e.Data {
			msgs = append(msgs, map[string]interface{}{"message": d.Message})
		}
		ext["data"] = msgs
	}
	return ext
}

func Validation(msg string, data []FieldError) error {
	return &E{Code: http.StatusUnprocessableEntity, Message: msg, Data: data}
}

func Unauthorized(msg string) error { return &E{Code: http.StatusUnauthorized, Message: msg} }
func Forbidden(msg string) error    { return &E{Code: http.StatusForbidden, Message: msg} }
func NotFound(msg string) error     { return &E{Code: http.StatusNotFound, Message: msg} }
func Conflict(msg string) error     { return &E{Code: http.StatusConflict, Message: msg} }

func Internal(msg string, err error) error {
	return &E{Code: http.StatusInternalServerError, Message: msg, Err: err}
}

// From 任意 error 归一化；非 *E 的按 500 处理
func From(err error) *E {
	var ae *E
	if errors.As(err, &ae) {
		if ae.Code == 0 {
			ae.Code = http.StatusInternalServerError
		}
		return ae
	}
	return &E{Code: http.StatusInternalServerError, Message: "Internal server error.", Err: err}
}

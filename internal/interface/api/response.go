package api

import "github.com/gin-gonic/gin"

const (
	CodeSuccess = 0
)

const (
	ErrInvalidRequest = 10001
	ErrUnauthorized   = 10002
)

const (
	ErrPassNotFound     = 20001
	ErrDuplicatePass    = 20002
	ErrNoActivePass     = 20003
	ErrBenefitExhausted = 20004
)

const (
	ErrInternal = 99999
)

// Response is the envelope of every API answer. Data is always present, null when empty.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func Success(c *gin.Context, data any) {
	c.JSON(200, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func Fail(c *gin.Context, httpStatus, appCode int, message string) {
	FailWithData(c, httpStatus, appCode, message, nil)
}

func FailWithData(c *gin.Context, httpStatus, appCode int, message string, data any) {
	c.JSON(httpStatus, Response{
		Code:    appCode,
		Message: message,
		Data:    data,
	})
}

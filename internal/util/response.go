package util

import (
	"course_market_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Code      int         `json:"code"`
	ErrorCode string      `json:"errorCode,omitempty"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
}

// PageResponse wraps paginated list payloads.
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// Fail carries a machine-readable error code alongside the message. Clients
// branch on ErrorCode, not on message text.
func Fail(c *gin.Context, status int, errorCode, message string) {
	c.JSON(status, Response{
		Code:      status,
		ErrorCode: errorCode,
		Message:   message,
	})
}

func Unauthorized(c *gin.Context) {
	Fail(c, http.StatusUnauthorized, CodeUnauthenticated, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Fail(c, http.StatusForbidden, CodeForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, CodeValidation, message)
}

func NotFound(c *gin.Context) {
	Fail(c, http.StatusNotFound, CodeNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Fail(c, http.StatusInternalServerError, CodeInternal, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	InternalServerError(c)
}

package util

import (
	"ethioheritage_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope every handler answers with.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Code: status, Message: message, Data: data})
}

func Success(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, "success", data)
}

func Created(c *gin.Context, data interface{}) {
	respond(c, http.StatusCreated, "created", data)
}

func Error(c *gin.Context, status int, message string) {
	respond(c, status, message, nil)
}

func Unauthorized(c *gin.Context) { Error(c, http.StatusUnauthorized, "Unauthorized") }
func Forbidden(c *gin.Context) { Error(c, http.StatusForbidden, "Forbidden") }
func InternalServerError(c *gin.Context) { Error(c, http.StatusInternalServerError, "Internal server error") }
func BadRequest(c *gin.Context, message string) { Error(c, http.StatusBadRequest, message) }
func Conflict(c *gin.Context, message string) { Error(c, http.StatusConflict, message) }
func UnprocessableEntity(c *gin.Context, message string) { Error(c, http.StatusUnprocessableEntity, message) }

// LogInternalError hides err from the client and logs it with the route.
func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
	)
	InternalServerError(c)
}

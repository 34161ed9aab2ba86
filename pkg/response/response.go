package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staynest/service-booking/pkg/domain"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string           `json:"error"`
	Code  domain.ErrorKind `json:"code"`
}

// Success writes a 200 response.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created writes a 201 response.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// Paginated writes a page of items with its totals.
func Paginated[T any](c *gin.Context, items []T, total int64, page, limit int) {
	c.JSON(http.StatusOK, domain.NewPaginatedResult(items, total, page, limit))
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes the response for err. Internal failures are attached to the
// gin context for the request logger and reported with a generic message.
func Error(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(StatusFor(kind), ErrorBody{Error: domain.PublicMessage(err), Code: kind})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{Error: message, Code: domain.KindInvalidArgument})
}

// Unauthorized writes a 401.
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorBody{Error: message, Code: "UNAUTHENTICATED"})
}

// Forbidden writes a 403.
func Forbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, ErrorBody{Error: message, Code: domain.KindForbidden})
}

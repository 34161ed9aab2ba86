package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/staynest/service-booking/internal/application"
	"github.com/staynest/service-booking/pkg/auth"
	"github.com/staynest/service-booking/pkg/middleware"
	"github.com/staynest/service-booking/pkg/response"
)

// PropertyHandler exposes the property projection to admins, for
// inspection and for backfilling when the event stream is unavailable.
type PropertyHandler struct {
	service *application.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(service *application.PropertyService) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// RegisterRoutes registers the admin property routes.
func (h *PropertyHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	properties := r.Group("/admin/properties")
	properties.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		properties.GET("/:id", h.GetProperty)
		properties.PUT("/:id", h.UpsertProperty)
	}
}

// GetProperty handles GET /admin/properties/:id.
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid property id")
		return
	}

	result, err := h.service.GetProperty(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpsertProperty handles PUT /admin/properties/:id.
func (h *PropertyHandler) UpsertProperty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid property id")
		return
	}

	var req application.UpsertPropertyRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.UpsertProperty(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

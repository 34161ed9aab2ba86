package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/staynest/service-booking/internal/application"
	"github.com/staynest/service-booking/pkg/auth"
	"github.com/staynest/service-booking/pkg/middleware"
	"github.com/staynest/service-booking/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
// createGuards run before CreateBooking, after authentication.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, createGuards ...gin.HandlerFunc) {
	authMW := middleware.AuthMiddleware(jwtManager)
	travelerRole := middleware.RequireRole(auth.RoleTraveler)
	ownerRole := middleware.RequireRole(auth.RoleOwner)

	bookings := r.Group("/bookings")
	{
		bookings.GET("/check", h.CheckAvailability)
		bookings.GET("/property/:id", h.PropertyCalendar)
	}

	authed := bookings.Group("", authMW)
	{
		create := append([]gin.HandlerFunc{travelerRole}, createGuards...)
		authed.POST("", append(create, h.CreateBooking)...)
		authed.GET("/my", travelerRole, h.ListMyBookings)
		authed.GET("/owner", ownerRole, h.ListOwnerBookings)
		authed.GET("/:id", h.GetBooking)
		authed.PATCH("/:id/status", ownerRole, h.UpdateStatus)
	}
}

// CheckAvailability handles GET /bookings/check.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	var q application.AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, bindingMessage(err))
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// PropertyCalendar handles GET /bookings/property/:id.
func (h *BookingHandler) PropertyCalendar(c *gin.Context) {
	propertyID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid property id")
		return
	}

	entries, err := h.service.ListPropertyCalendar(c.Request.Context(), propertyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"bookings": entries})
}

// CreateBooking handles POST /bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	travelerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), travelerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"booking": result})
}

// ListMyBookings handles GET /bookings/my.
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	travelerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.ListTravelerBookings(c.Request.Context(), travelerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"bookings": result})
}

// ListOwnerBookings handles GET /bookings/owner.
func (h *BookingHandler) ListOwnerBookings(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.ListOwnerBookings(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"bookings": result})
}

// GetBooking handles GET /bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid booking id")
		return
	}
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	result, err := h.service.GetBooking(c.Request.Context(), bookingID, application.Actor{UserID: userID, Role: role})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"booking": result})
}

// UpdateStatus handles PATCH /bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	bookingID, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid booking id")
		return
	}

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.UpdateBookingStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.UpdateBookingStatus(c.Request.Context(), bookingID, ownerID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"booking": result})
}

package handlers

import (
	"errors"
	"net/http"

	"bar_pos_backend/internal/models"
	"bar_pos_backend/internal/services"
	"bar_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler holds the booking service.
type BookingHandler struct {
	bookingService services.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bs services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bs}
}

func respondBookingError(c *gin.Context, err error, action string) {
	utils.LogError(err, action)
	if errors.Is(err, services.ErrBookingNotFound) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Room booking not found.", err.Error()))
		return
	}
	utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, action, "Internal error"))
}

// CreateRoomBooking handles creation of a new room booking.
func (h *BookingHandler) CreateRoomBooking(c *gin.Context) {
	var req services.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	booking, err := h.bookingService.CreateRoomBooking(req)
	if err != nil {
		respondBookingError(c, err, "Failed to create room booking.")
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GetRoomBookings lists bookings with optional filters.
func (h *BookingHandler) GetRoomBookings(c *gin.Context) {
	var filters models.RoomBookingFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	bookings, total, err := h.bookingService.GetRoomBookings(filters)
	if err != nil {
		respondBookingError(c, err, "Failed to fetch room bookings.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bookings, "total": total})
}

// GetRoomBookingByID fetches one booking.
func (h *BookingHandler) GetRoomBookingByID(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid booking ID")
		return
	}

	booking, err := h.bookingService.GetRoomBookingByID(id)
	if err != nil {
		respondBookingError(c, err, "Failed to fetch room booking.")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// DeleteRoomBooking removes a booking.
func (h *BookingHandler) DeleteRoomBooking(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid booking ID")
		return
	}

	if err := h.bookingService.DeleteRoomBooking(id); err != nil {
		respondBookingError(c, err, "Failed to delete room booking.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Room booking deleted successfully"})
}

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	resdto "escrowbook/internal/handler/dto/response"
	"escrowbook/internal/pkg/errs"
	"escrowbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AvailabilityHandler struct {
	availability queries.AvailabilityQueries
}

func NewAvailabilityHandler(availability queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// @Summary Month availability
// @Description Per-day availability rollup for an offering's month in its own timezone
// @Tags availability
// @Produce json
// @Param id path string true "Offering ID"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} resdto.MonthAvailabilityResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /offerings/{id}/availability [get]
func (h *AvailabilityHandler) GetMonth(c *gin.Context) {
	offeringID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offering ID format"})
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return
	}

	rollup, err := h.availability.Month(c.Request.Context(), offeringID, year, time.Month(month))
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromMonthAvailability(rollup))
}

// @Summary Day availability
// @Description Concrete bookable slots for one local date
// @Tags availability
// @Produce json
// @Param id path string true "Offering ID"
// @Param date path string true "Local date (YYYY-MM-DD)"
// @Success 200 {object} resdto.DayAvailabilityResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /offerings/{id}/availability/{date} [get]
func (h *AvailabilityHandler) GetDay(c *gin.Context) {
	offeringID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offering ID format"})
		return
	}

	day, err := h.availability.Day(c.Request.Context(), offeringID, c.Param("date"))
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromDayAvailability(day))
}

func (h *AvailabilityHandler) writeErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrOfferingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Offering not found"})
	case errors.Is(err, errs.ErrInvalidTimeSlot):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

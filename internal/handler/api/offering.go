package api

import (
	"errors"
	"net/http"

	reqdto "escrowbook/internal/handler/dto/request"
	resdto "escrowbook/internal/handler/dto/response"
	"escrowbook/internal/handler/middleware"
	"escrowbook/internal/pkg/errs"
	"escrowbook/internal/usecase/commands"
	"escrowbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OfferingHandler struct {
	offeringCommands commands.OfferingCommands
	offeringQueries  queries.OfferingQueries
}

func NewOfferingHandler(offeringCommands commands.OfferingCommands, offeringQueries queries.OfferingQueries) *OfferingHandler {
	return &OfferingHandler{
		offeringCommands: offeringCommands,
		offeringQueries:  offeringQueries,
	}
}

// @Summary Create offering
// @Description Create a bookable offering with its weekly schedule
// @Tags offerings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateOfferingRequest true "Offering request"
// @Success 201 {object} resdto.OfferingResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /offerings [post]
func (h *OfferingHandler) CreateOffering(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req reqdto.CreateOfferingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	off, err := h.offeringCommands.Create(c.Request.Context(), commands.CreateOfferingInput{
		ProviderID: userID,
		Title:      req.Title,
		Duration:   req.Duration(),
		Buffer:     req.Buffer(),
		PriceCents: req.PriceCents,
		FeeBps:     req.FeeBps,
		Timezone:   req.Timezone,
		Schedule:   reqdto.ToWeeklySchedule(req.Schedule),
		Exceptions: reqdto.ToExceptions(req.Exceptions),
	})
	if err != nil {
		if errors.Is(err, errs.ErrInvalidSchedule) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid offering definition"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusCreated, resdto.FromOfferingEntity(off))
}

// @Summary Replace schedule
// @Description Replace the weekly windows and date exceptions of an offering
// @Tags offerings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offering ID"
// @Param request body reqdto.ReplaceScheduleRequest true "Schedule request"
// @Success 200 {object} resdto.OfferingResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /offerings/{id}/schedule [put]
func (h *OfferingHandler) ReplaceSchedule(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	offeringID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offering ID format"})
		return
	}

	var req reqdto.ReplaceScheduleRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	off, err := h.offeringCommands.ReplaceSchedule(c.Request.Context(), commands.ReplaceScheduleInput{
		OfferingID: offeringID,
		ProviderID: userID,
		Schedule:   reqdto.ToWeeklySchedule(req.Schedule),
		Exceptions: reqdto.ToExceptions(req.Exceptions),
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrOfferingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Offering not found"})
		case errors.Is(err, errs.ErrInsufficientPermission):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not the offering's provider"})
		case errors.Is(err, errs.ErrInvalidSchedule):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid schedule definition"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, resdto.FromOfferingEntity(off))
}

// @Summary List my offerings
// @Description List the caller's offerings
// @Tags offerings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.OfferingResponse
// @Router /offerings [get]
func (h *OfferingHandler) ListMyOfferings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	views, err := h.offeringQueries.ListByProvider(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	items := make([]*resdto.OfferingResponse, len(views))
	for i, rm := range views {
		items[i] = resdto.FromOfferingView(rm)
	}
	c.JSON(http.StatusOK, gin.H{"offerings": items})
}

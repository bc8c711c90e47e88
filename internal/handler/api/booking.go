package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"escrowbook/internal/domain/booking"
	reqdto "escrowbook/internal/handler/dto/request"
	resdto "escrowbook/internal/handler/dto/response"
	"escrowbook/internal/handler/middleware"
	"escrowbook/internal/pkg/errs"
	"escrowbook/internal/usecase/commands"
	"escrowbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingCommands commands.BookingCommands
	bookingQueries  queries.BookingQueries
}

func NewBookingHandler(bookingCommands commands.BookingCommands, bookingQueries queries.BookingQueries) *BookingHandler {
	return &BookingHandler{
		bookingCommands: bookingCommands,
		bookingQueries:  bookingQueries,
	}
}

// @Summary Create booking
// @Description Book a slot for an offering; priced offerings start in pending_payment and get an escrow deposit submitted
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.CreateBookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req reqdto.CreateBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.bookingCommands.Create(c.Request.Context(), commands.CreateBookingInput{
		OfferingID: req.OfferingID,
		CustomerID: userID,
		StartAt:    req.StartAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrOfferingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Offering not found"})
		case errors.Is(err, errs.ErrInvalidTimeSlot):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Slot is outside service hours"})
		case errors.Is(err, commands.ErrInsufficientLeadTime):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient lead time for booking"})
		case errors.Is(err, errs.ErrSlotUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": "Slot is no longer available"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromCreateBookingResult(result))
}

// @Summary Get booking
// @Description Get booking detail including the transition history
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, actor, ok := h.bookingContext(c)
	if !ok {
		return
	}

	view, err := h.bookingQueries.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, errs.ErrInsufficientPermission):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to view this booking"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary List my bookings
// @Description List the caller's bookings, newest first, keyset-paginated
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by lifecycle status"
// @Success 200 {array} resdto.BookingListResponse
// @Router /bookings [get]
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	after := parseCursor(c)
	status, ok := parseStatusFilter(c)
	if !ok {
		return
	}

	rows, next, err := h.bookingQueries.ListByCustomer(c.Request.Context(), userID, status, after, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	items := make([]*resdto.BookingListResponse, len(rows))
	for i, rm := range rows {
		items[i] = resdto.FromBookingListItem(rm)
	}
	body := gin.H{"bookings": items}
	if next != nil {
		body["nextCreatedAt"] = next.LastCreatedAt.Format(time.RFC3339Nano)
		body["nextId"] = next.LastID
	}
	c.JSON(http.StatusOK, body)
}

// @Summary List provider bookings
// @Description List bookings on the caller's offerings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by lifecycle status"
// @Success 200 {array} resdto.BookingListResponse
// @Router /provider/bookings [get]
func (h *BookingHandler) ListProviderBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	status, ok := parseStatusFilter(c)
	if !ok {
		return
	}

	rows, err := h.bookingQueries.ListByProvider(c.Request.Context(), userID, status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	items := make([]*resdto.BookingListResponse, len(rows))
	for i, rm := range rows {
		items[i] = resdto.FromBookingListItem(rm)
	}
	c.JSON(http.StatusOK, gin.H{"bookings": items})
}

// @Summary Apply transition
// @Description Request a lifecycle transition on a booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.TransitionRequest true "Target state"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/transitions [post]
func (h *BookingHandler) ApplyTransition(c *gin.Context) {
	id, actor, ok := h.bookingContext(c)
	if !ok {
		return
	}

	var req reqdto.TransitionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	target := booking.Status(req.Target)
	if !target.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown target state"})
		return
	}

	view, err := h.bookingCommands.Transition(c.Request.Context(), id, target, actor)
	if err != nil {
		h.writeTransitionErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Cancel booking
// @Description Cancel directly when unfunded; submit a ledger emergency-cancel when funds are escrowed
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id, actor, ok := h.bookingContext(c)
	if !ok {
		return
	}

	view, err := h.bookingCommands.Cancel(c.Request.Context(), id, actor)
	if err != nil {
		h.writeTransitionErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Fund booking
// @Description Resubmit the escrow deposit for a booking awaiting payment
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 202 {object} resdto.PendingTxResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /bookings/{id}/fund [post]
func (h *BookingHandler) FundBooking(c *gin.Context) {
	id, actor, ok := h.bookingContext(c)
	if !ok {
		return
	}

	tx, err := h.bookingCommands.Fund(c.Request.Context(), id, actor)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, commands.ErrNotBookingCustomer):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to fund this booking"})
		case errors.Is(err, commands.ErrBookingNotFundable):
			c.JSON(http.StatusConflict, gin.H{"error": "Booking is not awaiting payment"})
		case errors.Is(err, errs.ErrChainCallFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Escrow gateway unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusAccepted, resdto.FromPendingTx(tx))
}

// @Summary Request completion
// @Description Submit the escrow release for a funded in-progress booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 202 {object} resdto.PendingTxResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /bookings/{id}/complete [post]
func (h *BookingHandler) RequestCompletion(c *gin.Context) {
	id, actor, ok := h.bookingContext(c)
	if !ok {
		return
	}

	tx, err := h.bookingCommands.RequestCompletion(c.Request.Context(), id, actor)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, commands.ErrNotBookingCustomer), errors.Is(err, commands.ErrCompletionNotAllowed):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to complete this booking"})
		case errors.Is(err, errs.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": "Booking is not in progress"})
		case errors.Is(err, errs.ErrChainCallFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Escrow gateway unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusAccepted, resdto.FromPendingTx(tx))
}

func (h *BookingHandler) bookingContext(c *gin.Context) (uuid.UUID, booking.Actor, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID format"})
		return uuid.Nil, booking.Actor{}, false
	}
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return uuid.Nil, booking.Actor{}, false
	}
	return id, actor, true
}

func (h *BookingHandler) writeTransitionErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, errs.ErrInsufficientPermission), errors.Is(err, commands.ErrNotBookingCustomer):
		c.JSON(http.StatusForbidden, gin.H{"error": "Actor not allowed for this transition"})
	case errors.Is(err, errs.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Transition not permitted from the current state"})
	case errors.Is(err, errs.ErrStaleVersion):
		c.JSON(http.StatusConflict, gin.H{"error": "Booking changed concurrently, retry"})
	case errors.Is(err, errs.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "Slot is no longer available"})
	case errors.Is(err, errs.ErrChainCallFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Escrow gateway unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func parseStatusFilter(c *gin.Context) (string, bool) {
	status := c.Query("status")
	if status != "" && !booking.Status(status).IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter"})
		return "", false
	}
	return status, true
}

func parseCursor(c *gin.Context) *queries.Cursor {
	createdAtStr := c.Query("after_created_at")
	idStr := c.Query("after_id")
	if createdAtStr == "" || idStr == "" {
		return nil
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil
	}
	return &queries.Cursor{LastCreatedAt: createdAt, LastID: id}
}

package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/salao-caixa/caixa-backend/internal/util"
	"github.com/shopspring/decimal"
)

// MovementHandler handles ledger HTTP requests
type MovementHandler struct {
	cashBook domain.CashBook
	loc      *time.Location
}

// NewMovementHandler creates a new MovementHandler. loc is the business
// time zone used to read dates and render timestamps.
func NewMovementHandler(cashBook domain.CashBook, loc *time.Location) *MovementHandler {
	return &MovementHandler{
		cashBook: cashBook,
		loc:      loc,
	}
}

// CreateMovementRequest represents the create movement request body.
// amount may be omitted when serviceRef is set; the catalog price is used.
type CreateMovementRequest struct {
	Kind          string  `json:"kind"`
	Category      string  `json:"category"`
	ServiceRef    *string `json:"serviceRef,omitempty"`
	Amount        string  `json:"amount"`
	Description   string  `json:"description"`
	PaymentMethod string  `json:"paymentMethod"`
}

// UpdateMovementRequest represents the partial update request body.
// A timestamp sent by the client is accepted and ignored.
type UpdateMovementRequest struct {
	Kind          *string `json:"kind,omitempty"`
	Category      *string `json:"category,omitempty"`
	ServiceRef    *string `json:"serviceRef,omitempty"`
	Amount        *string `json:"amount,omitempty"`
	Description   *string `json:"description,omitempty"`
	PaymentMethod *string `json:"paymentMethod,omitempty"`
	Timestamp     *string `json:"timestamp,omitempty"`
}

// MovementResponse represents a movement in API responses
type MovementResponse struct {
	ID            int64   `json:"id"`
	Kind          string  `json:"kind"`
	Category      string  `json:"category"`
	ServiceRef    *string `json:"serviceRef"`
	Amount        string  `json:"amount"`
	Description   string  `json:"description"`
	Timestamp     string  `json:"timestamp"`
	PaymentMethod string  `json:"paymentMethod"`
}

// PaginatedMovementsResponse represents one page of the ledger
type PaginatedMovementsResponse struct {
	Data       []MovementResponse `json:"data"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalItems int                `json:"totalItems"`
	TotalPages int                `json:"totalPages"`
}

// GetMovements godoc
// @Summary List movements
// @Description Get the ledger newest first, filtered and paginated
// @Tags movements
// @Produce json
// @Param kind query string false "all, entry or exit" default(all)
// @Param date query string false "Single day (YYYY-MM-DD)"
// @Param q query string false "Case-insensitive search in category and description"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(10)
// @Success 200 {object} PaginatedMovementsResponse
// @Failure 400 {object} ProblemDetails
// @Router /movements [get]
func (h *MovementHandler) GetMovements(c echo.Context) error {
	filter := &domain.MovementFilter{
		Kind:   domain.FilterKindAll,
		Search: strings.TrimSpace(c.QueryParam("q")),
	}

	if kindStr := c.QueryParam("kind"); kindStr != "" {
		kind := domain.FilterKind(kindStr)
		if !kind.IsValid() {
			return NewValidationError(c, "Invalid kind", []ValidationError{
				{Field: "kind", Message: "Must be one of: all, entry, exit"},
			})
		}
		filter.Kind = kind
	}

	if dateStr := c.QueryParam("date"); dateStr != "" {
		day, err := util.ParseDay(dateStr, h.loc)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		filter.Date = &day
	}

	page, ok := parsePositiveInt(c, "page", 1)
	if !ok {
		return NewValidationError(c, "Invalid page (must be positive integer)", nil)
	}
	pageSize, ok := parsePositiveInt(c, "pageSize", domain.DefaultPageSize)
	if !ok {
		return NewValidationError(c, "Invalid pageSize (must be positive integer)", nil)
	}

	result, err := h.cashBook.GetLedgerPage(c.Request().Context(), filter, page, pageSize)
	if err != nil {
		return handleError(c, err, "list movements")
	}

	data := make([]MovementResponse, len(result.Data))
	for i, m := range result.Data {
		data[i] = h.toMovementResponse(m)
	}

	return c.JSON(http.StatusOK, PaginatedMovementsResponse{
		Data:       data,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	})
}

// GetMovement godoc
// @Summary Get a movement
// @Tags movements
// @Produce json
// @Param id path int true "Movement ID"
// @Success 200 {object} MovementResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /movements/{id} [get]
func (h *MovementHandler) GetMovement(c echo.Context) error {
	id, ok := parseMovementID(c)
	if !ok {
		return NewValidationError(c, "Invalid movement ID", nil)
	}

	m, err := h.cashBook.GetMovement(c.Request().Context(), id)
	if err != nil {
		return handleError(c, err, "get movement")
	}
	return c.JSON(http.StatusOK, h.toMovementResponse(m))
}

// CreateMovement godoc
// @Summary Register a movement
// @Description Record a cash entry or exit. The server assigns id and timestamp.
// @Tags movements
// @Accept json
// @Produce json
// @Param request body CreateMovementRequest true "Movement"
// @Success 201 {object} MovementResponse
// @Failure 400 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /movements [post]
func (h *MovementHandler) CreateMovement(c echo.Context) error {
	var req CreateMovementRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var amount *decimal.Decimal
	if strings.TrimSpace(req.Amount) != "" {
		parsed, err := domain.ParseAmount(req.Amount)
		if err != nil {
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "amount", Message: "Must be a valid decimal number"},
			})
		}
		amount = &parsed
	} else if req.ServiceRef == nil || strings.TrimSpace(*req.ServiceRef) == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount is required"},
		})
	}

	input := domain.MovementInput{
		Kind:          domain.MovementKind(req.Kind),
		Category:      req.Category,
		ServiceRef:    req.ServiceRef,
		Amount:        amount,
		Description:   req.Description,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	}

	m, err := h.cashBook.RegisterMovement(c.Request().Context(), input)
	if err != nil {
		return handleError(c, err, "register movement")
	}

	log.Info().Int64("movement_id", m.ID).Str("kind", string(m.Kind)).Str("amount", m.Amount.StringFixed(2)).Msg("Movement registered")

	return c.JSON(http.StatusCreated, h.toMovementResponse(m))
}

// UpdateMovement godoc
// @Summary Edit a movement
// @Description Partially update a movement. The timestamp is never changed.
// @Tags movements
// @Accept json
// @Produce json
// @Param id path int true "Movement ID"
// @Param request body UpdateMovementRequest true "Fields to change"
// @Success 200 {object} MovementResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /movements/{id} [put]
func (h *MovementHandler) UpdateMovement(c echo.Context) error {
	id, ok := parseMovementID(c)
	if !ok {
		return NewValidationError(c, "Invalid movement ID", nil)
	}

	var req UpdateMovementRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	patch := domain.MovementPatch{
		Category:    req.Category,
		ServiceRef:  req.ServiceRef,
		Description: req.Description,
	}
	if req.Kind != nil {
		kind := domain.MovementKind(*req.Kind)
		patch.Kind = &kind
	}
	if req.PaymentMethod != nil {
		method := domain.PaymentMethod(*req.PaymentMethod)
		patch.PaymentMethod = &method
	}
	if req.Amount != nil {
		amount, err := domain.ParseAmount(*req.Amount)
		if err != nil {
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "amount", Message: "Must be a valid decimal number"},
			})
		}
		patch.Amount = &amount
	}

	m, err := h.cashBook.EditMovement(c.Request().Context(), id, patch)
	if err != nil {
		return handleError(c, err, "update movement")
	}

	log.Info().Int64("movement_id", m.ID).Msg("Movement updated")

	return c.JSON(http.StatusOK, h.toMovementResponse(m))
}

// DeleteMovement godoc
// @Summary Remove a movement
// @Tags movements
// @Param id path int true "Movement ID"
// @Success 204
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /movements/{id} [delete]
func (h *MovementHandler) DeleteMovement(c echo.Context) error {
	id, ok := parseMovementID(c)
	if !ok {
		return NewValidationError(c, "Invalid movement ID", nil)
	}

	removed, err := h.cashBook.RemoveMovement(c.Request().Context(), id)
	if err != nil {
		return handleError(c, err, "delete movement")
	}
	if !removed {
		return NewNotFoundError(c, "Movement not found")
	}

	log.Info().Int64("movement_id", id).Msg("Movement deleted")

	return c.NoContent(http.StatusNoContent)
}

func (h *MovementHandler) toMovementResponse(m *domain.Movement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		Kind:          string(m.Kind),
		Category:      m.Category,
		ServiceRef:    m.ServiceRef,
		Amount:        domain.FormatAmount(m.Amount),
		Description:   m.Description,
		Timestamp:     m.Timestamp.In(h.loc).Format(time.RFC3339),
		PaymentMethod: string(m.PaymentMethod),
	}
}

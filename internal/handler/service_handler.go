package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Catalog is the set of catalog operations the handler needs
type Catalog interface {
	List(ctx context.Context) ([]*domain.Service, error)
	Get(ctx context.Context, id string) (*domain.Service, error)
	Create(ctx context.Context, name string, price decimal.Decimal) (*domain.Service, error)
	Update(ctx context.Context, id string, patch domain.ServicePatch) (*domain.Service, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ServiceHandler handles service catalog HTTP requests
type ServiceHandler struct {
	catalog Catalog
}

// NewServiceHandler creates a new ServiceHandler
func NewServiceHandler(catalog Catalog) *ServiceHandler {
	return &ServiceHandler{catalog: catalog}
}

// CreateServiceRequest represents the create service request body
type CreateServiceRequest struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// UpdateServiceRequest represents the update service request body
type UpdateServiceRequest struct {
	Name  *string `json:"name,omitempty"`
	Price *string `json:"price,omitempty"`
}

// ServiceResponse represents a catalog service in API responses
type ServiceResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

// GetServices godoc
// @Summary List services
// @Description Get the service catalog ordered by name
// @Tags services
// @Produce json
// @Success 200 {array} ServiceResponse
// @Failure 500 {object} ProblemDetails
// @Router /services [get]
func (h *ServiceHandler) GetServices(c echo.Context) error {
	services, err := h.catalog.List(c.Request().Context())
	if err != nil {
		return handleError(c, err, "list services")
	}

	response := make([]ServiceResponse, len(services))
	for i, s := range services {
		response[i] = toServiceResponse(s)
	}
	return c.JSON(http.StatusOK, response)
}

// GetService godoc
// @Summary Get a service
// @Tags services
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} ServiceResponse
// @Failure 404 {object} ProblemDetails
// @Router /services/{id} [get]
func (h *ServiceHandler) GetService(c echo.Context) error {
	s, err := h.catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handleError(c, err, "get service")
	}
	return c.JSON(http.StatusOK, toServiceResponse(s))
}

// CreateService godoc
// @Summary Create a service
// @Tags services
// @Accept json
// @Produce json
// @Param request body CreateServiceRequest true "Service"
// @Success 201 {object} ServiceResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /services [post]
func (h *ServiceHandler) CreateService(c echo.Context) error {
	var req CreateServiceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	price, err := domain.ParseAmount(req.Price)
	if err != nil {
		return NewValidationError(c, "Invalid price", []ValidationError{
			{Field: "price", Message: "Must be a valid decimal number"},
		})
	}

	s, err := h.catalog.Create(c.Request().Context(), strings.TrimSpace(req.Name), price)
	if err != nil {
		return handleError(c, err, "create service")
	}

	log.Info().Str("service_id", s.ID).Str("name", s.Name).Msg("Service created")

	return c.JSON(http.StatusCreated, toServiceResponse(s))
}

// UpdateService godoc
// @Summary Update a service
// @Tags services
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param request body UpdateServiceRequest true "Fields to change"
// @Success 200 {object} ServiceResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /services/{id} [put]
func (h *ServiceHandler) UpdateService(c echo.Context) error {
	var req UpdateServiceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	patch := domain.ServicePatch{Name: req.Name}
	if req.Price != nil {
		price, err := domain.ParseAmount(*req.Price)
		if err != nil {
			return NewValidationError(c, "Invalid price", []ValidationError{
				{Field: "price", Message: "Must be a valid decimal number"},
			})
		}
		patch.Price = &price
	}

	s, err := h.catalog.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return handleError(c, err, "update service")
	}

	log.Info().Str("service_id", s.ID).Msg("Service updated")

	return c.JSON(http.StatusOK, toServiceResponse(s))
}

// DeleteService godoc
// @Summary Delete a service
// @Description Movements that reference the service are kept
// @Tags services
// @Param id path string true "Service ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /services/{id} [delete]
func (h *ServiceHandler) DeleteService(c echo.Context) error {
	id := c.Param("id")
	removed, err := h.catalog.Delete(c.Request().Context(), id)
	if err != nil {
		return handleError(c, err, "delete service")
	}
	if !removed {
		return NewNotFoundError(c, "Service not found")
	}

	log.Info().Str("service_id", id).Msg("Service deleted")

	return c.NoContent(http.StatusNoContent)
}

func toServiceResponse(s *domain.Service) ServiceResponse {
	return ServiceResponse{
		ID:    s.ID,
		Name:  s.Name,
		Price: domain.FormatAmount(s.Price),
	}
}

package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/salao-caixa/caixa-backend/internal/export"
	"github.com/salao-caixa/caixa-backend/internal/util"
)

// ReportHandler handles summary, dashboard and report HTTP requests
type ReportHandler struct {
	cashBook domain.CashBook
	loc      *time.Location
	now      func() time.Time
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(cashBook domain.CashBook, loc *time.Location) *ReportHandler {
	return &ReportHandler{
		cashBook: cashBook,
		loc:      loc,
		now:      time.Now,
	}
}

// ServiceRevenueResponse is one row of the top services ranking
type ServiceRevenueResponse struct {
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Revenue  string `json:"revenue"`
}

// PaymentMethodRevenueResponse is the entry total of one payment method
type PaymentMethodRevenueResponse struct {
	PaymentMethod string `json:"paymentMethod"`
	Amount        string `json:"amount"`
}

// DayRevenueResponse is one day of the weekly revenue series
type DayRevenueResponse struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Revenue string `json:"revenue"`
}

// DailyMovementResponse is one day of the entries/exits series
type DailyMovementResponse struct {
	Date    string `json:"date"`
	Entries string `json:"entries"`
	Exits   string `json:"exits"`
	Balance string `json:"balance"`
}

// SummaryResponse represents the aggregate view of the ledger
type SummaryResponse struct {
	TotalEntries           string                         `json:"totalEntries"`
	TotalExits             string                         `json:"totalExits"`
	NetBalance             string                         `json:"netBalance"`
	TransactionCount       int                            `json:"transactionCount"`
	TodayEntries           string                         `json:"todayEntries"`
	TodayCount             int                            `json:"todayCount"`
	MonthEntries           string                         `json:"monthEntries"`
	MonthCount             int                            `json:"monthCount"`
	TopServices            []ServiceRevenueResponse       `json:"topServices"`
	RevenueByPaymentMethod []PaymentMethodRevenueResponse `json:"revenueByPaymentMethod"`
	WeeklySeries           []DayRevenueResponse           `json:"weeklySeries"`
	DailySeries            []DailyMovementResponse        `json:"dailySeries"`
}

// DashboardResponse represents the headline metrics of the dashboard
type DashboardResponse struct {
	DailyRevenue   string                   `json:"dailyRevenue"`
	MonthlyRevenue string                   `json:"monthlyRevenue"`
	ClientsServed  int                      `json:"clientsServed"`
	TopServices    []ServiceRevenueResponse `json:"topServices"`
	WeeklyRevenue  []DayRevenueResponse     `json:"weeklyRevenue"`
}

// ReportRowResponse is one line of the detailed report
type ReportRowResponse struct {
	ID            int64   `json:"id"`
	Timestamp     string  `json:"timestamp"`
	Kind          string  `json:"kind"`
	Category      string  `json:"category"`
	ServiceName   *string `json:"serviceName"`
	Amount        string  `json:"amount"`
	Description   string  `json:"description"`
	PaymentMethod string  `json:"paymentMethod"`
}

// GetSummary godoc
// @Summary Ledger summary
// @Description Totals, period stats, top services, payment breakdown and series
// @Tags reports
// @Produce json
// @Param startDate query string false "First day (YYYY-MM-DD)"
// @Param endDate query string false "Last day, inclusive (YYYY-MM-DD)"
// @Success 200 {object} SummaryResponse
// @Failure 400 {object} ProblemDetails
// @Router /summary [get]
func (h *ReportHandler) GetSummary(c echo.Context) error {
	dateRange, errs := parseDateRange(c, h.loc)
	if errs != nil {
		return NewValidationError(c, "Invalid date range", errs)
	}

	summary, err := h.cashBook.GetSummary(c.Request().Context(), dateRange)
	if err != nil {
		return handleError(c, err, "calculate summary")
	}

	return c.JSON(http.StatusOK, SummaryResponse{
		TotalEntries:           domain.FormatAmount(summary.TotalEntries),
		TotalExits:             domain.FormatAmount(summary.TotalExits),
		NetBalance:             domain.FormatAmount(summary.NetBalance),
		TransactionCount:       summary.TransactionCount,
		TodayEntries:           domain.FormatAmount(summary.TodayEntries),
		TodayCount:             summary.TodayCount,
		MonthEntries:           domain.FormatAmount(summary.MonthEntries),
		MonthCount:             summary.MonthCount,
		TopServices:            toServiceRevenueResponses(summary.TopServices),
		RevenueByPaymentMethod: toPaymentMethodResponses(summary.RevenueByPaymentMethod),
		WeeklySeries:           h.toDayRevenueResponses(summary.WeeklySeries),
		DailySeries:            toDailyMovementResponses(summary.DailySeries),
	})
}

// GetDashboard godoc
// @Summary Dashboard metrics
// @Description Today's and this month's revenue, clients served and the week's series
// @Tags reports
// @Produce json
// @Success 200 {object} DashboardResponse
// @Router /dashboard [get]
func (h *ReportHandler) GetDashboard(c echo.Context) error {
	metrics, err := h.cashBook.GetDashboard(c.Request().Context())
	if err != nil {
		return handleError(c, err, "calculate dashboard")
	}

	return c.JSON(http.StatusOK, DashboardResponse{
		DailyRevenue:   domain.FormatAmount(metrics.DailyRevenue),
		MonthlyRevenue: domain.FormatAmount(metrics.MonthlyRevenue),
		ClientsServed:  metrics.ClientsServed,
		TopServices:    toServiceRevenueResponses(metrics.TopServices),
		WeeklyRevenue:  h.toDayRevenueResponses(metrics.WeeklyRevenue),
	})
}

// GetReport godoc
// @Summary Detailed report
// @Description Every movement in the range with the referenced service name
// @Tags reports
// @Produce json
// @Param startDate query string false "First day (YYYY-MM-DD)"
// @Param endDate query string false "Last day, inclusive (YYYY-MM-DD)"
// @Success 200 {array} ReportRowResponse
// @Failure 400 {object} ProblemDetails
// @Router /reports [get]
func (h *ReportHandler) GetReport(c echo.Context) error {
	dateRange, errs := parseDateRange(c, h.loc)
	if errs != nil {
		return NewValidationError(c, "Invalid date range", errs)
	}

	rows, err := h.cashBook.GetReport(c.Request().Context(), dateRange)
	if err != nil {
		return handleError(c, err, "build report")
	}

	response := make([]ReportRowResponse, len(rows))
	for i, row := range rows {
		response[i] = ReportRowResponse{
			ID:            row.ID,
			Timestamp:     row.Timestamp.In(h.loc).Format(time.RFC3339),
			Kind:          string(row.Kind),
			Category:      row.Category,
			ServiceName:   row.ServiceName,
			Amount:        domain.FormatAmount(row.Amount),
			Description:   row.Description,
			PaymentMethod: string(row.PaymentMethod),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// ExportReport godoc
// @Summary Export report
// @Description Download the detailed report as a spreadsheet
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce text/csv
// @Param format query string false "xlsx or csv" default(xlsx)
// @Param startDate query string false "First day (YYYY-MM-DD)"
// @Param endDate query string false "Last day, inclusive (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} ProblemDetails
// @Router /reports/export [get]
func (h *ReportHandler) ExportReport(c echo.Context) error {
	format, ok := export.ParseFormat(c.QueryParam("format"))
	if !ok {
		return NewValidationError(c, "Invalid format", []ValidationError{
			{Field: "format", Message: "Must be one of: xlsx, csv"},
		})
	}

	dateRange, errs := parseDateRange(c, h.loc)
	if errs != nil {
		return NewValidationError(c, "Invalid date range", errs)
	}

	rows, err := h.cashBook.GetReport(c.Request().Context(), dateRange)
	if err != nil {
		return handleError(c, err, "build report")
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, rows, h.loc); err != nil {
		log.Error().Err(err).Str("format", string(format)).Msg("Failed to write export")
		return NewInternalError(c, "Failed to export report")
	}

	filename := export.Filename(format, h.now().In(h.loc))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))

	log.Info().Str("format", string(format)).Int("rows", len(rows)).Msg("Report exported")

	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

func toServiceRevenueResponses(rows []domain.ServiceRevenue) []ServiceRevenueResponse {
	out := make([]ServiceRevenueResponse, len(rows))
	for i, r := range rows {
		out[i] = ServiceRevenueResponse{
			Category: r.Category,
			Quantity: r.Quantity,
			Revenue:  domain.FormatAmount(r.Revenue),
		}
	}
	return out
}

func toPaymentMethodResponses(rows []domain.PaymentMethodRevenue) []PaymentMethodRevenueResponse {
	out := make([]PaymentMethodRevenueResponse, len(rows))
	for i, r := range rows {
		out[i] = PaymentMethodRevenueResponse{
			PaymentMethod: string(r.PaymentMethod),
			Amount:        domain.FormatAmount(r.Amount),
		}
	}
	return out
}

func (h *ReportHandler) toDayRevenueResponses(rows []domain.DayRevenue) []DayRevenueResponse {
	out := make([]DayRevenueResponse, len(rows))
	for i, r := range rows {
		out[i] = DayRevenueResponse{
			Date:    util.DayKey(r.Date.In(h.loc)),
			Weekday: r.Weekday,
			Revenue: domain.FormatAmount(r.Revenue),
		}
	}
	return out
}

func toDailyMovementResponses(rows []domain.DailyMovement) []DailyMovementResponse {
	out := make([]DailyMovementResponse, len(rows))
	for i, r := range rows {
		out[i] = DailyMovementResponse{
			Date:    r.Date,
			Entries: domain.FormatAmount(r.Entries),
			Exits:   domain.FormatAmount(r.Exits),
			Balance: domain.FormatAmount(r.Balance),
		}
	}
	return out
}

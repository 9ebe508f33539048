package handler

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

func seedSummaryLedger(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	ref := "10"
	inputs := []domain.MovementInput{
		{Kind: domain.MovementKindEntry, ServiceRef: &ref, Amount: amountPtr("50.00"), Description: "Cliente Ana", PaymentMethod: domain.PaymentMethodPIX},
		{Kind: domain.MovementKindExit, Category: "Aluguel", Amount: amountPtr("20.00"), Description: "Sala"},
	}
	for _, input := range inputs {
		if _, err := env.cashBook.RegisterMovement(ctx, input); err != nil {
			t.Fatalf("Failed to register movement: %v", err)
		}
	}
}

func newReportHandler(env *testEnv) *ReportHandler {
	h := NewReportHandler(env.cashBook, testLoc)
	h.now = func() time.Time { return march10 }
	return h
}

func TestGetSummary(t *testing.T) {
	env := newTestEnv(march10)
	seedSummaryLedger(t, env)
	h := newReportHandler(env)

	c, rec := env.context(http.MethodGet, "/api/v1/summary", "")
	if err := h.GetSummary(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response SummaryResponse
	decode(t, rec, &response)

	if response.TotalEntries != "50.00" {
		t.Errorf("Expected total entries '50.00', got %s", response.TotalEntries)
	}
	if response.TotalExits != "20.00" {
		t.Errorf("Expected total exits '20.00', got %s", response.TotalExits)
	}
	if response.NetBalance != "30.00" {
		t.Errorf("Expected net balance '30.00', got %s", response.NetBalance)
	}
	if response.TransactionCount != 2 {
		t.Errorf("Expected 2 transactions, got %d", response.TransactionCount)
	}
	if len(response.TopServices) == 0 || response.TopServices[0].Category != "Corte" {
		t.Errorf("Expected Corte as top service, got %+v", response.TopServices)
	}
}

func TestGetSummary_RangeExcludesEverything(t *testing.T) {
	env := newTestEnv(march10)
	seedSummaryLedger(t, env)
	h := newReportHandler(env)

	c, rec := env.context(http.MethodGet, "/api/v1/summary?startDate=2026-03-11", "")
	if err := h.GetSummary(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response SummaryResponse
	decode(t, rec, &response)
	if response.TotalEntries != "0.00" || response.TransactionCount != 0 {
		t.Errorf("Expected an empty summary, got %s over %d", response.TotalEntries, response.TransactionCount)
	}
}

func TestGetSummary_InvalidRange(t *testing.T) {
	targets := []string{
		"/api/v1/summary?startDate=2026-13-01",
		"/api/v1/summary?endDate=yesterday",
		"/api/v1/summary?startDate=2026-03-10&endDate=2026-03-01",
	}

	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			env := newTestEnv(march10)
			h := newReportHandler(env)
			c, rec := env.context(http.MethodGet, target, "")

			if err := h.GetSummary(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestGetDashboard(t *testing.T) {
	env := newTestEnv(march10)
	seedSummaryLedger(t, env)
	h := newReportHandler(env)

	c, rec := env.context(http.MethodGet, "/api/v1/dashboard", "")
	if err := h.GetDashboard(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response DashboardResponse
	decode(t, rec, &response)
	if response.DailyRevenue != "50.00" {
		t.Errorf("Expected daily revenue '50.00', got %s", response.DailyRevenue)
	}
	if response.ClientsServed != 1 {
		t.Errorf("Expected 1 client served, got %d", response.ClientsServed)
	}
}

func TestGetReport(t *testing.T) {
	env := newTestEnv(march10)
	seedSummaryLedger(t, env)
	h := newReportHandler(env)

	c, rec := env.context(http.MethodGet, "/api/v1/reports?startDate=2026-03-10&endDate=2026-03-10", "")
	if err := h.GetReport(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var rows []ReportRowResponse
	decode(t, rec, &rows)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	byKind := make(map[string]ReportRowResponse)
	for _, row := range rows {
		byKind[row.Kind] = row
	}
	entry := byKind["entry"]
	if entry.ServiceName == nil || *entry.ServiceName != "Corte" {
		t.Errorf("Expected service name Corte on the entry, got %v", entry.ServiceName)
	}
	if byKind["exit"].ServiceName != nil {
		t.Errorf("Expected no service name on the exit")
	}
	if byKind["exit"].Amount != "20.00" {
		t.Errorf("Expected exit amount '20.00', got %s", byKind["exit"].Amount)
	}
}

func TestExportReport_CSV(t *testing.T) {
	env := newTestEnv(march10)
	seedSummaryLedger(t, env)
	h := newReportHandler(env)

	c, rec := env.context(http.MethodGet, "/api/v1/reports/export?format=csv", "")
	if err := h.ExportReport(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Errorf("Expected text/csv content type, got %s", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="relatorio_2026-03-10.csv"` {
		t.Errorf("Unexpected content disposition: %s", got)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "\ufeff") {
		t.Error("Expected a UTF-8 byte order mark")
	}
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected header plus 2 rows, got %d lines", len(lines))
	}
}

func TestExportReport_XLSXDefault(t *testing.T) {
	env := newTestEnv(march10)
	seedSummaryLedger(t, env)
	h := newReportHandler(env)

	c, rec := env.context(http.MethodGet, "/api/v1/reports/export", "")
	if err := h.ExportReport(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "relatorio_2026-03-10.xlsx") {
		t.Errorf("Unexpected content disposition: %s", got)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("Expected a readable workbook, got %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Dados")
	if err != nil {
		t.Fatalf("Expected sheet Dados, got %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("Expected header plus 2 rows, got %d", len(rows))
	}
}

func TestExportReport_InvalidFormat(t *testing.T) {
	env := newTestEnv(march10)
	h := newReportHandler(env)

	c, rec := env.context(http.MethodGet, "/api/v1/reports/export?format=pdf", "")
	if err := h.ExportReport(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

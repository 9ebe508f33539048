package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/salao-caixa/caixa-backend/internal/service"
	"github.com/salao-caixa/caixa-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

var testLoc = time.FixedZone("BRT", -3*60*60)

// testEnv wires the real services onto in-memory repositories
type testEnv struct {
	e            *echo.Echo
	cashBook     *service.CashBookService
	catalog      *service.CatalogService
	movementRepo *testutil.MockMovementRepository
	serviceRepo  *testutil.MockServiceRepository
}

// newTestEnv starts the clock at start and advances it a minute per movement
func newTestEnv(start time.Time) *testEnv {
	movementRepo := testutil.NewMockMovementRepository()
	serviceRepo := testutil.NewMockServiceRepository()
	serviceRepo.AddService(&domain.Service{ID: "10", Name: "Corte", Price: decimal.RequireFromString("40.00")})
	serviceRepo.AddService(&domain.Service{ID: "7", Name: "Escova", Price: decimal.RequireFromString("30.00")})

	ledger := service.NewLedgerService(movementRepo)
	next := start
	ledger.SetClock(func() time.Time {
		t := next
		next = next.Add(time.Minute)
		return t
	})
	catalog := service.NewCatalogService(serviceRepo)

	return &testEnv{
		e:            echo.New(),
		cashBook:     service.NewCashBookService(ledger, catalog),
		catalog:      catalog,
		movementRepo: movementRepo,
		serviceRepo:  serviceRepo,
	}
}

func (env *testEnv) context(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req = httptest.NewRequest(method, target, nil)
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return env.e.NewContext(req, rec), rec
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
}

func hasField(problem ProblemDetails, field string) bool {
	for _, e := range problem.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

func amountPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

package corporate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/smartdine/smartdine/internal/payments"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T) (http.Handler, *testEnv) {
	t.Helper()
	env := newTestService(t)
	h := NewHandler(testLogger(), env.service, payments.NewProcessor(testLogger()))
	r := chi.NewRouter()
	r.Route("/api/corporate", h.MountRoutes)
	return r, env
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateAccountEndpoint(t *testing.T) {
	router, _ := newTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/api/corporate/accounts", CreateAccountRequest{
		CompanyName:   "Kilimanjaro Logistics",
		ContactPerson: "Neema Mushi",
		Email:         "accounts@kililogistics.co.tz",
		Phone:         "+255222860000",
		CreditLimit:   5_000_000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var acc Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acc))
	require.Equal(t, int64(1), acc.ID)
	require.Equal(t, AccountActive, acc.Status)

	rec = doJSON(t, router, http.MethodGet, "/api/corporate/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
}

func TestCreateAccountEndpointValidation(t *testing.T) {
	router, _ := newTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/api/corporate/accounts", CreateAccountRequest{
		CompanyName: "No Contact Details",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestGetAccountEndpointNotFound(t *testing.T) {
	router, _ := newTestHandler(t)

	rec := doJSON(t, router, http.MethodGet, "/api/corporate/accounts/99", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/corporate/accounts/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderEndpointLimitExceeded(t *testing.T) {
	router, env := newTestHandler(t)
	acc := mustCreateAccount(t, env.service, CreateAccountRequest{CreditLimit: 50_000})
	emp := mustCreateEmployee(t, env.service, acc.ID, "KL001", 0, 0)

	rec := doJSON(t, router, http.MethodPost, "/api/corporate/orders", orderRequest(acc.ID, emp.ID, 60_000, testNow))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/corporate/orders", orderRequest(acc.ID, emp.ID, 37_950, testNow))
	require.Equal(t, http.StatusCreated, rec.Code)
	var ord Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ord))
	require.Equal(t, 37950.0, ord.Total)
}

func TestDeleteEmployeeEndpointOutcome(t *testing.T) {
	router, env := newTestHandler(t)
	acc := mustCreateAccount(t, env.service, CreateAccountRequest{})
	emp := mustCreateEmployee(t, env.service, acc.ID, "KL001", 0, 0)

	rec := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/corporate/employees/%d", emp.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, string(DeleteRemoved), body["outcome"])

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/corporate/employees/%d", emp.ID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvoiceGenerateAndPayEndpoints(t *testing.T) {
	router, env := newTestHandler(t)
	acc := mustCreateAccount(t, env.service, CreateAccountRequest{CreditLimit: 5_000_000})
	emp := mustCreateEmployee(t, env.service, acc.ID, "KL001", 0, 0)
	order := orderRequest(acc.ID, emp.ID, 37_950, testNow.Add(-2*time.Hour))
	_, err := env.service.CreateOrder(context.Background(), order)
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/api/corporate/invoices/generate", GenerateInvoiceRequest{
		AccountID: acc.ID,
		Year:      2026,
		Month:     3,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var inv Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	require.Equal(t, "INV-202603-0001", inv.InvoiceNumber)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/corporate/invoices/%d/pay", inv.ID), PayInvoiceRequest{
		Method: "cash",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var paid struct {
		Invoice Invoice          `json:"invoice"`
		Receipt payments.Receipt `json:"receipt"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paid))
	require.Equal(t, InvoicePaid, paid.Invoice.Status)
	require.Len(t, paid.Receipt.Reference, 8)
	require.Equal(t, inv.Summary.Total, paid.Receipt.Amount)
}

func TestPayInvoiceEndpointRejectsUnknownMethod(t *testing.T) {
	router, env := newTestHandler(t)
	acc := mustCreateAccount(t, env.service, CreateAccountRequest{})
	_, err := env.service.GenerateMonthlyInvoice(context.Background(), acc.ID, 2026, 3)
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/api/corporate/invoices/1/pay", map[string]string{"method": "cheque"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCSVTemplateEndpoint(t *testing.T) {
	router, _ := newTestHandler(t)

	rec := doJSON(t, router, http.MethodGet, "/api/corporate/employees/template", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "employee_import_template.csv")
	require.Contains(t, rec.Body.String(), "employeeId,fullName,email,phone")
}

func TestOverviewEndpoint(t *testing.T) {
	router, env := newTestHandler(t)
	mustCreateAccount(t, env.service, CreateAccountRequest{})

	rec := doJSON(t, router, http.MethodGet, "/api/corporate/analytics/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var overview OverviewAnalytics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	require.Equal(t, 1, overview.TotalAccounts)
}

package corporate

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/smartdine/smartdine/internal/payments"
	"github.com/smartdine/smartdine/internal/platform/httpx"
)

// Handler exposes the ledger over JSON HTTP.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	processor *payments.Processor
	validate  *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, processor *payments.Processor) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		processor: processor,
		validate:  validator.New(),
	}
}

// MountRoutes registers the corporate billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.listAccounts)
		r.Post("/", h.createAccount)
		r.Get("/{id}", h.getAccount)
		r.Put("/{id}", h.updateAccount)
		r.Get("/{id}/summary", h.accountSummary)
		r.Get("/{id}/employees", h.listEmployees)
		r.Post("/{id}/employees/import", h.importEmployees)
		r.Get("/{id}/orders", h.listOrders)
		r.Get("/{id}/invoices", h.listInvoices)
		r.Get("/{id}/notifications", h.listNotifications)
		r.Get("/{id}/departments/{department}/usage", h.departmentUsage)
	})

	r.Route("/employees", func(r chi.Router) {
		r.Post("/", h.createEmployee)
		r.Get("/template", h.csvTemplate)
		r.Get("/{id}", h.getEmployee)
		r.Put("/{id}", h.updateEmployee)
		r.Delete("/{id}", h.deleteEmployee)
		r.Get("/{id}/usage", h.employeeUsage)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Post("/", h.createOrder)
		r.Put("/{id}/status", h.updateOrderStatus)
	})

	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.listInvoices)
		r.Post("/generate", h.generateInvoice)
		r.Get("/{id}", h.getInvoice)
		r.Post("/{id}/send", h.sendInvoice)
		r.Post("/{id}/remind", h.sendReminder)
		r.Put("/{id}/status", h.updateInvoiceStatus)
		r.Post("/{id}/pay", h.payInvoice)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.listNotifications)
		r.Post("/", h.createNotification)
		r.Post("/{id}/read", h.markNotificationRead)
	})

	r.Get("/analytics/overview", h.overview)
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Accounts())
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	acc, err := h.service.CreateAccount(r.Context(), req)
	if err != nil {
		h.respondError(w, "create account", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, acc)
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	acc, err := h.service.Account(id)
	if err != nil {
		h.respondError(w, "get account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdateAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	acc, err := h.service.UpdateAccount(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
}

func (h *Handler) accountSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Summary(r.Context(), id)
	if err != nil {
		h.respondError(w, "account summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.Employees(id))
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}
	emp, err := h.service.CreateEmployee(r.Context(), req)
	if err != nil {
		h.respondError(w, "create employee", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, emp)
}

func (h *Handler) getEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	emp, err := h.service.Employee(id)
	if err != nil {
		h.respondError(w, "get employee", err)
		return
	}
	httpx.JSON(w, http.StatusOK, emp)
}

func (h *Handler) updateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}
	emp, err := h.service.UpdateEmployee(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update employee", err)
		return
	}
	httpx.JSON(w, http.StatusOK, emp)
}

func (h *Handler) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	outcome, err := h.service.DeleteEmployee(r.Context(), id)
	if err != nil {
		h.respondError(w, "delete employee", err)
		return
	}
	if outcome == DeleteNotFound {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "employee not found")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"outcome": outcome})
}

func (h *Handler) importEmployees(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req ImportEmployeesRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.ImportEmployeesFromCSV(r.Context(), id, req.CSV)
	if err != nil {
		h.respondError(w, "import employees", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) csvTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="employee_import_template.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(CSVTemplate()))
}

func (h *Handler) employeeUsage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	start, end, ok := h.queryPeriod(w, r)
	if !ok {
		return
	}
	usage, err := h.service.EmployeeUsageAnalytics(r.Context(), id, start, end)
	if err != nil {
		h.respondError(w, "employee usage", err)
		return
	}
	httpx.JSON(w, http.StatusOK, usage)
}

func (h *Handler) departmentUsage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	department := chi.URLParam(r, "department")
	start, end, ok := h.queryPeriod(w, r)
	if !ok {
		return
	}
	usage, err := h.service.DepartmentUsageAnalytics(r.Context(), id, department, start, end)
	if err != nil {
		h.respondError(w, "department usage", err)
		return
	}
	httpx.JSON(w, http.StatusOK, usage)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var accountID int64
	if raw := chi.URLParam(r, "id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account id")
			return
		}
		accountID = parsed
	} else if raw := r.URL.Query().Get("account_id"); raw != "" {
		accountID, _ = strconv.ParseInt(raw, 10, 64)
	}
	start, end, ok := h.queryPeriod(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.Orders(accountID, start, end))
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !h.decode(w, r, &req) {
		return
	}
	ord, err := h.service.CreateOrder(r.Context(), req)
	if err != nil {
		h.respondError(w, "create order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ord)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	ord, err := h.service.UpdateOrderStatus(r.Context(), id, req.Status)
	if err != nil {
		h.respondError(w, "update order status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ord)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	var accountID int64
	if raw := chi.URLParam(r, "id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account id")
			return
		}
		accountID = parsed
	}
	httpx.JSON(w, http.StatusOK, h.service.Invoices(accountID))
}

func (h *Handler) generateInvoice(w http.ResponseWriter, r *http.Request) {
	var req GenerateInvoiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	inv, err := h.service.GenerateMonthlyInvoice(r.Context(), req.AccountID, req.Year, req.Month)
	if err != nil {
		h.respondError(w, "generate invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.Invoice(id)
	if err != nil {
		h.respondError(w, "get invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) sendInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req SendInvoiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.SendInvoiceByEmail(r.Context(), id, req.Recipients); err != nil {
		h.respondError(w, "send invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"sent": true})
}

func (h *Handler) sendReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.SendPaymentReminder(r.Context(), id); err != nil {
		h.respondError(w, "send reminder", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"sent": true})
}

func (h *Handler) updateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdateInvoiceStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	inv, err := h.service.UpdateInvoiceStatus(r.Context(), id, req.Status)
	if err != nil {
		h.respondError(w, "update invoice status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) payInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req PayInvoiceRequest
	if !h.decode(w, r, &req) {
		return
	}

	inv, err := h.service.Invoice(id)
	if err != nil {
		h.respondError(w, "pay invoice", err)
		return
	}
	amount := req.Amount
	if amount == 0 {
		amount = inv.Summary.Total
	}

	receipt, err := h.processor.Process(r.Context(), payments.Request{
		Method: payments.Method(req.Method),
		Amount: amount,
		Phone:  req.Phone,
	})
	if err != nil {
		h.logger.Error("process payment", slog.Any("error", err), slog.Int64("invoice_id", id))
		httpx.Problem(w, http.StatusBadRequest, "Payment Failed", err.Error())
		return
	}

	paid, err := h.service.RecordInvoicePayment(r.Context(), id, string(receipt.Method), receipt.Reference)
	if err != nil {
		h.respondError(w, "record payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoice": paid, "receipt": receipt})
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	var accountID int64
	if raw := chi.URLParam(r, "id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account id")
			return
		}
		accountID = parsed
	}
	httpx.JSON(w, http.StatusOK, h.service.Notifications(accountID))
}

func (h *Handler) createNotification(w http.ResponseWriter, r *http.Request) {
	var req CreateNotificationRequest
	if !h.decode(w, r, &req) {
		return
	}
	n, err := h.service.CreateNotification(r.Context(), req)
	if err != nil {
		h.respondError(w, "create notification", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, n)
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req MarkReadRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.MarkNotificationAsRead(r.Context(), id, req.Email); err != nil {
		h.respondError(w, "mark notification read", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"read": true})
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	var accountID int64
	if raw := r.URL.Query().Get("account_id"); raw != "" {
		accountID, _ = strconv.ParseInt(raw, 10, 64)
	}
	httpx.JSON(w, http.StatusOK, h.service.Overview(accountID))
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := httpx.DecodeJSON(r, dest); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(dest); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

// queryPeriod parses optional from/to query parameters (RFC 3339 or
// plain dates). Zero times mean "no bound".
func (h *Handler) queryPeriod(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	parse := func(raw string) (time.Time, error) {
		if raw == "" {
			return time.Time{}, nil
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02", raw)
	}
	start, err := parse(r.URL.Query().Get("from"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid from date")
		return time.Time{}, time.Time{}, false
	}
	end, err := parse(r.URL.Query().Get("to"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid to date")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrEmployeeNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrInvoiceNotFound),
		errors.Is(err, ErrNotificationNotFound),
		errors.Is(err, ErrDepartmentNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrCreditLimitExceeded),
		errors.Is(err, ErrEmployeeDailyLimitExceeded),
		errors.Is(err, ErrEmployeeMonthlyLimitExceeded):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Limit Exceeded", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

package corporate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"github.com/smartdine/smartdine/internal/money"
)

// Invoices returns invoices for one account, or all invoices sorted by
// generation time descending when accountID is zero.
func (s *Service) Invoices(accountID int64) []Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invoicesLocked(accountID)
}

func (s *Service) invoicesLocked(accountID int64) []Invoice {
	if accountID != 0 {
		var out []Invoice
		for _, inv := range s.invoices {
			if inv.AccountID == accountID {
				out = append(out, inv)
			}
		}
		return out
	}
	out := make([]Invoice, len(s.invoices))
	copy(out, s.invoices)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out
}

// Invoice returns one invoice by id.
func (s *Service) Invoice(id int64) (*Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := s.findInvoice(id)
	if inv == nil {
		return nil, ErrInvoiceNotFound
	}
	out := *inv
	return &out, nil
}

func (s *Service) findInvoice(id int64) *Invoice {
	for i := range s.invoices {
		if s.invoices[i].ID == id {
			return &s.invoices[i]
		}
	}
	return nil
}

// GenerateMonthlyInvoice rolls up an account's completed orders inside
// the calendar month into a draft invoice. Breakdowns and summary are
// computed once here; they are never recomputed if underlying orders
// change afterwards.
func (s *Service) GenerateMonthlyInvoice(ctx context.Context, accountID int64, year, month int) (*Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.findAccount(accountID)
	if acc == nil {
		return nil, ErrAccountNotFound
	}

	base := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	window := now.New(base)
	start, end := window.BeginningOfMonth(), window.EndOfMonth()
	daysInMonth := end.Day()

	var orders []Order
	for _, o := range s.ordersLocked(accountID, start, end) {
		if o.Status == OrderCompleted {
			orders = append(orders, o)
		}
	}

	// Employee breakdown, keyed on first appearance, then stable sort
	// descending by spend so ties keep insertion order.
	var employeeOrder []int64
	perEmployee := make(map[int64][]Order)
	for _, o := range orders {
		if _, seen := perEmployee[o.EmployeeID]; !seen {
			employeeOrder = append(employeeOrder, o.EmployeeID)
		}
		perEmployee[o.EmployeeID] = append(perEmployee[o.EmployeeID], o)
	}

	employeeBreakdown := make([]EmployeeSpend, 0, len(employeeOrder))
	for _, empID := range employeeOrder {
		empOrders := perEmployee[empID]
		var spent float64
		for _, o := range empOrders {
			spent += o.Total
		}
		name, dept := "Unknown", "Unknown"
		if emp := s.findEmployee(empID); emp != nil {
			name, dept = emp.FullName, emp.Department
		}
		employeeBreakdown = append(employeeBreakdown, EmployeeSpend{
			EmployeeID:   empID,
			EmployeeName: name,
			Department:   dept,
			TotalOrders:  len(empOrders),
			TotalSpent:   spent,
			// Divides by calendar days in the month, not days active,
			// which biases figures for employees who joined mid-month.
			DailyAverage: spent / float64(daysInMonth),
		})
	}
	sort.SliceStable(employeeBreakdown, func(i, j int) bool {
		return employeeBreakdown[i].TotalSpent > employeeBreakdown[j].TotalSpent
	})

	var deptOrder []string
	perDept := make(map[string]*DepartmentSpend)
	for _, emp := range employeeBreakdown {
		dept, ok := perDept[emp.Department]
		if !ok {
			deptOrder = append(deptOrder, emp.Department)
			dept = &DepartmentSpend{Department: emp.Department}
			perDept[emp.Department] = dept
		}
		dept.EmployeeCount++
		dept.TotalOrders += emp.TotalOrders
		dept.TotalSpent += emp.TotalSpent
	}
	departmentBreakdown := make([]DepartmentSpend, 0, len(deptOrder))
	for _, name := range deptOrder {
		d := *perDept[name]
		d.AveragePerEmployee = d.TotalSpent / float64(d.EmployeeCount)
		departmentBreakdown = append(departmentBreakdown, d)
	}
	sort.SliceStable(departmentBreakdown, func(i, j int) bool {
		return departmentBreakdown[i].TotalSpent > departmentBreakdown[j].TotalSpent
	})

	var subtotal, tax, serviceCharges, total float64
	for _, o := range orders {
		subtotal += o.Subtotal
		tax += o.Tax
		serviceCharges += o.ServiceCharge
		total += o.Total
	}
	summary := InvoiceSummary{
		TotalOrders:           len(orders),
		TotalEmployees:        len(employeeOrder),
		Subtotal:              subtotal,
		Tax:                   tax,
		ServiceCharges:        serviceCharges,
		Total:                 total,
		TopSpendingDepartment: "N/A",
		TopSpendingEmployee:   "N/A",
	}
	if len(orders) > 0 {
		summary.AverageOrderValue = total / float64(len(orders))
	}
	if len(departmentBreakdown) > 0 {
		summary.TopSpendingDepartment = departmentBreakdown[0].Department
	}
	if len(employeeBreakdown) > 0 {
		summary.TopSpendingEmployee = employeeBreakdown[0].EmployeeName
	}

	generatedAt := s.clock()
	inv := Invoice{
		ID:                  s.allocInvoiceID(),
		InvoiceNumber:       s.nextInvoiceNumber(generatedAt),
		AccountID:           accountID,
		CompanyName:         acc.CompanyName,
		BillingPeriod:       BillingPeriod{StartDate: start, EndDate: end},
		Orders:              orders,
		EmployeeBreakdown:   employeeBreakdown,
		DepartmentBreakdown: departmentBreakdown,
		Summary:             summary,
		DueDate:             generatedAt.Add(time.Duration(acc.PaymentTermsDays) * 24 * time.Hour),
		Status:              InvoiceDraft,
		GeneratedAt:         generatedAt,
		EmailDelivery: EmailDelivery{
			SentTo:         []string{},
			DeliveryStatus: DeliveryPending,
		},
	}
	s.invoices = append(s.invoices, inv)

	s.createNotificationLocked(ctx, CreateNotificationRequest{
		AccountID:  accountID,
		Type:       NotifyInvoiceSent,
		Title:      "Monthly Invoice Generated",
		Message:    fmt.Sprintf("Invoice %s for %s has been generated.", inv.InvoiceNumber, start.Format("January 2006")),
		Severity:   SeverityInfo,
		Recipients: []string{acc.Email},
	})

	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	out := s.invoices[len(s.invoices)-1]
	return &out, nil
}

// nextInvoiceNumber stamps the generation month plus a running sequence.
func (s *Service) nextInvoiceNumber(at time.Time) string {
	return fmt.Sprintf("INV-%s-%04d", at.Format("200601"), len(s.invoices)+1)
}

// SendInvoiceByEmail transitions an invoice to sent and records its
// delivery metadata. The actual email is handed to the mailer and
// delivered out of band; a mailer failure does not undo the transition.
func (s *Service) SendInvoiceByEmail(ctx context.Context, invoiceID int64, recipients []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv := s.findInvoice(invoiceID)
	if inv == nil {
		return ErrInvoiceNotFound
	}
	acc := s.findAccount(inv.AccountID)
	if acc == nil {
		return ErrAccountNotFound
	}

	if len(recipients) == 0 {
		recipients = []string{acc.Email}
	}

	sentAt := s.clock()
	inv.Status = InvoiceSent
	inv.SentAt = &sentAt
	inv.EmailDelivery = EmailDelivery{
		Sent:           true,
		SentAt:         &sentAt,
		SentTo:         recipients,
		DeliveryStatus: DeliveryDelivered,
	}

	s.enqueueEmail(ctx, recipients,
		fmt.Sprintf("Invoice %s from SmartDine", inv.InvoiceNumber),
		fmt.Sprintf("Invoice %s for %s. Amount due: %s. Due date: %s.",
			inv.InvoiceNumber, inv.CompanyName,
			money.Format(inv.Summary.Total), inv.DueDate.Format("2 January 2006")))

	s.createNotificationLocked(ctx, CreateNotificationRequest{
		AccountID:  inv.AccountID,
		Type:       NotifyInvoiceSent,
		Title:      "Invoice Sent Successfully",
		Message:    fmt.Sprintf("Invoice %s has been sent to %s", inv.InvoiceNumber, strings.Join(recipients, ", ")),
		Severity:   SeveritySuccess,
		Recipients: recipients,
	})

	return s.persist(ctx)
}

// SendPaymentReminder bumps the reminder counter on an invoice's
// delivery record and notifies the account. Invoice status is untouched.
func (s *Service) SendPaymentReminder(ctx context.Context, invoiceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv := s.findInvoice(invoiceID)
	if inv == nil {
		return ErrInvoiceNotFound
	}
	acc := s.findAccount(inv.AccountID)
	if acc == nil {
		return ErrAccountNotFound
	}

	remindedAt := s.clock()
	inv.EmailDelivery.RemindersSent++
	inv.EmailDelivery.LastReminderAt = &remindedAt

	s.enqueueEmail(ctx, []string{acc.Email},
		fmt.Sprintf("Payment reminder: invoice %s", inv.InvoiceNumber),
		fmt.Sprintf("Invoice %s (%s) is awaiting payment. Due date: %s.",
			inv.InvoiceNumber, money.Format(inv.Summary.Total), inv.DueDate.Format("2 January 2006")))

	s.createNotificationLocked(ctx, CreateNotificationRequest{
		AccountID:      inv.AccountID,
		Type:           NotifyPaymentReminder,
		Title:          "Payment Reminder Sent",
		Message:        fmt.Sprintf("Payment reminder for invoice %s has been sent. Due date: %s", inv.InvoiceNumber, inv.DueDate.Format("2006-01-02")),
		Severity:       SeverityWarning,
		Recipients:     []string{acc.Email},
		ActionRequired: true,
		ActionURL:      fmt.Sprintf("/admin/corporate/invoices/%d", inv.ID),
	})

	return s.persist(ctx)
}

// UpdateInvoiceStatus transitions an invoice directly. Transitioning to
// paid stamps the paid timestamp and decreases the account balance by
// the invoice total, floored at zero; a second paid transition therefore
// under-subtracts rather than erroring (preserved behavior, see notes).
func (s *Service) UpdateInvoiceStatus(ctx context.Context, invoiceID int64, status InvoiceStatus) (*Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyInvoiceStatusLocked(ctx, invoiceID, status, "", "")
}

// RecordInvoicePayment marks an invoice paid with the settlement details
// returned by the payment processor.
func (s *Service) RecordInvoicePayment(ctx context.Context, invoiceID int64, method, reference string) (*Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyInvoiceStatusLocked(ctx, invoiceID, InvoicePaid, method, reference)
}

func (s *Service) applyInvoiceStatusLocked(ctx context.Context, invoiceID int64, status InvoiceStatus, method, reference string) (*Invoice, error) {
	inv := s.findInvoice(invoiceID)
	if inv == nil {
		return nil, ErrInvoiceNotFound
	}

	inv.Status = status
	if method != "" {
		inv.PaymentMethod = method
	}
	if reference != "" {
		inv.PaymentReference = reference
	}

	if status == InvoicePaid {
		paidAt := s.clock()
		inv.PaidAt = &paidAt
		if acc := s.findAccount(inv.AccountID); acc != nil {
			acc.CurrentBalance -= inv.Summary.Total
			if acc.CurrentBalance < 0 {
				acc.CurrentBalance = 0
			}
			acc.UpdatedAt = paidAt
		}
	} else {
		inv.PaidAt = nil
	}

	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	out := *inv
	return &out, nil
}

// MarkOverdueInvoices flips sent, viewed or approved invoices whose due
// date has passed to overdue and returns them. Used by the scheduled
// overdue scan.
func (s *Service) MarkOverdueInvoices(ctx context.Context, asOf time.Time) ([]Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if asOf.IsZero() {
		asOf = s.clock()
	}

	var flipped []Invoice
	for i := range s.invoices {
		inv := &s.invoices[i]
		switch inv.Status {
		case InvoiceSent, InvoiceViewed, InvoiceApproved:
		default:
			continue
		}
		if !inv.DueDate.Before(asOf) {
			continue
		}
		inv.Status = InvoiceOverdue
		flipped = append(flipped, *inv)
	}
	if len(flipped) == 0 {
		return nil, nil
	}
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return flipped, nil
}

func (s *Service) enqueueEmail(ctx context.Context, to []string, subject, body string) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.EnqueueEmail(ctx, to, subject, body); err != nil {
		s.logger.Warn("enqueue email", slog.String("subject", subject), slog.Any("error", err))
	}
}

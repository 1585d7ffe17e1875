package corporate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setupInvoiceFixture(t *testing.T) (*testEnv, *Account, *Employee, *Employee) {
	t.Helper()
	env := newTestService(t)
	acc := mustCreateAccount(t, env.service, CreateAccountRequest{CreditLimit: 5000000, PaymentTermsDays: 30})

	grace := mustCreateEmployee(t, env.service, acc.ID, "KL001", 0, 0)
	ahmed, err := env.service.CreateEmployee(context.Background(), CreateEmployeeRequest{
		AccountID:  acc.ID,
		EmployeeID: "KL002",
		FullName:   "Employee KL002",
		Email:      "kl002@kililogistics.co.tz",
		Phone:      "+255 700 000 001",
		Department: "IT",
		Position:   "Developer",
	})
	require.NoError(t, err)

	req1 := orderRequest(acc.ID, grace.ID, 37950, testNow.Add(-2*time.Hour))
	req1.Subtotal, req1.Tax, req1.ServiceCharge = 33000, 4290, 660
	_, err = env.service.CreateOrder(context.Background(), req1)
	require.NoError(t, err)

	req2 := orderRequest(acc.ID, ahmed.ID, 28750, testNow.Add(-4*time.Hour))
	req2.Subtotal, req2.Tax, req2.ServiceCharge = 25000, 3250, 500
	req2.MealType = MealBreakfast
	_, err = env.service.CreateOrder(context.Background(), req2)
	require.NoError(t, err)

	return env, acc, grace, ahmed
}

func TestGenerateMonthlyInvoice(t *testing.T) {
	env, acc, grace, _ := setupInvoiceFixture(t)

	inv, err := env.service.GenerateMonthlyInvoice(context.Background(), acc.ID, 2026, 3)
	require.NoError(t, err)

	require.Equal(t, "INV-202603-0001", inv.InvoiceNumber)
	require.Equal(t, InvoiceDraft, inv.Status)
	require.Equal(t, acc.CompanyName, inv.CompanyName)
	require.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), inv.BillingPeriod.StartDate)
	require.Equal(t, testNow.Add(30*24*time.Hour), inv.DueDate)

	require.Len(t, inv.Orders, 2)
	require.Equal(t, 2, inv.Summary.TotalOrders)
	require.Equal(t, 2, inv.Summary.TotalEmployees)
	require.Equal(t, 58000.0, inv.Summary.Subtotal)
	require.Equal(t, 7540.0, inv.Summary.Tax)
	require.Equal(t, 1160.0, inv.Summary.ServiceCharges)
	require.Equal(t, 66700.0, inv.Summary.Total)
	require.Equal(t, 33350.0, inv.Summary.AverageOrderValue)

	// breakdowns sorted by spend descending
	require.Len(t, inv.EmployeeBreakdown, 2)
	require.Equal(t, grace.ID, inv.EmployeeBreakdown[0].EmployeeID)
	require.Equal(t, 37950.0, inv.EmployeeBreakdown[0].TotalSpent)
	// March has 31 days; daily average divides by calendar days
	require.InDelta(t, 37950.0/31, inv.EmployeeBreakdown[0].DailyAverage, 0.001)

	require.Len(t, inv.DepartmentBreakdown, 2)
	require.Equal(t, "Operations", inv.DepartmentBreakdown[0].Department)
	require.Equal(t, "Operations", inv.Summary.TopSpendingDepartment)
	require.Equal(t, grace.FullName, inv.Summary.TopSpendingEmployee)

	require.Equal(t, DeliveryPending, inv.EmailDelivery.DeliveryStatus)
	require.False(t, inv.EmailDelivery.Sent)

	notifications := env.service.Notifications(acc.ID)
	require.NotEmpty(t, notifications)
	require.Equal(t, "Monthly Invoice Generated", notifications[len(notifications)-1].Title)
}

func TestGenerateMonthlyInvoiceSkipsNonCompletedOrders(t *testing.T) {
	env := newTestService(t)
	acc := mustCreateAccount(t, env.service, CreateAccountRequest{})
	emp := mustCreateEmployee(t, env.service, acc.ID, "KL001", 0, 0)

	req := orderRequest(acc.ID, emp.ID, 10000, testNow)
	req.Status = OrderPending
	_, err := env.service.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	inv, err := env.service.GenerateMonthlyInvoice(context.Background(), acc.ID, 2026, 3)
	require.NoError(t, err)
	require.Empty(t, inv.Orders)
	require.Equal(t, 0.0, inv.Summary.Total)
	require.Equal(t, 0.0, inv.Summary.AverageOrderValue)
	require.Equal(t, "N/A", inv.Summary.TopSpendingDepartment)
	require.Equal(t, "N/A", inv.Summary.TopSpendingEmployee)
}

func TestGenerateMonthlyInvoiceUnknownAccount(t *testing.T) {
	env := newTestService(t)
	_, err := env.service.GenerateMonthlyInvoice(context.Background(), 42, 2026, 3)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestInvoiceNumberSequence(t *testing.T) {
	env, acc, _, _ := setupInvoiceFixture(t)

	first, err := env.service.GenerateMonthlyInvoice(context.Background(), acc.ID, 2026, 3)
	require.NoError(t, err)
	second, err := env.service.GenerateMonthlyInvoice(context.Background(), acc.ID, 2026, 2)
	require.NoError(t, err)

	require.Equal(t, "INV-202603-0001", first.InvoiceNumber)
	require.Equal(t, "INV-202603-0002", second.InvoiceNumber)
}

func TestInvoicesListingOrder(t *testing.T) {
	env, acc, _, _ := setupInvoiceFixture(t)
	_, err := env.service.GenerateMonthlyInvoice(context.Background(), acc.ID, 2026, 3)
	require.NoError(t, err)
	_, err = env.service.GenerateMonthlyInvoice(context.Background(), acc.ID, 2026, 2)
	require.NoError(t, err)

	all := env.service.Invoices(0)
	require.Len(t, all, 2)

	mine := env.service.Invoices(acc.ID)
	require.Len(t, mine, 2)

	require.Empty(t, env.service.Invoices(999))
}

func TestSendInvoiceByEmail(t *testing.T) {
	env, acc, _, _ := setupInvoiceFixture(t)
	inv, err := env.service.GenerateMonthlyInvoice(context.Background(), acc.ID, 2026, 3)
	require.NoError(t, err)

	require.NoError(t, env.service.SendInvoiceByEmail(context.Background(), inv.ID, nil))

	sent, err := env.service.Invoice(inv.ID)
	require.NoError(t, err)
	require.Equal(t, InvoiceSent, sent.Status)
	require.NotNil(t, sent.SentAt)
	require.True(t, sent.EmailDelivery.Sent)
	require.Equal(t, DeliveryDelivered, sent.EmailDelivery.DeliveryStatus)
	// recipients default to the account contact email
	require.Equal(t, []string{acc.Email}, sent.EmailDelivery.SentTo)

	require.Len(t, env.mailer.sent, 1)
	require.Equal(t, []string{acc.Email}, env.mailer.sent[0].to)
	require.Contains(t, env.mailer.sent[0].subject, sent.InvoiceNumber)
	require.Contains(t, env.mailer.sent[0].body, "TSh 66,700")

	notifications := env.service.Notifications(acc.ID)
	require.Equal(t, "Invoice Sent Successfully", notifications[len(notifications)-1].Title)
}

func TestSendInvoiceByEmailExplicitRecipients(t *testing.T) {
	env, acc, _, _ := setupInvoiceFixture(t)
	inv, err := env.service.GenerateMonthlyInvoice(context.Background(), acc.ID, 2026, 3)
	require.NoError(t, err)

	recipients := []string{"cfo@kililogistics.co.tz", "ap@kililogistics.co.tz"}
	require.NoError(t, env.service.SendInvoiceByEmail(context.Background(), inv.ID, recipients))

	sent, err := env.service.Invoice(inv.ID)
	require.NoError(t, err)
	require.Equal(t, recipients, sent.EmailDelivery.SentTo)
}

func TestSendPaymentReminder(t *testing.T) {
	env, acc, _, _ := setupInvoiceFixture(t)
	inv, err := env.service.GenerateMonthlyInvoice(context.Background(), acc.ID, 2026, 3)
	require.NoError(t, err)

	require.NoError(t, env.service.SendPaymentReminder(context.Background(), inv.ID))
	require.NoError(t, env.service.SendPaymentReminder(context.Background(), inv.ID))

	got, err := env.service.Invoice(inv.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.EmailDelivery.RemindersSent)
	require.NotNil(t, got.EmailDelivery.LastReminderAt)
	// reminders never change invoice status
	require.Equal(t, InvoiceDraft, got.Status)

	notifications := env.service.Notifications(acc.ID)
	last := notifications[len(notifications)-1]
	require.Equal(t, NotifyPaymentReminder, last.Type)
	require.True(t, last.ActionRequired)
	require.Contains(t, last.ActionURL, "/admin/corporate/invoices/")
}

func TestUpdateInvoiceStatusPaidDecreasesBalanceClampedAtZero(t *testing.T) {
	env, acc, _, _ := setupInvoiceFixture(t)
	inv, err := env.service.GenerateMonthlyInvoice(context.Background(), acc.ID, 2026, 3)
	require.NoError(t, err)

	paid, err := env.service.UpdateInvoiceStatus(context.Background(), inv.ID, InvoicePaid)
	require.NoError(t, err)
	require.Equal(t, InvoicePaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	got, err := env.service.Account(acc.ID)
	require.NoError(t, err)
	require.Equal(t, 0.0, got.CurrentBalance)

	// paying again floors at zero instead of going negative
	_, err = env.service.UpdateInvoiceStatus(context.Background(), inv.ID, InvoicePaid)
	require.NoError(t, err)
	got, err = env.service.Account(acc.ID)
	require.NoError(t, err)
	require.Equal(t, 0.0, got.CurrentBalance)
}

func TestUpdateInvoiceStatusNonPaidClearsPaidAt(t *testing.T) {
	env, acc, _, _ := setupInvoiceFixture(t)
	inv, err := env.service.GenerateMonthlyInvoice(context.Background(), acc.ID, 2026, 3)
	require.NoError(t, err)

	_, err = env.service.UpdateInvoiceStatus(context.Background(), inv.ID, InvoicePaid)
	require.NoError(t, err)

	reverted, err := env.service.UpdateInvoiceStatus(context.Background(), inv.ID, InvoiceSent)
	require.NoError(t, err)
	require.Nil(t, reverted.PaidAt)
}

func TestRecordInvoicePayment(t *testing.T) {
	env, acc, _, _ := setupInvoiceFixture(t)
	inv, err := env.service.GenerateMonthlyInvoice(context.Background(), acc.ID, 2026, 3)
	require.NoError(t, err)

	paid, err := env.service.RecordInvoicePayment(context.Background(), inv.ID, "mobile_money", "AB12CD34")
	require.NoError(t, err)
	require.Equal(t, InvoicePaid, paid.Status)
	require.Equal(t, "mobile_money", paid.PaymentMethod)
	require.Equal(t, "AB12CD34", paid.PaymentReference)
}

func TestMarkOverdueInvoices(t *testing.T) {
	env, acc, _, _ := setupInvoiceFixture(t)
	sent, err := env.service.GenerateMonthlyInvoice(context.Background(), acc.ID, 2026, 3)
	require.NoError(t, err)
	require.NoError(t, env.service.SendInvoiceByEmail(context.Background(), sent.ID, nil))

	draft, err := env.service.GenerateMonthlyInvoice(context.Background(), acc.ID, 2026, 2)
	require.NoError(t, err)

	// before the due date nothing flips
	flipped, err := env.service.MarkOverdueInvoices(context.Background(), testNow)
	require.NoError(t, err)
	require.Empty(t, flipped)

	flipped, err = env.service.MarkOverdueInvoices(context.Background(), testNow.Add(31*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, flipped, 1)
	require.Equal(t, sent.ID, flipped[0].ID)
	require.Equal(t, InvoiceOverdue, flipped[0].Status)

	// drafts are never swept
	got, err := env.service.Invoice(draft.ID)
	require.NoError(t, err)
	require.Equal(t, InvoiceDraft, got.Status)
}

func TestInvoiceNotFound(t *testing.T) {
	env := newTestService(t)
	_, err := env.service.Invoice(1)
	require.ErrorIs(t, err, ErrInvoiceNotFound)
	require.ErrorIs(t, env.service.SendInvoiceByEmail(context.Background(), 1, nil), ErrInvoiceNotFound)
	require.ErrorIs(t, env.service.SendPaymentReminder(context.Background(), 1), ErrInvoiceNotFound)
	_, err = env.service.UpdateInvoiceStatus(context.Background(), 1, InvoicePaid)
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}

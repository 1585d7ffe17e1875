package corporate

import "time"

// AccountStatus enumerates corporate account lifecycle states.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountInactive  AccountStatus = "inactive"
)

// Account is a corporate client billed in aggregate for its employees'
// orders. Accounts are never hard-deleted; Status transitions instead.
type Account struct {
	ID                int64         `json:"id"`
	CompanyName       string        `json:"company_name"`
	ContactPerson     string        `json:"contact_person"`
	Email             string        `json:"email"`
	Phone             string        `json:"phone"`
	Address           string        `json:"address"`
	TaxID             string        `json:"tax_id,omitempty"`
	CreditLimit       float64       `json:"credit_limit"`
	CurrentBalance    float64       `json:"current_balance"`
	PaymentTermsDays  int           `json:"payment_terms_days"`
	Status            AccountStatus `json:"status"`
	ContractStartDate time.Time     `json:"contract_start_date"`
	ContractEndDate   *time.Time    `json:"contract_end_date,omitempty"`
	BillingAddress    string        `json:"billing_address"`
	AccountManager    string        `json:"account_manager"`
	Notes             string        `json:"notes,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// EmployeeStatus enumerates employee lifecycle states.
type EmployeeStatus string

const (
	EmployeeActive    EmployeeStatus = "active"
	EmployeeSuspended EmployeeStatus = "suspended"
	EmployeeInactive  EmployeeStatus = "inactive"
)

// Employee belongs to exactly one Account. EmployeeID is the
// caller-supplied natural key, unique across the whole system.
type Employee struct {
	ID           int64          `json:"id"`
	AccountID    int64          `json:"account_id"`
	EmployeeID   string         `json:"employee_id"`
	FullName     string         `json:"full_name"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Department   string         `json:"department"`
	Position     string         `json:"position"`
	DailyLimit   float64        `json:"daily_limit"`
	MonthlyLimit float64        `json:"monthly_limit"`
	Status       EmployeeStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// MealType classifies an order by meal period.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealTypes lists every meal type in presentation order.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// OrderStatus enumerates order lifecycle states.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderApproved  OrderStatus = "approved"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderItem is a single line item of an order.
type OrderItem struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

// Order is a billed transaction attributed to one Employee and
// transitively one Account. Immutable once created except for Status.
type Order struct {
	ID            int64       `json:"id"`
	OrderNumber   string      `json:"order_number"`
	AccountID     int64       `json:"account_id"`
	EmployeeID    int64       `json:"employee_id"`
	EmployeeName  string      `json:"employee_name"`
	Department    string      `json:"department"`
	Items         []OrderItem `json:"items"`
	Subtotal      float64     `json:"subtotal"`
	Tax           float64     `json:"tax"`
	ServiceCharge float64     `json:"service_charge"`
	Total         float64     `json:"total"`
	OrderDate     time.Time   `json:"order_date"`
	MealType      MealType    `json:"meal_type"`
	Notes         string      `json:"notes,omitempty"`
	ApprovedBy    string      `json:"approved_by,omitempty"`
	Status        OrderStatus `json:"status"`
}

// InvoiceStatus enumerates invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoiceViewed    InvoiceStatus = "viewed"
	InvoiceApproved  InvoiceStatus = "approved"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// BillingPeriod is the calendar-month window an invoice covers.
type BillingPeriod struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// EmployeeSpend summarises one employee's orders inside a billing window.
type EmployeeSpend struct {
	EmployeeID   int64   `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Department   string  `json:"department"`
	TotalOrders  int     `json:"total_orders"`
	TotalSpent   float64 `json:"total_spent"`
	DailyAverage float64 `json:"daily_average"`
}

// DepartmentSpend aggregates EmployeeSpend entries per department.
type DepartmentSpend struct {
	Department         string  `json:"department"`
	EmployeeCount      int     `json:"employee_count"`
	TotalOrders        int     `json:"total_orders"`
	TotalSpent         float64 `json:"total_spent"`
	AveragePerEmployee float64 `json:"average_per_employee"`
}

// InvoiceSummary holds the rolled-up totals of an invoice.
type InvoiceSummary struct {
	TotalOrders           int     `json:"total_orders"`
	TotalEmployees        int     `json:"total_employees"`
	Subtotal              float64 `json:"subtotal"`
	Tax                   float64 `json:"tax"`
	ServiceCharges        float64 `json:"service_charges"`
	Total                 float64 `json:"total"`
	AverageOrderValue     float64 `json:"average_order_value"`
	TopSpendingDepartment string  `json:"top_spending_department"`
	TopSpendingEmployee   string  `json:"top_spending_employee"`
}

// DeliveryStatus enumerates email delivery outcomes.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
	DeliveryBounced   DeliveryStatus = "bounced"
)

// EmailDelivery records how an invoice was delivered and reminded.
type EmailDelivery struct {
	Sent           bool           `json:"sent"`
	SentAt         *time.Time     `json:"sent_at,omitempty"`
	SentTo         []string       `json:"sent_to"`
	DeliveryStatus DeliveryStatus `json:"delivery_status"`
	OpenedAt       *time.Time     `json:"opened_at,omitempty"`
	RemindersSent  int            `json:"reminders_sent"`
	LastReminderAt *time.Time     `json:"last_reminder_at,omitempty"`
}

// Invoice is a monthly rollup of an account's completed orders. Its
// orders and breakdowns are computed once at generation time and never
// recomputed if the underlying orders change later.
type Invoice struct {
	ID                  int64             `json:"id"`
	InvoiceNumber       string            `json:"invoice_number"`
	AccountID           int64             `json:"account_id"`
	CompanyName         string            `json:"company_name"`
	BillingPeriod       BillingPeriod     `json:"billing_period"`
	Orders              []Order           `json:"orders"`
	EmployeeBreakdown   []EmployeeSpend   `json:"employee_breakdown"`
	DepartmentBreakdown []DepartmentSpend `json:"department_breakdown"`
	Summary             InvoiceSummary    `json:"summary"`
	DueDate             time.Time         `json:"due_date"`
	Status              InvoiceStatus     `json:"status"`
	GeneratedAt         time.Time         `json:"generated_at"`
	SentAt              *time.Time        `json:"sent_at,omitempty"`
	ViewedAt            *time.Time        `json:"viewed_at,omitempty"`
	ApprovedAt          *time.Time        `json:"approved_at,omitempty"`
	PaidAt              *time.Time        `json:"paid_at,omitempty"`
	ApprovedBy          string            `json:"approved_by,omitempty"`
	PaymentMethod       string            `json:"payment_method,omitempty"`
	PaymentReference    string            `json:"payment_reference,omitempty"`
	Notes               string            `json:"notes,omitempty"`
	EmailDelivery       EmailDelivery     `json:"email_delivery"`
}

// NotificationType enumerates notification categories.
type NotificationType string

const (
	NotifyInvoiceSent     NotificationType = "invoice_sent"
	NotifyPaymentReminder NotificationType = "payment_reminder"
	NotifyLimitAlert      NotificationType = "limit_alert"
	NotifyBudgetAlert     NotificationType = "budget_alert"
	NotifyUsageReport     NotificationType = "usage_report"
)

// Severity grades notifications and usage alerts.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// ReadReceipt records one reader acknowledging a notification.
type ReadReceipt struct {
	Email  string    `json:"email"`
	ReadAt time.Time `json:"read_at"`
}

// Notification is an append-only informational record tied to an account.
type Notification struct {
	ID             int64            `json:"id"`
	AccountID      int64            `json:"account_id"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	Severity       Severity         `json:"severity"`
	Recipients     []string         `json:"recipients"`
	SentAt         time.Time        `json:"sent_at"`
	DeliveryStatus string           `json:"delivery_status"`
	ReadBy         []ReadReceipt    `json:"read_by"`
	ActionRequired bool             `json:"action_required"`
	ActionURL      string           `json:"action_url,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
}

// DeleteOutcome distinguishes the two ways an employee delete can
// succeed: a hard removal when no orders reference the employee, or a
// soft deactivation when historical orders must stay resolvable.
type DeleteOutcome string

const (
	DeleteRemoved     DeleteOutcome = "removed"
	DeleteDeactivated DeleteOutcome = "deactivated"
	DeleteNotFound    DeleteOutcome = "not_found"
)

package corporate

import "time"

type CreateAccountRequest struct {
	CompanyName       string        `json:"company_name" validate:"required,max=200"`
	ContactPerson     string        `json:"contact_person" validate:"required,max=200"`
	Email             string        `json:"email" validate:"required,email"`
	Phone             string        `json:"phone" validate:"required,max=50"`
	Address           string        `json:"address" validate:"max=300"`
	TaxID             string        `json:"tax_id,omitempty" validate:"omitempty,max=50"`
	CreditLimit       float64       `json:"credit_limit" validate:"gte=0"`
	CurrentBalance    float64       `json:"current_balance" validate:"gte=0"`
	PaymentTermsDays  int           `json:"payment_terms_days" validate:"gte=0,lte=365"`
	Status            AccountStatus `json:"status,omitempty" validate:"omitempty,oneof=active suspended inactive"`
	ContractStartDate time.Time     `json:"contract_start_date,omitempty"`
	ContractEndDate   *time.Time    `json:"contract_end_date,omitempty"`
	BillingAddress    string        `json:"billing_address" validate:"max=300"`
	AccountManager    string        `json:"account_manager" validate:"max=200"`
	Notes             string        `json:"notes,omitempty"`
}

type UpdateAccountRequest struct {
	CompanyName      *string        `json:"company_name,omitempty" validate:"omitempty,max=200"`
	ContactPerson    *string        `json:"contact_person,omitempty" validate:"omitempty,max=200"`
	Email            *string        `json:"email,omitempty" validate:"omitempty,email"`
	Phone            *string        `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address          *string        `json:"address,omitempty" validate:"omitempty,max=300"`
	TaxID            *string        `json:"tax_id,omitempty" validate:"omitempty,max=50"`
	CreditLimit      *float64       `json:"credit_limit,omitempty" validate:"omitempty,gte=0"`
	PaymentTermsDays *int           `json:"payment_terms_days,omitempty" validate:"omitempty,gte=0,lte=365"`
	Status           *AccountStatus `json:"status,omitempty" validate:"omitempty,oneof=active suspended inactive"`
	ContractEndDate  *time.Time     `json:"contract_end_date,omitempty"`
	BillingAddress   *string        `json:"billing_address,omitempty" validate:"omitempty,max=300"`
	AccountManager   *string        `json:"account_manager,omitempty" validate:"omitempty,max=200"`
	Notes            *string        `json:"notes,omitempty"`
}

type CreateEmployeeRequest struct {
	AccountID    int64          `json:"account_id" validate:"required,gt=0"`
	EmployeeID   string         `json:"employee_id" validate:"required,max=50"`
	FullName     string         `json:"full_name" validate:"required,max=200"`
	Email        string         `json:"email" validate:"required,email"`
	Phone        string         `json:"phone" validate:"required,max=50"`
	Department   string         `json:"department" validate:"required,max=100"`
	Position     string         `json:"position" validate:"required,max=100"`
	DailyLimit   float64        `json:"daily_limit" validate:"gte=0"`
	MonthlyLimit float64        `json:"monthly_limit" validate:"gte=0"`
	Status       EmployeeStatus `json:"status,omitempty" validate:"omitempty,oneof=active suspended inactive"`
}

type UpdateEmployeeRequest struct {
	FullName     *string         `json:"full_name,omitempty" validate:"omitempty,max=200"`
	Email        *string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string         `json:"phone,omitempty" validate:"omitempty,max=50"`
	Department   *string         `json:"department,omitempty" validate:"omitempty,max=100"`
	Position     *string         `json:"position,omitempty" validate:"omitempty,max=100"`
	DailyLimit   *float64        `json:"daily_limit,omitempty" validate:"omitempty,gte=0"`
	MonthlyLimit *float64        `json:"monthly_limit,omitempty" validate:"omitempty,gte=0"`
	Status       *EmployeeStatus `json:"status,omitempty" validate:"omitempty,oneof=active suspended inactive"`
}

type CreateOrderItem struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name" validate:"required,max=200"`
	Quantity   int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice  float64 `json:"unit_price" validate:"gte=0"`
	TotalPrice float64 `json:"total_price" validate:"gte=0"`
}

type CreateOrderRequest struct {
	OrderNumber   string            `json:"order_number" validate:"required,max=50"`
	AccountID     int64             `json:"account_id" validate:"required,gt=0"`
	EmployeeID    int64             `json:"employee_id" validate:"required,gt=0"`
	Items         []CreateOrderItem `json:"items" validate:"required,min=1,dive"`
	Subtotal      float64           `json:"subtotal" validate:"gte=0"`
	Tax           float64           `json:"tax" validate:"gte=0"`
	ServiceCharge float64           `json:"service_charge" validate:"gte=0"`
	Total         float64           `json:"total" validate:"gt=0"`
	OrderDate     time.Time         `json:"order_date,omitempty"`
	MealType      MealType          `json:"meal_type" validate:"required,oneof=breakfast lunch dinner snack"`
	Notes         string            `json:"notes,omitempty"`
	ApprovedBy    string            `json:"approved_by,omitempty"`
	Status        OrderStatus       `json:"status,omitempty" validate:"omitempty,oneof=pending approved completed cancelled"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending approved completed cancelled"`
}

type GenerateInvoiceRequest struct {
	AccountID int64 `json:"account_id" validate:"required,gt=0"`
	Year      int   `json:"year" validate:"required,gte=2000,lte=2100"`
	Month     int   `json:"month" validate:"required,gte=1,lte=12"`
}

type SendInvoiceRequest struct {
	Recipients []string `json:"recipients,omitempty" validate:"omitempty,dive,email"`
}

type UpdateInvoiceStatusRequest struct {
	Status InvoiceStatus `json:"status" validate:"required,oneof=draft sent viewed approved paid overdue cancelled"`
}

type PayInvoiceRequest struct {
	Method string  `json:"method" validate:"required,oneof=mobile_money card cash"`
	Phone  string  `json:"phone,omitempty" validate:"omitempty,max=50"`
	Amount float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
}

type CreateNotificationRequest struct {
	AccountID      int64            `json:"account_id" validate:"required,gt=0"`
	Type           NotificationType `json:"type" validate:"required,oneof=invoice_sent payment_reminder limit_alert budget_alert usage_report"`
	Title          string           `json:"title" validate:"required,max=200"`
	Message        string           `json:"message" validate:"required"`
	Severity       Severity         `json:"severity" validate:"required,oneof=info warning error success"`
	Recipients     []string         `json:"recipients" validate:"omitempty,dive,email"`
	ActionRequired bool             `json:"action_required"`
	ActionURL      string           `json:"action_url,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
}

type MarkReadRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ImportEmployeesRequest struct {
	CSV string `json:"csv" validate:"required"`
}

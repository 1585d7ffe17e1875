package corporate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// ErrDepartmentNotFound indicates a department with no employees under
// the given account.
var ErrDepartmentNotFound = errors.New("department not found")

// SpendingTrend classifies how spending moved across a period.
type SpendingTrend string

const (
	TrendIncreasing SpendingTrend = "increasing"
	TrendDecreasing SpendingTrend = "decreasing"
	TrendStable     SpendingTrend = "stable"
)

// AlertSeverity grades usage alerts.
type AlertSeverity string

const (
	AlertLow    AlertSeverity = "low"
	AlertMedium AlertSeverity = "medium"
	AlertHigh   AlertSeverity = "high"
)

// UsageAlertType enumerates usage alert categories.
type UsageAlertType string

const (
	AlertApproachingLimit UsageAlertType = "approaching_limit"
	AlertExceededLimit    UsageAlertType = "exceeded_limit"
	AlertUnusualSpending  UsageAlertType = "unusual_spending"
)

// Period is an arbitrary analytics date range.
type Period struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// DailyBucket is one zero-filled day of an analytics time series.
type DailyBucket struct {
	Date   string  `json:"date"`
	Orders int     `json:"orders"`
	Amount float64 `json:"amount"`
}

// MealTypeShare is one meal type's slice of the spend in a period.
type MealTypeShare struct {
	MealType   MealType `json:"meal_type"`
	Orders     int      `json:"orders"`
	Amount     float64  `json:"amount"`
	Percentage float64  `json:"percentage"`
}

// LimitUtilization expresses average spend against the employee limits
// as percentages.
type LimitUtilization struct {
	Daily   float64 `json:"daily"`
	Monthly float64 `json:"monthly"`
}

// UsageAlert flags notable spending behavior inside a period.
type UsageAlert struct {
	Type     UsageAlertType `json:"type"`
	Message  string         `json:"message"`
	Severity AlertSeverity  `json:"severity"`
	Date     time.Time      `json:"date"`
}

// UsageAnalytics is the full per-employee usage report for a period.
type UsageAnalytics struct {
	EmployeeID        int64            `json:"employee_id"`
	EmployeeName      string           `json:"employee_name"`
	Department        string           `json:"department"`
	Period            Period           `json:"period"`
	TotalOrders       int              `json:"total_orders"`
	TotalSpent        float64          `json:"total_spent"`
	AverageOrderValue float64          `json:"average_order_value"`
	DailyAverage      float64          `json:"daily_average"`
	WeeklyAverage     float64          `json:"weekly_average"`
	MonthlyAverage    float64          `json:"monthly_average"`
	DailyBreakdown    []DailyBucket    `json:"daily_breakdown"`
	MealTypeBreakdown []MealTypeShare  `json:"meal_type_breakdown"`
	SpendingTrend     SpendingTrend    `json:"spending_trend"`
	LimitUtilization  LimitUtilization `json:"limit_utilization"`
	Alerts            []UsageAlert     `json:"alerts"`
}

// TopSpender ranks one employee inside a department report.
type TopSpender struct {
	EmployeeID   int64   `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	TotalSpent   float64 `json:"total_spent"`
	Orders       int     `json:"orders"`
}

// DepartmentAnalytics is the per-department usage report for a period.
type DepartmentAnalytics struct {
	Department         string        `json:"department"`
	AccountID          int64         `json:"account_id"`
	Period             Period        `json:"period"`
	EmployeeCount      int           `json:"employee_count"`
	TotalOrders        int           `json:"total_orders"`
	TotalSpent         float64       `json:"total_spent"`
	AveragePerEmployee float64       `json:"average_per_employee"`
	AverageOrderValue  float64       `json:"average_order_value"`
	TopSpenders        []TopSpender  `json:"top_spenders"`
	SpendingTrend      SpendingTrend `json:"spending_trend"`
}

// OverviewAnalytics summarises the whole book, or one account of it.
type OverviewAnalytics struct {
	TotalAccounts      int     `json:"total_accounts"`
	ActiveAccounts     int     `json:"active_accounts"`
	TotalEmployees     int     `json:"total_employees"`
	TotalOrders        int     `json:"total_orders"`
	TotalRevenue       float64 `json:"total_revenue"`
	AverageOrderValue  float64 `json:"average_order_value"`
	OutstandingBalance float64 `json:"outstanding_balance"`
}

// EmployeeCounts summarises an account's workforce.
type EmployeeCounts struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Departments int `json:"departments"`
}

// SpendingSummary summarises an account's order spend.
type SpendingSummary struct {
	AllTime           float64 `json:"all_time"`
	CurrentMonth      float64 `json:"current_month"`
	AverageOrderValue float64 `json:"average_order_value"`
	TotalOrders       int     `json:"total_orders"`
	MonthlyOrders     int     `json:"monthly_orders"`
}

// InvoiceCounts summarises an account's invoices by status.
type InvoiceCounts struct {
	Total            int     `json:"total"`
	Pending          int     `json:"pending"`
	Overdue          int     `json:"overdue"`
	Paid             int     `json:"paid"`
	TotalOutstanding float64 `json:"total_outstanding"`
}

// CreditStatus expresses how much of the credit ceiling is in use.
type CreditStatus struct {
	Limit                 float64 `json:"limit"`
	Used                  float64 `json:"used"`
	Available             float64 `json:"available"`
	UtilizationPercentage float64 `json:"utilization_percentage"`
}

// AccountSummary is the account-level dashboard payload.
type AccountSummary struct {
	Account             Account               `json:"account"`
	Employees           EmployeeCounts        `json:"employees"`
	Spending            SpendingSummary       `json:"spending"`
	Invoices            InvoiceCounts         `json:"invoices"`
	CreditStatus        CreditStatus          `json:"credit_status"`
	DepartmentAnalytics []DepartmentAnalytics `json:"department_analytics"`
	RecentActivity      []Order               `json:"recent_activity"`
}

// EmployeeUsageAnalytics derives the usage report for one employee over
// a date range, defaulting to the trailing 30 days. Results are served
// from the analytics cache when one is configured.
func (s *Service) EmployeeUsageAnalytics(ctx context.Context, employeeID int64, start, end time.Time) (*UsageAnalytics, error) {
	start, end = s.defaultPeriod(start, end)

	key, err := s.cache.BuildKey(ctx, "corporate", "usage", strconv.FormatInt(employeeID, 10),
		start.UTC().Format("2006-01-02"), end.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	var out UsageAnalytics
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.computeEmployeeUsage(employeeID, start, end)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) computeEmployeeUsage(employeeID int64, start, end time.Time) (*UsageAnalytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emp := s.findEmployee(employeeID)
	if emp == nil {
		return nil, ErrEmployeeNotFound
	}

	var orders []Order
	for _, o := range s.orders {
		if o.EmployeeID == employeeID && !o.OrderDate.Before(start) && !o.OrderDate.After(end) {
			orders = append(orders, o)
		}
	}

	var totalSpent float64
	for _, o := range orders {
		totalSpent += o.Total
	}

	daily := dailyBreakdown(orders, start, end)
	meals := mealTypeBreakdown(orders)
	trend := spendingTrend(daily)

	daysInPeriod := math.Ceil(end.Sub(start).Hours() / 24)
	dailyAverage := totalSpent / math.Max(daysInPeriod, 1)
	monthlyAverage := totalSpent / math.Max(daysInPeriod/30, 1)

	util := LimitUtilization{}
	if emp.DailyLimit > 0 {
		util.Daily = dailyAverage / emp.DailyLimit * 100
	}
	if emp.MonthlyLimit > 0 {
		util.Monthly = monthlyAverage / emp.MonthlyLimit * 100
	}

	out := &UsageAnalytics{
		EmployeeID:        employeeID,
		EmployeeName:      emp.FullName,
		Department:        emp.Department,
		Period:            Period{StartDate: start, EndDate: end},
		TotalOrders:       len(orders),
		TotalSpent:        totalSpent,
		DailyAverage:      dailyAverage,
		WeeklyAverage:     dailyAverage * 7,
		MonthlyAverage:    monthlyAverage,
		DailyBreakdown:    daily,
		MealTypeBreakdown: meals,
		SpendingTrend:     trend,
		LimitUtilization:  util,
		Alerts:            s.usageAlerts(emp, dailyAverage, util),
	}
	if len(orders) > 0 {
		out.AverageOrderValue = totalSpent / float64(len(orders))
	}
	return out, nil
}

// DepartmentUsageAnalytics derives the usage report for one department
// of an account over a date range.
func (s *Service) DepartmentUsageAnalytics(ctx context.Context, accountID int64, department string, start, end time.Time) (*DepartmentAnalytics, error) {
	start, end = s.defaultPeriod(start, end)

	key, err := s.cache.BuildKey(ctx, "corporate", "department", strconv.FormatInt(accountID, 10), department,
		start.UTC().Format("2006-01-02"), end.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	var out DepartmentAnalytics
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.computeDepartmentUsage(accountID, department, start, end)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) computeDepartmentUsage(accountID int64, department string, start, end time.Time) (*DepartmentAnalytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var employees []Employee
	for _, e := range s.employeesLocked(accountID) {
		if e.Department == department {
			employees = append(employees, e)
		}
	}
	if len(employees) == 0 {
		return nil, ErrDepartmentNotFound
	}

	inDept := make(map[int64]bool, len(employees))
	for _, e := range employees {
		inDept[e.ID] = true
	}

	var orders []Order
	for _, o := range s.orders {
		if inDept[o.EmployeeID] && !o.OrderDate.Before(start) && !o.OrderDate.After(end) {
			orders = append(orders, o)
		}
	}

	var totalSpent float64
	for _, o := range orders {
		totalSpent += o.Total
	}

	spenders := make([]TopSpender, 0, len(employees))
	for _, e := range employees {
		spender := TopSpender{EmployeeID: e.ID, EmployeeName: e.FullName}
		for _, o := range orders {
			if o.EmployeeID == e.ID {
				spender.TotalSpent += o.Total
				spender.Orders++
			}
		}
		spenders = append(spenders, spender)
	}
	sortTopSpenders(spenders)
	if len(spenders) > 5 {
		spenders = spenders[:5]
	}

	out := &DepartmentAnalytics{
		Department:         department,
		AccountID:          accountID,
		Period:             Period{StartDate: start, EndDate: end},
		EmployeeCount:      len(employees),
		TotalOrders:        len(orders),
		TotalSpent:         totalSpent,
		AveragePerEmployee: totalSpent / float64(len(employees)),
		TopSpenders:        spenders,
		SpendingTrend:      spendingTrend(dailyBreakdown(orders, start, end)),
	}
	if len(orders) > 0 {
		out.AverageOrderValue = totalSpent / float64(len(orders))
	}
	return out, nil
}

// Overview aggregates headline figures across all accounts, or one
// account when accountID is non-zero.
func (s *Service) Overview(accountID int64) OverviewAnalytics {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := s.accounts
	if accountID != 0 {
		accounts = nil
		if acc := s.findAccount(accountID); acc != nil {
			accounts = []Account{*acc}
		}
	}

	orders := s.ordersLocked(accountID, time.Time{}, time.Time{})
	out := OverviewAnalytics{
		TotalAccounts:  len(accounts),
		TotalEmployees: len(s.employeesLocked(accountID)),
		TotalOrders:    len(orders),
	}
	for _, a := range accounts {
		if a.Status == AccountActive {
			out.ActiveAccounts++
		}
		out.OutstandingBalance += a.CurrentBalance
	}
	for _, o := range orders {
		out.TotalRevenue += o.Total
	}
	if len(orders) > 0 {
		out.AverageOrderValue = out.TotalRevenue / float64(len(orders))
	}
	return out
}

// Summary builds the account-level dashboard payload: workforce counts,
// spend, invoice status counts, credit utilization, per-department
// analytics and the ten most recent orders.
func (s *Service) Summary(ctx context.Context, accountID int64) (*AccountSummary, error) {
	s.mu.Lock()
	acc := s.findAccount(accountID)
	if acc == nil {
		s.mu.Unlock()
		return nil, ErrAccountNotFound
	}
	account := *acc
	employees := s.employeesLocked(accountID)
	orders := s.ordersLocked(accountID, time.Time{}, time.Time{})
	invoices := s.invoicesLocked(accountID)
	nowAt := s.clock()
	s.mu.Unlock()

	monthStart := time.Date(nowAt.Year(), nowAt.Month(), 1, 0, 0, 0, 0, nowAt.Location())

	summary := &AccountSummary{Account: account}

	departments := map[string]bool{}
	for _, e := range employees {
		departments[e.Department] = true
		summary.Employees.Total++
		if e.Status == EmployeeActive {
			summary.Employees.Active++
		}
	}
	summary.Employees.Departments = len(departments)

	for _, o := range orders {
		summary.Spending.AllTime += o.Total
		summary.Spending.TotalOrders++
		if !o.OrderDate.Before(monthStart) {
			summary.Spending.CurrentMonth += o.Total
			summary.Spending.MonthlyOrders++
		}
	}
	if summary.Spending.TotalOrders > 0 {
		summary.Spending.AverageOrderValue = summary.Spending.AllTime / float64(summary.Spending.TotalOrders)
	}

	for _, inv := range invoices {
		summary.Invoices.Total++
		switch inv.Status {
		case InvoiceSent:
			summary.Invoices.Pending++
			summary.Invoices.TotalOutstanding += inv.Summary.Total
		case InvoiceOverdue:
			summary.Invoices.Overdue++
			summary.Invoices.TotalOutstanding += inv.Summary.Total
		case InvoicePaid:
			summary.Invoices.Paid++
		}
	}

	summary.CreditStatus = CreditStatus{
		Limit:     account.CreditLimit,
		Used:      account.CurrentBalance,
		Available: account.CreditLimit - account.CurrentBalance,
	}
	if account.CreditLimit > 0 {
		summary.CreditStatus.UtilizationPercentage = account.CurrentBalance / account.CreditLimit * 100
	}

	for dept := range departments {
		da, err := s.DepartmentUsageAnalytics(ctx, accountID, dept, time.Time{}, time.Time{})
		if err != nil {
			continue
		}
		summary.DepartmentAnalytics = append(summary.DepartmentAnalytics, *da)
	}

	// orders are already newest first
	recent := orders
	if len(recent) > 10 {
		recent = recent[:10]
	}
	summary.RecentActivity = recent

	return summary, nil
}

func (s *Service) defaultPeriod(start, end time.Time) (time.Time, time.Time) {
	nowAt := s.clock()
	if end.IsZero() {
		end = nowAt
	}
	if start.IsZero() {
		start = end.Add(-30 * 24 * time.Hour)
	}
	return start, end
}

func (s *Service) usageAlerts(emp *Employee, dailyAverage float64, util LimitUtilization) []UsageAlert {
	alerts := []UsageAlert{}
	nowAt := s.clock()

	if util.Daily > 80 {
		severity := AlertMedium
		if util.Daily > 95 {
			severity = AlertHigh
		}
		alerts = append(alerts, UsageAlert{
			Type:     AlertApproachingLimit,
			Message:  fmt.Sprintf("Daily spending is %.1f%% of limit", util.Daily),
			Severity: severity,
			Date:     nowAt,
		})
	}
	if util.Monthly > 80 {
		severity := AlertMedium
		if util.Monthly > 95 {
			severity = AlertHigh
		}
		alerts = append(alerts, UsageAlert{
			Type:     AlertApproachingLimit,
			Message:  fmt.Sprintf("Monthly spending is %.1f%% of limit", util.Monthly),
			Severity: severity,
			Date:     nowAt,
		})
	}
	if emp.DailyLimit > 0 && dailyAverage > emp.DailyLimit*1.5 {
		alerts = append(alerts, UsageAlert{
			Type:     AlertUnusualSpending,
			Message:  "Unusually high daily spending detected",
			Severity: AlertHigh,
			Date:     nowAt,
		})
	}
	return alerts
}

// dailyBreakdown buckets orders per calendar day across the range,
// zero-filling days with no orders. Days key on the UTC date.
func dailyBreakdown(orders []Order, start, end time.Time) []DailyBucket {
	var out []DailyBucket
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		date := current.UTC().Format("2006-01-02")
		bucket := DailyBucket{Date: date}
		for _, o := range orders {
			if o.OrderDate.UTC().Format("2006-01-02") == date {
				bucket.Orders++
				bucket.Amount += o.Total
			}
		}
		out = append(out, bucket)
	}
	return out
}

func mealTypeBreakdown(orders []Order) []MealTypeShare {
	byType := make(map[MealType]*MealTypeShare, len(MealTypes))
	out := make([]MealTypeShare, 0, len(MealTypes))
	var total float64
	for _, mt := range MealTypes {
		byType[mt] = &MealTypeShare{MealType: mt}
	}
	for _, o := range orders {
		if share, ok := byType[o.MealType]; ok {
			share.Orders++
			share.Amount += o.Total
		}
		total += o.Total
	}
	for _, mt := range MealTypes {
		share := *byType[mt]
		if total > 0 {
			share.Percentage = share.Amount / total * 100
		}
		out = append(out, share)
	}
	return out
}

// spendingTrend compares the first seven days of the range against the
// last seven, with a ten percent band counting as stable.
func spendingTrend(daily []DailyBucket) SpendingTrend {
	if len(daily) < 7 {
		return TrendStable
	}
	var firstWeek, lastWeek float64
	for _, d := range daily[:7] {
		firstWeek += d.Amount
	}
	for _, d := range daily[len(daily)-7:] {
		lastWeek += d.Amount
	}
	change := (lastWeek - firstWeek) / math.Max(firstWeek, 1) * 100
	switch {
	case change > 10:
		return TrendIncreasing
	case change < -10:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func sortTopSpenders(spenders []TopSpender) {
	sort.SliceStable(spenders, func(i, j int) bool {
		return spenders[i].TotalSpent > spenders[j].TotalSpent
	})
}

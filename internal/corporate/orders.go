package corporate

import (
	"context"
	"sort"
	"time"

	"github.com/jinzhu/now"
)

// Orders returns orders, newest first, optionally restricted to one
// account and/or a date range. Zero times disable the range filter.
func (s *Service) Orders(accountID int64, from, to time.Time) []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ordersLocked(accountID, from, to)
}

func (s *Service) ordersLocked(accountID int64, from, to time.Time) []Order {
	var out []Order
	for _, o := range s.orders {
		if accountID != 0 && o.AccountID != accountID {
			continue
		}
		if !from.IsZero() && !to.IsZero() {
			if o.OrderDate.Before(from) || o.OrderDate.After(to) {
				continue
			}
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return out
}

// CreateOrder appends a billed transaction and increases the owning
// account's balance by the order total. Unlike the caller-trusting model
// this replaced, credit and employee spending limits are enforced here
// as preconditions; a rejected order mutates nothing.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ord, err := s.createOrderLocked(ctx, req)
	if err != nil {
		return nil, err
	}
	out := *ord
	return &out, nil
}

func (s *Service) createOrderLocked(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	acc := s.findAccount(req.AccountID)
	if acc == nil {
		return nil, ErrAccountNotFound
	}
	emp := s.findEmployee(req.EmployeeID)
	if emp == nil {
		return nil, ErrEmployeeNotFound
	}

	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = s.clock()
	}

	if err := s.checkLimits(acc, emp, orderDate, req.Total); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = OrderPending
	}

	items := make([]OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, OrderItem{
			ID:         it.ID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}

	ord := Order{
		ID:            s.allocOrderID(),
		OrderNumber:   req.OrderNumber,
		AccountID:     req.AccountID,
		EmployeeID:    req.EmployeeID,
		EmployeeName:  emp.FullName,
		Department:    emp.Department,
		Items:         items,
		Subtotal:      req.Subtotal,
		Tax:           req.Tax,
		ServiceCharge: req.ServiceCharge,
		Total:         req.Total,
		OrderDate:     orderDate,
		MealType:      req.MealType,
		Notes:         req.Notes,
		ApprovedBy:    req.ApprovedBy,
		Status:        status,
	}
	s.orders = append(s.orders, ord)

	acc.CurrentBalance += req.Total
	acc.UpdatedAt = s.clock()

	s.bumpAnalytics(ctx)
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return &s.orders[len(s.orders)-1], nil
}

// checkLimits validates an order against the account credit limit and
// the employee's daily/monthly limits. Existing non-cancelled orders on
// the same calendar day and month count toward the employee limits.
func (s *Service) checkLimits(acc *Account, emp *Employee, orderDate time.Time, total float64) error {
	if acc.CreditLimit > 0 && acc.CurrentBalance+total > acc.CreditLimit {
		return ErrCreditLimitExceeded
	}

	day := now.New(orderDate)
	dayStart, dayEnd := day.BeginningOfDay(), day.EndOfDay()
	monthStart, monthEnd := day.BeginningOfMonth(), day.EndOfMonth()

	var daySpent, monthSpent float64
	for _, o := range s.orders {
		if o.EmployeeID != emp.ID || o.Status == OrderCancelled {
			continue
		}
		if !o.OrderDate.Before(monthStart) && !o.OrderDate.After(monthEnd) {
			monthSpent += o.Total
			if !o.OrderDate.Before(dayStart) && !o.OrderDate.After(dayEnd) {
				daySpent += o.Total
			}
		}
	}

	if emp.DailyLimit > 0 && daySpent+total > emp.DailyLimit {
		return ErrEmployeeDailyLimitExceeded
	}
	if emp.MonthlyLimit > 0 && monthSpent+total > emp.MonthlyLimit {
		return ErrEmployeeMonthlyLimitExceeded
	}
	return nil
}

// UpdateOrderStatus transitions an order. Orders stay immutable apart
// from this status field.
func (s *Service) UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		s.orders[i].Status = status
		s.bumpAnalytics(ctx)
		if err := s.persist(ctx); err != nil {
			return nil, err
		}
		out := s.orders[i]
		return &out, nil
	}
	return nil, ErrOrderNotFound
}

package corporate

import (
	"context"
	"fmt"
	"time"
)

// seedSampleData installs the fixed demo book: one corporate account,
// two employees and two completed orders. Only runs when the store held
// no prior snapshot.
func (s *Service) seedSampleData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.createAccountLocked(ctx, CreateAccountRequest{
		CompanyName:      "Tanzania Development Bank",
		ContactPerson:    "John Mwalimu",
		Email:            "procurement@tdb.co.tz",
		Phone:            "+255 22 211 3175",
		Address:          "Dar es Salaam, Tanzania",
		TaxID:            "TIN-123456789",
		CreditLimit:      5000000,
		PaymentTermsDays: 30,
		Status:           AccountActive,
		BillingAddress:   "P.O. Box 9373, Dar es Salaam",
		AccountManager:   "Admin User",
	})
	if err != nil {
		return err
	}

	grace, err := s.createEmployeeLocked(ctx, CreateEmployeeRequest{
		AccountID:    acc.ID,
		EmployeeID:   "TDB001",
		FullName:     "Grace Mwangi",
		Email:        "grace.mwangi@tdb.co.tz",
		Phone:        "+255 712 345 678",
		Department:   "Finance",
		Position:     "Senior Accountant",
		DailyLimit:   50000,
		MonthlyLimit: 1000000,
		Status:       EmployeeActive,
	})
	if err != nil {
		return err
	}

	ahmed, err := s.createEmployeeLocked(ctx, CreateEmployeeRequest{
		AccountID:    acc.ID,
		EmployeeID:   "TDB002",
		FullName:     "Ahmed Hassan",
		Email:        "ahmed.hassan@tdb.co.tz",
		Phone:        "+255 713 456 789",
		Department:   "IT",
		Position:     "Software Developer",
		DailyLimit:   40000,
		MonthlyLimit: 800000,
		Status:       EmployeeActive,
	})
	if err != nil {
		return err
	}

	nowAt := s.clock()

	if _, err := s.createOrderLocked(ctx, CreateOrderRequest{
		OrderNumber: "ORD-001",
		AccountID:   acc.ID,
		EmployeeID:  grace.ID,
		Items: []CreateOrderItem{
			{ID: 1, Name: "Grilled Chicken with Rice", Quantity: 1, UnitPrice: 25000, TotalPrice: 25000},
			{ID: 2, Name: "Fresh Juice", Quantity: 1, UnitPrice: 8000, TotalPrice: 8000},
		},
		Subtotal:      33000,
		Tax:           4290,
		ServiceCharge: 660,
		Total:         37950,
		OrderDate:     nowAt.Add(-2 * time.Hour),
		MealType:      MealLunch,
		Notes:         "No spicy food",
		Status:        OrderCompleted,
	}); err != nil {
		return fmt.Errorf("seed order ORD-001: %w", err)
	}

	if _, err := s.createOrderLocked(ctx, CreateOrderRequest{
		OrderNumber: "ORD-002",
		AccountID:   acc.ID,
		EmployeeID:  ahmed.ID,
		Items: []CreateOrderItem{
			{ID: 3, Name: "Continental Breakfast", Quantity: 1, UnitPrice: 15000, TotalPrice: 15000},
			{ID: 4, Name: "Coffee", Quantity: 2, UnitPrice: 5000, TotalPrice: 10000},
		},
		Subtotal:      25000,
		Tax:           3250,
		ServiceCharge: 500,
		Total:         28750,
		OrderDate:     nowAt.Add(-4 * time.Hour),
		MealType:      MealBreakfast,
		Notes:         "Extra sugar for coffee",
		Status:        OrderCompleted,
	}); err != nil {
		return fmt.Errorf("seed order ORD-002: %w", err)
	}

	return nil
}

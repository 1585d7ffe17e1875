package corporate

import "errors"

var (
	// ErrAccountNotFound indicates an unknown account id.
	ErrAccountNotFound = errors.New("corporate account not found")
	// ErrEmployeeNotFound indicates an unknown employee id.
	ErrEmployeeNotFound = errors.New("corporate employee not found")
	// ErrOrderNotFound indicates an unknown order id.
	ErrOrderNotFound = errors.New("corporate order not found")
	// ErrInvoiceNotFound indicates an unknown invoice id.
	ErrInvoiceNotFound = errors.New("corporate invoice not found")
	// ErrNotificationNotFound indicates an unknown notification id.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrCreditLimitExceeded rejects an order that would push the account
	// balance past its credit limit.
	ErrCreditLimitExceeded = errors.New("account credit limit exceeded")
	// ErrEmployeeDailyLimitExceeded rejects an order that would push the
	// employee past their per-day spending limit.
	ErrEmployeeDailyLimitExceeded = errors.New("employee daily limit exceeded")
	// ErrEmployeeMonthlyLimitExceeded rejects an order that would push the
	// employee past their per-month spending limit.
	ErrEmployeeMonthlyLimitExceeded = errors.New("employee monthly limit exceeded")
)

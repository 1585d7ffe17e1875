// Package corporate implements the restaurant's corporate billing
// ledger: accounts, employees, orders, monthly invoices, notifications
// and the analytics derived from them. Collections live in memory and
// are snapshotted whole to a key-value store after every mutation.
package corporate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smartdine/smartdine/internal/platform/kv"
)

// Snapshot keys. Each collection is one JSON-serialized blob, written as
// a full replace on every mutating call.
const (
	snapAccounts      = "corporate:accounts"
	snapEmployees     = "corporate:employees"
	snapOrders        = "corporate:orders"
	snapInvoices      = "corporate:invoices"
	snapNotifications = "corporate:notifications"
)

// Mailer enqueues transactional email delivery. Implementations run the
// actual send out of band; ledger mutations never wait on delivery.
type Mailer interface {
	EnqueueEmail(ctx context.Context, to []string, subject, body string) error
}

// ServiceConfig collects the dependencies of the ledger service.
type ServiceConfig struct {
	Logger *slog.Logger
	Store  kv.Store
	Cache  *AnalyticsCache
	Mailer Mailer
	// Clock overrides time.Now, used by tests.
	Clock func() time.Time
	// Seed installs the fixed sample records when no snapshot exists.
	Seed bool
}

// Service owns the ledger collections. All exported methods are safe for
// concurrent use; one mutex serialises every operation, matching the
// single-writer model the snapshot persistence requires.
type Service struct {
	logger *slog.Logger
	store  kv.Store
	cache  *AnalyticsCache
	mailer Mailer
	clock  func() time.Time

	mu            sync.Mutex
	accounts      []Account
	employees     []Employee
	orders        []Order
	invoices      []Invoice
	notifications []Notification

	nextAccountID      int64
	nextEmployeeID     int64
	nextOrderID        int64
	nextInvoiceID      int64
	nextNotificationID int64
}

// NewService loads snapshots from the store and builds the service.
// When the store holds no account snapshot and cfg.Seed is set, a fixed
// set of sample records is installed.
func NewService(ctx context.Context, cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("corporate: store required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	s := &Service{
		logger: logger,
		store:  cfg.Store,
		cache:  cfg.Cache,
		mailer: cfg.Mailer,
		clock:  clock,
	}

	seeded, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if !seeded && cfg.Seed {
		if err := s.seedSampleData(ctx); err != nil {
			return nil, fmt.Errorf("corporate: seed sample data: %w", err)
		}
	}
	return s, nil
}

// load restores all collections, reporting whether an account snapshot
// existed. Collections load concurrently; ID counters resume past the
// highest restored identifier.
func (s *Service) load(ctx context.Context) (bool, error) {
	var found bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := loadSnapshot(gctx, s.store, snapAccounts, &s.accounts)
		found = ok
		return err
	})
	g.Go(func() error {
		_, err := loadSnapshot(gctx, s.store, snapEmployees, &s.employees)
		return err
	})
	g.Go(func() error {
		_, err := loadSnapshot(gctx, s.store, snapOrders, &s.orders)
		return err
	})
	g.Go(func() error {
		_, err := loadSnapshot(gctx, s.store, snapInvoices, &s.invoices)
		return err
	})
	g.Go(func() error {
		_, err := loadSnapshot(gctx, s.store, snapNotifications, &s.notifications)
		return err
	})
	if err := g.Wait(); err != nil {
		return false, err
	}

	for _, a := range s.accounts {
		if a.ID >= s.nextAccountID {
			s.nextAccountID = a.ID + 1
		}
	}
	for _, e := range s.employees {
		if e.ID >= s.nextEmployeeID {
			s.nextEmployeeID = e.ID + 1
		}
	}
	for _, o := range s.orders {
		if o.ID >= s.nextOrderID {
			s.nextOrderID = o.ID + 1
		}
	}
	for _, inv := range s.invoices {
		if inv.ID >= s.nextInvoiceID {
			s.nextInvoiceID = inv.ID + 1
		}
	}
	for _, n := range s.notifications {
		if n.ID >= s.nextNotificationID {
			s.nextNotificationID = n.ID + 1
		}
	}
	return found, nil
}

func loadSnapshot[T any](ctx context.Context, store kv.Store, key string, dest *[]T) (bool, error) {
	data, err := store.Load(ctx, key)
	if errors.Is(err, kv.ErrNoSnapshot) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("corporate: load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("corporate: decode %s: %w", key, err)
	}
	return true, nil
}

// persist writes every collection back to the store. Callers hold s.mu.
func (s *Service) persist(ctx context.Context) error {
	snapshots := []struct {
		key   string
		value any
	}{
		{snapAccounts, s.accounts},
		{snapEmployees, s.employees},
		{snapOrders, s.orders},
		{snapInvoices, s.invoices},
		{snapNotifications, s.notifications},
	}
	encoded := make(map[string][]byte, len(snapshots))
	for _, snap := range snapshots {
		data, err := json.Marshal(snap.value)
		if err != nil {
			return fmt.Errorf("corporate: encode %s: %w", snap.key, err)
		}
		encoded[snap.key] = data
	}
	if batch, ok := s.store.(kv.BatchStore); ok {
		if err := batch.SaveAll(ctx, encoded); err != nil {
			return fmt.Errorf("corporate: save snapshots: %w", err)
		}
		return nil
	}
	for _, snap := range snapshots {
		if err := s.store.Save(ctx, snap.key, encoded[snap.key]); err != nil {
			return fmt.Errorf("corporate: save %s: %w", snap.key, err)
		}
	}
	return nil
}

func (s *Service) allocAccountID() int64 {
	if s.nextAccountID == 0 {
		s.nextAccountID = 1
	}
	id := s.nextAccountID
	s.nextAccountID++
	return id
}

func (s *Service) allocEmployeeID() int64 {
	if s.nextEmployeeID == 0 {
		s.nextEmployeeID = 1
	}
	id := s.nextEmployeeID
	s.nextEmployeeID++
	return id
}

func (s *Service) allocOrderID() int64 {
	if s.nextOrderID == 0 {
		s.nextOrderID = 1
	}
	id := s.nextOrderID
	s.nextOrderID++
	return id
}

func (s *Service) allocInvoiceID() int64 {
	if s.nextInvoiceID == 0 {
		s.nextInvoiceID = 1
	}
	id := s.nextInvoiceID
	s.nextInvoiceID++
	return id
}

func (s *Service) allocNotificationID() int64 {
	if s.nextNotificationID == 0 {
		s.nextNotificationID = 1
	}
	id := s.nextNotificationID
	s.nextNotificationID++
	return id
}

// bumpAnalytics invalidates cached analytics after a mutation that can
// change derived figures. Callers hold s.mu.
func (s *Service) bumpAnalytics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump analytics cache", slog.Any("error", err))
	}
}

// Accounts returns a copy of all corporate accounts.
func (s *Service) Accounts() []Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// Account returns one account by id.
func (s *Service) Account(id int64) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.findAccount(id)
	if acc == nil {
		return nil, ErrAccountNotFound
	}
	out := *acc
	return &out, nil
}

func (s *Service) findAccount(id int64) *Account {
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			return &s.accounts[i]
		}
	}
	return nil
}

// CreateAccount registers a new corporate account. Uniqueness of company
// name or email is the caller's responsibility.
func (s *Service) CreateAccount(ctx context.Context, req CreateAccountRequest) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, err := s.createAccountLocked(ctx, req)
	if err != nil {
		return nil, err
	}
	out := *acc
	return &out, nil
}

func (s *Service) createAccountLocked(ctx context.Context, req CreateAccountRequest) (*Account, error) {
	now := s.clock()
	status := req.Status
	if status == "" {
		status = AccountActive
	}
	contractStart := req.ContractStartDate
	if contractStart.IsZero() {
		contractStart = now
	}
	acc := Account{
		ID:                s.allocAccountID(),
		CompanyName:       req.CompanyName,
		ContactPerson:     req.ContactPerson,
		Email:             req.Email,
		Phone:             req.Phone,
		Address:           req.Address,
		TaxID:             req.TaxID,
		CreditLimit:       req.CreditLimit,
		CurrentBalance:    req.CurrentBalance,
		PaymentTermsDays:  req.PaymentTermsDays,
		Status:            status,
		ContractStartDate: contractStart,
		ContractEndDate:   req.ContractEndDate,
		BillingAddress:    req.BillingAddress,
		AccountManager:    req.AccountManager,
		Notes:             req.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.accounts = append(s.accounts, acc)
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return &s.accounts[len(s.accounts)-1], nil
}

// UpdateAccount merges the provided fields into an existing account.
func (s *Service) UpdateAccount(ctx context.Context, id int64, req UpdateAccountRequest) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.findAccount(id)
	if acc == nil {
		return nil, ErrAccountNotFound
	}
	if req.CompanyName != nil {
		acc.CompanyName = *req.CompanyName
	}
	if req.ContactPerson != nil {
		acc.ContactPerson = *req.ContactPerson
	}
	if req.Email != nil {
		acc.Email = *req.Email
	}
	if req.Phone != nil {
		acc.Phone = *req.Phone
	}
	if req.Address != nil {
		acc.Address = *req.Address
	}
	if req.TaxID != nil {
		acc.TaxID = *req.TaxID
	}
	if req.CreditLimit != nil {
		acc.CreditLimit = *req.CreditLimit
	}
	if req.PaymentTermsDays != nil {
		acc.PaymentTermsDays = *req.PaymentTermsDays
	}
	if req.Status != nil {
		acc.Status = *req.Status
	}
	if req.ContractEndDate != nil {
		acc.ContractEndDate = req.ContractEndDate
	}
	if req.BillingAddress != nil {
		acc.BillingAddress = *req.BillingAddress
	}
	if req.AccountManager != nil {
		acc.AccountManager = *req.AccountManager
	}
	if req.Notes != nil {
		acc.Notes = *req.Notes
	}
	acc.UpdatedAt = s.clock()
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	out := *acc
	return &out, nil
}

// Employees returns employees, restricted to one account when accountID
// is non-zero.
func (s *Service) Employees(accountID int64) []Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.employeesLocked(accountID)
}

func (s *Service) employeesLocked(accountID int64) []Employee {
	var out []Employee
	for _, e := range s.employees {
		if accountID != 0 && e.AccountID != accountID {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Employee returns one employee by id.
func (s *Service) Employee(id int64) (*Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emp := s.findEmployee(id)
	if emp == nil {
		return nil, ErrEmployeeNotFound
	}
	out := *emp
	return &out, nil
}

func (s *Service) findEmployee(id int64) *Employee {
	for i := range s.employees {
		if s.employees[i].ID == id {
			return &s.employees[i]
		}
	}
	return nil
}

// FindEmployeeByEmployeeID resolves an employee by the caller-supplied
// natural key used for duplicate detection during import.
func (s *Service) FindEmployeeByEmployeeID(employeeID string) (*Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emp := s.findEmployeeByNaturalKey(employeeID)
	if emp == nil {
		return nil, ErrEmployeeNotFound
	}
	out := *emp
	return &out, nil
}

func (s *Service) findEmployeeByNaturalKey(employeeID string) *Employee {
	for i := range s.employees {
		if s.employees[i].EmployeeID == employeeID {
			return &s.employees[i]
		}
	}
	return nil
}

// CreateEmployee registers an employee under an account.
func (s *Service) CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emp, err := s.createEmployeeLocked(ctx, req)
	if err != nil {
		return nil, err
	}
	out := *emp
	return &out, nil
}

func (s *Service) createEmployeeLocked(ctx context.Context, req CreateEmployeeRequest) (*Employee, error) {
	now := s.clock()
	status := req.Status
	if status == "" {
		status = EmployeeActive
	}
	emp := Employee{
		ID:           s.allocEmployeeID(),
		AccountID:    req.AccountID,
		EmployeeID:   req.EmployeeID,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Department:   req.Department,
		Position:     req.Position,
		DailyLimit:   req.DailyLimit,
		MonthlyLimit: req.MonthlyLimit,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.employees = append(s.employees, emp)
	s.bumpAnalytics(ctx)
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return &s.employees[len(s.employees)-1], nil
}

// UpdateEmployee merges the provided fields into an existing employee.
func (s *Service) UpdateEmployee(ctx context.Context, id int64, req UpdateEmployeeRequest) (*Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emp := s.findEmployee(id)
	if emp == nil {
		return nil, ErrEmployeeNotFound
	}
	if req.FullName != nil {
		emp.FullName = *req.FullName
	}
	if req.Email != nil {
		emp.Email = *req.Email
	}
	if req.Phone != nil {
		emp.Phone = *req.Phone
	}
	if req.Department != nil {
		emp.Department = *req.Department
	}
	if req.Position != nil {
		emp.Position = *req.Position
	}
	if req.DailyLimit != nil {
		emp.DailyLimit = *req.DailyLimit
	}
	if req.MonthlyLimit != nil {
		emp.MonthlyLimit = *req.MonthlyLimit
	}
	if req.Status != nil {
		emp.Status = *req.Status
	}
	emp.UpdatedAt = s.clock()
	s.bumpAnalytics(ctx)
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	out := *emp
	return &out, nil
}

// DeleteEmployee removes an employee outright when no order references
// them; otherwise the employee is deactivated so historical orders stay
// resolvable. The outcome tag tells callers which of the two happened.
func (s *Service) DeleteEmployee(ctx context.Context, id int64) (DeleteOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.employees {
		if s.employees[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return DeleteNotFound, nil
	}

	hasOrders := false
	for _, o := range s.orders {
		if o.EmployeeID == id {
			hasOrders = true
			break
		}
	}

	outcome := DeleteRemoved
	if hasOrders {
		s.employees[idx].Status = EmployeeInactive
		s.employees[idx].UpdatedAt = s.clock()
		outcome = DeleteDeactivated
	} else {
		s.employees = append(s.employees[:idx], s.employees[idx+1:]...)
	}

	s.bumpAnalytics(ctx)
	if err := s.persist(ctx); err != nil {
		return outcome, err
	}
	return outcome, nil
}

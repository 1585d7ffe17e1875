package corporate

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ImportError is one structured validation failure. Row numbers are
// 1-based and include the header row, so the first data row is row 2.
type ImportError struct {
	Row     int               `json:"row"`
	Field   string            `json:"field"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
}

// ImportDuplicate records a row skipped because its natural key already
// exists somewhere in the system.
type ImportDuplicate struct {
	Row              int      `json:"row"`
	EmployeeID       string   `json:"employee_id"`
	ExistingEmployee Employee `json:"existing_employee"`
}

// ImportResult enumerates everything that happened during one import.
type ImportResult struct {
	Success           bool              `json:"success"`
	TotalRows         int               `json:"total_rows"`
	SuccessfulImports int               `json:"successful_imports"`
	FailedImports     int               `json:"failed_imports"`
	Errors            []ImportError     `json:"errors"`
	Duplicates        []ImportDuplicate `json:"duplicates"`
	ImportedEmployees []Employee        `json:"imported_employees"`
}

const (
	defaultDailyLimit   = 50000
	defaultMonthlyLimit = 1000000
)

var (
	requiredImportHeaders = []string{"employeeid", "fullname", "email", "phone", "department", "position"}
	emailPattern          = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ImportEmployeesFromCSV parses comma-delimited employee rows and
// registers each valid, non-duplicate row under the account. Parsing is
// a naive comma split with no quoting or escaping support; field values
// containing commas are not supported. One notification summarising the
// outcome is emitted regardless of how many rows failed.
func (s *Service) ImportEmployeesFromCSV(ctx context.Context, accountID int64, csvData string) (*ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &ImportResult{
		Errors:            []ImportError{},
		Duplicates:        []ImportDuplicate{},
		ImportedEmployees: []Employee{},
	}

	trimmed := strings.TrimSpace(csvData)
	if trimmed == "" {
		result.Errors = append(result.Errors, ImportError{
			Row:     0,
			Field:   "general",
			Message: "CSV parsing error: empty input",
		})
		return result, nil
	}

	lines := strings.Split(strings.ReplaceAll(trimmed, "\r\n", "\n"), "\n")
	headers := splitRow(lines[0])
	for i := range headers {
		headers[i] = strings.ToLower(headers[i])
	}

	var missing []string
	for _, required := range requiredImportHeaders {
		if !contains(headers, required) {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		result.Errors = append(result.Errors, ImportError{
			Row:     1,
			Field:   "headers",
			Message: "Missing required headers: " + strings.Join(missing, ", "),
		})
		return result, nil
	}

	result.TotalRows = len(lines) - 1

	for i := 1; i < len(lines); i++ {
		rowNum := i + 1
		values := splitRow(lines[i])
		row := make(map[string]string, len(headers))
		for j, h := range headers {
			if j < len(values) {
				row[h] = values[j]
			} else {
				row[h] = ""
			}
		}

		rowErrors := validateImportRow(row, rowNum)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.FailedImports++
			continue
		}

		if existing := s.findEmployeeByNaturalKey(row["employeeid"]); existing != nil {
			result.Duplicates = append(result.Duplicates, ImportDuplicate{
				Row:              rowNum,
				EmployeeID:       row["employeeid"],
				ExistingEmployee: *existing,
			})
			result.FailedImports++
			continue
		}

		emp, err := s.createEmployeeLocked(ctx, CreateEmployeeRequest{
			AccountID:    accountID,
			EmployeeID:   row["employeeid"],
			FullName:     row["fullname"],
			Email:        row["email"],
			Phone:        row["phone"],
			Department:   row["department"],
			Position:     row["position"],
			DailyLimit:   parseLimit(row["dailylimit"], defaultDailyLimit),
			MonthlyLimit: parseLimit(row["monthlylimit"], defaultMonthlyLimit),
			Status:       parseEmployeeStatus(row["status"]),
		})
		if err != nil {
			result.Errors = append(result.Errors, ImportError{
				Row:     rowNum,
				Field:   "general",
				Message: fmt.Sprintf("Failed to create employee: %v", err),
				Data:    row,
			})
			result.FailedImports++
			continue
		}

		result.ImportedEmployees = append(result.ImportedEmployees, *emp)
		result.SuccessfulImports++
	}

	result.Success = result.SuccessfulImports > 0

	severity := SeveritySuccess
	if result.FailedImports > 0 {
		severity = SeverityWarning
	}
	recipient := ""
	if acc := s.findAccount(accountID); acc != nil {
		recipient = acc.Email
	}
	s.createNotificationLocked(ctx, CreateNotificationRequest{
		AccountID:  accountID,
		Type:       NotifyUsageReport,
		Title:      "Employee Import Completed",
		Message:    fmt.Sprintf("Imported %d employees successfully. %d failed.", result.SuccessfulImports, result.FailedImports),
		Severity:   severity,
		Recipients: []string{recipient},
	})
	if recipient != "" {
		s.enqueueEmail(ctx, []string{recipient},
			"Employee import completed",
			fmt.Sprintf("Imported %d employees successfully. %d failed.", result.SuccessfulImports, result.FailedImports))
	}
	if err := s.persist(ctx); err != nil {
		return nil, err
	}

	return result, nil
}

// CSVTemplate returns a header plus one example row matching the import
// format.
func CSVTemplate() string {
	header := "employeeId,fullName,email,phone,department,position,dailyLimit,monthlyLimit,status"
	sample := "EMP001,John Doe,john.doe@company.com,+255712345678,Finance,Accountant,50000,1000000,active"
	return header + "\n" + sample
}

func splitRow(line string) []string {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func validateImportRow(row map[string]string, rowNum int) []ImportError {
	var errs []ImportError
	add := func(field, message string) {
		errs = append(errs, ImportError{Row: rowNum, Field: field, Message: message, Data: row})
	}

	if row["employeeid"] == "" {
		add("employeeid", "Employee ID is required")
	}
	if row["fullname"] == "" {
		add("fullname", "Full name is required")
	}
	if row["email"] == "" {
		add("email", "Email is required")
	} else if !emailPattern.MatchString(row["email"]) {
		add("email", "Invalid email format")
	}
	if row["phone"] == "" {
		add("phone", "Phone is required")
	}
	if row["department"] == "" {
		add("department", "Department is required")
	}
	if row["position"] == "" {
		add("position", "Position is required")
	}
	return errs
}

// parseLimit treats unparseable or zero values as unset, falling back to
// the documented default.
func parseLimit(raw string, fallback float64) float64 {
	v, err := strconv.Atoi(raw)
	if err != nil || v == 0 {
		return fallback
	}
	return float64(v)
}

func parseEmployeeStatus(raw string) EmployeeStatus {
	switch EmployeeStatus(raw) {
	case EmployeeActive, EmployeeSuspended, EmployeeInactive:
		return EmployeeStatus(raw)
	default:
		return EmployeeActive
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

package corporate

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const importHeader = "employeeId,fullName,email,phone,department,position,dailyLimit,monthlyLimit,status"

func TestImportEmployeesFromCSV(t *testing.T) {
	env := newTestService(t)
	acc := mustCreateAccount(t, env.service, CreateAccountRequest{})

	csv := strings.Join([]string{
		importHeader,
		"KL001,Grace Mwangi,grace@kililogistics.co.tz,+255712000001,Finance,Accountant,60000,1200000,active",
		"KL002,Ahmed Hassan,ahmed@kililogistics.co.tz,+255712000002,IT,Developer,,,",
	}, "\n")

	result, err := env.service.ImportEmployeesFromCSV(context.Background(), acc.ID, csv)
	require.NoError(t, err)

	require.True(t, result.Success)
	require.Equal(t, 2, result.TotalRows)
	require.Equal(t, 2, result.SuccessfulImports)
	require.Equal(t, 0, result.FailedImports)
	require.Empty(t, result.Errors)
	require.Empty(t, result.Duplicates)
	require.Len(t, result.ImportedEmployees, 2)

	grace := result.ImportedEmployees[0]
	require.Equal(t, "KL001", grace.EmployeeID)
	require.Equal(t, 60000.0, grace.DailyLimit)
	require.Equal(t, 1200000.0, grace.MonthlyLimit)

	// blank limits fall back to the documented defaults
	ahmed := result.ImportedEmployees[1]
	require.Equal(t, 50000.0, ahmed.DailyLimit)
	require.Equal(t, 1000000.0, ahmed.MonthlyLimit)
	require.Equal(t, EmployeeActive, ahmed.Status)

	notifications := env.service.Notifications(acc.ID)
	last := notifications[len(notifications)-1]
	require.Equal(t, "Employee Import Completed", last.Title)
	require.Equal(t, SeveritySuccess, last.Severity)
}

func TestImportEmployeesEmptyInput(t *testing.T) {
	env := newTestService(t)
	acc := mustCreateAccount(t, env.service, CreateAccountRequest{})

	result, err := env.service.ImportEmployeesFromCSV(context.Background(), acc.ID, "   \n  ")
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	require.Equal(t, 0, result.Errors[0].Row)
	require.Equal(t, "general", result.Errors[0].Field)
}

func TestImportEmployeesMissingHeaders(t *testing.T) {
	env := newTestService(t)
	acc := mustCreateAccount(t, env.service, CreateAccountRequest{})

	csv := "employeeId,fullName\nKL001,Grace Mwangi"
	result, err := env.service.ImportEmployeesFromCSV(context.Background(), acc.ID, csv)
	require.NoError(t, err)

	require.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	require.Equal(t, 1, result.Errors[0].Row)
	require.Equal(t, "headers", result.Errors[0].Field)
	require.Contains(t, result.Errors[0].Message, "email")
	require.Contains(t, result.Errors[0].Message, "phone")
}

func TestImportEmployeesRowValidation(t *testing.T) {
	env := newTestService(t)
	acc := mustCreateAccount(t, env.service, CreateAccountRequest{})

	csv := strings.Join([]string{
		importHeader,
		"KL001,Grace Mwangi,grace@kililogistics.co.tz,+255712000001,Finance,Accountant,,,",
		",Missing Id,bad-email,,Finance,Accountant,,,",
	}, "\n")

	result, err := env.service.ImportEmployeesFromCSV(context.Background(), acc.ID, csv)
	require.NoError(t, err)

	require.True(t, result.Success)
	require.Equal(t, 1, result.SuccessfulImports)
	require.Equal(t, 1, result.FailedImports)
	require.NotEmpty(t, result.Errors)
	// data rows number from 2: row 1 is the header
	for _, e := range result.Errors {
		require.Equal(t, 3, e.Row)
	}
	fields := map[string]bool{}
	for _, e := range result.Errors {
		fields[e.Field] = true
	}
	require.True(t, fields["employeeid"])
	require.True(t, fields["email"])
	require.True(t, fields["phone"])

	notifications := env.service.Notifications(acc.ID)
	require.Equal(t, SeverityWarning, notifications[len(notifications)-1].Severity)
}

func TestImportEmployeesSkipsDuplicates(t *testing.T) {
	env := newTestService(t)
	acc := mustCreateAccount(t, env.service, CreateAccountRequest{})
	existing := mustCreateEmployee(t, env.service, acc.ID, "KL001", 0, 0)

	csv := strings.Join([]string{
		importHeader,
		"KL001,Grace Mwangi,grace@kililogistics.co.tz,+255712000001,Finance,Accountant,,,",
		"KL002,Ahmed Hassan,ahmed@kililogistics.co.tz,+255712000002,IT,Developer,,,",
	}, "\n")

	result, err := env.service.ImportEmployeesFromCSV(context.Background(), acc.ID, csv)
	require.NoError(t, err)

	require.Equal(t, 1, result.SuccessfulImports)
	require.Equal(t, 1, result.FailedImports)
	require.Len(t, result.Duplicates, 1)
	require.Equal(t, 2, result.Duplicates[0].Row)
	require.Equal(t, "KL001", result.Duplicates[0].EmployeeID)
	require.Equal(t, existing.ID, result.Duplicates[0].ExistingEmployee.ID)
}

func TestImportEmployeesHandlesCRLFAndCase(t *testing.T) {
	env := newTestService(t)
	acc := mustCreateAccount(t, env.service, CreateAccountRequest{})

	csv := "EMPLOYEEID,FULLNAME,EMAIL,PHONE,DEPARTMENT,POSITION\r\nKL001,Grace Mwangi,grace@kililogistics.co.tz,+255712000001,Finance,Accountant"
	result, err := env.service.ImportEmployeesFromCSV(context.Background(), acc.ID, csv)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 1, result.SuccessfulImports)
}

func TestCSVTemplate(t *testing.T) {
	tpl := CSVTemplate()
	lines := strings.Split(tpl, "\n")
	require.Len(t, lines, 2)
	require.Equal(t, importHeader, lines[0])
	require.Contains(t, lines[1], "EMP001")
}

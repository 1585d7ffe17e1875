package payments

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestProcessor() *Processor {
	p := NewProcessor(nil)
	p.clock = func() time.Time {
		return time.Date(2026, time.March, 16, 12, 0, 0, 0, time.UTC)
	}
	return p
}

func TestProcessCardPayment(t *testing.T) {
	p := newTestProcessor()
	receipt, err := p.Process(context.Background(), Request{Method: MethodCard, Amount: 66700})
	require.NoError(t, err)
	require.Equal(t, MethodCard, receipt.Method)
	require.Equal(t, 66700.0, receipt.Amount)
	require.Len(t, receipt.Reference, 8)
	require.Equal(t, receipt.Reference, strings.ToUpper(receipt.Reference))
	require.Equal(t, time.Date(2026, time.March, 16, 12, 0, 0, 0, time.UTC), receipt.ProcessedAt)
}

func TestProcessMobileMoneyRequiresPhone(t *testing.T) {
	p := newTestProcessor()
	_, err := p.Process(context.Background(), Request{Method: MethodMobileMoney, Amount: 5000})
	require.Error(t, err)

	receipt, err := p.Process(context.Background(), Request{
		Method: MethodMobileMoney,
		Amount: 5000,
		Phone:  "+255712000001",
	})
	require.NoError(t, err)
	require.Equal(t, MethodMobileMoney, receipt.Method)
}

func TestProcessRejectsNonPositiveAmounts(t *testing.T) {
	p := newTestProcessor()
	for _, amount := range []float64{0, -100} {
		_, err := p.Process(context.Background(), Request{Method: MethodCash, Amount: amount})
		require.Error(t, err)
	}
}

func TestProcessRejectsUnknownMethod(t *testing.T) {
	p := newTestProcessor()
	_, err := p.Process(context.Background(), Request{Method: "cheque", Amount: 100})
	require.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestReferencesAreUnique(t *testing.T) {
	p := newTestProcessor()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		receipt, err := p.Process(context.Background(), Request{Method: MethodCash, Amount: 100})
		require.NoError(t, err)
		require.False(t, seen[receipt.Reference])
		seen[receipt.Reference] = true
	}
}

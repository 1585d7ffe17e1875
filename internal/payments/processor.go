// Package payments simulates the settlement collaborator: mobile-money,
// card and cash flows that return a receipt on success. No real gateway
// is involved; the processor exists so invoice payment carries the same
// method/reference metadata a production integration would.
package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Method enumerates supported settlement channels.
type Method string

const (
	MethodMobileMoney Method = "mobile_money"
	MethodCard        Method = "card"
	MethodCash        Method = "cash"
)

// ErrUnsupportedMethod rejects settlement channels the processor does
// not know.
var ErrUnsupportedMethod = errors.New("payments: unsupported method")

// Request describes one settlement attempt.
type Request struct {
	Method Method
	Amount float64
	// Phone is required for mobile money, ignored otherwise.
	Phone string
}

// Receipt confirms a successful settlement.
type Receipt struct {
	Reference   string    `json:"reference"`
	Method      Method    `json:"method"`
	Amount      float64   `json:"amount"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Processor simulates the payment gateway.
type Processor struct {
	logger *slog.Logger
	clock  func() time.Time
}

// NewProcessor builds a Processor.
func NewProcessor(logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, clock: time.Now}
}

// Process settles a payment and returns its receipt. Mobile money
// requires a phone number; amounts must be positive.
func (p *Processor) Process(ctx context.Context, req Request) (*Receipt, error) {
	if req.Amount <= 0 {
		return nil, errors.New("payments: amount must be positive")
	}
	switch req.Method {
	case MethodCard, MethodCash:
	case MethodMobileMoney:
		if strings.TrimSpace(req.Phone) == "" {
			return nil, errors.New("payments: phone required for mobile money")
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, req.Method)
	}

	receipt := &Receipt{
		Reference:   strings.ToUpper(uuid.NewString()[:8]),
		Method:      req.Method,
		Amount:      req.Amount,
		ProcessedAt: p.clock(),
	}
	p.logger.Info("payment processed",
		slog.String("method", string(req.Method)),
		slog.String("reference", receipt.Reference),
		slog.Float64("amount", req.Amount))
	return receipt, nil
}

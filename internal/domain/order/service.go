package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/snsu-canteen/internal/domain/ledger"
)

// PlaceOrderRequest holds the input for placing an order. Items carry the
// cart snapshot lines. A client-computed total is deliberately absent from
// this type: the total is always derived server-side.
type PlaceOrderRequest struct {
	StudentID string
	Items     []Line
}

// PlaceOrderResult holds the created order and the balance remaining after
// the debit.
type PlaceOrderResult struct {
	Order   *Order
	Balance decimal.Decimal
}

// Service encapsulates order placement and transition business logic.
type Service struct {
	students ledger.Repository
	orders   Repository
}

// NewService creates an order Service with the required dependencies.
func NewService(students ledger.Repository, orders Repository) *Service {
	return &Service{
		students: students,
		orders:   orders,
	}
}

// PlaceOrder validates the cart snapshot, computes the total from the line
// prices, and creates the order atomically with the balance debit.
//
// Validation happens before any mutation; once it passes, the repository's
// CreateWithDebit is the single failure-atomicity boundary.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	total := decimal.Zero
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, &InvalidQuantityError{ItemID: line.ID}
		}
		if line.Price.IsNegative() {
			return nil, &InvalidPriceError{ItemID: line.ID}
		}
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	total = total.Round(2)

	// The name is denormalized onto the order from the account row, not
	// taken from the client. This also rejects unknown students before the
	// debit is attempted.
	st, err := s.students.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, ledger.ErrStudentNotFound) {
			return nil, ledger.ErrStudentNotFound
		}
		return nil, errors.Wrap(err, "get student")
	}

	o := &Order{
		StudentID:   st.ID,
		StudentName: st.Name,
		Total:       total,
		Items:       req.Items,
		Status:      StatusPending,
	}
	balance, err := s.orders.CreateWithDebit(ctx, o)
	if err != nil {
		return nil, err
	}

	return &PlaceOrderResult{Order: o, Balance: balance}, nil
}

// SetStatus drives a PENDING order to CONFIRMED or REFUNDED. A refund
// credits the order total back to the student atomically with the flip.
func (s *Service) SetStatus(ctx context.Context, id int64, to Status) (*Order, error) {
	if to != StatusConfirmed && to != StatusRefunded {
		return nil, errors.Errorf("status must be %s or %s", StatusConfirmed, StatusRefunded)
	}
	return s.orders.Transition(ctx, id, to)
}

// List returns all orders, newest first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// ListByStudent returns one student's orders, newest first.
func (s *Service) ListByStudent(ctx context.Context, studentID string) ([]Order, error) {
	return s.orders.ListByStudent(ctx, studentID)
}

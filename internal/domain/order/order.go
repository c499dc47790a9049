// Package order implements the order lifecycle: creation with an atomic
// balance debit, and one-shot transitions from PENDING to a terminal state.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusRefunded  Status = "REFUNDED"
)

// validNext maps each status to the set of allowed successors. Both terminal
// states are absorbing.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusRefunded: true},
	StatusConfirmed: {},
	StatusRefunded:  {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// Sentinel errors for order creation and transitions.
var (
	ErrEmptyItems          = errors.New("items required")
	ErrNotFound            = errors.New("order not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// InvalidQuantityError indicates a line with a non-positive quantity.
type InvalidQuantityError struct {
	ItemID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for item %s", e.ItemID)
}

// InvalidPriceError indicates a line with a negative price.
type InvalidPriceError struct {
	ItemID string
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("price must not be negative for item %s", e.ItemID)
}

// InvalidTransitionError indicates a transition attempt on an order that has
// already reached a terminal state. Current carries the existing status so
// callers can surface it.
type InvalidTransitionError struct {
	Current Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order is already %s", e.Current)
}

// Line is one entry of the frozen item snapshot stored inside an order.
// It is a value captured at creation time, deliberately distinct from the
// live catalog: later catalog edits or deletions never alter it.
type Line struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image,omitempty"`
}

// Order is a purchase record. Everything except status and updated_at is
// immutable once created.
type Order struct {
	ID          int64
	StudentID   string
	StudentName string
	Total       decimal.Decimal
	Items       []Line
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository defines persistence operations for orders.
//
// CreateWithDebit must execute the balance check, the debit, and the order
// insert as one atomic unit keyed on the student row: the conditional update
// `balance = balance - total WHERE balance >= total` is the only permitted
// shape, never a separate read-compare-write. It returns the balance after
// the debit and fills the order's ID and timestamps.
//
// Transition must flip the status conditioned on the row still being
// PENDING, and for REFUNDED credit the order total back to the student in
// the same transaction.
type Repository interface {
	CreateWithDebit(ctx context.Context, o *Order) (newBalance decimal.Decimal, err error)
	Transition(ctx context.Context, id int64, to Status) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	ListByStudent(ctx context.Context, studentID string) ([]Order, error)
}

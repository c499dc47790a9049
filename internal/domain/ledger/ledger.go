// Package ledger manages student accounts and their spendable balance.
//
// The balance is the single piece of shared financial state in the system.
// Every mutation goes through an atomic conditional update in the repository;
// nothing in this package (or outside it) reads a balance and writes a
// derived value back in a second statement.
package ledger

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for account operations.
var (
	ErrStudentNotFound = errors.New("student not found")
	ErrInvalidAmount   = errors.New("amount must be greater than 0")
	ErrEmailTaken      = errors.New("student already exists")
	ErrBadCredentials  = errors.New("invalid credentials")
)

// Student is an account holding a non-negative spendable balance.
//
// Password is stored as received. Credential handling is delegated to the
// surrounding deployment; this service only performs the lookup.
type Student struct {
	ID        string
	Email     string
	Password  string
	Name      string
	Balance   decimal.Decimal
	CreatedAt time.Time
}

// Credit records one balance top-up. IdempotencyKey is empty for
// non-deduplicated credits.
type Credit struct {
	ID             string
	StudentID      string
	Amount         decimal.Decimal
	IdempotencyKey string
	CreatedAt      time.Time
}

// Repository defines persistence operations for students and credits.
//
// AddCredit must apply the balance increment and insert the credit row in a
// single transaction. When the credit's idempotency key already exists it
// must skip the increment and report applied=false.
type Repository interface {
	Create(ctx context.Context, s *Student) error
	GetByID(ctx context.Context, id string) (*Student, error)
	GetByEmail(ctx context.Context, email string) (*Student, error)
	List(ctx context.Context) ([]Student, error)
	AddCredit(ctx context.Context, c *Credit) (applied bool, err error)
}

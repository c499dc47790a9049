package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/snsu-canteen/internal/domain/ledger"
	"github.com/xenking/snsu-canteen/internal/domain/order"
)

const (
	// The debit is one conditional statement: the balance check and the
	// decrement cannot interleave with a concurrent debit against the same
	// row. Zero affected rows means the student is missing or underfunded;
	// a follow-up existence probe disambiguates.
	debitBalanceSQL = `UPDATE students SET balance = balance - $1
		WHERE id = $2 AND balance >= $1 RETURNING balance`

	studentExistsSQL = `SELECT 1 FROM students WHERE id = $1`

	insertOrderSQL = `INSERT INTO orders (student_id, student_name, total_amount, items, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`

	// The flip is conditioned on the row still being PENDING so two
	// concurrent confirm/refund calls cannot both succeed.
	transitionOrderSQL = `UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING id, student_id, student_name, total_amount, items, status, created_at, updated_at`

	getOrderStatusSQL = `SELECT status FROM orders WHERE id = $1`

	listOrdersSQL = `SELECT id, student_id, student_name, total_amount, items, status, created_at, updated_at
		FROM orders ORDER BY created_at DESC`

	listOrdersByStudentSQL = `SELECT id, student_id, student_name, total_amount, items, status, created_at, updated_at
		FROM orders WHERE student_id = $1 ORDER BY created_at DESC`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateWithDebit debits the student's balance and inserts the order row in
// one transaction. On success it fills the order's ID and timestamps and
// returns the post-debit balance.
func (r *OrderRepository) CreateWithDebit(ctx context.Context, o *order.Order) (decimal.Decimal, error) {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return decimal.Zero, fmt.Errorf("marshaling order items: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("beginning order tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var balance decimal.Decimal
	err = tx.QueryRow(ctx, debitBalanceSQL, o.Total, o.StudentID).Scan(&balance)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("debiting student %q: %w", o.StudentID, err)
		}
		var exists int
		probeErr := tx.QueryRow(ctx, studentExistsSQL, o.StudentID).Scan(&exists)
		if errors.Is(probeErr, pgx.ErrNoRows) {
			return decimal.Zero, ledger.ErrStudentNotFound
		}
		if probeErr != nil {
			return decimal.Zero, fmt.Errorf("checking student %q: %w", o.StudentID, probeErr)
		}
		return decimal.Zero, order.ErrInsufficientBalance
	}

	err = tx.QueryRow(ctx, insertOrderSQL,
		o.StudentID, o.StudentName, o.Total, itemsJSON, string(o.Status),
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return decimal.Zero, fmt.Errorf("inserting order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("committing order tx: %w", err)
	}
	return balance, nil
}

// Transition flips a PENDING order to the given terminal status. REFUNDED
// additionally credits the order total back to the student; flip and credit
// commit together or not at all.
func (r *OrderRepository) Transition(ctx context.Context, id int64, to order.Status) (*order.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transition tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, transitionOrderSQL, id, string(to))
	if err != nil {
		return nil, fmt.Errorf("transitioning order %d: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transitioning order %d: %w", id, err)
		}
		// Not PENDING or not there; report which.
		var current string
		probeErr := tx.QueryRow(ctx, getOrderStatusSQL, id).Scan(&current)
		if errors.Is(probeErr, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		if probeErr != nil {
			return nil, fmt.Errorf("checking order %d: %w", id, probeErr)
		}
		return nil, &order.InvalidTransitionError{Current: order.Status(current)}
	}

	if to == order.StatusRefunded {
		tag, err := tx.Exec(ctx, creditBalanceSQL, o.Total, o.StudentID)
		if err != nil {
			return nil, fmt.Errorf("refunding student %q: %w", o.StudentID, err)
		}
		if tag.RowsAffected() == 0 {
			return nil, ledger.ErrStudentNotFound
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transition tx: %w", err)
	}
	return &o, nil
}

// List returns all orders, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ListByStudent returns one student's orders, newest first.
func (r *OrderRepository) ListByStudent(ctx context.Context, studentID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByStudentSQL, studentID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for student %q: %w", studentID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		items  []byte
		status string
	)
	err := row.Scan(
		&o.ID, &o.StudentID, &o.StudentName, &o.Total,
		&items, &status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	o.Status = order.Status(status)
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}
	return o, nil
}

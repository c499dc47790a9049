package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/snsu-canteen/internal/domain/ledger"
)

const (
	createStudentSQL = `INSERT INTO students (id, email, password, name, balance)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	getStudentByIDSQL = `SELECT id, email, password, name, balance, created_at
		FROM students WHERE id = $1`

	getStudentByEmailSQL = `SELECT id, email, password, name, balance, created_at
		FROM students WHERE email = $1`

	listStudentsSQL = `SELECT id, email, password, name, balance, created_at
		FROM students ORDER BY created_at DESC`

	insertCreditSQL = `INSERT INTO credits (id, student_id, amount, idempotency_key)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		ON CONFLICT (idempotency_key) DO NOTHING`

	// Balance mutations are single atomic statements keyed on the student
	// row; the non-negative invariant is additionally backed by the CHECK
	// constraint in the schema.
	creditBalanceSQL = `UPDATE students SET balance = balance + $1 WHERE id = $2`
)

// Postgres error codes used to translate constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var _ ledger.Repository = (*StudentRepository)(nil)

// StudentRepository implements ledger.Repository backed by PostgreSQL.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository returns a StudentRepository that uses the given pool.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// Create persists a new student. It returns ledger.ErrEmailTaken when the
// email is already registered.
func (r *StudentRepository) Create(ctx context.Context, s *ledger.Student) error {
	err := r.pool.QueryRow(ctx, createStudentSQL,
		s.ID, s.Email, s.Password, s.Name, s.Balance,
	).Scan(&s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ledger.ErrEmailTaken
		}
		return fmt.Errorf("creating student %q: %w", s.ID, err)
	}
	return nil
}

// GetByID returns a single student by id.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*ledger.Student, error) {
	rows, err := r.pool.Query(ctx, getStudentByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting student %q: %w", id, err)
	}
	return collectStudent(rows, id)
}

// GetByEmail returns a single student by email.
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*ledger.Student, error) {
	rows, err := r.pool.Query(ctx, getStudentByEmailSQL, email)
	if err != nil {
		return nil, fmt.Errorf("getting student by email: %w", err)
	}
	return collectStudent(rows, email)
}

// List returns all students, newest first.
func (r *StudentRepository) List(ctx context.Context) ([]ledger.Student, error) {
	rows, err := r.pool.Query(ctx, listStudentsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	return pgx.CollectRows(rows, scanStudent)
}

// AddCredit inserts the credit audit row and increments the balance in one
// transaction. A duplicate idempotency key makes the whole call a no-op with
// applied=false. An unknown student yields ledger.ErrStudentNotFound.
func (r *StudentRepository) AddCredit(ctx context.Context, c *ledger.Credit) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning credit tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, insertCreditSQL, c.ID, c.StudentID, c.Amount, c.IdempotencyKey)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return false, ledger.ErrStudentNotFound
		}
		return false, fmt.Errorf("inserting credit %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		// Retried idempotency key: the original credit already applied.
		return false, nil
	}

	tag, err = tx.Exec(ctx, creditBalanceSQL, c.Amount, c.StudentID)
	if err != nil {
		return false, fmt.Errorf("crediting student %q: %w", c.StudentID, err)
	}
	if tag.RowsAffected() == 0 {
		return false, ledger.ErrStudentNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing credit tx: %w", err)
	}
	return true, nil
}

func collectStudent(rows pgx.Rows, key string) (*ledger.Student, error) {
	s, err := pgx.CollectExactlyOneRow(rows, scanStudent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrStudentNotFound
		}
		return nil, fmt.Errorf("getting student %q: %w", key, err)
	}
	return &s, nil
}

func scanStudent(row pgx.CollectableRow) (ledger.Student, error) {
	var s ledger.Student
	err := row.Scan(&s.ID, &s.Email, &s.Password, &s.Name, &s.Balance, &s.CreatedAt)
	return s, err
}

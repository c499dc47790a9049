package ledger

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service encapsulates account business logic on top of the repository.
type Service struct {
	repo Repository
}

// NewService creates a ledger Service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new student account with a zero balance. The display
// name is derived from the local part of the email address.
func (s *Service) Register(ctx context.Context, email, password string) (*Student, error) {
	if email == "" || password == "" {
		return nil, errors.New("email and password required")
	}

	name := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		name = email[:i]
	}

	st := &Student{
		ID:       uuid.New().String(),
		Email:    email,
		Password: password,
		Name:     name,
		Balance:  decimal.Zero,
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Login returns the student matching the given credentials, or
// ErrBadCredentials. The comparison is a plain lookup; see the Student doc.
func (s *Service) Login(ctx context.Context, email, password string) (*Student, error) {
	if email == "" || password == "" {
		return nil, ErrBadCredentials
	}
	st, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, errors.Wrap(err, "lookup student")
	}
	if st.Password != password {
		return nil, ErrBadCredentials
	}
	return st, nil
}

// CreditAccount increases a student's balance by amount.
//
// Each call is a distinct credit unless idempotencyKey is non-empty: a
// retried key is detected by the repository and the increment is skipped,
// so a single credit intent survives blind client retries.
func (s *Service) CreditAccount(ctx context.Context, studentID string, amount decimal.Decimal, idempotencyKey string) (*Student, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	c := &Credit{
		ID:             uuid.New().String(),
		StudentID:      studentID,
		Amount:         amount,
		IdempotencyKey: idempotencyKey,
	}
	if _, err := s.repo.AddCredit(ctx, c); err != nil {
		return nil, err
	}

	st, err := s.repo.GetByID(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "reload student")
	}
	return st, nil
}

// GetStudent returns a single student snapshot.
func (s *Service) GetStudent(ctx context.Context, id string) (*Student, error) {
	return s.repo.GetByID(ctx, id)
}

// ListStudents returns every student account, newest first.
func (s *Service) ListStudents(ctx context.Context) ([]Student, error) {
	return s.repo.List(ctx)
}

package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/snsu-canteen/internal/domain/ledger"
)

// studentResponse never carries the password field.
type studentResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

func studentToResponse(s *ledger.Student) studentResponse {
	return studentResponse{
		ID:        s.ID,
		Email:     s.Email,
		Name:      s.Name,
		Balance:   s.Balance.InexactFloat64(),
		CreatedAt: s.CreatedAt,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type creditRequest struct {
	Amount float64 `json:"amount"`
}

func (h *Handler) registerStudent(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	st, err := h.accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"student": studentToResponse(st)})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	st, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"student": studentToResponse(st)})
}

func (h *Handler) listStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.accounts.ListStudents(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]studentResponse, len(students))
	for i := range students {
		out[i] = studentToResponse(&students[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"students": out})
}

func (h *Handler) getStudent(w http.ResponseWriter, r *http.Request) {
	st, err := h.accounts.GetStudent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"student": studentToResponse(st)})
}

// creditStudent tops up a balance. The optional Idempotency-Key header makes
// retries of the same credit intent safe; without it every call is a new
// credit.
func (h *Handler) creditStudent(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	amount := decimal.NewFromFloat(req.Amount).Round(2)
	st, err := h.accounts.CreditAccount(
		r.Context(),
		chi.URLParam(r, "id"),
		amount,
		r.Header.Get("Idempotency-Key"),
	)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"student": studentToResponse(st)})
}

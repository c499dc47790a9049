// Package handler exposes the canteen API over HTTP. Handlers decode and
// validate requests, delegate to the domain services, and map domain errors
// to status codes. Admin-only routes are guarded by the API key middleware
// in security.go.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/snsu-canteen/internal/domain/catalog"
	"github.com/xenking/snsu-canteen/internal/domain/ledger"
	"github.com/xenking/snsu-canteen/internal/domain/order"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in responses. When
	// empty, image paths are returned as stored.
	ImageBaseURL string
	// UploadDir is the directory where uploaded images are written.
	UploadDir string
}

// Handler wires the domain services to the HTTP surface.
type Handler struct {
	items        catalog.ItemRepository
	combos       catalog.ComboRepository
	accounts     *ledger.Service
	orders       *order.Service
	imageBaseURL string
	uploadDir    string
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	items catalog.ItemRepository,
	combos catalog.ComboRepository,
	accounts *ledger.Service,
	orders *order.Service,
) *Handler {
	return &Handler{
		items:        items,
		combos:       combos,
		accounts:     accounts,
		orders:       orders,
		imageBaseURL: cfg.ImageBaseURL,
		uploadDir:    cfg.UploadDir,
	}
}

// Routes builds the API router. The admin middleware wraps every route that
// mutates the catalog, credits balances, or drives order transitions.
func (h *Handler) Routes(admin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "snsu-canteen-backend"})
	})

	r.Get("/items", h.listItems)
	r.Get("/combos", h.listCombos)
	r.Post("/students", h.registerStudent)
	r.Post("/login", h.login)
	r.Get("/students/{id}", h.getStudent)
	r.Post("/orders", h.placeOrder)
	r.Get("/orders/student/{studentId}", h.listStudentOrders)

	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Post("/items", h.createItem)
		r.Patch("/items/{id}", h.updateItem)
		r.Delete("/items/{id}", h.deleteItem)
		r.Post("/combos", h.createCombo)
		r.Patch("/combos/{id}", h.updateCombo)
		r.Delete("/combos/{id}", h.deleteCombo)
		r.Post("/upload", h.uploadImage)
		r.Get("/students", h.listStudents)
		r.Post("/students/{id}/credit", h.creditStudent)
		r.Get("/orders", h.listOrders)
		r.Patch("/orders/{id}/status", h.updateOrderStatus)
	})

	return r
}

// errorResponse is the JSON error body shape shared by all endpoints.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Code: code, Message: message})
}

// writeDomainError maps domain errors to HTTP status codes. Unrecognized
// errors are logged and surfaced as a generic 500: storage failures on the
// money path must never be silently swallowed.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		iqErr *order.InvalidQuantityError
		ipErr *order.InvalidPriceError
		itErr *order.InvalidTransitionError
	)
	switch {
	case errors.Is(err, catalog.ErrInvalidInput),
		errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.As(err, &iqErr),
		errors.As(err, &ipErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrBadCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, catalog.ErrItemNotFound),
		errors.Is(err, catalog.ErrComboNotFound),
		errors.Is(err, ledger.ErrStudentNotFound),
		errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &itErr):
		writeError(w, http.StatusConflict, itErr.Error())
	case errors.Is(err, order.ErrInsufficientBalance):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server error")
	}
}

// imageURL prefixes a stored image reference with the configured base URL.
// Empty references pass through unchanged.
func (h *Handler) imageURL(ref string) string {
	if ref == "" || h.imageBaseURL == "" {
		return ref
	}
	return h.imageBaseURL + ref
}

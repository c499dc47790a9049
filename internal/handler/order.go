package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/snsu-canteen/internal/domain/order"
)

type orderLineRequest struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

// placeOrderRequest carries the cart snapshot. A totalAmount field, if sent,
// is ignored: the total is recomputed from the lines on the server.
type placeOrderRequest struct {
	StudentID string             `json:"studentId"`
	Items     []orderLineRequest `json:"items"`
}

type orderLineResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image,omitempty"`
}

type orderResponse struct {
	ID          int64               `json:"id"`
	StudentID   string              `json:"studentId"`
	StudentName string              `json:"studentName"`
	TotalAmount float64             `json:"totalAmount"`
	Items       []orderLineResponse `json:"items"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func orderToResponse(o *order.Order) orderResponse {
	lines := make([]orderLineResponse, len(o.Items))
	for i, l := range o.Items {
		lines[i] = orderLineResponse{
			ID:       l.ID,
			Name:     l.Name,
			Price:    l.Price.InexactFloat64(),
			Quantity: l.Quantity,
			Image:    l.Image,
		}
	}
	return orderResponse{
		ID:          o.ID,
		StudentID:   o.StudentID,
		StudentName: o.StudentName,
		TotalAmount: o.Total.InexactFloat64(),
		Items:       lines,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.StudentID == "" || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "studentId and items array are required")
		return
	}

	lines := make([]order.Line, len(req.Items))
	for i, it := range req.Items {
		lines[i] = order.Line{
			ID:       it.ID,
			Name:     it.Name,
			Price:    decimal.NewFromFloat(it.Price).Round(2),
			Quantity: it.Quantity,
			Image:    it.Image,
		}
	}

	result, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		StudentID: req.StudentID,
		Items:     lines,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"order":          orderToResponse(result.Order),
		"updatedBalance": result.Balance.InexactFloat64(),
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": ordersToResponse(orders)})
}

func (h *Handler) listStudentOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByStudent(r.Context(), chi.URLParam(r, "studentId"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": ordersToResponse(orders)})
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	to := order.Status(req.Status)
	if to != order.StatusConfirmed && to != order.StatusRefunded {
		writeError(w, http.StatusBadRequest, "valid status (CONFIRMED or REFUNDED) is required")
		return
	}

	o, err := h.orders.SetStatus(r.Context(), id, to)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": orderToResponse(o)})
}

func ordersToResponse(orders []order.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = orderToResponse(&orders[i])
	}
	return out
}

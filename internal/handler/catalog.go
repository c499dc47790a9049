package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/snsu-canteen/internal/domain/catalog"

	"github.com/google/uuid"
)

type itemResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type comboResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	ItemIDs   []string  `json:"itemIds"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type itemRequest struct {
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	Price    *float64 `json:"price"`
	Image    *string  `json:"image"`
}

type comboRequest struct {
	Name    *string  `json:"name"`
	Price   *float64 `json:"price"`
	ItemIDs []string `json:"itemIds"`
	Image   *string  `json:"image"`
}

func (h *Handler) itemToResponse(it catalog.Item) itemResponse {
	return itemResponse{
		ID:        it.ID,
		Name:      it.Name,
		Category:  string(it.Category),
		Price:     it.Price.InexactFloat64(),
		Image:     h.imageURL(it.Image),
		CreatedAt: it.CreatedAt,
	}
}

func (h *Handler) comboToResponse(c catalog.Combo) comboResponse {
	return comboResponse{
		ID:        c.ID,
		Name:      c.Name,
		Price:     c.Price.InexactFloat64(),
		ItemIDs:   c.ItemIDs,
		Image:     h.imageURL(c.Image),
		CreatedAt: c.CreatedAt,
	}
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]itemResponse, len(items))
	for i, it := range items {
		out[i] = h.itemToResponse(it)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == nil || req.Category == nil || req.Price == nil {
		writeError(w, http.StatusBadRequest, "name, category, price are required")
		return
	}

	it := &catalog.Item{
		ID:       uuid.New().String(),
		Name:     *req.Name,
		Category: catalog.Category(*req.Category),
		Price:    decimal.NewFromFloat(*req.Price).Round(2),
	}
	if req.Image != nil {
		it.Image = *req.Image
	}
	if err := catalog.ValidateNewItem(it); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.items.Create(r.Context(), it); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"item": h.itemToResponse(*it)})
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	patch := catalog.ItemPatch{
		Name:  req.Name,
		Image: req.Image,
	}
	if req.Category != nil {
		cat := catalog.Category(*req.Category)
		if !cat.Valid() {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}
		patch.Category = &cat
	}
	if req.Price != nil {
		price := decimal.NewFromFloat(*req.Price).Round(2)
		if !price.IsPositive() {
			writeError(w, http.StatusBadRequest, "price must be greater than 0")
			return
		}
		patch.Price = &price
	}
	if patch.Empty() {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	it, err := h.items.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": h.itemToResponse(*it)})
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.items.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) listCombos(w http.ResponseWriter, r *http.Request) {
	combos, err := h.combos.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]comboResponse, len(combos))
	for i, c := range combos {
		out[i] = h.comboToResponse(c)
	}
	writeJSON(w, http.StatusOK, map[string]any{"combos": out})
}

func (h *Handler) createCombo(w http.ResponseWriter, r *http.Request) {
	var req comboRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == nil || req.Price == nil || len(req.ItemIDs) == 0 {
		writeError(w, http.StatusBadRequest, "name, price, itemIds[] required")
		return
	}

	c := &catalog.Combo{
		ID:      uuid.New().String(),
		Name:    *req.Name,
		Price:   decimal.NewFromFloat(*req.Price).Round(2),
		ItemIDs: req.ItemIDs,
	}
	if req.Image != nil {
		c.Image = *req.Image
	}
	if err := catalog.ValidateNewCombo(c); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.combos.Create(r.Context(), c); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"combo": h.comboToResponse(*c)})
}

func (h *Handler) updateCombo(w http.ResponseWriter, r *http.Request) {
	var req comboRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	patch := catalog.ComboPatch{
		Name:    req.Name,
		ItemIDs: req.ItemIDs,
		Image:   req.Image,
	}
	if req.Price != nil {
		price := decimal.NewFromFloat(*req.Price).Round(2)
		if !price.IsPositive() {
			writeError(w, http.StatusBadRequest, "price must be greater than 0")
			return
		}
		patch.Price = &price
	}
	if patch.Empty() {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	c, err := h.combos.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"combo": h.comboToResponse(*c)})
}

func (h *Handler) deleteCombo(w http.ResponseWriter, r *http.Request) {
	if err := h.combos.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

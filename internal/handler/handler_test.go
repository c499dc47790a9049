package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/snsu-canteen/internal/domain/catalog"
	"github.com/xenking/snsu-canteen/internal/domain/ledger"
	"github.com/xenking/snsu-canteen/internal/domain/order"
)

// fakeItems is an in-memory catalog.ItemRepository.
type fakeItems struct {
	mu    sync.Mutex
	items map[string]catalog.Item
}

func newFakeItems() *fakeItems {
	return &fakeItems{items: make(map[string]catalog.Item)}
}

func (f *fakeItems) List(_ context.Context) ([]catalog.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]catalog.Item, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeItems) GetByID(_ context.Context, id string) (*catalog.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return nil, catalog.ErrItemNotFound
	}
	return &it, nil
}

func (f *fakeItems) Create(_ context.Context, item *catalog.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.ID] = *item
	return nil
}

func (f *fakeItems) Update(_ context.Context, id string, patch catalog.ItemPatch) (*catalog.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return nil, catalog.ErrItemNotFound
	}
	if patch.Name != nil {
		it.Name = *patch.Name
	}
	if patch.Category != nil {
		it.Category = *patch.Category
	}
	if patch.Price != nil {
		it.Price = *patch.Price
	}
	if patch.Image != nil {
		it.Image = *patch.Image
	}
	f.items[id] = it
	return &it, nil
}

func (f *fakeItems) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return catalog.ErrItemNotFound
	}
	delete(f.items, id)
	return nil
}

// fakeCombos is an in-memory catalog.ComboRepository.
type fakeCombos struct {
	mu     sync.Mutex
	combos map[string]catalog.Combo
}

func newFakeCombos() *fakeCombos {
	return &fakeCombos{combos: make(map[string]catalog.Combo)}
}

func (f *fakeCombos) List(_ context.Context) ([]catalog.Combo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]catalog.Combo, 0, len(f.combos))
	for _, c := range f.combos {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCombos) GetByID(_ context.Context, id string) (*catalog.Combo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.combos[id]
	if !ok {
		return nil, catalog.ErrComboNotFound
	}
	return &c, nil
}

func (f *fakeCombos) Create(_ context.Context, combo *catalog.Combo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.combos[combo.ID] = *combo
	return nil
}

func (f *fakeCombos) Update(_ context.Context, id string, patch catalog.ComboPatch) (*catalog.Combo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.combos[id]
	if !ok {
		return nil, catalog.ErrComboNotFound
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Price != nil {
		c.Price = *patch.Price
	}
	if patch.ItemIDs != nil {
		c.ItemIDs = patch.ItemIDs
	}
	if patch.Image != nil {
		c.Image = *patch.Image
	}
	f.combos[id] = c
	return &c, nil
}

func (f *fakeCombos) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.combos[id]; !ok {
		return catalog.ErrComboNotFound
	}
	delete(f.combos, id)
	return nil
}

// fakeBank backs both the ledger and order repositories so debits, credits,
// and refunds act on one shared balance, all under a single mutex.
type fakeBank struct {
	mu       sync.Mutex
	students map[string]*ledger.Student
	orders   map[int64]*order.Order
	usedKeys map[string]bool
	nextID   int64
}

type bankStudents struct{ *fakeBank }

type bankOrders struct{ *fakeBank }

func newFakeBank() *fakeBank {
	return &fakeBank{
		students: make(map[string]*ledger.Student),
		orders:   make(map[int64]*order.Order),
		usedKeys: make(map[string]bool),
	}
}

func (b bankStudents) Create(_ context.Context, s *ledger.Student) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.students {
		if existing.Email == s.Email {
			return ledger.ErrEmailTaken
		}
	}
	b.students[s.ID] = s
	return nil
}

func (b bankStudents) GetByID(_ context.Context, id string) (*ledger.Student, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.students[id]
	if !ok {
		return nil, ledger.ErrStudentNotFound
	}
	cp := *st
	return &cp, nil
}

func (b bankStudents) GetByEmail(_ context.Context, email string) (*ledger.Student, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, st := range b.students {
		if st.Email == email {
			cp := *st
			return &cp, nil
		}
	}
	return nil, ledger.ErrStudentNotFound
}

func (b bankStudents) List(_ context.Context) ([]ledger.Student, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ledger.Student, 0, len(b.students))
	for _, st := range b.students {
		out = append(out, *st)
	}
	return out, nil
}

func (b bankStudents) AddCredit(_ context.Context, c *ledger.Credit) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.students[c.StudentID]
	if !ok {
		return false, ledger.ErrStudentNotFound
	}
	if c.IdempotencyKey != "" {
		if b.usedKeys[c.IdempotencyKey] {
			return false, nil
		}
		b.usedKeys[c.IdempotencyKey] = true
	}
	st.Balance = st.Balance.Add(c.Amount)
	return true, nil
}

func (b bankOrders) CreateWithDebit(_ context.Context, o *order.Order) (decimal.Decimal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.students[o.StudentID]
	if !ok {
		return decimal.Zero, ledger.ErrStudentNotFound
	}
	if st.Balance.LessThan(o.Total) {
		return decimal.Zero, order.ErrInsufficientBalance
	}
	st.Balance = st.Balance.Sub(o.Total)
	b.nextID++
	o.ID = b.nextID
	stored := *o
	b.orders[o.ID] = &stored
	return st.Balance, nil
}

func (b bankOrders) Transition(_ context.Context, id int64, to order.Status) (*order.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	if o.Status != order.StatusPending {
		return nil, &order.InvalidTransitionError{Current: o.Status}
	}
	o.Status = to
	if to == order.StatusRefunded {
		b.students[o.StudentID].Balance = b.students[o.StudentID].Balance.Add(o.Total)
	}
	cp := *o
	return &cp, nil
}

func (b bankOrders) List(_ context.Context) ([]order.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]order.Order, 0, len(b.orders))
	for _, o := range b.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (b bankOrders) ListByStudent(_ context.Context, studentID string) ([]order.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]order.Order, 0)
	for _, o := range b.orders {
		if o.StudentID == studentID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// passthroughAdmin skips authentication for handler-level tests; the
// middleware itself is covered in security_test.go.
func passthroughAdmin(next http.Handler) http.Handler { return next }

type testServer struct {
	router http.Handler
	bank   *fakeBank
	items  *fakeItems
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	items := newFakeItems()
	combos := newFakeCombos()
	bank := newFakeBank()

	h := New(
		Config{UploadDir: t.TempDir()},
		items,
		combos,
		ledger.NewService(bankStudents{bank}),
		order.NewService(bankStudents{bank}, bankOrders{bank}),
	)
	return &testServer{
		router: h.Routes(passthroughAdmin),
		bank:   bank,
		items:  items,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// registerStudent creates an account over HTTP and returns its id.
func (ts *testServer) registerStudent(t *testing.T, email string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/students", map[string]string{
		"email":    email,
		"password": "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	student := decodeBody(t, rec)["student"].(map[string]any)
	return student["id"].(string)
}

// creditStudent tops up a balance over HTTP.
func (ts *testServer) creditStudent(t *testing.T, id string, amount float64) {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/students/"+id+"/credit", map[string]float64{"amount": amount})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestBanner(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "snsu-canteen-backend", body["service"])
}

func TestCreateAndListItems(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/items", map[string]any{
		"name":     "Chicken Adobo Rice Meal",
		"category": "MEAL",
		"price":    65.0,
		"image":    "/images/adobo.jpg",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)["item"].(map[string]any)
	assert.NotEmpty(t, created["id"])
	assert.Equal(t, 65.0, created["price"])

	rec = ts.do(t, http.MethodGet, "/items", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeBody(t, rec)["items"].([]any)
	assert.Len(t, items, 1)
}

func TestCreateItem_Validation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing fields", map[string]any{"name": "Adobo"}},
		{"bad category", map[string]any{"name": "Adobo", "category": "DESSERT", "price": 65.0}},
		{"zero price", map[string]any{"name": "Adobo", "category": "MEAL", "price": 0.0}},
		{"negative price", map[string]any{"name": "Adobo", "category": "MEAL", "price": -5.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/items", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestUpdateItem(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/items", map[string]any{
		"name": "Adobo", "category": "MEAL", "price": 65.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["item"].(map[string]any)["id"].(string)

	// Partial update: only the price changes.
	rec = ts.do(t, http.MethodPatch, "/items/"+id, map[string]any{"price": 70.0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody(t, rec)["item"].(map[string]any)
	assert.Equal(t, 70.0, updated["price"])
	assert.Equal(t, "Adobo", updated["name"])

	// Empty patch is rejected.
	rec = ts.do(t, http.MethodPatch, "/items/"+id, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown id is 404.
	rec = ts.do(t, http.MethodPatch, "/items/ghost", map[string]any{"price": 70.0})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteItem(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/items", map[string]any{
		"name": "Adobo", "category": "MEAL", "price": 65.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["item"].(map[string]any)["id"].(string)

	rec = ts.do(t, http.MethodDelete, "/items/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/items/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCombos(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/combos", map[string]any{
		"name":    "Merienda Combo",
		"price":   30.0,
		"itemIds": []string{"banana-cue", "gulaman"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	combo := decodeBody(t, rec)["combo"].(map[string]any)
	assert.Equal(t, 30.0, combo["price"])
	assert.Len(t, combo["itemIds"].([]any), 2)

	// itemIds is required.
	rec = ts.do(t, http.MethodPost, "/combos", map[string]any{
		"name": "Empty Combo", "price": 30.0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/combos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["combos"].([]any), 1)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/students", map[string]string{
		"email": "maria@snsu.edu.ph", "password": "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	student := decodeBody(t, rec)["student"].(map[string]any)
	assert.Equal(t, "maria", student["name"])
	assert.Equal(t, 0.0, student["balance"])
	_, hasPassword := student["password"]
	assert.False(t, hasPassword)

	// Duplicate registration conflicts.
	rec = ts.do(t, http.MethodPost, "/students", map[string]string{
		"email": "maria@snsu.edu.ph", "password": "other",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/login", map[string]string{
		"email": "maria@snsu.edu.ph", "password": "secret",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/login", map[string]string{
		"email": "maria@snsu.edu.ph", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreditStudent(t *testing.T) {
	ts := newTestServer(t)
	id := ts.registerStudent(t, "maria@snsu.edu.ph")

	rec := ts.do(t, http.MethodPost, "/students/"+id+"/credit", map[string]float64{"amount": 100})
	require.Equal(t, http.StatusOK, rec.Code)
	student := decodeBody(t, rec)["student"].(map[string]any)
	assert.Equal(t, 100.0, student["balance"])

	// Non-positive amounts are rejected.
	rec = ts.do(t, http.MethodPost, "/students/"+id+"/credit", map[string]float64{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/students/"+id+"/credit", map[string]float64{"amount": -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown student is 404.
	rec = ts.do(t, http.MethodPost, "/students/ghost/credit", map[string]float64{"amount": 10})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreditStudent_IdempotencyKey(t *testing.T) {
	ts := newTestServer(t)
	id := ts.registerStudent(t, "maria@snsu.edu.ph")

	for range 2 {
		rec := ts.do(t, http.MethodPost, "/students/"+id+"/credit",
			map[string]float64{"amount": 100},
			"Idempotency-Key", "gcash-ref-123",
		)
		require.Equal(t, http.StatusOK, rec.Code)
		// Both the first call and the retry report the same balance.
		assert.Equal(t, 100.0, decodeBody(t, rec)["student"].(map[string]any)["balance"])
	}
}

func TestPlaceOrder(t *testing.T) {
	ts := newTestServer(t)
	id := ts.registerStudent(t, "juan@snsu.edu.ph")
	ts.creditStudent(t, id, 200)

	rec := ts.do(t, http.MethodPost, "/orders", map[string]any{
		"studentId": id,
		"items": []map[string]any{
			{"id": "adobo", "name": "Chicken Adobo", "price": 60.0, "quantity": 2},
			{"id": "gulaman", "name": "Sago't Gulaman", "price": 20.0, "quantity": 1},
		},
		// A client-sent total is ignored in favor of the computed one.
		"totalAmount": 1.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	o := body["order"].(map[string]any)
	assert.Equal(t, 140.0, o["totalAmount"])
	assert.Equal(t, "PENDING", o["status"])
	assert.Equal(t, "juan", o["studentName"])
	assert.Equal(t, 60.0, body["updatedBalance"])
}

func TestPlaceOrder_Failures(t *testing.T) {
	ts := newTestServer(t)
	id := ts.registerStudent(t, "juan@snsu.edu.ph")
	ts.creditStudent(t, id, 50)

	// Insufficient balance.
	rec := ts.do(t, http.MethodPost, "/orders", map[string]any{
		"studentId": id,
		"items":     []map[string]any{{"id": "adobo", "price": 60.0, "quantity": 1}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// The failed attempt left the balance alone.
	rec = ts.do(t, http.MethodGet, "/students/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50.0, decodeBody(t, rec)["student"].(map[string]any)["balance"])

	// Missing items.
	rec = ts.do(t, http.MethodPost, "/orders", map[string]any{"studentId": id})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Zero quantity.
	rec = ts.do(t, http.MethodPost, "/orders", map[string]any{
		"studentId": id,
		"items":     []map[string]any{{"id": "adobo", "price": 20.0, "quantity": 0}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown student.
	rec = ts.do(t, http.MethodPost, "/orders", map[string]any{
		"studentId": "ghost",
		"items":     []map[string]any{{"id": "adobo", "price": 20.0, "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderStatusLifecycle(t *testing.T) {
	ts := newTestServer(t)
	id := ts.registerStudent(t, "juan@snsu.edu.ph")
	ts.creditStudent(t, id, 100)

	rec := ts.do(t, http.MethodPost, "/orders", map[string]any{
		"studentId": id,
		"items":     []map[string]any{{"id": "adobo", "price": 65.0, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := int64(decodeBody(t, rec)["order"].(map[string]any)["id"].(float64))

	path := fmt.Sprintf("/orders/%d/status", orderID)

	rec = ts.do(t, http.MethodPatch, path, map[string]string{"status": "CONFIRMED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "CONFIRMED", decodeBody(t, rec)["order"].(map[string]any)["status"])

	// Terminal state: a second transition conflicts and keeps the balance.
	rec = ts.do(t, http.MethodPatch, path, map[string]string{"status": "REFUNDED"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodGet, "/students/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 35.0, decodeBody(t, rec)["student"].(map[string]any)["balance"])
}

func TestOrderRefund_RestoresBalance(t *testing.T) {
	ts := newTestServer(t)
	id := ts.registerStudent(t, "juan@snsu.edu.ph")
	ts.creditStudent(t, id, 100)

	rec := ts.do(t, http.MethodPost, "/orders", map[string]any{
		"studentId": id,
		"items":     []map[string]any{{"id": "adobo", "price": 65.0, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := int64(decodeBody(t, rec)["order"].(map[string]any)["id"].(float64))

	rec = ts.do(t, http.MethodPatch, fmt.Sprintf("/orders/%d/status", orderID),
		map[string]string{"status": "REFUNDED"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/students/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100.0, decodeBody(t, rec)["student"].(map[string]any)["balance"])
}

func TestUpdateOrderStatus_Validation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPatch, "/orders/not-a-number/status", map[string]string{"status": "CONFIRMED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/orders/1/status", map[string]string{"status": "PENDING"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/orders/99/status", map[string]string{"status": "CONFIRMED"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrders(t *testing.T) {
	ts := newTestServer(t)
	id := ts.registerStudent(t, "juan@snsu.edu.ph")
	other := ts.registerStudent(t, "maria@snsu.edu.ph")
	ts.creditStudent(t, id, 100)
	ts.creditStudent(t, other, 100)

	for _, sid := range []string{id, other} {
		rec := ts.do(t, http.MethodPost, "/orders", map[string]any{
			"studentId": sid,
			"items":     []map[string]any{{"id": "gulaman", "price": 20.0, "quantity": 1}},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := ts.do(t, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["orders"].([]any), 2)

	rec = ts.do(t, http.MethodGet, "/orders/student/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decodeBody(t, rec)["orders"].([]any)
	require.Len(t, orders, 1)
	assert.Equal(t, id, orders[0].(map[string]any)["studentId"])
}

func TestListStudents_OmitsPasswords(t *testing.T) {
	ts := newTestServer(t)
	ts.registerStudent(t, "juan@snsu.edu.ph")
	ts.registerStudent(t, "maria@snsu.edu.ph")

	rec := ts.do(t, http.MethodGet, "/students", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	students := decodeBody(t, rec)["students"].([]any)
	require.Len(t, students, 2)
	for _, s := range students {
		_, hasPassword := s.(map[string]any)["password"]
		assert.False(t, hasPassword)
	}
}

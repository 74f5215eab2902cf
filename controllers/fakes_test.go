package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/repository"
	"go-storefront/utils"
)

var testUserID = primitive.NewObjectID()

func testCommon() Common {
	return NewCommon(zap.NewNop(), time.Second)
}

func testClaims(role string) *utils.Claims {
	return &utils.Claims{UserID: testUserID.Hex(), Email: "jane@example.com", Role: role}
}

type nopMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *nopMailer) SendEmail(to, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, subject)
	return nil
}

func testEmail() *utils.EmailService {
	return utils.NewEmailServiceWithMailer(&nopMailer{}, "http://shop.test", zap.NewNop())
}

// serve routes a single request through a mux router so path variables
// resolve, attaching claims when non-nil.
func serve(t *testing.T, pattern, method, target string, body interface{}, claims *utils.Claims, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if claims != nil {
		req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	}
	router := mux.NewRouter()
	router.HandleFunc(pattern, h).Methods(method)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

type memProducts struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Product
}

func newMemProducts(ps ...models.Product) *memProducts {
	m := &memProducts{items: map[primitive.ObjectID]*models.Product{}}
	for i := range ps {
		p := ps[i]
		m.items[p.ID] = &p
	}
	return m
}

func (m *memProducts) List(_ context.Context, category string) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.items {
		if category == "" || p.Category == category {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProducts) Get(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memProducts) Update(_ context.Context, id primitive.ObjectID, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	cp.ID = id
	m.items[id] = &cp
	return nil
}

func (m *memProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memProducts) AddReview(_ context.Context, id primitive.ObjectID, r models.Review) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Reviews = append(p.Reviews, r)
	p.Rating = models.AverageRating(p.Reviews)
	p.ReviewCount = len(p.Reviews)
	cp := *p
	return &cp, nil
}

func (m *memProducts) ReserveStock(_ context.Context, items []models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		p, ok := m.items[it.ProductID]
		if !ok || p.Stock < it.Quantity {
			return &repository.ErrInsufficientStock{Name: it.Name}
		}
	}
	for _, it := range items {
		m.items[it.ProductID].Stock -= it.Quantity
	}
	return nil
}

func (m *memProducts) ReleaseStock(_ context.Context, items []models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		if p, ok := m.items[it.ProductID]; ok {
			p.Stock += it.Quantity
		}
	}
	return nil
}

func (m *memProducts) stock(id primitive.ObjectID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id].Stock
}

type memCarts struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]models.Cart
}

func newMemCarts() *memCarts {
	return &memCarts{carts: map[primitive.ObjectID]models.Cart{}}
}

func (m *memCarts) Get(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	c.Items = append([]models.CartItem(nil), c.Items...)
	return &c, nil
}

func (m *memCarts) Save(_ context.Context, c *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	cp.Items = append([]models.CartItem(nil), c.Items...)
	m.carts[c.UserID] = cp
	return nil
}

func (m *memCarts) Clear(_ context.Context, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}

type memOrders struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order
}

func newMemOrders(os ...models.Order) *memOrders {
	m := &memOrders{orders: map[primitive.ObjectID]*models.Order{}}
	for i := range os {
		o := os[i]
		m.orders[o.ID] = &o
	}
	return m
}

func (m *memOrders) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memOrders) Get(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) GetForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	o, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return o, nil
}

func (m *memOrders) FindByNumber(_ context.Context, number, email string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.OrderNumber == number && o.CustomerEmail == email {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memOrders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memOrders) TransitionStatus(_ context.Context, id primitive.ObjectID, from []string, to string, ev *models.TrackingEvent) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	allowed := false
	for _, s := range from {
		if o.Status == s {
			allowed = true
		}
	}
	if !allowed {
		return nil, repository.ErrStatusConflict
	}
	o.Status = to
	if ev != nil {
		o.Tracking = append(o.Tracking, *ev)
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) AppendTracking(_ context.Context, id primitive.ObjectID, ev models.TrackingEvent) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.Tracking = append(o.Tracking, ev)
	cp := *o
	return &cp, nil
}

// memAddresses keeps insertion order; List returns default first, then
// newest first, like the Mongo store.
type memAddresses struct {
	mu    sync.Mutex
	items []models.Address
	clock time.Time
}

func (m *memAddresses) List(_ context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Address{}
	for _, a := range m.items {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memAddresses) find(id, userID primitive.ObjectID) int {
	for i, a := range m.items {
		if a.ID == id && a.UserID == userID {
			return i
		}
	}
	return -1
}

func (m *memAddresses) Get(_ context.Context, id, userID primitive.ObjectID) (*models.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id, userID)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	cp := m.items[i]
	return &cp, nil
}

func (m *memAddresses) Create(_ context.Context, a *models.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Minute)
	a.ID = primitive.NewObjectID()
	a.CreatedAt = m.clock
	a.IsDefault = false
	m.items = append(m.items, *a)
	return nil
}

func (m *memAddresses) Update(_ context.Context, a *models.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(a.ID, a.UserID)
	if i < 0 {
		return repository.ErrNotFound
	}
	m.items[i] = *a
	return nil
}

func (m *memAddresses) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id, userID)
	if i < 0 {
		return repository.ErrNotFound
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return nil
}

func (m *memAddresses) SetDefault(_ context.Context, id, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(id, userID) < 0 {
		return repository.ErrNotFound
	}
	for i := range m.items {
		if m.items[i].UserID == userID {
			m.items[i].IsDefault = m.items[i].ID == id
		}
	}
	return nil
}

type memPayments struct {
	mu    sync.Mutex
	items []models.PaymentMethod
}

func (m *memPayments) List(_ context.Context, userID primitive.ObjectID) ([]models.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.PaymentMethod{}
	for _, p := range m.items {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPayments) find(id, userID primitive.ObjectID) int {
	for i, p := range m.items {
		if p.ID == id && p.UserID == userID {
			return i
		}
	}
	return -1
}

func (m *memPayments) Get(_ context.Context, id, userID primitive.ObjectID) (*models.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id, userID)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	cp := m.items[i]
	return &cp, nil
}

func (m *memPayments) Create(_ context.Context, p *models.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	m.items = append(m.items, *p)
	return nil
}

func (m *memPayments) Update(_ context.Context, p *models.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(p.ID, p.UserID)
	if i < 0 {
		return repository.ErrNotFound
	}
	m.items[i] = *p
	return nil
}

func (m *memPayments) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id, userID)
	if i < 0 {
		return repository.ErrNotFound
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return nil
}

func (m *memPayments) SetDefault(_ context.Context, id, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(id, userID) < 0 {
		return repository.ErrNotFound
	}
	for i := range m.items {
		if m.items[i].UserID == userID {
			m.items[i].IsDefault = m.items[i].ID == id
		}
	}
	return nil
}

type memWishlists struct {
	mu    sync.Mutex
	lists map[primitive.ObjectID][]primitive.ObjectID
}

func (m *memWishlists) Get(_ context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &models.Wishlist{UserID: userID, ProductIDs: append([]primitive.ObjectID{}, m.lists[userID]...)}, nil
}

func (m *memWishlists) Add(_ context.Context, userID, productID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lists == nil {
		m.lists = map[primitive.ObjectID][]primitive.ObjectID{}
	}
	for _, id := range m.lists[userID] {
		if id == productID {
			return nil
		}
	}
	m.lists[userID] = append(m.lists[userID], productID)
	return nil
}

func (m *memWishlists) Remove(_ context.Context, userID, productID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lists == nil {
		return nil
	}
	kept := m.lists[userID][:0]
	for _, id := range m.lists[userID] {
		if id != productID {
			kept = append(kept, id)
		}
	}
	m.lists[userID] = kept
	return nil
}

type memSessions struct {
	mu   sync.Mutex
	msgs map[string][]models.ChatMessage
}

func (m *memSessions) History(_ context.Context, sessionID string) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ChatMessage(nil), m.msgs[sessionID]...), nil
}

func (m *memSessions) Append(_ context.Context, sessionID string, msgs ...models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.msgs == nil {
		m.msgs = map[string][]models.ChatMessage{}
	}
	m.msgs[sessionID] = append(m.msgs[sessionID], msgs...)
	return nil
}

package services_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Company-KERL/Kerl-backend/models"
	"github.com/Company-KERL/Kerl-backend/repository"
	"github.com/Company-KERL/Kerl-backend/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var testLogger = zap.NewNop()

// --- Users ---

type memUsers struct {
	byID map[primitive.ObjectID]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[primitive.ObjectID]*models.User{}}
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	for _, existing := range m.byID {
		if existing.Email == u.Email || existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) UpdateContact(_ context.Context, id primitive.ObjectID, address, phone *string) (*models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if address != nil {
		u.Address = *address
	}
	if phone != nil {
		u.Phone = *phone
	}
	cp := *u
	return &cp, nil
}

// --- Products ---

type memProducts struct {
	mu      sync.Mutex
	byID    map[primitive.ObjectID]*models.Product
	failDec error
}

func newMemProducts() *memProducts {
	return &memProducts{byID: map[primitive.ObjectID]*models.Product{}}
}

func (m *memProducts) add(name string, prices []float64, stock int) *models.Product {
	sizes := make([]string, len(prices))
	for i := range prices {
		sizes[i] = string(rune('S' + i))
	}
	p := &models.Product{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: name + " description",
		Sizes:       sizes,
		Prices:      prices,
		Images:      [][]string{{"https://img.example.com/" + name + ".jpg"}},
		Stock:       stock,
	}
	m.mu.Lock()
	m.byID[p.ID] = p
	m.mu.Unlock()
	return p
}

func (m *memProducts) stock(id primitive.ObjectID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id].Stock
}

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memProducts) FindAll(_ context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[primitive.ObjectID]*models.Product{}
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *memProducts) Update(_ context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v.(string)
		case "description":
			p.Description = v.(string)
		case "sizes":
			p.Sizes = v.([]string)
		case "prices":
			p.Prices = v.([]float64)
		case "offers":
			p.Offers = v.([]float64)
		case "images":
			p.Images = v.([][]string)
		case "stock":
			p.Stock = v.(int)
		}
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memProducts) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDec != nil {
		return m.failDec
	}
	p, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Stock < qty {
		return repository.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (m *memProducts) IncrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Stock += qty
	return nil
}

// --- Carts ---

type memCarts struct {
	byUser map[primitive.ObjectID]*models.Cart
}

func newMemCarts() *memCarts {
	return &memCarts{byUser: map[primitive.ObjectID]*models.Cart{}}
}

func (m *memCarts) FindByUserID(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	c, ok := m.byUser[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	cp.Items = append([]models.LineItem(nil), c.Items...)
	return &cp, nil
}

func (m *memCarts) Save(_ context.Context, c *models.Cart) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	cp := *c
	cp.Items = append([]models.LineItem(nil), c.Items...)
	m.byUser[c.UserID] = &cp
	return nil
}

func (m *memCarts) DeleteByUserID(_ context.Context, userID primitive.ObjectID) (bool, error) {
	if _, ok := m.byUser[userID]; !ok {
		return false, nil
	}
	delete(m.byUser, userID)
	return true, nil
}

// --- Orders ---

type memOrders struct {
	mu         sync.Mutex
	byID       map[primitive.ObjectID]*models.Order
	failCreate error
}

func newMemOrders() *memOrders {
	return &memOrders{byID: map[primitive.ObjectID]*models.Order{}}
}

func (m *memOrders) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now()
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOrders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) FindByUserID(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Order, 0)
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	return m.set(id, func(o *models.Order) { o.Status = status })
}

func (m *memOrders) UpdatePaymentStatus(_ context.Context, id primitive.ObjectID, ps string) (*models.Order, error) {
	return m.set(id, func(o *models.Order) { o.PaymentStatus = ps })
}

func (m *memOrders) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memOrders) set(id primitive.ObjectID, fn func(*models.Order)) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(o)
	cp := *o
	return &cp, nil
}

// --- Payments ---

type memPayments struct {
	byID map[primitive.ObjectID]*models.Payment
	seq  int
}

func newMemPayments() *memPayments {
	return &memPayments{byID: map[primitive.ObjectID]*models.Payment{}}
}

func (m *memPayments) Create(_ context.Context, p *models.Payment) error {
	p.ID = primitive.NewObjectID()
	m.seq++
	p.CreatedAt = time.Unix(int64(m.seq), 0)
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memPayments) FindByOrderID(_ context.Context, orderID primitive.ObjectID) (*models.Payment, error) {
	var latest *models.Payment
	for _, p := range m.byID {
		if p.OrderID == orderID && (latest == nil || p.CreatedAt.After(latest.CreatedAt)) {
			latest = p
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *memPayments) FindByProcessorOrderID(_ context.Context, id string) (*models.Payment, error) {
	for _, p := range m.byID {
		if p.ProcessorOrderID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPayments) Update(_ context.Context, p *models.Payment) error {
	if _, ok := m.byID[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

// --- Idempotency ---

type memIdempotency struct {
	values map[string]string
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{values: map[string]string{}}
}

func (m *memIdempotency) Get(_ context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *memIdempotency) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.values[key] = value
	return nil
}

// --- Processor, events ---

type fakeProcessor struct {
	requests []services.ProcessorOrderRequest
	err      error
	nextID   string
}

func (f *fakeProcessor) Name() string { return services.ProviderRazorpay }

func (f *fakeProcessor) CreateOrder(_ context.Context, req services.ProcessorOrderRequest) (*services.ProcessorOrder, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	id := f.nextID
	if id == "" {
		id = "order_test123"
	}
	return &services.ProcessorOrder{ID: id}, nil
}

type fakeWebhooks struct {
	outcome *services.WebhookOutcome
	err     error
}

func (f *fakeWebhooks) ParseWebhook([]byte, string) (*services.WebhookOutcome, error) {
	return f.outcome, f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

var errBoom = errors.New("boom")

func intPtr(v int) *int { return &v }

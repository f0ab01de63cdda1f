package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"reverie-revival/internal/domain"
	"reverie-revival/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// fakeStore is an in-memory database. Transactions are serialized and roll
// back to a snapshot when fn fails, which is enough to observe atomicity.
type fakeStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	products  map[uuid.UUID]domain.Product
	variants  map[uuid.UUID]domain.Variant
	customers map[string]domain.Customer
	orders    map[uuid.UUID]domain.Order
	movements []domain.StockMovement
	audits    []domain.AuditLog
	admins    map[uuid.UUID]domain.AdminUser
	sessions  map[string]domain.AdminSession
	settings  *domain.Settings

	// failOrderItems makes Create fail after the header is written
	failOrderItems error
	// failMovementFor makes Apply fail for one variant
	failMovementFor uuid.UUID
	// failAudit makes every audit insert fail
	failAudit error
	transactions    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:  map[uuid.UUID]domain.Product{},
		variants:  map[uuid.UUID]domain.Variant{},
		customers: map[string]domain.Customer{},
		orders:    map[uuid.UUID]domain.Order{},
		admins:    map[uuid.UUID]domain.AdminUser{},
		sessions:  map[string]domain.AdminSession{},
	}
}

type fakeSnapshot struct {
	products  map[uuid.UUID]domain.Product
	variants  map[uuid.UUID]domain.Variant
	customers map[string]domain.Customer
	orders    map[uuid.UUID]domain.Order
	movements []domain.StockMovement
	audits    []domain.AuditLog
	settings  *domain.Settings
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *fakeStore) snapshot() fakeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := fakeSnapshot{
		products:  copyMap(s.products),
		variants:  copyMap(s.variants),
		customers: copyMap(s.customers),
		orders:    copyMap(s.orders),
		movements: append([]domain.StockMovement(nil), s.movements...),
		audits:    append([]domain.AuditLog(nil), s.audits...),
	}
	if s.settings != nil {
		copied := *s.settings
		snap.settings = &copied
	}
	return snap
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.variants = snap.variants
	s.customers = snap.customers
	s.orders = snap.orders
	s.movements = snap.movements
	s.audits = snap.audits
	s.settings = snap.settings
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.transactions++
	s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(nil); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *fakeStore) addProduct(status domain.ProductStatus, basePrice int64) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := domain.Product{
		ID:        uuid.New(),
		Slug:      "p-" + uuid.NewString()[:8],
		Title:     "Boxy Hoodie",
		Category:  "Outerwear",
		Status:    status,
		BasePrice: basePrice,
		CreatedAt: time.Now(),
	}
	s.products[p.ID] = p
	return p
}

func (s *fakeStore) addVariant(productID uuid.UUID, size, color string, stock int, override *int64) domain.Variant {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := domain.Variant{
		ID:                uuid.New(),
		ProductID:         productID,
		Size:              size,
		Color:             color,
		SKU:               "SKU-" + strings.ToUpper(uuid.NewString()[:6]),
		StockQty:          stock,
		LowStockThreshold: 2,
		PriceOverride:     override,
		IsActive:          true,
	}
	s.variants[v.ID] = v
	return v
}

func (s *fakeStore) stock(variantID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.variants[variantID].StockQty
}

func (s *fakeStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *fakeStore) movementsFor(variantID uuid.UUID) []domain.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.StockMovement
	for _, m := range s.movements {
		if m.VariantID == variantID {
			out = append(out, m)
		}
	}
	return out
}

// catalog

type fakeCatalog struct{ s *fakeStore }

func (r *fakeCatalog) WithTx(*sqlx.Tx) repository.CatalogRepository { return r }

func (r *fakeCatalog) Create(_ context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = *p
	return nil
}

func (r *fakeCatalog) CreateVariant(_ context.Context, v *domain.Variant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.variants[v.ID] = *v
	return nil
}

func (r *fakeCatalog) FindByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (r *fakeCatalog) FindPurchasableVariants(_ context.Context, productIDs []string) ([]domain.PurchasableVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range productIDs {
		wanted[strings.ToLower(id)] = true
	}
	out := []domain.PurchasableVariant{}
	for _, v := range r.s.variants {
		p := r.s.products[v.ProductID]
		if !wanted[p.ID.String()] || !v.IsActive || !p.Purchasable() {
			continue
		}
		out = append(out, domain.PurchasableVariant{Variant: v, ProductTitle: p.Title, BasePrice: p.BasePrice})
	}
	return out, nil
}

func (r *fakeCatalog) ListActive(_ context.Context) ([]domain.CatalogProduct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.CatalogProduct{}
	for _, p := range r.s.products {
		if !p.Purchasable() {
			continue
		}
		cp := domain.CatalogProduct{Product: p, Variants: []domain.Variant{}}
		for _, v := range r.s.variants {
			if v.ProductID == p.ID {
				cp.Variants = append(cp.Variants, v)
			}
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// orders

type fakeOrders struct{ s *fakeStore }

func (r *fakeOrders) WithTx(*sqlx.Tx) repository.OrderRepository { return r }

func (r *fakeOrders) Create(_ context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.orders {
		if existing.OrderNumber == o.OrderNumber {
			return repository.ErrOrderNumberTaken
		}
		if o.IdempotencyKey != nil && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *o.IdempotencyKey {
			return repository.ErrIdempotencyKeyTaken
		}
	}
	stored := *o
	stored.Items = append([]domain.OrderItem(nil), o.Items...)
	r.s.orders[o.ID] = stored
	if r.s.failOrderItems != nil {
		return r.s.failOrderItems
	}
	return nil
}

func (r *fakeOrders) find(match func(domain.Order) bool) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if match(o) {
			found := o
			return &found, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (r *fakeOrders) FindByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.find(func(o domain.Order) bool { return o.ID == id })
}

func (r *fakeOrders) LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeOrders) FindByIdempotencyKey(_ context.Context, key string) (*domain.Order, error) {
	return r.find(func(o domain.Order) bool { return o.IdempotencyKey != nil && *o.IdempotencyKey == key })
}

func (r *fakeOrders) List(_ context.Context, f domain.OrderFilter) ([]domain.OrderSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.OrderSummary{}
	for _, o := range r.s.orders {
		if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
			continue
		}
		if f.FulfillmentStatus != "" && o.FulfillmentStatus != f.FulfillmentStatus {
			continue
		}
		if f.CustomerID != uuid.Nil && o.CustomerID != f.CustomerID {
			continue
		}
		count := 0
		for _, it := range o.Items {
			count += it.Qty
		}
		out = append(out, domain.OrderSummary{
			ID: o.ID, OrderNumber: o.OrderNumber, Email: o.Email, Total: o.Total,
			PaymentStatus: o.PaymentStatus, FulfillmentStatus: o.FulfillmentStatus, ItemCount: count,
		})
	}
	return out, nil
}

func (r *fakeOrders) mutate(id uuid.UUID, fn func(o *domain.Order)) (*domain.Order, error) {
	r.s.mu.Lock()
	o, ok := r.s.orders[id]
	if !ok {
		r.s.mu.Unlock()
		return nil, repository.ErrOrderNotFound
	}
	fn(&o)
	r.s.orders[id] = o
	r.s.mu.Unlock()
	return &o, nil
}

func (r *fakeOrders) UpdatePaymentStatus(_ context.Context, id uuid.UUID, st domain.PaymentStatus) (*domain.Order, error) {
	return r.mutate(id, func(o *domain.Order) { o.PaymentStatus = st })
}

func (r *fakeOrders) UpdateFulfillment(_ context.Context, id uuid.UUID, st domain.FulfillmentStatus, tracking, courier *string) (*domain.Order, error) {
	return r.mutate(id, func(o *domain.Order) {
		o.FulfillmentStatus = st
		o.TrackingNumber = tracking
		o.Courier = courier
	})
}

func (r *fakeOrders) UpdateNotes(_ context.Context, id uuid.UUID, notes string) (*domain.Order, error) {
	return r.mutate(id, func(o *domain.Order) { o.Notes = notes })
}

// customers

type fakeCustomers struct{ s *fakeStore }

func (r *fakeCustomers) WithTx(*sqlx.Tx) repository.CustomerRepository { return r }

func (r *fakeCustomers) UpsertByEmail(_ context.Context, c *domain.Customer) (uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.customers[c.Email]; ok {
		c.ID = existing.ID
		return existing.ID, nil
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.s.customers[c.Email] = *c
	return c.ID, nil
}

func (r *fakeCustomers) FindByID(_ context.Context, id uuid.UUID) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.customers {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

func (r *fakeCustomers) UpdateNotes(_ context.Context, id uuid.UUID, notes string) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for email, c := range r.s.customers {
		if c.ID == id {
			c.Notes = notes
			c.UpdatedAt = time.Now()
			r.s.customers[email] = c
			return &c, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

func (r *fakeCustomers) List(_ context.Context, _ int) ([]domain.CustomerSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.CustomerSummary{}
	for _, c := range r.s.customers {
		summary := domain.CustomerSummary{Customer: c}
		for _, o := range r.s.orders {
			if o.CustomerID == c.ID {
				summary.OrderCount++
				summary.LifetimeTotal += o.Total
			}
		}
		out = append(out, summary)
	}
	return out, nil
}

// inventory ledger

type fakeLedger struct{ s *fakeStore }

func (l *fakeLedger) WithTx(*sqlx.Tx) repository.InventoryLedger { return l }

// lockRecorder notes the variant order of every ledger write
type lockRecorder struct {
	*fakeLedger
	mu    sync.Mutex
	order []uuid.UUID
}

func (l *lockRecorder) WithTx(*sqlx.Tx) repository.InventoryLedger { return l }

func (l *lockRecorder) Apply(ctx context.Context, c domain.StockChange) (*domain.StockChangeResult, error) {
	l.mu.Lock()
	l.order = append(l.order, c.VariantID)
	l.mu.Unlock()
	return l.fakeLedger.Apply(ctx, c)
}

func (l *lockRecorder) take() []uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.order
	l.order = nil
	return out
}

func (l *fakeLedger) Apply(_ context.Context, c domain.StockChange) (*domain.StockChangeResult, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if l.s.failMovementFor == c.VariantID {
		return nil, errors.New("movement insert failed")
	}
	v, ok := l.s.variants[c.VariantID]
	if !ok {
		if c.Policy == domain.StockPolicyFloor {
			return nil, repository.ErrVariantNotFound
		}
		return nil, repository.ErrInsufficientStock
	}

	prev := v.StockQty
	next := prev + c.Delta
	if next < 0 {
		if c.Policy == domain.StockPolicyReject {
			return nil, repository.ErrInsufficientStock
		}
		next = 0
	}
	v.StockQty = next
	l.s.variants[v.ID] = v

	m := domain.StockMovement{
		ID:           uuid.New(),
		VariantID:    v.ID,
		Delta:        next - prev,
		ActorAdminID: c.ActorAdminID,
		CreatedAt:    time.Now(),
	}
	if c.Reason != "" {
		reason := c.Reason
		m.Reason = &reason
	}
	l.s.movements = append(l.s.movements, m)

	return &domain.StockChangeResult{
		VariantID: v.ID, SKU: v.SKU, PreviousQty: prev, StockQty: next,
		AppliedDelta: next - prev, MovementID: m.ID,
	}, nil
}

func (l *fakeLedger) ListMovements(_ context.Context, variantID uuid.UUID, _ int) ([]domain.StockMovement, error) {
	return l.s.movementsFor(variantID), nil
}

func (l *fakeLedger) ListInventory(_ context.Context, lowStockOnly bool) ([]domain.InventoryRow, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	out := []domain.InventoryRow{}
	for _, v := range l.s.variants {
		row := domain.InventoryRow{
			VariantID: v.ID, ProductID: v.ProductID, ProductTitle: l.s.products[v.ProductID].Title,
			SKU: v.SKU, Size: v.Size, Color: v.Color, StockQty: v.StockQty,
			LowStockThreshold: v.LowStockThreshold, IsActive: v.IsActive,
		}
		if lowStockOnly && !row.LowStock() {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// audit

type fakeAudit struct{ s *fakeStore }

func (r *fakeAudit) WithTx(*sqlx.Tx) repository.AuditRepository { return r }

func (r *fakeAudit) Create(_ context.Context, e *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAudit != nil {
		return r.s.failAudit
	}
	e.CreatedAt = time.Now()
	r.s.audits = append(r.s.audits, *e)
	return nil
}

func (r *fakeAudit) List(_ context.Context, _ int) ([]domain.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.AuditLog, 0, len(r.s.audits))
	for i := len(r.s.audits) - 1; i >= 0; i-- {
		out = append(out, r.s.audits[i])
	}
	return out, nil
}

// settings

type fakeSettings struct{ s *fakeStore }

func (r *fakeSettings) WithTx(*sqlx.Tx) repository.SettingsRepository { return r }

func (r *fakeSettings) Get(_ context.Context) (*domain.Settings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.settings == nil {
		r.s.settings = &domain.Settings{
			ID:                    repository.SettingsID,
			StoreName:             domain.DefaultStoreName,
			FeaturedCollectionIDs: []string{},
			FeaturedProductIDs:    []string{},
		}
	}
	copied := *r.s.settings
	return &copied, nil
}

func (r *fakeSettings) Update(ctx context.Context, next *domain.Settings) (*domain.Settings, error) {
	if _, err := r.Get(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	updated := *next
	updated.ID = repository.SettingsID
	r.s.settings = &updated
	copied := updated
	return &copied, nil
}

// admins

type fakeAdmins struct{ s *fakeStore }

func (r *fakeAdmins) Create(_ context.Context, a *domain.AdminUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.admins {
		if existing.Email == a.Email {
			return repository.ErrAdminAlreadyExists
		}
	}
	r.s.admins[a.ID] = *a
	return nil
}

func (r *fakeAdmins) FindByEmail(_ context.Context, email string) (*domain.AdminUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.admins {
		if a.Email == email {
			found := a
			return &found, nil
		}
	}
	return nil, repository.ErrAdminNotFound
}

func (r *fakeAdmins) FindByID(_ context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.admins[id]
	if !ok {
		return nil, repository.ErrAdminNotFound
	}
	return &a, nil
}

type fakeSessions struct{ s *fakeStore }

func (r *fakeSessions) Create(_ context.Context, sess *domain.AdminSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[sess.TokenHash] = *sess
	return nil
}

func (r *fakeSessions) FindByTokenHash(_ context.Context, hash string) (*domain.AdminSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[hash]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	if sess.Revoked {
		return nil, repository.ErrSessionRevoked
	}
	return &sess, nil
}

func (r *fakeSessions) Revoke(_ context.Context, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[hash]
	if !ok {
		return repository.ErrSessionNotFound
	}
	sess.Revoked = true
	r.s.sessions[hash] = sess
	return nil
}

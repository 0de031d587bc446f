// Package testutil provides in-memory implementations of the repository,
// gateway and mail interfaces for tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atelier-textile/storefront-api/internal/domain/cart"
	"github.com/atelier-textile/storefront-api/internal/domain/customer"
	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/atelier-textile/storefront-api/internal/domain/product"
	"github.com/google/uuid"
)

// OrderRepository is an in-memory order.Repository
type OrderRepository struct {
	mu      sync.Mutex
	orders  map[uuid.UUID]*order.Order
	nextID  uint
	Creates int
	// FailCreate makes CreateWithItems fail with this error
	FailCreate error
}

// NewOrderRepository creates an empty order store
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[uuid.UUID]*order.Order)}
}

func (r *OrderRepository) CreateWithItems(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate != nil {
		return r.FailCreate
	}
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	for i := range o.Items {
		r.nextID++
		o.Items[i].ID = r.nextID
		o.Items[i].CreatedAt = now
	}
	r.orders[o.ID] = cloneOrder(o)
	r.Creates++
	return nil
}

func (r *OrderRepository) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *OrderRepository) FindByCheckoutSession(_ context.Context, sessionID string) (*order.Order, error) {
	return r.findBy(func(o *order.Order) bool { return sessionID != "" && o.CheckoutSessionID == sessionID })
}

func (r *OrderRepository) FindByPaymentIntent(_ context.Context, intentID string) (*order.Order, error) {
	return r.findBy(func(o *order.Order) bool { return intentID != "" && o.PaymentIntentID == intentID })
}

func (r *OrderRepository) findBy(match func(o *order.Order) bool) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if match(o) {
			return cloneOrder(o), nil
		}
	}
	return nil, order.ErrOrderNotFound
}

// Update holds the store lock while fn runs, standing in for a row lock
func (r *OrderRepository) Update(_ context.Context, id uuid.UUID, fn order.Mutator) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	o := cloneOrder(stored)
	changed, err := fn(o)
	if err != nil {
		return nil, err
	}
	if !changed {
		return cloneOrder(stored), nil
	}
	o.StatusHistory = append(o.StatusHistory, o.PendingHistory...)
	o.PendingHistory = nil
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = cloneOrder(o)
	return o, nil
}

func (r *OrderRepository) List(_ context.Context, filter order.ListFilter) ([]order.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []order.Order
	for _, o := range r.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.UserID != nil && (o.UserID == nil || *o.UserID != *filter.UserID) {
			continue
		}
		all = append(all, *cloneOrder(o))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, filter.Offset, filter.Limit), int64(len(all)), nil
}

// Put stores an order as-is
func (r *OrderRepository) Put(o *order.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = cloneOrder(o)
}

// Len returns the number of stored orders
func (r *OrderRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func cloneOrder(o *order.Order) *order.Order {
	c := *o
	c.Items = append([]order.Item(nil), o.Items...)
	c.StatusHistory = append([]order.StatusHistory(nil), o.StatusHistory...)
	c.PendingHistory = append([]order.StatusHistory(nil), o.PendingHistory...)
	if o.UserID != nil {
		uid := *o.UserID
		c.UserID = &uid
	}
	if o.ShippingAddress != nil {
		addr := *o.ShippingAddress
		c.ShippingAddress = &addr
	}
	return &c
}

// CartRecordRepository is an in-memory cart.RecordRepository
type CartRecordRepository struct {
	mu      sync.Mutex
	Records        map[uuid.UUID]*cart.Record
	Deletes        int
	SessionDeletes int
	// FailCreate makes Create fail with this error
	FailCreate error
}

// NewCartRecordRepository creates an empty cart record store
func NewCartRecordRepository() *CartRecordRepository {
	return &CartRecordRepository{Records: make(map[uuid.UUID]*cart.Record)}
}

func (r *CartRecordRepository) FindLatestByUser(_ context.Context, userID uuid.UUID) (*cart.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *cart.Record
	for _, rec := range r.Records {
		if rec.UserID == nil || *rec.UserID != userID {
			continue
		}
		if latest == nil || rec.UpdatedAt.After(latest.UpdatedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, cart.ErrRecordNotFound
	}
	c := *latest
	return &c, nil
}

func (r *CartRecordRepository) Create(_ context.Context, record *cart.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate != nil {
		return r.FailCreate
	}
	now := time.Now().UTC()
	record.CreatedAt, record.UpdatedAt = now, now
	c := *record
	r.Records[record.ID] = &c
	return nil
}

func (r *CartRecordRepository) ReplaceItems(_ context.Context, cartID uuid.UUID, items []cart.RecordItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.Records[cartID]
	if !ok {
		return cart.ErrRecordNotFound
	}
	rec.Items = append([]cart.RecordItem(nil), items...)
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *CartRecordRepository) DeleteByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deletes++
	var n int64
	for id, rec := range r.Records {
		if rec.UserID != nil && *rec.UserID == userID {
			delete(r.Records, id)
			n++
		}
	}
	return n, nil
}

func (r *CartRecordRepository) DeleteBySession(_ context.Context, sessionID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SessionDeletes++
	var n int64
	for id, rec := range r.Records {
		if rec.SessionID == sessionID {
			delete(r.Records, id)
			n++
		}
	}
	return n, nil
}

// CartPersister is an in-memory cart.Persister
type CartPersister struct {
	mu    sync.Mutex
	carts map[string][]cart.Item
	Saves int
}

// NewCartPersister creates an empty session cart store
func NewCartPersister() *CartPersister {
	return &CartPersister{carts: make(map[string][]cart.Item)}
}

func (p *CartPersister) Load(_ context.Context, sessionID string) ([]cart.Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]cart.Item(nil), p.carts[sessionID]...), nil
}

func (p *CartPersister) Save(_ context.Context, sessionID string, items []cart.Item) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.carts[sessionID] = append([]cart.Item(nil), items...)
	p.Saves++
	return nil
}

func (p *CartPersister) Delete(_ context.Context, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.carts, sessionID)
	return nil
}

// Directory is an in-memory customer.Directory
type Directory struct {
	mu       sync.Mutex
	Accounts map[uuid.UUID]*customer.Account
	Profiles map[uuid.UUID]*customer.Profile
}

// NewDirectory creates an empty customer directory
func NewDirectory() *Directory {
	return &Directory{
		Accounts: make(map[uuid.UUID]*customer.Account),
		Profiles: make(map[uuid.UUID]*customer.Profile),
	}
}

func (d *Directory) FindAccount(_ context.Context, id uuid.UUID) (*customer.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	acc, ok := d.Accounts[id]
	if !ok {
		return nil, customer.ErrAccountNotFound
	}
	c := *acc
	return &c, nil
}

func (d *Directory) FindProfile(_ context.Context, userID uuid.UUID) (*customer.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prof, ok := d.Profiles[userID]
	if !ok {
		return nil, customer.ErrProfileNotFound
	}
	c := *prof
	return &c, nil
}

func (d *Directory) SaveProfile(_ context.Context, p *customer.Profile) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := *p
	d.Profiles[p.UserID] = &c
	return nil
}

// ProductRepository is an in-memory product.Repository and
// product.CategoryRepository
type ProductRepository struct {
	mu         sync.Mutex
	products   map[uuid.UUID]*product.Product
	categories map[uuid.UUID]*product.Category
	// ProductRefs and VariantRefs count order items per product/variant
	ProductRefs map[uuid.UUID]int64
	VariantRefs map[uuid.UUID]int64
}

// NewProductRepository creates an empty catalog
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products:    make(map[uuid.UUID]*product.Product),
		categories:  make(map[uuid.UUID]*product.Category),
		ProductRefs: make(map[uuid.UUID]int64),
		VariantRefs: make(map[uuid.UUID]int64),
	}
}

func (r *ProductRepository) ListProducts(_ context.Context, filter product.ListFilter) ([]product.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []product.Product
	for _, p := range r.products {
		if p.Deleted && !filter.IncludeDeleted {
			continue
		}
		if !p.Active && !filter.IncludeInactive {
			continue
		}
		if len(filter.CategoryIDs) > 0 && !inCategories(p.CategoryID, filter.CategoryIDs) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		all = append(all, *r.cloneProduct(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, filter.Offset, filter.Limit), int64(len(all)), nil
}

func (r *ProductRepository) FindProductByID(_ context.Context, id uuid.UUID) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return r.cloneProduct(p), nil
}

func (r *ProductRepository) FindProductBySlug(_ context.Context, slug string) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug {
			return r.cloneProduct(p), nil
		}
	}
	return nil, product.ErrProductNotFound
}

func (r *ProductRepository) CreateProduct(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	for i := range p.Variants {
		if p.Variants[i].ID == uuid.Nil {
			p.Variants[i].ID = uuid.New()
		}
		p.Variants[i].ProductID = p.ID
	}
	r.products[p.ID] = r.cloneProduct(p)
	return nil
}

func (r *ProductRepository) SaveProduct(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.products[p.ID]
	if !ok {
		return product.ErrProductNotFound
	}
	c := *p
	c.Category = nil
	c.Variants = stored.Variants
	c.UpdatedAt = time.Now().UTC()
	r.products[p.ID] = &c
	return nil
}

func (r *ProductRepository) CountProductOrderReferences(_ context.Context, productID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ProductRefs[productID], nil
}

func (r *ProductRepository) SoftDeleteProduct(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return product.ErrProductNotFound
	}
	p.Deleted = true
	p.Active = false
	for i := range p.Variants {
		p.Variants[i].Deleted = true
	}
	return nil
}

func (r *ProductRepository) DeleteProduct(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return product.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *ProductRepository) SaveVariant(_ context.Context, v *product.ProductVariant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[v.ProductID]
	if !ok {
		return product.ErrProductNotFound
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	for i := range p.Variants {
		if p.Variants[i].ID == v.ID {
			p.Variants[i] = *v
			return nil
		}
	}
	p.Variants = append(p.Variants, *v)
	return nil
}

func (r *ProductRepository) CountVariantOrderReferences(_ context.Context, variantID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.VariantRefs[variantID], nil
}

func (r *ProductRepository) SoftDeleteVariant(_ context.Context, id uuid.UUID) error {
	return r.withVariant(id, func(p *product.Product, i int) {
		p.Variants[i].Deleted = true
	})
}

func (r *ProductRepository) DeleteVariant(_ context.Context, id uuid.UUID) error {
	return r.withVariant(id, func(p *product.Product, i int) {
		p.Variants = append(p.Variants[:i], p.Variants[i+1:]...)
	})
}

func (r *ProductRepository) withVariant(id uuid.UUID, fn func(p *product.Product, i int)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		for i := range p.Variants {
			if p.Variants[i].ID == id {
				fn(p, i)
				return nil
			}
		}
	}
	return product.ErrVariantNotFound
}

func (r *ProductRepository) ListCategories(_ context.Context) ([]product.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]product.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *ProductRepository) FindCategoryByID(_ context.Context, id uuid.UUID) (*product.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, product.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *ProductRepository) FindCategoryBySlug(_ context.Context, slug string) (*product.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, product.ErrCategoryNotFound
}

func (r *ProductRepository) CreateCategory(_ context.Context, c *product.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *ProductRepository) SaveCategory(_ context.Context, c *product.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[c.ID]; !ok {
		return product.ErrCategoryNotFound
	}
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *ProductRepository) cloneProduct(p *product.Product) *product.Product {
	c := *p
	c.Variants = append([]product.ProductVariant(nil), p.Variants...)
	if p.CategoryID != nil {
		if cat, ok := r.categories[*p.CategoryID]; ok {
			cp := *cat
			c.Category = &cp
		}
	}
	return &c
}

func inCategories(id *uuid.UUID, ids []uuid.UUID) bool {
	if id == nil {
		return false
	}
	for _, c := range ids {
		if c == *id {
			return true
		}
	}
	return false
}

// page follows the postgres paging scope: a limit <= 0 returns every row
func page[T any](all []T, offset, limit int) []T {
	if limit <= 0 {
		return all
	}
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}

package memstore

import (
	"context"
	"sort"
	"time"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/core/domain"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ============================================================
// Cafes
// ============================================================

type cafeRepo struct{ s *Store }

func (r *cafeRepo) Create(ctx context.Context, cafe *models.Cafe) error {
	return r.s.do(func(st *state) error {
		for _, c := range st.cafes {
			if c.Slug == cafe.Slug {
				return domain.ErrDuplicateSlug
			}
		}
		cafe.ID = st.nextID("cafes")
		cafe.CreatedAt = now()
		cafe.UpdatedAt = cafe.CreatedAt
		st.cafes[cafe.ID] = *cafe
		return nil
	})
}

func (r *cafeRepo) GetByID(ctx context.Context, id uint) (*models.Cafe, error) {
	var out *models.Cafe
	err := r.s.do(func(st *state) error {
		c, ok := st.cafes[id]
		if !ok {
			return domain.ErrCafeNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

// GetForUpdate needs no lock of its own; transactions already hold the store mutex
func (r *cafeRepo) GetForUpdate(ctx context.Context, id uint) (*models.Cafe, error) {
	return r.GetByID(ctx, id)
}

func (r *cafeRepo) Update(ctx context.Context, cafe *models.Cafe) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.cafes[cafe.ID]; !ok {
			return domain.ErrCafeNotFound
		}
		cafe.UpdatedAt = now()
		st.cafes[cafe.ID] = *cafe
		return nil
	})
}

func (r *cafeRepo) List(ctx context.Context, offset, limit int) ([]*models.Cafe, int64, error) {
	var all []*models.Cafe
	err := r.s.do(func(st *state) error {
		for _, c := range st.cafes {
			c := c
			all = append(all, &c)
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, offset, limit), int64(len(all)), err
}

func (r *cafeRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var found bool
	err := r.s.do(func(st *state) error {
		for _, c := range st.cafes {
			if c.Slug == slug {
				found = true
			}
		}
		return nil
	})
	return found, err
}

// ============================================================
// Products
// ============================================================

type productRepo struct{ s *Store }

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	return r.s.do(func(st *state) error {
		product.ID = st.nextID("products")
		product.CreatedAt = now()
		product.UpdatedAt = product.CreatedAt
		for i := range product.Options {
			product.Options[i].ID = st.nextID("modifier_options")
			product.Options[i].ProductID = product.ID
			st.options[product.Options[i].ID] = product.Options[i]
		}
		row := *product
		row.Options = nil
		st.products[product.ID] = row
		return nil
	})
}

func (r *productRepo) withOptions(st *state, p models.Product) *models.Product {
	p.Options = nil
	for _, o := range st.options {
		if o.ProductID == p.ID {
			p.Options = append(p.Options, o)
		}
	}
	sort.Slice(p.Options, func(i, j int) bool { return p.Options[i].ID < p.Options[j].ID })
	return &p
}

func (r *productRepo) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var out *models.Product
	err := r.s.do(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		out = r.withOptions(st, p)
		return nil
	})
	return out, err
}

func (r *productRepo) ListByCafe(ctx context.Context, cafeID uint, onlyAvailable bool) ([]*models.Product, error) {
	var out []*models.Product
	err := r.s.do(func(st *state) error {
		for _, p := range st.products {
			if p.CafeID != cafeID || (onlyAvailable && !p.IsAvailable) {
				continue
			}
			out = append(out, r.withOptions(st, p))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}

func (r *productRepo) UpdateAvailability(ctx context.Context, id uint, available bool) error {
	return r.s.do(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return nil
		}
		p.IsAvailable = available
		p.UpdatedAt = now()
		st.products[id] = p
		return nil
	})
}

func (r *productRepo) DeleteOptions(ctx context.Context, productID uint) error {
	return r.s.do(func(st *state) error {
		for id, o := range st.options {
			if o.ProductID == productID {
				delete(st.options, id)
			}
		}
		return nil
	})
}

func (r *productRepo) Delete(ctx context.Context, id uint) error {
	return r.s.do(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrProductNotFound
		}
		delete(st.products, id)
		return nil
	})
}

// ============================================================
// Customers
// ============================================================

type customerRepo struct{ s *Store }

func (r *customerRepo) Create(ctx context.Context, customer *models.Customer) error {
	return r.s.do(func(st *state) error {
		for _, c := range st.customers {
			if c.UserID == customer.UserID {
				return errors.Wrap(domain.ErrConflict, "customer already exists")
			}
		}
		customer.ID = st.nextID("customers")
		customer.CreatedAt = now()
		customer.UpdatedAt = customer.CreatedAt
		if customer.Tier == "" {
			customer.Tier = string(domain.TierBronze)
		}
		st.customers[customer.ID] = *customer
		return nil
	})
}

func (r *customerRepo) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	var out *models.Customer
	err := r.s.do(func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return domain.ErrCustomerNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *customerRepo) GetByUserID(ctx context.Context, userID uint) (*models.Customer, error) {
	var out *models.Customer
	err := r.s.do(func(st *state) error {
		for _, c := range st.customers {
			if c.UserID == userID {
				c := c
				out = &c
				return nil
			}
		}
		return domain.ErrCustomerNotFound
	})
	return out, err
}

func (r *customerRepo) AddPoints(ctx context.Context, id uint, points int64) (int64, error) {
	var balance int64
	err := r.s.do(func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return domain.ErrCustomerNotFound
		}
		c.PointsBalance += points
		c.LifetimePoints += points
		c.UpdatedAt = now()
		st.customers[id] = c
		balance = c.PointsBalance
		return nil
	})
	return balance, err
}

func (r *customerRepo) DeductPoints(ctx context.Context, id uint, points int64) (int64, error) {
	var balance int64
	err := r.s.do(func(st *state) error {
		c, ok := st.customers[id]
		if !ok || c.PointsBalance < points {
			return domain.ErrInsufficientPoints
		}
		c.PointsBalance -= points
		c.UpdatedAt = now()
		st.customers[id] = c
		balance = c.PointsBalance
		return nil
	})
	return balance, err
}

func (r *customerRepo) UpdateTier(ctx context.Context, id uint, tier string) error {
	return r.s.do(func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return nil
		}
		c.Tier = tier
		st.customers[id] = c
		return nil
	})
}

func (r *customerRepo) RecordOrder(ctx context.Context, id uint, spend decimal.Decimal) error {
	return r.s.do(func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return nil
		}
		c.LifetimeSpend = c.LifetimeSpend.Add(spend)
		c.TotalOrders++
		st.customers[id] = c
		return nil
	})
}

// ============================================================
// Ledger
// ============================================================

type ledgerRepo struct{ s *Store }

func (r *ledgerRepo) Append(ctx context.Context, entry *models.PointTransaction) error {
	return r.s.do(func(st *state) error {
		entry.ID = st.nextID("point_transactions")
		entry.CreatedAt = now()
		st.ledger = append(st.ledger, *entry)
		return nil
	})
}

func (r *ledgerRepo) AllByCustomer(ctx context.Context, customerID uint) ([]*models.PointTransaction, error) {
	var out []*models.PointTransaction
	err := r.s.do(func(st *state) error {
		for _, e := range st.ledger {
			if e.CustomerID == customerID {
				e := e
				out = append(out, &e)
			}
		}
		return nil
	})
	return out, err
}

func (r *ledgerRepo) ListByCustomer(ctx context.Context, customerID uint, offset, limit int) ([]*models.PointTransaction, int64, error) {
	all, err := r.AllByCustomer(ctx, customerID)
	if err != nil {
		return nil, 0, err
	}
	sortByIDDesc(all, func(e *models.PointTransaction) uint { return e.ID })
	return page(all, offset, limit), int64(len(all)), nil
}

// ============================================================
// Vouchers
// ============================================================

type voucherRepo struct{ s *Store }

func (r *voucherRepo) Create(ctx context.Context, voucher *models.Voucher) error {
	return r.s.do(func(st *state) error {
		for _, v := range st.vouchers {
			if v.Code == voucher.Code {
				return errors.Wrap(domain.ErrConflict, "voucher code taken")
			}
		}
		voucher.ID = st.nextID("vouchers")
		voucher.CreatedAt = now()
		voucher.UpdatedAt = voucher.CreatedAt
		st.vouchers[voucher.ID] = *voucher
		return nil
	})
}

func (r *voucherRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var found bool
	err := r.s.do(func(st *state) error {
		for _, v := range st.vouchers {
			if v.Code == code {
				found = true
			}
		}
		return nil
	})
	return found, err
}

func (r *voucherRepo) GetByCodeForUpdate(ctx context.Context, code string) (*models.Voucher, error) {
	var out *models.Voucher
	err := r.s.do(func(st *state) error {
		for _, v := range st.vouchers {
			if v.Code == code {
				v := v
				out = &v
				return nil
			}
		}
		return domain.ErrVoucherNotFound
	})
	return out, err
}

func (r *voucherRepo) MarkUsed(ctx context.Context, id uint, usedAt time.Time, orderID *uint) error {
	return r.s.do(func(st *state) error {
		v, ok := st.vouchers[id]
		if !ok || v.Status != models.VoucherStatusActive {
			return domain.ErrAlreadyUsed
		}
		v.Status = models.VoucherStatusUsed
		v.UsedAt = &usedAt
		v.OrderID = orderID
		v.UpdatedAt = now()
		st.vouchers[id] = v
		return nil
	})
}

func (r *voucherRepo) ListByCustomer(ctx context.Context, customerID uint) ([]*models.Voucher, error) {
	var out []*models.Voucher
	err := r.s.do(func(st *state) error {
		for _, v := range st.vouchers {
			if v.CustomerID == customerID {
				v := v
				out = append(out, &v)
			}
		}
		return nil
	})
	sortByIDDesc(out, func(v *models.Voucher) uint { return v.ID })
	return out, err
}

// ============================================================
// Orders
// ============================================================

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	return r.s.do(func(st *state) error {
		for _, o := range st.orders {
			if o.CafeID == order.CafeID && o.OrderNumber == order.OrderNumber {
				return domain.ErrDuplicateOrderNo
			}
		}
		order.ID = st.nextID("orders")
		order.CreatedAt = now()
		order.UpdatedAt = order.CreatedAt
		for i := range order.Items {
			order.Items[i].ID = st.nextID("order_items")
			order.Items[i].OrderID = order.ID
			st.items[order.Items[i].ID] = order.Items[i]
		}
		row := *order
		row.Items = nil
		st.orders[order.ID] = row
		return nil
	})
}

func (r *orderRepo) withItems(st *state, o models.Order) *models.Order {
	o.Items = nil
	for _, it := range st.items {
		if it.OrderID == o.ID {
			o.Items = append(o.Items, it)
		}
	}
	sort.Slice(o.Items, func(i, j int) bool { return o.Items[i].ID < o.Items[j].ID })
	return &o
}

func (r *orderRepo) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var out *models.Order
	err := r.s.do(func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		out = r.withItems(st, o)
		return nil
	})
	return out, err
}

func (r *orderRepo) GetByPublicID(ctx context.Context, publicID string) (*models.Order, error) {
	var out *models.Order
	err := r.s.do(func(st *state) error {
		for _, o := range st.orders {
			if o.PublicID == publicID {
				out = r.withItems(st, o)
				return nil
			}
		}
		return domain.ErrOrderNotFound
	})
	return out, err
}

func (r *orderRepo) MaxNumberByCafe(ctx context.Context, cafeID uint) (int64, error) {
	var highest int64
	err := r.s.do(func(st *state) error {
		for _, o := range st.orders {
			if o.CafeID != cafeID {
				continue
			}
			if n, ok := domain.OrderNumberSeq(o.OrderNumber); ok && n > highest {
				highest = n
			}
		}
		return nil
	})
	return highest, err
}

func (r *orderRepo) list(match func(o models.Order) bool, offset, limit int) ([]*models.Order, int64, error) {
	var all []*models.Order
	err := r.s.do(func(st *state) error {
		for _, o := range st.orders {
			if match(o) {
				all = append(all, r.withItems(st, o))
			}
		}
		return nil
	})
	sortByIDDesc(all, func(o *models.Order) uint { return o.ID })
	return page(all, offset, limit), int64(len(all)), err
}

func (r *orderRepo) ListByCafe(ctx context.Context, cafeID uint, status string, offset, limit int) ([]*models.Order, int64, error) {
	return r.list(func(o models.Order) bool {
		return o.CafeID == cafeID && (status == "" || o.Status == status)
	}, offset, limit)
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID uint, offset, limit int) ([]*models.Order, int64, error) {
	return r.list(func(o models.Order) bool {
		return o.CustomerID != nil && *o.CustomerID == customerID
	}, offset, limit)
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint, from, to string, completedAt *time.Time) error {
	return r.s.do(func(st *state) error {
		o, ok := st.orders[id]
		if !ok || o.Status != from {
			return errors.Wrap(domain.ErrConflict, "order status changed concurrently")
		}
		o.Status = to
		if completedAt != nil {
			t := *completedAt
			o.CompletedAt = &t
		}
		o.UpdatedAt = now()
		st.orders[id] = o
		return nil
	})
}

func (r *voucherRepo) ExpireBefore(ctx context.Context, at time.Time) (int64, error) {
	var n int64
	err := r.s.do(func(st *state) error {
		for id, v := range st.vouchers {
			if v.Status == models.VoucherStatusActive && !at.Before(v.ExpiresAt) {
				v.Status = models.VoucherStatusExpired
				v.UpdatedAt = now()
				st.vouchers[id] = v
				n++
			}
		}
		return nil
	})
	return n, err
}

package services

import (
	"context"
	"testing"
	"time"

	"cafe-ledger/internal/adapters/persistence/memstore"
	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/core/domain"
	"cafe-ledger/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	ctx      context.Context
	store    *memstore.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	ledger    *LedgerService
	vouchers  *VoucherService
	orders    *OrderService
	cafes     *CafeService
	products  *ProductService
	customers *CustomerService

	cafe   *models.Cafe
	latte  *models.Product
	muffin *models.Product
}

func testCatalog(t *testing.T) *domain.RewardCatalog {
	t.Helper()
	catalog, err := domain.NewRewardCatalog([]domain.RewardDefinition{
		{ID: "free-drink", Name: "Free Drink", Type: domain.VoucherFreeDrink, Value: dec("5.00"), PointsCost: 500},
		{ID: "ten-off", Name: "10% Off", Type: domain.VoucherPercentageOff, Value: dec("10"), PointsCost: 300},
		{ID: "five-dollars", Name: "$5 Off", Type: domain.VoucherFixedAmount, Value: dec("5.00"), PointsCost: 400},
	})
	require.NoError(t, err)
	return catalog
}

// newTestEnv wires every service over an empty memstore and seeds one cafe
// (tax 10%, 1 point per dollar, 100 points per dollar of discount) with a
// 5.00 latte and a 3.00 muffin.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		ctx:      context.Background(),
		store:    memstore.New(),
		registry: prometheus.NewRegistry(),
	}
	m := metrics.New(env.registry)
	env.metrics = m

	env.ledger = NewLedgerService(env.store, m)
	env.vouchers = NewVoucherService(env.store, env.ledger, testCatalog(t), 90*24*time.Hour, m)
	env.orders = NewOrderService(env.store, env.ledger, env.vouchers, nil, m)
	env.cafes = NewCafeService(env.store)
	env.products = NewProductService(env.store)
	env.customers = NewCustomerService(env.store)

	var err error
	env.cafe, err = env.cafes.Create(env.ctx, CreateCafeInput{
		Name:    "Bean There",
		TaxRate: dec("0.10"),
	})
	require.NoError(t, err)

	env.latte, err = env.products.Create(env.ctx, env.cafe.ID, CreateProductInput{
		Name:     "Latte",
		Category: "Coffee",
		Price:    dec("5.00"),
		Options:  []OptionInput{{Name: "Oat milk", PriceDelta: dec("0.50")}},
	})
	require.NoError(t, err)

	env.muffin, err = env.products.Create(env.ctx, env.cafe.ID, CreateProductInput{
		Name:     "Muffin",
		Category: "Bakery",
		Price:    dec("3.00"),
	})
	require.NoError(t, err)

	return env
}

func (e *testEnv) newCustomer(t *testing.T, userID uint, points int64) *models.Customer {
	t.Helper()
	c, err := e.customers.GetOrCreate(e.ctx, userID, "Customer")
	require.NoError(t, err)
	if points > 0 {
		_, err = e.ledger.Earn(e.ctx, PointsInput{CustomerID: c.ID, Points: points, Description: "seed"})
		require.NoError(t, err)
	}
	return c
}

func (e *testEnv) customer(t *testing.T, id uint) *models.Customer {
	t.Helper()
	c, err := e.store.Customers().GetByID(e.ctx, id)
	require.NoError(t, err)
	return c
}

func (e *testEnv) ledgerEntries(t *testing.T, customerID uint) []*models.PointTransaction {
	t.Helper()
	entries, err := e.store.Ledger().AllByCustomer(e.ctx, customerID)
	require.NoError(t, err)
	return entries
}

func (e *testEnv) counter(t *testing.T, name, label, value string) float64 {
	t.Helper()
	families, err := e.registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == label && l.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func uintPtr(v uint) *uint {
	return &v
}

package services

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"cafe-ledger/internal/adapters/persistence/models"
	"cafe-ledger/internal/adapters/persistence/repositories"
	"cafe-ledger/internal/core/domain"
	"cafe-ledger/internal/pkg/metrics"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	// No I, O, 0 or 1 so codes survive being read aloud at the counter
	voucherAlphabet    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	voucherCodeLength  = 8
	maxVoucherAttempts = 5
)

// VoucherService issues and redeems reward vouchers
type VoucherService struct {
	store    repositories.Store
	ledger   *LedgerService
	catalog  *domain.RewardCatalog
	validity time.Duration
	metrics  *metrics.Metrics

	newCode func() (string, error)
	now     func() time.Time
}

// NewVoucherService creates a new voucher service
func NewVoucherService(
	store repositories.Store,
	ledger *LedgerService,
	catalog *domain.RewardCatalog,
	validity time.Duration,
	m *metrics.Metrics,
) *VoucherService {
	return &VoucherService{
		store:    store,
		ledger:   ledger,
		catalog:  catalog,
		validity: validity,
		metrics:  m,
		newCode:  generateVoucherCode,
		now:      time.Now,
	}
}

// ClaimInput is a request to exchange points for a reward
type ClaimInput struct {
	CustomerID uint   `json:"customer_id"`
	RewardID   string `json:"reward_id"`
}

// ClaimResult is returned after a successful claim
type ClaimResult struct {
	VoucherCode string          `json:"voucher_code"`
	ExpiresAt   time.Time       `json:"expires_at"`
	NewBalance  int64           `json:"new_balance"`
	Voucher     *models.Voucher `json:"voucher"`
}

// RedeemResult is returned after a voucher is used
type RedeemResult struct {
	Applied bool               `json:"applied"`
	Code    string             `json:"code"`
	Type    domain.VoucherType `json:"type"`
	Value   decimal.Decimal    `json:"value"`
}

// Catalog returns the claimable rewards
func (s *VoucherService) Catalog() []domain.RewardDefinition {
	return s.catalog.All()
}

// Claim spends points on a reward and issues its voucher
func (s *VoucherService) Claim(ctx context.Context, input ClaimInput) (*ClaimResult, error) {
	reward, ok := s.catalog.Lookup(strings.TrimSpace(input.RewardID))
	if !ok {
		return nil, domain.ErrRewardNotFound
	}

	var result *ClaimResult
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		// 1. Customer and balance
		customer, err := tx.Customers().GetByID(ctx, input.CustomerID)
		if err != nil {
			return err
		}
		if customer.PointsBalance < reward.PointsCost {
			return domain.ErrInsufficientPoints
		}

		// 2. Voucher row with a fresh code
		issuedAt := s.now()
		voucher := &models.Voucher{
			CustomerID: customer.ID,
			RewardID:   reward.ID,
			Type:       string(reward.Type),
			Value:      reward.Value,
			PointsCost: reward.PointsCost,
			Status:     models.VoucherStatusActive,
			ExpiresAt:  issuedAt.Add(s.validity),
		}
		if err := s.createWithUniqueCode(ctx, tx, voucher); err != nil {
			return err
		}

		// 3. Pay for it through the ledger
		paid, err := s.ledger.redeem(ctx, tx, PointsInput{
			CustomerID:  customer.ID,
			Points:      reward.PointsCost,
			Description: "Voucher claim: " + reward.Name,
		})
		if err != nil {
			return err
		}

		result = &ClaimResult{
			VoucherCode: voucher.Code,
			ExpiresAt:   voucher.ExpiresAt,
			NewBalance:  paid.NewBalance,
			Voucher:     voucher,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Points(string(domain.TxRedeem), reward.PointsCost)
	s.metrics.Voucher("claimed")
	log.Info().
		Uint("customer_id", input.CustomerID).
		Str("reward_id", reward.ID).
		Msg("voucher claimed")
	return result, nil
}

// createWithUniqueCode inserts voucher, drawing a new code on every collision
func (s *VoucherService) createWithUniqueCode(ctx context.Context, tx repositories.Store, voucher *models.Voucher) error {
	for attempt := 1; attempt <= maxVoucherAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return errors.Wrap(err, "generate voucher code")
		}

		taken, err := tx.Vouchers().ExistsByCode(ctx, code)
		if err != nil {
			return err
		}
		if taken {
			log.Debug().Int("attempt", attempt).Msg("voucher code collision")
			continue
		}

		voucher.Code = code
		err = tx.Vouchers().Create(ctx, voucher)
		if errors.Is(err, domain.ErrConflict) {
			log.Debug().Int("attempt", attempt).Msg("voucher code collision on insert")
			continue
		}
		return err
	}
	return domain.ErrCodeExhausted
}

// Redeem uses a voucher outside of an order
func (s *VoucherService) Redeem(ctx context.Context, code string) (*RedeemResult, error) {
	var result *RedeemResult
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		voucher, err := s.lockRedeemable(ctx, tx, code)
		if err != nil {
			return err
		}
		if err := s.markUsed(ctx, tx, voucher, nil); err != nil {
			return err
		}
		result = &RedeemResult{
			Applied: true,
			Code:    voucher.Code,
			Type:    domain.VoucherType(voucher.Type),
			Value:   voucher.Value,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Voucher("redeemed")
	return result, nil
}

// lockRedeemable loads and locks a voucher that can still be used
func (s *VoucherService) lockRedeemable(ctx context.Context, tx repositories.Store, code string) (*models.Voucher, error) {
	code = normalizeVoucherCode(code)
	if code == "" {
		return nil, domain.Invalid("code", "is required")
	}

	voucher, err := tx.Vouchers().GetByCodeForUpdate(ctx, code)
	if err != nil {
		return nil, err
	}

	switch voucher.EffectiveStatus(s.now()) {
	case models.VoucherStatusUsed:
		return nil, domain.ErrAlreadyUsed
	case models.VoucherStatusExpired:
		return nil, domain.ErrExpired
	}
	return voucher, nil
}

func (s *VoucherService) markUsed(ctx context.Context, tx repositories.Store, voucher *models.Voucher, orderID *uint) error {
	usedAt := s.now()
	if err := tx.Vouchers().MarkUsed(ctx, voucher.ID, usedAt, orderID); err != nil {
		return err
	}
	voucher.Status = models.VoucherStatusUsed
	voucher.UsedAt = &usedAt
	voucher.OrderID = orderID
	return nil
}

// ListForCustomer returns a customer's vouchers with expiry resolved
func (s *VoucherService) ListForCustomer(ctx context.Context, customerID uint) ([]*models.Voucher, error) {
	vouchers, err := s.store.Vouchers().ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, v := range vouchers {
		v.Status = v.EffectiveStatus(now)
	}
	return vouchers, nil
}

// ExpireLapsed stores EXPIRED on every ACTIVE voucher past its expiry and
// returns how many changed. Reads never depend on it having run.
func (s *VoucherService) ExpireLapsed(ctx context.Context) (int64, error) {
	n, err := s.store.Vouchers().ExpireBefore(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.metrics.VouchersExpired(n)
		log.Info().Int64("vouchers", n).Msg("expired lapsed vouchers")
	}
	return n, nil
}

func normalizeVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// generateVoucherCode draws voucherCodeLength characters from crypto/rand
func generateVoucherCode() (string, error) {
	max := big.NewInt(int64(len(voucherAlphabet)))
	b := make([]byte, voucherCodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = voucherAlphabet[n.Int64()]
	}
	return string(b), nil
}

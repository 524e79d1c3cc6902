package config

import (
	"fmt"
	"os"

	"cafe-ledger/internal/core/domain"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type rewardFile struct {
	Rewards []rewardEntry `yaml:"rewards"`
}

type rewardEntry struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Value       string `yaml:"value"`
	PointsCost  int64  `yaml:"points_cost"`
	Description string `yaml:"description"`
}

// DefaultRewards is the catalog used when no file is configured
func DefaultRewards() []domain.RewardDefinition {
	return []domain.RewardDefinition{
		{
			ID:          "free-drink",
			Name:        "Free Drink",
			Type:        domain.VoucherFreeDrink,
			Value:       decimal.RequireFromString("5.00"),
			PointsCost:  500,
			Description: "Any regular drink on the house",
		},
		{
			ID:          "ten-percent-off",
			Name:        "10% Off",
			Type:        domain.VoucherPercentageOff,
			Value:       decimal.NewFromInt(10),
			PointsCost:  300,
			Description: "10% off your next order",
		},
		{
			ID:          "five-dollars-off",
			Name:        "$5 Off",
			Type:        domain.VoucherFixedAmount,
			Value:       decimal.RequireFromString("5.00"),
			PointsCost:  400,
			Description: "$5 off your next order",
		},
		{
			ID:          "free-upgrade",
			Name:        "Free Size Upgrade",
			Type:        domain.VoucherFreeUpgrade,
			Value:       decimal.RequireFromString("1.00"),
			PointsCost:  150,
			Description: "Upgrade any drink one size",
		},
	}
}

// LoadRewardCatalog builds the catalog from path, or the defaults when path is empty
func LoadRewardCatalog(path string) (*domain.RewardCatalog, error) {
	if path == "" {
		return domain.NewRewardCatalog(DefaultRewards())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rewards catalog: %w", err)
	}
	catalog, err := ParseRewardCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("rewards catalog %s: %w", path, err)
	}

	log.Info().Str("path", path).Int("rewards", len(catalog.All())).Msg("rewards catalog loaded")
	return catalog, nil
}

// ParseRewardCatalog decodes a YAML catalog document
func ParseRewardCatalog(data []byte) (*domain.RewardCatalog, error) {
	var file rewardFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(file.Rewards) == 0 {
		return nil, domain.Invalid("rewards", "at least one reward is required")
	}

	defs := make([]domain.RewardDefinition, 0, len(file.Rewards))
	for i, r := range file.Rewards {
		value := decimal.Zero
		if r.Value != "" {
			v, err := decimal.NewFromString(r.Value)
			if err != nil {
				return nil, domain.Invalid(fmt.Sprintf("rewards[%d].value", i), "must be a decimal number")
			}
			value = v
		}
		defs = append(defs, domain.RewardDefinition{
			ID:          r.ID,
			Name:        r.Name,
			Type:        domain.VoucherType(r.Type),
			Value:       value,
			PointsCost:  r.PointsCost,
			Description: r.Description,
		})
	}
	return domain.NewRewardCatalog(defs)
}

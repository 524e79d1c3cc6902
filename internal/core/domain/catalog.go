package domain

import (
	"fmt"
	"strings"
)

// RewardCatalog is the fixed set of rewards customers can claim.
// It is built once at startup and never mutated.
type RewardCatalog struct {
	entries []RewardDefinition
	byID    map[string]RewardDefinition
}

// NewRewardCatalog validates definitions and freezes them
func NewRewardCatalog(defs []RewardDefinition) (*RewardCatalog, error) {
	c := &RewardCatalog{
		entries: make([]RewardDefinition, 0, len(defs)),
		byID:    make(map[string]RewardDefinition, len(defs)),
	}
	for i, d := range defs {
		d.ID = strings.TrimSpace(d.ID)
		switch {
		case d.ID == "":
			return nil, Invalid(fmt.Sprintf("rewards[%d].id", i), "is required")
		case !d.Type.Valid():
			return nil, Invalid(fmt.Sprintf("rewards[%d].type", i), fmt.Sprintf("unknown voucher type %q", d.Type))
		case d.PointsCost <= 0:
			return nil, Invalid(fmt.Sprintf("rewards[%d].points_cost", i), "must be greater than zero")
		case d.Value.IsNegative():
			return nil, Invalid(fmt.Sprintf("rewards[%d].value", i), "must not be negative")
		case d.Type == VoucherPercentageOff && d.Value.GreaterThan(hundred):
			return nil, Invalid(fmt.Sprintf("rewards[%d].value", i), "percentage cannot exceed 100")
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, Invalid(fmt.Sprintf("rewards[%d].id", i), fmt.Sprintf("duplicate id %q", d.ID))
		}
		c.entries = append(c.entries, d)
		c.byID[d.ID] = d
	}
	return c, nil
}

// All returns a copy of every definition in declaration order
func (c *RewardCatalog) All() []RewardDefinition {
	return append([]RewardDefinition(nil), c.entries...)
}

// Lookup finds a definition by ID
func (c *RewardCatalog) Lookup(id string) (RewardDefinition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

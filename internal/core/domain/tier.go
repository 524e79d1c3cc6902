package domain

// Tier is a loyalty rank derived from lifetime points
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

// Tier thresholds in lifetime points
const (
	SilverThreshold   int64 = 1000
	GoldThreshold     int64 = 5000
	PlatinumThreshold int64 = 15000
)

// TierFor classifies lifetime points. Thresholds are checked highest first.
func TierFor(lifetimePoints int64) Tier {
	switch {
	case lifetimePoints >= PlatinumThreshold:
		return TierPlatinum
	case lifetimePoints >= GoldThreshold:
		return TierGold
	case lifetimePoints >= SilverThreshold:
		return TierSilver
	}
	return TierBronze
}

// Rank orders tiers BRONZE < SILVER < GOLD < PLATINUM
func (t Tier) Rank() int {
	switch t {
	case TierSilver:
		return 1
	case TierGold:
		return 2
	case TierPlatinum:
		return 3
	}
	return 0
}

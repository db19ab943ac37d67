package resources

// UsageTier buckets a counter's used/ceiling percentage. Tiers are
// non-overlapping and ordered; raising usage against a fixed ceiling never
// lowers the tier.
type UsageTier int

const (
	TierNormal UsageTier = iota
	TierElevated
	TierHigh
	TierCritical
)

func (t UsageTier) String() string {
	switch t {
	case TierElevated:
		return "elevated"
	case TierHigh:
		return "high"
	case TierCritical:
		return "critical"
	default:
		return "normal"
	}
}

// TierFor classifies usage of a counter. A zero or negative ceiling is
// treated as unlimited.
func TierFor(c Counter) UsageTier {
	if c.Max <= 0 {
		return TierNormal
	}
	pct := float64(c.Used) * 100 / float64(c.Max)
	switch {
	case pct >= 90:
		return TierCritical
	case pct >= 75:
		return TierHigh
	case pct >= 50:
		return TierElevated
	default:
		return TierNormal
	}
}

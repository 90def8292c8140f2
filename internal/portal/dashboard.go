package portal

import "github.com/shopspring/decimal"

// Dashboard is the public transparency view. The figures are display data.
type Dashboard struct {
	AwardedTotal    decimal.Decimal
	MBEShare        int
	MBEGoal         int
	JobsSupported   int
	LocalMultiplier decimal.Decimal
	Comparison      []ValueComparison
}

// ValueComparison contrasts a bid amount with the money it keeps in the local economy.
type ValueComparison struct {
	Label      string
	Bid        decimal.Decimal
	Multiplier decimal.Decimal
}

// Impact is the bid scaled by its local economic multiplier.
func (v ValueComparison) Impact() decimal.Decimal {
	return v.Bid.Mul(v.Multiplier)
}

var (
	localMultiplier      = decimal.RequireFromString("1.8")
	outOfStateMultiplier = decimal.RequireFromString("1.05")
)

func defaultDashboard() Dashboard {
	return Dashboard{
		AwardedTotal:    decimal.NewFromInt(2_400_000),
		MBEShare:        47,
		MBEGoal:         60,
		JobsSupported:   150,
		LocalMultiplier: localMultiplier,
		Comparison: []ValueComparison{
			{Label: "Out-of-state vendor", Bid: decimal.NewFromInt(12_000), Multiplier: outOfStateMultiplier},
			{Label: "Local MBE vendor", Bid: decimal.NewFromInt(14_500), Multiplier: localMultiplier},
		},
	}
}

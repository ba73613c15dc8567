package domain

import "math"

// SettlementLine is one participant's share of the day's shared order.
type SettlementLine struct {
	UserID        string  `json:"userId"`
	BaseTotal     float64 `json:"baseTotal"`
	DiscountShare float64 `json:"discountShare"`
	DeliveryShare float64 `json:"deliveryShare"`
	FinalTotal    float64 `json:"finalTotal"`
}

// SettlementSummary is the day's totals across all participants.
type SettlementSummary struct {
	BaseTotal       float64 `json:"baseTotal"`
	DiscountPercent float64 `json:"discountPercent"`
	DiscountAmount  float64 `json:"discountAmount"`
	DeliveryFee     float64 `json:"deliveryFee"`
	FinalTotal      float64 `json:"finalTotal"`
}

// Settlement is the result of one settlement pass: one line per
// participant plus the global summary.
type Settlement struct {
	Lines   []SettlementLine  `json:"users"`
	Summary SettlementSummary `json:"summary"`
}

// Settle computes each participant's share of the day's bill.
//
// The total discount is round(baseTotal × percent / 100) and is
// distributed proportionally to each user's share of the base total,
// rounding per user with math.Round (half away from zero). The delivery
// fee is split evenly and left unrounded so the shares reconstruct the
// fee exactly. Per-user discount rounding may drift from the total by at
// most one currency unit per user; that drift is accepted.
//
// Settle is pure and total: it assumes percent is within [0,100] and the
// fee is non-negative (the store normalizes settings on read), and an
// empty input yields a zero summary with no lines.
func Settle(totals []UserTotal, s Settings) Settlement {
	if len(totals) == 0 {
		return Settlement{
			Lines:   []SettlementLine{},
			Summary: SettlementSummary{DiscountPercent: s.DiscountPercent},
		}
	}

	var base float64
	for _, t := range totals {
		base += t.BaseTotal
	}

	discount := math.Round(base * s.DiscountPercent / 100)
	share := s.DeliveryFee / float64(len(totals))

	lines := make([]SettlementLine, 0, len(totals))
	for _, t := range totals {
		var d float64
		if base > 0 {
			d = math.Round(t.BaseTotal / base * discount)
		}
		lines = append(lines, SettlementLine{
			UserID:        t.UserID,
			BaseTotal:     t.BaseTotal,
			DiscountShare: d,
			DeliveryShare: share,
			FinalTotal:    t.BaseTotal - d + share,
		})
	}

	return Settlement{
		Lines: lines,
		Summary: SettlementSummary{
			BaseTotal:       base,
			DiscountPercent: s.DiscountPercent,
			DiscountAmount:  discount,
			DeliveryFee:     s.DeliveryFee,
			FinalTotal:      base - discount + s.DeliveryFee,
		},
	}
}

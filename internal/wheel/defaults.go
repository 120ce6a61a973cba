package wheel

import "time"

const (
	DefaultPointerDeg   = 90
	DefaultStopTweakDeg = 9
	DefaultMinTurns     = 4
	DefaultMaxTurns     = 6
	DefaultSpinDuration = 4 * time.Second
	DefaultFixedSlice   = 2
)

// DefaultPrizes is the stock catalog
func DefaultPrizes() []Prize {
	return []Prize{
		{ID: 1, Name: "1000 AED GIFT CARD", ColorHint: "#F5C518", Weight: 0.05},
		{ID: 2, Name: "750 AED GIFT CARD", ColorHint: "#E0E0E0", Weight: 0.1},
		{ID: 3, Name: "500 AED GIFT CARD", ColorHint: "#CD7F32", Weight: 0.25},
		{ID: 4, Name: "250 AED GIFT CARD", ColorHint: "#FFFFFF", Weight: 0.6},
	}
}

// DefaultSlices is the stock ten-slice layout
func DefaultSlices() []Slice {
	return []Slice{
		{PrizeID: 1, Label: []string{"AED 1000", "PREPAID", "GIFT CARD"}},
		{PrizeID: 4, Label: []string{"AED 250", "PREPAID", "GIFT CARD"}},
		{PrizeID: 4, Label: []string{"AED 250", "PREPAID", "GIFT CARD"}},
		{PrizeID: 2, Label: []string{"AED 750", "PREPAID", "GIFT CARD"}},
		{PrizeID: 4, Label: []string{"AED 250", "PREPAID", "GIFT CARD"}},
		{PrizeID: 4, Label: []string{"AED 250", "PREPAID", "GIFT CARD"}},
		{PrizeID: 4, Label: []string{"AED 250", "PREPAID", "GIFT CARD"}},
		{PrizeID: 3, Label: []string{"AED 500", "PREPAID", "GIFT CARD"}},
		{PrizeID: 4, Label: []string{"AED 250", "PREPAID", "GIFT CARD"}},
		{PrizeID: 4, Label: []string{"AED 250", "PREPAID", "GIFT CARD"}},
	}
}

// DefaultTable is the stock catalog bound to the stock slices
func DefaultTable() *Table {
	return &Table{
		Prizes: DefaultPrizes(),
		Slices: DefaultSlices(),
	}
}

// DefaultGeometry matches DefaultSlices
func DefaultGeometry() Geometry {
	return Geometry{
		SliceCount:   10,
		PointerDeg:   DefaultPointerDeg,
		StopTweakDeg: DefaultStopTweakDeg,
	}
}

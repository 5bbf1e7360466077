package models

// CandlesForRange estimates how many daily bars a Yahoo-style range covers.
func CandlesForRange(rng string) int {
	tradingDays := 0

	switch rng {
	case "5d":
		tradingDays = 5
	case "1mo":
		tradingDays = 21
	case "3mo":
		tradingDays = 63
	case "6mo":
		tradingDays = 126
	case "1y":
		tradingDays = 252
	case "2y":
		tradingDays = 504
	case "5y":
		tradingDays = 1260
	default:
		tradingDays = 126
	}

	// small buffer for holidays on the provider side
	return int(float64(tradingDays) * 1.1)
}

package calculate

import "github.com/pookan/stockbot/models"

// RSI computes the Wilder-smoothed relative strength index.
// Requires at least period+1 closes.
func RSI(closes []float64, period int) models.Reading {
	if period <= 0 || len(closes) < period+1 {
		return models.Insufficient()
	}

	var gains, losses float64
	// Initial averages over the first `period` changes
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	// Wilder smoothing for the rest of the data
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return models.Value(50.0) // flat series
		}
		return models.Value(100.0)
	}

	rs := avgGain / avgLoss
	return models.Value(100.0 - (100.0 / (1.0 + rs)))
}

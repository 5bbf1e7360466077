package calculate

import "github.com/pookan/stockbot/models"

// MACD computes the MACD line, signal line and histogram. It needs
// slowPeriod+signalPeriod-1 closes: slowPeriod to seed the slow EMA and
// signalPeriod MACD values to seed the signal line.
func MACD(closes []float64, fastPeriod, slowPeriod, signalPeriod int) models.MACD {
	if fastPeriod <= 0 || slowPeriod <= fastPeriod || signalPeriod <= 0 ||
		len(closes) < slowPeriod+signalPeriod-1 {
		return models.MACD{
			Line:      models.Insufficient(),
			Signal:    models.Insufficient(),
			Histogram: models.Insufficient(),
		}
	}

	fastEMA := EMASeries(closes, fastPeriod)
	slowEMA := EMASeries(closes, slowPeriod)

	// fastEMA starts at closes[fast-1], slowEMA at closes[slow-1]
	offset := slowPeriod - fastPeriod
	macdLine := make([]float64, len(slowEMA))
	for i := range slowEMA {
		macdLine[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signalLine := EMASeries(macdLine, signalPeriod)

	line := macdLine[len(macdLine)-1]
	signal := signalLine[len(signalLine)-1]

	return models.MACD{
		Line:      models.Value(line),
		Signal:    models.Value(signal),
		Histogram: models.Value(line - signal),
	}
}

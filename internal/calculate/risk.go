package calculate

import (
	"math"

	"github.com/pookan/stockbot/models"
)

const (
	tradingDaysPerYear = 252
	minBetaReturns     = 10
)

// Volatility returns the annualized standard deviation of daily returns.
func Volatility(closes []float64) models.Reading {
	returns := dailyReturns(closes)
	if len(returns) < 2 {
		return models.Insufficient()
	}
	sd := sampleStdDev(returns, average(returns))
	return models.Value(sd * math.Sqrt(tradingDaysPerYear))
}

// Beta regresses the asset's daily returns on the benchmark's over the
// trading days both series share.
func Beta(asset, benchmark []models.Candle) models.Reading {
	if len(asset) < 2 || len(benchmark) < 2 {
		return models.Insufficient()
	}

	benchByDay := make(map[string]float64, len(benchmark))
	for _, c := range benchmark {
		benchByDay[dayKey(c)] = c.Close
	}

	// Aligned closes, both chronological
	var a, b []float64
	for _, c := range asset {
		if bc, ok := benchByDay[dayKey(c)]; ok {
			a = append(a, c.Close)
			b = append(b, bc)
		}
	}

	// Returns are paired per day; a zero previous close on either side
	// drops that day from both series.
	var ra, rb []float64
	for i := 1; i < len(a); i++ {
		if a[i-1] == 0 || b[i-1] == 0 {
			continue
		}
		ra = append(ra, a[i]/a[i-1]-1)
		rb = append(rb, b[i]/b[i-1]-1)
	}
	if len(ra) < minBetaReturns {
		return models.Insufficient()
	}

	meanA, meanB := average(ra), average(rb)
	var cov, varB float64
	for i := range ra {
		cov += (ra[i] - meanA) * (rb[i] - meanB)
		varB += (rb[i] - meanB) * (rb[i] - meanB)
	}
	if varB == 0 {
		return models.Insufficient()
	}
	return models.Value(cov / varB)
}

func dailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	return returns
}

func dayKey(c models.Candle) string {
	return c.Time.UTC().Format("2006-01-02")
}

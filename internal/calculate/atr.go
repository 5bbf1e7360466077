package calculate

import (
	"math"

	"github.com/pookan/stockbot/models"
)

const ADXPeriod = 14

// trueRanges returns one true range per candle after the first.
func trueRanges(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	ranges := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prevClose := candles[i-1].Close
		highLow := candles[i].High - candles[i].Low
		highPrev := math.Abs(candles[i].High - prevClose)
		lowPrev := math.Abs(candles[i].Low - prevClose)
		ranges = append(ranges, math.Max(highLow, math.Max(highPrev, lowPrev)))
	}
	return ranges
}

// ATR is the simple average of the last period true ranges.
func ATR(candles []models.Candle, period int) models.Reading {
	ranges := trueRanges(candles)
	if period <= 0 || len(ranges) < period {
		return models.Insufficient()
	}
	return models.Value(average(ranges[len(ranges)-period:]))
}

// ADX returns the average directional index with +DI and -DI, using
// Wilder smoothing. It needs 2*period candles.
func ADX(candles []models.Candle, period int) (adx, plusDI, minusDI models.Reading) {
	none := models.Insufficient()
	if period <= 0 || len(candles) < 2*period {
		return none, none, none
	}

	n := len(candles) - 1
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < len(candles); i++ {
		up := candles[i].High - candles[i-1].High
		down := candles[i-1].Low - candles[i].Low
		if up > down && up > 0 {
			plusDM[i-1] = up
		}
		if down > up && down > 0 {
			minusDM[i-1] = down
		}
	}
	tr := trueRanges(candles)

	var smoothPlus, smoothMinus, smoothTR float64
	for i := 0; i < period; i++ {
		smoothPlus += plusDM[i]
		smoothMinus += minusDM[i]
		smoothTR += tr[i]
	}

	di := func() (float64, float64, float64) {
		if smoothTR == 0 {
			return 0, 0, 0
		}
		p := smoothPlus / smoothTR * 100
		m := smoothMinus / smoothTR * 100
		if p+m == 0 {
			return p, m, 0
		}
		return p, m, math.Abs(p-m) / (p + m) * 100
	}

	p, m, dx := di()
	value := dx
	for i := period; i < n; i++ {
		smoothPlus = smoothPlus - smoothPlus/float64(period) + plusDM[i]
		smoothMinus = smoothMinus - smoothMinus/float64(period) + minusDM[i]
		smoothTR = smoothTR - smoothTR/float64(period) + tr[i]

		p, m, dx = di()
		value = (value*float64(period-1) + dx) / float64(period)
	}

	return models.Value(value), models.Value(p), models.Value(m)
}

package anomaly

import (
	"fmt"
	"math"

	"github.com/pookan/stockbot/internal/calculate"
	"github.com/pookan/stockbot/models"
)

// Anomaly kinds
const (
	KindPriceSpike         = "price spike"
	KindVolumeSpike        = "volume spike"
	KindGap                = "gap"
	KindVolatilityBreakout = "volatility breakout"
)

const (
	minCandles        = 21
	priceSpikeATRs    = 3.0
	volumeSpikeRatio  = 3.0
	gapATRs           = 1.0
	breakoutATRRatio  = 2.5
	volumeLookback    = 10
	baselineATRPeriod = 50
)

// Detect checks the most recent bar against the preceding ones for price
// or volume spikes, gaps and a jump in volatility.
func Detect(candles []models.Candle) models.Anomaly {
	var result models.Anomaly
	if len(candles) < minCandles {
		return result
	}

	current := candles[len(candles)-1]
	prev := candles[len(candles)-2]

	atr10 := calculate.ATR(candles, 10)
	baseline := calculate.ATR(candles, min(baselineATRPeriod, len(candles)-1))

	add := func(kind string, score float64, detail string) {
		if result.Detected() {
			result.Score = math.Min(math.Max(result.Score, score)+0.1, 1)
		} else {
			result.Score = math.Min(score, 1)
		}
		result.Kinds = append(result.Kinds, kind)
		result.Details = append(result.Details, detail)
	}

	if atr10.OK && atr10.Value > 0 {
		if move := math.Abs(current.Close-prev.Close) / atr10.Value; move > priceSpikeATRs {
			add(KindPriceSpike, move/priceSpikeATRs-0.5, fmt.Sprintf("price moved %.1f times the average range", move))
		}

		var gap float64
		switch {
		case current.Low > prev.Close:
			gap = current.Low - prev.Close
		case current.High < prev.Close:
			gap = prev.Close - current.High
		}
		if size := gap / atr10.Value; size > gapATRs {
			add(KindGap, size/2, fmt.Sprintf("price gapped %.1f times the average range", size))
		}

		if baseline.OK && baseline.Value > 0 {
			if ratio := atr10.Value / baseline.Value; ratio > breakoutATRRatio {
				add(KindVolatilityBreakout, ratio/4, fmt.Sprintf("recent volatility %.1f times the baseline", ratio))
			}
		}
	}

	if current.Volume > 0 {
		var total int64
		for _, c := range candles[len(candles)-1-volumeLookback : len(candles)-1] {
			total += c.Volume
		}
		if avg := float64(total) / volumeLookback; avg > 0 {
			if ratio := float64(current.Volume) / avg; ratio > volumeSpikeRatio {
				add(KindVolumeSpike, ratio/5, fmt.Sprintf("volume %.1f times the 10-day average", ratio))
			}
		}
	}

	return result
}

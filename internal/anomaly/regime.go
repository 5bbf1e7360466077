package anomaly

import (
	"math"

	"github.com/pookan/stockbot/internal/calculate"
	"github.com/pookan/stockbot/models"
)

// Regime types
const (
	RegimeTrending = "Trending"
	RegimeRanging  = "Ranging"
	RegimeChoppy   = "Choppy"
	RegimeVolatile = "Volatile"
	RegimeUnknown  = "Unknown"
)

const (
	trendADX         = 25.0
	rangeWidthATRs   = 5.0
	choppyReversals  = 8
	volatileATRRatio = 1.8
	regimeLookback   = 20
)

// ClassifyRegime labels the recent price action as trending, ranging,
// choppy or volatile.
func ClassifyRegime(candles []models.Candle) models.MarketRegime {
	regime := models.MarketRegime{
		Type:      RegimeUnknown,
		Direction: "Neutral",
		ADX:       models.Insufficient(),
	}
	if len(candles) < 2*calculate.ADXPeriod || len(candles) < regimeLookback+1 {
		return regime
	}

	adx, plusDI, minusDI := calculate.ADX(candles, calculate.ADXPeriod)
	regime.ADX = adx

	atr10 := calculate.ATR(candles, 10)
	atr30 := calculate.ATR(candles, 30)
	volRatio := 1.0
	if atr10.OK && atr30.OK && atr30.Value > 0 {
		volRatio = atr10.Value / atr30.Value
	}

	momentum := weightedMomentum(candles)
	switch {
	case momentum > 0:
		regime.Direction = "Bullish"
	case momentum < 0:
		regime.Direction = "Bearish"
	}

	diDirection := "Bearish"
	if plusDI.Value > minusDI.Value {
		diDirection = "Bullish"
	}

	if adx.Value > trendADX {
		regime.Type = RegimeTrending
		regime.Direction = diDirection
		regime.Strength = math.Min(adx.Value/50, 1)
		return regime
	}

	recent := candles[len(candles)-regimeLookback:]
	high, low := recent[0].High, recent[0].Low
	for _, c := range recent {
		high = math.Max(high, c.High)
		low = math.Min(low, c.Low)
	}
	if atr10.OK && atr10.Value > 0 && (high-low)/atr10.Value < rangeWidthATRs {
		regime.Type = RegimeRanging
		regime.Strength = clamp((30 - adx.Value) / 30)
		return regime
	}

	reversals := 0
	window := candles[len(candles)-regimeLookback-1:]
	up := window[1].Close > window[0].Close
	for i := 2; i < len(window); i++ {
		if now := window[i].Close > window[i-1].Close; now != up {
			reversals++
			up = now
		}
	}

	switch {
	case reversals > choppyReversals:
		regime.Type = RegimeChoppy
		regime.Strength = math.Min(float64(reversals)/15, 1)
	case volRatio > volatileATRRatio:
		regime.Type = RegimeVolatile
		regime.Strength = math.Min(volRatio/3, 1)
	default:
		// mild trend
		regime.Type = RegimeTrending
		regime.Direction = diDirection
		regime.Strength = math.Min(adx.Value/30, 0.7)
	}
	return regime
}

// weightedMomentum favours the 5-day change over the 10 and 20 day ones.
func weightedMomentum(candles []models.Candle) float64 {
	last := candles[len(candles)-1].Close
	change := func(back int) float64 {
		prev := candles[len(candles)-1-back].Close
		if prev == 0 {
			return 0
		}
		return (last - prev) / prev
	}
	return change(5)*0.5 + change(10)*0.3 + change(20)*0.2
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}

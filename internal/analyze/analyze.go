package analyze

import "github.com/pookan/stockbot/models"

const insufficient = "insufficient data"

// Technical labels the indicator readings against the latest close.
func Technical(snapshot *models.MarketSnapshot, ind models.IndicatorSet) models.TechnicalSignals {
	signals := models.TechnicalSignals{
		RSI:       insufficient,
		MA:        insufficient,
		MACD:      insufficient,
		Bollinger: insufficient,
	}

	// RSI zones
	if ind.RSI.OK {
		switch {
		case ind.RSI.Value > 70:
			signals.RSI = "Overbought"
		case ind.RSI.Value < 30:
			signals.RSI = "Oversold"
		default:
			signals.RSI = "Neutral"
		}
	}

	if ind.MACD.Line.OK && ind.MACD.Signal.OK {
		if ind.MACD.Line.Value > ind.MACD.Signal.Value {
			signals.MACD = "Bullish"
		} else {
			signals.MACD = "Bearish"
		}
	}

	last, ok := snapshot.Last()
	if !ok {
		return signals
	}
	price := last.Close

	// Moving average stack
	if ind.SMA20.OK && ind.SMA50.OK {
		switch {
		case price > ind.SMA20.Value && ind.SMA20.Value > ind.SMA50.Value:
			signals.MA = "Bullish"
		case price < ind.SMA20.Value && ind.SMA20.Value < ind.SMA50.Value:
			signals.MA = "Bearish"
		default:
			signals.MA = "Neutral"
		}
	}

	if ind.Bollinger.Upper.OK && ind.Bollinger.Lower.OK {
		switch {
		case price > ind.Bollinger.Upper.Value:
			signals.Bollinger = "Upper Band"
		case price < ind.Bollinger.Lower.Value:
			signals.Bollinger = "Lower Band"
		default:
			signals.Bollinger = "Middle"
		}
	}

	return signals
}

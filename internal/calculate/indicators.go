package calculate

import "github.com/pookan/stockbot/models"

// Default indicator periods
const (
	RSIPeriod        = 14
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
	BBPeriod         = 20
	BBStdDev         = 2.0
)

// Compute calculates every indicator for a snapshot. The benchmark is
// optional and only feeds beta.
func Compute(snapshot *models.MarketSnapshot, benchmark *models.MarketSnapshot) models.IndicatorSet {
	closes := snapshot.Closes()

	set := models.IndicatorSet{
		RSI:         RSI(closes, RSIPeriod),
		MACD:        MACD(closes, MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod),
		Bollinger:   BollingerBands(closes, BBPeriod, BBStdDev),
		SMA5:        SMA(closes, 5),
		SMA20:       SMA(closes, 20),
		SMA50:       SMA(closes, 50),
		VolumeTrend: VolumeTrend(snapshot.Volumes()),
		Volatility:  Volatility(closes),
		Beta:        models.Insufficient(),
	}

	if benchmark != nil {
		set.Beta = Beta(snapshot.Candles, benchmark.Candles)
	}

	return set
}

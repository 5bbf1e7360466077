package calculate

import (
	"math"

	"github.com/pookan/stockbot/models"
)

// BollingerBands computes SMA ± k standard deviations over the last period
// closes, using the sample standard deviation.
func BollingerBands(closes []float64, period int, k float64) models.Bollinger {
	if period < 2 || len(closes) < period {
		return models.Bollinger{
			Upper:  models.Insufficient(),
			Middle: models.Insufficient(),
			Lower:  models.Insufficient(),
		}
	}

	window := closes[len(closes)-period:]
	middle := average(window)
	sd := sampleStdDev(window, middle)

	return models.Bollinger{
		Upper:  models.Value(middle + sd*k),
		Middle: models.Value(middle),
		Lower:  models.Value(middle - sd*k),
	}
}

func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var variance float64
	for _, v := range values {
		variance += math.Pow(v-mean, 2)
	}
	return math.Sqrt(variance / float64(len(values)-1))
}

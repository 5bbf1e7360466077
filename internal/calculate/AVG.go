package calculate

import "github.com/pookan/stockbot/models"

// SMA computes the simple moving average of the last period values.
func SMA(values []float64, period int) models.Reading {
	if period <= 0 || len(values) < period {
		return models.Insufficient()
	}
	return models.Value(average(values[len(values)-period:]))
}

// average calculates simple average
func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, value := range values {
		sum += value
	}

	return sum / float64(len(values))
}

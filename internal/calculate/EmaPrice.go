package calculate

// EMASeries returns the exponential moving average of values, seeded by the
// simple average of the first period values. The result is aligned so that
// out[0] corresponds to values[period-1]. Returns nil if data is short.
func EMASeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += values[i]
	}

	// Multiplier for weighting the EMA
	multiplier := 2.0 / float64(period+1)

	out := make([]float64, 0, len(values)-period+1)
	ema := sum / float64(period)
	out = append(out, ema)
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
		out = append(out, ema)
	}

	return out
}

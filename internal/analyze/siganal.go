package analyze

import (
	"fmt"
	"math"

	"github.com/pookan/stockbot/models"
)

const notAvailable = "n/a"

// Fundamental labels valuation, leverage, profitability and growth.
func Fundamental(f models.Fundamentals) models.FundamentalSignals {
	signals := models.FundamentalSignals{
		PE:     notAvailable,
		Debt:   notAvailable,
		Margin: notAvailable,
		Growth: notAvailable,
	}
	if !f.Available {
		return signals
	}

	if known(f.TrailingPE) {
		switch {
		case f.TrailingPE > 50:
			signals.PE = "High"
		case f.TrailingPE > 20:
			signals.PE = "Reasonable"
		default:
			signals.PE = "Low"
		}
	}

	if known(f.DebtToEquity) {
		if f.DebtToEquity > 1 {
			signals.Debt = "High"
		} else {
			signals.Debt = "Manageable"
		}
	}

	if known(f.ProfitMargins) {
		switch {
		case f.ProfitMargins > 0.1:
			signals.Margin = "Strong"
		case f.ProfitMargins < 0:
			signals.Margin = "Weak"
		default:
			signals.Margin = "Moderate"
		}
	}

	if known(f.RevenueGrowth) {
		switch {
		case f.RevenueGrowth > 0.2:
			signals.Growth = "Strong"
		case f.RevenueGrowth > 0.1:
			signals.Growth = "Moderate"
		default:
			signals.Growth = "Weak"
		}
	}

	return signals
}

// Risk scores volatility, market sensitivity, leverage and profitability.
func Risk(ind models.IndicatorSet, f models.Fundamentals) models.RiskAssessment {
	score := 0
	var factors []string

	if ind.Volatility.OK {
		v := ind.Volatility.Value
		if v > 0.5 {
			score += 2
			factors = append(factors, fmt.Sprintf("High volatility (%.1f%% annualized)", v*100))
		} else if v > 0.3 {
			score++
			factors = append(factors, fmt.Sprintf("Elevated volatility (%.1f%% annualized)", v*100))
		}
	}

	if ind.Beta.OK {
		b := ind.Beta.Value
		if b > 1.5 {
			score += 2
			factors = append(factors, fmt.Sprintf("High market sensitivity (beta %.2f)", b))
		} else if b > 1.2 {
			score++
			factors = append(factors, fmt.Sprintf("Above-market sensitivity (beta %.2f)", b))
		}
	}

	if f.Available {
		if known(f.DebtToEquity) {
			if f.DebtToEquity > 1 {
				score += 2
				factors = append(factors, fmt.Sprintf("High leverage (D/E %.2f)", f.DebtToEquity))
			} else if f.DebtToEquity > 0.5 {
				score++
				factors = append(factors, fmt.Sprintf("Moderate leverage (D/E %.2f)", f.DebtToEquity))
			}
		}
		if known(f.ProfitMargins) && f.ProfitMargins < 0 {
			score++
			factors = append(factors, "Negative profit margins")
		}
	}

	level := "Low"
	if score > 4 {
		level = "High"
	} else if score > 2 {
		level = "Medium"
	}

	return models.RiskAssessment{Level: level, Score: score, Factors: factors}
}

func known(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

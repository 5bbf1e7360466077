package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/pookan/stockbot/models"
)

// Result renders the reply for a successful analysis: header, market line,
// signals, extracted recommendation, then the generated text.
func Result(r models.AnalysisResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s analysis (via %s, %s)\n", r.Request.Ticker, r.Provider, r.Latency.Round(10*time.Millisecond)))

	price := models.Insufficient()
	change := models.Insufficient()
	if r.Snapshot != nil {
		if last, ok := r.Snapshot.Last(); ok {
			price = models.Value(last.Close)
		}
		change = r.Snapshot.ChangePercent()
	}
	sb.WriteString(fmt.Sprintf("Price: %s (%s) | Volume: %s | Risk: %s\n",
		price.Format("$%.2f"),
		change.Format("%+.2f%%"),
		r.Indicators.VolumeTrend.Direction,
		r.Risk.Level,
	))

	sb.WriteString(fmt.Sprintf("Signals: RSI %s (%s), MA %s, MACD %s, Bollinger %s\n",
		r.Technical.RSI,
		r.Indicators.RSI.Format("%.1f"),
		r.Technical.MA,
		r.Technical.MACD,
		r.Technical.Bollinger,
	))

	if r.Snapshot != nil && r.Snapshot.Fundamentals.Available {
		sb.WriteString(fmt.Sprintf("Fundamentals: P/E %s, Debt %s, Margin %s, Growth %s\n",
			r.Fundamental.PE, r.Fundamental.Debt, r.Fundamental.Margin, r.Fundamental.Growth))
	}

	if r.Regime.Type != "" && r.Regime.Type != "Unknown" {
		sb.WriteString(fmt.Sprintf("Regime: %s, %s\n", r.Regime.Type, r.Regime.Direction))
	}
	if r.Anomaly.Detected() {
		sb.WriteString(fmt.Sprintf("Alert: %s\n", strings.Join(r.Anomaly.Kinds, ", ")))
	}

	sb.WriteString(fmt.Sprintf("Recommendation: %s (%s confidence)\n", r.Recommendation.Action, r.Recommendation.Confidence))

	if degraded := r.Indicators.Degraded(); len(degraded) > 0 {
		sb.WriteString(fmt.Sprintf("InsufficientHistory: not enough data for %s\n", strings.Join(degraded, ", ")))
	}

	sb.WriteString("\n")
	sb.WriteString(strings.TrimSpace(r.Text))
	return sb.String()
}

package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pookan/stockbot/models"
)

func testData() Data {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, 3)
	for i := range candles {
		candles[i] = models.Candle{Time: start.AddDate(0, 0, i), Close: 100 + float64(i), Volume: 1000}
	}

	f := models.MissingFundamentals()
	f.Available = true
	f.MarketCap = 2.9e12
	f.TrailingPE = 29.5

	return Data{
		Request:  models.AnalysisRequest{Ticker: "AAPL", Query: "is it overbought?"},
		Snapshot: &models.MarketSnapshot{Ticker: "AAPL", Candles: candles, Fundamentals: f, Source: "yahoo"},
		Indicators: models.IndicatorSet{
			RSI:         models.Value(71.25),
			VolumeTrend: models.VolumeTrend{Ratio: models.Insufficient(), Direction: "insufficient data"},
		},
		Technical:   models.TechnicalSignals{RSI: "Overbought", MA: "insufficient data", MACD: "insufficient data", Bollinger: "insufficient data"},
		Fundamental: models.FundamentalSignals{PE: "Reasonable", Debt: "n/a", Margin: "n/a", Growth: "n/a"},
		Risk:        models.RiskAssessment{Level: "Low"},
		Degraded:    []string{"MACD", "SMA50"},
	}
}

func TestBuiltinTemplatesRender(t *testing.T) {
	for _, name := range []string{"single-agent", "multi-agent", "graph", "pipeline"} {
		t.Run(name, func(t *testing.T) {
			b, err := NewBuilder(name, "")
			if err != nil {
				t.Fatalf("NewBuilder() error = %v", err)
			}

			out, err := b.Render(testData())
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}

			for _, want := range []string{
				"AAPL",
				"RSI(14): 71.2",
				"Last close: $102.00",
				"Market cap: $2.90T",
				"Debt/equity: n/a",
				"insufficient history for MACD, SMA50",
				"is it overbought?",
				"Recommendation: BUY",
			} {
				if !strings.Contains(out, want) {
					t.Errorf("rendered prompt missing %q:\n%s", want, out)
				}
			}
			if strings.Contains(out, "<no value>") {
				t.Errorf("rendered prompt has unresolved fields:\n%s", out)
			}
		})
	}
}

func TestUnknownTemplate(t *testing.T) {
	if _, err := NewBuilder("chain-of-thought", ""); err == nil {
		t.Fatal("expected an error for an unknown template")
	}
}

func TestTemplateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	content := `templates:
  terse:
    description: One line answer
    body: "{{.Request.Ticker}} RSI {{reading .Indicators.RSI \"%.0f\"}}. {{template \"contract\" .}}"
  single-agent:
    description: Overridden
    body: "override for {{.Request.Ticker}}"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	b, err := NewBuilder("terse", path)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	out, err := b.Render(testData())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.HasPrefix(out, "AAPL RSI 71. Finish with one line") {
		t.Errorf("unexpected render %q", out)
	}

	override, err := b.RenderWith("single-agent", testData())
	if err != nil {
		t.Fatalf("RenderWith() error = %v", err)
	}
	if override != "override for AAPL" {
		t.Errorf("override = %q", override)
	}

	if got := len(b.Names()); got != 5 {
		t.Errorf("Names() has %d entries, want 5", got)
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 2.9e12, want: "$2.90T"},
		{in: 45.3e9, want: "$45.30B"},
		{in: 812e6, want: "$812.00M"},
		{in: 5000, want: "$5000"},
	}
	for _, tt := range tests {
		if got := Money(tt.in); got != tt.want {
			t.Errorf("Money(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRegimeAndAnomalyLines(t *testing.T) {
	b, err := NewBuilder("", "")
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	data := testData()
	out, _ := b.Render(data)
	if strings.Contains(out, "Market regime") || strings.Contains(out, "Unusual activity") {
		t.Error("regime and anomaly lines should be omitted when unset")
	}

	data.Regime = models.MarketRegime{Type: "Trending", Direction: "Bullish", Strength: 0.8, ADX: models.Value(41.5)}
	data.Anomaly = models.Anomaly{Kinds: []string{"volume spike"}, Score: 1, Details: []string{"volume 4.2 times the 10-day average"}}
	out, err = b.Render(data)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{
		"Market regime: Trending, Bullish (strength 0.80, ADX 41.5)",
		"Unusual activity on the last bar: volume 4.2 times the 10-day average",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered prompt missing %q", want)
		}
	}
}

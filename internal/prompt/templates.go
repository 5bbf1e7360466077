package prompt

// partials are shared by every template, built-in or loaded from YAML.
const partials = `
{{define "market"}}Market data for {{.Request.Ticker}} ({{len .Snapshot.Candles}} daily bars, source {{.Snapshot.Source}}):
- Last close: {{reading .Price "$%.2f"}}
- Daily change: {{reading .Change "%+.2f%%"}}
- Volume trend: {{.Indicators.VolumeTrend.Direction}} (5/20 ratio {{reading .Indicators.VolumeTrend.Ratio "%.2f"}}){{end}}

{{define "technical"}}Technical indicators:
- RSI(14): {{reading .Indicators.RSI "%.1f"}} ({{.Technical.RSI}})
- MACD(12,26,9): line {{reading .Indicators.MACD.Line "%.3f"}}, signal {{reading .Indicators.MACD.Signal "%.3f"}}, histogram {{reading .Indicators.MACD.Histogram "%.3f"}} ({{.Technical.MACD}})
- Bollinger(20,2): upper {{reading .Indicators.Bollinger.Upper "%.2f"}}, middle {{reading .Indicators.Bollinger.Middle "%.2f"}}, lower {{reading .Indicators.Bollinger.Lower "%.2f"}} (price at {{.Technical.Bollinger}})
- SMA 5/20/50: {{reading .Indicators.SMA5 "%.2f"}} / {{reading .Indicators.SMA20 "%.2f"}} / {{reading .Indicators.SMA50 "%.2f"}} (trend {{.Technical.MA}}){{if .Regime.Type}}
- Market regime: {{.Regime.Type}}, {{.Regime.Direction}} (strength {{num .Regime.Strength "%.2f"}}, ADX {{reading .Regime.ADX "%.1f"}}){{end}}{{if .Anomaly.Detected}}
- Unusual activity on the last bar: {{join .Anomaly.Details "; "}}{{end}}{{end}}

{{define "fundamental"}}Fundamentals:{{if .Snapshot.Fundamentals.Available}}
- Market cap: {{money .Snapshot.Fundamentals.MarketCap}}
- P/E: {{num .Snapshot.Fundamentals.TrailingPE "%.1f"}} ({{.Fundamental.PE}})
- Price/book: {{num .Snapshot.Fundamentals.PriceToBook "%.1f"}}
- Debt/equity: {{num .Snapshot.Fundamentals.DebtToEquity "%.2f"}} ({{.Fundamental.Debt}})
- Profit margin: {{percent .Snapshot.Fundamentals.ProfitMargins}} ({{.Fundamental.Margin}})
- Revenue growth: {{percent .Snapshot.Fundamentals.RevenueGrowth}} ({{.Fundamental.Growth}})
- Return on equity: {{percent .Snapshot.Fundamentals.ReturnOnEquity}}{{else}} not available for this request.{{end}}{{end}}

{{define "risk"}}Risk assessment:
- Volatility (annualized): {{reading .Indicators.Volatility "%.3f"}}
- Beta vs benchmark: {{reading .Indicators.Beta "%.2f"}}
- Level: {{.Risk.Level}} (score {{.Risk.Score}}){{if .Risk.Factors}}
- Factors: {{join .Risk.Factors "; "}}{{end}}{{end}}

{{define "caveats"}}{{if .Degraded}}
Note: insufficient history for {{join .Degraded ", "}}. Treat those readings as unknown rather than neutral.{{end}}{{if .Request.Query}}
The user asks specifically: {{.Request.Query}}{{end}}{{end}}

{{define "contract"}}Finish with one line of the form "Recommendation: BUY", "Recommendation: SELL" or "Recommendation: HOLD", followed by a single sentence on confidence. Plain text only, no tables.{{end}}
`

var builtins = map[string]Definition{
	"single-agent": {
		Description: "One analyst reasons over every tool output at once",
		Body: `You are a stock analyst. Analyze {{.Request.Ticker}} using the data below and give a balanced recommendation.

{{template "market" .}}

{{template "technical" .}}

{{template "fundamental" .}}

{{template "risk" .}}
{{template "caveats" .}}

Explain the key drivers in a few short paragraphs. {{template "contract" .}}`,
	},

	"multi-agent": {
		Description: "A team of specialists whose views are merged by a lead analyst",
		Body: `You coordinate a research team covering {{.Request.Ticker}}. Write a section for each specialist, then a verdict from the lead analyst.

MARKET DATA ANALYST
{{template "market" .}}

TECHNICAL ANALYST
{{template "technical" .}}

FUNDAMENTAL ANALYST
{{template "fundamental" .}}

RISK MANAGER
{{template "risk" .}}
{{template "caveats" .}}

Each specialist gives a two or three sentence view from their own data only. The lead analyst then weighs the views, notes where they disagree, and decides. {{template "contract" .}}`,
	},

	"graph": {
		Description: "A staged workflow: data review, technicals, fundamentals, risk, decision",
		Body: `Work through the following stages for {{.Request.Ticker}} in order. Carry the conclusion of each stage into the next.

Stage 1, data review:
{{template "market" .}}

Stage 2, technical analysis:
{{template "technical" .}}

Stage 3, fundamental analysis:
{{template "fundamental" .}}

Stage 4, risk assessment:
{{template "risk" .}}
{{template "caveats" .}}

Stage 5, decision: summarize stages 1 to 4 in one line each, then decide. {{template "contract" .}}`,
	},

	"pipeline": {
		Description: "A declarative signature: typed inputs in, recommendation and rationale out",
		Body: `Task: stock_recommendation
Inputs:
ticker: {{.Request.Ticker}}
{{template "market" .}}
{{template "technical" .}}
{{template "fundamental" .}}
{{template "risk" .}}
{{template "caveats" .}}

Outputs:
rationale: three to five sentences grounded only in the inputs
recommendation: one of BUY, SELL, HOLD

{{template "contract" .}}`,
	},
}

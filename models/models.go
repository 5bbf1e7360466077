package models

import (
	"fmt"
	"math"
	"time"
)

// ProviderConfig describes one LLM backend in fallback order.
type ProviderConfig struct {
	Name       string
	Credential string
	Model      string
	Enabled    bool
}

// Available reports whether the provider can be attempted.
func (p ProviderConfig) Available() bool {
	return p.Enabled && p.Credential != ""
}

// String never includes the credential.
func (p ProviderConfig) String() string {
	state := "unavailable"
	if p.Available() {
		state = "available"
	}
	return fmt.Sprintf("%s (%s, %s)", p.Name, p.Model, state)
}

// Command is a raw chat message handed over by a transport.
type Command struct {
	Text      string
	UserID    string
	ChannelID string
	Source    string // discord, telegram, console
}

// AnalysisRequest is created per analyze command and discarded after the reply.
type AnalysisRequest struct {
	ID        string
	Ticker    string
	Query     string
	UserID    string
	Source    string
	Timestamp time.Time
}

// Candle represents a single daily price bar
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume,omitempty"`
}

// Fundamentals holds company metrics. Missing values are NaN.
type Fundamentals struct {
	Available      bool    `json:"available"`
	MarketCap      float64 `json:"market_cap"`
	TrailingPE     float64 `json:"trailing_pe"`
	PriceToBook    float64 `json:"price_to_book"`
	DebtToEquity   float64 `json:"debt_to_equity"` // ratio, not percent
	ProfitMargins  float64 `json:"profit_margins"`
	RevenueGrowth  float64 `json:"revenue_growth"`
	ReturnOnEquity float64 `json:"return_on_equity"`
}

// MissingFundamentals returns a Fundamentals value with every field unset.
func MissingFundamentals() Fundamentals {
	nan := math.NaN()
	return Fundamentals{
		MarketCap:      nan,
		TrailingPE:     nan,
		PriceToBook:    nan,
		DebtToEquity:   nan,
		ProfitMargins:  nan,
		RevenueGrowth:  nan,
		ReturnOnEquity: nan,
	}
}

// MarketSnapshot is produced by a fetcher per request and never mutated afterwards.
type MarketSnapshot struct {
	Ticker       string       `json:"ticker"`
	Candles      []Candle     `json:"candles"` // oldest first
	Fundamentals Fundamentals `json:"fundamentals"`
	Source       string       `json:"source"`
}

// Closes extracts close prices in chronological order.
func (s *MarketSnapshot) Closes() []float64 {
	closes := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		closes[i] = c.Close
	}
	return closes
}

// Volumes extracts volumes in chronological order.
func (s *MarketSnapshot) Volumes() []float64 {
	volumes := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		volumes[i] = float64(c.Volume)
	}
	return volumes
}

// Last returns the most recent candle, or false for an empty snapshot.
func (s *MarketSnapshot) Last() (Candle, bool) {
	if len(s.Candles) == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}

// ChangePercent is the close-to-close change of the last bar.
func (s *MarketSnapshot) ChangePercent() Reading {
	n := len(s.Candles)
	if n < 2 || s.Candles[n-2].Close == 0 {
		return Insufficient()
	}
	prev := s.Candles[n-2].Close
	return Value((s.Candles[n-1].Close - prev) / prev * 100)
}

// Reading is an indicator value. OK=false marks insufficient data.
type Reading struct {
	Value float64 `json:"value"`
	OK    bool    `json:"ok"`
}

// Value wraps a computed number.
func Value(v float64) Reading { return Reading{Value: v, OK: true} }

// Insufficient is the insufficient-data marker.
func Insufficient() Reading { return Reading{} }

// Format renders the reading, or "insufficient data".
func (r Reading) Format(verb string) string {
	if !r.OK {
		return "insufficient data"
	}
	return fmt.Sprintf(verb, r.Value)
}

// MACD holds the MACD line, its signal line and the histogram
type MACD struct {
	Line      Reading `json:"line"`
	Signal    Reading `json:"signal"`
	Histogram Reading `json:"histogram"`
}

// Bollinger holds the three bands
type Bollinger struct {
	Upper  Reading `json:"upper"`
	Middle Reading `json:"middle"`
	Lower  Reading `json:"lower"`
}

// VolumeTrend compares short and long average volume
type VolumeTrend struct {
	Ratio     Reading `json:"ratio"`
	Direction string  `json:"direction"` // rising, falling, flat, insufficient data
}

// IndicatorSet is derived deterministically from a MarketSnapshot
type IndicatorSet struct {
	RSI         Reading     `json:"rsi"`
	MACD        MACD        `json:"macd"`
	Bollinger   Bollinger   `json:"bollinger"`
	SMA5        Reading     `json:"sma_5"`
	SMA20       Reading     `json:"sma_20"`
	SMA50       Reading     `json:"sma_50"`
	VolumeTrend VolumeTrend `json:"volume_trend"`
	Volatility  Reading     `json:"volatility"` // annualized
	Beta        Reading     `json:"beta"`
}

// Degraded lists indicators that could not be computed.
func (s IndicatorSet) Degraded() []string {
	var names []string
	check := func(name string, r Reading) {
		if !r.OK {
			names = append(names, name)
		}
	}
	check("RSI", s.RSI)
	check("MACD", s.MACD.Line)
	check("Bollinger", s.Bollinger.Middle)
	check("SMA5", s.SMA5)
	check("SMA20", s.SMA20)
	check("SMA50", s.SMA50)
	check("Volume trend", s.VolumeTrend.Ratio)
	check("Volatility", s.Volatility)
	check("Beta", s.Beta)
	return names
}

// TechnicalSignals are the labelled readings of an IndicatorSet
type TechnicalSignals struct {
	RSI       string `json:"rsi"`
	MA        string `json:"ma"`
	MACD      string `json:"macd"`
	Bollinger string `json:"bollinger"`
}

// FundamentalSignals are the labelled fundamentals
type FundamentalSignals struct {
	PE     string `json:"pe"`
	Debt   string `json:"debt"`
	Margin string `json:"margin"`
	Growth string `json:"growth"`
}

// RiskAssessment scores volatility, beta, leverage and margins
type RiskAssessment struct {
	Level   string   `json:"level"` // Low, Medium, High
	Score   int      `json:"score"`
	Factors []string `json:"factors"`
}

// Recommendation is extracted from the generated text
type Recommendation struct {
	Action     string `json:"action"`     // BUY, SELL, HOLD
	Confidence string `json:"confidence"` // High, Medium
}

// AnalysisResult is built after a successful generation and discarded after sending.
type AnalysisResult struct {
	Request        AnalysisRequest
	Snapshot       *MarketSnapshot
	Indicators     IndicatorSet
	Technical      TechnicalSignals
	Fundamental    FundamentalSignals
	Risk           RiskAssessment
	Regime         MarketRegime
	Anomaly        Anomaly
	Recommendation Recommendation
	Text           string
	Provider       string
	Latency        time.Duration
}

// MarketRegime classifies recent price action
type MarketRegime struct {
	Type      string  `json:"type"`      // Trending, Ranging, Choppy, Volatile, Unknown
	Direction string  `json:"direction"` // Bullish, Bearish, Neutral
	Strength  float64 `json:"strength"`  // 0..1
	ADX       Reading `json:"adx"`
}

// Anomaly flags unusual behaviour of the most recent bar
type Anomaly struct {
	Kinds   []string `json:"kinds"`
	Score   float64  `json:"score"` // 0..1
	Details []string `json:"details"`
}

// Detected reports whether any anomaly was found.
func (a Anomaly) Detected() bool { return len(a.Kinds) > 0 }

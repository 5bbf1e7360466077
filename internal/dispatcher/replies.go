package dispatcher

import (
	"fmt"
	"strings"

	"github.com/pookan/stockbot/models"
)

// Reply categories. Every error reply starts with one of these.
const (
	CategoryInvalidTicker       = "InvalidTicker"
	CategoryDataUnavailable     = "DataUnavailable"
	CategoryInsufficientHistory = "InsufficientHistory"
	CategoryAnalysisUnavailable = "AnalysisUnavailable"
	CategoryConfigurationError  = "ConfigurationError"
	CategoryInternalError       = "InternalError"
)

func invalidTickerReply(ticker string) string {
	return fmt.Sprintf("%s: %q is not a valid ticker symbol. Use 1-20 letters or digits, optionally with . - = ^ (for example AAPL, BRK.B, EURUSD=X, ^GSPC).",
		CategoryInvalidTicker, ticker)
}

func missingTickerReply(prefix string) string {
	return fmt.Sprintf("%s: missing ticker. Usage: %sanalyze <ticker> [question]", CategoryInvalidTicker, prefix)
}

// DataUnavailableReply is the reply for a failed market data fetch.
func DataUnavailableReply(ticker string, kind models.FetchKind) string {
	var hint string
	switch kind {
	case models.FetchUnknownTicker:
		hint = "Check the symbol and try again."
	case models.FetchRateLimited:
		hint = "The market data provider is throttling requests, try again in a minute."
	default:
		hint = "The market data provider could not be reached, try again later."
	}
	return fmt.Sprintf("%s: could not get market data for %s (%s). %s", CategoryDataUnavailable, ticker, kind, hint)
}

func analysisUnavailableReply(reasons []string) string {
	if len(reasons) == 0 {
		return fmt.Sprintf("%s: the analysis could not be completed, try again later.", CategoryAnalysisUnavailable)
	}
	return fmt.Sprintf("%s: all LLM providers failed (%s). Try again later.",
		CategoryAnalysisUnavailable, strings.Join(reasons, "; "))
}

func configurationErrorReply() string {
	return fmt.Sprintf("%s: no LLM provider is configured. Set ANTHROPIC_API_KEY or OPENAI_API_KEY and restart the bot.",
		CategoryConfigurationError)
}

func internalErrorReply(requestID string) string {
	return fmt.Sprintf("%s: something went wrong while handling this command (request %s).", CategoryInternalError, requestID)
}

func unknownVerbReply(prefix, verb string) string {
	return fmt.Sprintf("Unknown command %q. Type %shelp for usage.", verb, prefix)
}

func helpReply(prefix string) string {
	var sb strings.Builder
	sb.WriteString("Stock analysis bot\n\n")
	sb.WriteString("Commands:\n")
	sb.WriteString(fmt.Sprintf("%sanalyze <ticker> [question] - technical, fundamental and risk analysis with an AI recommendation\n", prefix))
	sb.WriteString(fmt.Sprintf("%sstatus - configured LLM providers and their availability\n", prefix))
	sb.WriteString(fmt.Sprintf("%shelp - this message\n\n", prefix))
	sb.WriteString("Examples:\n")
	sb.WriteString(fmt.Sprintf("%sanalyze AAPL\n", prefix))
	sb.WriteString(fmt.Sprintf("%sanalyze TSLA should I buy?\n", prefix))
	sb.WriteString(fmt.Sprintf("%sanalyze NVDA focus on technicals\n\n", prefix))
	sb.WriteString("Commands also work with a / prefix. Analysis is informational only and not financial advice.")
	return sb.String()
}

package analyze

import (
	"regexp"
	"strings"

	"github.com/pookan/stockbot/models"
)

var (
	buyWord       = regexp.MustCompile(`(?i)\bbuy\b`)
	sellWord      = regexp.MustCompile(`(?i)\bsell\b`)
	strongWord    = regexp.MustCompile(`(?i)\bstrong(ly)?\b`)
	recommendWord = regexp.MustCompile(`(?i)\brecommend(s|ed)?\b`)

	// The closing line the prompt templates ask for.
	verdictLine    = regexp.MustCompile(`(?im)^\s*recommendation:\s*\**\s*(buy|sell|hold)\b`)
	highConfidence = regexp.MustCompile(`(?i)\bhigh(ly)?\s+confiden(ce|t)\b`)
)

// ExtractRecommendation reads the action out of generated analysis text.
// An explicit "Recommendation: X" line decides the action; without one a
// buy mention wins over a sell mention.
func ExtractRecommendation(text string) models.Recommendation {
	if m := verdictLine.FindStringSubmatch(text); m != nil {
		confidence := "Medium"
		if strongWord.MatchString(text) || highConfidence.MatchString(text) {
			confidence = "High"
		}
		return models.Recommendation{Action: strings.ToUpper(m[1]), Confidence: confidence}
	}

	switch {
	case buyWord.MatchString(text):
		confidence := "Medium"
		if strongWord.MatchString(text) || recommendWord.MatchString(text) {
			confidence = "High"
		}
		return models.Recommendation{Action: "BUY", Confidence: confidence}

	case sellWord.MatchString(text):
		confidence := "Medium"
		if strongWord.MatchString(text) {
			confidence = "High"
		}
		return models.Recommendation{Action: "SELL", Confidence: confidence}
	}

	return models.Recommendation{Action: "HOLD", Confidence: "Medium"}
}

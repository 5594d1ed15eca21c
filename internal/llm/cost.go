package llm

import "strings"

// Default USD-per-1K-token rates by model prefix. Pricing drifts, so
// deployments should pin their own via usage.rates.
var defaultRates = map[string]float64{
	"gpt-4": 0.015,
	"gpt-5": 0.0004,
}

const fallbackRate = 0.0005

// estimateCost approximates the spend for a call from its token count.
// Configured rates take precedence over the built-in table; within a
// table the longest matching model prefix wins.
func estimateCost(rates map[string]float64, model string, tokens int) float64 {
	rate, ok := longestPrefixRate(rates, model)
	if !ok {
		if rate, ok = longestPrefixRate(defaultRates, model); !ok {
			rate = fallbackRate
		}
	}
	return float64(tokens) * rate / 1000
}

func longestPrefixRate(table map[string]float64, model string) (float64, bool) {
	best := -1
	var rate float64
	for prefix, r := range table {
		if strings.HasPrefix(model, prefix) && len(prefix) > best {
			rate = r
			best = len(prefix)
		}
	}
	return rate, best >= 0
}

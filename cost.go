package cratedocs

// DefaultCostPerMillion is the embedding price in USD per million tokens.
const DefaultCostPerMillion = 0.02

// EstimateCost returns the estimated USD cost of embedding tokens at the
// given rate per million tokens. Negative token counts cost nothing.
func EstimateCost(tokens int, perMillion float64) float64 {
	if tokens <= 0 || perMillion <= 0 {
		return 0
	}
	return float64(tokens) / 1_000_000 * perMillion
}

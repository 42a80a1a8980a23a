package feed

// Generator produces the next quote's instrument, bid and ask in a
// deterministic round-robin, the same index-driven scheme the trading
// engine's tick generator uses instead of reaching for randomness.
type Generator struct {
	instruments []string
	basePrice   float64
	spread      float64
	index       int
}

// NewGenerator builds a Generator cycling through instruments. basePrice
// and spread seed the synthetic bid/ask; spread defaults to 0.01 if
// non-positive, and a single "AAPL" instrument is used if none are given.
func NewGenerator(instruments []string, basePrice, spread float64) *Generator {
	if len(instruments) == 0 {
		instruments = []string{"AAPL"}
	}
	if spread <= 0 {
		spread = 0.01
	}
	return &Generator{
		instruments: instruments,
		basePrice:   basePrice,
		spread:      spread,
	}
}

// Next returns the next instrument and its synthetic bid/ask prices.
func (g *Generator) Next() (instrument string, bid, ask float64) {
	instrument = g.instruments[g.index]
	price := g.basePrice + float64(g.index)
	g.index = (g.index + 1) % len(g.instruments)
	half := g.spread / 2
	return instrument, price - half, price + half
}

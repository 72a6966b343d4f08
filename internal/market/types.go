package market

// AssetID uniquely identifies an asset.
type AssetID string

// Class groups assets for news selection and display.
type Class string

const (
	ClassIndex  Class = "index"
	ClassGold   Class = "gold"
	ClassOil    Class = "oil"
	ClassCrypto Class = "crypto"
)

// Asset represents a tradeable instrument and its current quote.
type Asset struct {
	ID     AssetID
	Name   string
	Ticker string
	Class  Class
	Color  string

	Price         float64
	PreviousPrice float64
	// Volatility is in [0,1]; 1 moves the price up to 5% per pricing tick.
	Volatility float64
}

// Change returns the price change since the previous tick as a fraction.
func (a Asset) Change() float64 {
	if a.PreviousPrice == 0 {
		return 0
	}
	return (a.Price - a.PreviousPrice) / a.PreviousPrice
}

// DefaultAssets returns the fixed asset set a game starts with.
func DefaultAssets() []Asset {
	return []Asset{
		{ID: "stock", Name: "Stock Index", Ticker: "IDX", Class: ClassIndex, Color: "#3B82F6", Price: 4500, PreviousPrice: 4500, Volatility: 0.3},
		{ID: "gold", Name: "Gold", Ticker: "GLD", Class: ClassGold, Color: "#F59E0B", Price: 1950, PreviousPrice: 1950, Volatility: 0.2},
		{ID: "oil", Name: "Crude Oil", Ticker: "OIL", Class: ClassOil, Color: "#6B7280", Price: 80, PreviousPrice: 80, Volatility: 0.5},
		{ID: "crypto", Name: "Bitcoin", Ticker: "BTC", Class: ClassCrypto, Color: "#8B5CF6", Price: 30000, PreviousPrice: 30000, Volatility: 0.8},
	}
}

// Find returns the asset with the given id.
func Find(assets []Asset, id AssetID) (Asset, bool) {
	for _, a := range assets {
		if a.ID == id {
			return a, true
		}
	}
	return Asset{}, false
}

// Prices returns the current price of every asset keyed by id.
func Prices(assets []Asset) map[AssetID]float64 {
	out := make(map[AssetID]float64, len(assets))
	for _, a := range assets {
		out[a.ID] = a.Price
	}
	return out
}

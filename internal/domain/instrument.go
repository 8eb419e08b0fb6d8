package domain

// AssetClass identifies the instrument type.
type AssetClass string

// Supported asset classes.
const (
	AssetClassStock  AssetClass = "STK"
	AssetClassOption AssetClass = "OPT"
	AssetClassFuture AssetClass = "FUT"
	AssetClassCash   AssetClass = "CASH"
	AssetClassCFD    AssetClass = "CFD"
)

// Instrument describes a tradable contract. Immutable during a stats
// computation.
type Instrument struct {
	ID         int
	Symbol     string
	AssetClass AssetClass
	Multiplier float64 // contract multiplier: 1 for equities, e.g. 100 for options
	Currency   string  // contract currency code, e.g. "USD"
}

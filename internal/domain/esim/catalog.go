package esim

import "github.com/shopspring/decimal"

// CountryInfo identifies the country a catalog was requested for.
type CountryInfo struct {
	Code         string
	Name         string
	FlagImageURL *string
}

// OperatorInfo identifies the network operator backing the plans.
// All fields are nil when the provider returned no operator.
type OperatorInfo struct {
	ID       *int64
	Name     *string
	ImageURL *string
}

// Plan is a purchasable data package.
type Plan struct {
	ID          string
	Title       string
	Days        int
	IsUnlimited bool
	DataLabel   string
	PriceUSD    decimal.Decimal
	NetPriceUSD decimal.Decimal
}

// Catalog is the set of plans offered for one country.
type Catalog struct {
	Country  CountryInfo
	Operator OperatorInfo
	Plans    []Plan
}

// EmptyCatalog returns the catalog used when the provider knows nothing about
// the requested country.
func EmptyCatalog(requestedCountry string) Catalog {
	return Catalog{
		Country: CountryInfo{Code: requestedCountry, Name: requestedCountry},
		Plans:   []Plan{},
	}
}

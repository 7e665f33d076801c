package airalo

import "github.com/globoesim/gateway/internal/domain/esim"

// ToCatalog reshapes a packages response into the catalog for
// requestedCountry. Only the first country and its first operator are used.
// It never fails: a response without countries yields an empty catalog.
func ToCatalog(resp *PackagesResponse, requestedCountry string, labels *Labels) esim.Catalog {
	if resp == nil || len(resp.Data) == 0 {
		return esim.EmptyCatalog(requestedCountry)
	}
	if labels == nil {
		labels = NewLabels(DefaultLocale)
	}

	country := resp.Data[0]
	catalog := esim.Catalog{
		Country: esim.CountryInfo{
			Code:         firstNonEmpty(country.CountryCode, requestedCountry),
			Name:         firstNonEmpty(country.Title, requestedCountry),
			FlagImageURL: imageURL(country.Image),
		},
		Plans: []esim.Plan{},
	}
	if len(country.Operators) == 0 {
		return catalog
	}

	operator := country.Operators[0]
	catalog.Operator = esim.OperatorInfo{
		ID:       operator.ID,
		Name:     optionalString(operator.Title),
		ImageURL: imageURL(operator.Image),
	}

	for _, pkg := range operator.Packages {
		if plan, ok := toPlan(pkg, labels); ok {
			catalog.Plans = append(catalog.Plans, plan)
		}
	}
	return catalog
}

// toPlan converts a package; packages without an id or a positive day count
// are not purchasable and are skipped.
func toPlan(pkg Package, labels *Labels) (esim.Plan, bool) {
	if pkg.ID == "" || pkg.Day <= 0 {
		return esim.Plan{}, false
	}

	dataLabel := pkg.Data
	if pkg.IsUnlimited {
		dataLabel = labels.UnlimitedData()
	}

	return esim.Plan{
		ID:          pkg.ID,
		Title:       dataLabel + " - " + labels.Days(pkg.Day),
		Days:        pkg.Day,
		IsUnlimited: pkg.IsUnlimited,
		DataLabel:   dataLabel,
		PriceUSD:    pkg.Price,
		NetPriceUSD: pkg.NetPrice,
	}, true
}

func imageURL(img *Image) *string {
	if img == nil || img.URL == "" {
		return nil
	}
	url := img.URL
	return &url
}

// optionalString treats empty strings as absent.
func optionalString(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

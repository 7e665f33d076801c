package airalo

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const argentinaPackagesJSON = `{
  "data": [
    {
      "slug": "argentina",
      "country_code": "AR",
      "title": "Argentina",
      "image": {"width": 132, "height": 99, "url": "https://cdn.example.com/ar.png"},
      "operators": [
        {
          "id": 557,
          "title": "Chispa Mobile",
          "type": "local",
          "image": {"url": "https://cdn.example.com/chispa.png"},
          "packages": [
            {"id": "chispa-7days-1gb", "type": "sim", "title": "1 GB - 7 Days", "price": 9.5, "net_price": 7.6, "amount": 1024, "day": 7, "is_unlimited": false, "data": "1 GB"},
            {"id": "chispa-1day-unlimited", "type": "sim", "title": "Unlimited - 1 Day", "price": "4.00", "net_price": "3.20", "amount": 0, "day": 1, "is_unlimited": true, "data": "Unlimited"}
          ]
        },
        {
          "id": 999,
          "title": "Ignored",
          "packages": [
            {"id": "ignored-30days", "price": 1, "net_price": 1, "day": 30, "data": "3 GB"}
          ]
        }
      ]
    }
  ]
}`

func parsePackages(t *testing.T, raw string) *PackagesResponse {
	t.Helper()
	var resp PackagesResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return &resp
}

func TestToCatalog_FirstCountryAndOperator(t *testing.T) {
	catalog := ToCatalog(parsePackages(t, argentinaPackagesJSON), "AR", NewLabels("es"))

	assert.Equal(t, "AR", catalog.Country.Code)
	assert.Equal(t, "Argentina", catalog.Country.Name)
	require.NotNil(t, catalog.Country.FlagImageURL)
	assert.Equal(t, "https://cdn.example.com/ar.png", *catalog.Country.FlagImageURL)

	require.NotNil(t, catalog.Operator.ID)
	assert.Equal(t, int64(557), *catalog.Operator.ID)
	require.NotNil(t, catalog.Operator.Name)
	assert.Equal(t, "Chispa Mobile", *catalog.Operator.Name)
	require.NotNil(t, catalog.Operator.ImageURL)
	assert.Equal(t, "https://cdn.example.com/chispa.png", *catalog.Operator.ImageURL)

	require.Len(t, catalog.Plans, 2)

	limited := catalog.Plans[0]
	assert.Equal(t, "chispa-7days-1gb", limited.ID)
	assert.Equal(t, "1 GB - 7 días", limited.Title)
	assert.Equal(t, 7, limited.Days)
	assert.False(t, limited.IsUnlimited)
	assert.Equal(t, "1 GB", limited.DataLabel)
	assert.True(t, decimal.RequireFromString("9.5").Equal(limited.PriceUSD))
	assert.True(t, decimal.RequireFromString("7.6").Equal(limited.NetPriceUSD))

	unlimited := catalog.Plans[1]
	assert.Equal(t, "Datos ilimitados - 1 día", unlimited.Title)
	assert.Equal(t, "Datos ilimitados", unlimited.DataLabel)
	assert.True(t, unlimited.IsUnlimited)
	assert.True(t, decimal.RequireFromString("4").Equal(unlimited.PriceUSD))
}

func TestToCatalog_EnglishLabels(t *testing.T) {
	catalog := ToCatalog(parsePackages(t, argentinaPackagesJSON), "AR", NewLabels("en"))

	require.Len(t, catalog.Plans, 2)
	assert.Equal(t, "1 GB - 7 days", catalog.Plans[0].Title)
	assert.Equal(t, "Unlimited data - 1 day", catalog.Plans[1].Title)
}

func TestToCatalog_EmptyResponse(t *testing.T) {
	tests := []struct {
		name string
		resp *PackagesResponse
	}{
		{"nil response", nil},
		{"no data", &PackagesResponse{}},
		{"empty data", &PackagesResponse{Data: []Country{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := ToCatalog(tt.resp, "ZZ", NewLabels("es"))

			assert.Equal(t, "ZZ", catalog.Country.Code)
			assert.Equal(t, "ZZ", catalog.Country.Name)
			assert.Nil(t, catalog.Country.FlagImageURL)
			assert.Nil(t, catalog.Operator.ID)
			assert.Nil(t, catalog.Operator.Name)
			assert.Nil(t, catalog.Operator.ImageURL)
			assert.NotNil(t, catalog.Plans)
			assert.Empty(t, catalog.Plans)
		})
	}
}

func TestToCatalog_CountryWithoutOperators(t *testing.T) {
	resp := &PackagesResponse{Data: []Country{{CountryCode: "UY", Title: "Uruguay"}}}

	catalog := ToCatalog(resp, "UY", nil)

	assert.Equal(t, "Uruguay", catalog.Country.Name)
	assert.Nil(t, catalog.Country.FlagImageURL)
	assert.Nil(t, catalog.Operator.ID)
	assert.NotNil(t, catalog.Plans)
	assert.Empty(t, catalog.Plans)
}

func TestToCatalog_FallsBackToRequestedCountry(t *testing.T) {
	resp := &PackagesResponse{Data: []Country{{Image: &Image{URL: ""}}}}

	catalog := ToCatalog(resp, "CL", NewLabels("es"))

	assert.Equal(t, "CL", catalog.Country.Code)
	assert.Equal(t, "CL", catalog.Country.Name)
	assert.Nil(t, catalog.Country.FlagImageURL)
}

func TestToCatalog_SkipsUnpurchasablePackages(t *testing.T) {
	title := ""
	resp := &PackagesResponse{Data: []Country{{
		CountryCode: "AR",
		Operators: []Operator{{
			Title: &title,
			Packages: []Package{
				{ID: "", Day: 7, Data: "1 GB"},
				{ID: "zero-days", Day: 0, Data: "1 GB"},
				{ID: "ok", Day: 3, Data: "500 MB"},
			},
		}},
	}}}

	catalog := ToCatalog(resp, "AR", NewLabels("es"))

	assert.Nil(t, catalog.Operator.Name)
	require.Len(t, catalog.Plans, 1)
	assert.Equal(t, "ok", catalog.Plans[0].ID)
	assert.Equal(t, "500 MB - 3 días", catalog.Plans[0].Title)
}

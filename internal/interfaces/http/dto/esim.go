package dto

import "github.com/globoesim/gateway/internal/domain/esim"

// CatalogQuery binds the package listing query string
type CatalogQuery struct {
	Country string `form:"country" binding:"omitempty,len=2,alpha"`
}

// CreateOrderRequest is the order creation body
type CreateOrderRequest struct {
	PackageID string `json:"packageId" example:"chispa-7days-1gb"`
	Email     string `json:"email" binding:"omitempty,email" example:"buyer@example.com"`
}

// CountryResponse describes the catalog country
type CountryResponse struct {
	Code      string  `json:"code" example:"AR"`
	Name      string  `json:"name" example:"Argentina"`
	FlagImage *string `json:"flagImage"`
}

// OperatorResponse describes the operator whose plans are listed
type OperatorResponse struct {
	ID    *int64  `json:"id"`
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

// PlanResponse is one purchasable plan
type PlanResponse struct {
	ID          string  `json:"id" example:"chispa-7days-1gb"`
	Title       string  `json:"title" example:"1 GB - 7 días"`
	Days        int     `json:"days" example:"7"`
	IsUnlimited bool    `json:"isUnlimited"`
	Data        string  `json:"data" example:"1 GB"`
	PriceUSD    float64 `json:"priceUsd" example:"9.5"`
	NetPriceUSD float64 `json:"netPriceUsd" example:"7.6"`
}

// CatalogResponse is the package listing payload
type CatalogResponse struct {
	Country  CountryResponse  `json:"country"`
	Operator OperatorResponse `json:"operator"`
	Plans    []PlanResponse   `json:"plans"`
}

// OrderResponse renders every order key, null when the provider omitted it
type OrderResponse struct {
	ID                         *int64   `json:"id"`
	Code                       *string  `json:"code"`
	PackageID                  *string  `json:"packageId"`
	PackageName                *string  `json:"packageName"`
	Data                       *string  `json:"data"`
	ValidityDays               *int     `json:"validityDays"`
	Price                      *float64 `json:"price"`
	Currency                   *string  `json:"currency"`
	ManualInstallationHTML     *string  `json:"manualInstallationHtml"`
	QRInstallationHTML         *string  `json:"qrInstallationHtml"`
	InstallationGuideURL       *string  `json:"installationGuideUrl"`
	QRCodeURL                  *string  `json:"qrCodeUrl"`
	LPA                        *string  `json:"lpa"`
	DirectAppleInstallationURL *string  `json:"directAppleInstallationUrl"`
}

// CreateOrderResponse wraps the created order
type CreateOrderResponse struct {
	Order OrderResponse `json:"order"`
}

// NewCatalogResponse converts a domain catalog
func NewCatalogResponse(c esim.Catalog) CatalogResponse {
	plans := make([]PlanResponse, 0, len(c.Plans))
	for _, p := range c.Plans {
		plans = append(plans, PlanResponse{
			ID:          p.ID,
			Title:       p.Title,
			Days:        p.Days,
			IsUnlimited: p.IsUnlimited,
			Data:        p.DataLabel,
			PriceUSD:    p.PriceUSD.InexactFloat64(),
			NetPriceUSD: p.NetPriceUSD.InexactFloat64(),
		})
	}
	return CatalogResponse{
		Country: CountryResponse{
			Code:      c.Country.Code,
			Name:      c.Country.Name,
			FlagImage: c.Country.FlagImageURL,
		},
		Operator: OperatorResponse{
			ID:    c.Operator.ID,
			Name:  c.Operator.Name,
			Image: c.Operator.ImageURL,
		},
		Plans: plans,
	}
}

// NewCreateOrderResponse converts a domain order
func NewCreateOrderResponse(o esim.Order) CreateOrderResponse {
	var price *float64
	if o.Price.Valid {
		v := o.Price.Decimal.InexactFloat64()
		price = &v
	}
	return CreateOrderResponse{
		Order: OrderResponse{
			ID:                         o.ID,
			Code:                       o.Code,
			PackageID:                  o.PackageID,
			PackageName:                o.PackageName,
			Data:                       o.DataLabel,
			ValidityDays:               o.ValidityDays,
			Price:                      price,
			Currency:                   o.Currency,
			ManualInstallationHTML:     o.ManualInstallationHTML,
			QRInstallationHTML:         o.QRInstallationHTML,
			InstallationGuideURL:       o.InstallationGuideURL,
			QRCodeURL:                  o.QRCodeURL,
			LPA:                        o.LPACode,
			DirectAppleInstallationURL: o.DirectAppleInstallationURL,
		},
	}
}

// ToOrderRequest converts the body to the domain request
func (r CreateOrderRequest) ToOrderRequest() esim.OrderRequest {
	return esim.OrderRequest{PackageID: r.PackageID, Email: r.Email}
}

package esim

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderRequest is a purchase request for a single eSIM.
type OrderRequest struct {
	PackageID string
	Email     string
	// IdempotencyKey deduplicates retried purchases; optional.
	IdempotencyKey string
}

// Normalize trims surrounding whitespace from all fields.
func (r OrderRequest) Normalize() OrderRequest {
	return OrderRequest{
		PackageID:      strings.TrimSpace(r.PackageID),
		Email:          strings.TrimSpace(r.Email),
		IdempotencyKey: strings.TrimSpace(r.IdempotencyKey),
	}
}

// Validate checks the request before it is sent upstream.
func (r OrderRequest) Validate() error {
	if strings.TrimSpace(r.PackageID) == "" {
		return NewRequiredError("packageId")
	}
	if len(r.IdempotencyKey) > MaxIdempotencyKeyLength {
		return NewValidationError("idempotencyKey", fmt.Sprintf("must be at most %d characters", MaxIdempotencyKeyLength))
	}
	return nil
}

// HasEmail reports whether the eSIM should be shared with a recipient.
func (r OrderRequest) HasEmail() bool {
	return strings.TrimSpace(r.Email) != ""
}

// Order is a provisioned eSIM. Every field is optional: the provider may
// omit any of them and absence is preserved.
type Order struct {
	ID                         *int64
	Code                       *string
	PackageID                  *string
	PackageName                *string
	DataLabel                  *string
	ValidityDays               *int
	Price                      decimal.NullDecimal
	Currency                   *string
	ManualInstallationHTML     *string
	QRInstallationHTML         *string
	InstallationGuideURL       *string
	QRCodeURL                  *string
	LPACode                    *string
	DirectAppleInstallationURL *string
}

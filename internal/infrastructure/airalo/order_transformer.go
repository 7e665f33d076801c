package airalo

import (
	"bytes"
	"fmt"
	"mime/multipart"

	"github.com/globoesim/gateway/internal/domain/esim"
)

// fallbackGuideLanguage is used when no guide exists in the configured language
const fallbackGuideLanguage = "en"

// BuildOrderRequest returns the form fields for a single eSIM purchase.
// When email is set the eSIM is shared by link with that recipient, and
// copied to the configured copy address if there is one.
func BuildOrderRequest(packageID, email string, config *Config) []FormField {
	fields := []FormField{
		{Key: "quantity", Value: "1"},
		{Key: "package_id", Value: packageID},
		{Key: "type", Value: "esim"},
		{Key: "description", Value: config.OrderDescription(packageID)},
	}
	if email == "" {
		return fields
	}

	fields = append(fields,
		FormField{Key: "to_email", Value: email},
		FormField{Key: "sharing_option[]", Value: "link"},
	)
	if config.CopyAddress != "" {
		fields = append(fields, FormField{Key: "copy_address[]", Value: config.CopyAddress})
	}
	return fields
}

// EncodeMultipart encodes fields as a multipart/form-data body and returns it
// with its content type.
func EncodeMultipart(fields []FormField) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.Key, f.Value); err != nil {
			return nil, "", fmt.Errorf("airalo: failed to write field %s: %w", f.Key, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("airalo: failed to close multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// ToOrder reshapes an order response. Absent or malformed optional fields
// stay nil; only a missing data object fails.
// guideLanguage selects the installation guide, falling back to English.
func ToOrder(resp *OrderResponse, guideLanguage string) (esim.Order, error) {
	if resp == nil || resp.Data == nil {
		return esim.Order{}, esim.NewTransformError("order response has no data", nil)
	}
	d := resp.Data

	order := esim.Order{
		ID:                     d.ID.Int64(),
		Code:                   d.Code.Ptr(),
		PackageID:              d.PackageID.Ptr(),
		PackageName:            d.Package.Ptr(),
		DataLabel:              d.Data.Ptr(),
		ValidityDays:           intPtr(d.Validity.Int64()),
		Price:                  d.Price.Decimal(),
		Currency:               d.Currency.Ptr(),
		ManualInstallationHTML: d.ManualInstallation.Ptr(),
		QRInstallationHTML:     d.QRCodeInstallation.Ptr(),
		InstallationGuideURL:   installationGuide(d.InstallationGuides, guideLanguage),
	}

	if len(d.Sims) > 0 {
		sim := d.Sims[0]
		order.QRCodeURL = sim.QRCodeURL.Ptr()
		order.LPACode = sim.QRCode.Ptr()
		order.DirectAppleInstallationURL = sim.DirectAppleInstallationURL.Ptr()
	}
	return order, nil
}

func installationGuide(guides GuideMap, language string) *string {
	for _, lang := range []string{language, fallbackGuideLanguage} {
		if url := guides[lang]; url != "" {
			return &url
		}
	}
	return nil
}

func intPtr(v *int64) *int {
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}

package airalo

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globoesim/gateway/internal/domain/esim"
)

func fieldMap(fields []FormField) map[string]string {
	m := make(map[string]string, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	return m
}

func TestBuildOrderRequest(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		copyAddress string
		want        map[string]string
	}{
		{
			name: "without email",
			want: map[string]string{
				"quantity":    "1",
				"package_id":  "chispa-7days-1gb",
				"type":        "esim",
				"description": "Globo eSIM - package chispa-7days-1gb",
			},
		},
		{
			name:  "with email",
			email: "ana@example.com",
			want: map[string]string{
				"quantity":         "1",
				"package_id":       "chispa-7days-1gb",
				"type":             "esim",
				"description":      "Globo eSIM - package chispa-7days-1gb",
				"to_email":         "ana@example.com",
				"sharing_option[]": "link",
			},
		},
		{
			name:        "with email and copy address",
			email:       "ana@example.com",
			copyAddress: "ops@globo.example",
			want: map[string]string{
				"quantity":         "1",
				"package_id":       "chispa-7days-1gb",
				"type":             "esim",
				"description":      "Globo eSIM - package chispa-7days-1gb",
				"to_email":         "ana@example.com",
				"sharing_option[]": "link",
				"copy_address[]":   "ops@globo.example",
			},
		},
		{
			name:        "copy address ignored without email",
			copyAddress: "ops@globo.example",
			want: map[string]string{
				"quantity":    "1",
				"package_id":  "chispa-7days-1gb",
				"type":        "esim",
				"description": "Globo eSIM - package chispa-7days-1gb",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("client", "secret")
			cfg.CopyAddress = tt.copyAddress

			fields := BuildOrderRequest("chispa-7days-1gb", tt.email, cfg)

			assert.Len(t, fields, len(tt.want))
			assert.Equal(t, tt.want, fieldMap(fields))
		})
	}
}

func TestEncodeMultipart(t *testing.T) {
	fields := []FormField{
		{Key: "quantity", Value: "1"},
		{Key: "sharing_option[]", Value: "link"},
	}

	body, contentType, err := EncodeMultipart(fields)
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	got := map[string]string{}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		value, err := io.ReadAll(part)
		require.NoError(t, err)
		got[part.FormName()] = string(value)
	}
	assert.Equal(t, map[string]string{"quantity": "1", "sharing_option[]": "link"}, got)
}

const orderResponseJSON = `{
  "data": {
    "id": 9666,
    "code": "20230317-009666",
    "package_id": "chispa-7days-1gb",
    "package": "Chispa Mobile-1 GB - 7 Days",
    "quantity": "1",
    "type": "sim",
    "description": "Globo eSIM - package chispa-7days-1gb",
    "data": "1 GB",
    "validity": "7",
    "price": 9.5,
    "currency": "USD",
    "manual_installation": "<p>manual</p>",
    "qrcode_installation": "<p>qr</p>",
    "installation_guides": {"en": "https://guides.example.com/en", "es": "https://guides.example.com/es"},
    "sims": [
      {
        "id": 11047,
        "iccid": "891000000000009125",
        "lpa": "lpa.example.com",
        "qrcode": "LPA:1$lpa.example.com$TEST",
        "qrcode_url": "https://cdn.example.com/qr.png",
        "direct_apple_installation_url": "https://esimsetup.apple.com/x"
      },
      {"id": 11048, "qrcode_url": "https://cdn.example.com/ignored.png"}
    ]
  },
  "meta": {"message": "success"}
}`

func parseOrder(t *testing.T, raw string) *OrderResponse {
	t.Helper()
	var resp OrderResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return &resp
}

func TestToOrder(t *testing.T) {
	order, err := ToOrder(parseOrder(t, orderResponseJSON), "es")
	require.NoError(t, err)

	require.NotNil(t, order.ID)
	assert.Equal(t, int64(9666), *order.ID)
	assert.Equal(t, "20230317-009666", *order.Code)
	assert.Equal(t, "chispa-7days-1gb", *order.PackageID)
	assert.Equal(t, "Chispa Mobile-1 GB - 7 Days", *order.PackageName)
	assert.Equal(t, "1 GB", *order.DataLabel)
	require.NotNil(t, order.ValidityDays)
	assert.Equal(t, 7, *order.ValidityDays)
	require.True(t, order.Price.Valid)
	assert.True(t, decimal.RequireFromString("9.5").Equal(order.Price.Decimal))
	assert.Equal(t, "USD", *order.Currency)
	assert.Equal(t, "<p>manual</p>", *order.ManualInstallationHTML)
	assert.Equal(t, "<p>qr</p>", *order.QRInstallationHTML)
	assert.Equal(t, "https://guides.example.com/es", *order.InstallationGuideURL)
	assert.Equal(t, "https://cdn.example.com/qr.png", *order.QRCodeURL)
	assert.Equal(t, "LPA:1$lpa.example.com$TEST", *order.LPACode)
	assert.Equal(t, "https://esimsetup.apple.com/x", *order.DirectAppleInstallationURL)
}

func TestToOrder_GuideFallback(t *testing.T) {
	tests := []struct {
		name   string
		guides map[string]string
		lang   string
		want   *string
	}{
		{"configured language", map[string]string{"es": "es-url", "en": "en-url"}, "es", strPtr("es-url")},
		{"english fallback", map[string]string{"en": "en-url"}, "es", strPtr("en-url")},
		{"no matching guide", map[string]string{"de": "de-url"}, "es", nil},
		{"no guides", nil, "es", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &OrderResponse{Data: &OrderData{InstallationGuides: tt.guides}}
			order, err := ToOrder(resp, tt.lang)
			require.NoError(t, err)
			assert.Equal(t, tt.want, order.InstallationGuideURL)
		})
	}
}

func TestToOrder_MinimalResponse(t *testing.T) {
	order, err := ToOrder(parseOrder(t, `{"data": {"id": 1, "sims": []}}`), "es")
	require.NoError(t, err)

	require.NotNil(t, order.ID)
	assert.Equal(t, int64(1), *order.ID)
	assert.Nil(t, order.Code)
	assert.Nil(t, order.ValidityDays)
	assert.False(t, order.Price.Valid)
	assert.Nil(t, order.QRCodeURL)
	assert.Nil(t, order.LPACode)
	assert.Nil(t, order.DirectAppleInstallationURL)
	assert.Nil(t, order.InstallationGuideURL)
}

func TestToOrder_MissingSims(t *testing.T) {
	order, err := ToOrder(parseOrder(t, `{"data": {"id": 2, "code": "20260301-000002"}}`), "es")
	require.NoError(t, err)

	assert.Equal(t, "20260301-000002", *order.Code)
	assert.Nil(t, order.QRCodeURL)
	assert.Nil(t, order.LPACode)
	assert.Nil(t, order.DirectAppleInstallationURL)
}

// Charged orders must map even when the provider changes field shapes.
func TestToOrder_LenientShapes(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, order esim.Order)
	}{
		{
			name: "empty guides encoded as array",
			raw:  `{"data": {"id": 3, "installation_guides": [], "sims": [{"qrcode_url": "https://cdn.example.com/qr.png"}]}}`,
			check: func(t *testing.T, order esim.Order) {
				assert.Nil(t, order.InstallationGuideURL)
				assert.Equal(t, "https://cdn.example.com/qr.png", *order.QRCodeURL)
			},
		},
		{
			name: "non-numeric sim id",
			raw:  `{"data": {"id": 4, "sims": [{"id": "x1", "iccid": 891000, "qrcode": "LPA:1$lpa.example.com$X1"}]}}`,
			check: func(t *testing.T, order esim.Order) {
				assert.Equal(t, "LPA:1$lpa.example.com$X1", *order.LPACode)
			},
		},
		{
			name: "guides with non-string entries",
			raw:  `{"data": {"installation_guides": {"es": 5, "en": "https://guides.example.com/en"}}}`,
			check: func(t *testing.T, order esim.Order) {
				assert.Equal(t, "https://guides.example.com/en", *order.InstallationGuideURL)
			},
		},
		{
			name: "unparsable numbers stay nil",
			raw:  `{"data": {"id": "ord-5", "validity": "7 days", "price": "", "code": "20260301-000005"}}`,
			check: func(t *testing.T, order esim.Order) {
				assert.Nil(t, order.ID)
				assert.Nil(t, order.ValidityDays)
				assert.False(t, order.Price.Valid)
				assert.Equal(t, "20260301-000005", *order.Code)
			},
		},
		{
			name: "numeric strings and numbers in text fields",
			raw:  `{"data": {"id": "6", "validity": 30.0, "price": "12.50", "code": 20260301, "data": "3 GB"}}`,
			check: func(t *testing.T, order esim.Order) {
				assert.Equal(t, int64(6), *order.ID)
				assert.Equal(t, 30, *order.ValidityDays)
				assert.Equal(t, "12.5", order.Price.Decimal.String())
				assert.Equal(t, "20260301", *order.Code)
				assert.Equal(t, "3 GB", *order.DataLabel)
			},
		},
		{
			name: "sims not an array",
			raw:  `{"data": {"id": 7, "sims": {"qrcode_url": "https://cdn.example.com/qr.png"}}}`,
			check: func(t *testing.T, order esim.Order) {
				assert.Nil(t, order.QRCodeURL)
			},
		},
		{
			name: "first sim malformed keeps its position",
			raw:  `{"data": {"sims": ["broken", {"qrcode_url": "https://cdn.example.com/second.png"}]}}`,
			check: func(t *testing.T, order esim.Order) {
				assert.Nil(t, order.QRCodeURL)
			},
		},
		{
			name: "null fields",
			raw:  `{"data": {"id": null, "code": null, "installation_guides": null, "sims": null, "price": null}}`,
			check: func(t *testing.T, order esim.Order) {
				assert.Nil(t, order.ID)
				assert.Nil(t, order.Code)
				assert.Nil(t, order.InstallationGuideURL)
				assert.False(t, order.Price.Valid)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := ToOrder(parseOrder(t, tt.raw), "es")
			require.NoError(t, err)
			tt.check(t, order)
		})
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		raw       string
		wantValid bool
		wantInt   *int64
	}{
		{`42`, true, int64Ptr(42)},
		{`"42"`, true, int64Ptr(42)},
		{`" 7 "`, true, int64Ptr(7)},
		{`7.0`, true, int64Ptr(7)},
		{`9.5`, true, nil},
		{`"abc"`, false, nil},
		{`""`, false, nil},
		{`null`, false, nil},
		{`true`, false, nil},
		{`[1]`, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &n))
			assert.Equal(t, tt.wantValid, n.Valid)
			assert.Equal(t, tt.wantInt, n.Int64())
		})
	}
}

func TestNullableString(t *testing.T) {
	tests := []struct {
		raw  string
		want *string
	}{
		{`"LPA:1$x"`, strPtr("LPA:1$x")},
		{`""`, nil},
		{`12`, strPtr("12")},
		{`false`, strPtr("false")},
		{`null`, nil},
		{`{"a": 1}`, nil},
		{`["a"]`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var s NullableString
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &s))
			assert.Equal(t, tt.want, s.Ptr())
		})
	}
}

func TestToOrder_NoData(t *testing.T) {
	for _, resp := range []*OrderResponse{nil, {}} {
		_, err := ToOrder(resp, "es")
		require.Error(t, err)
		assert.ErrorIs(t, err, esim.ErrTransform)
		assert.ErrorIs(t, err, esim.ErrUpstream)
	}
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

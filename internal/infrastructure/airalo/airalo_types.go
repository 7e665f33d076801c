package airalo

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Token API types
// ---------------------------------------------------------------------------

// TokenResponse is the body returned by POST /v2/token
type TokenResponse struct {
	Data *TokenData `json:"data"`
	Meta *Meta      `json:"meta,omitempty"`
}

// TokenData holds the issued credential
type TokenData struct {
	TokenType   string `json:"token_type"`
	AccessToken string `json:"access_token"`
	ExpiresIn   *int64 `json:"expires_in"`
}

// Meta is the envelope metadata returned by most endpoints
type Meta struct {
	Message string `json:"message"`
}

// ---------------------------------------------------------------------------
// Packages API types
// ---------------------------------------------------------------------------

// PackagesResponse is the body returned by GET /v2/packages
type PackagesResponse struct {
	Data []Country `json:"data"`
}

// Country is one country entry of the catalog
type Country struct {
	Slug        string     `json:"slug"`
	CountryCode string     `json:"country_code"`
	Title       string     `json:"title"`
	Image       *Image     `json:"image"`
	Operators   []Operator `json:"operators"`
}

// Image is an image reference attached to countries and operators
type Image struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URL    string `json:"url"`
}

// Operator is a network operator offering packages in a country
type Operator struct {
	ID       *int64    `json:"id"`
	Title    *string   `json:"title"`
	Type     string    `json:"type"`
	Image    *Image    `json:"image"`
	Packages []Package `json:"packages"`
}

// Package is a purchasable data package
type Package struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	NetPrice    decimal.Decimal `json:"net_price"`
	Amount      int64           `json:"amount"`
	Day         int             `json:"day"`
	IsUnlimited bool            `json:"is_unlimited"`
	Data        string          `json:"data"`
}

// ---------------------------------------------------------------------------
// Orders API types
// ---------------------------------------------------------------------------

// OrderResponse is the body returned by POST /v2/orders. The order has
// already been charged when this arrives, so every field the gateway reads is
// decoded leniently and unread fields are not decoded at all.
type OrderResponse struct {
	Data *OrderData `json:"data"`
	Meta *Meta      `json:"meta,omitempty"`
}

// OrderData describes a placed order
type OrderData struct {
	ID                 Number         `json:"id"`
	Code               NullableString `json:"code"`
	PackageID          NullableString `json:"package_id"`
	Package            NullableString `json:"package"`
	Data               NullableString `json:"data"`
	Validity           Number         `json:"validity"`
	Price              Number         `json:"price"`
	Currency           NullableString `json:"currency"`
	ManualInstallation NullableString `json:"manual_installation"`
	QRCodeInstallation NullableString `json:"qrcode_installation"`
	InstallationGuides GuideMap       `json:"installation_guides"`
	Sims               SimList        `json:"sims"`
}

// Sim is one provisioned eSIM of an order
type Sim struct {
	QRCode                     NullableString `json:"qrcode"`
	QRCodeURL                  NullableString `json:"qrcode_url"`
	DirectAppleInstallationURL NullableString `json:"direct_apple_installation_url"`
}

// Number accepts a JSON number or a numeric string. Anything else, null
// included, leaves it invalid without failing the decode.
type Number struct {
	Value json.Number
	Valid bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	switch v := decodeLoose(b).(type) {
	case json.Number:
		*n = Number{Value: v, Valid: true}
	case string:
		s := strings.TrimSpace(v)
		if _, err := decimal.NewFromString(s); err == nil {
			*n = Number{Value: json.Number(s), Valid: true}
		}
	}
	return nil
}

// Int64 returns the value when it is integral, otherwise nil.
func (n Number) Int64() *int64 {
	if !n.Valid {
		return nil
	}
	if v, err := n.Value.Int64(); err == nil {
		return &v
	}
	d, err := decimal.NewFromString(n.Value.String())
	if err != nil || !d.IsInteger() {
		return nil
	}
	v := d.IntPart()
	return &v
}

// Decimal returns the value as a decimal, invalid when absent or unparsable.
func (n Number) Decimal() decimal.NullDecimal {
	if !n.Valid {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(n.Value.String())
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// NullableString accepts a JSON string, number or boolean, keeping its text.
// null, objects and arrays leave it invalid without failing the decode.
type NullableString struct {
	Value string
	Valid bool
}

func (s *NullableString) UnmarshalJSON(b []byte) error {
	*s = NullableString{}
	switch v := decodeLoose(b).(type) {
	case string:
		*s = NullableString{Value: v, Valid: true}
	case json.Number:
		*s = NullableString{Value: v.String(), Valid: true}
	case bool:
		*s = NullableString{Value: strconv.FormatBool(v), Valid: true}
	}
	return nil
}

// Ptr returns the text, or nil when invalid or empty.
func (s NullableString) Ptr() *string {
	if !s.Valid || s.Value == "" {
		return nil
	}
	v := s.Value
	return &v
}

// GuideMap holds installation guide URLs by language. An empty array, the
// way the provider encodes an empty map, or any other non-object decodes as
// no guides; non-string entries are skipped.
type GuideMap map[string]string

func (g *GuideMap) UnmarshalJSON(b []byte) error {
	*g = nil
	obj, ok := decodeLoose(b).(map[string]any)
	if !ok {
		return nil
	}
	guides := make(GuideMap, len(obj))
	for lang, v := range obj {
		if url, ok := v.(string); ok {
			guides[lang] = url
		}
	}
	*g = guides
	return nil
}

// SimList decodes the sims array. A non-array decodes as empty and an entry
// that is not an object becomes a zero Sim, so positions are kept.
type SimList []Sim

func (l *SimList) UnmarshalJSON(b []byte) error {
	*l = nil
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	sims := make(SimList, len(raw))
	for i, r := range raw {
		_ = json.Unmarshal(r, &sims[i])
	}
	*l = sims
	return nil
}

// decodeLoose decodes b into an any, with numbers kept as json.Number. It
// returns nil for null and for invalid input.
func decodeLoose(b []byte) any {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// ---------------------------------------------------------------------------
// Form encoding
// ---------------------------------------------------------------------------

// FormField is one multipart field. Keys may repeat.
type FormField struct {
	Key   string
	Value string
}

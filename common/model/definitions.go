package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// JSONUnmarshal is a helper so callers don't import encoding/json everywhere.
func JSONUnmarshal(data []byte, out interface{}) error {
	return json.Unmarshal(data, out)
}

// ----------------------------------------------------------------------
// Coercion types for loosely-typed wire fields
// ----------------------------------------------------------------------

// FlexInt is an integer that also accepts its decimal-string form on the
// wire ("5" and 5 both decode to 5).
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("cannot decode %q as integer: %w", string(data), err)
	}
	*f = FlexInt(n)
	return nil
}

// Int returns the plain integer value.
func (f FlexInt) Int() int { return int(f) }

// FlexFloat is a float that also accepts its string form on the wire.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("cannot decode %q as float: %w", string(data), err)
	}
	*f = FlexFloat(n)
	return nil
}

// Stock is a product's remaining stock. The wire sends either a count
// (number or numeric string) or boolean true for unlimited stock.
type Stock struct {
	Unlimited bool
	Count     int
}

func (s *Stock) UnmarshalJSON(data []byte) error {
	switch trimmed := strings.TrimSpace(string(data)); trimmed {
	case "null":
		*s = Stock{}
		return nil
	case "true":
		*s = Stock{Unlimited: true}
		return nil
	case "false":
		*s = Stock{}
		return nil
	default:
		var n FlexInt
		if err := n.UnmarshalJSON(data); err != nil {
			return fmt.Errorf("cannot decode stock: %w", err)
		}
		*s = Stock{Count: n.Int()}
		return nil
	}
}

func (s Stock) MarshalJSON() ([]byte, error) {
	if s.Unlimited {
		return []byte("true"), nil
	}
	return json.Marshal(s.Count)
}

// ----------------------------------------------------------------------
// Normalized hub records. Plain values with no identity beyond their
// fields; recreated on every fresh fetch.
// ----------------------------------------------------------------------

// HubInfo is the storefront summary returned by hub/getinfo.
type HubInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Owner        string `json:"owner"`
	LogoURL      string `json:"logo_url"`
	Active       bool   `json:"active"`
	ProductCount int    `json:"product_count"`
}

// HubDescription is the long-form storefront description.
type HubDescription struct {
	Description string `json:"description"`
}

// HubTerms holds the storefront's terms of service.
type HubTerms struct {
	Terms string `json:"terms"`
}

// Packables is the delivery/pricing metadata attached to a product, e.g.
// stripe/USD pricing. Absent on products without off-platform pricing.
type Packables struct {
	StripeID string  `json:"stripe_id"`
	PriceUSD float64 `json:"price_usd"`
	Currency string  `json:"currency"`
}

// Product is one catalog entry.
type Product struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Price        int        `json:"price"`
	Stock        Stock      `json:"stock"`
	Purchases    int        `json:"purchases"`
	ImageURL     string     `json:"image_url"`
	DevProductID int64      `json:"dev_product_id"`
	OnSale       bool       `json:"on_sale"`
	Packables    *Packables `json:"packables,omitempty"`
}

// PlayerProfile is the verification record for one player.
type PlayerProfile struct {
	RobloxID     int64    `json:"roblox_id"`
	Username     string   `json:"username"`
	UserType     string   `json:"user_type"`
	Verified     bool     `json:"verified"`
	LinkedSince  string   `json:"linked_since"`
	OwnedProduct []string `json:"owned_products"`
}

// WhitelistReceipt is the outcome of an order-completion call. Raw keeps the
// untouched response body for callers that need fields we don't model.
type WhitelistReceipt struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Raw     json.RawMessage `json:"-"`
}

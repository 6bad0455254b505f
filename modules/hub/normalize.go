package hub

import (
	"encoding/json"

	"github.com/renlith/hubapi/common/model"
)

// This file maps the API's raw wire shapes onto the stable records in
// common/model. The mapping functions are pure: no network access, and a nil
// raw input yields a nil record.

// rawEnvelope is the wrapper every hub response arrives in.
type rawEnvelope struct {
	Status  model.FlexInt   `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type rawHubInfo struct {
	HubID      string        `json:"hub_id"`
	HubName    string        `json:"hub_name"`
	OwnerName  string        `json:"owner_username"`
	HubLogo    string        `json:"hub_logo"`
	Active     bool          `json:"active"`
	TotalItems model.FlexInt `json:"total_items"`
}

type rawDescription struct {
	HubDescription string `json:"hub_description"`
}

type rawTerms struct {
	HubTOS string `json:"hub_tos"`
}

type rawPackables struct {
	StripePriceID string          `json:"stripe_price_id"`
	USDPrice      model.FlexFloat `json:"usd_price"`
	Currency      string          `json:"currency"`
}

type rawProduct struct {
	ProductID    string        `json:"product_id"`
	DisplayName  string        `json:"display_name"`
	Description  string        `json:"description"`
	RobuxPrice   model.FlexInt `json:"robux_price"`
	Stock        model.Stock   `json:"stock"`
	TotalBought  model.FlexInt `json:"total_bought"`
	ImageURL     string        `json:"image_url"`
	DevProductID model.FlexInt `json:"dev_product_id"`
	OnSale       bool          `json:"onsale"`
	Packables    *rawPackables `json:"packables"`
}

type rawProductList struct {
	Products []rawProduct `json:"products"`
}

type rawPlayerProfile struct {
	RobloxID      model.FlexInt `json:"roblox_id"`
	Username      string        `json:"username"`
	AccountType   string        `json:"account_type"`
	Verified      bool          `json:"verified"`
	LinkedAt      string        `json:"linked_at"`
	OwnedProducts []string      `json:"owned_products"`
}

func normalizeHubInfo(raw *rawHubInfo) *model.HubInfo {
	if raw == nil {
		return nil
	}
	return &model.HubInfo{
		ID:           raw.HubID,
		Name:         raw.HubName,
		Owner:        raw.OwnerName,
		LogoURL:      raw.HubLogo,
		Active:       raw.Active,
		ProductCount: raw.TotalItems.Int(),
	}
}

func normalizeDescription(raw *rawDescription) *model.HubDescription {
	if raw == nil {
		return nil
	}
	return &model.HubDescription{Description: raw.HubDescription}
}

func normalizeTerms(raw *rawTerms) *model.HubTerms {
	if raw == nil {
		return nil
	}
	return &model.HubTerms{Terms: raw.HubTOS}
}

func normalizePackables(raw *rawPackables) *model.Packables {
	// absent packables stays absent, not an empty object
	if raw == nil {
		return nil
	}
	return &model.Packables{
		StripeID: raw.StripePriceID,
		PriceUSD: float64(raw.USDPrice),
		Currency: raw.Currency,
	}
}

func normalizeProduct(raw *rawProduct) *model.Product {
	if raw == nil {
		return nil
	}
	return &model.Product{
		ID:           raw.ProductID,
		Name:         raw.DisplayName,
		Description:  raw.Description,
		Price:        raw.RobuxPrice.Int(),
		Stock:        raw.Stock,
		Purchases:    raw.TotalBought.Int(),
		ImageURL:     raw.ImageURL,
		DevProductID: int64(raw.DevProductID),
		OnSale:       raw.OnSale,
		Packables:    normalizePackables(raw.Packables),
	}
}

func normalizeProducts(raws []rawProduct) []model.Product {
	if raws == nil {
		return nil
	}
	products := make([]model.Product, 0, len(raws))
	for i := range raws {
		products = append(products, *normalizeProduct(&raws[i]))
	}
	return products
}

func normalizePlayerProfile(raw *rawPlayerProfile) *model.PlayerProfile {
	if raw == nil {
		return nil
	}
	return &model.PlayerProfile{
		RobloxID:     int64(raw.RobloxID),
		Username:     raw.Username,
		UserType:     raw.AccountType,
		Verified:     raw.Verified,
		LinkedSince:  raw.LinkedAt,
		OwnedProduct: raw.OwnedProducts,
	}
}

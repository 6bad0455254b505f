package payments

import (
	"context"
	"fmt"

	"github.com/renlith/hubapi/common"
	"github.com/renlith/hubapi/common/model"
)

// PaymentsService grants players access to purchased products.
type PaymentsService interface {
	// WhitelistPurchase marks the product as delivered to the player. On
	// failure the receipt (when the API returned one) comes back with
	// Success false together with the error.
	WhitelistPurchase(ctx context.Context, robloxID int64, productID string) (*model.WhitelistReceipt, error)
}

// paymentsService is the concrete struct implementing PaymentsService.
type paymentsService struct {
	PaymentsClient
	log common.Logger
}

// NewPaymentsService constructs a paymentsService using the given client.
func NewPaymentsService(client PaymentsClient, log common.Logger) PaymentsService {
	if log == nil {
		log = common.NewLogger()
	}
	return &paymentsService{
		PaymentsClient: client,
		log:            log,
	}
}

func (svc *paymentsService) WhitelistPurchase(ctx context.Context, robloxID int64, productID string) (*model.WhitelistReceipt, error) {
	if robloxID <= 0 {
		return nil, fmt.Errorf("invalid roblox id %d", robloxID)
	}
	if productID == "" {
		return nil, fmt.Errorf("product id is required")
	}

	receipt, err := svc.CompleteOrder(ctx, robloxID, productID)
	if err != nil {
		svc.log.Warnf("whitelist of product %s for %d failed: %v", productID, robloxID, err)
		if receipt == nil {
			receipt = &model.WhitelistReceipt{Success: false}
		}
		return receipt, err
	}
	return receipt, nil
}

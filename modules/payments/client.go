package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/renlith/hubapi/common"
	"github.com/renlith/hubapi/common/model"
)

// PaymentsClient is the lower-level interface for the payments host. Order
// completion is a mutation and never goes anywhere near the cache.
type PaymentsClient interface {
	CompleteOrder(ctx context.Context, robloxID int64, productID string) (*model.WhitelistReceipt, error)
}

// paymentsClient implements PaymentsClient.
type paymentsClient struct {
	BaseURL string
	Client  common.HttpClient
}

// NewPaymentsClient constructs a paymentsClient against the payments host.
func NewPaymentsClient(baseURL string, client common.HttpClient) PaymentsClient {
	return &paymentsClient{
		BaseURL: baseURL,
		Client:  client,
	}
}

// orderRequest is the POST body for hub/order/complete.
type orderRequest struct {
	RobloxID  int64  `json:"robloxID"`
	ProductID string `json:"productID"`
}

// CompleteOrder POSTs the order to hub/order/complete and returns the parsed
// receipt alongside the untouched body.
func (pc *paymentsClient) CompleteOrder(ctx context.Context, robloxID int64, productID string) (*model.WhitelistReceipt, error) {
	payload, err := json.Marshal(orderRequest{RobloxID: robloxID, ProductID: productID})
	if err != nil {
		return nil, fmt.Errorf("encoding order request: %w", err)
	}

	requestURL := fmt.Sprintf("%s/hub/order/complete", pc.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := pc.Client.Do(req)
	if err != nil {
		common.RequestsTotal.WithLabelValues("payments", common.OutcomeTransport).Inc()
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	receipt := parseReceipt(data, resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		common.RequestsTotal.WithLabelValues("payments", common.OutcomeFail).Inc()
		return receipt, &common.HTTPError{StatusCode: resp.StatusCode, Body: data}
	}
	common.RequestsTotal.WithLabelValues("payments", common.OutcomeSuccess).Inc()
	return receipt, nil
}

// parseReceipt decodes what it can from the body; the raw bytes are kept
// either way. A missing success flag falls back to the HTTP status.
func parseReceipt(data []byte, statusCode int) *model.WhitelistReceipt {
	var parsed struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(data, &parsed)

	success := statusCode >= 200 && statusCode < 300
	if parsed.Success != nil {
		success = *parsed.Success
	}
	return &model.WhitelistReceipt{
		Success: success,
		Message: parsed.Message,
		Raw:     json.RawMessage(data),
	}
}

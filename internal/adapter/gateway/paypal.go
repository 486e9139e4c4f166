package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/beautymart/internal/config"
	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
	"github.com/polkiloo/beautymart/internal/domain/model"
)

// PayPal drives the v1 Payments API: create a sale, redirect the payer,
// then execute with the returned payer id.
type PayPal struct {
	client   *restClient
	clientID string
	secret   string
	currency string
}

type paypalItem struct {
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Quantity int    `json:"quantity"`
}

type paypalAmount struct {
	Currency string         `json:"currency"`
	Total    string         `json:"total"`
	Details  *paypalDetails `json:"details,omitempty"`
}

type paypalDetails struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
}

type paypalItemList struct {
	Items []paypalItem `json:"items"`
}

type paypalTransaction struct {
	ItemList    *paypalItemList `json:"item_list,omitempty"`
	Amount      paypalAmount    `json:"amount"`
	Description string          `json:"description,omitempty"`
	Custom      string          `json:"custom,omitempty"`
}

type paypalPayment struct {
	Intent       string              `json:"intent"`
	Payer        map[string]string   `json:"payer"`
	RedirectURLs map[string]string   `json:"redirect_urls"`
	Transactions []paypalTransaction `json:"transactions"`
}

type paypalPaymentResponse struct {
	ID           string              `json:"id"`
	State        string              `json:"state"`
	Transactions []paypalTransaction `json:"transactions"`
	Links        []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

// NewPayPal builds the wallet gateway adapter.
func NewPayPal(cfg config.PayPalConfig, timeout time.Duration, logger *slog.Logger) (*PayPal, error) {
	client, err := newRESTClient("paypal", cfg.BaseURL, timeout, logger)
	if err != nil {
		return nil, err
	}
	return &PayPal{
		client:   client,
		clientID: cfg.ClientID,
		secret:   cfg.Secret,
		currency: strings.ToUpper(cfg.Currency),
	}, nil
}

func (p *PayPal) Method() model.PaymentMethod { return model.PaymentPayPal }

func (p *PayPal) Configured() error {
	if p.clientID == "" || p.secret == "" {
		return domainErrors.ErrGatewayNotConfigured
	}
	return nil
}

// paypalItems lists products and the shipping fee, plus a negative discount line when one applies.
func paypalItems(order *model.Order, charge Charge, currency string) []paypalItem {
	items := make([]paypalItem, 0, len(order.Items)+2)
	for _, item := range order.Items {
		name := item.Name
		if name == "" {
			name = "Item"
		}
		items = append(items, paypalItem{
			Name:     name,
			SKU:      skuOr(item.ProductID),
			Price:    model.FormatAmount(item.Price),
			Currency: currency,
			Quantity: item.Quantity,
		})
	}
	items = append(items, paypalItem{
		Name:     "Shipping Fee",
		SKU:      "shipping",
		Price:    model.FormatAmount(charge.Shipping),
		Currency: currency,
		Quantity: 1,
	})
	if charge.Discount.IsPositive() {
		items = append(items, paypalItem{
			Name:     "Discount",
			SKU:      "discount",
			Price:    model.FormatAmount(charge.Discount.Neg()),
			Currency: currency,
			Quantity: 1,
		})
	}
	return items
}

func skuOr(productID string) string {
	if productID == "" {
		return "item"
	}
	return productID
}

func (p *PayPal) Initiate(ctx context.Context, order *model.Order, charge Charge) (*PaymentHandle, error) {
	if err := p.Configured(); err != nil {
		return nil, err
	}

	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(currencyOr(charge.Currency, p.currency))
	subtotal := charge.Subtotal
	if subtotal.IsZero() {
		subtotal = order.Subtotal()
	}
	adjusted := subtotal.Sub(charge.Discount).Add(charge.Shipping)

	tx := paypalTransaction{
		Amount: paypalAmount{
			Currency: currency,
			Total:    model.FormatAmount(order.Amount),
			Details: &paypalDetails{
				Subtotal: model.FormatAmount(adjusted),
				Shipping: model.FormatAmount(decimal.Zero),
			},
		},
		Description: "Order Payment",
		Custom:      order.ID.String(),
		ItemList:    &paypalItemList{Items: paypalItems(order, charge, currency)},
	}

	body := paypalPayment{
		Intent: "sale",
		Payer:  map[string]string{"payment_method": "paypal"},
		RedirectURLs: map[string]string{
			"return_url": verifyURL(charge.ReturnBaseURL, "verify-paypal", true, order),
			"cancel_url": verifyURL(charge.ReturnBaseURL, "verify-paypal", false, order),
		},
		Transactions: []paypalTransaction{tx},
	}

	req, err := p.client.newJSONRequest(ctx, http.MethodPost, p.client.endpoint("v1", "payments", "payment"), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var created paypalPaymentResponse
	if err := p.client.do(req, "create payment", &created); err != nil {
		return nil, err
	}

	approval := ""
	for _, link := range created.Links {
		if link.Rel == "approval_url" {
			approval = link.Href
			break
		}
	}
	if approval == "" || created.ID == "" {
		return nil, &domainErrors.ProviderError{Provider: "paypal", Op: "create payment", Err: fmt.Errorf("approval url missing")}
	}

	return &PaymentHandle{RedirectURL: approval, ProviderRef: created.ID}, nil
}

// Confirm executes the payment and verifies only an "approved" state.
func (p *PayPal) Confirm(ctx context.Context, order *model.Order, payload Payload) (*ConfirmationResult, error) {
	if err := p.Configured(); err != nil {
		return nil, err
	}

	result := &ConfirmationResult{ProviderRef: order.ProviderRef}
	if !payload.Success || payload.PaymentID == "" || payload.PayerID == "" {
		return result, nil
	}
	if payload.PaymentID != order.ProviderRef {
		return result, nil
	}

	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := p.client.newJSONRequest(ctx, http.MethodPost,
		p.client.endpoint("v1", "payments", "payment", payload.PaymentID, "execute"),
		map[string]string{"payer_id": payload.PayerID})
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var executed paypalPaymentResponse
	if err := p.client.do(req, "execute payment", &executed); err != nil {
		return nil, err
	}

	if executed.State != "approved" {
		return result, nil
	}

	confirmation := &model.Confirmation{
		Provider:      "paypal",
		TransactionID: executed.ID,
		PayerID:       payload.PayerID,
		State:         executed.State,
	}
	if len(executed.Transactions) > 0 {
		confirmation.Amount = executed.Transactions[0].Amount.Total
		confirmation.Currency = executed.Transactions[0].Amount.Currency
	}
	result.Verified = true
	result.Confirmation = confirmation
	return result, nil
}

func (p *PayPal) accessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := p.client.newRequest(ctx, http.MethodPost, p.client.endpoint("v1", "oauth2", "token"),
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.clientID, p.secret)

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := p.client.do(req, "obtain access token", &token); err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", &domainErrors.ProviderError{Provider: "paypal", Op: "obtain access token", Err: fmt.Errorf("empty token")}
	}
	return token.AccessToken, nil
}

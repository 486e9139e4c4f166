package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/polkiloo/beautymart/internal/config"
	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
	"github.com/polkiloo/beautymart/internal/domain/model"
)

// Razorpay creates provider orders and verifies checkout signatures.
type Razorpay struct {
	client    *restClient
	keyID     string
	keySecret string
	currency  string
	now       func() time.Time
}

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrder struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// NewRazorpay builds the regional gateway adapter.
func NewRazorpay(cfg config.RazorpayConfig, timeout time.Duration, logger *slog.Logger) (*Razorpay, error) {
	client, err := newRESTClient("razorpay", cfg.BaseURL, timeout, logger)
	if err != nil {
		return nil, err
	}
	return &Razorpay{
		client:    client,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		currency:  strings.ToUpper(cfg.Currency),
		now:       time.Now,
	}, nil
}

func (r *Razorpay) Method() model.PaymentMethod { return model.PaymentRazorpay }

func (r *Razorpay) Configured() error {
	if r.keyID == "" || r.keySecret == "" {
		return domainErrors.ErrGatewayNotConfigured
	}
	return nil
}

func (r *Razorpay) Initiate(ctx context.Context, order *model.Order, charge Charge) (*PaymentHandle, error) {
	if err := r.Configured(); err != nil {
		return nil, err
	}

	body := razorpayOrderRequest{
		Amount:   model.ToMinor(order.Amount),
		Currency: strings.ToUpper(currencyOr(charge.Currency, r.currency)),
		Receipt:  fmt.Sprintf("receipt_%d", r.now().UnixMilli()),
		Notes:    map[string]string{"order_id": order.ID.String()},
	}
	req, err := r.client.newJSONRequest(ctx, http.MethodPost, r.client.endpoint("v1", "orders"), body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(r.keyID, r.keySecret)

	var created razorpayOrder
	if err := r.client.do(req, "create order", &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, &domainErrors.ProviderError{Provider: "razorpay", Op: "create order", Err: fmt.Errorf("order id missing")}
	}

	return &PaymentHandle{
		ProviderRef: created.ID,
		ProviderOrder: &ProviderOrder{
			ID:       created.ID,
			Amount:   created.Amount,
			Currency: created.Currency,
			Receipt:  created.Receipt,
			KeyID:    r.keyID,
		},
	}, nil
}

// Confirm accepts only when the provider order matches the one recorded at
// initiation and the supplied signature equals HMAC-SHA256(secret, "orderId|paymentId").
func (r *Razorpay) Confirm(_ context.Context, order *model.Order, payload Payload) (*ConfirmationResult, error) {
	if err := r.Configured(); err != nil {
		return nil, err
	}

	result := &ConfirmationResult{ProviderRef: order.ProviderRef}
	if payload.ProviderOrderID == "" || payload.PaymentID == "" || payload.Signature == "" {
		return result, nil
	}
	if !hmac.Equal([]byte(payload.ProviderOrderID), []byte(order.ProviderRef)) {
		return result, nil
	}

	expected := razorpaySignature(r.keySecret, payload.ProviderOrderID, payload.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(payload.Signature)) {
		return result, nil
	}

	result.Verified = true
	result.Confirmation = &model.Confirmation{
		Provider:        "razorpay",
		ProviderOrderID: payload.ProviderOrderID,
		TransactionID:   payload.PaymentID,
		Signature:       payload.Signature,
		Amount:          model.FormatAmount(order.Amount),
		Currency:        r.currency,
		State:           "captured",
	}
	return result, nil
}

func razorpaySignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

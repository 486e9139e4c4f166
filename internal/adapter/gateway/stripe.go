package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/beautymart/internal/config"
	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
	"github.com/polkiloo/beautymart/internal/domain/model"
)

const (
	deliveryLineName       = "Delivery Charges"
	stripeWebhookTolerance = 5 * time.Minute

	StripeEventCompleted = "checkout.session.completed"
	StripeEventExpired   = "checkout.session.expired"
)

// Stripe creates hosted checkout sessions through the Stripe REST API.
type Stripe struct {
	client        *restClient
	secretKey     string
	webhookSecret string
	currency      string
	now           func() time.Time
}

type stripeSession struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	ClientReferenceID string `json:"client_reference_id"`
	PaymentStatus     string `json:"payment_status"`
	PaymentIntent     string `json:"payment_intent"`
	AmountTotal       int64  `json:"amount_total"`
	Currency          string `json:"currency"`
}

// StripeLineItem is a single priced entry of a checkout session.
type StripeLineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int
}

// WebhookEvent is the subset of a Stripe event used for reconciliation.
type WebhookEvent struct {
	ID                string
	Type              string
	SessionID         string
	ClientReferenceID string
	PaymentStatus     string
}

// NewStripe builds the card gateway adapter.
func NewStripe(cfg config.StripeConfig, timeout time.Duration, logger *slog.Logger) (*Stripe, error) {
	client, err := newRESTClient("stripe", cfg.BaseURL, timeout, logger)
	if err != nil {
		return nil, err
	}
	return &Stripe{
		client:        client,
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		currency:      strings.ToLower(cfg.Currency),
		now:           time.Now,
	}, nil
}

func (s *Stripe) Method() model.PaymentMethod { return model.PaymentStripe }

func (s *Stripe) Configured() error {
	if s.secretKey == "" {
		return domainErrors.ErrGatewayNotConfigured
	}
	return nil
}

// StripeLineItems lists one entry per order item followed by the delivery charge.
func StripeLineItems(order *model.Order, charge Charge) []StripeLineItem {
	items := make([]StripeLineItem, 0, len(order.Items)+1)
	for _, item := range order.Items {
		items = append(items, StripeLineItem{
			Name:       item.Name,
			UnitAmount: model.ToMinor(item.Price),
			Quantity:   item.Quantity,
		})
	}
	return append(items, StripeLineItem{
		Name:       deliveryLineName,
		UnitAmount: model.ToMinor(charge.DeliveryFee),
		Quantity:   1,
	})
}

func (s *Stripe) Initiate(ctx context.Context, order *model.Order, charge Charge) (*PaymentHandle, error) {
	if err := s.Configured(); err != nil {
		return nil, err
	}

	currency := strings.ToLower(currencyOr(charge.Currency, s.currency))
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", order.ID.String())
	form.Set("success_url", verifyURL(charge.ReturnBaseURL, "verify", true, order))
	form.Set("cancel_url", verifyURL(charge.ReturnBaseURL, "verify", false, order))
	form.Set("metadata[order_id]", order.ID.String())
	for i, item := range StripeLineItems(order, charge) {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", currency)
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	req, err := s.client.newRequest(ctx, http.MethodPost, s.client.endpoint("v1", "checkout", "sessions"),
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Idempotency-Key", order.ID.String())

	var session stripeSession
	if err := s.client.do(req, "create checkout session", &session); err != nil {
		return nil, err
	}
	if session.ID == "" || session.URL == "" {
		return nil, &domainErrors.ProviderError{Provider: "stripe", Op: "create checkout session", Err: fmt.Errorf("session url missing")}
	}

	return &PaymentHandle{RedirectURL: session.URL, ProviderRef: session.ID}, nil
}

// Confirm never trusts the redirect flag alone: the session is looked up
// server side and must report payment_status "paid".
func (s *Stripe) Confirm(ctx context.Context, order *model.Order, payload Payload) (*ConfirmationResult, error) {
	if err := s.Configured(); err != nil {
		return nil, err
	}
	if !payload.Success || order.ProviderRef == "" {
		return &ConfirmationResult{Verified: false, ProviderRef: order.ProviderRef}, nil
	}

	session, err := s.session(ctx, order.ProviderRef)
	if err != nil {
		return nil, err
	}

	verified := session.PaymentStatus == "paid" && session.ClientReferenceID == order.ID.String()
	result := &ConfirmationResult{Verified: verified, ProviderRef: session.ID}
	if verified {
		result.Confirmation = &model.Confirmation{
			Provider:        "stripe",
			ProviderOrderID: session.ID,
			TransactionID:   session.PaymentIntent,
			Amount:          model.FormatAmount(model.FromMinor(session.AmountTotal)),
			Currency:        session.Currency,
			State:           session.PaymentStatus,
		}
	}
	return result, nil
}

func (s *Stripe) session(ctx context.Context, id string) (*stripeSession, error) {
	req, err := s.client.newRequest(ctx, http.MethodGet, s.client.endpoint("v1", "checkout", "sessions", id), "", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	var session stripeSession
	if err := s.client.do(req, "retrieve checkout session", &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ParseWebhook authenticates a Stripe-Signature header and decodes the event.
func (s *Stripe) ParseWebhook(body []byte, header string) (*WebhookEvent, error) {
	if s.webhookSecret == "" {
		return nil, domainErrors.ErrGatewayNotConfigured
	}

	timestamp, signatures := parseSignatureHeader(header)
	if timestamp == "" || len(signatures) == 0 {
		return nil, domainErrors.ErrInvalidSignature
	}
	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return nil, domainErrors.ErrInvalidSignature
	}
	age := s.now().Sub(time.Unix(unix, 0))
	if age > stripeWebhookTolerance || age < -stripeWebhookTolerance {
		return nil, domainErrors.ErrInvalidSignature
	}

	expected := []byte(stripeSignature(s.webhookSecret, timestamp, body))
	matched := false
	for _, sig := range signatures {
		if hmac.Equal(expected, []byte(sig)) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, domainErrors.ErrInvalidSignature
	}

	var event struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object stripeSession `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, domainErrors.Invalid("malformed webhook payload")
	}

	return &WebhookEvent{
		ID:                event.ID,
		Type:              event.Type,
		SessionID:         event.Data.Object.ID,
		ClientReferenceID: event.Data.Object.ClientReferenceID,
		PaymentStatus:     event.Data.Object.PaymentStatus,
	}, nil
}

func parseSignatureHeader(header string) (string, []string) {
	var (
		timestamp  string
		signatures []string
	)
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signatures = append(signatures, value)
		}
	}
	return timestamp, signatures
}

func stripeSignature(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func verifyURL(base, page string, success bool, order *model.Order) string {
	return fmt.Sprintf("%s/%s?success=%t&orderId=%s", strings.TrimRight(base, "/"), page, success, order.ID)
}

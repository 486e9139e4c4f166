package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/polkiloo/beautymart/internal/config"
	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
	"github.com/polkiloo/beautymart/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func sampleOrder(method model.PaymentMethod) *model.Order {
	return &model.Order{
		ID:     uuid.New(),
		UserID: 1,
		Items: []model.OrderItem{
			{ProductID: "p1", Name: "Serum", Price: decimal.RequireFromString("15"), Quantity: 2},
			{ProductID: "p2", Name: "Toner", Price: decimal.RequireFromString("10"), Quantity: 1},
		},
		Amount:        decimal.RequireFromString("50"),
		PaymentMethod: method,
		Status:        model.DefaultOrderStatus,
	}
}

type GatewaySuite struct {
	suite.Suite

	mux    *http.ServeMux
	server *httptest.Server
}

func (s *GatewaySuite) SetupTest() {
	s.mux = http.NewServeMux()
	s.server = httptest.NewServer(s.mux)
}

func (s *GatewaySuite) TearDownTest() {
	s.server.Close()
}

func (s *GatewaySuite) stripe(secret string) *Stripe {
	g, err := NewStripe(config.StripeConfig{
		SecretKey:     secret,
		WebhookSecret: "whsec_test",
		BaseURL:       s.server.URL,
		Currency:      "USD",
	}, time.Second, testLogger())
	s.Require().NoError(err)
	return g
}

func (s *GatewaySuite) razorpay(secret string) *Razorpay {
	g, err := NewRazorpay(config.RazorpayConfig{
		KeyID:     "rzp_key",
		KeySecret: secret,
		BaseURL:   s.server.URL,
		Currency:  "inr",
	}, time.Second, testLogger())
	s.Require().NoError(err)
	g.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return g
}

func (s *GatewaySuite) paypal(secret string) *PayPal {
	g, err := NewPayPal(config.PayPalConfig{
		ClientID: "pp_client",
		Secret:   secret,
		BaseURL:  s.server.URL,
		Currency: "USD",
	}, time.Second, testLogger())
	s.Require().NoError(err)
	return g
}

func (s *GatewaySuite) handlePayPalToken() {
	s.mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		s.True(ok)
		s.Equal("pp_client", user)
		s.Equal("pp_secret", pass)
		s.NoError(r.ParseForm())
		s.Equal("client_credentials", r.PostForm.Get("grant_type"))
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "A21"})
	})
}

func (s *GatewaySuite) TestNotConfiguredFailsBeforeNetwork() {
	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.Fail("no request expected", r.URL.Path)
	})

	order := sampleOrder(model.PaymentStripe)
	for _, g := range []Gateway{s.stripe(""), s.razorpay(""), s.paypal("")} {
		s.ErrorIs(g.Configured(), domainErrors.ErrGatewayNotConfigured)
		_, err := g.Initiate(context.Background(), order, Charge{})
		s.ErrorIs(err, domainErrors.ErrGatewayNotConfigured)
		_, err = g.Confirm(context.Background(), order, Payload{Success: true})
		s.ErrorIs(err, domainErrors.ErrGatewayNotConfigured)
	}
}

func (s *GatewaySuite) TestStripeLineItemsAppendDeliveryCharge() {
	order := sampleOrder(model.PaymentStripe)
	items := StripeLineItems(order, Charge{DeliveryFee: decimal.NewFromInt(10)})

	s.Require().Len(items, len(order.Items)+1)
	s.Equal(StripeLineItem{Name: "Serum", UnitAmount: 1500, Quantity: 2}, items[0])
	last := items[len(items)-1]
	s.Equal("Delivery Charges", last.Name)
	s.Equal(int64(1000), last.UnitAmount)
	s.Equal(1, last.Quantity)
}

func (s *GatewaySuite) TestStripeInitiateCreatesSession() {
	order := sampleOrder(model.PaymentStripe)
	s.mux.HandleFunc("/v1/checkout/sessions", func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("Bearer sk_test", r.Header.Get("Authorization"))
		s.NoError(r.ParseForm())
		s.Equal("payment", r.PostForm.Get("mode"))
		s.Equal(order.ID.String(), r.PostForm.Get("client_reference_id"))
		s.Equal("https://shop.example/verify?success=true&orderId="+order.ID.String(), r.PostForm.Get("success_url"))
		s.Equal("https://shop.example/verify?success=false&orderId="+order.ID.String(), r.PostForm.Get("cancel_url"))
		s.Equal("Serum", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		s.Equal("1500", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		s.Equal("usd", r.PostForm.Get("line_items[0][price_data][currency]"))
		s.Equal("Delivery Charges", r.PostForm.Get("line_items[2][price_data][product_data][name]"))
		s.Equal("1000", r.PostForm.Get("line_items[2][price_data][unit_amount]"))
		s.Equal("1", r.PostForm.Get("line_items[2][quantity]"))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "cs_test_1", "url": "https://checkout.stripe.test/c/cs_test_1"})
	})

	handle, err := s.stripe("sk_test").Initiate(context.Background(), order, Charge{
		DeliveryFee:   decimal.NewFromInt(10),
		ReturnBaseURL: "https://shop.example/",
	})
	s.Require().NoError(err)
	s.Equal("cs_test_1", handle.ProviderRef)
	s.Equal("https://checkout.stripe.test/c/cs_test_1", handle.RedirectURL)
}

func (s *GatewaySuite) TestStripeInitiateProviderFailure() {
	s.mux.HandleFunc("/v1/checkout/sessions", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad"}}`, http.StatusBadGateway)
	})

	_, err := s.stripe("sk_test").Initiate(context.Background(), sampleOrder(model.PaymentStripe), Charge{})
	var providerErr *domainErrors.ProviderError
	s.Require().ErrorAs(err, &providerErr)
	s.Equal(http.StatusBadGateway, providerErr.StatusCode)
	s.ErrorIs(err, domainErrors.ErrGatewayUnavailable)
}

func (s *GatewaySuite) TestStripeConfirmChecksSessionServerSide() {
	order := sampleOrder(model.PaymentStripe)
	order.ProviderRef = "cs_test_1"
	status := "paid"
	s.mux.HandleFunc("/v1/checkout/sessions/cs_test_1", func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodGet, r.Method)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                  "cs_test_1",
			"client_reference_id": order.ID.String(),
			"payment_status":      status,
			"payment_intent":      "pi_1",
			"amount_total":        5000,
			"currency":            "usd",
		})
	})
	g := s.stripe("sk_test")

	result, err := g.Confirm(context.Background(), order, Payload{Success: true})
	s.Require().NoError(err)
	s.True(result.Verified)
	s.Equal("pi_1", result.Confirmation.TransactionID)
	s.Equal("50.00", result.Confirmation.Amount)

	status = "unpaid"
	result, err = g.Confirm(context.Background(), order, Payload{Success: true})
	s.Require().NoError(err)
	s.False(result.Verified, "forged success redirect must not verify")

	result, err = g.Confirm(context.Background(), order, Payload{Success: false})
	s.Require().NoError(err)
	s.False(result.Verified)
}

func (s *GatewaySuite) TestStripeWebhookSignature() {
	g := s.stripe("sk_test")
	now := time.Unix(1700000000, 0)
	g.now = func() time.Time { return now }

	body := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","client_reference_id":"abc","payment_status":"paid"}}}`)
	ts := fmt.Sprint(now.Unix())
	header := "t=" + ts + ",v1=" + stripeSignature("whsec_test", ts, body)

	event, err := g.ParseWebhook(body, header)
	s.Require().NoError(err)
	s.Equal(StripeEventCompleted, event.Type)
	s.Equal("cs_1", event.SessionID)
	s.Equal("paid", event.PaymentStatus)

	tampered := append([]byte(nil), body...)
	tampered[len(tampered)-2] = ' '
	_, err = g.ParseWebhook(tampered, header)
	s.ErrorIs(err, domainErrors.ErrInvalidSignature)

	_, err = g.ParseWebhook(body, "v1=deadbeef")
	s.ErrorIs(err, domainErrors.ErrInvalidSignature)

	g.now = func() time.Time { return now.Add(6 * time.Minute) }
	_, err = g.ParseWebhook(body, header)
	s.ErrorIs(err, domainErrors.ErrInvalidSignature)

	g.webhookSecret = ""
	_, err = g.ParseWebhook(body, header)
	s.ErrorIs(err, domainErrors.ErrGatewayNotConfigured)
}

func (s *GatewaySuite) TestRazorpayInitiateCreatesProviderOrder() {
	order := sampleOrder(model.PaymentRazorpay)
	s.mux.HandleFunc("/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		s.True(ok)
		s.Equal("rzp_key", user)
		s.Equal("rzp_secret", pass)

		var body razorpayOrderRequest
		s.NoError(json.NewDecoder(r.Body).Decode(&body))
		s.Equal(int64(5000), body.Amount)
		s.Equal("INR", body.Currency)
		s.Equal("receipt_1700000000123", body.Receipt)

		_ = json.NewEncoder(w).Encode(razorpayOrder{ID: "order_9", Amount: body.Amount, Currency: body.Currency, Receipt: body.Receipt})
	})

	handle, err := s.razorpay("rzp_secret").Initiate(context.Background(), order, Charge{})
	s.Require().NoError(err)
	s.Equal("order_9", handle.ProviderRef)
	s.Require().NotNil(handle.ProviderOrder)
	s.Equal("rzp_key", handle.ProviderOrder.KeyID)
	s.Equal(int64(5000), handle.ProviderOrder.Amount)
}

func (s *GatewaySuite) TestRazorpaySignatureRejectsAnyMutation() {
	g := s.razorpay("rzp_secret")
	order := sampleOrder(model.PaymentRazorpay)
	order.ProviderRef = "order_9"
	valid := Payload{
		ProviderOrderID: "order_9",
		PaymentID:       "pay_42",
		Signature:       razorpaySignature("rzp_secret", "order_9", "pay_42"),
	}

	result, err := g.Confirm(context.Background(), order, valid)
	s.Require().NoError(err)
	s.True(result.Verified)
	s.Equal("pay_42", result.Confirmation.TransactionID)

	mutate := func(v string, i int) string {
		b := []byte(v)
		if b[i] == 'a' {
			b[i] = 'b'
		} else {
			b[i] = 'a'
		}
		return string(b)
	}

	for i := range valid.Signature {
		p := valid
		p.Signature = mutate(valid.Signature, i)
		result, err := g.Confirm(context.Background(), order, p)
		s.Require().NoError(err)
		s.False(result.Verified, "signature mutation at %d", i)
	}
	for i := range valid.PaymentID {
		p := valid
		p.PaymentID = mutate(valid.PaymentID, i)
		result, err := g.Confirm(context.Background(), order, p)
		s.Require().NoError(err)
		s.False(result.Verified, "payment id mutation at %d", i)
	}
	for i := range valid.ProviderOrderID {
		p := valid
		p.ProviderOrderID = mutate(valid.ProviderOrderID, i)
		result, err := g.Confirm(context.Background(), order, p)
		s.Require().NoError(err)
		s.False(result.Verified, "order id mutation at %d", i)
	}

	p := valid
	p.Signature = ""
	result, err = g.Confirm(context.Background(), order, p)
	s.Require().NoError(err)
	s.False(result.Verified)
}

func (s *GatewaySuite) TestPayPalInitiateBuildsItemizedSale() {
	order := sampleOrder(model.PaymentPayPal)
	order.Amount = decimal.RequireFromString("35")
	s.handlePayPalToken()
	s.mux.HandleFunc("/v1/payments/payment", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("Bearer A21", r.Header.Get("Authorization"))
		var body paypalPayment
		s.NoError(json.NewDecoder(r.Body).Decode(&body))
		s.Equal("sale", body.Intent)
		s.Equal("https://shop.example/verify-paypal?success=true&orderId="+order.ID.String(), body.RedirectURLs["return_url"])
		if !s.Len(body.Transactions, 1) {
			return
		}

		tx := body.Transactions[0]
		s.Equal("35.00", tx.Amount.Total)
		s.Equal("35.00", tx.Amount.Details.Subtotal)
		s.Equal("0.00", tx.Amount.Details.Shipping)
		if !s.Len(tx.ItemList.Items, 4) {
			return
		}
		s.Equal("Shipping Fee", tx.ItemList.Items[2].Name)
		s.Equal("5.00", tx.ItemList.Items[2].Price)
		s.Equal("Discount", tx.ItemList.Items[3].Name)
		s.Equal("-10.00", tx.ItemList.Items[3].Price)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "PAY-1",
			"links": []map[string]string{
				{"rel": "self", "href": "https://api.paypal.test/v1/payments/payment/PAY-1"},
				{"rel": "approval_url", "href": "https://paypal.test/approve?token=EC-1"},
			},
		})
	})

	handle, err := s.paypal("pp_secret").Initiate(context.Background(), order, Charge{
		ReturnBaseURL: "https://shop.example",
		Subtotal:      decimal.RequireFromString("40"),
		Discount:      decimal.RequireFromString("10"),
		Shipping:      decimal.RequireFromString("5"),
	})
	s.Require().NoError(err)
	s.Equal("PAY-1", handle.ProviderRef)
	s.Equal("https://paypal.test/approve?token=EC-1", handle.RedirectURL)
}

func (s *GatewaySuite) TestPayPalInitiateMissingApprovalLink() {
	s.handlePayPalToken()
	s.mux.HandleFunc("/v1/payments/payment", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "PAY-1"})
	})

	_, err := s.paypal("pp_secret").Initiate(context.Background(), sampleOrder(model.PaymentPayPal), Charge{})
	s.ErrorIs(err, domainErrors.ErrGatewayUnavailable)
}

func (s *GatewaySuite) TestPayPalConfirmRequiresApprovedState() {
	order := sampleOrder(model.PaymentPayPal)
	order.ProviderRef = "PAY-1"
	state := "approved"
	s.handlePayPalToken()
	s.mux.HandleFunc("/v1/payments/payment/PAY-1/execute", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		s.NoError(json.NewDecoder(r.Body).Decode(&body))
		s.Equal("PAYER1", body["payer_id"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "PAY-1",
			"state": state,
			"transactions": []map[string]any{
				{"amount": map[string]string{"total": "50.00", "currency": "USD"}},
			},
		})
	})
	g := s.paypal("pp_secret")
	payload := Payload{Success: true, PaymentID: "PAY-1", PayerID: "PAYER1"}

	result, err := g.Confirm(context.Background(), order, payload)
	s.Require().NoError(err)
	s.True(result.Verified)
	s.Equal("PAYER1", result.Confirmation.PayerID)
	s.Equal("50.00", result.Confirmation.Amount)

	for _, st := range []string{"failed", "created", "canceled"} {
		state = st
		result, err := g.Confirm(context.Background(), order, payload)
		s.Require().NoError(err)
		s.False(result.Verified, "state %s must not verify", st)
	}

	foreign := payload
	foreign.PaymentID = "PAY-2"
	result, err = g.Confirm(context.Background(), order, foreign)
	s.Require().NoError(err)
	s.False(result.Verified)
}

func (s *GatewaySuite) TestPayPalTokenFailureIsRetryable() {
	s.mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	order := sampleOrder(model.PaymentPayPal)
	order.ProviderRef = "PAY-1"
	_, err := s.paypal("pp_secret").Confirm(context.Background(), order, Payload{Success: true, PaymentID: "PAY-1", PayerID: "X"})
	s.ErrorIs(err, domainErrors.ErrGatewayUnavailable)
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func TestNewRESTClientValidatesURL(t *testing.T) {
	_, err := newRESTClient("stripe", "://bad-url", time.Second, testLogger())
	require.Error(t, err)
	_, err = newRESTClient("stripe", "/relative", time.Second, testLogger())
	require.Error(t, err)

	c, err := newRESTClient("stripe", "https://api.example/base", 0, testLogger())
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, c.httpClient.Timeout)
	require.Equal(t, "https://api.example/base/v1/orders", c.endpoint("v1", "orders"))
}

func TestRESTClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := newRESTClient("razorpay", base, time.Second, testLogger())
	require.NoError(t, err)
	req, err := c.newRequest(context.Background(), http.MethodGet, c.endpoint("v1"), "", nil)
	require.NoError(t, err)

	err = c.do(req, "ping", nil)
	var providerErr *domainErrors.ProviderError
	require.True(t, errors.As(err, &providerErr))
	require.Equal(t, "razorpay", providerErr.Provider)
	require.ErrorIs(t, err, domainErrors.ErrGatewayUnavailable)
}

func TestRESTClientLogsErrorResponses(t *testing.T) {
	called := make(chan struct{}, 1)
	handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.LevelKey && a.Value.Any() == slog.LevelError {
			select {
			case called <- struct{}{}:
			default:
			}
		}
		return a
	}})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := newRESTClient("paypal", srv.URL, time.Second, slog.New(handler))
	require.NoError(t, err)
	req, err := c.newRequest(context.Background(), http.MethodGet, c.endpoint("v1"), "", nil)
	require.NoError(t, err)
	require.Error(t, c.do(req, "ping", nil))

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("expected error log to be written")
	}
}

func TestRESTClientDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not-json")
	}))
	defer srv.Close()

	c, err := newRESTClient("stripe", srv.URL, time.Second, testLogger())
	require.NoError(t, err)
	req, err := c.newRequest(context.Background(), http.MethodGet, c.endpoint("v1"), "", nil)
	require.NoError(t, err)

	var out map[string]any
	require.ErrorIs(t, c.do(req, "read", &out), domainErrors.ErrGatewayUnavailable)
}

func TestRegistry(t *testing.T) {
	stripe, err := NewStripe(config.StripeConfig{BaseURL: "https://api.stripe.test"}, time.Second, testLogger())
	require.NoError(t, err)

	registry := NewRegistry(stripe)
	g, err := registry.Get(model.PaymentStripe)
	require.NoError(t, err)
	require.Equal(t, model.PaymentStripe, g.Method())

	_, err = registry.Get(model.PaymentPayPal)
	require.ErrorIs(t, err, domainErrors.ErrUnknownMethod)
}

func TestModuleConstructors(t *testing.T) {
	cfg := &config.Config{Gateways: config.GatewaysConfig{
		Timeout:  time.Second,
		Stripe:   config.StripeConfig{BaseURL: "https://api.stripe.test", SecretKey: "sk"},
		Razorpay: config.RazorpayConfig{BaseURL: "https://api.razorpay.test"},
		PayPal:   config.PayPalConfig{BaseURL: "https://api.paypal.test"},
	}}
	p := adapterParams{Config: cfg, Logger: testLogger()}

	stripe, err := newStripe(p)
	require.NoError(t, err)
	razorpay, err := newRazorpay(p)
	require.NoError(t, err)
	paypal, err := newPayPal(p)
	require.NoError(t, err)

	registry := newRegistry(registryParams{Stripe: stripe, Razorpay: razorpay, PayPal: paypal})
	for _, method := range []model.PaymentMethod{model.PaymentStripe, model.PaymentRazorpay, model.PaymentPayPal} {
		_, err := registry.Get(method)
		require.NoError(t, err)
	}

	readiness := registry.Readiness()
	require.Len(t, readiness, 3)
	require.NoError(t, readiness[model.PaymentStripe])
	require.ErrorIs(t, readiness[model.PaymentRazorpay], domainErrors.ErrGatewayNotConfigured)
	require.ErrorIs(t, readiness[model.PaymentPayPal], domainErrors.ErrGatewayNotConfigured)

	cfg.Gateways.Stripe.BaseURL = "relative/path"
	_, err = newStripe(p)
	require.Error(t, err)
}

func TestVerifyURL(t *testing.T) {
	order := &model.Order{ID: uuid.MustParse("6f1c1a8e-4a5b-4c1d-9a55-0f4e9c1b2d3e")}
	got := verifyURL("https://shop.example/", "verify", false, order)
	parsed, err := url.Parse(got)
	require.NoError(t, err)
	require.Equal(t, "/verify", parsed.Path)
	require.Equal(t, "false", parsed.Query().Get("success"))
	require.Equal(t, order.ID.String(), parsed.Query().Get("orderId"))
	require.True(t, strings.HasPrefix(got, "https://shop.example/verify?success=false"))
}

package dto

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/beautymart/internal/adapter/gateway"
	"github.com/polkiloo/beautymart/internal/domain/model"
)

// PlaceOrderRequest is the checkout payload shared by every payment method.
// Wallet checkouts send the breakdown and may send the total instead of the amount.
type PlaceOrderRequest struct {
	Items   []model.OrderItem `json:"items"`
	Amount  decimal.Decimal   `json:"amount"`
	Total   decimal.Decimal   `json:"total"`
	Address model.Address     `json:"address"`

	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Shipping decimal.Decimal `json:"shipping"`
}

// ChargeAmount returns the amount to charge, falling back to the total.
func (r PlaceOrderRequest) ChargeAmount() decimal.Decimal {
	if r.Amount.IsZero() {
		return r.Total
	}
	return r.Amount
}

// RazorpayVerifyRequest carries the widget callback for a placed order.
type RazorpayVerifyRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	OrderRef  string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

// StripeVerifyQuery is the redirect query of the card checkout.
type StripeVerifyQuery struct {
	OrderID string `form:"orderId" binding:"required"`
	Success bool   `form:"success"`
}

// PayPalVerifyQuery is the redirect query of the wallet checkout.
type PayPalVerifyQuery struct {
	OrderID   string `form:"orderId" binding:"required"`
	Success   bool   `form:"success"`
	PaymentID string `form:"paymentId" binding:"required"`
	PayerID   string `form:"payerId" binding:"required"`
}

// StatusRequest updates the fulfilment status of an order.
type StatusRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// Order is the wire representation of a stored order.
type Order struct {
	ID            string              `json:"_id"`
	UserID        int64               `json:"userId"`
	Items         []model.OrderItem   `json:"items"`
	Amount        decimal.Decimal     `json:"amount"`
	Address       model.Address       `json:"address"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	Payment       bool                `json:"payment"`
	Status        string              `json:"status"`
	Date          int64               `json:"date"`
}

// NewOrder converts a domain order. Date is epoch milliseconds.
func NewOrder(order *model.Order) Order {
	items := order.Items
	if items == nil {
		items = []model.OrderItem{}
	}
	return Order{
		ID:            order.ID.String(),
		UserID:        order.UserID,
		Items:         items,
		Amount:        order.Amount,
		Address:       order.Address,
		PaymentMethod: order.PaymentMethod,
		Payment:       order.Payment,
		Status:        order.Status,
		Date:          order.Date.UnixMilli(),
	}
}

// NewOrders converts a list, never emitting null.
func NewOrders(orders []model.Order) []Order {
	out := make([]Order, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrder(&orders[i]))
	}
	return out
}

// PlaceOrderResponse describes a placed order and how to continue paying it.
type PlaceOrderResponse struct {
	Response
	Order         *Order                 `json:"order,omitempty"`
	SessionURL    string                 `json:"session_url,omitempty"`
	ApprovalURL   string                 `json:"approvalUrl,omitempty"`
	RazorpayOrder *gateway.ProviderOrder `json:"razorpayOrder,omitempty"`
}

// OrdersResponse lists orders.
type OrdersResponse struct {
	Response
	Orders []Order `json:"orders"`
}

// VerifyResponse reports the result of a payment callback.
type VerifyResponse struct {
	Response
	Outcome string `json:"outcome"`
}

package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/beautymart/internal/adapter/gateway"
	"github.com/polkiloo/beautymart/internal/domain/model"
	"github.com/polkiloo/beautymart/internal/server/http/dto"
	"github.com/polkiloo/beautymart/internal/usecase"
)

const stripeSignatureHeader = "Stripe-Signature"

// OrderHandler handles checkout, payment callbacks and order listings.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler creates OrderHandler instance.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Place returns a checkout handler for the given payment method, serving
// POST /api/order/{place,stripe,razorpay,paypal}.
func (h *OrderHandler) Place(method model.PaymentMethod) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}

		result, err := h.facade.PlaceOrder(c.Request.Context(), usecase.CheckoutRequest{
			UserID:   CurrentUserID(c),
			Items:    req.Items,
			Amount:   req.ChargeAmount(),
			Address:  req.Address,
			Method:   method,
			Origin:   c.GetHeader("Origin"),
			Subtotal: req.Subtotal,
			Discount: req.Discount,
			Shipping: req.Shipping,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		order := dto.NewOrder(result.Order)
		resp := dto.PlaceOrderResponse{Response: dto.Ok("order placed successfully"), Order: &order}
		if handle := result.Handle; handle != nil {
			switch method {
			case model.PaymentStripe:
				resp.SessionURL = handle.RedirectURL
			case model.PaymentPayPal:
				resp.ApprovalURL = handle.RedirectURL
			}
			resp.RazorpayOrder = handle.ProviderOrder
		}
		c.JSON(http.StatusOK, resp)
	}
}

// VerifyStripe handles POST /api/order/verifyStripe.
func (h *OrderHandler) VerifyStripe(c *gin.Context) {
	var q dto.StripeVerifyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, err)
		return
	}
	h.confirm(c, model.PaymentStripe, q.OrderID, gateway.Payload{Success: q.Success})
}

// VerifyPayPal handles POST /api/order/verifyPaypal.
func (h *OrderHandler) VerifyPayPal(c *gin.Context) {
	var q dto.PayPalVerifyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, err)
		return
	}
	h.confirm(c, model.PaymentPayPal, q.OrderID, gateway.Payload{
		Success:   q.Success,
		PaymentID: q.PaymentID,
		PayerID:   q.PayerID,
	})
}

// VerifyRazorpay handles POST /api/order/verifyRazorpay.
func (h *OrderHandler) VerifyRazorpay(c *gin.Context) {
	var req dto.RazorpayVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	h.confirm(c, model.PaymentRazorpay, req.OrderID, gateway.Payload{
		Success:         true,
		ProviderOrderID: req.OrderRef,
		PaymentID:       req.PaymentID,
		Signature:       req.Signature,
	})
}

func (h *OrderHandler) confirm(c *gin.Context, method model.PaymentMethod, orderID string, payload gateway.Payload) {
	outcome, err := h.facade.ConfirmPayment(c.Request.Context(), CurrentUserID(c), method, orderID, payload)
	if err != nil {
		respondError(c, err)
		return
	}

	if outcome == usecase.OutcomeDeleted {
		c.JSON(http.StatusOK, dto.VerifyResponse{Response: dto.Failure("payment failed, order deleted"), Outcome: string(outcome)})
		return
	}
	c.JSON(http.StatusOK, dto.VerifyResponse{Response: dto.Ok("payment verified"), Outcome: string(outcome)})
}

// StripeWebhook handles POST /api/order/webhook/stripe.
func (h *OrderHandler) StripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.facade.HandleStripeWebhook(c.Request.Context(), body, c.GetHeader(stripeSignatureHeader)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Ok("received"))
}

// UserOrders handles GET /api/order/user.
func (h *OrderHandler) UserOrders(c *gin.Context) {
	orders, err := h.facade.UserOrders(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrdersResponse{Response: dto.Ok(""), Orders: dto.NewOrders(orders)})
}

// List handles GET /api/order/list.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.AllOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrdersResponse{Response: dto.Ok(""), Orders: dto.NewOrders(orders)})
}

// UpdateStatus handles POST /api/order/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.facade.UpdateOrderStatus(c.Request.Context(), req.OrderID, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Ok("order status updated"))
}

package dto

import "github.com/polkiloo/beautymart/internal/domain/model"

// CartAddRequest adds one unit of a product.
type CartAddRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

// CartUpdateRequest sets the quantity of a product. Zero or less removes it.
type CartUpdateRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity"`
}

// CartResponse returns the current cart.
type CartResponse struct {
	Response
	CartData model.Cart `json:"cartData"`
}

// NewCartResponse wraps cart into the envelope, never emitting null.
func NewCartResponse(message string, cart model.Cart) CartResponse {
	if cart == nil {
		cart = model.Cart{}
	}
	return CartResponse{Response: Ok(message), CartData: cart}
}

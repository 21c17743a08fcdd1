package controllers

import (
	"net/http"

	"github.com/Company-KERL/Kerl-backend/models"
	"github.com/Company-KERL/Kerl-backend/services"
	"github.com/gin-gonic/gin"
)

const cartBodyMessage = "productId, quantity and selectedSizeIndex are required"

// CartController handles requests against the session user's cart.
type CartController struct {
	cartService services.CartService
}

func NewCartController(cartService services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// AddItem handles POST /cart.
func (cc *CartController) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if !bindJSON(c, &req, cartBodyMessage) {
		return
	}
	userID, ok := sessionUser(c, req.UserID)
	if !ok {
		return
	}

	cart, err := cc.cartService.AddItem(c.Request.Context(), userID, &req)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item added to cart", "cart": cart})
}

// RemoveItem handles DELETE /cart. Every line of the product is removed.
func (cc *CartController) RemoveItem(c *gin.Context) {
	var req models.RemoveCartItemRequest
	if !bindJSON(c, &req, "productId is required") {
		return
	}
	userID, ok := sessionUser(c, req.UserID)
	if !ok {
		return
	}

	cart, err := cc.cartService.RemoveItem(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart", "cart": cart})
}

// UpdateItemQuantity handles PUT /cart.
func (cc *CartController) UpdateItemQuantity(c *gin.Context) {
	var req models.UpdateCartItemRequest
	if !bindJSON(c, &req, cartBodyMessage) {
		return
	}
	userID, ok := sessionUser(c, req.UserID)
	if !ok {
		return
	}

	cart, err := cc.cartService.UpdateItemQuantity(c.Request.Context(), userID, &req)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item quantity updated", "cart": cart})
}

// GetItems handles GET /cart/:userId.
func (cc *CartController) GetItems(c *gin.Context) {
	userID, ok := sessionUser(c, c.Param("userId"))
	if !ok {
		return
	}

	cart, err := cc.cartService.GetItems(c.Request.Context(), userID)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart retrieved", "cart": cart})
}

// GetLength handles GET /cart/:userId/length.
func (cc *CartController) GetLength(c *gin.Context) {
	userID, ok := sessionUser(c, c.Param("userId"))
	if !ok {
		return
	}

	length, err := cc.cartService.GetLength(c.Request.Context(), userID)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart retrieved", "cartLength": length})
}

// ClearCart handles DELETE /cart/:userId.
func (cc *CartController) ClearCart(c *gin.Context) {
	userID, ok := sessionUser(c, c.Param("userId"))
	if !ok {
		return
	}

	if err := cc.cartService.ClearCart(c.Request.Context(), userID); err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

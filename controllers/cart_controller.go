package controllers

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/YoussefMohammed93/TheBrothers-Store-sub000/errors"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/middleware"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/repository"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CartAPI is the cart behavior exposed over HTTP.
type CartAPI interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	AddItem(ctx context.Context, userID string, line models.CartLine) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID, size string) (*models.Cart, error)
	ApplyCoupon(ctx context.Context, userID, code string) (*models.Cart, error)
	RemoveCoupon(ctx context.Context, userID string) (*models.Cart, error)
}

type CartController struct {
	cart   CartAPI
	logger *zap.Logger
}

func NewCartController(cart CartAPI, logger *zap.Logger) *CartController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartController{cart: cart, logger: logger}
}

type cartView struct {
	*models.Cart
	Subtotal float64 `json:"subtotal"`
}

func newCartView(cart *models.Cart) cartView {
	if cart.Items == nil {
		cart.Items = []models.CartLine{}
	}
	return cartView{Cart: cart, Subtotal: services.Subtotal(cart.Items)}
}

// GetCart returns the current cart for a user
func (cc *CartController) GetCart(c *gin.Context) {
	userID, ok := cc.userID(c)
	if !ok {
		return
	}

	cart, err := cc.cart.GetCart(c.Request.Context(), userID)
	if err != nil {
		cc.fail(c, "get cart", userID, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(cart))
}

// AddItem adds or updates an item in the cart
func (cc *CartController) AddItem(c *gin.Context) {
	userID, ok := cc.userID(c)
	if !ok {
		return
	}

	var line models.CartLine
	if err := c.ShouldBindJSON(&line); err != nil {
		_ = c.Error(apperrors.ErrInvalidInput.Wrap(err))
		return
	}

	cart, err := cc.cart.AddItem(c.Request.Context(), userID, line)
	if err != nil {
		cc.fail(c, "add item", userID, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(cart))
}

// RemoveItem deletes a product line. The optional size query selects the variant.
func (cc *CartController) RemoveItem(c *gin.Context) {
	userID, ok := cc.userID(c)
	if !ok {
		return
	}

	cart, err := cc.cart.RemoveItem(c.Request.Context(), userID, c.Param("product_id"), c.Query("size"))
	if err != nil {
		cc.fail(c, "remove item", userID, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(cart))
}

func (cc *CartController) ApplyCoupon(c *gin.Context) {
	userID, ok := cc.userID(c)
	if !ok {
		return
	}

	var req models.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ErrInvalidInput.Wrap(err))
		return
	}

	cart, err := cc.cart.ApplyCoupon(c.Request.Context(), userID, req.Code)
	if err != nil {
		cc.fail(c, "apply coupon", userID, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(cart))
}

func (cc *CartController) RemoveCoupon(c *gin.Context) {
	userID, ok := cc.userID(c)
	if !ok {
		return
	}

	cart, err := cc.cart.RemoveCoupon(c.Request.Context(), userID)
	if err != nil {
		cc.fail(c, "remove coupon", userID, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(cart))
}

func (cc *CartController) userID(c *gin.Context) (string, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		_ = c.Error(apperrors.ErrUnauthorized.Wrap(err))
		return "", false
	}
	return userID, true
}

func (cc *CartController) fail(c *gin.Context, op, userID string, err error) {
	var rejected *services.CouponRejectedError
	switch {
	case errors.As(err, &rejected):
		reason := rejected.Reason
		if reason == "" {
			reason = "Coupon is not valid"
		}
		_ = c.Error(apperrors.New(http.StatusUnprocessableEntity, reason, err))
	case errors.Is(err, services.ErrItemNotFound):
		_ = c.Error(apperrors.ErrNotFound.Wrap(err))
	case errors.Is(err, services.ErrEmptyCart):
		_ = c.Error(apperrors.New(http.StatusConflict, "Your cart is empty", err))
	case errors.Is(err, services.ErrCouponsUnavailable):
		_ = c.Error(apperrors.ErrServiceUnavailable.Wrap(err))
	case errors.Is(err, repository.ErrCartConflict):
		_ = c.Error(apperrors.ErrConflict.Wrap(err))
	default:
		cc.logger.Error("Cart operation failed", zap.String("op", op), zap.String("user_id", userID), zap.Error(err))
		_ = c.Error(apperrors.ErrInternalServer.Wrap(err))
	}
}

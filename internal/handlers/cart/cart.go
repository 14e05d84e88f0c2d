package cart

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/craftline/marketplace/internal/config"
	"github.com/craftline/marketplace/internal/mail"
	"github.com/craftline/marketplace/internal/models"
	"github.com/craftline/marketplace/internal/mykafka"
)

type CartHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	Notifier  mail.Notifier
	EmptyCart config.EmptyCartPolicy
}

// AddToCart always inserts a fresh line; two adds of the same product
// make two lines. The product is not looked up, a dangling reference
// simply drops out of later joins.
func (h *CartHandler) AddToCart(c echo.Context) error {
	token := cartToken(c)

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	item := models.CartItem{
		CartToken: token,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, "cart_events", map[string]any{
		"type":      "cart_item_added",
		"cartToken": token,
		"productID": req.ProductID,
		"quantity":  req.Quantity,
	})

	return c.JSON(http.StatusOK, item)
}

// RemoveFromCart deletes every line of the product, not just one.
func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	token := cartToken(c)

	productID, err := strconv.Atoi(c.Param("productID"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := h.DB.
		Where("cart_token = ? AND product_id = ?", token, productID).
		Delete(&models.CartItem{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, "cart_events", map[string]any{
		"type":      "cart_product_removed",
		"cartToken": token,
		"productID": productID,
	})

	lines, total, err := cartLines(h.DB, token)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": lines, "total": total})
}

func (h *CartHandler) GetCart(c echo.Context) error {
	token := cartToken(c)

	lines, total, err := cartLines(h.DB, token)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"items": lines, "total": total})
}

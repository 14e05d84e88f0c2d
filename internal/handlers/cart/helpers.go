package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authhdl "github.com/craftline/marketplace/internal/handlers/auth"
)

const cartCookieName = "cartToken"
const cartCookieTTL = 30 * 24 * time.Hour

// cartToken returns the buyer's cart identity, minting one and setting
// the cookie on first contact. Carts are scoped per token, never shared.
func cartToken(c echo.Context) string {
	if ck, err := c.Cookie(cartCookieName); err == nil && ck.Value != "" {
		return ck.Value
	}

	token := uuid.NewString()
	c.SetCookie(authhdl.CreateCookie(cartCookieName, token, "/", time.Now().Add(cartCookieTTL)))
	return token
}

// CartLine is one cart row joined with its product.
type CartLine struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  uint    `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// cartLines joins the token's cart rows against products and sums the
// total. A row whose product no longer exists drops out of the join.
func cartLines(db *gorm.DB, token string) ([]CartLine, float64, error) {
	var lines []CartLine
	err := db.Table("cart_items").
		Select("cart_items.product_id, products.name, products.price, products.image, cart_items.quantity, products.price * cart_items.quantity AS subtotal").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.cart_token = ?", token).
		Order("cart_items.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, 0, err
	}

	var total float64
	for _, line := range lines {
		total += line.Subtotal
	}
	return lines, total, nil
}

func (h *CartHandler) publish(c echo.Context, topic string, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, fmt.Sprint(event["cartToken"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

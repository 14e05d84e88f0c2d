package cart

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/craftline/marketplace/internal/config"
	"github.com/craftline/marketplace/internal/logging"
	"github.com/craftline/marketplace/internal/models"
	"github.com/craftline/marketplace/internal/util"
)

const (
	OrderStatusConfirmed = "confirmed"
	OrderStatusNotified  = "notified"
)

// Quote shows the buyer what a confirmation would charge, computed the
// same way GetCart computes it.
func (h *CartHandler) Quote(c echo.Context) error {
	token := cartToken(c)

	lines, total, err := cartLines(h.DB, token)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"items": lines, "total": total})
}

// ConfirmCheckout is the order-lifecycle core: quote the cart, persist
// an order, clear the cart — all in one transaction — then send the
// confirmation mail best-effort. A failed send is logged and swallowed;
// the cart is already cleared and the order row keeps the summary
// recoverable.
func (h *CartHandler) ConfirmCheckout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "confirm_checkout")
	token := cartToken(c)

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "a valid email is required")
	}

	var (
		order models.Order
		lines []CartLine
		total float64
	)

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		lines, total, err = cartLines(tx, token)
		if err != nil {
			return err
		}

		if len(lines) == 0 && h.EmptyCart != config.EmptyCartNotify {
			return errEmptyCart
		}

		order = models.Order{
			CartToken: token,
			Email:     req.Email,
			Total:     total,
			Status:    OrderStatusConfirmed,
			CreatedAt: time.Now().Unix(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, line := range lines {
			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Name:      line.Name,
				Price:     line.Price,
				Quantity:  line.Quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}

		return tx.Where("cart_token = ?", token).Delete(&models.CartItem{}).Error
	})
	if txErr != nil {
		if txErr == errEmptyCart {
			l.Warn("checkout_rejected", "status", 400, "reason", "empty_cart")
			return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
		}
		l.Error("checkout_failed", "status", 500, "error", txErr)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	// The cart is cleared and the order durable; from here nothing may
	// fail the request.
	if h.Notifier != nil {
		body := orderSummary(lines, total)
		if err := h.Notifier.Send(ctx, "Craftline Order Confirmation", body, req.Email); err != nil {
			l.Warn("notification_failed", "orderID", order.ID, "error", err)
		} else {
			if err := h.DB.Model(&order).Update("status", OrderStatusNotified).Error; err != nil {
				l.Warn("status_update_failed", "orderID", order.ID, "error", err)
			} else {
				order.Status = OrderStatusNotified
			}
		}
	}

	h.publish(c, "order_events", map[string]any{
		"type":      "order_confirmed",
		"cartToken": token,
		"orderID":   order.ID,
		"total":     total,
	})

	l.Info("checkout_confirmed", "orderID", order.ID, "total", total)
	return c.JSON(http.StatusOK, echo.Map{
		"order_id": order.ID,
		"total":    total,
		"status":   order.Status,
	})
}

var errEmptyCart = fmt.Errorf("cart is empty")

// orderSummary renders the confirmation body, one line per item:
// "name (Qty: q) - ₹subtotal".
func orderSummary(lines []CartLine, total float64) string {
	var b strings.Builder
	b.WriteString("Your payment is confirmed.\n\nOrder Details:\n")
	for _, line := range lines {
		fmt.Fprintf(&b, "%s (Qty: %d) - %s\n", line.Name, line.Quantity, util.FormatINR(line.Subtotal))
	}
	fmt.Fprintf(&b, "\nTotal: %s", util.FormatINR(total))
	return b.String()
}

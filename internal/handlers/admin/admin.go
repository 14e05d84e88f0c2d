package admin

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authhdl "github.com/craftline/marketplace/internal/handlers/auth"
	"github.com/craftline/marketplace/internal/logging"
	"github.com/craftline/marketplace/internal/models"
	"github.com/craftline/marketplace/internal/mykafka"
	"github.com/craftline/marketplace/internal/service/search"
	"github.com/craftline/marketplace/internal/tokens"
)

const sessionTTL = 12 * time.Hour

type AdminHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	Producer  *mykafka.Producer
	ES        *elasticsearch.Client
	Index     string

	// configured credentials, never hardcoded
	Username string
	Password string
}

func (h *AdminHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.Password)) == 1
	if h.Username == "" || !userOK || !passOK {
		l.Warn("login_failed", "status", 401, "reason", "invalid_credentials")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	exp := time.Now().Add(sessionTTL)
	token, err := tokens.SignAccessToken(0, tokens.RoleAdmin, h.JWTSecret, sessionTTL)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create token")
	}

	c.SetCookie(authhdl.CreateCookie("accessToken", token, "/", exp))

	l.Info("login_success")
	return c.JSON(http.StatusOK, echo.Map{"message": "admin logged in"})
}

// Pending returns artisans awaiting verification and products awaiting
// approval, the admin dashboard's working set.
func (h *AdminHandler) Pending(c echo.Context) error {
	var artisans []models.Artisan
	if err := h.DB.Where("verified = ?", false).Find(&artisans).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var products []models.Product
	if err := h.DB.Where("approved = ?", false).Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"artisans": artisans,
		"products": products,
	})
}

func (h *AdminHandler) VerifyArtisan(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "verify_artisan")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var artisan models.Artisan
	if err := h.DB.First(&artisan, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "artisan not found")
	}

	// idempotent: re-verifying is a no-op
	if !artisan.Verified {
		if err := h.DB.Model(&artisan).Update("verified", true).Error; err != nil {
			l.Error("verify_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		artisan.Verified = true

		h.publish(c, map[string]any{
			"type":      "artisan_verified",
			"artisanID": artisan.ID,
		})
	}

	l.Info("artisan_verified", "artisanID", artisan.ID)
	return c.JSON(http.StatusOK, artisan)
}

func (h *AdminHandler) ApproveProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "approve_product")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	if !product.Approved {
		if err := h.DB.Model(&product).Update("approved", true).Error; err != nil {
			l.Error("approve_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		product.Approved = true

		if h.ES != nil {
			if err := search.Index(ctx, h.ES, h.Index, &product); err != nil {
				c.Logger().Errorf("ES index error: %v", err)
			}
		}

		h.publish(c, map[string]any{
			"type":      "product_approved",
			"productID": product.ID,
			"artisanID": product.ArtisanID,
		})
	}

	l.Info("product_approved", "productID", product.ID)
	return c.JSON(http.StatusOK, product)
}

func (h *AdminHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	topic := "artisan_events"
	if _, ok := event["productID"]; ok {
		topic = "product_events"
	}
	if err := h.Producer.PublishEvent(ctx, topic, fmt.Sprint(event["type"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/craftline/marketplace/internal/logging"
	authmw "github.com/craftline/marketplace/internal/middleware/auth"
	"github.com/craftline/marketplace/internal/models"
	"github.com/craftline/marketplace/internal/mykafka"
	"github.com/craftline/marketplace/internal/upload"
	"github.com/craftline/marketplace/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Uploads  *upload.Store
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// GetProducts lists approved products, optionally narrowed to one
// category, paginated.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Product{}).Where("approved = ?", true)
	if category := c.QueryParam("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var items []models.Product
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.DB.Where("id = ? AND approved = ?", id, true).First(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	return c.JSON(http.StatusOK, product)
}

// CreateProduct stores a new unapproved product owned by the session
// artisan. Multipart form: name, description, price, category, image.
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_product")

	artisanID := authmw.UserID(c)
	if artisanID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing artisan session")
	}

	name := c.FormValue("name")
	description := c.FormValue("description")
	category := c.FormValue("category")
	priceRaw := c.FormValue("price")

	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	price, err := strconv.ParseFloat(priceRaw, 64)
	if err != nil || price <= 0 {
		l.Warn("create_failed", "status", 400, "reason", "bad_price", "price", priceRaw)
		return echo.NewHTTPError(http.StatusBadRequest, "price must be a positive number")
	}

	var image string
	if file, err := c.FormFile("image"); err == nil && file != nil && h.Uploads != nil {
		image, err = h.Uploads.Save(file)
		if err != nil {
			l.Error("create_failed", "status", 500, "reason", "upload_error", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot save image")
		}
	}

	product := models.Product{
		ArtisanID:   artisanID,
		Name:        name,
		Description: description,
		Price:       price,
		Category:    category,
		Image:       image,
		Approved:    false,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		l.Error("create_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"artisanID": artisanID,
		"name":      product.Name,
	})

	l.Info("product_created", "productID", product.ID, "artisanID", artisanID)
	return c.JSON(http.StatusCreated, product)
}

// MyProducts lists the session artisan's own products, approved or not.
func (h *ProductHandler) MyProducts(c echo.Context) error {
	artisanID := authmw.UserID(c)
	if artisanID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing artisan session")
	}

	var items []models.Product
	if err := h.DB.Where("artisan_id = ?", artisanID).Order("id ASC").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, items)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/craftline/marketplace/internal/models"
	"github.com/craftline/marketplace/internal/upload"
)

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.Artisan{}, &models.Product{}, &models.CartItem{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func multipartRequest(t *testing.T, e *echo.Echo, path string, fields map[string]string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, c
}

func TestGetProductsApprovedOnly(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &ProductHandler{DB: db}

	db.Create(&models.Product{ArtisanID: 1, Name: "Visible", Price: 10, Category: "pottery", Approved: true})
	db.Create(&models.Product{ArtisanID: 1, Name: "Hidden", Price: 10, Category: "pottery"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, "Visible", resp.Data[0].Name)
}

func TestGetProductsCategoryFilter(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &ProductHandler{DB: db}

	db.Create(&models.Product{ArtisanID: 1, Name: "Pot", Price: 10, Category: "pottery", Approved: true})
	db.Create(&models.Product{ArtisanID: 1, Name: "Scarf", Price: 20, Category: "textiles", Approved: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=textiles", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.GetProducts(c))

	var resp struct {
		Data []models.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, "Scarf", resp.Data[0].Name)
}

func TestGetProductHidesUnapproved(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &ProductHandler{DB: db}

	db.Create(&models.Product{ArtisanID: 1, Name: "Hidden", Price: 10})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := h.GetProduct(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestCreateProduct(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	uploads, err := upload.NewStore(t.TempDir())
	require.NoError(t, err)
	h := &ProductHandler{DB: db, Uploads: uploads}

	rec, c := multipartRequest(t, e, "/api/v1/artisan/products", map[string]string{
		"name":        "Clay Pot",
		"description": "hand made",
		"price":       "149.5",
		"category":    "pottery",
	})
	c.Set("userID", uint(7))
	c.Set("role", "artisan")

	require.NoError(t, h.CreateProduct(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var product models.Product
	require.NoError(t, db.First(&product).Error)
	require.Equal(t, uint(7), product.ArtisanID)
	require.Equal(t, 149.5, product.Price)
	require.False(t, product.Approved)
}

func TestCreateProductRejectsBadPrice(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &ProductHandler{DB: db}

	for _, price := range []string{"-5", "0", "abc", ""} {
		_, c := multipartRequest(t, e, "/api/v1/artisan/products", map[string]string{
			"name":  "Clay Pot",
			"price": price,
		})
		c.Set("userID", uint(1))

		err := h.CreateProduct(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "price %q should be rejected", price)
		require.Equal(t, http.StatusBadRequest, he.Code)
	}
}

func TestMyProducts(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &ProductHandler{DB: db}

	db.Create(&models.Product{ArtisanID: 1, Name: "Mine", Price: 10})
	db.Create(&models.Product{ArtisanID: 2, Name: "Theirs", Price: 10, Approved: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/artisan/products", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("userID", uint(1))

	require.NoError(t, h.MyProducts(c))

	var resp []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Equal(t, "Mine", resp[0].Name)
}

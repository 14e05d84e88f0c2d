package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/craftline/marketplace/internal/hash"
	"github.com/craftline/marketplace/internal/models"
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

func doJSONRequest(t *testing.T, e *echo.Echo, method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, c
}

func TestRegister(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &AuthHandler{DB: db, JWTSecret: []byte("test_secret")}

	payload := map[string]string{
		"name":     "Meera",
		"email":    "meera@example.com",
		"password": "password",
	}
	rec, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/artisans/register", payload)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var artisan models.Artisan
	require.NoError(t, db.Where("email = ?", "meera@example.com").First(&artisan).Error)
	require.False(t, artisan.Verified)
	require.NotEqual(t, "password", artisan.PasswordHash)
	require.True(t, hash.CheckPassword(artisan.PasswordHash, "password"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &AuthHandler{DB: db, JWTSecret: []byte("test_secret")}

	payload := map[string]string{
		"name":     "Meera",
		"email":    "meera@example.com",
		"password": "password",
	}
	rec, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/artisans/register", payload)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	_, c2 := doJSONRequest(t, e, http.MethodPost, "/api/v1/artisans/register", payload)
	err := h.Register(c2)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &AuthHandler{DB: db, JWTSecret: []byte("test_secret")}

	load := map[string]string{"email": "nobody@example.com", "password": "password"}
	_, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/artisans/login", load)

	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestLoginUnverified(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &AuthHandler{DB: db, JWTSecret: []byte("test_secret")}

	pw, _ := hash.HashPassword("password")
	db.Create(&models.Artisan{Name: "Meera", Email: "meera@example.com", PasswordHash: pw, Verified: false})

	load := map[string]string{"email": "meera@example.com", "password": "password"}
	_, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/artisans/login", load)

	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, he.Code)
}

func TestLoginVerified(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &AuthHandler{DB: db, JWTSecret: []byte("test_secret")}

	pw, _ := hash.HashPassword("password")
	db.Create(&models.Artisan{Name: "Meera", Email: "meera@example.com", PasswordHash: pw, Verified: true})

	load := map[string]string{"email": "meera@example.com", "password": "password"}
	rec, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/artisans/login", load)

	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	var found bool
	for _, ck := range cookies {
		if ck.Name == "accessToken" && ck.Value != "" {
			found = true
		}
	}
	require.True(t, found, "expected accessToken cookie")
}

func TestLoginWrongPassword(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &AuthHandler{DB: db, JWTSecret: []byte("test_secret")}

	pw, _ := hash.HashPassword("password")
	db.Create(&models.Artisan{Name: "Meera", Email: "meera@example.com", PasswordHash: pw, Verified: true})

	load := map[string]string{"email": "meera@example.com", "password": "wrong"}
	_, c := doJSONRequest(t, e, http.MethodPost, "/api/v1/artisans/login", load)

	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/craftline/marketplace/internal/hash"
	"github.com/craftline/marketplace/internal/logging"
	"github.com/craftline/marketplace/internal/models"
	"github.com/craftline/marketplace/internal/mykafka"
	"github.com/craftline/marketplace/internal/tokens"
)

const accessTTL = 12 * time.Hour

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	Producer  *mykafka.Producer
}

func CreateCookie(name string, value string, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie(name, path string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "artisan_register")

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("register_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		l.Warn("register_failed", "status", 400, "reason", "missing_fields")
		return echo.NewHTTPError(http.StatusBadRequest, "name, email and password are required")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var existing models.Artisan
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			l.Error("register_failed", "status", 500, "reason", "db_error", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	} else {
		l.Warn("register_failed", "status", 409, "reason", "email_taken")
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	}

	artisan := models.Artisan{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
		Verified:     false,
	}
	if err := h.DB.Create(&artisan).Error; err != nil {
		l.Error("register_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]any{
		"type":      "artisan_registered",
		"artisanID": artisan.ID,
		"email":     artisan.Email,
	})

	l.Info("register_success", "artisanID", artisan.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"id":       artisan.ID,
		"name":     artisan.Name,
		"email":    artisan.Email,
		"verified": artisan.Verified,
		"message":  "registration successful, please wait for admin verification",
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "artisan_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var artisan models.Artisan
	if err := h.DB.Where("email = ?", req.Email).First(&artisan).Error; err != nil {
		l.Warn("login_failed", "status", 401, "reason", "unknown_email")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	if !hash.CheckPassword(artisan.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "bad_password")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	// "not verified" is a distinct outcome from bad credentials.
	if !artisan.Verified {
		l.Warn("login_failed", "status", 403, "reason", "not_verified", "artisanID", artisan.ID)
		return echo.NewHTTPError(http.StatusForbidden, "account is not yet verified by admin")
	}

	exp := time.Now().Add(accessTTL)
	token, err := tokens.SignAccessToken(artisan.ID, tokens.RoleArtisan, h.JWTSecret, accessTTL)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create token")
	}

	c.SetCookie(CreateCookie("accessToken", token, "/", exp))

	h.publish(c, map[string]any{
		"type":      "artisan_logged_in",
		"artisanID": artisan.ID,
	})

	l.Info("login_success", "artisanID", artisan.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"id":   artisan.ID,
		"name": artisan.Name,
	})
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	c.SetCookie(DeleteCookie("accessToken", "/"))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "artisan_events", fmt.Sprint(event["artisanID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

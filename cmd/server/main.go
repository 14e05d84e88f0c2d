package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/craftline/marketplace/internal/config"
	"github.com/craftline/marketplace/internal/db"
	"github.com/craftline/marketplace/internal/es"
	"github.com/craftline/marketplace/internal/handlers"
	"github.com/craftline/marketplace/internal/handlers/admin"
	"github.com/craftline/marketplace/internal/handlers/auth"
	"github.com/craftline/marketplace/internal/handlers/cart"
	"github.com/craftline/marketplace/internal/logging"
	authmw "github.com/craftline/marketplace/internal/middleware/auth"
	loggingmw "github.com/craftline/marketplace/internal/middleware/logging"
	"github.com/craftline/marketplace/internal/mail"
	"github.com/craftline/marketplace/internal/mykafka"
	httpserver "github.com/craftline/marketplace/internal/transport/http"
	"github.com/craftline/marketplace/internal/upload"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(configuration.JWT_SECRET, "JWT_SECRET")
	config.MustNonEmpty(configuration.ADMIN_USERNAME, "ADMIN_USERNAME")
	config.MustNonEmpty(configuration.ADMIN_PASSWORD, "ADMIN_PASSWORD")

	logger := logging.New(config.EnvDefault("LOG_LEVEL", "info"))
	slog.SetDefault(logger)

	database, err := db.Open(context.Background(), configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)

	brokers := config.CSV(configuration.KAFKA_ADDRESS)
	topics := []string{"artisan_events", "product_events", "cart_events", "order_events"}
	var prod *mykafka.Producer
	if len(brokers) > 0 {
		prod, err = mykafka.NewProducer(brokers, topics)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		logger.Warn("kafka disabled, KAFKA_ADDRESS not set")
	}

	var searchHandler *handlers.SearchHandler
	esClient, err := es.NewClient(configuration)
	if err != nil {
		logger.Warn("elasticsearch disabled", "error", err)
		esClient = nil
	} else {
		searchHandler = &handlers.SearchHandler{ES: esClient, Index: "products"}
	}

	uploads, err := upload.NewStore(configuration.UPLOAD_DIR)
	if err != nil {
		log.Fatalf("upload store error: %v", err)
	}

	mailer := mail.NewSMTPMailer(configuration)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:          database,
		AuthHandler: &auth.AuthHandler{DB: database, JWTSecret: jwtSecret, Producer: prod},
		AdminHandler: &admin.AdminHandler{
			DB:        database,
			JWTSecret: jwtSecret,
			Producer:  prod,
			ES:        esClient,
			Index:     "products",
			Username:  configuration.ADMIN_USERNAME,
			Password:  configuration.ADMIN_PASSWORD,
		},
		ProductHandler: &handlers.ProductHandler{DB: database, Producer: prod, Uploads: uploads},
		CartHandler: &cart.CartHandler{
			DB:        database,
			Producer:  prod,
			Notifier:  mailer,
			EmptyCart: configuration.EMPTY_CART,
		},
		SearchHandler: searchHandler,
		Auth:          &authmw.Middleware{JWTSecret: jwtSecret},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}

package main

import (
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/tkaseba/mesa-pos-backend/internal/modules/auth"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/menu"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/notify"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/order"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/outlet"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/payment"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/staff"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}
	logger.Info("connected to database")

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		log.Fatal("JWT_SECRET is required")
	}

	// ── Notification emitter ────────────────────────────────
	var emitter notify.Emitter = notify.Noop{}
	if url := os.Getenv("AMQP_URL"); url != "" {
		amqpEmitter, err := notify.DialAMQP(url)
		if err != nil {
			logger.Warn("amqp unavailable, kitchen events disabled", "error", err)
		} else {
			defer amqpEmitter.Close()
			emitter = amqpEmitter
		}
	}

	strictFlow := os.Getenv("STRICT_ORDER_FLOW") == "true"

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Identity ────────────────────────────────────────────
	staffRepo := staff.NewPostgresRepository(db)
	staffService := staff.NewService(staffRepo)

	authService := auth.NewService(staffRepo, jwtSecret)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Authenticated surface ───────────────────────────────
	verifier := auth.NewVerifier(staffRepo, jwtSecret)
	router.Group(func(r chi.Router) {
		r.Use(verifier.Handle)

		staff.NewHandler(staffService).RegisterRoutes(r)

		outletRepo := outlet.NewPostgresRepository(db)
		outletService := outlet.NewService(outletRepo)
		outlet.NewHandler(outletService).RegisterRoutes(r)

		menuRepo := menu.NewPostgresRepository(db)
		menuService := menu.NewService(menuRepo)
		menu.NewHandler(menuService).RegisterRoutes(r)

		orderRepo := order.NewPostgresRepository(db)
		orderService := order.NewService(orderRepo, menuRepo, outletRepo, emitter, logger, strictFlow)
		order.NewHandler(orderService).RegisterRoutes(r)

		paymentRepo := payment.NewPostgresRepository(db)
		paymentService := payment.NewService(paymentRepo, orderRepo, emitter, logger)
		payment.NewHandler(paymentService).RegisterRoutes(r)
	})

	// ── Start server ────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("mesa POS API listening", "port", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}

package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/paylane/gateway/app"
)

// SetupRoutes configures all application routes and the pipeline gates
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Token", "X-Merchant-ID", "X-Timestamp", "X-Signature"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Trader endpoints
		r.Route("/trader", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.OnlyTrader)
			r.Get("/payments", deps.PaymentHandler.HandleListTraderPayments)
			r.Get("/devices/{id}/status", deps.DeviceHandler.HandleGetDeviceStatus)
		})

		// Merchant dashboard endpoints (token gate)
		r.Route("/merchant", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.OnlyMerchant)
			r.Get("/payments", deps.PaymentHandler.HandleListMerchantPayments)
			r.Get("/payments/{id}", deps.PaymentHandler.HandleGetPayment)
			r.Get("/payments/external/{external_id}", deps.PaymentHandler.HandleGetPaymentByExternalID)
			r.Post("/payments/{id}/cancel", deps.PaymentHandler.HandleCancelPayment)
			r.Get("/methods", deps.MethodHandler.HandleListMethods)
			r.Get("/methods/{id}", deps.MethodHandler.HandleGetMethod)
			r.Get("/quote", deps.QuoteHandler.HandleQuote)
		})

		// Merchant machine-to-machine endpoints (signed gate)
		r.Route("/api", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.SignedMerchant)
			r.Get("/payments", deps.PaymentHandler.HandleListMerchantPayments)
			r.Get("/payments/{id}", deps.PaymentHandler.HandleGetPayment)
			r.Get("/payments/external/{external_id}", deps.PaymentHandler.HandleGetPaymentByExternalID)
			r.Post("/payments/{id}/cancel", deps.PaymentHandler.HandleCancelPayment)
			r.Get("/methods", deps.MethodHandler.HandleListMethods)
			r.Get("/quote", deps.QuoteHandler.HandleQuote)
		})

		// Admin endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.OnlyAdmin)
			r.Post("/traders/{id}/balance", deps.AdminHandler.HandleChangeTraderBalance)
			r.Put("/merchants/{id}/public-key", deps.AdminHandler.HandleRotateMerchantKey)
		})

		// Shared endpoints (any authenticated role)
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.AllUsers)
			r.Get("/profile", deps.ProfileHandler.HandleProfile)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":404,"message":"Not Found"}`))
	})

	return r
}

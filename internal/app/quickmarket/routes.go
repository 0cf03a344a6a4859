// Package quickmarket собирает HTTP API: маршруты, middleware и зависимости сервисов.
package quickmarket

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/auth/google"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/auth/resendverification"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/auth/verifyemail"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/health"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/order/ordercreate"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/order/orderlist"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/payment/paymentinit"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/payment/paymentverify"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/payment/paymentwebhook"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/product/availability"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/product/categories"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/product/details"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/product/featured"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/product/productlist"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/product/suggestions"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/subscription/cancel"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/subscription/current"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/subscription/history"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/subscription/packages"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/subscription/purchase"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/subscription/renew"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/user/deleteaccount"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/user/deliverypoints"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/user/locations"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/user/orderhistory"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/user/profile"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/user/selectlocation"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/user/subscriptionstatus"
	"github.com/magabrotheeeer/quickmarket/internal/http/handlers/user/updateprofile"
	"github.com/magabrotheeeer/quickmarket/internal/http/middlewarectx"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/lib/orderwindow"
	authservice "github.com/magabrotheeeer/quickmarket/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/quickmarket/internal/services/catalog"
	orderservice "github.com/magabrotheeeer/quickmarket/internal/services/order"
	paymentservice "github.com/magabrotheeeer/quickmarket/internal/services/payment"
	subservice "github.com/magabrotheeeer/quickmarket/internal/services/subscription"
	userservice "github.com/magabrotheeeer/quickmarket/internal/services/user"
)

// Services: зависимости, из которых собираются обработчики.
type Services struct {
	Auth         *authservice.AuthService
	Users        *userservice.UserService
	Subscription *subservice.SubscriptionService
	Catalog      *catalogservice.CatalogService
	Orders       *orderservice.OrderService
	Payments     *paymentservice.PaymentService
	DB           health.Pinger
}

// Options: параметры middleware.
type Options struct {
	OrderWindow  *orderwindow.Window
	RateRPS      float64
	RateBurst    int
	ErrorDetails bool
	SecureCookie bool
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services, opts Options) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.Metrics,
		middlewarectx.ErrorDetails(opts.ErrorDetails),
	)

	authenticate := middlewarectx.Authenticate(s.Auth, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(middlewarectx.RateLimit(opts.RateRPS, opts.RateBurst, logger))

		r.Get("/health", health.New(logger, s.DB).ServeHTTP)

		r.Route("/auth", func(r chi.Router) {
			googleHandler := google.New(logger, s.Auth, opts.SecureCookie)

			r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
			r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
			r.Post("/verify-email", verifyemail.New(logger, s.Auth).ServeHTTP)
			r.Post("/forgot-password", forgotpassword.New(logger, s.Auth).ServeHTTP)
			r.Get("/google", googleHandler.Start)
			r.Get("/google/callback", googleHandler.Callback)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/resend-verification", resendverification.New(logger, s.Auth).ServeHTTP)
				r.Get("/me", me.ServeHTTP)
				r.Post("/logout", logout.New(logger).ServeHTTP)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/locations", locations.New(logger, s.Users).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/profile", profile.New(logger, s.Users).ServeHTTP)
				r.Delete("/account", deleteaccount.New(logger, s.Users).ServeHTTP)
				r.With(middlewarectx.RequireLocation).
					Get("/delivery-points", deliverypoints.New(logger, s.Users).ServeHTTP)

				r.Group(func(r chi.Router) {
					r.Use(middlewarectx.RequireEmailVerified)
					r.Put("/profile", updateprofile.New(logger, s.Users).ServeHTTP)
					r.Post("/select-location", selectlocation.New(logger, s.Users).ServeHTTP)
					r.Get("/order-history", orderhistory.New(logger, s.Orders).ServeHTTP)
					r.Get("/subscription-status", subscriptionstatus.New(logger, s.Subscription).ServeHTTP)
				})
			})
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(authenticate)
			r.With(middlewarectx.RequireLocation).Get("/packages", packages.New(logger, s.Subscription).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireEmailVerified)
				r.Get("/current", current.New(logger, s.Subscription).ServeHTTP)
				r.Post("/cancel", cancel.New(logger, s.Subscription).ServeHTTP)
				r.Get("/history", history.New(logger, s.Subscription).ServeHTTP)

				r.Group(func(r chi.Router) {
					r.Use(middlewarectx.RequireLocation)
					r.Post("/purchase", purchase.New(logger, s.Subscription).ServeHTTP)
					r.Post("/renew", renew.New(logger, s.Subscription).ServeHTTP)
				})
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productlist.New(logger, s.Catalog).ServeHTTP)
			r.Get("/categories", categories.New(logger, s.Catalog).ServeHTTP)
			r.Get("/featured", featured.New(logger, s.Catalog).ServeHTTP)
			r.Get("/search-suggestions", suggestions.New(logger, s.Catalog).ServeHTTP)
			r.Get("/{slug}", details.New(logger, s.Catalog).ServeHTTP)
			r.With(authenticate).Post("/{id}/check-availability", availability.New(logger, s.Catalog).ServeHTTP)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authenticate, middlewarectx.RequireEmailVerified)
			r.Get("/", orderlist.New(logger, s.Orders).ServeHTTP)
			r.With(middlewarectx.RequireLocation, middlewarectx.OrderWindow(opts.OrderWindow, logger)).
				Post("/", ordercreate.New(logger, s.Orders).ServeHTTP)
		})

		r.Route("/payments", func(r chi.Router) {
			// Webhook подписывается шлюзом, а не пользователем.
			r.Post("/webhook", paymentwebhook.New(logger, s.Payments).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/initialize", paymentinit.New(logger, s.Payments).ServeHTTP)
				r.Post("/verify", paymentverify.New(logger, s.Payments).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, r, apperr.ErrRouteNotFound.WithDetails(r.URL.Path))
	})
}

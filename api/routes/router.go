package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/clothing-store-backend/api/controllers"
	"github.com/angelmondragon/clothing-store-backend/api/middleware"
	"github.com/angelmondragon/clothing-store-backend/api/responses"
	"github.com/angelmondragon/clothing-store-backend/internal/auth"
	"github.com/angelmondragon/clothing-store-backend/internal/cart"
	checkoutsvc "github.com/angelmondragon/clothing-store-backend/internal/checkout"
	"github.com/angelmondragon/clothing-store-backend/internal/orders"
	products "github.com/angelmondragon/clothing-store-backend/internal/products"
	"github.com/angelmondragon/clothing-store-backend/pkg/auth/session"
	"github.com/angelmondragon/clothing-store-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/clothing-store-backend/pkg/errors"
	"github.com/angelmondragon/clothing-store-backend/pkg/logger"
	"github.com/angelmondragon/clothing-store-backend/pkg/metrics"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Params carries everything the HTTP surface depends on.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       controllers.Pinger
	RateLimiter rateLimiter
	Sessions    session.AccessSessionChecker
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	AuthService     auth.Service
	ProductService  products.Service
	CartService     cart.Service
	OrdersService   orders.Service
	CheckoutService checkoutsvc.Service
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, p.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "Route not found"))
	})

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	requireAuth := middleware.Auth(cfg.JWT, p.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", controllers.Health(cfg))
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.Dependency{Name: "db", Pinger: p.DB},
			controllers.Dependency{Name: "redis", Pinger: p.Redis},
		))
	})

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, p.RateLimiter, logg)).Post("/register", controllers.AuthRegister(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.RateLimiter, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
		r.With(requireAuth).Get("/me", controllers.AuthMe(p.AuthService, logg))
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(p.ProductService, logg))
		r.Get("/categories/list", controllers.ProductCategories(p.ProductService, logg))
		r.Get("/{id}", controllers.ProductDetail(p.ProductService, logg))
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.Identity(logg))
		r.Get("/", controllers.CartGet(p.CartService, logg))
		r.Delete("/", controllers.CartClear(p.CartService, logg))
		r.Post("/items", controllers.CartAddItem(p.CartService, logg))
		r.Put("/items/{id}", controllers.CartUpdateItem(p.CartService, logg))
		r.Delete("/items/{id}", controllers.CartRemoveItem(p.CartService, logg))
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", controllers.OrderList(p.OrdersService, logg))
		r.Post("/checkout", controllers.CheckoutPlaceOrder(p.CheckoutService, logg))
		r.Get("/{id}", controllers.OrderDetail(p.OrdersService, logg))
	})

	return r
}

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"restaurant-pos/internal/entity"
	"restaurant-pos/internal/service"
)

type Services struct {
	ServingTables *service.ServingTableService
	Orders        *service.OrderService
	KitchenOrders *service.KitchenOrderService
	Payments      *service.PaymentService
	Waiters       *service.WaiterService
	Products      *service.ProductService
	Ingredients   *service.IngredientService
	Auth          *service.AuthService
}

type Options struct {
	JWTSecret   string
	CORSOrigins []string
	// RateLimit is requests per second per client; 0 turns limiting off.
	RateLimit float64
	RateBurst int
	// HealthCheck, when set, is run by the health endpoint.
	HealthCheck func(ctx context.Context) error
}

// NewRouter wires every route. Everything under /api except health, login
// and the public menu needs a bearer token.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, IdempotencyHeader},
	}))
	if opts.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(rateLimiterConfig(opts.RateLimit, opts.RateBurst)))
	}

	servingTables := NewServingTableHandler(svc.ServingTables)
	orders := NewOrderHandler(svc.Orders)
	kitchen := NewKitchenOrderHandler(svc.KitchenOrders)
	payments := NewPaymentHandler(svc.Payments)
	waiters := NewWaiterHandler(svc.Waiters)
	products := NewProductHandler(svc.Products)
	ingredients := NewIngredientHandler(svc.Ingredients)
	auth := NewAuthHandler(svc.Auth)

	e.GET("/api/health", healthHandler(opts.HealthCheck))
	e.GET("/api/public/products", products.ListProducts)
	e.POST("/api/authenticate/login", auth.Login)

	g := e.Group("/api", echojwt.WithConfig(jwtConfig(opts.JWTSecret)))

	g.GET("/serving-tables", servingTables.ListServingTables)
	g.GET("/serving-tables/:id", servingTables.GetServingTable)
	g.POST("/serving-tables", servingTables.CreateServingTable)
	g.POST("/serving-tables/:id/orders", servingTables.AddOrder)
	g.PUT("/serving-tables/:id", servingTables.UpdateServingTable)
	g.POST("/serving-tables/:id/close", servingTables.CloseServingTable)
	g.POST("/serving-tables/:id/payments", servingTables.PayServingTable)
	g.DELETE("/serving-tables/:id", servingTables.DeleteServingTable)

	g.DELETE("/orders/:id", orders.RemoveOrder)
	g.DELETE("/orders/:id/lines/:lineId", orders.RemoveLine)

	g.GET("/kitchen-orders/uncompleted", kitchen.ListUncompleted)
	g.GET("/kitchen-orders/completed/:waiterId", kitchen.ListCompleted)
	g.POST("/kitchen-orders/:id/complete", kitchen.MarkCompleted)

	g.GET("/payments", payments.ListPayments)

	g.GET("/waiters", waiters.ListWaiters)
	g.GET("/waiters/serving-tables", waiters.ListWaitersWithTables)
	g.POST("/waiters", waiters.CreateWaiter)
	g.PUT("/waiters/:id", waiters.UpdateWaiter)
	g.DELETE("/waiters/:id", waiters.DeleteWaiter)

	g.GET("/products", products.ListProducts)
	g.POST("/products", products.CreateProduct)
	g.PUT("/products/:id", products.UpdateProduct)
	g.DELETE("/products/:id", products.DeleteProduct)

	g.GET("/ingredients", ingredients.ListIngredients)
	g.POST("/ingredients", ingredients.CreateIngredient)
	g.PUT("/ingredients/:id", ingredients.UpdateIngredient)
	g.DELETE("/ingredients/:id", ingredients.DeleteIngredient)

	return e
}

// jwtConfig answers 401 when no token was sent and 403 when the token does
// not verify.
func jwtConfig(secret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.JwtCustomClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var parseErr *echojwt.TokenParsingError
			if errors.As(err, &parseErr) {
				return c.JSON(http.StatusForbidden, entity.ServiceResponse{StatusCode: http.StatusForbidden, Message: "Invalid token"})
			}
			return c.JSON(http.StatusUnauthorized, entity.ServiceResponse{StatusCode: http.StatusUnauthorized, Message: "No token provided"})
		},
	}
}

func rateLimiterConfig(limit float64, burst int) middleware.RateLimiterConfig {
	return middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(limit),
				Burst:     burst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
	}
}

func healthHandler(check func(ctx context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		status, code := "ok", http.StatusOK
		if check != nil {
			if err := check(c.Request().Context()); err != nil {
				logger.Error().Err(err).Msg("Health check failed")
				status, code = "unavailable", http.StatusServiceUnavailable
			}
		}
		return c.JSON(code, map[string]interface{}{
			"status":  status,
			"service": "restaurant-pos",
			"time":    time.Now().Format(time.RFC3339),
		})
	}
}

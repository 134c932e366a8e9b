package router

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"rankhwa/internal/handler"
	"rankhwa/internal/metrics"
)

// Handlers bundles the HTTP handlers the router mounts.
type Handlers struct {
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
	List   *handler.ListHandler
	Manhwa *handler.ManhwaHandler
	Health *handler.HealthHandler
}

// Register wires routes and middleware. Bearer tokens are optional at this
// layer; handlers that need a principal reject anonymous callers themselves.
func Register(e *echo.Echo, log *logrus.Logger, authMiddleware echo.MiddlewareFunc, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(metrics.Middleware())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/health/sanity_check", h.Health.SanityCheck)
	e.GET("/healthz", h.Health.Healthz)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("", authMiddleware)

	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/logout", h.Auth.Logout)

	api.GET("/users/me", h.User.Me)
	api.PATCH("/users/me", h.User.UpdateMe)
	api.GET("/users/:id", h.User.GetUser)

	api.GET("/lists", h.List.ListAll)
	api.POST("/lists", h.List.Create)
	api.GET("/lists/:listId", h.List.Get)
	api.PATCH("/lists/:listId", h.List.Rename)
	api.DELETE("/lists/:listId", h.List.Delete)
	api.POST("/lists/:listId/items", h.List.AddItem)
	api.DELETE("/lists/:listId/items/:manhwaId", h.List.RemoveItem)

	api.GET("/manhwa", h.Manhwa.Search)
	api.GET("/manhwa/:id", h.Manhwa.Get)
	api.POST("/manhwa/:id/rating", h.Manhwa.Rate)
	api.GET("/manhwa/:id/rating", h.Manhwa.MyRating)
}

// requestLogger emits one structured entry per request.
func requestLogger(log *logrus.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			switch {
			case v.Status >= 500:
				entry.WithError(v.Error).Error("request")
			case v.Status >= 400:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

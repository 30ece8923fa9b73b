package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"case-insights-go/internal/logger"
)

// NewServer builds the echo instance with middleware and every route. CORS
// is only enabled for the listed origins.
func NewServer(h *Handler, log *logger.Logger, corsOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}

	e.Use(middleware.Recover())
	if len(corsOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: corsOrigins}))
	}
	e.Use(log.Component("api").Middleware())

	h.RegisterRoutes(e)
	return e
}

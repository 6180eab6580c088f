package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs report API requests. Scrape and probe traffic
// (/metrics, /healthz) is skipped to keep the log readable.
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.URL.Path == "/metrics" || req.URL.Path == "/healthz" {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			log.Printf("%s %s -> %d (%s) from %s",
				req.Method,
				req.RequestURI,
				c.Response().Status,
				time.Since(start),
				req.RemoteAddr,
			)
			return err
		}
	}
}

package http

import "github.com/labstack/echo/v4"

// Handler registers a route group on the echo instance. The report API
// handler is the only implementation; the server wrapper accepts the
// interface so tests can mount stubs.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

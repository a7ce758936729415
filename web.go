package main

import (
	"embed"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

//go:embed public
var publicFS embed.FS

// registerFrontend serves the embedded calendar UI. Unknown non-API paths
// fall back to the entry point so the page can be reloaded from anywhere.
func registerFrontend(e *echo.Echo) {
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Filesystem: http.FS(echo.MustSubFS(publicFS, "public")),
		HTML5:      true,
	}))
}

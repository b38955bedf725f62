package api

import (
	"fmt"

	"github.com/fluxline-cloud/fluxline/api/rest/v1"
	"github.com/fluxline-cloud/fluxline/pkg/env"
	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
)

// Start launches Fluxline's API.
func Start() error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// health
	e.GET("/health", Health)

	// metrics
	prometheus.NewPrometheus("fluxline", nil).Use(e)

	// REST
	rest.Bind(e.Group("/v1"))

	return e.Start(fmt.Sprintf(":%v", env.Variables().Port))
}

package rest

import (
	"github.com/fluxline-cloud/fluxline/api/rest/bind"
	"github.com/labstack/echo/v4"
)

// Bind the REST endpoints to the versioned endpoint group.
func Bind(group *echo.Group) {
	bind.All(group)
}

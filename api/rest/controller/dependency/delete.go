package dependency

import (
	"net/http"

	"github.com/fluxline-cloud/fluxline/api/rest/controller/params"
	depsvc "github.com/fluxline-cloud/fluxline/api/rest/service/dependency"
	"github.com/labstack/echo/v4"
)

func Delete(c echo.Context) error {
	orgID, err := params.OrgID(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	id, err := params.ID(c, "id")
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	removed, err := depsvc.Service(c.Request().Context()).Remove(orgID, id)
	if err != nil {
		return echo.ErrInternalServerError.SetInternal(err)
	}

	if !removed {
		return echo.ErrNotFound
	}

	return c.NoContent(http.StatusNoContent)
}

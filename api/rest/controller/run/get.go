package run

import (
	"errors"
	"net/http"

	"github.com/fluxline-cloud/fluxline/api/rest/controller/params"
	runsvc "github.com/fluxline-cloud/fluxline/api/rest/service/run"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func Get(c echo.Context) error {
	orgID, err := params.OrgID(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	id, err := params.ID(c, "id")
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	run, err := runsvc.Service(c.Request().Context()).Get(orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.ErrNotFound
		}

		return echo.ErrInternalServerError.SetInternal(err)
	}

	return c.JSON(http.StatusOK, run)
}

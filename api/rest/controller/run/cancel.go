package run

import (
	"errors"
	"net/http"

	"github.com/fluxline-cloud/fluxline/api/rest/controller/params"
	runsvc "github.com/fluxline-cloud/fluxline/api/rest/service/run"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func Cancel(c echo.Context) error {
	var (
		ctx  = c.Request().Context()
		runs = runsvc.Service(ctx)
	)

	orgID, err := params.OrgID(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	id, err := params.ID(c, "id")
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	// Scope the lookup before cancelling; Cancel itself is unscoped.
	if _, err = runs.Get(orgID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.ErrNotFound
		}

		return echo.ErrInternalServerError.SetInternal(err)
	}

	run, err := runs.Cancel(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(
				http.StatusConflict,
				"run already finished",
			)
		}

		return echo.ErrInternalServerError.SetInternal(err)
	}

	return c.JSON(http.StatusOK, run)
}

package dependency

import (
	"net/http"

	"github.com/fluxline-cloud/fluxline/api/rest/controller/params"
	depsvc "github.com/fluxline-cloud/fluxline/api/rest/service/dependency"
	"github.com/labstack/echo/v4"
)

func List(c echo.Context) error {
	req, err := parseListRequest(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	deps, err := depsvc.Service(c.Request().Context()).List(req)
	if err != nil {
		return echo.ErrInternalServerError.SetInternal(err)
	}

	return c.JSON(http.StatusOK, deps)
}

func parseListRequest(c echo.Context) (req *depsvc.ListRequest, err error) {
	req = &depsvc.ListRequest{}

	if req.OrgID, err = params.OrgID(c); err != nil {
		return nil, err
	}

	if req.Limit, err = params.Limit(c); err != nil {
		return nil, err
	}

	if req.Offset, err = params.Offset(c); err != nil {
		return nil, err
	}

	return
}

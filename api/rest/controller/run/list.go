package run

import (
	"net/http"
	"strconv"

	"github.com/fluxline-cloud/fluxline/api/rest/controller/params"
	runsvc "github.com/fluxline-cloud/fluxline/api/rest/service/run"
	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/labstack/echo/v4"
)

func List(c echo.Context) error {
	req, err := parseListRequest(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	runs, err := runsvc.Service(c.Request().Context()).List(req)
	if err != nil {
		return echo.ErrInternalServerError.SetInternal(err)
	}

	return c.JSON(http.StatusOK, runs)
}

func parseListRequest(c echo.Context) (req *runsvc.ListRequest, err error) {
	req = &runsvc.ListRequest{
		TargetType: models.NodeType(c.QueryParam("target_type")),
		Status:     models.RunStatus(c.QueryParam("status")),
	}

	if req.OrgID, err = params.OrgID(c); err != nil {
		return nil, err
	}

	if targetID := c.QueryParam("target_id"); targetID != "" {
		if req.TargetID, err = strconv.ParseInt(targetID, 10, 64); err != nil {
			return nil, err
		}
	}

	if req.Limit, err = params.Limit(c); err != nil {
		return nil, err
	}

	return
}

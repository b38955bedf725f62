package pipeline

import (
	"errors"
	"net/http"

	"github.com/fluxline-cloud/fluxline/api/rest/controller/params"
	pipesvc "github.com/fluxline-cloud/fluxline/api/rest/service/pipeline"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func List(c echo.Context) error {
	req := &pipesvc.ListRequest{
		Status: c.QueryParam("status"),
	}

	var err error

	if req.OrgID, err = params.OrgID(c); err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	if req.Limit, err = params.Limit(c); err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	if req.Offset, err = params.Offset(c); err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	pipelines, err := pipesvc.Service(c.Request().Context()).List(req)
	if err != nil {
		return echo.ErrInternalServerError.SetInternal(err)
	}

	return c.JSON(http.StatusOK, pipelines)
}

func Get(c echo.Context) error {
	orgID, err := params.OrgID(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	id, err := params.ID(c, "id")
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	pipeline, err := pipesvc.Service(c.Request().Context()).Get(orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.ErrNotFound
		}

		return echo.ErrInternalServerError.SetInternal(err)
	}

	return c.JSON(http.StatusOK, pipeline)
}

func Post(c echo.Context) error {
	req := &pipesvc.CreateRequest{}

	if err := c.Bind(req); err != nil {
		return err
	}

	orgID, err := params.OrgID(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}
	req.OrgID = orgID

	pipeline, err := pipesvc.Service(c.Request().Context()).Create(req)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	return c.JSON(http.StatusCreated, pipeline)
}

func Delete(c echo.Context) error {
	orgID, err := params.OrgID(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	id, err := params.ID(c, "id")
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	removed, err := pipesvc.Service(c.Request().Context()).Delete(orgID, id)
	if err != nil {
		return echo.ErrInternalServerError.SetInternal(err)
	}

	if !removed {
		return echo.ErrNotFound
	}

	return c.NoContent(http.StatusNoContent)
}

package schedule

import (
	"errors"
	"net/http"

	"github.com/fluxline-cloud/fluxline/api/rest/controller/params"
	schedsvc "github.com/fluxline-cloud/fluxline/api/rest/service/schedule"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func List(c echo.Context) error {
	req := &schedsvc.ListRequest{}

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

	schedules, err := schedsvc.Service(c.Request().Context()).List(req)
	if err != nil {
		return echo.ErrInternalServerError.SetInternal(err)
	}

	return c.JSON(http.StatusOK, schedules)
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

	schedule, err := schedsvc.Service(c.Request().Context()).Get(orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.ErrNotFound
		}

		return echo.ErrInternalServerError.SetInternal(err)
	}

	return c.JSON(http.StatusOK, schedule)
}

func Post(c echo.Context) error {
	req := &schedsvc.CreateRequest{}

	if err := c.Bind(req); err != nil {
		return err
	}

	orgID, err := params.OrgID(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}
	req.OrgID = orgID

	schedule, err := schedsvc.Service(c.Request().Context()).Create(req)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	return c.JSON(http.StatusCreated, schedule)
}

// SetActive pauses or resumes a schedule.
func SetActive(c echo.Context) error {
	orgID, err := params.OrgID(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	id, err := params.ID(c, "id")
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	req := &struct {
		Active bool `json:"active"`
	}{}
	if err := c.Bind(req); err != nil {
		return err
	}

	updated, err := schedsvc.Service(c.Request().Context()).SetActive(orgID, id, req.Active)
	if err != nil {
		return echo.ErrInternalServerError.SetInternal(err)
	}

	if !updated {
		return echo.ErrNotFound
	}

	return c.NoContent(http.StatusNoContent)
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

	removed, err := schedsvc.Service(c.Request().Context()).Delete(orgID, id)
	if err != nil {
		return echo.ErrInternalServerError.SetInternal(err)
	}

	if !removed {
		return echo.ErrNotFound
	}

	return c.NoContent(http.StatusNoContent)
}

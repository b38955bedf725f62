package dependency

import (
	"net/http"

	"github.com/fluxline-cloud/fluxline/api/rest/controller/params"
	depsvc "github.com/fluxline-cloud/fluxline/api/rest/service/dependency"
	"github.com/labstack/echo/v4"
)

// ErrorResponse carries the structured validation code alongside the
// message so clients can branch without parsing text.
type ErrorResponse struct {
	Code    depsvc.Code `json:"code,omitempty"`
	Message string      `json:"message"`
}

func Post(c echo.Context) error {
	req := &depsvc.AddRequest{}

	if err := c.Bind(req); err != nil {
		return err
	}

	orgID, err := params.OrgID(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}
	req.OrgID = orgID

	dep, err := depsvc.Service(c.Request().Context()).Add(req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, dep)
}

// writeError maps registry errors onto HTTP statuses: malformed
// requests are 400, unresolvable nodes 404, duplicates 409.
func writeError(c echo.Context, err error) error {
	switch e := err.(type) {
	case *depsvc.ConfigError:
		status := http.StatusBadRequest
		if e.Code == depsvc.CodeDuplicate {
			status = http.StatusConflict
		}

		return c.JSON(status, ErrorResponse{Code: e.Code, Message: e.Message})

	case *depsvc.NotFoundError:
		return c.JSON(http.StatusNotFound, ErrorResponse{Message: e.Error()})

	default:
		return echo.ErrInternalServerError.SetInternal(err)
	}
}

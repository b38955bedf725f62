package dependency

import (
	"net/http"

	"github.com/fluxline-cloud/fluxline/api/rest/controller/params"
	depsvc "github.com/fluxline-cloud/fluxline/api/rest/service/dependency"
	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/labstack/echo/v4"
)

// Upstream returns the edges the node requires.
func Upstream(c echo.Context) error {
	return neighbors(c, depsvc.Service(c.Request().Context()).Upstream)
}

// Downstream returns the edges that require the node.
func Downstream(c echo.Context) error {
	return neighbors(c, depsvc.Service(c.Request().Context()).Downstream)
}

func neighbors(
	c echo.Context,
	fetch func(int64, models.NodeRef) (models.Dependencies, error),
) error {
	orgID, err := params.OrgID(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	node, err := parseNode(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	deps, err := fetch(orgID, node)
	if err != nil {
		return echo.ErrInternalServerError.SetInternal(err)
	}

	return c.JSON(http.StatusOK, deps)
}

func parseNode(c echo.Context) (models.NodeRef, error) {
	id, err := params.ID(c, "id")
	if err != nil {
		return models.NodeRef{}, err
	}

	node := models.NodeRef{
		Type: models.NodeType(c.Param("type")),
		ID:   id,
	}

	if !node.Type.Valid() {
		return models.NodeRef{}, echo.NewHTTPError(
			http.StatusBadRequest,
			"unknown node type",
		)
	}

	return node, nil
}

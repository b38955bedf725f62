package run

import (
	"net/http"

	"github.com/fluxline-cloud/fluxline/api/rest/controller/params"
	"github.com/fluxline-cloud/fluxline/internal/gate"
	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/labstack/echo/v4"
)

// Check evaluates the freshness gate for a node without creating a
// run. It answers "would this node be admitted right now, and if not,
// which upstreams are blocking it".
func Check(c echo.Context) error {
	orgID, err := params.OrgID(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	id, err := params.ID(c, "id")
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}

	node := models.NodeRef{
		Type: models.NodeType(c.Param("type")),
		ID:   id,
	}
	if !node.Type.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown node type")
	}

	result, err := gate.Service(c.Request().Context()).Check(&gate.CheckRequest{
		OrgID:  orgID,
		Target: node,
	})
	if err != nil {
		return echo.ErrInternalServerError.SetInternal(err)
	}

	return c.JSON(http.StatusOK, result)
}

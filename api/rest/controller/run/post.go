package run

import (
	"fmt"
	"net/http"

	"github.com/fluxline-cloud/fluxline/api/rest/controller/params"
	runsvc "github.com/fluxline-cloud/fluxline/api/rest/service/run"
	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/fluxline-cloud/fluxline/internal/queue"
	"github.com/fluxline-cloud/fluxline/pkg/log"
	"github.com/labstack/echo/v4"
)

// Post records a pending run for the requested node and enqueues its
// first admission check. Execution happens on a worker once the run is
// admitted.
func Post(c echo.Context) error {
	var (
		ctx = c.Request().Context()
		req = &runsvc.CreateRequest{}
	)

	if err := c.Bind(req); err != nil {
		return err
	}

	orgID, err := params.OrgID(c)
	if err != nil {
		return echo.ErrBadRequest.SetInternal(err)
	}
	req.OrgID = orgID

	if !req.TargetType.Valid() {
		return echo.ErrBadRequest.SetInternal(
			fmt.Errorf("unknown node type: %q", req.TargetType),
		)
	}

	log.Info(
		"creating run",
		"org_id", req.OrgID,
		"target", models.NodeRef{Type: req.TargetType, ID: req.TargetID}.String(),
	)

	run, err := runsvc.Service(ctx).Create(req)
	if err != nil {
		return echo.ErrInternalServerError.SetInternal(err)
	}

	_, err = queue.Service(ctx).EnqueueAdmission(&queue.EnqueueRequest{
		OrgID:    run.OrgID,
		RunID:    run.ID,
		NodeType: run.TargetType,
	})
	if err != nil {
		return echo.ErrInternalServerError.SetInternal(err)
	}

	return c.JSON(http.StatusCreated, run)
}

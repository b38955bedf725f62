package bind

import (
	"github.com/fluxline-cloud/fluxline/api/rest/controller/connection"
	"github.com/fluxline-cloud/fluxline/api/rest/controller/dependency"
	eventctrl "github.com/fluxline-cloud/fluxline/api/rest/controller/event"
	"github.com/fluxline-cloud/fluxline/api/rest/controller/pipeline"
	"github.com/fluxline-cloud/fluxline/api/rest/controller/run"
	"github.com/fluxline-cloud/fluxline/api/rest/controller/schedule"
	"github.com/fluxline-cloud/fluxline/api/rest/controller/transformation"
	"github.com/fluxline-cloud/fluxline/api/rest/controller/upload"
	"github.com/fluxline-cloud/fluxline/internal/event"
	"github.com/labstack/echo/v4"
)

func All(g *echo.Group) {
	// connections
	{
		g.GET("/connections", connection.List)
		g.GET("/connections/:id", connection.Get)
		g.POST("/connections", connection.Post)
		g.DELETE("/connections/:id", connection.Delete)
	}

	// uploads
	{
		g.GET("/uploads", upload.List)
		g.GET("/uploads/:id", upload.Get)
		g.POST("/uploads", upload.Post)
		g.DELETE("/uploads/:id", upload.Delete)
	}

	// transformations
	{
		g.GET("/transformations", transformation.List)
		g.GET("/transformations/:id", transformation.Get)
		g.POST("/transformations", transformation.Post)
		g.DELETE("/transformations/:id", transformation.Delete)
	}

	// pipelines
	{
		g.GET("/pipelines", pipeline.List)
		g.GET("/pipelines/:id", pipeline.Get)
		g.POST("/pipelines", pipeline.Post)
		g.DELETE("/pipelines/:id", pipeline.Delete)
	}

	// dependencies
	{
		g.GET("/dependencies", dependency.List)
		g.POST("/dependencies", dependency.Post)
		g.DELETE("/dependencies/:id", dependency.Delete)
		g.GET("/nodes/:type/:id/upstream", dependency.Upstream)
		g.GET("/nodes/:type/:id/downstream", dependency.Downstream)
	}

	// runs
	{
		g.GET("/runs", run.List)
		g.GET("/runs/:id", run.Get)
		g.POST("/runs", run.Post)
		g.POST("/runs/:id/cancel", run.Cancel)
		g.GET("/nodes/:type/:id/check", run.Check)
	}

	// schedules
	{
		g.GET("/schedules", schedule.List)
		g.GET("/schedules/:id", schedule.Get)
		g.POST("/schedules", schedule.Post)
		g.PUT("/schedules/:id/active", schedule.SetActive)
		g.DELETE("/schedules/:id", schedule.Delete)
	}

	// events
	{
		g.GET("/events", eventctrl.New(event.Default()).Stream)
	}
}

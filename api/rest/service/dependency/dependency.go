package dependency

import (
	"context"
	"time"

	pipelinesvc "github.com/fluxline-cloud/fluxline/api/rest/service/pipeline"
	transformationsvc "github.com/fluxline-cloud/fluxline/api/rest/service/transformation"
	uploadsvc "github.com/fluxline-cloud/fluxline/api/rest/service/upload"
	"github.com/fluxline-cloud/fluxline/internal/event"
	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/fluxline-cloud/fluxline/pkg/db"
	"gorm.io/gorm"
)

// Resolver answers whether a node id exists, non-deleted, in an
// organization. One implementation exists per node type.
type Resolver interface {
	Exists(orgID, id int64) (bool, error)
}

// Resolvers holds one resolver per node type; Exists dispatches over
// the closed set of variants.
type Resolvers struct {
	Uploads         Resolver
	Transformations Resolver
	Pipelines       Resolver
}

// Exists resolves a polymorphic node reference. Unknown node types
// report false; Add rejects them before resolution.
func (r Resolvers) Exists(orgID int64, node models.NodeRef) (bool, error) {
	switch node.Type {
	case models.NodeTypeUpload:
		return r.Uploads.Exists(orgID, node.ID)
	case models.NodeTypeTransformation:
		return r.Transformations.Exists(orgID, node.ID)
	case models.NodeTypePipeline:
		return r.Pipelines.Exists(orgID, node.ID)
	}
	return false, nil
}

// Dependency is the registry of directed edges between nodes. It is
// the sole mutator of the dependencies table.
type Dependency interface {
	WithDatabase(*gorm.DB) Dependency
	WithResolvers(Resolvers) Dependency
	Add(*AddRequest) (*models.Dependency, error)
	Remove(orgID, id int64) (bool, error)
	Get(orgID, id int64) (*models.Dependency, error)
	List(*ListRequest) (models.Dependencies, error)
	Upstream(orgID int64, node models.NodeRef) (models.Dependencies, error)
	Downstream(orgID int64, node models.NodeRef) (models.Dependencies, error)
}

type dependencyService struct {
	ctx       context.Context
	db        *gorm.DB
	resolvers *Resolvers
	bus       event.Bus
}

func Service(ctx context.Context) Dependency {
	return &dependencyService{
		ctx: ctx,
		db:  db.Connection(),
		bus: event.Default(),
	}
}

func (d *dependencyService) WithDatabase(conn *gorm.DB) Dependency {
	d.db = conn
	return d
}

func (d *dependencyService) WithResolvers(resolvers Resolvers) Dependency {
	d.resolvers = &resolvers
	return d
}

func (d *dependencyService) nodeResolvers() Resolvers {
	if d.resolvers != nil {
		return *d.resolvers
	}

	return Resolvers{
		Uploads:         uploadsvc.Service(d.ctx).WithDatabase(d.db),
		Transformations: transformationsvc.Service(d.ctx).WithDatabase(d.db),
		Pipelines:       pipelinesvc.Service(d.ctx).WithDatabase(d.db),
	}
}

type AddRequest struct {
	OrgID               int64                 `json:"org_id"`
	UpstreamType        models.NodeType       `json:"upstream_type"`
	UpstreamID          int64                 `json:"upstream_id"`
	DownstreamType      models.NodeType       `json:"downstream_type"`
	DownstreamID        int64                 `json:"downstream_id"`
	CheckTimeframeValue *int                  `json:"check_timeframe_value,omitempty"`
	CheckTimeframeUnit  *models.TimeframeUnit `json:"check_timeframe_unit,omitempty"`
}

func (r *AddRequest) upstream() models.NodeRef {
	return models.NodeRef{Type: r.UpstreamType, ID: r.UpstreamID}
}

func (r *AddRequest) downstream() models.NodeRef {
	return models.NodeRef{Type: r.DownstreamType, ID: r.DownstreamID}
}

// Add validates and inserts an edge. Validation fails fast: the first
// violated rule wins, in the order below.
func (d *dependencyService) Add(req *AddRequest) (*models.Dependency, error) {
	if req.CheckTimeframeUnit != nil && req.CheckTimeframeValue == nil {
		return nil, configErr(
			CodeUnitWithoutValue,
			"check_timeframe_unit requires check_timeframe_value",
		)
	}

	if req.CheckTimeframeValue != nil && *req.CheckTimeframeValue <= 0 {
		return nil, configErr(
			CodeNonPositiveValue,
			"check_timeframe_value must be a positive integer, got %d",
			*req.CheckTimeframeValue,
		)
	}

	if req.CheckTimeframeUnit != nil && !req.CheckTimeframeUnit.Valid() {
		return nil, configErr(
			CodeInvalidUnit,
			"check_timeframe_unit must be %q or %q, got %q",
			models.TimeframeUnitMinutes,
			models.TimeframeUnitHours,
			*req.CheckTimeframeUnit,
		)
	}

	if !req.UpstreamType.Valid() || !req.DownstreamType.Valid() {
		return nil, configErr(CodeUnknownNodeType, "unknown node type")
	}

	if req.upstream() == req.downstream() {
		return nil, configErr(
			CodeSelfReference,
			"self-reference: upstream and downstream are the same node",
		)
	}

	resolvers := d.nodeResolvers()

	for _, side := range []struct {
		label string
		node  models.NodeRef
	}{
		{"upstream", req.upstream()},
		{"downstream", req.downstream()},
	} {
		found, err := resolvers.Exists(req.OrgID, side.node)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, &NotFoundError{
				Side:  side.label,
				Node:  side.node,
				OrgID: req.OrgID,
			}
		}
	}

	var count int64
	err := d.db.WithContext(d.ctx).
		Model(&models.Dependency{}).
		Where(
			"org_id = ? AND upstream_type = ? AND upstream_id = ? AND downstream_type = ? AND downstream_id = ? AND deleted_at IS NULL",
			req.OrgID,
			req.UpstreamType,
			req.UpstreamID,
			req.DownstreamType,
			req.DownstreamID,
		).
		Count(&count).Error
	if err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, configErr(CodeDuplicate, "dependency already exists")
	}

	dep := &models.Dependency{
		OrgID:               req.OrgID,
		UpstreamType:        req.UpstreamType,
		UpstreamID:          req.UpstreamID,
		DownstreamType:      req.DownstreamType,
		DownstreamID:        req.DownstreamID,
		CheckTimeframeValue: req.CheckTimeframeValue,
		CheckTimeframeUnit:  req.CheckTimeframeUnit,
	}

	if err = d.db.WithContext(d.ctx).Create(dep).Error; err != nil {
		return nil, err
	}

	d.publish(event.TypeDependencyCreated, dep)

	return dep, nil
}

// Remove soft-deletes an edge; it reports whether a row was affected.
func (d *dependencyService) Remove(orgID, id int64) (bool, error) {
	dep, err := d.Get(orgID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}

	now := time.Now().UTC()

	result := d.db.WithContext(d.ctx).
		Model(&models.Dependency{}).
		Where("id = ? AND org_id = ? AND deleted_at IS NULL", id, orgID).
		Update("deleted_at", now)
	if result.Error != nil {
		return false, result.Error
	}

	if result.RowsAffected > 0 {
		d.publish(event.TypeDependencyRemoved, dep)
	}

	return result.RowsAffected > 0, nil
}

func (d *dependencyService) Get(orgID, id int64) (*models.Dependency, error) {
	var dep models.Dependency

	err := d.db.WithContext(d.ctx).
		Where("id = ? AND org_id = ? AND deleted_at IS NULL", id, orgID).
		First(&dep).Error
	if err != nil {
		return nil, err
	}

	return &dep, nil
}

type ListRequest struct {
	OrgID  int64
	Limit  uint64
	Offset uint64
}

func (d *dependencyService) List(req *ListRequest) (models.Dependencies, error) {
	var (
		deps = make(models.Dependencies, 0)
		q    = d.db.WithContext(d.ctx).
			Where("org_id = ? AND deleted_at IS NULL", req.OrgID).
			Order("created_at DESC")
	)

	if req.Limit > 0 {
		q = q.Limit(int(req.Limit))
	}

	if req.Offset > 0 {
		q = q.Offset(int(req.Offset))
	}

	return deps, q.Find(&deps).Error
}

// Upstream returns the edges where node is the downstream side, i.e.
// the nodes this node requires.
func (d *dependencyService) Upstream(orgID int64, node models.NodeRef) (models.Dependencies, error) {
	deps := make(models.Dependencies, 0)

	err := d.db.WithContext(d.ctx).
		Where(
			"org_id = ? AND downstream_type = ? AND downstream_id = ? AND deleted_at IS NULL",
			orgID, node.Type, node.ID,
		).
		Order("created_at DESC").
		Find(&deps).Error

	return deps, err
}

// Downstream returns the edges where node is the upstream side, i.e.
// the nodes that require this node.
func (d *dependencyService) Downstream(orgID int64, node models.NodeRef) (models.Dependencies, error) {
	deps := make(models.Dependencies, 0)

	err := d.db.WithContext(d.ctx).
		Where(
			"org_id = ? AND upstream_type = ? AND upstream_id = ? AND deleted_at IS NULL",
			orgID, node.Type, node.ID,
		).
		Order("created_at DESC").
		Find(&deps).Error

	return deps, err
}

func (d *dependencyService) publish(t event.Type, dep *models.Dependency) {
	if d.bus == nil {
		return
	}

	d.bus.Publish(event.Event{
		Type:  t,
		OrgID: dep.OrgID,
		Node:  dep.Downstream(),
	})
}

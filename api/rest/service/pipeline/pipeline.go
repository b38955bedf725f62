package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	connsvc "github.com/fluxline-cloud/fluxline/api/rest/service/connection"
	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/fluxline-cloud/fluxline/pkg/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Pipeline interface {
	WithDatabase(*gorm.DB) Pipeline
	List(*ListRequest) (models.Pipelines, error)
	Get(orgID, id int64) (*models.Pipeline, error)
	Exists(orgID, id int64) (bool, error)
	Create(*CreateRequest) (*models.Pipeline, error)
	Delete(orgID, id int64) (bool, error)
}

type pipelineService struct {
	ctx context.Context
	db  *gorm.DB
}

func Service(ctx context.Context) Pipeline {
	return &pipelineService{
		ctx: ctx,
		db:  db.Connection(),
	}
}

func (p *pipelineService) WithDatabase(conn *gorm.DB) Pipeline {
	p.db = conn
	return p
}

type ListRequest struct {
	OrgID  int64
	Status string
	Limit  uint64
	Offset uint64
}

func (p *pipelineService) List(req *ListRequest) (models.Pipelines, error) {
	var (
		pipelines = make(models.Pipelines, 0)
		q         = p.db.WithContext(p.ctx).
			Where("org_id = ? AND deleted_at IS NULL", req.OrgID).
			Order("created_at DESC")
	)

	if req.Status != "" {
		q = q.Where("status = ?", req.Status)
	}

	if req.Limit > 0 {
		q = q.Limit(int(req.Limit))
	}

	if req.Offset > 0 {
		q = q.Offset(int(req.Offset))
	}

	return pipelines, q.Find(&pipelines).Error
}

func (p *pipelineService) Get(orgID, id int64) (*models.Pipeline, error) {
	var pipeline models.Pipeline

	err := p.db.WithContext(p.ctx).
		Where("id = ? AND org_id = ? AND deleted_at IS NULL", id, orgID).
		First(&pipeline).Error
	if err != nil {
		return nil, err
	}

	return &pipeline, nil
}

func (p *pipelineService) Exists(orgID, id int64) (bool, error) {
	var count int64

	err := p.db.WithContext(p.ctx).
		Model(&models.Pipeline{}).
		Where("id = ? AND org_id = ? AND deleted_at IS NULL", id, orgID).
		Count(&count).Error

	return count > 0, err
}

type CreateRequest struct {
	OrgID                   int64             `json:"org_id"`
	Name                    string            `json:"name"`
	Description             string            `json:"description"`
	DestinationConnectionID int64             `json:"destination_connection_id"`
	Models                  datatypes.JSONMap `json:"models"`
}

func (p *pipelineService) Create(req *CreateRequest) (*models.Pipeline, error) {
	if req.Name == "" {
		return nil, errors.New("pipeline name is required")
	}

	conns := connsvc.Service(p.ctx).WithDatabase(p.db)

	dst, err := conns.Get(req.OrgID, req.DestinationConnectionID)
	if err != nil || !dst.Direction.Writable() {
		return nil, fmt.Errorf(
			"invalid destination connection %d: must exist and have direction destination or both",
			req.DestinationConnectionID,
		)
	}

	pipeline := &models.Pipeline{
		OrgID:                   req.OrgID,
		Name:                    req.Name,
		Description:             req.Description,
		DestinationConnectionID: req.DestinationConnectionID,
		Models:                  req.Models,
		Status:                  models.PipelineStatusDraft,
	}

	return pipeline, p.db.WithContext(p.ctx).Create(pipeline).Error
}

func (p *pipelineService) Delete(orgID, id int64) (bool, error) {
	now := time.Now().UTC()

	result := p.db.WithContext(p.ctx).
		Model(&models.Pipeline{}).
		Where("id = ? AND org_id = ? AND deleted_at IS NULL", id, orgID).
		Update("deleted_at", now)

	return result.RowsAffected > 0, result.Error
}

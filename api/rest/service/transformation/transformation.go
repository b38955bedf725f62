package transformation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/fluxline-cloud/fluxline/pkg/db"
	"gorm.io/gorm"
)

type Transformation interface {
	WithDatabase(*gorm.DB) Transformation
	List(*ListRequest) (models.Transformations, error)
	Get(orgID, id int64) (*models.Transformation, error)
	Exists(orgID, id int64) (bool, error)
	Create(*CreateRequest) (*models.Transformation, error)
	Delete(orgID, id int64) (bool, error)
}

type transformationService struct {
	ctx context.Context
	db  *gorm.DB
}

func Service(ctx context.Context) Transformation {
	return &transformationService{
		ctx: ctx,
		db:  db.Connection(),
	}
}

func (t *transformationService) WithDatabase(conn *gorm.DB) Transformation {
	t.db = conn
	return t
}

type ListRequest struct {
	OrgID  int64
	Limit  uint64
	Offset uint64
}

func (t *transformationService) List(req *ListRequest) (models.Transformations, error) {
	var (
		transformations = make(models.Transformations, 0)
		q               = t.db.WithContext(t.ctx).
			Where("org_id = ? AND deleted_at IS NULL", req.OrgID).
			Order("created_at DESC")
	)

	if req.Limit > 0 {
		q = q.Limit(int(req.Limit))
	}

	if req.Offset > 0 {
		q = q.Offset(int(req.Offset))
	}

	return transformations, q.Find(&transformations).Error
}

func (t *transformationService) Get(orgID, id int64) (*models.Transformation, error) {
	var transformation models.Transformation

	err := t.db.WithContext(t.ctx).
		Where("id = ? AND org_id = ? AND deleted_at IS NULL", id, orgID).
		First(&transformation).Error
	if err != nil {
		return nil, err
	}

	return &transformation, nil
}

func (t *transformationService) Exists(orgID, id int64) (bool, error) {
	var count int64

	err := t.db.WithContext(t.ctx).
		Model(&models.Transformation{}).
		Where("id = ? AND org_id = ? AND deleted_at IS NULL", id, orgID).
		Count(&count).Error

	return count > 0, err
}

type CreateRequest struct {
	OrgID           int64                  `json:"org_id"`
	Name            string                 `json:"name"`
	Description     string                 `json:"description"`
	SQLBody         string                 `json:"sql_body"`
	Materialization models.Materialization `json:"materialization"`
	SchemaName      string                 `json:"schema_name"`
}

func (t *transformationService) Create(req *CreateRequest) (*models.Transformation, error) {
	if req.Name == "" {
		return nil, errors.New("transformation name is required")
	}

	if req.SQLBody == "" {
		return nil, errors.New("transformation sql body is required")
	}

	materialization := req.Materialization
	if materialization == "" {
		materialization = models.MaterializationView
	}

	if !materialization.Valid() {
		return nil, fmt.Errorf("invalid materialization: %q", materialization)
	}

	schema := req.SchemaName
	if schema == "" {
		schema = "staging"
	}

	transformation := &models.Transformation{
		OrgID:           req.OrgID,
		Name:            req.Name,
		Description:     req.Description,
		SQLBody:         req.SQLBody,
		Materialization: materialization,
		SchemaName:      schema,
	}

	return transformation, t.db.WithContext(t.ctx).Create(transformation).Error
}

func (t *transformationService) Delete(orgID, id int64) (bool, error) {
	now := time.Now().UTC()

	result := t.db.WithContext(t.ctx).
		Model(&models.Transformation{}).
		Where("id = ? AND org_id = ? AND deleted_at IS NULL", id, orgID).
		Update("deleted_at", now)

	return result.RowsAffected > 0, result.Error
}

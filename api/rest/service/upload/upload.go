package upload

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

type Upload interface {
	WithDatabase(*gorm.DB) Upload
	List(*ListRequest) (models.Uploads, error)
	Get(orgID, id int64) (*models.Upload, error)
	Exists(orgID, id int64) (bool, error)
	Create(*CreateRequest) (*models.Upload, error)
	Delete(orgID, id int64) (bool, error)
}

type uploadService struct {
	ctx context.Context
	db  *gorm.DB
}

func Service(ctx context.Context) Upload {
	return &uploadService{
		ctx: ctx,
		db:  db.Connection(),
	}
}

func (u *uploadService) WithDatabase(conn *gorm.DB) Upload {
	u.db = conn
	return u
}

type ListRequest struct {
	OrgID  int64
	Limit  uint64
	Offset uint64
}

func (u *uploadService) List(req *ListRequest) (models.Uploads, error) {
	var (
		uploads = make(models.Uploads, 0)
		q       = u.db.WithContext(u.ctx).
			Where("org_id = ? AND deleted_at IS NULL", req.OrgID).
			Order("created_at DESC")
	)

	if req.Limit > 0 {
		q = q.Limit(int(req.Limit))
	}

	if req.Offset > 0 {
		q = q.Offset(int(req.Offset))
	}

	return uploads, q.Find(&uploads).Error
}

func (u *uploadService) Get(orgID, id int64) (*models.Upload, error) {
	var upload models.Upload

	err := u.db.WithContext(u.ctx).
		Where("id = ? AND org_id = ? AND deleted_at IS NULL", id, orgID).
		First(&upload).Error
	if err != nil {
		return nil, err
	}

	return &upload, nil
}

func (u *uploadService) Exists(orgID, id int64) (bool, error) {
	var count int64

	err := u.db.WithContext(u.ctx).
		Model(&models.Upload{}).
		Where("id = ? AND org_id = ? AND deleted_at IS NULL", id, orgID).
		Count(&count).Error

	return count > 0, err
}

type CreateRequest struct {
	OrgID                   int64             `json:"org_id"`
	Name                    string            `json:"name"`
	Description             string            `json:"description"`
	SourceConnectionID      int64             `json:"source_connection_id"`
	DestinationConnectionID int64             `json:"destination_connection_id"`
	Config                  datatypes.JSONMap `json:"config"`
}

func (u *uploadService) Create(req *CreateRequest) (*models.Upload, error) {
	if req.Name == "" {
		return nil, errors.New("upload name is required")
	}

	conns := connsvc.Service(u.ctx).WithDatabase(u.db)

	src, err := conns.Get(req.OrgID, req.SourceConnectionID)
	if err != nil || !src.Direction.Readable() {
		return nil, fmt.Errorf(
			"invalid source connection %d: must exist and have direction source or both",
			req.SourceConnectionID,
		)
	}

	dst, err := conns.Get(req.OrgID, req.DestinationConnectionID)
	if err != nil || !dst.Direction.Writable() {
		return nil, fmt.Errorf(
			"invalid destination connection %d: must exist and have direction destination or both",
			req.DestinationConnectionID,
		)
	}

	upload := &models.Upload{
		OrgID:                   req.OrgID,
		Name:                    req.Name,
		Description:             req.Description,
		SourceConnectionID:      req.SourceConnectionID,
		DestinationConnectionID: req.DestinationConnectionID,
		Config:                  req.Config,
	}

	return upload, u.db.WithContext(u.ctx).Create(upload).Error
}

func (u *uploadService) Delete(orgID, id int64) (bool, error) {
	now := time.Now().UTC()

	result := u.db.WithContext(u.ctx).
		Model(&models.Upload{}).
		Where("id = ? AND org_id = ? AND deleted_at IS NULL", id, orgID).
		Update("deleted_at", now)

	return result.RowsAffected > 0, result.Error
}

package connection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/fluxline-cloud/fluxline/pkg/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Cipher encrypts credential material before it is persisted inside a
// connection config. The implementation lives outside this core.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type Connection interface {
	WithDatabase(*gorm.DB) Connection
	WithCipher(Cipher) Connection
	List(*ListRequest) (models.Connections, error)
	Get(orgID, id int64) (*models.Connection, error)
	Create(*CreateRequest) (*models.Connection, error)
	Delete(orgID, id int64) (bool, error)
}

type connectionService struct {
	ctx    context.Context
	db     *gorm.DB
	cipher Cipher
}

func Service(ctx context.Context) Connection {
	return &connectionService{
		ctx: ctx,
		db:  db.Connection(),
	}
}

func (c *connectionService) WithDatabase(conn *gorm.DB) Connection {
	c.db = conn
	return c
}

func (c *connectionService) WithCipher(cipher Cipher) Connection {
	c.cipher = cipher
	return c
}

type ListRequest struct {
	OrgID     int64
	Direction string
	Limit     uint64
	Offset    uint64
}

func (c *connectionService) List(req *ListRequest) (models.Connections, error) {
	var (
		conns = make(models.Connections, 0)
		q     = c.db.WithContext(c.ctx).
			Where("org_id = ? AND deleted_at IS NULL", req.OrgID).
			Order("created_at DESC")
	)

	if req.Direction != "" {
		q = q.Where("direction = ?", req.Direction)
	}

	if req.Limit > 0 {
		q = q.Limit(int(req.Limit))
	}

	if req.Offset > 0 {
		q = q.Offset(int(req.Offset))
	}

	return conns, q.Find(&conns).Error
}

func (c *connectionService) Get(orgID, id int64) (*models.Connection, error) {
	var (
		conn = &models.Connection{}
		q    = c.db.WithContext(c.ctx)
	)

	err := q.Where("id = ? AND org_id = ? AND deleted_at IS NULL", id, orgID).
		First(conn).Error
	if err != nil {
		return nil, err
	}

	return conn, nil
}

type CreateRequest struct {
	OrgID     int64                      `json:"org_id"`
	Name      string                     `json:"name"`
	Type      string                     `json:"type"`
	Direction models.ConnectionDirection `json:"direction"`
	Config    datatypes.JSONMap          `json:"config"`
}

func (c *connectionService) Create(req *CreateRequest) (*models.Connection, error) {
	if req.Name == "" {
		return nil, errors.New("connection name is required")
	}

	switch req.Direction {
	case models.ConnectionDirectionSource,
		models.ConnectionDirectionDestination,
		models.ConnectionDirectionBoth:
	default:
		return nil, fmt.Errorf("invalid connection direction: %q", req.Direction)
	}

	config := req.Config
	if c.cipher != nil {
		sealed, err := c.sealCredentials(config)
		if err != nil {
			return nil, err
		}
		config = sealed
	}

	conn := &models.Connection{
		OrgID:     req.OrgID,
		Name:      req.Name,
		Type:      req.Type,
		Direction: req.Direction,
		Config:    config,
	}

	return conn, c.db.WithContext(c.ctx).Create(conn).Error
}

func (c *connectionService) Delete(orgID, id int64) (bool, error) {
	now := time.Now().UTC()

	result := c.db.WithContext(c.ctx).
		Model(&models.Connection{}).
		Where("id = ? AND org_id = ? AND deleted_at IS NULL", id, orgID).
		Update("deleted_at", now)

	return result.RowsAffected > 0, result.Error
}

// sealCredentials encrypts string values under the "credentials" key.
func (c *connectionService) sealCredentials(config datatypes.JSONMap) (datatypes.JSONMap, error) {
	raw, ok := config["credentials"]
	if !ok {
		return config, nil
	}

	creds, ok := raw.(map[string]interface{})
	if !ok {
		return config, nil
	}

	sealed := make(map[string]interface{}, len(creds))
	for key, value := range creds {
		text, ok := value.(string)
		if !ok {
			sealed[key] = value
			continue
		}

		enc, err := c.cipher.Encrypt(text)
		if err != nil {
			return nil, err
		}
		sealed[key] = enc
	}

	out := make(datatypes.JSONMap, len(config))
	for key, value := range config {
		out[key] = value
	}
	out["credentials"] = sealed

	return out, nil
}

package db

import (
	"sync"

	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/fluxline-cloud/fluxline/pkg/env"
	"github.com/fluxline-cloud/fluxline/pkg/log"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	connection *gorm.DB
	once       sync.Once
)

// Connection returns the database connection based on the
// configured environment. Fluxline supports postgres for
// production deployments and sqlite for single-node or
// development use.
func Connection() *gorm.DB {
	once.Do(func() {
		var err error

		switch env.Variables().DatabaseType {
		case "postgres":
			connection, err = gorm.Open(
				postgres.Open(env.Variables().DatabaseDSN),
				&gorm.Config{},
			)
		case "sqlite":
			fallthrough
		default:
			connection, err = gorm.Open(
				sqlite.Open(env.Variables().DatabaseDSN),
				&gorm.Config{},
			)
		}

		if err != nil {
			log.Fatal("failed to connect to database", "error", err)
		}
	})

	return connection
}

// Migrate applies the schema for all fluxline models.
func Migrate() error {
	if err := models.Migrate(Connection()); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}

	return nil
}

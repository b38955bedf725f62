package env

import (
	"time"

	"github.com/fluxline-cloud/fluxline/pkg/log"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

var variables = new(Environment)

// Process the environment variables set for fluxline.
func Process() error {
	if err := envconfig.Process("fluxline", variables); err != nil {
		return errors.Wrap(err, "failed to process environment variables")
	}

	// set the log level
	if err := log.SetLevel(variables.LogLevel); err != nil {
		return errors.Wrap(err, "failed to set log level")
	}

	return nil
}

// Variables returns the processed environment variables.
func Variables() Environment {
	return *variables
}

// Environment defines the environment variables used
// by fluxline.
type Environment struct {
	LogLevel             string        `default:"info"`
	Port                 int           `default:"8080"`
	NodeID               string        `default:""` // hostname
	DatabaseType         string        `default:"postgres"`
	DatabaseDSN          string        `default:"host=postgres user=postgres password=postgres dbname=fluxline port=5432 sslmode=disable"`
	WorkerPollInterval   time.Duration `default:"1s"`
	WorkerConcurrency    int           `default:"4"`
	SchedulerTickPeriod  time.Duration `default:"1m"`
	AdmissionRetryDelay  time.Duration `default:"60s"`
	AdmissionMaxRetries  int           `default:"5"`
	GraphDefinitionsPath string        `default:""`
}

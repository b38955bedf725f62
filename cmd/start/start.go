package start

import (
	"context"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/fluxline-cloud/fluxline/api"
	"github.com/fluxline-cloud/fluxline/internal/importer"
	"github.com/fluxline-cloud/fluxline/internal/metrics"
	"github.com/fluxline-cloud/fluxline/internal/scheduler"
	"github.com/fluxline-cloud/fluxline/internal/worker"
	"github.com/fluxline-cloud/fluxline/pkg/db"
	"github.com/fluxline-cloud/fluxline/pkg/env"
	"github.com/fluxline-cloud/fluxline/pkg/log"
	"github.com/spf13/cobra"
)

const (
	usage   = "start"
	short   = "Start a fluxline instance"
	long    = "This command starts a fluxline instance: API, scheduler, and queue worker"
	example = "fluxline start"
)

var (
	// Cmd is the start command.
	Cmd = &cobra.Command{
		Use:        usage,
		Short:      short,
		Long:       long,
		Aliases:    []string{"s"},
		SuggestFor: []string{"launch", "boot", "up", "run", "begin"},
		Example:    example,
		RunE:       start,
	}
)

var cancel context.CancelFunc

func start(cmd *cobra.Command, args []string) error {
	signalChan := make(chan os.Signal, 1)

	go func() {
		for s := range signalChan {
			switch s {
			case syscall.SIGUSR1:
				log.Info("dumping stack traces due to SIGUSR1 signal")
				if profile := pprof.Lookup("goroutine"); profile != nil {
					if err := profile.WriteTo(os.Stdout, 1); err != nil {
						log.Error("write goroutine profile", "error", err)
					}
				}
			case syscall.SIGINT:
				log.Info("gracefully shutting down due to SIGINT signal")
				shutdown()
				os.Exit(0)
			}
		}
	}()

	signal.Notify(signalChan, syscall.SIGUSR1, syscall.SIGINT)

	var errs = make(chan error)
	ctx, cancelFunc := context.WithCancel(context.Background())
	cancel = cancelFunc

	metrics.Register()

	log.Info("migrating database")
	if err := db.Migrate(); err != nil {
		log.Fatal("database migration failure", "error", err)
	}

	vars := env.Variables()

	if vars.GraphDefinitionsPath != "" {
		log.Info("importing graph definitions", "path", vars.GraphDefinitionsPath)
		if err := importer.New(ctx, db.Connection()).ImportPath(vars.GraphDefinitionsPath); err != nil {
			log.Fatal("graph definition import failure", "error", err)
		}
	}

	go func() {
		log.Info("spinning up api")
		errs <- api.Start()
	}()

	go func() {
		log.Info("launching scheduler")
		errs <- scheduler.New(db.Connection(), vars.SchedulerTickPeriod).Run(ctx)
	}()

	go func() {
		log.Info("launching queue worker", "node_id", nodeID(vars))
		errs <- worker.New(db.Connection(), worker.Config{
			NodeID:       nodeID(vars),
			Concurrency:  vars.WorkerConcurrency,
			PollInterval: vars.WorkerPollInterval,
			RetryDelay:   vars.AdmissionRetryDelay,
			MaxRetries:   vars.AdmissionMaxRetries,
		}).Run(ctx)
	}()

	defer shutdown()

	return <-errs
}

func nodeID(vars env.Environment) string {
	if vars.NodeID != "" {
		return vars.NodeID
	}

	hostname, err := os.Hostname()
	if err != nil {
		return "fluxline"
	}

	return hostname
}

func shutdown() {
	if cancel != nil {
		cancel()
	}
}

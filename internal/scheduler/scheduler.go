// Package scheduler fires cron schedules. Each tick it re-reads the
// active schedules from the database, so create/pause/delete take
// effect within one tick without restarting the process.
package scheduler

import (
	"context"
	"time"

	runsvc "github.com/fluxline-cloud/fluxline/api/rest/service/run"
	schedsvc "github.com/fluxline-cloud/fluxline/api/rest/service/schedule"
	"github.com/fluxline-cloud/fluxline/internal/metrics"
	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/fluxline-cloud/fluxline/internal/queue"
	"github.com/fluxline-cloud/fluxline/pkg/log"
	"gorm.io/gorm"
)

const defaultTickPeriod = time.Minute

type Scheduler struct {
	db         *gorm.DB
	tickPeriod time.Duration
	lastTick   time.Time
}

func New(conn *gorm.DB, tickPeriod time.Duration) *Scheduler {
	if tickPeriod <= 0 {
		tickPeriod = defaultTickPeriod
	}

	return &Scheduler{
		db:         conn,
		tickPeriod: tickPeriod,
	}
}

// Run ticks until the context is cancelled. It blocks.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tickPeriod)
	defer ticker.Stop()

	s.lastTick = time.Now().UTC()

	for {
		select {
		case now := <-ticker.C:
			if err := s.tick(ctx, now.UTC()); err != nil {
				log.Error("scheduler tick failure", "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// tick fires every active schedule whose cron expression matched in
// the window (lastTick, now].
func (s *Scheduler) tick(ctx context.Context, now time.Time) error {
	schedules, err := schedsvc.Service(ctx).WithDatabase(s.db).ListActive()
	if err != nil {
		return err
	}

	for _, schedule := range schedules {
		due, err := s.due(schedule, now)
		if err != nil {
			log.Error(
				"schedule evaluation failure",
				"schedule_id", schedule.ID,
				"expression", schedule.CronExpression,
				"error", err,
			)
			continue
		}

		if !due {
			continue
		}

		if err := s.fire(ctx, schedule); err != nil {
			log.Error("schedule fire failure", "schedule_id", schedule.ID, "error", err)
		}
	}

	s.lastTick = now

	return nil
}

func (s *Scheduler) due(schedule *models.Schedule, now time.Time) (bool, error) {
	sched, err := schedsvc.Parse(schedule.CronExpression)
	if err != nil {
		return false, err
	}

	loc := time.UTC
	if schedule.Timezone != "" {
		if loc, err = time.LoadLocation(schedule.Timezone); err != nil {
			return false, err
		}
	}

	next := sched.Next(s.lastTick.In(loc))

	return !next.After(now.In(loc)), nil
}

// fire records a pending run for the schedule's target and enqueues
// its first admission check.
func (s *Scheduler) fire(ctx context.Context, schedule *models.Schedule) error {
	log.Info(
		"schedule firing",
		"schedule_id", schedule.ID,
		"target", schedule.Target().String(),
	)

	run, err := runsvc.Service(ctx).WithDatabase(s.db).Create(&runsvc.CreateRequest{
		OrgID:      schedule.OrgID,
		TargetType: schedule.TargetType,
		TargetID:   schedule.TargetID,
	})
	if err != nil {
		return err
	}

	_, err = queue.Service(ctx).WithDatabase(s.db).EnqueueAdmission(&queue.EnqueueRequest{
		OrgID:    schedule.OrgID,
		RunID:    run.ID,
		NodeType: schedule.TargetType,
	})
	if err != nil {
		return err
	}

	metrics.ScheduleFiresTotal.WithLabelValues(string(schedule.TargetType)).Inc()

	return nil
}

package scheduler

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fluxline-cloud/fluxline/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"),
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	return db
}

func createSchedule(t *testing.T, db *gorm.DB, expression string, active bool) *models.Schedule {
	t.Helper()

	schedule := &models.Schedule{
		OrgID:          1,
		TargetType:     models.NodeTypeUpload,
		TargetID:       7,
		CronExpression: expression,
		Timezone:       "UTC",
		IsActive:       active,
	}
	require.NoError(t, db.Create(schedule).Error)

	return schedule
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)

	return count
}

func TestTickFiresDueSchedule(t *testing.T) {
	var (
		db  = openTestDB(t)
		now = time.Now().UTC()
	)

	createSchedule(t, db, "* * * * *", true)

	s := New(db, time.Minute)
	s.lastTick = now.Add(-2 * time.Minute)

	require.NoError(t, s.tick(context.Background(), now))

	var run models.Run
	require.NoError(t, db.First(&run).Error)
	require.Equal(t, int64(1), run.OrgID)
	require.Equal(t, models.NodeTypeUpload, run.TargetType)
	require.Equal(t, int64(7), run.TargetID)
	require.Equal(t, models.RunStatusPending, run.Status)

	var task models.Task
	require.NoError(t, db.First(&task).Error)
	require.Equal(t, run.ID, task.RunID)
	require.Equal(t, models.TaskKindAdmission, task.Kind)
	require.Equal(t, models.TaskStatusPending, task.Status)
}

func TestTickDoesNotDoubleFire(t *testing.T) {
	var (
		db  = openTestDB(t)
		now = time.Now().UTC()
	)

	createSchedule(t, db, "* * * * *", true)

	s := New(db, time.Minute)
	s.lastTick = now.Add(-2 * time.Minute)

	require.NoError(t, s.tick(context.Background(), now))
	require.Equal(t, int64(1), countRows(t, db, &models.Run{}))

	// The window has not advanced; nothing new is due.
	require.NoError(t, s.tick(context.Background(), now))
	require.Equal(t, int64(1), countRows(t, db, &models.Run{}))
}

func TestTickSkipsInactiveSchedules(t *testing.T) {
	var (
		db  = openTestDB(t)
		now = time.Now().UTC()
	)

	createSchedule(t, db, "* * * * *", false)

	s := New(db, time.Minute)
	s.lastTick = now.Add(-2 * time.Minute)

	require.NoError(t, s.tick(context.Background(), now))
	require.Equal(t, int64(0), countRows(t, db, &models.Run{}))
}

func TestTickSkipsNotYetDueSchedules(t *testing.T) {
	var (
		db  = openTestDB(t)
		now = time.Now().UTC()
	)

	// Fires daily, twelve hours from now.
	notDue := now.Add(12 * time.Hour).Format("4 15 * * *")
	createSchedule(t, db, notDue, true)

	s := New(db, time.Minute)
	s.lastTick = now.Add(-time.Minute)

	require.NoError(t, s.tick(context.Background(), now))
	require.Equal(t, int64(0), countRows(t, db, &models.Run{}))
}

func TestTickSurvivesBadExpression(t *testing.T) {
	var (
		db  = openTestDB(t)
		now = time.Now().UTC()
	)

	createSchedule(t, db, "not a cron", true)
	createSchedule(t, db, "* * * * *", true)

	s := New(db, time.Minute)
	s.lastTick = now.Add(-2 * time.Minute)

	// The malformed schedule is logged and skipped; the valid one fires.
	require.NoError(t, s.tick(context.Background(), now))
	require.Equal(t, int64(1), countRows(t, db, &models.Run{}))
}

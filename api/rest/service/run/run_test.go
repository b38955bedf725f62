package run

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

func testService(db *gorm.DB) Run {
	return &runService{ctx: context.Background(), db: db}
}

func TestLifecycleSuccess(t *testing.T) {
	svc := testService(openTestDB(t))

	run, err := svc.Create(&CreateRequest{
		OrgID:      1,
		TargetType: models.NodeTypeUpload,
		TargetID:   7,
	})
	require.NoError(t, err)
	require.Equal(t, models.RunStatusPending, run.Status)
	require.Nil(t, run.StartedAt)

	run, err = svc.Start(run.ID)
	require.NoError(t, err)
	require.Equal(t, models.RunStatusRunning, run.Status)
	require.NotNil(t, run.StartedAt)

	run, err = svc.Complete(run.ID, 1234, "loaded 1234 rows")
	require.NoError(t, err)
	require.Equal(t, models.RunStatusSuccess, run.Status)
	require.NotNil(t, run.FinishedAt)
	require.Equal(t, int64(1234), *run.RowsLoaded)
	require.Equal(t, "loaded 1234 rows", run.Logs)
}

func TestLifecycleFailure(t *testing.T) {
	svc := testService(openTestDB(t))

	run, err := svc.Create(&CreateRequest{
		OrgID:      1,
		TargetType: models.NodeTypeTransformation,
		TargetID:   3,
	})
	require.NoError(t, err)

	run, err = svc.Fail(run.ID, "schema mismatch", "stderr output")
	require.NoError(t, err)
	require.Equal(t, models.RunStatusFailed, run.Status)
	require.Equal(t, "schema mismatch", run.ErrorMessage)
	require.NotNil(t, run.FinishedAt)
}

func TestCancelOnlyNonTerminal(t *testing.T) {
	svc := testService(openTestDB(t))

	run, err := svc.Create(&CreateRequest{
		OrgID:      1,
		TargetType: models.NodeTypeUpload,
		TargetID:   1,
	})
	require.NoError(t, err)

	run, err = svc.Cancel(run.ID)
	require.NoError(t, err)
	require.Equal(t, models.RunStatusCancelled, run.Status)

	_, err = svc.Cancel(run.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTerminalRunIsImmutable(t *testing.T) {
	svc := testService(openTestDB(t))

	run, err := svc.Create(&CreateRequest{
		OrgID:      1,
		TargetType: models.NodeTypeUpload,
		TargetID:   4,
	})
	require.NoError(t, err)

	run, err = svc.Complete(run.ID, 10, "done")
	require.NoError(t, err)
	require.Equal(t, models.RunStatusSuccess, run.Status)

	_, err = svc.Fail(run.ID, "late failure", "")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = svc.Start(run.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = svc.Complete(run.ID, 99, "duplicate delivery")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := svc.Get(1, run.ID)
	require.NoError(t, err)
	require.Equal(t, models.RunStatusSuccess, got.Status)
	require.Equal(t, int64(10), *got.RowsLoaded)
	require.Empty(t, got.ErrorMessage)
}

func TestGetIsOrgScoped(t *testing.T) {
	svc := testService(openTestDB(t))

	run, err := svc.Create(&CreateRequest{
		OrgID:      1,
		TargetType: models.NodeTypeUpload,
		TargetID:   1,
	})
	require.NoError(t, err)

	_, err = svc.Get(2, run.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := svc.Get(1, run.ID)
	require.NoError(t, err)
	require.Equal(t, run.ID, got.ID)
}

func TestListFilters(t *testing.T) {
	var (
		db  = openTestDB(t)
		svc = testService(db)
	)

	first, err := svc.Create(&CreateRequest{
		OrgID:      1,
		TargetType: models.NodeTypeUpload,
		TargetID:   1,
	})
	require.NoError(t, err)

	second, err := svc.Create(&CreateRequest{
		OrgID:      1,
		TargetType: models.NodeTypeUpload,
		TargetID:   1,
	})
	require.NoError(t, err)

	_, err = svc.Create(&CreateRequest{
		OrgID:      1,
		TargetType: models.NodeTypePipeline,
		TargetID:   2,
	})
	require.NoError(t, err)

	_, err = svc.Complete(second.ID, 0, "")
	require.NoError(t, err)

	// Force distinct creation timestamps so ordering is deterministic.
	base := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, db.Model(&models.Run{}).
		Where("id = ?", first.ID).
		Update("created_at", base).Error)
	require.NoError(t, db.Model(&models.Run{}).
		Where("id = ?", second.ID).
		Update("created_at", base.Add(time.Minute)).Error)

	runs, err := svc.List(&ListRequest{
		OrgID:      1,
		TargetType: models.NodeTypeUpload,
		TargetID:   1,
	})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, second.ID, runs[0].ID)
	require.Equal(t, first.ID, runs[1].ID)

	runs, err = svc.List(&ListRequest{
		OrgID:  1,
		Status: models.RunStatusSuccess,
	})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, second.ID, runs[0].ID)

	runs, err = svc.List(&ListRequest{OrgID: 9})
	require.NoError(t, err)
	require.Empty(t, runs)
}

func TestFreshSuccessExists(t *testing.T) {
	var (
		db   = openTestDB(t)
		svc  = testService(db)
		now  = time.Now().UTC().Truncate(time.Second)
		node = models.NodeRef{Type: models.NodeTypeUpload, ID: 7}
	)

	finished := now.Add(-30 * time.Minute)

	require.NoError(t, db.Create(&models.Run{
		OrgID:      1,
		TargetType: node.Type,
		TargetID:   node.ID,
		Status:     models.RunStatusSuccess,
		FinishedAt: &finished,
	}).Error)

	// Cutoff before the run: fresh.
	fresh, err := svc.FreshSuccessExists(1, node, finished.Add(-time.Minute))
	require.NoError(t, err)
	require.True(t, fresh)

	// Cutoff exactly at finished_at: inclusive, still fresh.
	fresh, err = svc.FreshSuccessExists(1, node, finished)
	require.NoError(t, err)
	require.True(t, fresh)

	// Cutoff after the run: stale.
	fresh, err = svc.FreshSuccessExists(1, node, finished.Add(time.Minute))
	require.NoError(t, err)
	require.False(t, fresh)

	// Wrong org sees nothing.
	fresh, err = svc.FreshSuccessExists(2, node, finished.Add(-time.Minute))
	require.NoError(t, err)
	require.False(t, fresh)
}

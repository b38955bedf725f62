package gate

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

func testGate(db *gorm.DB) Gate {
	return &gateService{ctx: context.Background(), db: db}
}

func intp(v int) *int {
	return &v
}

func unitp(u models.TimeframeUnit) *models.TimeframeUnit {
	return &u
}

func timep(ts time.Time) *time.Time {
	return &ts
}

func addEdge(t *testing.T, db *gorm.DB, orgID int64, upstream, downstream models.NodeRef, value *int, unit *models.TimeframeUnit) {
	t.Helper()

	require.NoError(t, db.Create(&models.Dependency{
		OrgID:               orgID,
		UpstreamType:        upstream.Type,
		UpstreamID:          upstream.ID,
		DownstreamType:      downstream.Type,
		DownstreamID:        downstream.ID,
		CheckTimeframeValue: value,
		CheckTimeframeUnit:  unit,
	}).Error)
}

func addRun(t *testing.T, db *gorm.DB, orgID int64, node models.NodeRef, status models.RunStatus, finishedAt time.Time) {
	t.Helper()

	require.NoError(t, db.Create(&models.Run{
		OrgID:      orgID,
		TargetType: node.Type,
		TargetID:   node.ID,
		Status:     status,
		FinishedAt: timep(finishedAt),
	}).Error)
}

func TestCheckNoEdges(t *testing.T) {
	db := openTestDB(t)

	result, err := testGate(db).Check(&CheckRequest{
		OrgID:  1,
		Target: models.NodeRef{Type: models.NodeTypePipeline, ID: 1},
	})
	require.NoError(t, err)
	require.True(t, result.Satisfied)
	require.Empty(t, result.Unsatisfied)
}

func TestCheckMetadataOnlyEdgeNeverBlocks(t *testing.T) {
	var (
		db       = openTestDB(t)
		upstream = models.NodeRef{Type: models.NodeTypeUpload, ID: 1}
		target   = models.NodeRef{Type: models.NodeTypeTransformation, ID: 2}
	)

	// No timeframe, and the upstream has never run at all.
	addEdge(t, db, 1, upstream, target, nil, nil)

	result, err := testGate(db).Check(&CheckRequest{OrgID: 1, Target: target})
	require.NoError(t, err)
	require.True(t, result.Satisfied)
}

func TestCheckFreshRunSatisfies(t *testing.T) {
	var (
		db       = openTestDB(t)
		now      = time.Now().UTC()
		upstream = models.NodeRef{Type: models.NodeTypeUpload, ID: 1}
		target   = models.NodeRef{Type: models.NodeTypeTransformation, ID: 2}
	)

	// 30 minute window, success 10 minutes ago.
	addEdge(t, db, 1, upstream, target, intp(30), unitp(models.TimeframeUnitMinutes))
	addRun(t, db, 1, upstream, models.RunStatusSuccess, now.Add(-10*time.Minute))

	result, err := testGate(db).Check(&CheckRequest{OrgID: 1, Target: target, Now: now})
	require.NoError(t, err)
	require.True(t, result.Satisfied)
}

func TestCheckStaleRunBlocks(t *testing.T) {
	var (
		db       = openTestDB(t)
		now      = time.Now().UTC()
		upstream = models.NodeRef{Type: models.NodeTypeUpload, ID: 1}
		target   = models.NodeRef{Type: models.NodeTypeTransformation, ID: 2}
	)

	// 30 minute window, latest success 60 minutes ago.
	addEdge(t, db, 1, upstream, target, intp(30), unitp(models.TimeframeUnitMinutes))
	addRun(t, db, 1, upstream, models.RunStatusSuccess, now.Add(-60*time.Minute))

	result, err := testGate(db).Check(&CheckRequest{OrgID: 1, Target: target, Now: now})
	require.NoError(t, err)
	require.False(t, result.Satisfied)
	require.Equal(t, []string{"upload:1"}, result.UnsatisfiedStrings())
}

func TestCheckBoundaryIsInclusive(t *testing.T) {
	var (
		db       = openTestDB(t)
		now      = time.Now().UTC().Truncate(time.Second)
		upstream = models.NodeRef{Type: models.NodeTypeUpload, ID: 1}
		target   = models.NodeRef{Type: models.NodeTypeTransformation, ID: 2}
	)

	// Finished exactly at the cutoff.
	addEdge(t, db, 1, upstream, target, intp(30), unitp(models.TimeframeUnitMinutes))
	addRun(t, db, 1, upstream, models.RunStatusSuccess, now.Add(-30*time.Minute))

	result, err := testGate(db).Check(&CheckRequest{OrgID: 1, Target: target, Now: now})
	require.NoError(t, err)
	require.True(t, result.Satisfied)
}

func TestCheckHoursUnit(t *testing.T) {
	var (
		db       = openTestDB(t)
		now      = time.Now().UTC()
		upstream = models.NodeRef{Type: models.NodeTypeUpload, ID: 1}
		target   = models.NodeRef{Type: models.NodeTypePipeline, ID: 2}
	)

	// 2 hour window, success 1 hour ago.
	addEdge(t, db, 1, upstream, target, intp(2), unitp(models.TimeframeUnitHours))
	addRun(t, db, 1, upstream, models.RunStatusSuccess, now.Add(-time.Hour))

	result, err := testGate(db).Check(&CheckRequest{OrgID: 1, Target: target, Now: now})
	require.NoError(t, err)
	require.True(t, result.Satisfied)
}

func TestCheckDefaultUnitIsMinutes(t *testing.T) {
	var (
		db       = openTestDB(t)
		now      = time.Now().UTC()
		upstream = models.NodeRef{Type: models.NodeTypeUpload, ID: 1}
		target   = models.NodeRef{Type: models.NodeTypeTransformation, ID: 2}
	)

	// Value 30 with no unit means 30 minutes, not 30 hours.
	addEdge(t, db, 1, upstream, target, intp(30), nil)
	addRun(t, db, 1, upstream, models.RunStatusSuccess, now.Add(-45*time.Minute))

	result, err := testGate(db).Check(&CheckRequest{OrgID: 1, Target: target, Now: now})
	require.NoError(t, err)
	require.False(t, result.Satisfied)
}

func TestCheckFailedRunIsNotEvidence(t *testing.T) {
	var (
		db       = openTestDB(t)
		now      = time.Now().UTC()
		upstream = models.NodeRef{Type: models.NodeTypeUpload, ID: 1}
		target   = models.NodeRef{Type: models.NodeTypeTransformation, ID: 2}
	)

	// A recent failure does not satisfy the gate even though an older
	// success exists outside the window.
	addEdge(t, db, 1, upstream, target, intp(30), unitp(models.TimeframeUnitMinutes))
	addRun(t, db, 1, upstream, models.RunStatusFailed, now.Add(-5*time.Minute))
	addRun(t, db, 1, upstream, models.RunStatusSuccess, now.Add(-2*time.Hour))

	result, err := testGate(db).Check(&CheckRequest{OrgID: 1, Target: target, Now: now})
	require.NoError(t, err)
	require.False(t, result.Satisfied)
}

func TestCheckMultipleEdgesAreANDed(t *testing.T) {
	var (
		db     = openTestDB(t)
		now    = time.Now().UTC()
		fresh  = models.NodeRef{Type: models.NodeTypeUpload, ID: 1}
		stale  = models.NodeRef{Type: models.NodeTypeUpload, ID: 2}
		never  = models.NodeRef{Type: models.NodeTypeTransformation, ID: 3}
		target = models.NodeRef{Type: models.NodeTypePipeline, ID: 9}
	)

	addEdge(t, db, 1, fresh, target, intp(30), unitp(models.TimeframeUnitMinutes))
	addEdge(t, db, 1, stale, target, intp(30), unitp(models.TimeframeUnitMinutes))
	addEdge(t, db, 1, never, target, intp(1), unitp(models.TimeframeUnitHours))

	// Force distinct creation timestamps so retrieval order is
	// deterministic: newest edge first.
	base := now.Add(-time.Hour)
	for i, upstream := range []models.NodeRef{fresh, stale, never} {
		require.NoError(t, db.Model(&models.Dependency{}).
			Where("upstream_type = ? AND upstream_id = ?", upstream.Type, upstream.ID).
			Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	addRun(t, db, 1, fresh, models.RunStatusSuccess, now.Add(-10*time.Minute))
	addRun(t, db, 1, stale, models.RunStatusSuccess, now.Add(-90*time.Minute))

	result, err := testGate(db).Check(&CheckRequest{OrgID: 1, Target: target, Now: now})
	require.NoError(t, err)
	require.False(t, result.Satisfied)
	require.Equal(
		t,
		[]string{"transformation:3", "upload:2"},
		result.UnsatisfiedStrings(),
	)
}

func TestCheckIgnoresOtherOrgRuns(t *testing.T) {
	var (
		db       = openTestDB(t)
		now      = time.Now().UTC()
		upstream = models.NodeRef{Type: models.NodeTypeUpload, ID: 1}
		target   = models.NodeRef{Type: models.NodeTypeTransformation, ID: 2}
	)

	addEdge(t, db, 1, upstream, target, intp(30), unitp(models.TimeframeUnitMinutes))

	// Fresh success, wrong org.
	addRun(t, db, 2, upstream, models.RunStatusSuccess, now.Add(-5*time.Minute))

	result, err := testGate(db).Check(&CheckRequest{OrgID: 1, Target: target, Now: now})
	require.NoError(t, err)
	require.False(t, result.Satisfied)
}

func TestCheckIgnoresRemovedEdges(t *testing.T) {
	var (
		db       = openTestDB(t)
		now      = time.Now().UTC()
		upstream = models.NodeRef{Type: models.NodeTypeUpload, ID: 1}
		target   = models.NodeRef{Type: models.NodeTypeTransformation, ID: 2}
	)

	addEdge(t, db, 1, upstream, target, intp(30), unitp(models.TimeframeUnitMinutes))
	require.NoError(t, db.Model(&models.Dependency{}).
		Where("org_id = ?", 1).
		Update("deleted_at", now).Error)

	result, err := testGate(db).Check(&CheckRequest{OrgID: 1, Target: target, Now: now})
	require.NoError(t, err)
	require.True(t, result.Satisfied)
}

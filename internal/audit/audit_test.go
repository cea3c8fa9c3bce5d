package audit_test

import (
	"context"
	"testing"

	"reward-admin/internal/audit"
	"reward-admin/internal/models"
	"reward-admin/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecordPersistsEntry(t *testing.T) {
	db := testutil.NewDB(t)
	l := audit.NewLogger(db, zap.NewNop())

	l.Record(context.Background(), audit.Entry{
		ActorID:     7,
		Action:      audit.ActionCreate,
		Resource:    audit.ResourceUnits,
		ResourceID:  3,
		Description: "Tạo đơn vị: D1",
	})

	var rows []models.AuditLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 7, rows[0].ActorID)
	assert.Equal(t, audit.ActionCreate, rows[0].Action)
	assert.Equal(t, audit.ResourceUnits, rows[0].Resource)
	assert.EqualValues(t, 3, rows[0].ResourceID)
	assert.False(t, rows[0].CreatedAt.IsZero())
}

func TestRecordSwallowsFailures(t *testing.T) {
	db := testutil.NewDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	l := audit.NewLogger(db, zap.NewNop())
	assert.NotPanics(t, func() {
		l.Record(context.Background(), audit.Entry{Action: audit.ActionDelete, Resource: audit.ResourceUnits})
	})
	assert.Error(t, l.RecordErr(context.Background(), audit.Entry{Action: audit.ActionDelete, Resource: audit.ResourceUnits}))
}

func TestRecordErrRejectsIncompleteEntry(t *testing.T) {
	l := audit.NewLogger(testutil.NewDB(t), zap.NewNop())
	assert.Error(t, l.RecordErr(context.Background(), audit.Entry{Action: audit.ActionCreate}))

	var nilLogger *audit.Logger
	assert.Error(t, nilLogger.RecordErr(context.Background(), audit.Entry{Action: "X", Resource: "Y"}))
}

func TestListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	l := audit.NewLogger(db, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		l.Record(ctx, audit.Entry{ActorID: 1, Action: audit.ActionCreate, Resource: audit.ResourceUnits, ResourceID: uint(i + 1)})
	}
	l.Record(ctx, audit.Entry{ActorID: 2, Action: audit.ActionReject, Resource: audit.ResourceProposals, ResourceID: 9})

	logs, total, err := l.List(ctx, audit.Filter{Resource: audit.ResourceUnits, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, logs, 2)

	logs, total, err = l.List(ctx, audit.Filter{ActorID: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, audit.ActionReject, logs[0].Action)
}

func TestDescribers(t *testing.T) {
	reason := "Thiếu minh chứng"
	p := models.Proposal{ID: 12, UnitID: 3, AwardCount: 2, AchievementCount: 1, RejectionReason: &reason}

	assert.Equal(t, "Tạo đơn vị: Tiểu đoàn 1", audit.DescribeUnit(audit.ActionCreate, models.Unit{Name: "Tiểu đoàn 1"}))
	assert.Equal(t, "Cập nhật chức vụ: Đại đội trưởng", audit.DescribePosition(audit.ActionUpdate, models.Position{Name: "Đại đội trưởng"}))
	assert.Equal(t, "Phê duyệt đề xuất #12 của đơn vị 3 (2 khen thưởng, 1 thành tích)", audit.DescribeProposal(audit.ActionApprove, p))
	assert.Equal(t, "Từ chối đề xuất #12 của đơn vị 3 (2 khen thưởng, 1 thành tích): Thiếu minh chứng", audit.DescribeProposal(audit.ActionReject, p))
	assert.Equal(t, "FOO nhóm cống hiến: N", audit.DescribeContributionGroup("FOO", models.ContributionGroup{Name: "N"}))
}

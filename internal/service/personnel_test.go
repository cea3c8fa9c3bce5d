package service

import (
	"context"
	"testing"
	"time"

	"reward-admin/internal/audit"
	"reward-admin/internal/models"
	"reward-admin/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newPersonnelEnv(t *testing.T) (*PersonnelService, *gorm.DB, *testutil.Fixtures) {
	t.Helper()
	db := testutil.NewDB(t)
	fx := testutil.SetupFixtures(t, db)
	svc := NewPersonnelService(db, audit.NewLogger(db, zap.NewNop()))
	svc.now = fixedClock
	return svc, db, fx
}

func validPersonnel(fx *testutil.Fixtures) PersonnelInput {
	return PersonnelInput{
		NationalID:     "079201000123",
		FullName:       "Lê Thị Hoa",
		BirthDate:      date(2001, time.July, 7),
		EnlistmentDate: date(2020, time.February, 15),
		UnitID:         fx.Unit.ID,
		PositionID:     fx.Position.ID,
	}
}

func TestCreatePersonnelValidation(t *testing.T) {
	svc, db, fx := newPersonnelEnv(t)
	ctx := context.Background()

	tests := map[string]func(in *PersonnelInput){
		"short national id":      func(in *PersonnelInput) { in.NationalID = "07920100012" },
		"letters in national id": func(in *PersonnelInput) { in.NationalID = "07920100012A" },
		"blank name":             func(in *PersonnelInput) { in.FullName = "   " },
		"missing birth date":     func(in *PersonnelInput) { in.BirthDate = time.Time{} },
		"enlisted before birth":  func(in *PersonnelInput) { in.EnlistmentDate = date(2000, time.January, 1) },
		"enlistment in future":   func(in *PersonnelInput) { in.EnlistmentDate = date(2026, time.January, 1) },
		"unknown unit":           func(in *PersonnelInput) { in.UnitID = 999 },
		"unknown position":       func(in *PersonnelInput) { in.PositionID = 999 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			in := validPersonnel(fx)
			mutate(&in)
			_, err := svc.Create(ctx, fx.Admin, in)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}

	in := validPersonnel(fx)
	in.NationalID = fx.Personnel[0].NationalID
	_, err := svc.Create(ctx, fx.Admin, in)
	assert.True(t, IsConflict(err), "duplicate national id: %v", err)

	// a soft-deleted record still owns its national id
	require.NoError(t, db.Delete(&models.Personnel{}, fx.Personnel[1].ID).Error)
	in.NationalID = fx.Personnel[1].NationalID
	_, err = svc.Create(ctx, fx.Admin, in)
	assert.True(t, IsConflict(err), "national id of deleted record: %v", err)
}

func TestPersonnelCRUD(t *testing.T) {
	svc, db, fx := newPersonnelEnv(t)
	ctx := context.Background()
	start := testutil.CountAudit(t, db)

	p, err := svc.Create(ctx, fx.Admin, validPersonnel(fx))
	require.NoError(t, err)
	assert.Equal(t, start+1, testutil.CountAudit(t, db))

	in := validPersonnel(fx)
	in.FullName = "Lê Thị Hoa Mai"
	in.UnitID = fx.OtherUnit.ID
	p, err = svc.Update(ctx, fx.Admin, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Lê Thị Hoa Mai", p.FullName)
	assert.Equal(t, fx.OtherUnit.ID, p.UnitID)

	got, err := svc.Get(ctx, fx.Admin, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Unit)
	assert.Equal(t, fx.OtherUnit.Name, got.Unit.Name)

	require.NoError(t, svc.Delete(ctx, fx.Admin, p.ID))
	_, err = svc.Get(ctx, fx.Admin, p.ID)
	assert.True(t, IsNotFound(err), "got %v", err)
	assert.True(t, IsNotFound(svc.Delete(ctx, fx.Admin, p.ID)))

	assert.Equal(t, start+3, testutil.CountAudit(t, db))
}

func TestPersonnelVisibility(t *testing.T) {
	svc, db, fx := newPersonnelEnv(t)
	ctx := context.Background()

	outsider := models.Personnel{
		NationalID: "001099999999", FullName: "Phạm Văn Ngoài",
		BirthDate: date(1995, time.May, 5), EnlistmentDate: date(2014, time.March, 1),
		UnitID: fx.OtherUnit.ID, PositionID: fx.Position.ID,
	}
	require.NoError(t, db.Create(&outsider).Error)

	list, total, err := svc.List(ctx, fx.Manager, PersonnelFilter{UnitID: fx.OtherUnit.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total, "managers cannot widen their scope with a filter")
	assert.Len(t, list, 3)

	_, total, err = svc.List(ctx, fx.Admin, PersonnelFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)

	list, total, err = svc.List(ctx, fx.Admin, PersonnelFilter{Search: "ngoài"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, outsider.ID, list[0].ID)

	list, total, err = svc.List(ctx, fx.Admin, PersonnelFilter{Page: Page{Page: 2, Limit: 3}})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, list, 1)

	_, err = svc.Get(ctx, fx.Manager, outsider.ID)
	assert.True(t, IsAuthorization(err), "got %v", err)

	all, err := svc.All(ctx, fx.Admin, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestGetIncludesHistoryNewestFirst(t *testing.T) {
	svc, db, fx := newPersonnelEnv(t)
	id := fx.Personnel[0].ID
	for _, a := range []models.Achievement{
		{PersonnelID: id, Type: "CSTT", Year: 2021, Kind: models.KindAchievement},
		{PersonnelID: id, Type: "GIAY_KHEN", Year: 2023, Kind: models.KindAward},
	} {
		require.NoError(t, db.Create(&a).Error)
	}

	p, err := svc.Get(context.Background(), fx.Manager, id)
	require.NoError(t, err)
	require.Len(t, p.Achievements, 2)
	assert.Equal(t, 2023, p.Achievements[0].Year)
	require.NotNil(t, p.Position)
	require.NotNil(t, p.Position.ContributionGroup)
}

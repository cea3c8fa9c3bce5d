package testutil

import (
	"fmt"
	"testing"
	"time"

	"reward-admin/internal/database"
	"reward-admin/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps the in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Fixtures is a small, consistent data set most service tests start from.
type Fixtures struct {
	Group     models.ContributionGroup
	Position  models.Position
	Unit      models.Unit
	OtherUnit models.Unit
	Manager   models.Account
	Admin     models.Account
	Personnel []models.Personnel
}

func SetupFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	t.Helper()

	f := &Fixtures{}
	f.Group = models.ContributionGroup{Name: "Nhóm 1", Weight: 20}
	mustCreate(t, db, &f.Group)

	f.Position = models.Position{Name: "Trung đội trưởng", ContributionGroupID: &f.Group.ID}
	mustCreate(t, db, &f.Position)

	f.Unit = models.Unit{Name: "Tiểu đoàn 1", Code: "D1"}
	mustCreate(t, db, &f.Unit)
	f.OtherUnit = models.Unit{Name: "Tiểu đoàn 2", Code: "D2"}
	mustCreate(t, db, &f.OtherUnit)

	f.Manager = models.Account{Username: "manager", PasswordHash: "x", Role: models.RoleManager, UnitID: &f.Unit.ID, Email: "manager@example.test"}
	mustCreate(t, db, &f.Manager)
	f.Admin = models.Account{Username: "admin", PasswordHash: "x", Role: models.RoleAdmin}
	mustCreate(t, db, &f.Admin)

	for i := 0; i < 3; i++ {
		p := models.Personnel{
			NationalID:     fmt.Sprintf("0010900000%02d", i),
			FullName:       fmt.Sprintf("Nguyễn Văn %c", 'A'+i),
			BirthDate:      time.Date(1990, time.March, 1, 0, 0, 0, 0, time.UTC),
			EnlistmentDate: time.Date(2008+i, time.September, 1, 0, 0, 0, 0, time.UTC),
			UnitID:         f.Unit.ID,
			PositionID:     f.Position.ID,
		}
		mustCreate(t, db, &p)
		f.Personnel = append(f.Personnel, p)
	}
	return f
}

func mustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

func CountAudit(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.AuditLog{}).Count(&n).Error; err != nil {
		t.Fatalf("count audit logs: %v", err)
	}
	return n
}

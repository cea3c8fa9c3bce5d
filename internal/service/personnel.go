package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"reward-admin/internal/audit"
	"reward-admin/internal/models"

	"gorm.io/gorm"
)

var nationalIDPattern = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, models.NationalIDLength))

type PersonnelInput struct {
	NationalID     string
	FullName       string
	BirthDate      time.Time
	EnlistmentDate time.Time
	UnitID         uint
	PositionID     uint
}

type PersonnelFilter struct {
	UnitID uint
	Search string
	Page
}

type PersonnelService struct {
	db    *gorm.DB
	audit *audit.Logger
	now   Clock
}

func NewPersonnelService(db *gorm.DB, auditLog *audit.Logger) *PersonnelService {
	return &PersonnelService{db: db, audit: auditLog, now: defaultClock}
}

func (s *PersonnelService) validate(ctx context.Context, in *PersonnelInput, exceptID uint) error {
	in.NationalID = strings.TrimSpace(in.NationalID)
	in.FullName = strings.TrimSpace(in.FullName)

	if !nationalIDPattern.MatchString(in.NationalID) {
		return validationf("national_id", "must be exactly %d digits", models.NationalIDLength)
	}
	if in.FullName == "" {
		return validationf("full_name", "is required")
	}
	if in.BirthDate.IsZero() {
		return validationf("birth_date", "is required")
	}
	if in.EnlistmentDate.IsZero() {
		return validationf("enlistment_date", "is required")
	}
	if in.EnlistmentDate.Before(in.BirthDate) {
		return validationf("enlistment_date", "must not precede birth date")
	}
	if in.EnlistmentDate.After(s.now()) {
		return validationf("enlistment_date", "must not be in the future")
	}

	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&models.Unit{}).Where("id = ?", in.UnitID).Count(&n).Error; err != nil {
		return fmt.Errorf("check unit: %w", err)
	}
	if n == 0 {
		return validationf("unit_id", "unit %d does not exist", in.UnitID)
	}
	if err := db.Model(&models.Position{}).Where("id = ?", in.PositionID).Count(&n).Error; err != nil {
		return fmt.Errorf("check position: %w", err)
	}
	if n == 0 {
		return validationf("position_id", "position %d does not exist", in.PositionID)
	}

	// soft-deleted rows still hold the unique index
	q := db.Unscoped().Model(&models.Personnel{}).Where("national_id = ?", in.NationalID)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("check national id: %w", err)
	}
	if n > 0 {
		return conflictf("national id %s is already registered", in.NationalID)
	}
	return nil
}

func (s *PersonnelService) Create(ctx context.Context, actor models.Account, in PersonnelInput) (*models.Personnel, error) {
	if err := s.validate(ctx, &in, 0); err != nil {
		return nil, err
	}

	p := models.Personnel{
		NationalID:     in.NationalID,
		FullName:       in.FullName,
		BirthDate:      in.BirthDate,
		EnlistmentDate: in.EnlistmentDate,
		UnitID:         in.UnitID,
		PositionID:     in.PositionID,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create personnel: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{ActorID: actor.ID, Action: audit.ActionCreate, Resource: audit.ResourcePersonnel, ResourceID: p.ID, Description: audit.DescribePersonnel(audit.ActionCreate, p)})
	return &p, nil
}

func (s *PersonnelService) Update(ctx context.Context, actor models.Account, id uint, in PersonnelInput) (*models.Personnel, error) {
	var p models.Personnel
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, notFound("personnel", id)
		}
		return nil, fmt.Errorf("load personnel: %w", err)
	}
	if err := s.validate(ctx, &in, id); err != nil {
		return nil, err
	}

	p.NationalID = in.NationalID
	p.FullName = in.FullName
	p.BirthDate = in.BirthDate
	p.EnlistmentDate = in.EnlistmentDate
	p.UnitID = in.UnitID
	p.PositionID = in.PositionID
	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, fmt.Errorf("update personnel: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{ActorID: actor.ID, Action: audit.ActionUpdate, Resource: audit.ResourcePersonnel, ResourceID: p.ID, Description: audit.DescribePersonnel(audit.ActionUpdate, p)})
	return &p, nil
}

// Delete is a soft delete; history rows stay for approved proposals.
func (s *PersonnelService) Delete(ctx context.Context, actor models.Account, id uint) error {
	var p models.Personnel
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if isRecordNotFound(err) {
			return notFound("personnel", id)
		}
		return fmt.Errorf("load personnel: %w", err)
	}
	if err := s.db.WithContext(ctx).Delete(&p).Error; err != nil {
		return fmt.Errorf("delete personnel: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{ActorID: actor.ID, Action: audit.ActionDelete, Resource: audit.ResourcePersonnel, ResourceID: p.ID, Description: audit.DescribePersonnel(audit.ActionDelete, p)})
	return nil
}

func (s *PersonnelService) scope(q *gorm.DB, viewer models.Account, unitID uint) (*gorm.DB, error) {
	if viewer.Role.AtLeast(models.RoleAdmin) {
		if unitID != 0 {
			q = q.Where("unit_id = ?", unitID)
		}
		return q, nil
	}
	if viewer.UnitID == nil {
		return nil, &AuthorizationError{Message: "account is not affiliated with a unit"}
	}
	return q.Where("unit_id = ?", *viewer.UnitID), nil
}

func (s *PersonnelService) List(ctx context.Context, viewer models.Account, f PersonnelFilter) ([]models.Personnel, int64, error) {
	q, err := s.scope(s.db.WithContext(ctx).Model(&models.Personnel{}), viewer, f.UnitID)
	if err != nil {
		return nil, 0, err
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR national_id LIKE ?", like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count personnel: %w", err)
	}

	var out []models.Personnel
	err = q.Preload("Unit").
		Preload("Position").
		Order("full_name asc, id asc").
		Limit(f.limit()).
		Offset(f.offset()).
		Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list personnel: %w", err)
	}
	return out, total, nil
}

// All returns every visible record without paging, for exports.
func (s *PersonnelService) All(ctx context.Context, viewer models.Account, unitID uint) ([]models.Personnel, error) {
	q, err := s.scope(s.db.WithContext(ctx).Model(&models.Personnel{}), viewer, unitID)
	if err != nil {
		return nil, err
	}
	var out []models.Personnel
	if err := q.Preload("Unit").Preload("Position").Order("unit_id asc, full_name asc, id asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list personnel: %w", err)
	}
	return out, nil
}

func (s *PersonnelService) Get(ctx context.Context, viewer models.Account, id uint) (*models.Personnel, error) {
	var p models.Personnel
	err := s.db.WithContext(ctx).
		Preload("Unit").
		Preload("Position.ContributionGroup").
		Preload("Achievements", func(db *gorm.DB) *gorm.DB { return db.Order("year desc, id desc") }).
		First(&p, id).Error
	if isRecordNotFound(err) {
		return nil, notFound("personnel", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load personnel: %w", err)
	}
	if !viewer.Role.AtLeast(models.RoleAdmin) && (viewer.UnitID == nil || *viewer.UnitID != p.UnitID) {
		return nil, &AuthorizationError{Message: "personnel belongs to another unit"}
	}
	return &p, nil
}

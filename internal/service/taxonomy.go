package service

import (
	"context"
	"fmt"
	"strings"

	"reward-admin/internal/audit"
	"reward-admin/internal/models"

	"gorm.io/gorm"
)

const minNameLength = 2

type UnitInput struct {
	Name        string
	Code        string
	Description string
}

type PositionInput struct {
	Name                string
	ContributionGroupID *uint
}

type ContributionGroupInput struct {
	Name        string
	Description string
	Weight      int
}

// TaxonomyService manages units, positions and contribution groups.
type TaxonomyService struct {
	db    *gorm.DB
	audit *audit.Logger
}

func NewTaxonomyService(db *gorm.DB, auditLog *audit.Logger) *TaxonomyService {
	return &TaxonomyService{db: db, audit: auditLog}
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < minNameLength {
		return "", validationf("name", "must be at least %d characters", minNameLength)
	}
	return name, nil
}

// ensureUniqueName is case-insensitive; exceptID skips the row being updated.
func (s *TaxonomyService) ensureUniqueName(ctx context.Context, model interface{}, what, name string, exceptID uint) error {
	var count int64
	q := s.db.WithContext(ctx).Model(model).Where("LOWER(name) = LOWER(?)", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check %s name: %w", what, err)
	}
	if count > 0 {
		return conflictf("%s %q already exists", what, name)
	}
	return nil
}

func (s *TaxonomyService) countRefs(ctx context.Context, model interface{}, column string, id uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Unscoped().Model(model).Where(column+" = ?", id).Count(&n).Error
	return n, err
}

//
// Units
//

func (s *TaxonomyService) ListUnits(ctx context.Context) ([]models.Unit, error) {
	var out []models.Unit
	if err := s.db.WithContext(ctx).Order("name asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return out, nil
}

func (s *TaxonomyService) CreateUnit(ctx context.Context, actor models.Account, in UnitInput) (*models.Unit, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, &models.Unit{}, "unit", name, 0); err != nil {
		return nil, err
	}

	u := models.Unit{Name: name, Code: strings.TrimSpace(in.Code), Description: strings.TrimSpace(in.Description)}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, fmt.Errorf("create unit: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{ActorID: actor.ID, Action: audit.ActionCreate, Resource: audit.ResourceUnits, ResourceID: u.ID, Description: audit.DescribeUnit(audit.ActionCreate, u)})
	return &u, nil
}

func (s *TaxonomyService) UpdateUnit(ctx context.Context, actor models.Account, id uint, in UnitInput) (*models.Unit, error) {
	var u models.Unit
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, notFound("unit", id)
		}
		return nil, fmt.Errorf("load unit: %w", err)
	}
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, &models.Unit{}, "unit", name, id); err != nil {
		return nil, err
	}

	u.Name = name
	u.Code = strings.TrimSpace(in.Code)
	u.Description = strings.TrimSpace(in.Description)
	if err := s.db.WithContext(ctx).Save(&u).Error; err != nil {
		return nil, fmt.Errorf("update unit: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{ActorID: actor.ID, Action: audit.ActionUpdate, Resource: audit.ResourceUnits, ResourceID: u.ID, Description: audit.DescribeUnit(audit.ActionUpdate, u)})
	return &u, nil
}

// DeleteUnit refuses units still referenced by personnel, accounts or proposals.
func (s *TaxonomyService) DeleteUnit(ctx context.Context, actor models.Account, id uint) error {
	var u models.Unit
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if isRecordNotFound(err) {
			return notFound("unit", id)
		}
		return fmt.Errorf("load unit: %w", err)
	}

	refs := []struct {
		model interface{}
		what  string
	}{
		{&models.Personnel{}, "personnel"},
		{&models.Account{}, "accounts"},
		{&models.Proposal{}, "proposals"},
	}
	for _, r := range refs {
		n, err := s.countRefs(ctx, r.model, "unit_id", id)
		if err != nil {
			return fmt.Errorf("check unit references: %w", err)
		}
		if n > 0 {
			return conflictf("unit %q is still referenced by %d %s", u.Name, n, r.what)
		}
	}

	if err := s.db.WithContext(ctx).Delete(&u).Error; err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{ActorID: actor.ID, Action: audit.ActionDelete, Resource: audit.ResourceUnits, ResourceID: u.ID, Description: audit.DescribeUnit(audit.ActionDelete, u)})
	return nil
}

//
// Contribution groups
//

func validateWeight(w int) error {
	if w < 0 || w > 100 {
		return validationf("weight", "must be between 0 and 100")
	}
	return nil
}

func (s *TaxonomyService) ListContributionGroups(ctx context.Context) ([]models.ContributionGroup, error) {
	var out []models.ContributionGroup
	if err := s.db.WithContext(ctx).Order("name asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list contribution groups: %w", err)
	}
	return out, nil
}

func (s *TaxonomyService) CreateContributionGroup(ctx context.Context, actor models.Account, in ContributionGroupInput) (*models.ContributionGroup, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := validateWeight(in.Weight); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, &models.ContributionGroup{}, "contribution group", name, 0); err != nil {
		return nil, err
	}

	g := models.ContributionGroup{Name: name, Description: strings.TrimSpace(in.Description), Weight: in.Weight}
	if err := s.db.WithContext(ctx).Create(&g).Error; err != nil {
		return nil, fmt.Errorf("create contribution group: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{ActorID: actor.ID, Action: audit.ActionCreate, Resource: audit.ResourceContributionGroups, ResourceID: g.ID, Description: audit.DescribeContributionGroup(audit.ActionCreate, g)})
	return &g, nil
}

func (s *TaxonomyService) UpdateContributionGroup(ctx context.Context, actor models.Account, id uint, in ContributionGroupInput) (*models.ContributionGroup, error) {
	var g models.ContributionGroup
	if err := s.db.WithContext(ctx).First(&g, id).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, notFound("contribution group", id)
		}
		return nil, fmt.Errorf("load contribution group: %w", err)
	}
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := validateWeight(in.Weight); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, &models.ContributionGroup{}, "contribution group", name, id); err != nil {
		return nil, err
	}

	g.Name = name
	g.Description = strings.TrimSpace(in.Description)
	g.Weight = in.Weight
	if err := s.db.WithContext(ctx).Save(&g).Error; err != nil {
		return nil, fmt.Errorf("update contribution group: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{ActorID: actor.ID, Action: audit.ActionUpdate, Resource: audit.ResourceContributionGroups, ResourceID: g.ID, Description: audit.DescribeContributionGroup(audit.ActionUpdate, g)})
	return &g, nil
}

func (s *TaxonomyService) DeleteContributionGroup(ctx context.Context, actor models.Account, id uint) error {
	var g models.ContributionGroup
	if err := s.db.WithContext(ctx).First(&g, id).Error; err != nil {
		if isRecordNotFound(err) {
			return notFound("contribution group", id)
		}
		return fmt.Errorf("load contribution group: %w", err)
	}
	n, err := s.countRefs(ctx, &models.Position{}, "contribution_group_id", id)
	if err != nil {
		return fmt.Errorf("check contribution group references: %w", err)
	}
	if n > 0 {
		return conflictf("contribution group %q is still used by %d positions", g.Name, n)
	}

	if err := s.db.WithContext(ctx).Delete(&g).Error; err != nil {
		return fmt.Errorf("delete contribution group: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{ActorID: actor.ID, Action: audit.ActionDelete, Resource: audit.ResourceContributionGroups, ResourceID: g.ID, Description: audit.DescribeContributionGroup(audit.ActionDelete, g)})
	return nil
}

//
// Positions
//

func (s *TaxonomyService) ListPositions(ctx context.Context) ([]models.Position, error) {
	var out []models.Position
	if err := s.db.WithContext(ctx).Preload("ContributionGroup").Order("name asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	return out, nil
}

func (s *TaxonomyService) checkGroup(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.ContributionGroup{}).Where("id = ?", *id).Count(&n).Error; err != nil {
		return fmt.Errorf("check contribution group: %w", err)
	}
	if n == 0 {
		return validationf("contribution_group_id", "contribution group %d does not exist", *id)
	}
	return nil
}

func (s *TaxonomyService) CreatePosition(ctx context.Context, actor models.Account, in PositionInput) (*models.Position, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := s.checkGroup(ctx, in.ContributionGroupID); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, &models.Position{}, "position", name, 0); err != nil {
		return nil, err
	}

	p := models.Position{Name: name, ContributionGroupID: in.ContributionGroupID}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create position: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{ActorID: actor.ID, Action: audit.ActionCreate, Resource: audit.ResourcePositions, ResourceID: p.ID, Description: audit.DescribePosition(audit.ActionCreate, p)})
	return &p, nil
}

func (s *TaxonomyService) UpdatePosition(ctx context.Context, actor models.Account, id uint, in PositionInput) (*models.Position, error) {
	var p models.Position
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, notFound("position", id)
		}
		return nil, fmt.Errorf("load position: %w", err)
	}
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := s.checkGroup(ctx, in.ContributionGroupID); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, &models.Position{}, "position", name, id); err != nil {
		return nil, err
	}

	p.Name = name
	p.ContributionGroupID = in.ContributionGroupID
	p.ContributionGroup = nil
	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, fmt.Errorf("update position: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{ActorID: actor.ID, Action: audit.ActionUpdate, Resource: audit.ResourcePositions, ResourceID: p.ID, Description: audit.DescribePosition(audit.ActionUpdate, p)})
	return &p, nil
}

func (s *TaxonomyService) DeletePosition(ctx context.Context, actor models.Account, id uint) error {
	var p models.Position
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if isRecordNotFound(err) {
			return notFound("position", id)
		}
		return fmt.Errorf("load position: %w", err)
	}
	n, err := s.countRefs(ctx, &models.Personnel{}, "position_id", id)
	if err != nil {
		return fmt.Errorf("check position references: %w", err)
	}
	if n > 0 {
		return conflictf("position %q is still held by %d personnel", p.Name, n)
	}

	if err := s.db.WithContext(ctx).Delete(&p).Error; err != nil {
		return fmt.Errorf("delete position: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{ActorID: actor.ID, Action: audit.ActionDelete, Resource: audit.ResourcePositions, ResourceID: p.ID, Description: audit.DescribePosition(audit.ActionDelete, p)})
	return nil
}

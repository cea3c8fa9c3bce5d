package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"reward-admin/internal/audit"
	"reward-admin/internal/models"
	"reward-admin/internal/notify"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MinRejectionReasonLength is counted in runes so Vietnamese diacritics count once.
const MinRejectionReasonLength = 10

const firstRewardYear = 1945

type ProposalItemInput struct {
	PersonnelID uint
	Type        string
	Year        int
	Note        string
}

type SubmitProposalInput struct {
	Title string
	Items []ProposalItemInput
}

type ProposalFilter struct {
	Status models.ProposalStatus
	UnitID uint
	Page
}

type ProposalService struct {
	db       *gorm.DB
	audit    *audit.Logger
	notifier notify.Notifier
	log      *zap.Logger
	now      Clock
}

func NewProposalService(db *gorm.DB, auditLog *audit.Logger, notifier notify.Notifier, log *zap.Logger) *ProposalService {
	return &ProposalService{
		db:       db,
		audit:    auditLog,
		notifier: notifier,
		log:      log.Named("proposals"),
		now:      defaultClock,
	}
}

// Submit stores a new PENDING proposal for the submitter's unit.
func (s *ProposalService) Submit(ctx context.Context, submitter models.Account, in SubmitProposalInput) (*models.Proposal, error) {
	if submitter.UnitID == nil {
		return nil, validationf("unit_id", "account %s is not affiliated with a unit", submitter.Username)
	}
	if len(in.Items) == 0 {
		return nil, validationf("items", "proposal must contain at least one item")
	}

	p := models.Proposal{
		UnitID:        *submitter.UnitID,
		SubmittedByID: submitter.ID,
		Title:         strings.TrimSpace(in.Title),
		Status:        models.ProposalPending,
	}

	type key struct {
		personnel uint
		typ       string
		year      int
	}
	seen := map[key]bool{}
	currentYear := s.now().Year()

	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		rt, ok := models.LookupRewardType(it.Type)
		if !ok {
			return nil, validationf(field, "unknown reward type %q", it.Type)
		}
		if it.Year < firstRewardYear || it.Year > currentYear {
			return nil, validationf(field, "year %d out of range %d..%d", it.Year, firstRewardYear, currentYear)
		}
		k := key{it.PersonnelID, it.Type, it.Year}
		if seen[k] {
			return nil, validationf(field, "duplicate item for personnel %d", it.PersonnelID)
		}
		seen[k] = true

		var person models.Personnel
		err := s.db.WithContext(ctx).Select("id", "unit_id").Take(&person, it.PersonnelID).Error
		if isRecordNotFound(err) {
			return nil, validationf(field, "personnel %d does not exist", it.PersonnelID)
		}
		if err != nil {
			return nil, fmt.Errorf("load personnel %d: %w", it.PersonnelID, err)
		}
		if person.UnitID != p.UnitID {
			return nil, validationf(field, "personnel %d does not belong to unit %d", it.PersonnelID, p.UnitID)
		}

		switch rt.Kind {
		case models.KindAward:
			p.AwardCount++
		case models.KindAchievement:
			p.AchievementCount++
		}
		p.Items = append(p.Items, models.ProposalItem{
			PersonnelID: it.PersonnelID,
			Kind:        rt.Kind,
			Type:        rt.Code,
			Year:        it.Year,
			Note:        strings.TrimSpace(it.Note),
		})
	}

	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:     submitter.ID,
		Action:      audit.ActionSubmit,
		Resource:    audit.ResourceProposals,
		ResourceID:  p.ID,
		Description: audit.DescribeProposal(audit.ActionSubmit, p),
	})
	return &p, nil
}

// Approve imports every item into personnel history and marks the proposal
// APPROVED, all in one transaction.
func (s *ProposalService) Approve(ctx context.Context, id uint, reviewer models.Account) (*models.Proposal, error) {
	var p models.Proposal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.loadPending(tx, id, &p, true); err != nil {
			return err
		}

		for _, it := range p.Items {
			if err := importItem(tx, p.ID, it); err != nil {
				return err
			}
		}

		now := s.now()
		if err := markDecided(tx, p.ID, map[string]interface{}{
			"status":         models.ProposalApproved,
			"approved_by_id": reviewer.ID,
			"approved_at":    now,
		}); err != nil {
			return err
		}
		p.Status = models.ProposalApproved
		p.ApprovedByID = &reviewer.ID
		p.ApprovedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("proposal approved", zap.Uint("proposal_id", p.ID), zap.Uint("reviewer_id", reviewer.ID), zap.Int("items", len(p.Items)))
	s.audit.Record(ctx, audit.Entry{
		ActorID:     reviewer.ID,
		Action:      audit.ActionApprove,
		Resource:    audit.ResourceProposals,
		ResourceID:  p.ID,
		Description: audit.DescribeProposal(audit.ActionApprove, p),
	})
	s.notifySubmitter(ctx, p,
		fmt.Sprintf("Đề xuất #%d đã được phê duyệt", p.ID),
		fmt.Sprintf("Đề xuất khen thưởng #%d (%d khen thưởng, %d thành tích) đã được phê duyệt.", p.ID, p.AwardCount, p.AchievementCount))
	return &p, nil
}

// Reject stores the reason as given. The state check runs first, so a decided
// proposal reports a conflict whatever the reason; surrounding whitespace does
// not count towards the minimum length.
func (s *ProposalService) Reject(ctx context.Context, id uint, reviewer models.Account, reason string) (*models.Proposal, error) {
	var p models.Proposal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.loadPending(tx, id, &p, false); err != nil {
			return err
		}
		if utf8.RuneCountInString(strings.TrimSpace(reason)) < MinRejectionReasonLength {
			return validationf("rejection_reason", "must be at least %d characters", MinRejectionReasonLength)
		}

		now := s.now()
		if err := markDecided(tx, p.ID, map[string]interface{}{
			"status":           models.ProposalRejected,
			"rejection_reason": reason,
			"approved_by_id":   reviewer.ID,
			"approved_at":      now,
		}); err != nil {
			return err
		}
		p.Status = models.ProposalRejected
		p.RejectionReason = &reason
		p.ApprovedByID = &reviewer.ID
		p.ApprovedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("proposal rejected", zap.Uint("proposal_id", p.ID), zap.Uint("reviewer_id", reviewer.ID))
	s.audit.Record(ctx, audit.Entry{
		ActorID:     reviewer.ID,
		Action:      audit.ActionReject,
		Resource:    audit.ResourceProposals,
		ResourceID:  p.ID,
		Description: audit.DescribeProposal(audit.ActionReject, p),
	})
	s.notifySubmitter(ctx, p,
		fmt.Sprintf("Đề xuất #%d bị từ chối", p.ID),
		fmt.Sprintf("Đề xuất khen thưởng #%d bị từ chối. Lý do: %s", p.ID, reason))
	return &p, nil
}

func (s *ProposalService) loadPending(tx *gorm.DB, id uint, p *models.Proposal, withItems bool) error {
	q := forUpdate(tx)
	if withItems {
		q = q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") })
	}
	err := q.First(p, id).Error
	if isRecordNotFound(err) {
		return notFound("proposal", id)
	}
	if err != nil {
		return fmt.Errorf("load proposal %d: %w", id, err)
	}
	if p.Status != models.ProposalPending {
		return conflictf("proposal %d is already %s", id, p.Status)
	}
	return nil
}

// markDecided only matches a still-PENDING row, so two reviewers racing on
// the same proposal cannot both win.
func markDecided(tx *gorm.DB, id uint, fields map[string]interface{}) error {
	res := tx.Model(&models.Proposal{}).
		Where("id = ? AND status = ?", id, models.ProposalPending).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update proposal %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return conflictf("proposal %d is no longer pending", id)
	}
	return nil
}

func importItem(tx *gorm.DB, proposalID uint, it models.ProposalItem) error {
	var person models.Personnel
	err := tx.Select("id").Take(&person, it.PersonnelID).Error
	if isRecordNotFound(err) {
		return notFound("personnel", it.PersonnelID)
	}
	if err != nil {
		return fmt.Errorf("load personnel %d: %w", it.PersonnelID, err)
	}

	var existing int64
	if err := tx.Model(&models.Achievement{}).
		Where("personnel_id = ? AND type = ? AND year = ?", it.PersonnelID, it.Type, it.Year).
		Count(&existing).Error; err != nil {
		return fmt.Errorf("check history of personnel %d: %w", it.PersonnelID, err)
	}
	if existing > 0 {
		return conflictf("personnel %d already holds %s for %d", it.PersonnelID, it.Type, it.Year)
	}

	row := models.Achievement{
		PersonnelID: it.PersonnelID,
		Kind:        it.Kind,
		Type:        it.Type,
		Year:        it.Year,
		ProposalID:  &proposalID,
		Note:        it.Note,
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("import item %d: %w", it.ID, err)
	}
	return nil
}

func (s *ProposalService) notifySubmitter(ctx context.Context, p models.Proposal, title, body string) {
	if s.notifier == nil {
		return
	}
	var submitter models.Account
	if err := s.db.WithContext(ctx).Take(&submitter, p.SubmittedByID).Error; err != nil {
		s.log.Warn("notification skipped: submitter not found", zap.Uint("proposal_id", p.ID), zap.Error(err))
		return
	}
	msg := notify.Message{AccountID: submitter.ID, Email: submitter.Email, Title: title, Body: body}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.Warn("notification delivery failed", zap.Uint("proposal_id", p.ID), zap.Error(err))
	}
}

// List restricts accounts below ADMIN to their own unit.
func (s *ProposalService) List(ctx context.Context, viewer models.Account, f ProposalFilter) ([]models.Proposal, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Proposal{})
	if !viewer.Role.AtLeast(models.RoleAdmin) {
		if viewer.UnitID == nil {
			return nil, 0, &AuthorizationError{Message: "account is not affiliated with a unit"}
		}
		q = q.Where("unit_id = ?", *viewer.UnitID)
	} else if f.UnitID != 0 {
		q = q.Where("unit_id = ?", f.UnitID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count proposals: %w", err)
	}

	var out []models.Proposal
	err := q.Preload("Unit").
		Preload("SubmittedBy").
		Order("created_at desc, id desc").
		Limit(f.limit()).
		Offset(f.offset()).
		Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list proposals: %w", err)
	}
	return out, total, nil
}

func (s *ProposalService) Get(ctx context.Context, viewer models.Account, id uint) (*models.Proposal, error) {
	var p models.Proposal
	err := s.db.WithContext(ctx).
		Preload("Unit").
		Preload("SubmittedBy").
		Preload("ApprovedBy").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Items.Personnel").
		First(&p, id).Error
	if isRecordNotFound(err) {
		return nil, notFound("proposal", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load proposal %d: %w", id, err)
	}
	if !viewer.Role.AtLeast(models.RoleAdmin) && (viewer.UnitID == nil || *viewer.UnitID != p.UnitID) {
		return nil, &AuthorizationError{Message: "proposal belongs to another unit"}
	}
	return &p, nil
}

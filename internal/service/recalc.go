package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"reward-admin/internal/audit"
	"reward-admin/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var ErrRecalculationRunning = errors.New("profile recalculation already running")

type RecalcError struct {
	PersonnelID uint   `json:"personnel_id"`
	Error       string `json:"error"`
}

type RecalcResult struct {
	RunID        uint          `json:"run_id"`
	SuccessCount int           `json:"success_count"`
	Errors       []RecalcError `json:"errors"`
}

// RecalcService recomputes derived personnel profile fields.
type RecalcService struct {
	db      *gorm.DB
	audit   *audit.Logger
	log     *zap.Logger
	now     Clock
	workers int

	running atomic.Bool
}

func NewRecalcService(db *gorm.DB, auditLog *audit.Logger, log *zap.Logger, workers int) *RecalcService {
	if workers < 1 {
		workers = 1
	}
	return &RecalcService{
		db:      db,
		audit:   auditLog,
		log:     log.Named("recalc"),
		now:     defaultClock,
		workers: workers,
	}
}

func (s *RecalcService) Running() bool { return s.running.Load() }

// RecalculateAll walks every personnel record. Per-record failures are
// collected in the result; only failures affecting the whole run (e.g. the
// database being unreachable) are returned as an error. Overlapping runs are
// refused with ErrRecalculationRunning.
//
// A started run is not tied to the caller's lifetime: a dropped HTTP client or
// a shutdown signal does not cut the batch short.
func (s *RecalcService) RecalculateAll(ctx context.Context, trigger string, actorID uint) (*RecalcResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRecalculationRunning
	}
	defer s.running.Store(false)
	ctx = context.WithoutCancel(ctx)

	started := s.now()
	run := models.RecalcRun{Trigger: trigger, Status: models.RecalcRunning, StartedAt: started}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		s.log.Error("recalculation aborted", zap.String("trigger", trigger), zap.Error(err))
		return nil, fmt.Errorf("start recalculation run: %w", err)
	}

	var ids []uint
	if err := s.db.WithContext(ctx).Model(&models.Personnel{}).Order("id asc").Pluck("id", &ids).Error; err != nil {
		err = fmt.Errorf("list personnel: %w", err)
		s.finishRun(ctx, &run, 0, 0, err)
		s.log.Error("recalculation aborted", zap.String("trigger", trigger), zap.Error(err))
		return nil, err
	}

	asOf := s.now()
	res := &RecalcResult{RunID: run.ID, Errors: []RecalcError{}}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, id := range ids {
		g.Go(func() error {
			_, err := s.recalculate(ctx, id, asOf)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Errors = append(res.Errors, RecalcError{PersonnelID: id, Error: err.Error()})
				return nil
			}
			res.SuccessCount++
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(res.Errors, func(i, j int) bool { return res.Errors[i].PersonnelID < res.Errors[j].PersonnelID })

	s.finishRun(ctx, &run, res.SuccessCount, len(res.Errors), nil)
	s.log.Info("recalculation finished",
		zap.String("trigger", trigger),
		zap.Uint("run_id", run.ID),
		zap.Int("success", res.SuccessCount),
		zap.Int("errors", len(res.Errors)),
		zap.Duration("elapsed", time.Since(started)))
	for _, e := range res.Errors {
		s.log.Warn("personnel recalculation failed", zap.Uint("personnel_id", e.PersonnelID), zap.String("error", e.Error))
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:     actorID,
		Action:      audit.ActionRecalculate,
		Resource:    audit.ResourcePersonnel,
		Description: audit.DescribeRecalculation(res.SuccessCount, len(res.Errors)),
	})
	return res, nil
}

// RecalculateOne refreshes a single record outside of a batch run.
func (s *RecalcService) RecalculateOne(ctx context.Context, personnelID uint) (*models.Profile, error) {
	return s.recalculate(ctx, personnelID, s.now())
}

func (s *RecalcService) recalculate(ctx context.Context, id uint, asOf time.Time) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Personnel
		err := forUpdate(tx).Preload("Position.ContributionGroup").Take(&p, id).Error
		if isRecordNotFound(err) {
			return notFound("personnel", id)
		}
		if err != nil {
			return fmt.Errorf("load personnel: %w", err)
		}

		var history []models.Achievement
		if err := tx.Where("personnel_id = ?", id).Order("year asc, id asc").Find(&history).Error; err != nil {
			return fmt.Errorf("load history: %w", err)
		}

		weight := 0
		if p.Position != nil && p.Position.ContributionGroup != nil {
			weight = p.Position.ContributionGroup.Weight
		}

		profile, err = ComputeProfile(ProfileInput{
			BirthDate:      p.BirthDate,
			EnlistmentDate: p.EnlistmentDate,
			GroupWeight:    weight,
			History:        history,
		}, asOf)
		if err != nil {
			return &ValidationError{Field: "profile", Message: err.Error()}
		}

		return tx.Model(&models.Personnel{}).Where("id = ?", id).UpdateColumns(profileColumns(profile)).Error
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// profileColumns lists every column so zero values are written too.
func profileColumns(p models.Profile) map[string]interface{} {
	return map[string]interface{}{
		"profile_service_months":              p.ServiceMonths,
		"profile_award_total":                 p.AwardTotal,
		"profile_achievement_total":           p.AchievementTotal,
		"profile_contribution_score":          p.ContributionScore,
		"profile_consecutive_emulation_years": p.ConsecutiveEmulationYears,
		"profile_eligible_merit_certificate":  p.EligibleMeritCertificate,
		"profile_glorious_soldier_rank":       p.GloriousSoldierRank,
		"profile_recalculated_at":             p.RecalculatedAt,
	}
}

func (s *RecalcService) finishRun(ctx context.Context, run *models.RecalcRun, success, failed int, runErr error) {
	finished := s.now()
	run.FinishedAt = &finished
	run.SuccessCount = success
	run.ErrorCount = failed
	run.Status = models.RecalcSucceeded
	if runErr != nil {
		run.Status = models.RecalcFailed
		run.Error = runErr.Error()
	}
	if err := s.db.WithContext(ctx).Save(run).Error; err != nil {
		s.log.Warn("failed to record recalculation run", zap.Uint("run_id", run.ID), zap.Error(err))
	}
}

func (s *RecalcService) ListRuns(ctx context.Context, limit int) ([]models.RecalcRun, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	var runs []models.RecalcRun
	if err := s.db.WithContext(ctx).Order("started_at desc, id desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list recalculation runs: %w", err)
	}
	return runs, nil
}

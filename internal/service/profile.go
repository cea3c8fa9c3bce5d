package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"reward-admin/internal/models"
)

// Service-length thresholds for the Glorious Soldier medal, in years.
const (
	medalThirdYears  = 10
	medalSecondYears = 15
	medalFirstYears  = 20

	meritCertificateConsecutiveYears = 2
)

type ProfileInput struct {
	BirthDate      time.Time
	EnlistmentDate time.Time
	GroupWeight    int
	History        []models.Achievement
}

// ComputeProfile derives profile fields from service dates and reward history.
// It is a pure function of its arguments.
func ComputeProfile(in ProfileInput, asOf time.Time) (models.Profile, error) {
	var p models.Profile

	switch {
	case in.EnlistmentDate.IsZero():
		return p, errors.New("enlistment date is missing")
	case in.EnlistmentDate.After(asOf):
		return p, fmt.Errorf("enlistment date %s is in the future", in.EnlistmentDate.Format("2006-01-02"))
	case !in.BirthDate.IsZero() && in.EnlistmentDate.Before(in.BirthDate):
		return p, fmt.Errorf("enlistment date %s precedes birth date %s",
			in.EnlistmentDate.Format("2006-01-02"), in.BirthDate.Format("2006-01-02"))
	}
	if in.GroupWeight < 0 {
		return p, fmt.Errorf("negative contribution group weight %d", in.GroupWeight)
	}

	points := 0
	var emulationYears []int
	for _, h := range in.History {
		rt, ok := models.LookupRewardType(h.Type)
		if !ok {
			return models.Profile{}, fmt.Errorf("history entry %d has unknown reward type %q", h.ID, h.Type)
		}
		switch rt.Kind {
		case models.KindAward:
			p.AwardTotal++
		case models.KindAchievement:
			p.AchievementTotal++
		}
		points += rt.Points
		if rt.Code == models.EmulationTitleCode {
			emulationYears = append(emulationYears, h.Year)
		}
	}

	p.ServiceMonths = monthsBetween(in.EnlistmentDate, asOf)
	p.ContributionScore = points * (100 + in.GroupWeight) / 100
	p.ConsecutiveEmulationYears = longestConsecutiveRun(emulationYears)
	p.EligibleMeritCertificate = p.ConsecutiveEmulationYears >= meritCertificateConsecutiveYears

	switch years := p.ServiceMonths / 12; {
	case years >= medalFirstYears:
		p.GloriousSoldierRank = models.MedalRankFirst
	case years >= medalSecondYears:
		p.GloriousSoldierRank = models.MedalRankSecond
	case years >= medalThirdYears:
		p.GloriousSoldierRank = models.MedalRankThird
	}

	at := asOf
	p.RecalculatedAt = &at
	return p, nil
}

// monthsBetween counts whole calendar months from a to b.
func monthsBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	m := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		m--
	}
	if m < 0 {
		return 0
	}
	return m
}

func longestConsecutiveRun(years []int) int {
	if len(years) == 0 {
		return 0
	}
	ys := append([]int(nil), years...)
	sort.Ints(ys)

	best, cur := 1, 1
	for i := 1; i < len(ys); i++ {
		switch ys[i] - ys[i-1] {
		case 0:
		case 1:
			cur++
			if cur > best {
				best = cur
			}
		default:
			cur = 1
		}
	}
	return best
}

package service

import (
	"testing"
	"time"

	"reward-admin/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func history(entries ...interface{}) []models.Achievement {
	var out []models.Achievement
	for i := 0; i+1 < len(entries); i += 2 {
		out = append(out, models.Achievement{ID: uint(i/2 + 1), Type: entries[i].(string), Year: entries[i+1].(int)})
	}
	return out
}

func TestComputeProfile(t *testing.T) {
	asOf := fixedNow
	birth := date(1990, time.March, 1)

	tests := []struct {
		name string
		in   ProfileInput
		want models.Profile
	}{
		{
			name: "no history",
			in:   ProfileInput{BirthDate: birth, EnlistmentDate: date(2020, time.January, 20)},
			want: models.Profile{ServiceMonths: 64},
		},
		{
			name: "ten years exactly earns third class",
			in:   ProfileInput{BirthDate: birth, EnlistmentDate: date(2015, time.June, 15)},
			want: models.Profile{ServiceMonths: 120, GloriousSoldierRank: models.MedalRankThird},
		},
		{
			name: "one day short of twenty years",
			in:   ProfileInput{BirthDate: birth, EnlistmentDate: date(2005, time.June, 16)},
			want: models.Profile{ServiceMonths: 239, GloriousSoldierRank: models.MedalRankSecond},
		},
		{
			name: "twenty years earns first class",
			in:   ProfileInput{EnlistmentDate: date(2005, time.June, 1)},
			want: models.Profile{ServiceMonths: 240, GloriousSoldierRank: models.MedalRankFirst},
		},
		{
			name: "weighted score and consecutive titles",
			in: ProfileInput{
				BirthDate:      birth,
				EnlistmentDate: date(2008, time.September, 1),
				GroupWeight:    20,
				History:        history("CSTDCS", 2019, "CSTDCS", 2021, "BANG_KHEN", 2022, "CSTDCS", 2022, "CSTDCS", 2023),
			},
			want: models.Profile{
				ServiceMonths:             201,
				AwardTotal:                1,
				AchievementTotal:          4,
				ContributionScore:         72,
				ConsecutiveEmulationYears: 3,
				EligibleMeritCertificate:  true,
				GloriousSoldierRank:       models.MedalRankSecond,
			},
		},
		{
			name: "gaps break the emulation run",
			in: ProfileInput{
				EnlistmentDate: date(2018, time.February, 1),
				History:        history("CSTDCS", 2019, "CSTDCS", 2021, "CSTT", 2020, "GIAY_KHEN", 2020),
			},
			want: models.Profile{
				ServiceMonths:             88,
				AwardTotal:                1,
				AchievementTotal:          3,
				ContributionScore:         30,
				ConsecutiveEmulationYears: 1,
			},
		},
		{
			name: "score truncates toward zero",
			in: ProfileInput{
				EnlistmentDate: date(2024, time.June, 15),
				GroupWeight:    15,
				History:        history("CSTT", 2024),
			},
			want: models.Profile{ServiceMonths: 12, AchievementTotal: 1, ContributionScore: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeProfile(tt.in, asOf)
			require.NoError(t, err)

			want := tt.want
			want.RecalculatedAt = &asOf
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("profile mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeProfileIsPure(t *testing.T) {
	in := ProfileInput{
		BirthDate:      date(1990, time.March, 1),
		EnlistmentDate: date(2010, time.May, 5),
		GroupWeight:    50,
		History:        history("CSTDCS", 2024, "CSTDCS", 2023, "HUAN_CHUONG_BVTQ", 2020),
	}
	first, err := ComputeProfile(in, fixedNow)
	require.NoError(t, err)
	second, err := ComputeProfile(in, fixedNow)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(first, second))
	assert.Equal(t, 2024, in.History[0].Year, "input history must not be reordered")
}

func TestComputeProfileRejectsInconsistentRecords(t *testing.T) {
	tests := map[string]ProfileInput{
		"missing enlistment":     {BirthDate: date(1990, time.January, 1)},
		"enlistment in future":   {EnlistmentDate: date(2030, time.January, 1)},
		"enlisted before birth":  {BirthDate: date(2000, time.January, 1), EnlistmentDate: date(1999, time.January, 1)},
		"negative group weight":  {EnlistmentDate: date(2010, time.January, 1), GroupWeight: -5},
		"unknown history record": {EnlistmentDate: date(2010, time.January, 1), History: history("KY_NIEM_CHUONG", 2020)},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ComputeProfile(in, fixedNow)
			assert.Error(t, err)
		})
	}
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		a, b time.Time
		want int
	}{
		{date(2020, time.January, 31), date(2020, time.February, 29), 0},
		{date(2020, time.January, 31), date(2020, time.March, 1), 1},
		{date(2020, time.January, 1), date(2021, time.January, 1), 12},
		{date(2021, time.January, 1), date(2020, time.January, 1), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, monthsBetween(tt.a, tt.b), "%s -> %s", tt.a.Format("2006-01-02"), tt.b.Format("2006-01-02"))
	}
}

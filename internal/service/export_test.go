package service

import (
	"bytes"
	"testing"
	"time"

	"reward-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWritePersonnelWorkbook(t *testing.T) {
	at := fixedNow
	people := []models.Personnel{
		{
			NationalID:     "001090000000",
			FullName:       "Nguyễn Văn A",
			BirthDate:      date(1990, time.March, 1),
			EnlistmentDate: date(2008, time.September, 1),
			Unit:           &models.Unit{Name: "Tiểu đoàn 1"},
			Position:       &models.Position{Name: "Trung đội trưởng"},
			Profile: models.Profile{
				ServiceMonths:             201,
				AwardTotal:                1,
				AchievementTotal:          2,
				ContributionScore:         48,
				ConsecutiveEmulationYears: 2,
				EligibleMeritCertificate:  true,
				GloriousSoldierRank:       models.MedalRankSecond,
				RecalculatedAt:            &at,
			},
		},
		{NationalID: "001090000001", FullName: "Nguyễn Văn B"},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePersonnelWorkbook(&buf, people))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(PersonnelSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "CCCD", rows[0][1])
	assert.Equal(t, []string{
		"1", "001090000000", "Nguyễn Văn A", "01/03/1990", "01/09/2008", "Tiểu đoàn 1", "Trung đội trưởng",
		"201", "1", "2", "48", "2", "Có", "HANG_NHI",
	}, rows[1])
	assert.Equal(t, "Nguyễn Văn B", rows[2][2])
	assert.Equal(t, "", rows[2][3])
}

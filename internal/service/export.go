package service

import (
	"fmt"
	"io"
	"time"

	"reward-admin/internal/models"

	"github.com/xuri/excelize/v2"
)

const PersonnelSheet = "Quân nhân"

var personnelHeader = []interface{}{
	"STT", "CCCD", "Họ và tên", "Ngày sinh", "Ngày nhập ngũ", "Đơn vị", "Chức vụ",
	"Số tháng công tác", "Tổng khen thưởng", "Tổng thành tích", "Điểm cống hiến",
	"Số năm CSTĐCS liên tục", "Đủ điều kiện Bằng khen", "HC Chiến sĩ vẻ vang",
}

// WritePersonnelWorkbook renders people as an .xlsx workbook.
func WritePersonnelWorkbook(w io.Writer, people []models.Personnel) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PersonnelSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(PersonnelSheet, "A1", &personnelHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(PersonnelSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, p := range people {
		unit, position := "", ""
		if p.Unit != nil {
			unit = p.Unit.Name
		}
		if p.Position != nil {
			position = p.Position.Name
		}
		merit := "Không"
		if p.Profile.EligibleMeritCertificate {
			merit = "Có"
		}
		row := []interface{}{
			i + 1,
			p.NationalID,
			p.FullName,
			formatDate(p.BirthDate),
			formatDate(p.EnlistmentDate),
			unit,
			position,
			p.Profile.ServiceMonths,
			p.Profile.AwardTotal,
			p.Profile.AchievementTotal,
			p.Profile.ContributionScore,
			p.Profile.ConsecutiveEmulationYears,
			merit,
			string(p.Profile.GloriousSoldierRank),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(PersonnelSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

package audit

import (
	"fmt"

	"reward-admin/internal/models"
)

var verbs = map[string]string{
	ActionCreate:      "Tạo",
	ActionUpdate:      "Cập nhật",
	ActionDelete:      "Xóa",
	ActionSubmit:      "Gửi",
	ActionApprove:     "Phê duyệt",
	ActionReject:      "Từ chối",
	ActionLogin:       "Đăng nhập",
	ActionRecalculate: "Tính lại",
}

func verb(action string) string {
	if v, ok := verbs[action]; ok {
		return v
	}
	return action
}

func DescribeUnit(action string, u models.Unit) string {
	return fmt.Sprintf("%s đơn vị: %s", verb(action), u.Name)
}

func DescribePosition(action string, p models.Position) string {
	return fmt.Sprintf("%s chức vụ: %s", verb(action), p.Name)
}

func DescribeContributionGroup(action string, g models.ContributionGroup) string {
	return fmt.Sprintf("%s nhóm cống hiến: %s", verb(action), g.Name)
}

func DescribePersonnel(action string, p models.Personnel) string {
	return fmt.Sprintf("%s quân nhân: %s (CCCD %s)", verb(action), p.FullName, p.NationalID)
}

func DescribeAccount(action string, a models.Account) string {
	return fmt.Sprintf("%s tài khoản: %s (%s)", verb(action), a.Username, a.Role)
}

func DescribeProposal(action string, p models.Proposal) string {
	s := fmt.Sprintf("%s đề xuất #%d của đơn vị %d (%d khen thưởng, %d thành tích)",
		verb(action), p.ID, p.UnitID, p.AwardCount, p.AchievementCount)
	if action == ActionReject && p.RejectionReason != nil {
		s += ": " + *p.RejectionReason
	}
	return s
}

func DescribeRecalculation(personnelCount, errorCount int) string {
	return fmt.Sprintf("%s hồ sơ quân nhân: %d thành công, %d lỗi", verb(ActionRecalculate), personnelCount, errorCount)
}

package models

import "time"

type RewardKind string

const (
	KindAward       RewardKind = "AWARD"
	KindAchievement RewardKind = "ACHIEVEMENT"
)

// RewardType is a catalogue entry for emulation titles and award forms.
type RewardType struct {
	Code   string
	Kind   RewardKind
	Name   string
	Points int
}

// EmulationTitleCode is the grassroots emulation-soldier title counted for
// consecutive-year eligibility.
const EmulationTitleCode = "CSTDCS"

var rewardTypes = map[string]RewardType{
	"CSTT":                {"CSTT", KindAchievement, "Chiến sĩ tiên tiến", 5},
	EmulationTitleCode:    {EmulationTitleCode, KindAchievement, "Chiến sĩ thi đua cơ sở", 10},
	"CSTD_TOAN_QUAN":      {"CSTD_TOAN_QUAN", KindAchievement, "Chiến sĩ thi đua toàn quân", 30},
	"GIAY_KHEN":           {"GIAY_KHEN", KindAward, "Giấy khen", 5},
	"BANG_KHEN":           {"BANG_KHEN", KindAward, "Bằng khen", 20},
	"HC_CHIEN_SI_VE_VANG": {"HC_CHIEN_SI_VE_VANG", KindAward, "Huy chương Chiến sĩ vẻ vang", 15},
	"HUAN_CHUONG_BVTQ":    {"HUAN_CHUONG_BVTQ", KindAward, "Huân chương Bảo vệ Tổ quốc", 50},
}

func LookupRewardType(code string) (RewardType, bool) {
	t, ok := rewardTypes[code]
	return t, ok
}

// Achievement is one entry of a person's permanent award/achievement history.
type Achievement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	PersonnelID uint       `gorm:"not null;uniqueIndex:idx_achievement_person_type_year" json:"personnel_id"`
	Type        string     `gorm:"size:50;not null;uniqueIndex:idx_achievement_person_type_year" json:"type"`
	Year        int        `gorm:"not null;uniqueIndex:idx_achievement_person_type_year" json:"year"`
	Kind        RewardKind `gorm:"type:varchar(20);not null" json:"kind"`
	ProposalID  *uint      `gorm:"index" json:"proposal_id"`
	Note        string     `gorm:"type:text" json:"note"`
}

package models

import "time"

// TeamWeekMetric is a recomputable cache of a team's numbers for one week.
type TeamWeekMetric struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TeamID          uint      `gorm:"not null;uniqueIndex:uk_metric_team_week" json:"team_id"`
	WeekID          uint      `gorm:"not null;uniqueIndex:uk_metric_team_week;index" json:"week_id"`
	MemberCount     int       `gorm:"not null;default:0" json:"member_count"`
	Eligible        bool      `gorm:"not null;default:false" json:"eligible"`
	KmAvg           float64   `gorm:"not null;default:0" json:"km_avg"`
	LifestyleAvg    float64   `gorm:"not null;default:0" json:"lifestyle_avg"`
	AttendanceAvg   float64   `gorm:"not null;default:0" json:"attendance_avg"`
	WeightLossTotal float64   `gorm:"not null;default:0" json:"weight_loss_total"`
	PointsAwarded   int       `gorm:"not null;default:0" json:"points_awarded"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TeamWeekMetric) TableName() string {
	return "team_week_metrics"
}

type TeamWeekAward struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeamID    uint      `gorm:"not null;index" json:"team_id"`
	WeekID    uint      `gorm:"not null;index" json:"week_id"`
	Category  string    `gorm:"size:32;not null" json:"category"`
	Value     float64   `gorm:"not null" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TeamWeekAward) TableName() string {
	return "team_week_awards"
}

const LedgerSourceWeeklyAward = "weekly_award"

// PointLedgerEntry is one point grant. Entries written by week finalization
// carry Source/WeekID/Category so they can be replaced without parsing Reason.
type PointLedgerEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeamID    uint      `gorm:"not null;index" json:"team_id"`
	Amount    int       `gorm:"not null" json:"amount"`
	Reason    string    `gorm:"size:255;not null" json:"reason"`
	Source    string    `gorm:"size:32;not null;default:'manual';index:idx_ledger_source_week" json:"source"`
	WeekID    *uint     `gorm:"index:idx_ledger_source_week" json:"week_id,omitempty"`
	Category  string    `gorm:"size:32" json:"category,omitempty"`
	RunID     string    `gorm:"size:36" json:"run_id,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PointLedgerEntry) TableName() string {
	return "point_ledger_entries"
}

package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"fitness-league/internal/models"
	"fitness-league/internal/scoring"
)

// RosterRepository is the read path of week finalization.
type RosterRepository struct {
	db *gorm.DB
}

func NewRosterRepository(db *gorm.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

type attendanceRow struct {
	MemberID  uint
	IsPresent bool
	Date      time.Time
}

// LoadRosters returns every team with its active members and their records
// for the week. Weight history is loaded up to the week's end with no lower
// bound so the scorer can find a baseline before the week.
func (r *RosterRepository) LoadRosters(ctx context.Context, week *models.Week) ([]scoring.TeamRoster, error) {
	db := r.db.WithContext(ctx)

	var teams []models.Team
	if err := db.Preload("Members", "is_active = ?", true).Order("id ASC").Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}

	var memberIDs []uint
	for _, t := range teams {
		for _, m := range t.Members {
			memberIDs = append(memberIDs, m.ID)
		}
	}

	members := make(map[uint]*scoring.MemberWeek, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = &scoring.MemberWeek{MemberID: id, Active: true}
	}

	if len(memberIDs) > 0 {
		if err := r.loadMemberRecords(db, week, memberIDs, members); err != nil {
			return nil, err
		}
	}

	rosters := make([]scoring.TeamRoster, 0, len(teams))
	for _, t := range teams {
		roster := scoring.TeamRoster{TeamID: t.ID, TeamName: t.Name}
		for _, m := range t.Members {
			roster.Members = append(roster.Members, *members[m.ID])
		}
		rosters = append(rosters, roster)
	}
	return rosters, nil
}

func (r *RosterRepository) loadMemberRecords(db *gorm.DB, week *models.Week, memberIDs []uint, members map[uint]*scoring.MemberWeek) error {
	var distances []models.DistanceLog
	if err := db.Where("week_id = ? AND member_id IN ?", week.ID, memberIDs).Find(&distances).Error; err != nil {
		return fmt.Errorf("load distance logs: %w", err)
	}
	for _, d := range distances {
		m := members[d.MemberID]
		m.DistanceKm = append(m.DistanceKm, d.Km)
	}

	var engagement []models.EngagementLog
	if err := db.Where("week_id = ? AND member_id IN ?", week.ID, memberIDs).Find(&engagement).Error; err != nil {
		return fmt.Errorf("load engagement logs: %w", err)
	}
	for _, e := range engagement {
		m := members[e.MemberID]
		m.PostCounts = append(m.PostCounts, e.PostCount)
	}

	var marks []attendanceRow
	err := db.Table("attendance_marks").
		Select("attendance_marks.member_id, attendance_marks.is_present, sessions.date").
		Joins("JOIN sessions ON sessions.id = attendance_marks.session_id").
		Where("attendance_marks.member_id IN ? AND sessions.date >= ? AND sessions.date < ?",
			memberIDs, week.StartDate, week.EndDate).
		Scan(&marks).Error
	if err != nil {
		return fmt.Errorf("load attendance: %w", err)
	}
	for _, a := range marks {
		m := members[a.MemberID]
		m.Attendance = append(m.Attendance, scoring.AttendanceMark{SessionDate: a.Date, Present: a.IsPresent})
	}

	var weights []models.WeightReading
	err = db.Where("member_id IN ? AND date <= ?", memberIDs, week.EndDate).
		Order("date ASC, id ASC").
		Find(&weights).Error
	if err != nil {
		return fmt.Errorf("load weight readings: %w", err)
	}
	for _, w := range weights {
		m := members[w.MemberID]
		m.Weights = append(m.Weights, scoring.WeightReading{Date: w.Date, Kg: w.WeightKg})
	}

	return nil
}

package models

import "time"

// DistanceLog holds a member's distance for one week; (member, week) is unique.
type DistanceLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MemberID  uint      `gorm:"not null;uniqueIndex:uk_distance_member_week" json:"member_id"`
	WeekID    uint      `gorm:"not null;uniqueIndex:uk_distance_member_week;index" json:"week_id"`
	Km        float64   `gorm:"type:decimal(8,2);not null;default:0" json:"km"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DistanceLog) TableName() string {
	return "distance_logs"
}

// EngagementLog holds a member's social post count for one week.
type EngagementLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MemberID  uint      `gorm:"not null;uniqueIndex:uk_engagement_member_week" json:"member_id"`
	WeekID    uint      `gorm:"not null;uniqueIndex:uk_engagement_member_week;index" json:"week_id"`
	PostCount int       `gorm:"not null;default:0" json:"post_count"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EngagementLog) TableName() string {
	return "engagement_logs"
}

type Session struct {
	ID    uint      `gorm:"primaryKey" json:"id"`
	Title string    `gorm:"size:150" json:"title"`
	Date  time.Time `gorm:"type:date;not null;index" json:"date"`
}

func (Session) TableName() string {
	return "sessions"
}

type AttendanceMark struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	SessionID uint     `gorm:"not null;uniqueIndex:uk_attendance_session_member" json:"session_id"`
	Session   *Session `gorm:"foreignKey:SessionID" json:"session,omitempty"`
	MemberID  uint     `gorm:"not null;uniqueIndex:uk_attendance_session_member;index" json:"member_id"`
	IsPresent bool     `gorm:"not null;default:false" json:"is_present"`
}

func (AttendanceMark) TableName() string {
	return "attendance_marks"
}

type WeightReading struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	MemberID uint      `gorm:"not null;index:idx_weight_member_date" json:"member_id"`
	Date     time.Time `gorm:"type:date;not null;index:idx_weight_member_date" json:"date"`
	WeightKg float64   `gorm:"type:decimal(6,2);not null" json:"weight_kg"`
}

func (WeightReading) TableName() string {
	return "weight_readings"
}

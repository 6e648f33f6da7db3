package models

import "time"

type CompetitionBlock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`
	Weeks     []Week    `gorm:"foreignKey:BlockID" json:"weeks,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (CompetitionBlock) TableName() string {
	return "competition_blocks"
}

// Week is created once at block setup and never mutated. StartDate is
// inclusive; how EndDate bounds each log type is decided by the scorer.
type Week struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BlockID    uint      `gorm:"not null;uniqueIndex:uk_block_week" json:"block_id"`
	WeekNumber int       `gorm:"not null;uniqueIndex:uk_block_week" json:"week_number"`
	StartDate  time.Time `gorm:"type:date;not null;index" json:"start_date"`
	EndDate    time.Time `gorm:"type:date;not null;index" json:"end_date"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Week) TableName() string {
	return "weeks"
}

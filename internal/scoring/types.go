// Package scoring turns a week's raw member records into team metrics and
// category awards. Nothing in this package touches storage; every function is
// safe to call concurrently.
package scoring

import (
	"fmt"
	"math"
	"time"

	"fitness-league/pkg/errors"
)

// Category is an award category decided each week.
type Category string

const (
	CategoryDistance   Category = "distance"
	CategoryWeightLoss Category = "weight_loss"
	CategoryEngagement Category = "engagement"
	CategoryAttendance Category = "attendance"
)

// Categories lists every category in the order awards are emitted.
var Categories = []Category{
	CategoryDistance,
	CategoryWeightLoss,
	CategoryEngagement,
	CategoryAttendance,
}

// Window is a week's date range. Start is inclusive. End is inclusive for
// weight readings and exclusive for session attendance.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) normalized() Window {
	return Window{Start: day(w.Start), End: day(w.End)}
}

func (w Window) validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("week window has a zero date: %w", errors.ErrInvalidInput)
	}
	if day(w.End).Before(day(w.Start)) {
		return fmt.Errorf("week window ends %s before it starts %s: %w",
			w.End.Format(time.DateOnly), w.Start.Format(time.DateOnly), errors.ErrInvalidInput)
	}
	return nil
}

type AttendanceMark struct {
	SessionDate time.Time
	Present     bool
}

type WeightReading struct {
	Date time.Time
	Kg   float64
}

// MemberWeek is everything the aggregator needs to know about one member for
// one week. Weights is the member's history up to the week's end, not only
// the readings inside the week.
type MemberWeek struct {
	MemberID   uint
	Active     bool
	DistanceKm []float64
	PostCounts []int
	Attendance []AttendanceMark
	Weights    []WeightReading
}

type TeamRoster struct {
	TeamID   uint
	TeamName string
	Members  []MemberWeek
}

// TeamResult is one team's computed numbers for a week.
type TeamResult struct {
	TeamID          uint    `json:"team_id"`
	TeamName        string  `json:"team_name"`
	MemberCount     int     `json:"member_count"`
	Eligible        bool    `json:"eligible"`
	KmAvg           float64 `json:"km_avg"`
	LifestyleAvg    float64 `json:"lifestyle_avg"`
	AttendanceAvg   float64 `json:"attendance_avg"`
	WeightLossTotal float64 `json:"weight_loss_total"`
}

// Value returns the metric a category is decided on.
func (r TeamResult) Value(c Category) float64 {
	switch c {
	case CategoryDistance:
		return r.KmAvg
	case CategoryWeightLoss:
		return r.WeightLossTotal
	case CategoryEngagement:
		return r.LifestyleAvg
	case CategoryAttendance:
		return r.AttendanceAvg
	default:
		return 0
	}
}

type Award struct {
	TeamID   uint     `json:"team_id"`
	Category Category `json:"category"`
	Value    float64  `json:"value"`
}

// Policy holds the season rules that are configurable rather than fixed.
type Policy struct {
	// MinActiveMembers is the roster size a team needs to be eligible for awards.
	MinActiveMembers int
	// Precision is the number of decimals team metrics are rounded to before
	// winners are compared.
	Precision int
	// AwardNonPositiveLeaders lets a category be won with a leading value of
	// zero or less.
	AwardNonPositiveLeaders bool
}

func DefaultPolicy() Policy {
	return Policy{MinActiveMembers: 4, Precision: 2}
}

func (p Policy) round(v float64) float64 {
	scale := math.Pow(10, float64(p.Precision))
	return math.Round(v*scale) / scale
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

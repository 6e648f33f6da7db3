package scoring

import (
	"fmt"
	"math"
	"sort"

	"fitness-league/pkg/errors"
)

// memberTotals is one member's (or a whole team's) raw contribution for a week.
type memberTotals struct {
	km         float64
	posts      float64
	attended   float64
	weightLoss float64
}

func (a memberTotals) add(b memberTotals) memberTotals {
	return memberTotals{
		km:         a.km + b.km,
		posts:      a.posts + b.posts,
		attended:   a.attended + b.attended,
		weightLoss: a.weightLoss + b.weightLoss,
	}
}

// ComputeMetrics produces one TeamResult per roster, in roster order.
// Any malformed record aborts the whole computation.
func ComputeMetrics(teams []TeamRoster, window Window, policy Policy) ([]TeamResult, error) {
	if err := window.validate(); err != nil {
		return nil, err
	}
	w := window.normalized()

	results := make([]TeamResult, 0, len(teams))
	for _, team := range teams {
		result, err := computeTeam(team, w, policy)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func computeTeam(team TeamRoster, w Window, policy Policy) (TeamResult, error) {
	var total memberTotals
	memberCount := 0
	for _, m := range team.Members {
		if !m.Active {
			continue
		}
		contribution, err := memberContribution(m, w)
		if err != nil {
			return TeamResult{}, fmt.Errorf("team %d: %w", team.TeamID, err)
		}
		total = total.add(contribution)
		memberCount++
	}

	result := TeamResult{
		TeamID:          team.TeamID,
		TeamName:        team.TeamName,
		MemberCount:     memberCount,
		Eligible:        memberCount >= policy.MinActiveMembers,
		WeightLossTotal: policy.round(total.weightLoss),
	}
	if memberCount > 0 {
		n := float64(memberCount)
		result.KmAvg = policy.round(total.km / n)
		result.LifestyleAvg = policy.round(total.posts / n)
		result.AttendanceAvg = policy.round(total.attended / n)
	}
	return result, nil
}

func memberContribution(m MemberWeek, w Window) (memberTotals, error) {
	var t memberTotals

	for _, km := range m.DistanceKm {
		if !finite(km) || km < 0 {
			return t, fmt.Errorf("member %d: distance %v: %w", m.MemberID, km, errors.ErrInvalidInput)
		}
		t.km += km
	}

	for _, posts := range m.PostCounts {
		if posts < 0 {
			return t, fmt.Errorf("member %d: post count %d: %w", m.MemberID, posts, errors.ErrInvalidInput)
		}
		t.posts += float64(posts)
	}

	for _, mark := range m.Attendance {
		if mark.SessionDate.IsZero() {
			return t, fmt.Errorf("member %d: attendance mark without session date: %w", m.MemberID, errors.ErrInvalidInput)
		}
		d := day(mark.SessionDate)
		if mark.Present && !d.Before(w.Start) && d.Before(w.End) {
			t.attended++
		}
	}

	for _, r := range m.Weights {
		if r.Date.IsZero() || !finite(r.Kg) || r.Kg <= 0 {
			return t, fmt.Errorf("member %d: weight reading %v on %v: %w", m.MemberID, r.Kg, r.Date, errors.ErrInvalidInput)
		}
	}
	t.weightLoss = WeightLoss(m.Weights, w)

	return t, nil
}

// WeightLoss is a member's loss for the week, never negative.
//
// The last reading inside [Start, End] is measured against the latest reading
// before Start, or, when the member has no earlier reading, against their
// first reading of the week. A week without any reading counts as zero.
// Readings are ordered by full timestamp; equal timestamps keep input order.
func WeightLoss(readings []WeightReading, window Window) float64 {
	w := window.normalized()

	ordered := make([]WeightReading, len(readings))
	copy(ordered, readings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	var baseline, first, last *WeightReading
	for i := range ordered {
		r := &ordered[i]
		d := day(r.Date)
		switch {
		case d.Before(w.Start):
			baseline = r
		case !d.After(w.End):
			if first == nil {
				first = r
			}
			last = r
		}
	}

	if last == nil {
		return 0
	}
	if baseline == nil {
		baseline = first
	}
	return math.Max(0, baseline.Kg-last.Kg)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

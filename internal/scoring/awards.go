package scoring

import (
	"math"
	"sort"
)

// DetermineWinners picks every eligible team holding the top value of each
// category. Ties all win. A category whose top value is not positive is
// skipped unless the policy allows non-positive leaders.
//
// Awards come out grouped by category in Categories order, then by team id.
func DetermineWinners(results []TeamResult, policy Policy) []Award {
	contenders := make([]TeamResult, 0, len(results))
	for _, r := range results {
		if r.Eligible {
			contenders = append(contenders, r)
		}
	}
	sort.SliceStable(contenders, func(i, j int) bool {
		return contenders[i].TeamID < contenders[j].TeamID
	})

	var awards []Award
	for _, category := range Categories {
		awards = append(awards, categoryWinners(contenders, category, policy)...)
	}
	return awards
}

func categoryWinners(contenders []TeamResult, category Category, policy Policy) []Award {
	if len(contenders) == 0 {
		return nil
	}

	best := math.Inf(-1)
	for _, r := range contenders {
		best = math.Max(best, r.Value(category))
	}
	if best <= 0 && !policy.AwardNonPositiveLeaders {
		return nil
	}

	var winners []Award
	for _, r := range contenders {
		if r.Value(category) == best {
			winners = append(winners, Award{TeamID: r.TeamID, Category: category, Value: best})
		}
	}
	return winners
}

// PointsByTeam totals the points each team earns from awards.
func PointsByTeam(awards []Award, pointsPerAward int) map[uint]int {
	points := make(map[uint]int)
	for _, a := range awards {
		points[a.TeamID] += pointsPerAward
	}
	return points
}

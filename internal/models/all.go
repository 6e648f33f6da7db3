package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Team{},
		&Member{},
		&CompetitionBlock{},
		&Week{},
		&DistanceLog{},
		&EngagementLog{},
		&Session{},
		&AttendanceMark{},
		&WeightReading{},
		&TeamWeekMetric{},
		&TeamWeekAward{},
		&PointLedgerEntry{},
	}
}

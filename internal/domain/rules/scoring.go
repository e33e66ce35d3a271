package rules

import "time"

// Additive compatibility weights. Scores are never normalized; ties keep
// retrieval order.
const (
	ScoreSharedTerm         = 20
	ScoreSameLocation       = 30
	ScoreBothCofounder      = 25
	ScoreBothProjects       = 20
	ScoreBothStudyPartner   = 15
	ScoreBothAccountability = 15
	ScoreBothHelpingOthers  = 10
	ScoreSchoolVerified     = 5
)

// RecencyBonus rewards candidates active in the last week.
func RecencyBonus(lastActiveAt, now time.Time) int {
	if lastActiveAt.IsZero() {
		return 0
	}
	since := now.Sub(lastActiveAt)
	switch {
	case since < 24*time.Hour:
		return 15
	case since < 72*time.Hour:
		return 10
	case since < 168*time.Hour:
		return 5
	default:
		return 0
	}
}

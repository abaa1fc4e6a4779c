package core

import "fmt"

// GoalMilestones are the progress percentages that trigger a notification.
var GoalMilestones = []int64{25, 50, 75, 100}

// CrossedMilestones returns, in ascending order, the milestones m for which
// progress was below m before the update and at or above m after it.
func CrossedMilestones(before, after, target Money) []int64 {
	if target.Cents <= 0 {
		return nil
	}
	var crossed []int64
	for _, m := range GoalMilestones {
		threshold := m * target.Cents
		if before.Cents*100 < threshold && after.Cents*100 >= threshold {
			crossed = append(crossed, m)
		}
	}
	return crossed
}

type BudgetAlert int

const (
	BudgetOK BudgetAlert = iota
	BudgetWarning
	BudgetExceeded
)

func (a BudgetAlert) String() string {
	switch a {
	case BudgetWarning:
		return "warning"
	case BudgetExceeded:
		return "exceeded"
	default:
		return "ok"
	}
}

// BudgetLevel classifies spend against limit: exceeded at 100% or more,
// warning at 80% or more.
func BudgetLevel(spent, limit Money) BudgetAlert {
	switch {
	case limit.Cents <= 0:
		return BudgetOK
	case spent.Cents >= limit.Cents:
		return BudgetExceeded
	case spent.Cents*100 >= limit.Cents*80:
		return BudgetWarning
	default:
		return BudgetOK
	}
}

// BudgetCrossing returns the level reached by moving spend from before to
// after, or BudgetOK when no higher threshold was crossed. Alerts are
// crossing-based: further spend inside an already reached level raises
// nothing, so each threshold alerts at most once per crossing.
func BudgetCrossing(before, after, limit Money) BudgetAlert {
	next := BudgetLevel(after, limit)
	if next > BudgetLevel(before, limit) {
		return next
	}
	return BudgetOK
}

// BudgetAlertMessage is the notification text for a crossed threshold.
func BudgetAlertMessage(alert BudgetAlert, category string, spent, limit Money) string {
	pct := Percent(spent, limit)
	if alert == BudgetExceeded {
		return fmt.Sprintf("Budget exceeded: you have spent %s of your %s limit for %s (%d%%).",
			spent, limit, category, pct)
	}
	return fmt.Sprintf("Budget warning: you have used %d%% of your %s budget (%s of %s).",
		pct, category, spent, limit)
}

// MilestoneMessage is the notification text for a reached goal milestone.
func MilestoneMessage(goal string, milestone int64) string {
	if milestone >= 100 {
		return fmt.Sprintf("Congratulations! You've reached your savings goal '%s'.", goal)
	}
	return fmt.Sprintf("You've reached %d%% of your savings goal '%s'.", milestone, goal)
}
